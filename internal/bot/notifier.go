package bot

import (
	"sync"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// ChatNotifier posts race chatter into one Telegram chat. Leaderboard
// updates edit the previous standings message instead of flooding the
// room with a new message every round.
type ChatNotifier struct {
	mu        sync.Mutex
	tb        *telebot.Bot
	chat      *telebot.Chat
	lastBoard *telebot.Message
	log       *logrus.Entry
}

// NewChatNotifier creates a notifier bound to a chat id.
func NewChatNotifier(tb *telebot.Bot, chatID int64, log *logrus.Entry) *ChatNotifier {
	return &ChatNotifier{
		tb:   tb,
		chat: &telebot.Chat{ID: chatID},
		log:  log.WithField("chat_id", chatID),
	}
}

// Announce posts a fresh message. The next leaderboard update starts a
// new standings message so announcements stay visible in order.
func (n *ChatNotifier) Announce(text string) {
	n.mu.Lock()
	n.lastBoard = nil
	n.mu.Unlock()

	if _, err := n.tb.Send(n.chat, text); err != nil {
		n.log.WithError(err).Warn("Failed to send announcement")
	}
}

// Leaderboard edits the last standings message, or posts one if none
// exists yet.
func (n *ChatNotifier) Leaderboard(text string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.lastBoard != nil {
		if msg, err := n.tb.Edit(n.lastBoard, text); err == nil {
			n.lastBoard = msg
			return
		}
		// Editing can fail when the message got too old; fall through
		// and post a fresh one.
	}

	msg, err := n.tb.Send(n.chat, text)
	if err != nil {
		n.log.WithError(err).Warn("Failed to send leaderboard")
		return
	}
	n.lastBoard = msg
}
