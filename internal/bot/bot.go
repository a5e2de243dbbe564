// Package bot is the Telegram command surface over the race rooms.
package bot

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/stable-stakes/internal/models"
	"github.com/yourusername/stable-stakes/internal/room"
	"github.com/yourusername/stable-stakes/internal/statistics"
	"gopkg.in/telebot.v3"
)

// Ledger exposes balances to the balance command.
type Ledger interface {
	BalanceOf(p models.Participant) int64
}

// Bot wires Telegram commands to the room manager.
type Bot struct {
	tb       *telebot.Bot
	rooms    *room.Manager
	ledger   Ledger
	registry *statistics.Registry
	limiter  *Limiter
	log      *logrus.Entry
}

// Config holds the Telegram transport settings.
type Config struct {
	Token       string
	PollTimeout time.Duration
	// CommandsPerMinute caps how fast a single user may issue commands.
	CommandsPerMinute float64
}

// New creates the bot and registers every command handler.
func New(cfg Config, rooms *room.Manager, ledger Ledger, registry *statistics.Registry, log *logrus.Entry) (*Bot, error) {
	if cfg.PollTimeout == 0 {
		cfg.PollTimeout = 10 * time.Second
	}
	if cfg.CommandsPerMinute == 0 {
		cfg.CommandsPerMinute = 20
	}

	tb, err := telebot.NewBot(telebot.Settings{
		Token: cfg.Token,
		Poller: &telebot.LongPoller{
			Timeout: cfg.PollTimeout,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	b := &Bot{
		tb:       tb,
		rooms:    rooms,
		ledger:   ledger,
		registry: registry,
		limiter:  NewLimiter(cfg.CommandsPerMinute / 60.0),
		log:      log.WithField("component", "bot"),
	}
	b.registerHandlers()
	return b, nil
}

// Telebot returns the underlying transport, used to build notifiers.
func (b *Bot) Telebot() *telebot.Bot {
	return b.tb
}

// SetRooms installs the room manager. The bot and the manager need
// each other (commands reach rooms, room notifiers reach the chat), so
// the manager arrives after construction but before Start.
func (b *Bot) SetRooms(rooms *room.Manager) {
	b.rooms = rooms
}

// Start begins long polling. Blocks until Stop is called.
func (b *Bot) Start() {
	b.log.Info("Telegram bot starting")
	b.tb.Start()
}

// Stop halts long polling.
func (b *Bot) Stop() {
	b.tb.Stop()
	b.log.Info("Telegram bot stopped")
}

func (b *Bot) registerHandlers() {
	b.tb.Handle("/race", b.guarded(b.handleRace))
	b.tb.Handle("/join", b.guarded(b.handleJoin))
	b.tb.Handle("/bet", b.guarded(b.handleBet))
	b.tb.Handle("/odds", b.guarded(b.handleOdds))
	b.tb.Handle("/bets", b.guarded(b.handleBets))
	b.tb.Handle("/dope", b.guarded(b.handleDope))
	b.tb.Handle("/board", b.guarded(b.handleBoard))
	b.tb.Handle("/stats", b.guarded(b.handleStats))
	b.tb.Handle("/balance", b.guarded(b.handleBalance))
	b.tb.Handle("/help", b.handleHelp)
}

// guarded applies per-user rate limiting before the handler runs.
func (b *Bot) guarded(handler telebot.HandlerFunc) telebot.HandlerFunc {
	return func(c telebot.Context) error {
		if !b.limiter.Allow(c.Sender().ID) {
			return nil
		}
		return handler(c)
	}
}

func participant(c telebot.Context) models.Participant {
	name := c.Sender().Username
	if name == "" {
		name = strings.TrimSpace(c.Sender().FirstName + " " + c.Sender().LastName)
	}
	return models.Participant{ID: c.Sender().ID, Name: name}
}

func (b *Bot) room(c telebot.Context) *room.Room {
	return b.rooms.Room(c.Chat().ID)
}

// reply sends the outcome of a room operation, mapping engine errors
// to user-facing text.
func (b *Bot) reply(c telebot.Context, msg string, err error) error {
	if err != nil {
		return c.Send(errorText(err))
	}
	return c.Send(msg)
}

func errorText(err error) string {
	switch {
	case errors.Is(err, models.ErrNoActiveRace):
		return "There is no race right now. Start one with /race!"
	case errors.Is(err, models.ErrRaceActive):
		return "A race is already underway."
	case errors.Is(err, models.ErrRaceCooldown):
		return fmt.Sprintf("🕐 %v.", err)
	case errors.Is(err, models.ErrInsufficientBalance):
		return "You can't afford that."
	case errors.Is(err, models.ErrAlreadyEntered):
		return "You are already in this race."
	case errors.Is(err, models.ErrDisqualified):
		return "You were caught cheating. Sit this one out."
	case errors.Is(err, models.ErrEntriesClosed):
		return "Entries are closed, the race has started."
	case errors.Is(err, models.ErrWagersClosed):
		return "Bets are closed, the race has started."
	case errors.Is(err, models.ErrMountDead):
		return "Your mount is beyond help."
	default:
		return fmt.Sprintf("🚫 %v.", err)
	}
}

func (b *Bot) handleRace(c telebot.Context) error {
	msg, err := b.room(c).OpenRace(participant(c))
	return b.reply(c, msg, err)
}

func (b *Bot) handleJoin(c telebot.Context) error {
	msg, err := b.room(c).Join(participant(c))
	return b.reply(c, msg, err)
}

// handleBet parses "/bet <target> <odds> <amount>".
func (b *Bot) handleBet(c telebot.Context) error {
	args := c.Args()
	if len(args) != 3 {
		return c.Send("Usage: /bet <entrant> <first|second|third> <amount>")
	}
	target := strings.TrimPrefix(args[0], "@")
	amount, err := strconv.ParseInt(args[2], 10, 64)
	if err != nil {
		return c.Send("That's not an amount I understand.")
	}

	msg, err := b.room(c).Bet(participant(c), target, args[1], amount)
	return b.reply(c, msg, err)
}

func (b *Bot) handleOdds(c telebot.Context) error {
	msg, err := b.room(c).OddsTable()
	return b.reply(c, msg, err)
}

func (b *Bot) handleBets(c telebot.Context) error {
	msg, err := b.room(c).Bets()
	return b.reply(c, msg, err)
}

// handleDope parses "/dope <amount>".
func (b *Bot) handleDope(c telebot.Context) error {
	args := c.Args()
	if len(args) != 1 {
		return c.Send("Usage: /dope <amount>")
	}
	amount, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return c.Send("That's not an amount I understand.")
	}

	msg, err := b.room(c).Dope(participant(c), amount)
	return b.reply(c, msg, err)
}

func (b *Bot) handleBoard(c telebot.Context) error {
	room := b.room(c)
	msg, err := room.Leaderboard()
	if errors.Is(err, models.ErrNoActiveRace) {
		if wait := room.TimeUntilNextRace(); wait > 0 {
			return c.Send(fmt.Sprintf("🕐 No race right now. The track reopens in %s.", wait.Round(time.Second)))
		}
	}
	return b.reply(c, msg, err)
}

func (b *Bot) handleStats(c telebot.Context) error {
	return c.Send(b.registry.RenderTable())
}

func (b *Bot) handleBalance(c telebot.Context) error {
	p := participant(c)
	return c.Send(fmt.Sprintf("💰 %s, you have %d.", p.Name, b.ledger.BalanceOf(p)))
}

func (b *Bot) handleHelp(c telebot.Context) error {
	helpText := "🏇 *Stable Stakes*\n\n" +
		"/race - Open a new race and enter it\n" +
		"/join - Enter the upcoming race\n" +
		"/bet <entrant> <first|second|third> <amount> - Bet on an entrant\n" +
		"/odds - Show the current odds\n" +
		"/bets - Show the bets made\n" +
		"/dope <amount> - Slip your mount something extra\n" +
		"/board - Show the standings\n" +
		"/stats - Show the all-time standings\n" +
		"/balance - Check your balance"
	return c.Send(helpText, &telebot.SendOptions{
		ParseMode: telebot.ModeMarkdown,
	})
}
