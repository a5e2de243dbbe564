package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// WebhookEvent is the JSON payload delivered for every announcement.
type WebhookEvent struct {
	Type      string    `json:"type"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// WebhookConfig holds the delivery settings.
type WebhookConfig struct {
	URL          string
	Timeout      time.Duration
	MaxRetries   int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
	// RateLimit caps deliveries per second; a whole race's worth of
	// leaderboard edits must not hammer the endpoint.
	RateLimit float64
}

// DefaultWebhookConfig returns recommended defaults.
func DefaultWebhookConfig(url string) WebhookConfig {
	return WebhookConfig{
		URL:          url,
		Timeout:      10 * time.Second,
		MaxRetries:   3,
		RetryWaitMin: 100 * time.Millisecond,
		RetryWaitMax: 5 * time.Second,
		RateLimit:    2.0,
	}
}

// WebhookNotifier delivers race events to an external HTTP endpoint.
// Deliveries are asynchronous and best-effort: a dead endpoint never
// stalls a race round.
type WebhookNotifier struct {
	client  *retryablehttp.Client
	limiter *rate.Limiter
	url     string
	log     *logrus.Entry
}

// NewWebhookNotifier creates a webhook notifier.
func NewWebhookNotifier(cfg WebhookConfig, log *logrus.Entry) *WebhookNotifier {
	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient.Timeout = cfg.Timeout
	retryClient.RetryMax = cfg.MaxRetries
	retryClient.RetryWaitMin = cfg.RetryWaitMin
	retryClient.RetryWaitMax = cfg.RetryWaitMax
	retryClient.Logger = nil

	return &WebhookNotifier{
		client:  retryClient,
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), 1),
		url:     cfg.URL,
		log:     log.WithField("component", "webhook"),
	}
}

// Announce delivers an announcement event.
func (n *WebhookNotifier) Announce(text string) {
	go n.deliver("announcement", text)
}

// Leaderboard delivers a standings event.
func (n *WebhookNotifier) Leaderboard(text string) {
	go n.deliver("leaderboard", text)
}

func (n *WebhookNotifier) deliver(eventType, text string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := n.limiter.Wait(ctx); err != nil {
		n.log.WithError(err).Debug("Webhook delivery dropped by rate limiter")
		return
	}

	payload, err := json.Marshal(WebhookEvent{
		Type:      eventType,
		Text:      text,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		n.log.WithError(err).Error("Failed to encode webhook event")
		return
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(payload))
	if err != nil {
		n.log.WithError(err).Error("Failed to build webhook request")
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		n.log.WithError(err).Warn("Webhook delivery failed")
		return
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 400 {
		n.log.WithField("status", resp.StatusCode).Warn("Webhook endpoint rejected event")
	}
}
