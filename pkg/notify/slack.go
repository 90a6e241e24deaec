// Package notify delivers the daily substitution message to staff channels.
package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/slack-go/slack"
	"go.uber.org/zap"

	"github.com/Hasan197668/nis/pkg/config"
)

// ErrDisabled is returned by the no-op notifier.
var ErrDisabled = errors.New("notifications are disabled")

// Notifier posts a plain text message.
type Notifier interface {
	Post(ctx context.Context, text string) error
	Enabled() bool
}

// SlackPoster is the subset of the Slack client used for posting.
type SlackPoster interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

// SlackNotifier posts to a single Slack channel.
type SlackNotifier struct {
	client    SlackPoster
	channelID string
	logger    *zap.Logger
}

// NewSlackNotifier wraps an existing poster.
func NewSlackNotifier(client SlackPoster, channelID string, logger *zap.Logger) *SlackNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SlackNotifier{client: client, channelID: channelID, logger: logger}
}

// New builds the notifier described by cfg; a no-op notifier is returned when
// Slack is disabled or incompletely configured.
func New(cfg config.SlackConfig, logger *zap.Logger) Notifier {
	if !cfg.Enabled || cfg.BotToken == "" || cfg.ChannelID == "" {
		return Nop{}
	}
	return NewSlackNotifier(slack.New(cfg.BotToken), cfg.ChannelID, logger)
}

// Post sends text to the configured channel.
func (n *SlackNotifier) Post(ctx context.Context, text string) error {
	channel, ts, err := n.client.PostMessageContext(ctx, n.channelID,
		slack.MsgOptionText(text, false),
		slack.MsgOptionAsUser(false),
	)
	if err != nil {
		return fmt.Errorf("post slack message: %w", err)
	}
	n.logger.Info("slack message posted", zap.String("channel", channel), zap.String("ts", ts))
	return nil
}

// Enabled implements Notifier.
func (n *SlackNotifier) Enabled() bool { return true }

// Nop discards messages.
type Nop struct{}

// Post implements Notifier.
func (Nop) Post(context.Context, string) error { return ErrDisabled }

// Enabled implements Notifier.
func (Nop) Enabled() bool { return false }
