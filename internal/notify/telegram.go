// Package notify posts a short digest of a run to chat channels.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog"

	"github.com/mikematt33/sprint-inspect/internal/report"
	domain "github.com/mikematt33/sprint-inspect/pkg/models"
)

// MaxMessageLen is the Telegram limit for one message, in characters.
const MaxMessageLen = 4096

// Sender is the part of *bot.Bot used for delivery.
type Sender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
}

// Telegram sends plain-text digests to a fixed set of chats.
type Telegram struct {
	sender  Sender
	chatIDs []int64
	log     zerolog.Logger
}

// NewTelegram creates a bot client without polling for updates.
func NewTelegram(token string, chatIDs []int64, log zerolog.Logger, opts ...bot.Option) (*Telegram, error) {
	if token == "" || len(chatIDs) == 0 {
		return nil, errors.New("telegram: missing token or chat ids")
	}
	opts = append([]bot.Option{bot.WithSkipGetMe()}, opts...)
	b, err := bot.New(token, opts...)
	if err != nil {
		return nil, fmt.Errorf("telegram: %w", err)
	}
	return NewWithSender(b, chatIDs, log), nil
}

func NewWithSender(sender Sender, chatIDs []int64, log zerolog.Logger) *Telegram {
	return &Telegram{sender: sender, chatIDs: chatIDs, log: log}
}

// Send delivers text to every chat, split into message-sized chunks. Every chat
// is attempted; the returned error joins all failures.
func (t *Telegram) Send(ctx context.Context, text string) error {
	var errs []error
	for _, chatID := range t.chatIDs {
		if err := t.sendChunks(ctx, chatID, text); err != nil {
			errs = append(errs, fmt.Errorf("chat %d: %w", chatID, err))
			t.log.Warn().Err(err).Int64("chat", chatID).Msg("digest not delivered")
			continue
		}
		t.log.Debug().Int64("chat", chatID).Msg("digest sent")
	}
	return errors.Join(errs...)
}

// sendChunks delivers text to one chat and stops at the first failed chunk.
func (t *Telegram) sendChunks(ctx context.Context, chatID int64, text string) error {
	for _, chunk := range splitTextIntoChunks(text, MaxMessageLen) {
		if _, err := t.sender.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: chunk}); err != nil {
			return err
		}
	}
	return nil
}

// Digest renders a compact plain-text overview of a run.
func Digest(summaries []domain.Summary, combined *domain.CombinedSummary) string {
	var b strings.Builder

	b.WriteString("📊 Sprint summary")
	if len(summaries) > 0 && summaries[0].RunID != "" {
		fmt.Fprintf(&b, " (run %s)", summaries[0].RunID)
	}
	b.WriteString("\n\n")

	if len(summaries) == 0 {
		b.WriteString("No sprint summaries generated.\n")
		return b.String()
	}

	for _, s := range summaries {
		fmt.Fprintf(&b, "%s %s (%s) - %s\n", report.HealthEmoji(s.Health.Overall), s.Team.Label, s.Project.Key, s.Health.Overall)
		fmt.Fprintf(&b, "   %s: completion %s%%, velocity %d, blocked %d\n",
			s.Sprint.Name, s.Metrics.CompletionRate, s.Metrics.Velocity, s.Metrics.BlockedIssues)
	}

	if combined != nil {
		m := combined.Metrics
		fmt.Fprintf(&b, "\nAll teams: %d of %d issues completed (%s%%), %d blocked\n",
			m.CompletedIssues, m.TotalIssues, m.CompletionRate, m.BlockedIssues)
	}
	return b.String()
}

func splitTextIntoChunks(text string, chunkSize int) []string {
	var chunks []string
	runes := []rune(text)
	for i := 0; i < len(runes); i += chunkSize {
		end := min(i+chunkSize, len(runes))
		chunks = append(chunks, string(runes[i:end]))
	}
	return chunks
}
