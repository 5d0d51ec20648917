// Package notify delivers forecast run summaries to Telegram.
package notify

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/macrolabs/laborcast/models"
)

// Notifier sends run summaries to one Telegram chat.
type Notifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	logger zerolog.Logger
}

// New creates a Notifier for the given bot token and chat.
func New(botToken string, chatID int64) (*Notifier, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("creating telegram bot: %w", err)
	}
	return &Notifier{
		bot:    bot,
		chatID: chatID,
		logger: log.With().Str("component", "telegram_notifier").Logger(),
	}, nil
}

// SendRunSummary posts a short summary of one forecast run.
func (n *Notifier) SendRunSummary(rec *models.RunRecord) error {
	msg := tgbotapi.NewMessage(n.chatID, FormatRunSummary(rec))
	if _, err := n.bot.Send(msg); err != nil {
		return fmt.Errorf("sending telegram message: %w", err)
	}
	n.logger.Debug().Str("run_id", rec.RunID).Msg("Run summary sent")
	return nil
}

// FormatRunSummary renders the message body. Split out for testing; the bot
// API itself needs live credentials.
func FormatRunSummary(rec *models.RunRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Unemployment forecast (%s)\n", rec.RegistryVersion)
	fmt.Fprintf(&b, "Base rate: %.2f%%\n", rec.BaseRate)
	fmt.Fprintf(&b, "Forecast: %.2f%% (%+.4f pp)\n", rec.FinalValue, rec.TotalAdjustment)
	fmt.Fprintf(&b, "Confidence: %.1f%%\n", rec.Confidence)
	fmt.Fprintf(&b, "Run %s at %s", rec.RunID, rec.CreatedAt.Format("2006-01-02 15:04 MST"))
	return b.String()
}
