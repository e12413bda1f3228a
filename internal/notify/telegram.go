package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"autoshop/internal/domain"
	"autoshop/internal/format"
	"autoshop/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

var errNoChats = errors.New("no manager chats configured")

// TelegramNotifier sends reports to shop managers over a Telegram bot.
type TelegramNotifier struct {
	bot            domain.TelegramSender
	chatIDs        []int64
	location       *time.Location
	currencySymbol string
	logger         *zerolog.Logger
}

func NewTelegramNotifier(
	bot domain.TelegramSender,
	chatIDs []int64,
	loc *time.Location,
	currencySymbol string,
	logger *zerolog.Logger,
) *TelegramNotifier {
	if currencySymbol == "" {
		currencySymbol = format.DefaultCurrencySymbol
	}
	return &TelegramNotifier{
		bot:            bot,
		chatIDs:        chatIDs,
		location:       loc,
		currencySymbol: currencySymbol,
		logger:         logger,
	}
}

// NewBotAPI creates the Telegram client used by the notifier.
func NewBotAPI(token string, debug bool) (*tgbotapi.BotAPI, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot init: %w", err)
	}
	bot.Debug = debug
	return bot, nil
}

func (n *TelegramNotifier) SendMarkdown(chatID int64, text string) (tgbotapi.Message, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = models.ParseModeMarkdown
	return n.bot.Send(msg)
}

// SendDailySummary sends one message per manager chat. A failed chat does not
// stop the others; the joined error is returned.
func (n *TelegramNotifier) SendDailySummary(ctx context.Context, summary *models.DashboardSummary, sales *models.SalesReport) error {
	if len(n.chatIDs) == 0 {
		return errNoChats
	}
	text := FormatDailySummary(summary, sales, n.location, n.currencySymbol)

	var errs []error
	for _, chatID := range n.chatIDs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := n.SendMarkdown(chatID, text); err != nil {
			n.logger.Error().Err(err).Int64("chat_id", chatID).Msg("failed to send daily summary")
			errs = append(errs, fmt.Errorf("chat %d: %w", chatID, err))
		}
	}
	return errors.Join(errs...)
}

// FormatDailySummary renders the Markdown body of the daily report.
func FormatDailySummary(summary *models.DashboardSummary, sales *models.SalesReport, loc *time.Location, currencySymbol string) string {
	var message strings.Builder

	generated := time.Time{}
	if summary != nil {
		generated = summary.GeneratedAt
	}
	message.WriteString(fmt.Sprintf("📊 *Daily report* %s\n\n", format.Date(generated, loc)))

	if summary != nil {
		message.WriteString("🔧 *Bookings today*\n")
		writeCounts(&message, summary.StatusToday)
		message.WriteString("\n🗓 *This month*\n")
		writeCounts(&message, summary.StatusMonth)
		message.WriteString(fmt.Sprintf("\n👥 New customers: *%d*\n", summary.NewCount))
		message.WriteString(fmt.Sprintf("🔁 Returning customers: *%d*\n", summary.ReturningCount))
		writeRecent(&message, summary.RecentBookings, loc)
	}

	if sales != nil {
		message.WriteString(fmt.Sprintf("\n💰 Sales (%s): *%s* in %d transactions\n",
			sales.Period, format.CurrencyWith(currencySymbol, sales.Total), sales.Count))
	}
	return message.String()
}

func writeRecent(b *strings.Builder, bookings []models.Booking, loc *time.Location) {
	if len(bookings) == 0 {
		return
	}
	b.WriteString("\n🚗 *Latest bookings*\n")
	for _, bk := range bookings {
		car := bk.CarModel
		if car == "" {
			car = "—"
		}
		b.WriteString(fmt.Sprintf("%s, %s (%s), done: %s\n",
			tgbotapi.EscapeText(models.ParseModeMarkdown, car),
			format.DateTime(bk.Date, loc),
			statusLabel(bk.Status),
			format.DatePtr(bk.CompletedAt, loc)))
	}
}

func writeCounts(b *strings.Builder, counts models.StatusCounts) {
	for _, s := range models.AllStatuses {
		b.WriteString(fmt.Sprintf("%s: *%d*\n", statusLabel(s), counts[s]))
	}
}

func statusLabel(s models.Status) string {
	lower := strings.ToLower(string(s))
	return strings.ToUpper(lower[:1]) + lower[1:]
}
