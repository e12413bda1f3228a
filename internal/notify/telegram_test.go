package notify

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"autoshop/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockBot struct {
	mock.Mock
}

func (m *mockBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	args := m.Called(c)
	return args.Get(0).(tgbotapi.Message), args.Error(1)
}

var pht = time.FixedZone("PHT", 8*60*60)

func testSummary() *models.DashboardSummary {
	return &models.DashboardSummary{
		GeneratedAt:    time.Date(2026, time.October, 14, 19, 0, 0, 0, pht),
		StatusToday:    models.StatusCounts{models.StatusPending: 2, models.StatusCompleted: 1},
		StatusMonth:    models.StatusCounts{models.StatusConfirmed: 7},
		NewCount:       3,
		ReturningCount: 4,
		RecentBookings: []models.Booking{
			{ID: "bk-2", CarModel: "Honda_City", Status: models.StatusRepairing, Date: time.Date(2026, time.October, 14, 9, 30, 0, 0, pht)},
		},
	}
}

func TestFormatDailySummary(t *testing.T) {
	sales := &models.SalesReport{Period: "daily", Total: 12500.5, Count: 4}
	text := FormatDailySummary(testSummary(), sales, pht, "₱")

	assert.Contains(t, text, "*Daily report* Oct 14, 2026")
	assert.Contains(t, text, "Pending: *2*")
	assert.Contains(t, text, "Completed: *1*")
	assert.Contains(t, text, "Confirmed: *7*")
	assert.Contains(t, text, "Cancelled: *0*")
	assert.Contains(t, text, "New customers: *3*")
	assert.Contains(t, text, "Returning customers: *4*")
	assert.Contains(t, text, "*₱12,500.50* in 4 transactions")
	assert.Contains(t, text, "Honda\\_City, Oct 14, 2026 9:30 AM (Repairing), done: —")
}

func TestFormatDailySummary_NilParts(t *testing.T) {
	text := FormatDailySummary(nil, nil, pht, "₱")
	assert.Contains(t, text, "—")
	assert.NotContains(t, text, "Sales")
}

func TestTelegramNotifier_SendDailySummary(t *testing.T) {
	bot := new(mockBot)
	logger := zerolog.New(io.Discard)
	n := NewTelegramNotifier(bot, []int64{10, 20}, pht, "", &logger)

	bot.On("Send", mock.MatchedBy(func(c tgbotapi.Chattable) bool {
		msg, ok := c.(tgbotapi.MessageConfig)
		return ok && msg.ChatID == 10 && msg.ParseMode == models.ParseModeMarkdown
	})).Return(tgbotapi.Message{}, nil).Once()
	bot.On("Send", mock.MatchedBy(func(c tgbotapi.Chattable) bool {
		msg, ok := c.(tgbotapi.MessageConfig)
		return ok && msg.ChatID == 20
	})).Return(tgbotapi.Message{}, errors.New("blocked")).Once()

	err := n.SendDailySummary(context.Background(), testSummary(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat 20")
	bot.AssertExpectations(t)
}

func TestTelegramNotifier_NoChats(t *testing.T) {
	logger := zerolog.New(io.Discard)
	n := NewTelegramNotifier(new(mockBot), nil, pht, "₱", &logger)
	assert.ErrorIs(t, n.SendDailySummary(context.Background(), testSummary(), nil), errNoChats)
}
