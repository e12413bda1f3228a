package service

import (
	"context"
	"io"
	"time"

	"autoshop/internal/clock"
	"autoshop/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
)

var pht = time.FixedZone("PHT", 8*60*60)

// testNow is Wednesday 14 Oct 2026, 10:30 shop time.
var testNow = time.Date(2026, time.October, 14, 10, 30, 0, 0, pht)

func testClock() clock.Clock {
	return clock.Fixed{At: testNow}
}

func testLogger() *zerolog.Logger {
	l := zerolog.New(io.Discard)
	return &l
}

type mockSource struct {
	mock.Mock
}

func (m *mockSource) ListRaw(ctx context.Context, collection string) ([]models.RawRecord, error) {
	args := m.Called(ctx, collection)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.RawRecord), args.Error(1)
}

type mockStore struct {
	mock.Mock
}

func (m *mockStore) InsertTransaction(ctx context.Context, tx *models.Transaction) error {
	return m.Called(ctx, tx).Error(0)
}

type mockBus struct {
	mock.Mock
}

func (m *mockBus) PublishJSON(eventType string, payload interface{}) error {
	return m.Called(eventType, payload).Error(0)
}
