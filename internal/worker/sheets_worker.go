package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"autoshop/internal/events"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	defaultQueueKey      = "sheets:transactions"
	defaultDeadLetterKey = "sheets:transactions:deadletter"
)

var errQueueFull = errors.New("sheets queue is full")

// TransactionAppender writes one submitted transaction to the sheet log.
type TransactionAppender interface {
	AppendTransaction(ctx context.Context, tx events.TransactionEventPayload) error
}

// SyncTask is one queued sheet append. It travels through redis as JSON.
type SyncTask struct {
	Transaction events.TransactionEventPayload `json:"transaction"`
	Attempts    int                            `json:"attempts"`
	LastError   string                         `json:"last_error,omitempty"`
	EnqueuedAt  time.Time                      `json:"enqueued_at"`
}

// SheetsWorker appends submitted transactions to Google Sheets in the
// background. Redis is preferred for the queue, the in-memory channel is used
// when redis is absent or failing.
type SheetsWorker struct {
	sheets        TransactionAppender
	redis         *redis.Client
	retryPolicy   RetryPolicy
	queue         chan SyncTask
	redisQueueKey string
	deadLetterKey string
	pollInterval  time.Duration
	logger        *zerolog.Logger
}

func NewSheetsWorker(sheets TransactionAppender, redisClient *redis.Client, retry RetryPolicy, logger *zerolog.Logger) *SheetsWorker {
	if retry.MaxRetries == 0 {
		retry.MaxRetries = 5
	}
	if retry.InitialDelay == 0 {
		retry.InitialDelay = 2 * time.Second
	}
	if retry.MaxDelay == 0 {
		retry.MaxDelay = 1 * time.Minute
	}
	if retry.BackoffFactor == 0 {
		retry.BackoffFactor = 2
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	return &SheetsWorker{
		sheets:        sheets,
		redis:         redisClient,
		retryPolicy:   retry,
		queue:         make(chan SyncTask, 128),
		redisQueueKey: defaultQueueKey,
		deadLetterKey: defaultDeadLetterKey,
		pollInterval:  2 * time.Second,
		logger:        logger,
	}
}

// HandleTransactionCreated is an event bus handler for EventTransactionCreated.
func (w *SheetsWorker) HandleTransactionCreated(event *events.Event) error {
	var payload events.TransactionEventPayload
	if err := event.Decode(&payload); err != nil {
		return fmt.Errorf("decode transaction event: %w", err)
	}
	return w.Enqueue(context.Background(), payload)
}

// Enqueue schedules tx for appending.
func (w *SheetsWorker) Enqueue(ctx context.Context, tx events.TransactionEventPayload) error {
	if tx.TransactionID == "" {
		return errors.New("transaction id is required")
	}

	task := SyncTask{Transaction: tx, EnqueuedAt: time.Now()}

	if w.redis != nil {
		if err := w.pushRedis(ctx, w.redisQueueKey, task); err != nil {
			w.logger.Warn().Err(err).Msg("sheets_worker: redis push failed, fallback to memory queue")
		} else {
			return nil
		}
	}

	select {
	case w.queue <- task:
		return nil
	default:
		w.logger.Error().Str("transaction_id", tx.TransactionID).Msg("sheets_worker: in-memory queue full, task dropped")
		return errQueueFull
	}
}

// Start runs the consume loop until ctx is done.
func (w *SheetsWorker) Start(ctx context.Context) {
	w.logger.Info().Msg("sheets_worker: started")
	defer w.logger.Info().Msg("sheets_worker: stopped")

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if t, ok := w.tryLocalQueue(); ok {
			w.processTask(ctx, &t)
			continue
		}

		if w.redis != nil {
			if t, ok := w.tryRedis(ctx); ok {
				w.processTask(ctx, &t)
			}
			continue
		}

		select {
		case <-ctx.Done():
			return
		case t := <-w.queue:
			w.processTask(ctx, &t)
		case <-time.After(w.pollInterval):
		}
	}
}

func (w *SheetsWorker) tryLocalQueue() (SyncTask, bool) {
	select {
	case t := <-w.queue:
		return t, true
	default:
		return SyncTask{}, false
	}
}

func (w *SheetsWorker) tryRedis(ctx context.Context) (SyncTask, bool) {
	res, err := w.redis.BRPop(ctx, time.Second, w.redisQueueKey).Result()
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) || errors.Is(err, redis.Nil) {
			return SyncTask{}, false
		}
		w.logger.Error().Err(err).Msg("sheets_worker: redis BRPOP error")
		// avoid a hot loop while redis is unreachable
		select {
		case <-ctx.Done():
		case <-time.After(w.pollInterval):
		}
		return SyncTask{}, false
	}
	if len(res) != 2 {
		return SyncTask{}, false
	}
	var task SyncTask
	if err := json.Unmarshal([]byte(res[1]), &task); err != nil {
		w.logger.Error().Err(err).Msg("sheets_worker: decode redis task")
		return SyncTask{}, false
	}
	return task, true
}

func (w *SheetsWorker) processTask(ctx context.Context, task *SyncTask) {
	err := w.retryPolicy.Do(ctx, func(ctx context.Context) error {
		task.Attempts++
		return w.sheets.AppendTransaction(ctx, task.Transaction)
	})
	if err == nil {
		w.logger.Debug().
			Str("transaction_id", task.Transaction.TransactionID).
			Int("attempts", task.Attempts).
			Msg("sheets_worker: transaction appended")
		return
	}

	task.LastError = err.Error()
	w.logger.Error().Err(err).
		Str("transaction_id", task.Transaction.TransactionID).
		Int("attempts", task.Attempts).
		Msg("sheets_worker: append failed")
	w.pushDeadLetter(ctx, task)
}

func (w *SheetsWorker) pushRedis(ctx context.Context, key string, task SyncTask) error {
	data, err := json.Marshal(task)
	if err != nil {
		return err
	}
	return w.redis.LPush(ctx, key, data).Err()
}

func (w *SheetsWorker) pushDeadLetter(ctx context.Context, task *SyncTask) {
	if w.redis == nil {
		return
	}
	// ctx may already be cancelled on shutdown
	if err := w.pushRedis(context.WithoutCancel(ctx), w.deadLetterKey, *task); err != nil {
		w.logger.Error().Err(err).Str("transaction_id", task.Transaction.TransactionID).Msg("sheets_worker: deadletter push")
	}
}
