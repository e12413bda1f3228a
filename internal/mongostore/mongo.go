package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"autoshop/internal/domain"
	"autoshop/internal/models"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var errNoDatabase = errors.New("mongo database is nil")

type Config struct {
	URI      string
	Database string
	Username string
	Password string
	Timeout  time.Duration
}

// Store reads and writes shop documents in MongoDB collections.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
	logger *zerolog.Logger
}

func Connect(ctx context.Context, cfg Config, logger *zerolog.Logger) (*Store, error) {
	if cfg.URI == "" {
		return nil, errors.New("mongo uri is required")
	}
	if cfg.Database == "" {
		return nil, errors.New("mongo database name is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	clientOptions := options.Client().ApplyURI(cfg.URI)
	if cfg.Username != "" && cfg.Password != "" {
		clientOptions.SetAuth(options.Credential{
			Username: cfg.Username,
			Password: cfg.Password,
		})
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	return New(client, client.Database(cfg.Database), logger), nil
}

func New(client *mongo.Client, db *mongo.Database, logger *zerolog.Logger) *Store {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	l := logger.With().Str("component", "mongostore").Logger()
	return &Store{client: client, db: db, logger: &l}
}

func (s *Store) ListRaw(ctx context.Context, collection string) ([]models.RawRecord, error) {
	if s.db == nil {
		return nil, errNoDatabase
	}

	cursor, err := s.db.Collection(collection).Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", collection, err)
	}
	defer cursor.Close(ctx)

	var docs []bson.M
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", collection, err)
	}

	records := make([]models.RawRecord, 0, len(docs))
	for _, doc := range docs {
		records = append(records, models.RawRecord(toRaw(doc).(map[string]any)))
	}
	return records, nil
}

func (s *Store) InsertTransaction(ctx context.Context, tx *models.Transaction) error {
	if s.db == nil {
		return errNoDatabase
	}
	if tx == nil || tx.ID == "" {
		return errors.New("transaction id is required")
	}

	doc := bson.M(tx.Document())
	doc["_id"] = tx.ID
	doc["createdAt"] = primitive.NewDateTimeFromTime(tx.CreatedAt)

	if _, err := s.db.Collection(models.CollectionTransactions).InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %s", domain.ErrTransactionExists, tx.ID)
		}
		return fmt.Errorf("failed to insert transaction: %w", err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	if s.client == nil {
		return errNoDatabase
	}
	return s.client.Ping(ctx, nil)
}

func (s *Store) Close() error {
	if s.client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// toRaw replaces BSON container and scalar types with plain Go values so the
// normalizer never sees driver types.
func toRaw(v any) any {
	switch val := v.(type) {
	case bson.M:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = toRaw(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = toRaw(item)
		}
		return out
	case bson.D:
		out := make(map[string]any, len(val))
		for _, e := range val {
			out[e.Key] = toRaw(e.Value)
		}
		return out
	case bson.A:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = toRaw(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = toRaw(item)
		}
		return out
	case primitive.ObjectID:
		return val.Hex()
	case primitive.DateTime:
		return val.Time()
	case primitive.Timestamp:
		return time.Unix(int64(val.T), 0)
	case primitive.Decimal128:
		return val.String()
	case primitive.Null, primitive.Undefined:
		return nil
	default:
		return v
	}
}
