package database

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"autoshop/internal/domain"
	"autoshop/internal/models"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
)

// ErrTransactionExists is returned when a transaction id is already stored.
// Transactions are immutable once written.
var ErrTransactionExists = domain.ErrTransactionExists

// UpsertDocument stores doc under collection/id, replacing any previous body.
// An empty id is generated and returned.
func (db *DB) UpsertDocument(ctx context.Context, collection, id string, doc models.RawRecord) (string, error) {
	if collection == "" {
		return "", errors.New("collection is required")
	}
	if id == "" {
		id = uuid.NewString()
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("failed to encode document: %w", err)
	}

	now := time.Now().UTC()
	query := `INSERT INTO documents (collection, id, body, created_at, updated_at)
              VALUES (?, ?, ?, ?, ?)
              ON CONFLICT(collection, id) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at`
	if _, err := db.ExecContext(ctx, query, collection, id, string(body), now, now); err != nil {
		return "", fmt.Errorf("failed to upsert document: %w", err)
	}
	return id, nil
}

// ListRaw returns every document of a collection in insertion order. The row
// id is copied into the document when the body carries none.
func (db *DB) ListRaw(ctx context.Context, collection string) ([]models.RawRecord, error) {
	query := `SELECT id, body FROM documents WHERE collection = ? ORDER BY created_at ASC, id ASC`
	rows, err := db.QueryContext(ctx, query, collection)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", collection, err)
	}
	defer rows.Close()

	records := make([]models.RawRecord, 0)
	for rows.Next() {
		var id, body string
		if err := rows.Scan(&id, &body); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}

		record, err := decodeBody(body)
		if err != nil {
			db.logger.Warn().Err(err).Str("collection", collection).Str("id", id).Msg("skipping undecodable document")
			continue
		}
		if _, ok := record["id"]; !ok {
			if _, ok := record["_id"]; !ok {
				record["id"] = id
			}
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %s: %w", collection, err)
	}
	return records, nil
}

func decodeBody(body string) (models.RawRecord, error) {
	dec := json.NewDecoder(bytes.NewBufferString(body))
	dec.UseNumber()

	var record models.RawRecord
	if err := dec.Decode(&record); err != nil {
		return nil, err
	}
	if record == nil {
		return nil, errors.New("document is not an object")
	}
	return record, nil
}

func (db *DB) InsertTransaction(ctx context.Context, tx *models.Transaction) error {
	if tx == nil || tx.ID == "" {
		return errors.New("transaction id is required")
	}

	body, err := json.Marshal(tx.Document())
	if err != nil {
		return fmt.Errorf("failed to encode transaction: %w", err)
	}

	created := tx.CreatedAt.UTC()
	query := `INSERT INTO documents (collection, id, body, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`
	_, err = db.ExecContext(ctx, query, models.CollectionTransactions, tx.ID, string(body), created, created)
	if err != nil {
		if isConstraintViolation(err) {
			return fmt.Errorf("%w: %s", ErrTransactionExists, tx.ID)
		}
		return fmt.Errorf("failed to insert transaction: %w", err)
	}
	return nil
}

// CountDocuments reports how many documents collection holds.
func (db *DB) CountDocuments(ctx context.Context, collection string) (int, error) {
	var n int
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents WHERE collection = ?`, collection).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", collection, err)
	}
	return n, nil
}

func isConstraintViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.Code == sqlite3.ErrConstraint
}
