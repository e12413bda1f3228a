package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"autoshop/internal/aggregate"
	"autoshop/internal/clock"
	"autoshop/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	logger := zerolog.Nop()
	db, err := NewDB(":memory:", &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestNewDB_DirectoryCreation(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "dir", "test.db")
	logger := zerolog.Nop()

	db, err := NewDB(dbPath, &logger)
	require.NoError(t, err)
	defer db.Close()

	assert.FileExists(t, dbPath)
	assert.Equal(t, dbPath, db.Path())
}

func TestDB_Ping(t *testing.T) {
	db := setupTestDB(t)
	assert.NoError(t, db.Ping(context.Background()))
}

func TestUpsertAndListRaw(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	_, err := db.UpsertDocument(ctx, models.CollectionBookings, "b1", models.RawRecord{
		"status":   "confirmed",
		"date":     "2026-10-12T09:00:00+08:00",
		"services": []any{"Oil change"},
	})
	require.NoError(t, err)

	id, err := db.UpsertDocument(ctx, models.CollectionBookings, "", models.RawRecord{"status": "pending"})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	// replaces the body of b1
	_, err = db.UpsertDocument(ctx, models.CollectionBookings, "b1", models.RawRecord{"status": "completed"})
	require.NoError(t, err)

	records, err := db.ListRaw(ctx, models.CollectionBookings)
	require.NoError(t, err)
	require.Len(t, records, 2)

	byID := map[string]models.RawRecord{}
	for _, r := range records {
		byID[r["id"].(string)] = r
	}
	assert.Equal(t, "completed", byID["b1"]["status"])
	assert.Equal(t, "pending", byID[id]["status"])

	other, err := db.ListRaw(ctx, models.CollectionCustomers)
	require.NoError(t, err)
	assert.Empty(t, other)

	n, err := db.CountDocuments(ctx, models.CollectionBookings)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestListRaw_KeepsDocumentID(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	_, err := db.UpsertDocument(ctx, models.CollectionCustomers, "row-1", models.RawRecord{"_id": "legacy-1"})
	require.NoError(t, err)

	records, err := db.ListRaw(ctx, models.CollectionCustomers)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "legacy-1", records[0]["_id"])
	assert.NotContains(t, records[0], "id")
}

func TestUpsertDocument_RequiresCollection(t *testing.T) {
	db := setupTestDB(t)
	_, err := db.UpsertDocument(context.Background(), "", "x", models.RawRecord{})
	assert.Error(t, err)
}

func TestInsertTransaction_RoundTrip(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	pht := time.FixedZone("PHT", 8*60*60)
	created := time.Date(2026, time.October, 14, 9, 15, 0, 0, pht)

	tx := &models.Transaction{
		ID:            "tx-1",
		BookingID:     "b1",
		CustomerID:    "c1",
		Reference:     "TX-20261014-ABC123",
		PaymentMethod: models.PaymentGCash,
		TotalPrice:    2300,
		Services: []models.Service{
			{Label: "Brake pads", Mechanic: "Jo", Status: models.StatusCompleted, Price: 1200, Quantity: 2, Discount: 100, Total: 2300},
		},
		CreatedAt: created,
	}
	require.NoError(t, db.InsertTransaction(ctx, tx))

	err := db.InsertTransaction(ctx, tx)
	assert.ErrorIs(t, err, ErrTransactionExists)

	records, err := db.ListRaw(ctx, models.CollectionTransactions)
	require.NoError(t, err)
	require.Len(t, records, 1)

	n := aggregate.NewNormalizer(clock.Fixed{At: created.Add(time.Hour)})
	got := n.NormalizeTransaction(records[0])

	assert.Equal(t, tx.ID, got.ID)
	assert.Equal(t, tx.BookingID, got.BookingID)
	assert.Equal(t, tx.CustomerID, got.CustomerID)
	assert.Equal(t, tx.Reference, got.Reference)
	assert.Equal(t, tx.PaymentMethod, got.PaymentMethod)
	assert.Equal(t, tx.TotalPrice, got.TotalPrice)
	assert.Equal(t, tx.Services, got.Services)
	assert.True(t, created.Equal(got.CreatedAt))
}

func TestInsertTransaction_RequiresID(t *testing.T) {
	db := setupTestDB(t)
	assert.Error(t, db.InsertTransaction(context.Background(), &models.Transaction{}))
	assert.Error(t, db.InsertTransaction(context.Background(), nil))
}

func TestBackupAndPrune(t *testing.T) {
	dir := t.TempDir()
	logger := zerolog.Nop()
	db, err := NewDB(filepath.Join(dir, "shop.db"), &logger)
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	_, err = db.UpsertDocument(ctx, models.CollectionBookings, "b1", models.RawRecord{"status": "pending"})
	require.NoError(t, err)

	backups := filepath.Join(dir, "backups")
	path, err := db.Backup(ctx, backups, time.Now())
	require.NoError(t, err)
	assert.FileExists(t, path)

	restored, err := NewDB(path, &logger)
	require.NoError(t, err)
	n, err := restored.CountDocuments(ctx, models.CollectionBookings)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	restored.Close()

	oldFile := filepath.Join(backups, "backup_old.db")
	require.NoError(t, os.WriteFile(oldFile, []byte("old"), 0o644))
	oldTime := time.Now().AddDate(0, 0, -2)
	require.NoError(t, os.Chtimes(oldFile, oldTime, oldTime))

	removed, err := db.PruneBackups(backups, 1, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.NoFileExists(t, oldFile)
	assert.FileExists(t, path)

	removed, err = db.PruneBackups(backups, 0, time.Now())
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestBackup_MemoryRejected(t *testing.T) {
	db := setupTestDB(t)
	_, err := db.Backup(context.Background(), t.TempDir(), time.Now())
	assert.Error(t, err)
}
