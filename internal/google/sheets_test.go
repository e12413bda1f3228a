package google

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"autoshop/internal/events"
	"autoshop/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

func setupMockServer(ctx context.Context, t *testing.T) (*http.ServeMux, *SheetsService) {
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	srv, err := sheets.NewService(ctx, option.WithEndpoint(server.URL), option.WithoutAuthentication())
	require.NoError(t, err)
	return mux, NewWithService(srv, "shop_tid")
}

func testReport() *models.SalesReport {
	return &models.SalesReport{
		Period:      "weekly",
		GeneratedAt: time.Date(2026, time.October, 14, 19, 0, 0, 0, time.UTC),
		Buckets:     []models.Bucket{{Label: "Sun", Amount: 0}, {Label: "Mon", Amount: 100}},
		Total:       100,
		Count:       1,
	}
}

func TestSalesRowValues(t *testing.T) {
	values := salesRowValues(testReport())

	expected := [][]interface{}{
		{"Period", "weekly", "2026-10-14 19:00"},
		{"Slot", "Amount"},
		{"Sun", 0.0},
		{"Mon", 100.0},
		{"Total", 100.0},
		{"Transactions", 1},
	}
	assert.Equal(t, expected, values)
}

func TestTransactionRowValues(t *testing.T) {
	tx := events.TransactionEventPayload{
		TransactionID: "id-1",
		BookingID:     "b1",
		Reference:     "TX-20261014-ABCDEF",
		PaymentMethod: "cash",
		TotalPrice:    500,
		ServiceCount:  1,
		CreatedAt:     time.Date(2026, time.October, 14, 9, 5, 0, 0, time.UTC),
	}
	assert.Equal(t, []interface{}{"TX-20261014-ABCDEF", "id-1", "b1", "", "cash", 500.0, 1, "2026-10-14 09:05"}, transactionRowValues(tx))
}

func TestSheetsService_TestConnection(t *testing.T) {
	ctx := context.Background()
	mux, s := setupMockServer(ctx, t)
	mux.HandleFunc("/v4/spreadsheets/shop_tid/values/Sales!A1", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(sheets.ValueRange{Values: [][]interface{}{{"Period"}}})
	})
	assert.NoError(t, s.TestConnection(ctx))
}

func TestSheetsService_ReplaceSalesSheet(t *testing.T) {
	ctx := context.Background()
	mux, s := setupMockServer(ctx, t)

	cleared := false
	var written sheets.ValueRange
	mux.HandleFunc("/v4/spreadsheets/shop_tid/values/Sales!A:Z:clear", func(w http.ResponseWriter, r *http.Request) {
		cleared = true
		_ = json.NewEncoder(w).Encode(sheets.ClearValuesResponse{})
	})
	mux.HandleFunc("/v4/spreadsheets/shop_tid/values/Sales!A1", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "RAW", r.URL.Query().Get("valueInputOption"))
		_ = json.NewDecoder(r.Body).Decode(&written)
		_ = json.NewEncoder(w).Encode(sheets.UpdateValuesResponse{})
	})

	require.NoError(t, s.ReplaceSalesSheet(ctx, testReport()))
	assert.True(t, cleared)
	require.Len(t, written.Values, 6)
	assert.Equal(t, "Mon", written.Values[3][0])

	assert.Error(t, s.ReplaceSalesSheet(ctx, nil))
}

func TestSheetsService_ReplaceSalesSheet_ClearFails(t *testing.T) {
	ctx := context.Background()
	mux, s := setupMockServer(ctx, t)
	mux.HandleFunc("/v4/spreadsheets/shop_tid/values/Sales!A:Z:clear", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":500,"message":"boom"}}`, http.StatusInternalServerError)
	})
	assert.Error(t, s.ReplaceSalesSheet(ctx, testReport()))
}

func TestSheetsService_AppendTransaction(t *testing.T) {
	ctx := context.Background()
	mux, s := setupMockServer(ctx, t)

	called := false
	mux.HandleFunc("/v4/spreadsheets/shop_tid/values/Transactions!A:A:append", func(w http.ResponseWriter, r *http.Request) {
		called = true
		_ = json.NewEncoder(w).Encode(sheets.AppendValuesResponse{})
	})

	require.NoError(t, s.AppendTransaction(ctx, events.TransactionEventPayload{TransactionID: "t1", CreatedAt: time.Now()}))
	assert.True(t, called)
	assert.Error(t, s.AppendTransaction(ctx, events.TransactionEventPayload{}))
}

func TestNewSheetsService_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := NewSheetsService(ctx, "creds.json", "")
	assert.Error(t, err)

	_, err = NewSheetsService(ctx, filepath.Join(t.TempDir(), "missing.json"), "tid")
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{}"), 0o600))
	_, err = NewSheetsService(ctx, bad, "tid")
	assert.Error(t, err)
}
