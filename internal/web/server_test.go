package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"datadesc/internal/processor"
	"datadesc/internal/storage"
)

func setupServer(t *testing.T) (*Server, *storage.Store, int64) {
	t.Helper()
	ctx := context.Background()

	store, err := storage.Open(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	if err := store.InitSchema(ctx); err != nil {
		t.Fatalf("init schema: %v", err)
	}

	path := filepath.Join(t.TempDir(), "traffic.dat")
	data := " 1  0.00\n 2  0.00\n 3  0.02\n 4  0.01\n 5  0.01\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	datasetID, err := store.UpsertDataset(ctx, storage.Dataset{
		Name:    "traffic",
		Path:    path,
		Columns: []string{"vehicles", "time"},
	})
	if err != nil {
		t.Fatalf("upsert dataset: %v", err)
	}

	return &Server{Store: store}, store, datasetID
}

func summarize(t *testing.T, store *storage.Store, datasetID int64) {
	t.Helper()
	proc := &processor.SummarizeProcessor{Store: store}
	if err := proc.Process(context.Background(), datasetID); err != nil {
		t.Fatalf("process: %v", err)
	}
}

func TestDatasetsListing(t *testing.T) {
	server, store, datasetID := setupServer(t)
	summarize(t, store, datasetID)

	rec := httptest.NewRecorder()
	server.Datasets(rec, httptest.NewRequest(http.MethodGet, "/datasets", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var infos []struct {
		Name     string   `json:"name"`
		Columns  []string `json:"columns"`
		RowCount int      `json:"row_count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &infos); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(infos) != 1 || infos[0].Name != "traffic" || infos[0].RowCount != 5 {
		t.Fatalf("unexpected listing: %+v", infos)
	}
	if len(infos[0].Columns) != 2 || infos[0].Columns[0] != "vehicles" {
		t.Fatalf("unexpected columns: %v", infos[0].Columns)
	}
}

func TestDatasetSummaryJSON(t *testing.T) {
	server, store, datasetID := setupServer(t)
	summarize(t, store, datasetID)

	rec := httptest.NewRecorder()
	server.Dataset(rec, httptest.NewRequest(http.MethodGet, "/datasets/traffic", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body struct {
		Dataset  string `json:"dataset"`
		RowCount int    `json:"row_count"`
		Columns  []struct {
			Column string  `json:"column"`
			Count  int     `json:"count"`
			Mean   float64 `json:"mean"`
		} `json:"columns"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Dataset != "traffic" || body.RowCount != 5 {
		t.Fatalf("unexpected body: %+v", body)
	}
	if len(body.Columns) != 2 || body.Columns[0].Column != "vehicles" || body.Columns[0].Mean != 3 {
		t.Fatalf("unexpected columns: %+v", body.Columns)
	}
}

func TestDatasetSummaryNotYetComputed(t *testing.T) {
	server, _, _ := setupServer(t)

	rec := httptest.NewRecorder()
	server.Dataset(rec, httptest.NewRequest(http.MethodGet, "/datasets/traffic", nil))

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestDatasetNotFound(t *testing.T) {
	server, _, _ := setupServer(t)

	rec := httptest.NewRecorder()
	server.Dataset(rec, httptest.NewRequest(http.MethodGet, "/datasets/nope", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestDatasetTable(t *testing.T) {
	server, store, datasetID := setupServer(t)
	summarize(t, store, datasetID)

	rec := httptest.NewRecorder()
	server.Dataset(rec, httptest.NewRequest(http.MethodGet, "/datasets/traffic/table", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.HasPrefix(body, "dataset: traffic\n") {
		t.Fatalf("missing table header: %q", body)
	}
	if !strings.Contains(body, "vehicles") || !strings.Contains(body, "time") {
		t.Fatalf("missing column rows: %q", body)
	}
}

func TestDatasetRefreshEnqueues(t *testing.T) {
	server, store, _ := setupServer(t)

	rec := httptest.NewRecorder()
	server.Dataset(rec, httptest.NewRequest(http.MethodPost, "/datasets/traffic/refresh", nil))

	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}
	pending, err := store.CountQueue(context.Background())
	if err != nil {
		t.Fatalf("count queue: %v", err)
	}
	if pending != 1 {
		t.Fatalf("expected 1 queued item, got %d", pending)
	}
}

func TestDatasetRefreshRequiresPost(t *testing.T) {
	server, _, _ := setupServer(t)

	rec := httptest.NewRecorder()
	server.Dataset(rec, httptest.NewRequest(http.MethodGet, "/datasets/traffic/refresh", nil))

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}
