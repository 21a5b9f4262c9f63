package worker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"datadesc/internal/processor"
	"datadesc/internal/storage"
)

func TestWorkerProcessesQueue(t *testing.T) {
	ctx := context.Background()
	store, err := storage.Open(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	if err := store.InitSchema(ctx); err != nil {
		t.Fatalf("init schema: %v", err)
	}

	path := filepath.Join(t.TempDir(), "counts.dat")
	if err := os.WriteFile(path, []byte(" 2  0.5\n 4  1.5\n 6  2.5\n"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	datasetID, err := store.UpsertDataset(ctx, storage.Dataset{
		Name:    "counts",
		Path:    path,
		Columns: []string{"n", "x"},
	})
	if err != nil {
		t.Fatalf("upsert dataset: %v", err)
	}
	if err := store.EnqueueDataset(ctx, datasetID); err != nil {
		t.Fatalf("enqueue dataset: %v", err)
	}

	w := &Worker{
		Store:     store,
		Processor: &processor.SummarizeProcessor{Store: store},
	}

	processed, err := w.ProcessNext(ctx)
	if err != nil {
		t.Fatalf("process next: %v", err)
	}
	if !processed {
		t.Fatalf("expected queue item to be processed")
	}

	summary, err := store.GetColumnSummary(ctx, datasetID, "n")
	if err != nil {
		t.Fatalf("get summary: %v", err)
	}
	if summary.Count != 3 || summary.Mean != 4 {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	pending, err := store.CountQueue(ctx)
	if err != nil {
		t.Fatalf("count queue: %v", err)
	}
	if pending != 0 {
		t.Fatalf("expected empty queue, got %d pending", pending)
	}

	// Drained queue reports nothing to do.
	processed, err = w.ProcessNext(ctx)
	if err != nil {
		t.Fatalf("process next on empty queue: %v", err)
	}
	if processed {
		t.Fatalf("expected no work on empty queue")
	}
}

func TestWorkerLeavesQueueItemOnFailure(t *testing.T) {
	ctx := context.Background()
	store, err := storage.Open(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	if err := store.InitSchema(ctx); err != nil {
		t.Fatalf("init schema: %v", err)
	}

	datasetID, err := store.UpsertDataset(ctx, storage.Dataset{
		Name:    "ghost",
		Path:    filepath.Join(t.TempDir(), "ghost.dat"),
		Columns: []string{"x"},
	})
	if err != nil {
		t.Fatalf("upsert dataset: %v", err)
	}
	if err := store.EnqueueDataset(ctx, datasetID); err != nil {
		t.Fatalf("enqueue dataset: %v", err)
	}

	w := &Worker{
		Store:     store,
		Processor: &processor.SummarizeProcessor{Store: store},
	}

	if _, err := w.ProcessNext(ctx); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected os.ErrNotExist, got %v", err)
	}

	pending, err := store.CountQueue(ctx)
	if err != nil {
		t.Fatalf("count queue: %v", err)
	}
	if pending != 1 {
		t.Fatalf("expected failed item to stay queued, got %d pending", pending)
	}
}
