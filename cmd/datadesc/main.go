package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"datadesc/internal/config"
	"datadesc/internal/fetch"
	"datadesc/internal/manifest"
	"datadesc/internal/processor"
	"datadesc/internal/storage"
	"datadesc/internal/web"
	"datadesc/internal/worker"
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	store, err := storage.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer store.Close()

	if err := store.InitSchema(context.Background()); err != nil {
		log.Fatalf("init schema: %v", err)
	}

	fetcher := &fetch.Fetcher{
		ArchiveURL: cfg.ArchiveURL,
		DataDir:    cfg.DataDir,
		Timeout:    time.Duration(cfg.FetchTimeoutSec) * time.Second,
	}
	if err := fetcher.EnsureData(context.Background()); err != nil {
		log.Fatalf("provision data: %v", err)
	}

	if err := registerDatasets(context.Background(), store, cfg); err != nil {
		log.Fatalf("register datasets: %v", err)
	}

	summaries := &processor.SummarizeProcessor{Store: store}
	pipeline := &processor.PipelineProcessor{Fetch: fetcher, Summaries: summaries}
	queueWorker := &worker.Worker{Store: store, Processor: pipeline}

	server := &web.Server{Store: store}
	mux := http.NewServeMux()
	mux.HandleFunc("/datasets", server.Datasets)
	mux.HandleFunc("/datasets/", server.Dataset)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	httpServer := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
			stop()
		}
	}()

	go runWorker(ctx, queueWorker, time.Duration(cfg.WorkerPollIntervalMS)*time.Millisecond)

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(shutdownCtx)
}

// registerDatasets upserts every manifest entry and queues the ones that
// have no summaries yet.
func registerDatasets(ctx context.Context, store *storage.Store, cfg config.Config) error {
	entries, err := manifest.Load(manifestPath(cfg))
	if err != nil {
		return err
	}

	for _, entry := range entries {
		id, err := store.UpsertDataset(ctx, storage.Dataset{
			Name:    entry.Name,
			Path:    entry.Resolve(cfg.DataDir),
			Columns: entry.Columns,
		})
		if err != nil {
			return err
		}

		count, err := store.CountColumnSummaries(ctx, id)
		if err != nil {
			return err
		}
		if count > 0 {
			continue
		}

		if err := store.EnqueueDataset(ctx, id); err != nil {
			return err
		}
		log.Printf("queued dataset %q for summarization", entry.Name)
	}
	return nil
}

func manifestPath(cfg config.Config) string {
	if filepath.IsAbs(cfg.ManifestFile) {
		return cfg.ManifestFile
	}
	return filepath.Join(cfg.DataDir, cfg.ManifestFile)
}

func runWorker(ctx context.Context, queueWorker *worker.Worker, idleDelay time.Duration) {
	if idleDelay <= 0 {
		idleDelay = 2 * time.Second
	}

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		processed, err := queueWorker.ProcessNext(ctx)
		if err != nil {
			log.Printf("worker error: %v", err)
		}
		if !processed {
			select {
			case <-ctx.Done():
				return
			case <-time.After(idleDelay):
			}
		}
	}
}
