package worker

import (
	"context"
	"database/sql"

	"datadesc/internal/storage"
)

type Processor interface {
	Process(ctx context.Context, datasetID int64) error
}

type Worker struct {
	Store     *storage.Store
	Processor Processor
}

// ProcessNext takes the oldest pending dataset off the queue and summarizes
// it. An empty queue returns (false, nil).
func (w *Worker) ProcessNext(ctx context.Context) (bool, error) {
	queueID, datasetID, err := w.Store.DequeueDataset(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, err
	}

	if err := w.Processor.Process(ctx, datasetID); err != nil {
		return false, err
	}

	if err := w.Store.MarkProcessed(ctx, queueID); err != nil {
		return false, err
	}

	return true, nil
}
