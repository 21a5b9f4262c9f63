package processor

import (
	"context"
	"fmt"

	"datadesc/internal/describe"
	"datadesc/internal/storage"
	"datadesc/internal/table"
)

// SummarizeProcessor loads a registered dataset's file and writes a summary
// for every column back to the store. A run is all-or-nothing per dataset:
// a parse failure leaves previously stored summaries untouched.
type SummarizeProcessor struct {
	Store *storage.Store
}

func (p *SummarizeProcessor) Process(ctx context.Context, datasetID int64) error {
	meta, err := p.Store.GetDataset(ctx, datasetID)
	if err != nil {
		return err
	}

	ds, err := table.Load(meta.Path, meta.Columns)
	if err != nil {
		return fmt.Errorf("dataset %q: %w", meta.Name, err)
	}

	for _, summary := range describe.DescribeAll(ds) {
		if err := p.Store.UpsertColumnSummary(ctx, datasetID, summary); err != nil {
			return err
		}
	}

	return p.Store.SetRowCount(ctx, datasetID, ds.NumRows())
}
