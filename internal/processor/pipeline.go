package processor

import (
	"context"

	"datadesc/internal/fetch"
)

type PipelineProcessor struct {
	Fetch     *fetch.Fetcher
	Summaries *SummarizeProcessor
}

func (p *PipelineProcessor) Process(ctx context.Context, datasetID int64) error {
	if p.Fetch != nil {
		if err := p.Fetch.EnsureData(ctx); err != nil {
			return err
		}
	}
	if p.Summaries != nil {
		if err := p.Summaries.Process(ctx, datasetID); err != nil {
			return err
		}
	}
	return nil
}
