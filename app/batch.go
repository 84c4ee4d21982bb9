package app

import (
	"context"
	"log"
	"sync"

	"golang.org/x/sync/semaphore"

	"scorenorm/domain/run"
	"scorenorm/domain/scorecard"
)

// FileOutcome pairs one input file with its normalization outcome.
// On failure Err is set and Result is nil; Run still carries the
// failed run context so callers can see how far the file got.
type FileOutcome struct {
	Path   string
	Result *scorecard.NormalizeResult
	Run    *run.Context
	Err    error
}

// BatchNormalizer fans normalization across files with bounded
// concurrency. Each file is still normalized synchronously; only the
// files run in parallel, and one file's failure never touches another.
type BatchNormalizer struct {
	service *NormalizerService
	limit   int64
}

// NewBatchNormalizer creates a batch runner. Concurrency below one is
// clamped to serial execution.
func NewBatchNormalizer(service *NormalizerService, concurrency int) *BatchNormalizer {
	if concurrency < 1 {
		concurrency = 1
	}
	return &BatchNormalizer{service: service, limit: int64(concurrency)}
}

// NormalizeAll runs every request and returns outcomes in request
// order
func (b *BatchNormalizer) NormalizeAll(ctx context.Context, reqs []NormalizeRequest) []FileOutcome {
	outcomes := make([]FileOutcome, len(reqs))
	sem := semaphore.NewWeighted(b.limit)
	var wg sync.WaitGroup

	for i, req := range reqs {
		wg.Add(1)
		go func(idx int, r NormalizeRequest) {
			defer wg.Done()

			if err := sem.Acquire(ctx, 1); err != nil {
				outcomes[idx] = FileOutcome{Path: r.Path, Err: err}
				return
			}
			defer sem.Release(1)

			result, rctx, err := b.service.Normalize(ctx, r)
			outcomes[idx] = FileOutcome{Path: r.Path, Result: result, Run: rctx, Err: err}
		}(i, req)
	}
	wg.Wait()

	succeeded := 0
	for _, outcome := range outcomes {
		if outcome.Err == nil {
			succeeded++
		}
	}
	log.Printf("[BatchNormalizer] %d/%d files normalized (concurrency %d)",
		succeeded, len(reqs), b.limit)

	return outcomes
}
