package cleaning

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/baditaflorin/go_txn_normalizer/internal/core/domain"
)

// DefaultBatchSize is how many records a worker takes per job.
const DefaultBatchSize = 256

type recordJob struct {
	start, end int
}

// NormalizeRecords maps the pipeline over records. Output order matches input order.
// Records are independent, so they are spread across a worker pool; only ctx
// cancellation can stop the run early.
func (p *Pipeline) NormalizeRecords(ctx context.Context, records []domain.RawRecord) ([]domain.NormalizedRecord, error) {
	startTime := time.Now()
	out := make([]domain.NormalizedRecord, len(records))
	if len(records) == 0 {
		return out, nil
	}

	workers := p.workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	batchSize := p.batchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if jobsNeeded := (len(records) + batchSize - 1) / batchSize; workers > jobsNeeded {
		workers = jobsNeeded
	}

	jobs := make(chan recordJob, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				for idx := job.start; idx < job.end; idx++ {
					rec := records[idx].EnsureID()
					out[idx] = domain.NormalizedRecord{
						RawRecord:  rec,
						Normalized: p.NormalizeNullable(rec.Text),
					}
				}
			}
		}()
	}

	var err error
dispatch:
	for start := 0; start < len(records); start += batchSize {
		end := start + batchSize
		if end > len(records) {
			end = len(records)
		}
		if err = ctx.Err(); err != nil {
			break
		}
		select {
		case <-ctx.Done():
			err = ctx.Err()
			break dispatch
		case jobs <- recordJob{start: start, end: end}:
		}
	}
	close(jobs)
	wg.Wait()

	if err != nil {
		p.logger.Warn("Record normalization cancelled", "error", err, "records", len(records))
		return nil, err
	}

	p.logger.Debug("Records normalized",
		"records", len(records),
		"workers", workers,
		"duration", time.Since(startTime),
	)
	return out, nil
}
