package lineprocessor

import (
	"bufio"
	"context"
	"io"
	"sync"
	"time"

	"github.com/baditaflorin/go_txn_normalizer/internal/ports"
)

// MaxJobQueueSize limits the number of pending jobs
const MaxJobQueueSize = 32

// LineJob is a batch of lines handed to a worker
type LineJob struct {
	Lines   *[]string
	ChunkID int
}

// LineJobResult holds the normalized output of one batch
type LineJobResult struct {
	Output  *[]byte
	Lines   int
	ChunkID int
}

type readSummary struct {
	lines int
	bytes int64
	err   error
}

// processLinesParallel fans batches out to a worker pool and writes the
// results back in chunk order.
func (p *Processor) processLinesParallel(
	ctx context.Context,
	reader io.Reader,
	writer io.Writer,
) (ports.StreamStats, error) {
	startTime := time.Now()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan LineJob, MaxJobQueueSize)
	results := make(chan LineJobResult, p.workers)

	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go p.lineWorker(jobs, results, &wg)
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	summary := make(chan readSummary, 1)
	go func() {
		defer close(jobs)
		summary <- p.readBatches(ctx, reader, jobs)
	}()

	var stats ports.StreamStats
	var writeErr error
	pending := make(map[int]LineJobResult)
	nextChunkID := 0

	for result := range results {
		pending[result.ChunkID] = result

		for {
			next, ok := pending[nextChunkID]
			if !ok {
				break
			}
			delete(pending, nextChunkID)
			nextChunkID++

			// Keep draining after a write error so workers never block.
			if writeErr == nil {
				if _, err := writer.Write(*next.Output); err != nil {
					writeErr = err
					cancel()
				} else {
					stats.LinesWritten += next.Lines
				}
			}
			p.outputPool.Put(next.Output)
		}
	}

	read := <-summary
	stats.LinesRead = read.lines
	stats.BytesProcessed = read.bytes
	stats.ProcessingTime = time.Since(startTime)

	if writeErr != nil {
		p.logger.Warn("Error writing output", "error", writeErr)
		return stats, writeErr
	}
	if read.err != nil {
		p.logger.Warn("Parallel line processing stopped", "error", read.err)
		return stats, read.err
	}

	p.logger.Debug("Parallel line processing completed",
		"lines", stats.LinesRead,
		"bytes_processed", stats.BytesProcessed,
		"workers", p.workers,
		"duration", stats.ProcessingTime,
	)
	return stats, nil
}

// readBatches splits the input into batches of lines and queues them
func (p *Processor) readBatches(ctx context.Context, reader io.Reader, jobs chan<- LineJob) readSummary {
	var summary readSummary
	br := bufio.NewReaderSize(reader, p.chunkSize)
	chunkID := 0
	batch := p.batchPool.Get()

	send := func() error {
		if len(*batch) == 0 {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		select {
		case jobs <- LineJob{Lines: batch, ChunkID: chunkID}:
			chunkID++
			batch = p.batchPool.Get()
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	for {
		line, err := br.ReadString('\n')
		if len(line) > 0 {
			summary.lines++
			summary.bytes += int64(len(line))
			*batch = append(*batch, trimLineEnding(line))

			if len(*batch) >= p.batchSize {
				if serr := send(); serr != nil {
					summary.err = serr
					return summary
				}
			}
		}

		if err != nil {
			if err != io.EOF {
				summary.err = err
				return summary
			}
			summary.err = send()
			return summary
		}
	}
}

// lineWorker normalizes batches until the jobs channel is closed
func (p *Processor) lineWorker(
	jobs <-chan LineJob,
	results chan<- LineJobResult,
	wg *sync.WaitGroup,
) {
	defer wg.Done()

	for job := range jobs {
		out := p.outputPool.Get()
		for _, line := range *job.Lines {
			*out = append(*out, p.normalizer.Normalize(line)...)
			*out = append(*out, '\n')
		}
		lines := len(*job.Lines)
		p.batchPool.Put(job.Lines)

		results <- LineJobResult{
			Output:  out,
			Lines:   lines,
			ChunkID: job.ChunkID,
		}
	}
}
