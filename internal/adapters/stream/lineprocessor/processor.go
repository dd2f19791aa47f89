package lineprocessor

import (
	"bufio"
	"context"
	"io"
	"runtime"
	"strings"
	"time"

	"github.com/baditaflorin/go_txn_normalizer/internal/pool"
	"github.com/baditaflorin/go_txn_normalizer/internal/ports"
)

// Constants for line processing
const (
	// DefaultChunkSize defines the default read buffer size
	DefaultChunkSize = 64 * 1024 // 64KB

	// DefaultBatchSize defines how many lines a worker takes at a time
	DefaultBatchSize = 100

	// ContextCheckFrequency defines how often to check for context cancellation
	ContextCheckFrequency = 500 // lines
)

// ProcessingConfig defines configuration for line processing
type ProcessingConfig struct {
	ChunkSize   int
	BatchSize   int
	Workers     int
	UseParallel bool
}

// Processor normalizes a stream line by line. Every input line produces
// exactly one output line, in input order, so the output stays aligned with
// the source.
type Processor struct {
	logger     ports.Logger
	normalizer ports.Normalizer

	batchPool  *pool.LineBatchPool
	outputPool *pool.BufferPool

	chunkSize   int
	batchSize   int
	workers     int
	useParallel bool
}

var _ ports.LineStreamProcessor = (*Processor)(nil)

// NewProcessor creates a new line processor
func NewProcessor(
	logger ports.Logger,
	normalizer ports.Normalizer,
	config ProcessingConfig,
) *Processor {
	if config.ChunkSize <= 0 {
		config.ChunkSize = DefaultChunkSize
	}
	if config.BatchSize <= 0 {
		config.BatchSize = DefaultBatchSize
	}
	if config.Workers <= 0 {
		config.Workers = runtime.NumCPU()
	}

	return &Processor{
		logger:      logger,
		normalizer:  normalizer,
		batchPool:   pool.NewLineBatchPool(config.BatchSize),
		outputPool:  pool.NewBufferPool(config.BatchSize * 64),
		chunkSize:   config.ChunkSize,
		batchSize:   config.BatchSize,
		workers:     config.Workers,
		useParallel: config.UseParallel,
	}
}

// ProcessLines normalizes every line of reader and writes the result to writer.
func (p *Processor) ProcessLines(
	ctx context.Context,
	reader io.Reader,
	writer io.Writer,
) (ports.StreamStats, error) {
	if p.useParallel {
		return p.processLinesParallel(ctx, reader, writer)
	}
	return p.processLinesSequential(ctx, reader, writer)
}

// processLinesSequential normalizes lines on the calling goroutine
func (p *Processor) processLinesSequential(
	ctx context.Context,
	reader io.Reader,
	writer io.Writer,
) (ports.StreamStats, error) {
	startTime := time.Now()
	var stats ports.StreamStats

	br := bufio.NewReaderSize(reader, p.chunkSize)
	bw := bufio.NewWriterSize(writer, p.chunkSize)
	contextCheckCounter := 0

	for {
		contextCheckCounter++
		if contextCheckCounter >= ContextCheckFrequency {
			select {
			case <-ctx.Done():
				p.logger.Warn("Processing cancelled by context", "error", ctx.Err())
				bw.Flush()
				stats.ProcessingTime = time.Since(startTime)
				return stats, ctx.Err()
			default:
			}
			contextCheckCounter = 0
		}

		line, err := br.ReadString('\n')
		if len(line) > 0 {
			stats.BytesProcessed += int64(len(line))
			stats.LinesRead++

			normalized := p.normalizer.Normalize(trimLineEnding(line))
			bw.WriteString(normalized)
			if werr := bw.WriteByte('\n'); werr != nil {
				p.logger.Warn("Error writing output", "error", werr)
				stats.ProcessingTime = time.Since(startTime)
				return stats, werr
			}
			stats.LinesWritten++
		}

		if err != nil {
			if err != io.EOF {
				p.logger.Warn("Error reading from input", "error", err)
				bw.Flush()
				stats.ProcessingTime = time.Since(startTime)
				return stats, err
			}
			break
		}
	}

	if err := bw.Flush(); err != nil {
		stats.ProcessingTime = time.Since(startTime)
		return stats, err
	}

	stats.ProcessingTime = time.Since(startTime)
	p.logger.Debug("Line processing completed",
		"lines", stats.LinesRead,
		"bytes_processed", stats.BytesProcessed,
		"duration", stats.ProcessingTime,
	)
	return stats, nil
}

// trimLineEnding strips a trailing LF or CRLF
func trimLineEnding(line string) string {
	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r")
}
