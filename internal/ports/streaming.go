package ports

import (
	"context"
	"io"
	"time"
)

// StreamStats holds the outcome of normalizing a line stream.
type StreamStats struct {
	LinesRead      int
	LinesWritten   int
	BytesProcessed int64
	ProcessingTime time.Duration
}

// LineStreamProcessor normalizes a line-oriented stream and writes one normalized line per input line.
type LineStreamProcessor interface {
	ProcessLines(ctx context.Context, reader io.Reader, writer io.Writer) (StreamStats, error)
}
