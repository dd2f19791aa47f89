package benchmark

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/baditaflorin/go_txn_normalizer/internal/adapters/logger"
	"github.com/baditaflorin/go_txn_normalizer/internal/adapters/stream/lineprocessor"
	"github.com/baditaflorin/go_txn_normalizer/internal/core/cleaning"
	"github.com/baditaflorin/go_txn_normalizer/internal/warmup"
)

// generateStatement joins synthetic descriptions into a line-oriented statement
func generateStatement(lineCount int, seed int64) string {
	return strings.Join(warmup.SampleTransactions(seed, lineCount), "\n") + "\n"
}

// BenchmarkLineProcessing compares the sequential and parallel line processors
func BenchmarkLineProcessing(b *testing.B) {
	smallLines := generateStatement(50, 1)
	mediumLines := generateStatement(500, 2)
	largeLines := generateStatement(5000, 3)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	nop := logger.NewNopLogger()
	pipeline, err := cleaning.NewPipeline(cleaning.DefaultTable())
	if err != nil {
		b.Fatalf("NewPipeline: %v", err)
	}

	sequential := lineprocessor.NewProcessor(nop, pipeline, lineprocessor.ProcessingConfig{
		ChunkSize: 64 * 1024,
		BatchSize: 100,
	})
	parallel := lineprocessor.NewProcessor(nop, pipeline, lineprocessor.ProcessingConfig{
		ChunkSize:   64 * 1024,
		BatchSize:   100,
		UseParallel: true,
	})

	benchmarks := []struct {
		name  string
		proc  *lineprocessor.Processor
		input string
	}{
		{"Sequential-Small-Lines", sequential, smallLines},
		{"Sequential-Medium-Lines", sequential, mediumLines},
		{"Sequential-Large-Lines", sequential, largeLines},

		{"Parallel-Small-Lines", parallel, smallLines},
		{"Parallel-Medium-Lines", parallel, mediumLines},
		{"Parallel-Large-Lines", parallel, largeLines},
	}

	for _, bm := range benchmarks {
		b.Run(bm.name, func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(bm.input)))

			for i := 0; i < b.N; i++ {
				if _, err := bm.proc.ProcessLines(ctx, strings.NewReader(bm.input), io.Discard); err != nil {
					b.Fatalf("Error processing: %v", err)
				}
			}
		})
	}
}
