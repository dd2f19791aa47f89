package benchmark

import (
	"context"
	"runtime"
	"strconv"
	"testing"

	"github.com/baditaflorin/go_txn_normalizer/internal/core/cleaning"
	"github.com/baditaflorin/go_txn_normalizer/internal/core/domain"
	"github.com/baditaflorin/go_txn_normalizer/internal/warmup"
)

func newPipeline(b *testing.B, opts ...cleaning.Option) *cleaning.Pipeline {
	b.Helper()
	p, err := cleaning.NewPipeline(cleaning.DefaultTable(), opts...)
	if err != nil {
		b.Fatalf("NewPipeline: %v", err)
	}
	return p
}

// BenchmarkNormalize measures the full pipeline on one description at a time
func BenchmarkNormalize(b *testing.B) {
	p := newPipeline(b)
	samples := warmup.SampleTransactions(42, 256)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = p.Normalize(samples[i%len(samples)])
	}
}

// BenchmarkStages measures every stage on its own
func BenchmarkStages(b *testing.B) {
	p := newPipeline(b)
	samples := warmup.SampleTransactions(7, 256)

	for _, id := range cleaning.CanonicalOrder() {
		stage, _ := p.Stage(id)
		b.Run(string(id), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				_ = stage.Apply(samples[i%len(samples)])
			}
		})
	}
}

// BenchmarkNormalizeRecords compares worker counts on a batch
func BenchmarkNormalizeRecords(b *testing.B) {
	samples := warmup.SampleTransactions(99, 10000)
	records := make([]domain.RawRecord, len(samples))
	for i, s := range samples {
		records[i] = domain.NewRawRecord(s)
	}
	ctx := context.Background()

	for _, workers := range []int{1, 4, runtime.NumCPU()} {
		p := newPipeline(b, cleaning.WithWorkers(workers))
		b.Run("workers-"+strconv.Itoa(workers), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if _, err := p.NormalizeRecords(ctx, records); err != nil {
					b.Fatalf("NormalizeRecords: %v", err)
				}
			}
		})
	}
}

// BenchmarkNewPipeline measures table validation and regexp compilation
func BenchmarkNewPipeline(b *testing.B) {
	table := cleaning.DefaultTable()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := cleaning.NewPipeline(table); err != nil {
			b.Fatal(err)
		}
	}
}
