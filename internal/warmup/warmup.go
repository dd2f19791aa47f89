package warmup

import (
	"context"
	"io"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/baditaflorin/go_txn_normalizer/internal/core/domain"
	"github.com/baditaflorin/go_txn_normalizer/internal/ports"
)

// WarmupConfig defines configuration for warming up the system
type WarmupConfig struct {
	// Number of concurrent warmup routines to run
	Concurrency int
	// Number of iterations per routine
	Iterations int
	// Number of synthetic descriptions generated for the warmup
	SampleSize int
	// Seed for the synthetic descriptions
	Seed int64
	// Warmup duration (0 means no time limit)
	Duration time.Duration
	// Whether to perform GC after warmup
	ForceGC bool
}

// DefaultWarmupConfig returns the default warmup configuration
func DefaultWarmupConfig() WarmupConfig {
	return WarmupConfig{
		Concurrency: runtime.NumCPU(),
		Iterations:  200,
		SampleSize:  100,
		Seed:        1,
		Duration:    5 * time.Second,
		ForceGC:     true,
	}
}

// RecordNormalizer normalizes a batch of records
type RecordNormalizer interface {
	NormalizeRecords(ctx context.Context, records []domain.RawRecord) ([]domain.NormalizedRecord, error)
}

// Manager handles system warmup operations
type Manager struct {
	logger      ports.Logger
	normalizers []ports.Normalizer
	records     []RecordNormalizer
	streams     []ports.LineStreamProcessor
	config      WarmupConfig
}

// Stats summarizes a warmup run
type Stats struct {
	Normalized int
	Records    int
	Lines      int
	Duration   time.Duration
}

// NewManager creates a new warmup manager
func NewManager(logger ports.Logger, config WarmupConfig) *Manager {
	if config.Concurrency <= 0 {
		config.Concurrency = 1
	}
	if config.SampleSize <= 0 {
		config.SampleSize = 1
	}
	return &Manager{
		logger: logger,
		config: config,
	}
}

// RegisterNormalizer adds a normalizer to be warmed up
func (wm *Manager) RegisterNormalizer(norm ports.Normalizer) {
	wm.normalizers = append(wm.normalizers, norm)
}

// RegisterRecordNormalizer adds a batch normalizer to be warmed up
func (wm *Manager) RegisterRecordNormalizer(rn RecordNormalizer) {
	wm.records = append(wm.records, rn)
}

// RegisterStreamProcessor adds a line stream processor to be warmed up
func (wm *Manager) RegisterStreamProcessor(proc ports.LineStreamProcessor) {
	wm.streams = append(wm.streams, proc)
}

// WarmUp runs the warmup process for all registered components
func (wm *Manager) WarmUp(ctx context.Context) Stats {
	startTime := time.Now()
	wm.logger.Info("Starting system warmup",
		"components", len(wm.normalizers)+len(wm.records)+len(wm.streams),
		"concurrency", wm.config.Concurrency,
		"iterations", wm.config.Iterations,
	)

	warmupCtx := ctx
	if wm.config.Duration > 0 {
		var cancel context.CancelFunc
		warmupCtx, cancel = context.WithTimeout(ctx, wm.config.Duration)
		defer cancel()
	}

	samples := SampleTransactions(wm.config.Seed, wm.config.SampleSize)

	var stats Stats
	stats.Normalized = wm.warmUpNormalizers(warmupCtx, samples)
	stats.Records = wm.warmUpRecordNormalizers(warmupCtx, samples)
	stats.Lines = wm.warmUpStreamProcessors(warmupCtx, samples)

	if wm.config.ForceGC {
		wm.logger.Debug("Forcing garbage collection after warmup")
		runtime.GC()
	}

	stats.Duration = time.Since(startTime)
	wm.logger.Info("System warmup completed",
		"duration", stats.Duration,
		"normalized", stats.Normalized,
		"records", stats.Records,
		"lines", stats.Lines,
	)
	return stats
}

// warmUpNormalizers runs every sample through every normalizer
func (wm *Manager) warmUpNormalizers(ctx context.Context, samples []string) int {
	if len(wm.normalizers) == 0 {
		return 0
	}

	wm.logger.Debug("Warming up normalizers", "count", len(wm.normalizers))

	var mu sync.Mutex
	total := 0
	var wg sync.WaitGroup
	for i := 0; i < wm.config.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			done := 0
			for j := 0; j < wm.config.Iterations; j++ {
				if ctx.Err() != nil {
					break
				}

				text := samples[j%len(samples)]
				for _, normalizer := range wm.normalizers {
					_ = normalizer.Normalize(text)
					done++
				}
			}

			mu.Lock()
			total += done
			mu.Unlock()
		}()
	}

	wg.Wait()
	return total
}

// warmUpRecordNormalizers pushes the samples through the batch runners
func (wm *Manager) warmUpRecordNormalizers(ctx context.Context, samples []string) int {
	if len(wm.records) == 0 {
		return 0
	}

	wm.logger.Debug("Warming up record normalizers", "count", len(wm.records))

	records := make([]domain.RawRecord, len(samples))
	for i, s := range samples {
		records[i] = domain.NewRawRecord(s)
	}

	total := 0
	for _, rn := range wm.records {
		out, err := rn.NormalizeRecords(ctx, records)
		if err != nil {
			wm.logger.Debug("Record normalizer warmup stopped", "error", err)
			continue
		}
		total += len(out)
	}
	return total
}

// warmUpStreamProcessors feeds the samples as a line stream
func (wm *Manager) warmUpStreamProcessors(ctx context.Context, samples []string) int {
	if len(wm.streams) == 0 {
		return 0
	}

	wm.logger.Debug("Warming up stream processors", "count", len(wm.streams))

	input := strings.Join(samples, "\n") + "\n"
	total := 0
	for _, proc := range wm.streams {
		stats, err := proc.ProcessLines(ctx, strings.NewReader(input), io.Discard)
		if err != nil {
			wm.logger.Debug("Stream processor warmup stopped", "error", err)
			continue
		}
		total += stats.LinesWritten
	}
	return total
}
