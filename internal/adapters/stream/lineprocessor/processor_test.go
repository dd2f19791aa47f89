package lineprocessor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/baditaflorin/go_txn_normalizer/internal/adapters/logger"
	"github.com/baditaflorin/go_txn_normalizer/internal/core/cleaning"
)

func newPipeline(t *testing.T) *cleaning.Pipeline {
	t.Helper()
	p, err := cleaning.NewPipeline(cleaning.DefaultTable())
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}
	return p
}

func sampleInput(lines int) (string, string) {
	var in, want strings.Builder
	for i := 0; i < lines; i++ {
		switch i % 3 {
		case 0:
			fmt.Fprintf(&in, "SHOP%d.COM**\n", i)
			fmt.Fprintf(&want, "SHOP%d\n", i)
		case 1:
			fmt.Fprintf(&in, "ATM A%d withdrawal\r\n", 1000+i)
			want.WriteString("ATM withdrawal\n")
		default:
			in.WriteString("\n")
			want.WriteString("\n")
		}
	}
	return in.String(), want.String()
}

func TestProcessLines(t *testing.T) {
	modes := []struct {
		name   string
		config ProcessingConfig
	}{
		{"sequential", ProcessingConfig{}},
		{"parallel", ProcessingConfig{UseParallel: true, Workers: 4, BatchSize: 3}},
		{"parallel single worker", ProcessingConfig{UseParallel: true, Workers: 1, BatchSize: 1000}},
	}

	input, want := sampleInput(250)
	for _, mode := range modes {
		t.Run(mode.name, func(t *testing.T) {
			proc := NewProcessor(logger.NewNopLogger(), newPipeline(t), mode.config)

			var out bytes.Buffer
			stats, err := proc.ProcessLines(context.Background(), strings.NewReader(input), &out)
			if err != nil {
				t.Fatalf("ProcessLines: %v", err)
			}
			if out.String() != want {
				t.Errorf("unexpected output:\n%s", out.String())
			}
			if stats.LinesRead != 250 || stats.LinesWritten != 250 {
				t.Errorf("expected 250 lines in and out, got %+v", stats)
			}
			if stats.BytesProcessed != int64(len(input)) {
				t.Errorf("expected %d bytes, got %d", len(input), stats.BytesProcessed)
			}
		})
	}
}

func TestProcessLinesLastLineWithoutNewline(t *testing.T) {
	for _, parallel := range []bool{false, true} {
		proc := NewProcessor(logger.NewNopLogger(), newPipeline(t), ProcessingConfig{UseParallel: parallel})

		var out bytes.Buffer
		if _, err := proc.ProcessLines(context.Background(), strings.NewReader("A.COM\nB.COM"), &out); err != nil {
			t.Fatalf("ProcessLines: %v", err)
		}
		if out.String() != "A\nB\n" {
			t.Errorf("parallel=%v: unexpected output %q", parallel, out.String())
		}
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestProcessLinesWriteError(t *testing.T) {
	input, _ := sampleInput(5000)
	for _, parallel := range []bool{false, true} {
		proc := NewProcessor(logger.NewNopLogger(), newPipeline(t), ProcessingConfig{UseParallel: parallel, BatchSize: 10, ChunkSize: 16})

		_, err := proc.ProcessLines(context.Background(), strings.NewReader(input), failingWriter{})
		if err == nil || err.Error() != "disk full" {
			t.Errorf("parallel=%v: expected write error, got %v", parallel, err)
		}
	}
}

func TestProcessLinesCancelled(t *testing.T) {
	input, _ := sampleInput(5000)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, parallel := range []bool{false, true} {
		proc := NewProcessor(logger.NewNopLogger(), newPipeline(t), ProcessingConfig{UseParallel: parallel, BatchSize: 10})

		var out bytes.Buffer
		_, err := proc.ProcessLines(ctx, strings.NewReader(input), &out)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("parallel=%v: expected context.Canceled, got %v", parallel, err)
		}
	}
}
