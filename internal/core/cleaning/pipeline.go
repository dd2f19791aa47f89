// Package cleaning implements the transaction text normalization pipeline:
// an ordered list of pure string stages compiled from a PatternTable.
package cleaning

import (
	"fmt"
	"strings"

	"github.com/baditaflorin/go_txn_normalizer/internal/ports"
)

// Config holds pipeline construction options.
type Config struct {
	Stages    []StageID
	Workers   int
	BatchSize int
	Logger    ports.Logger
}

// Option configures a Pipeline.
type Option func(*Config)

// WithStages selects and orders the stages to run.
func WithStages(ids ...StageID) Option {
	return func(cfg *Config) {
		cfg.Stages = append([]StageID(nil), ids...)
	}
}

// WithWorkers sets the number of goroutines used by NormalizeRecords.
func WithWorkers(n int) Option {
	return func(cfg *Config) {
		cfg.Workers = n
	}
}

// WithBatchSize sets how many records a worker takes at a time.
func WithBatchSize(n int) Option {
	return func(cfg *Config) {
		cfg.BatchSize = n
	}
}

// WithLogger sets the pipeline logger.
func WithLogger(logger ports.Logger) Option {
	return func(cfg *Config) {
		cfg.Logger = logger
	}
}

var (
	_ ports.Normalizer    = (*Pipeline)(nil)
	_ ports.CardExtractor = (*Pipeline)(nil)
)

// Pipeline applies its stages, in order, to one string at a time.
// It holds no mutable state and is safe for concurrent use.
type Pipeline struct {
	stages    []Stage
	byID      map[StageID]Stage
	card      []compiledRule
	workers   int
	batchSize int
	logger    ports.Logger
}

// NewPipeline validates the table and compiles the selected stages.
// Configuration problems are reported here, never per record.
func NewPipeline(table PatternTable, opts ...Option) (*Pipeline, error) {
	cfg := Config{
		Stages:    CanonicalOrder(),
		BatchSize: DefaultBatchSize,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Logger == nil {
		cfg.Logger = ports.NopLogger{}
	}
	if len(cfg.Stages) == 0 {
		return nil, fmt.Errorf("%w: empty stage list", ErrUnknownStage)
	}
	if err := table.Validate(); err != nil {
		return nil, err
	}
	required := RequiredCategories(cfg.Stages)
	for _, name := range required {
		if _, ok := table.Lookup(name); !ok {
			return nil, fmt.Errorf("%w: %q (selected stages need %s)",
				ErrMissingCategory, name, strings.Join(required, ", "))
		}
	}

	p := &Pipeline{
		stages:    make([]Stage, 0, len(cfg.Stages)),
		byID:      make(map[StageID]Stage, len(cfg.Stages)),
		workers:   cfg.Workers,
		batchSize: cfg.BatchSize,
		logger:    cfg.Logger,
	}
	for _, id := range cfg.Stages {
		stage, err := buildStage(id, table)
		if err != nil {
			return nil, err
		}
		p.stages = append(p.stages, stage)
		p.byID[id] = stage
	}

	if c, ok := table.Lookup(CategoryCreditCard); ok && len(c.Rules) > 0 {
		card, err := table.compileCategory(c.Name)
		if err != nil {
			return nil, err
		}
		p.card = card
	}

	p.logger.Info("Normalization pipeline ready",
		"stages", len(p.stages),
		"categories", len(table.Categories),
	)
	return p, nil
}

// Normalize runs every stage on raw and returns the cleaned text.
func (p *Pipeline) Normalize(raw string) string {
	text := raw
	for _, s := range p.stages {
		text = s.fn(text)
	}
	return text
}

// NormalizeValue normalizes string values; anything else is returned unchanged.
func (p *Pipeline) NormalizeValue(v interface{}) interface{} {
	for _, s := range p.stages {
		v = s.ApplyValue(v)
	}
	return v
}

// NormalizeNullable normalizes a nullable string. A nil input stays nil.
func (p *Pipeline) NormalizeNullable(raw *string) *string {
	if raw == nil {
		return nil
	}
	out := p.Normalize(*raw)
	return &out
}

// Stages returns the stage IDs in execution order.
func (p *Pipeline) Stages() []StageID {
	ids := make([]StageID, len(p.stages))
	for i, s := range p.stages {
		ids[i] = s.ID
	}
	return ids
}

// Stage returns the compiled stage with the given ID.
func (p *Pipeline) Stage(id StageID) (Stage, bool) {
	s, ok := p.byID[id]
	return s, ok
}

// ExtractMaskedCard returns the masked card number that appears first in raw,
// trying every credit card rule of the table.
func (p *Pipeline) ExtractMaskedCard(raw string) (string, bool) {
	var best []int
	for _, r := range p.card {
		loc := r.re.FindStringIndex(raw)
		if loc == nil {
			continue
		}
		if best == nil || loc[0] < best[0] {
			best = loc
		}
	}
	if best == nil {
		return "", false
	}
	return raw[best[0]:best[1]], true
}

// StageResult is the output of one stage during a Trace.
type StageResult struct {
	Stage   StageID `json:"stage"`
	Output  string  `json:"output"`
	Changed bool    `json:"changed"`
}

// Trace runs the pipeline and records the output of every stage.
func (p *Pipeline) Trace(raw string) []StageResult {
	results := make([]StageResult, 0, len(p.stages))
	text := raw
	for _, s := range p.stages {
		out := s.fn(text)
		results = append(results, StageResult{Stage: s.ID, Output: out, Changed: out != text})
		text = out
	}
	return results
}
