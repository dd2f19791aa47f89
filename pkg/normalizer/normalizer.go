// Package normalizer is the public entry point for cleaning transaction
// descriptions. A Normalizer is built once from a pattern table and a stage
// list and is then safe for concurrent use.
//
//	n, err := normalizer.New(normalizer.WithExtraRules(normalizer.CategoryAbbreviations,
//		normalizer.Rule{Pattern: ` LTD\b`}))
//	if err != nil {
//		return err
//	}
//	clean := n.Normalize("Prijenos sa HR1234 TEA, Store P-0980, AMAZON.COM**")
package normalizer

import (
	"context"
	"io"
	"sync"

	"github.com/baditaflorin/go_txn_normalizer/internal/adapters/logger"
	"github.com/baditaflorin/go_txn_normalizer/internal/adapters/patternfile"
	"github.com/baditaflorin/go_txn_normalizer/internal/adapters/stream/lineprocessor"
	"github.com/baditaflorin/go_txn_normalizer/internal/core/cleaning"
	"github.com/baditaflorin/go_txn_normalizer/internal/core/domain"
	"github.com/baditaflorin/go_txn_normalizer/internal/core/features"
	"github.com/baditaflorin/go_txn_normalizer/internal/core/sampling"
	"github.com/baditaflorin/go_txn_normalizer/internal/ports"
	"github.com/baditaflorin/go_txn_normalizer/internal/warmup"
	"github.com/baditaflorin/l"
)

// Re-exported types so callers never import internal packages.
type (
	PatternTable     = cleaning.PatternTable
	Category         = cleaning.Category
	Rule             = cleaning.Rule
	StageID          = cleaning.StageID
	StageResult      = cleaning.StageResult
	RawRecord        = domain.RawRecord
	NormalizedRecord = domain.NormalizedRecord
	Features         = domain.Features
	StreamStats      = ports.StreamStats
	WarmupConfig     = warmup.WarmupConfig
)

// Stage identifiers, in canonical order.
const (
	StageCreditCard    = cleaning.StageCreditCard
	StageRepeatedWords = cleaning.StageRepeatedWords
	StageCommasSpaces  = cleaning.StageCommasSpaces
	StageAbbreviations = cleaning.StageAbbreviations
	StageNonASCII      = cleaning.StageNonASCII
	StageCroCodes      = cleaning.StageCroCodes
	StageBranch        = cleaning.StageBranch
	StageATM           = cleaning.StageATM
	StageIBAN          = cleaning.StageIBAN
	StagePunctuation   = cleaning.StagePunctuation
)

// Pattern table category names.
const (
	CategoryCreditCard    = cleaning.CategoryCreditCard
	CategoryAbbreviations = cleaning.CategoryAbbreviations
	CategoryNonASCII      = cleaning.CategoryNonASCII
	CategoryCroCodes      = cleaning.CategoryCroCodes
	CategoryBranch        = cleaning.CategoryBranch
	CategoryATM           = cleaning.CategoryATM
	CategoryIBAN          = cleaning.CategoryIBAN
	CategoryPunctuation   = cleaning.CategoryPunctuation
)

// Configuration errors, usable with errors.Is.
var (
	ErrDuplicateCategory = cleaning.ErrDuplicateCategory
	ErrEmptyCategory     = cleaning.ErrEmptyCategory
	ErrMissingCategory   = cleaning.ErrMissingCategory
	ErrInvalidPattern    = cleaning.ErrInvalidPattern
	ErrUnknownStage      = cleaning.ErrUnknownStage
	ErrInvalidFraction   = sampling.ErrInvalidFraction
)

// CanonicalOrder returns the default stage order.
func CanonicalOrder() []StageID { return cleaning.CanonicalOrder() }

// ParseStages parses a comma separated stage list. An empty list selects the
// canonical order.
func ParseStages(list string) ([]StageID, error) { return cleaning.ParseStageList(list) }

// DefaultTable returns a copy of the built-in pattern table.
func DefaultTable() PatternTable { return patternfile.Default() }

// LoadPatternFile reads and validates a YAML pattern table.
func LoadPatternFile(path string) (PatternTable, error) { return patternfile.Load(path) }

// NewRecord creates a record with a generated ID.
func NewRecord(text string) RawRecord { return domain.NewRawRecord(text) }

// Option configures a Normalizer.
type Option func(*config)

type config struct {
	table        PatternTable
	patternFile  string
	extra        []Category
	stages       []StageID
	workers      int
	batchSize    int
	features     bool
	logger       ports.Logger
	warmUp       bool
	warmUpConfig warmup.WarmupConfig
}

// WithPatternTable replaces the built-in pattern table.
func WithPatternTable(table PatternTable) Option {
	return func(cfg *config) {
		cfg.table = table.Clone()
		cfg.patternFile = ""
	}
}

// WithPatternFile loads the pattern table from a YAML file when New runs.
func WithPatternFile(path string) Option {
	return func(cfg *config) {
		cfg.patternFile = path
	}
}

// WithExtraRules appends caller patterns to a category of the table.
func WithExtraRules(category string, rules ...Rule) Option {
	return func(cfg *config) {
		cfg.extra = append(cfg.extra, Category{Name: category, Rules: append([]Rule(nil), rules...)})
	}
}

// WithStages selects and orders the stages to run.
func WithStages(ids ...StageID) Option {
	return func(cfg *config) {
		cfg.stages = append([]StageID(nil), ids...)
	}
}

// WithWorkers sets the number of goroutines used for batches and streams.
func WithWorkers(n int) Option {
	return func(cfg *config) {
		cfg.workers = n
	}
}

// WithBatchSize sets how many records or lines a worker takes at a time.
func WithBatchSize(n int) Option {
	return func(cfg *config) {
		cfg.batchSize = n
	}
}

// WithFeatures attaches date and amount features to normalized records.
func WithFeatures(enable bool) Option {
	return func(cfg *config) {
		cfg.features = enable
	}
}

// WithLogger sets a custom logger.
func WithLogger(lg l.Logger) Option {
	return func(cfg *config) {
		cfg.logger = logger.FromExisting(lg)
	}
}

// WithSilentLogging discards all log output.
func WithSilentLogging() Option {
	return func(cfg *config) {
		cfg.logger = logger.NewNopLogger()
	}
}

// WithWarmUp enables warm-up on initialization.
func WithWarmUp(enable bool) Option {
	return func(cfg *config) {
		cfg.warmUp = enable
	}
}

// WithWarmUpConfig sets a custom warm-up configuration and enables warm-up.
func WithWarmUpConfig(wc WarmupConfig) Option {
	return func(cfg *config) {
		cfg.warmUpConfig = wc
		cfg.warmUp = true
	}
}

// Normalizer cleans transaction descriptions.
type Normalizer struct {
	pipeline *cleaning.Pipeline
	stream   *lineprocessor.Processor
	logger   ports.Logger
	features bool

	// ownsLogger is set when New created the logger, so Close must release it.
	ownsLogger bool
	warmOnce   sync.Once
}

// New builds a Normalizer. Pattern table and stage problems are returned here.
func New(opts ...Option) (*Normalizer, error) {
	cfg := &config{
		table:        patternfile.Default(),
		warmUpConfig: warmup.DefaultWarmupConfig(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	ownsLogger := false
	if cfg.logger == nil {
		var err error
		cfg.logger, err = logger.NewStdLogger()
		if err != nil {
			return nil, err
		}
		ownsLogger = true
	}

	table := cfg.table
	if cfg.patternFile != "" {
		loaded, err := patternfile.Load(cfg.patternFile)
		if err != nil {
			return nil, err
		}
		table = loaded
	}
	if len(cfg.extra) > 0 {
		table = patternfile.Merge(table, PatternTable{Categories: cfg.extra})
	}

	pipelineOpts := []cleaning.Option{
		cleaning.WithLogger(cfg.logger),
		cleaning.WithWorkers(cfg.workers),
	}
	if cfg.stages != nil {
		pipelineOpts = append(pipelineOpts, cleaning.WithStages(cfg.stages...))
	}
	if cfg.batchSize > 0 {
		pipelineOpts = append(pipelineOpts, cleaning.WithBatchSize(cfg.batchSize))
	}

	pipeline, err := cleaning.NewPipeline(table, pipelineOpts...)
	if err != nil {
		if ownsLogger {
			cfg.logger.Close()
		}
		return nil, err
	}

	n := &Normalizer{
		pipeline: pipeline,
		stream: lineprocessor.NewProcessor(cfg.logger, pipeline, lineprocessor.ProcessingConfig{
			Workers:     cfg.workers,
			BatchSize:   cfg.batchSize,
			UseParallel: true,
		}),
		logger:     cfg.logger,
		features:   cfg.features,
		ownsLogger: ownsLogger,
	}

	if cfg.warmUp {
		n.WarmUp(context.Background(), cfg.warmUpConfig)
	}
	return n, nil
}

// Normalize cleans one description.
func (n *Normalizer) Normalize(text string) string {
	return n.pipeline.Normalize(text)
}

// NormalizeValue cleans string values and returns anything else unchanged.
func (n *Normalizer) NormalizeValue(v interface{}) interface{} {
	return n.pipeline.NormalizeValue(v)
}

// NormalizeNullable cleans a nullable description. nil stays nil.
func (n *Normalizer) NormalizeNullable(text *string) *string {
	return n.pipeline.NormalizeNullable(text)
}

// ApplyStage runs a single stage on text.
func (n *Normalizer) ApplyStage(id StageID, text string) (string, bool) {
	s, ok := n.pipeline.Stage(id)
	if !ok {
		return text, false
	}
	return s.Apply(text), true
}

// Stages returns the configured stage order.
func (n *Normalizer) Stages() []StageID {
	return n.pipeline.Stages()
}

// ExtractMaskedCard returns the first masked card number in text.
func (n *Normalizer) ExtractMaskedCard(text string) (string, bool) {
	return n.pipeline.ExtractMaskedCard(text)
}

// Trace returns the output of every stage for text.
func (n *Normalizer) Trace(text string) []StageResult {
	return n.pipeline.Trace(text)
}

// NormalizeRecords cleans a batch of records, preserving order. Features are
// attached when the Normalizer was built WithFeatures(true).
func (n *Normalizer) NormalizeRecords(ctx context.Context, records []RawRecord) ([]NormalizedRecord, error) {
	out, err := n.pipeline.NormalizeRecords(ctx, records)
	if err != nil {
		return nil, err
	}
	if n.features {
		features.Attach(out)
	}
	return out, nil
}

// NormalizeTexts cleans a batch of plain descriptions, preserving order.
func (n *Normalizer) NormalizeTexts(ctx context.Context, texts []string) ([]string, error) {
	records := make([]RawRecord, len(texts))
	for i := range texts {
		records[i] = RawRecord{ID: "-", Text: &texts[i]}
	}
	out, err := n.pipeline.NormalizeRecords(ctx, records)
	if err != nil {
		return nil, err
	}
	result := make([]string, len(out))
	for i, rec := range out {
		result[i] = *rec.Normalized
	}
	return result, nil
}

// ProcessLines cleans a line-oriented stream. Every input line yields one
// output line, in order.
func (n *Normalizer) ProcessLines(ctx context.Context, r io.Reader, w io.Writer) (StreamStats, error) {
	return n.stream.ProcessLines(ctx, r, w)
}

// WarmUp exercises the pipeline with synthetic descriptions. Only the first
// call runs; concurrent and later calls return once it has finished.
func (n *Normalizer) WarmUp(ctx context.Context, wc WarmupConfig) {
	ran := false
	n.warmOnce.Do(func() {
		mgr := warmup.NewManager(n.logger, wc)
		mgr.RegisterNormalizer(n.pipeline)
		mgr.RegisterRecordNormalizer(n.pipeline)
		mgr.RegisterStreamProcessor(n.stream)
		mgr.WarmUp(ctx)
		ran = true
	})
	if !ran {
		n.logger.Debug("Normalizer already warmed up, skipping")
	}
}

// Close flushes the logger New created when no logger was supplied.
// Loggers passed in with WithLogger stay open and remain the caller's to close.
func (n *Normalizer) Close() error {
	if !n.ownsLogger {
		return nil
	}
	return n.logger.Close()
}
