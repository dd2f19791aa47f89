package normalizer

import (
	"time"

	"github.com/baditaflorin/go_txn_normalizer/internal/core/features"
	"github.com/baditaflorin/go_txn_normalizer/internal/core/sampling"
	"github.com/shopspring/decimal"
)

// Split is the result of a stratified sample.
type Split = sampling.Split[NormalizedRecord]

// DeriveFeatures computes the date and amount features of a record.
func DeriveFeatures(rec RawRecord) Features {
	return features.Derive(rec)
}

// DateFeatures computes the calendar features of t.
func DateFeatures(t time.Time) features.Dates {
	return features.DateFeatures(t)
}

// AmountBucket returns the bucket of a non-negative amount.
func AmountBucket(amount decimal.Decimal) (string, bool) {
	b, ok := features.QuantizeAmount(amount)
	return string(b), ok
}

// UniqueLabels lists the distinct labels of records in first-seen order.
func UniqueLabels(records []NormalizedRecord) []string {
	labels := make([]string, len(records))
	for i, rec := range records {
		labels[i] = rec.Label
	}
	return sampling.UniqueLabels(labels)
}

// LabelCounts counts records per label. Labels come back sorted.
func LabelCounts(records []NormalizedRecord) ([]string, map[string]int) {
	return sampling.CountByLabel(records, recordLabel)
}

func recordLabel(r NormalizedRecord) string { return r.Label }

// StratifiedSplit samples fraction of the records of every label. The split
// is deterministic for a seed; records not sampled form the complement.
func StratifiedSplit(records []NormalizedRecord, fraction float64, seed int64) (Split, error) {
	return sampling.Stratified(records, recordLabel, sampling.Config{Fraction: fraction, Seed: seed})
}
