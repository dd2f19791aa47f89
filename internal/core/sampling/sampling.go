// Package sampling splits labelled datasets into a stratified sample and its complement.
package sampling

import (
	"errors"
	"math"
	"math/rand"
	"sort"
)

// ErrInvalidFraction is returned when the sample fraction is outside [0, 1].
var ErrInvalidFraction = errors.New("sample fraction must be between 0 and 1")

// Config controls a stratified split.
type Config struct {
	Fraction float64
	Seed     int64
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if math.IsNaN(c.Fraction) || c.Fraction < 0 || c.Fraction > 1 {
		return ErrInvalidFraction
	}
	return nil
}

// Split is the result of a stratified split. Indexes refer to the input slice.
type Split[T any] struct {
	Sample          []T
	SampleIndex     []int
	Complement      []T
	ComplementIndex []int
}

// UniqueLabels returns the distinct labels in order of first appearance.
func UniqueLabels(labels []string) []string {
	seen := make(map[string]struct{}, len(labels))
	out := make([]string, 0)
	for _, l := range labels {
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	return out
}

// Stratified samples round(Fraction*n) items without replacement from every
// label group of n items. The same seed always yields the same split. The
// sample keeps label groups together; the complement keeps input order.
func Stratified[T any](items []T, labelOf func(T) string, cfg Config) (Split[T], error) {
	if err := cfg.Validate(); err != nil {
		return Split[T]{}, err
	}

	groups := make(map[string][]int)
	var order []string
	for i, item := range items {
		label := labelOf(item)
		if _, ok := groups[label]; !ok {
			order = append(order, label)
		}
		groups[label] = append(groups[label], i)
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	selected := make([]bool, len(items))
	split := Split[T]{}

	for _, label := range order {
		idx := groups[label]
		n := int(math.Round(cfg.Fraction * float64(len(idx))))
		perm := rng.Perm(len(idx))
		for _, p := range perm[:n] {
			i := idx[p]
			selected[i] = true
			split.SampleIndex = append(split.SampleIndex, i)
		}
	}

	for i, item := range items {
		if !selected[i] {
			split.ComplementIndex = append(split.ComplementIndex, i)
			split.Complement = append(split.Complement, item)
		}
	}
	for _, i := range split.SampleIndex {
		split.Sample = append(split.Sample, items[i])
	}
	return split, nil
}

// CountByLabel counts items per label, returned with labels sorted for stable output.
func CountByLabel[T any](items []T, labelOf func(T) string) ([]string, map[string]int) {
	counts := make(map[string]int)
	for _, item := range items {
		counts[labelOf(item)]++
	}
	labels := make([]string, 0, len(counts))
	for l := range counts {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	return labels, counts
}
