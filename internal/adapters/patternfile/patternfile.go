// Package patternfile loads cleaning pattern tables from YAML files.
//
// A file looks like:
//
//	categories:
//	  - name: atm_no
//	    rules:
//	      - pattern: '(ATM )[A-Z]?\d+ '
//	        replace: '${1}'
//
// Tables are validated after parsing, so a table returned by this package is
// always usable by cleaning.NewPipeline for the stages it covers.
package patternfile

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/baditaflorin/go_txn_normalizer/internal/core/cleaning"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

// ErrEmptyFile is returned when a pattern file defines no categories.
var ErrEmptyFile = errors.New("pattern file defines no categories")

// Parse decodes and validates a YAML pattern table. Unknown keys are rejected
// so that a misspelled "replace" does not silently turn into a deletion.
func Parse(data []byte) (cleaning.PatternTable, error) {
	return Decode(bytes.NewReader(data))
}

// Decode reads a YAML pattern table from r.
func Decode(r io.Reader) (cleaning.PatternTable, error) {
	var table cleaning.PatternTable

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&table); err != nil {
		if errors.Is(err, io.EOF) {
			return table, ErrEmptyFile
		}
		return table, fmt.Errorf("decoding pattern table: %w", err)
	}
	if len(table.Categories) == 0 {
		return table, ErrEmptyFile
	}
	if err := table.Validate(); err != nil {
		return table, err
	}
	return table, nil
}

// Load reads a pattern table from a file.
func Load(path string) (cleaning.PatternTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return cleaning.PatternTable{}, fmt.Errorf("opening pattern file: %w", err)
	}
	defer f.Close()

	table, err := Decode(f)
	if err != nil {
		return table, fmt.Errorf("%s: %w", path, err)
	}
	return table, nil
}

// Default returns the embedded canonical table.
func Default() cleaning.PatternTable {
	table, err := Parse(defaultYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded pattern table is invalid: %v", err))
	}
	return table
}

// Merge appends the rules of every category in extra to base. Categories not
// present in base are added at the end. Neither argument is modified.
func Merge(base, extra cleaning.PatternTable) cleaning.PatternTable {
	out := base.Clone()
	for _, c := range extra.Categories {
		out = out.Extend(c.Name, c.Rules...)
	}
	return out
}

// Marshal encodes a table as YAML.
func Marshal(table cleaning.PatternTable) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(table); err != nil {
		return nil, fmt.Errorf("encoding pattern table: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
