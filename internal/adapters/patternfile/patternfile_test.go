package patternfile

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/baditaflorin/go_txn_normalizer/internal/core/cleaning"
)

func TestDefaultMatchesBuiltinTable(t *testing.T) {
	if !reflect.DeepEqual(Default(), cleaning.DefaultTable()) {
		t.Error("embedded default.yaml differs from cleaning.DefaultTable()")
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	data, err := Marshal(cleaning.DefaultTable())
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	table, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !reflect.DeepEqual(table, cleaning.DefaultTable()) {
		t.Error("table changed after a YAML round trip")
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want error
	}{
		{"empty document", "", ErrEmptyFile},
		{"no categories", "categories: []\n", ErrEmptyFile},
		{"empty rules", "categories:\n  - name: iban\n    rules: []\n", cleaning.ErrEmptyCategory},
		{"bad regexp", "categories:\n  - name: iban\n    rules:\n      - pattern: '('\n", cleaning.ErrInvalidPattern},
		{
			"duplicate",
			"categories:\n  - name: iban\n    rules: [{pattern: a}]\n  - name: iban\n    rules: [{pattern: b}]\n",
			cleaning.ErrDuplicateCategory,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.data))
			if !errors.Is(err, tc.want) {
				t.Errorf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	data := "categories:\n  - name: atm_no\n    rules:\n      - pattern: 'ATM \\d+'\n        replacement: 'ATM'\n"
	if _, err := Parse([]byte(data)); err == nil {
		t.Error("expected an error for the unknown key")
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "patterns.yaml")
	data := "categories:\n  - name: abbreviations\n    rules:\n      - pattern: ' LTD\\b'\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	table, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	c, ok := table.Lookup(cleaning.CategoryAbbreviations)
	if !ok || len(c.Rules) != 1 || c.Rules[0].Pattern != ` LTD\b` {
		t.Errorf("unexpected table: %+v", table)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestMergeExtendsDefault(t *testing.T) {
	extra := cleaning.PatternTable{Categories: []cleaning.Category{
		{Name: cleaning.CategoryAbbreviations, Rules: []cleaning.Rule{{Pattern: ` LTD\b`}}},
	}}
	merged := Merge(Default(), extra)

	p, err := cleaning.NewPipeline(merged)
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}
	if got := p.Normalize("ACME LTD, AMAZON.COM"); got != "ACME AMAZON" {
		t.Errorf("expected %q, got %q", "ACME AMAZON", got)
	}

	c, _ := Default().Lookup(cleaning.CategoryAbbreviations)
	if len(c.Rules) != 11 {
		t.Errorf("Merge modified its base table")
	}
}
