package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/baditaflorin/go_txn_normalizer/internal/adapters/logger"
	"github.com/baditaflorin/go_txn_normalizer/internal/adapters/patternfile"
	"github.com/baditaflorin/go_txn_normalizer/internal/adapters/table"
	"github.com/baditaflorin/go_txn_normalizer/internal/config"
	"github.com/baditaflorin/go_txn_normalizer/internal/core/sampling"
	"github.com/baditaflorin/go_txn_normalizer/pkg/normalizer"
	"github.com/baditaflorin/l"
)

// Input formats
const (
	formatLines = "lines"
	formatCSV   = "csv"
	formatXLSX  = "xlsx"
)

type options struct {
	text             string
	input            string
	output           string
	format           string
	stages           string
	patterns         string
	encoding         string
	delimiter        string
	sheet            string
	columns          table.Columns
	features         bool
	trace            bool
	dumpPatterns     bool
	sampleFrac       float64
	seed             int64
	complementOutput string
	workers          int
	verbose          bool
}

func parseFlags(args []string, env config.Config) (options, error) {
	var o options
	cols := table.DefaultColumns()

	fs := flag.NewFlagSet("txnclean", flag.ContinueOnError)
	fs.StringVar(&o.text, "text", "", "Normalize a single description and print it")
	fs.StringVar(&o.input, "input", "-", "Input file (- = stdin)")
	fs.StringVar(&o.output, "output", "-", "Output file (- = stdout)")
	fs.StringVar(&o.format, "format", formatLines, "Input format: 'lines', 'csv' or 'xlsx'")
	fs.StringVar(&o.stages, "stages", env.Stages, "Comma separated stage list (empty = canonical order)")
	fs.StringVar(&o.patterns, "patterns", env.PatternFile, "YAML pattern table (empty = built-in table)")
	fs.StringVar(&o.encoding, "encoding", env.Encoding, "CSV input encoding: utf-8, windows-1250 or iso-8859-2")
	fs.StringVar(&o.delimiter, "delimiter", ",", "CSV field delimiter")
	fs.StringVar(&o.sheet, "sheet", "", "XLSX sheet to read (empty = first sheet)")
	fs.StringVar(&cols.Text, "text-column", cols.Text, "Column holding the description")
	fs.StringVar(&cols.Amount, "amount-column", cols.Amount, "Column holding the amount")
	fs.StringVar(&cols.Date, "date-column", cols.Date, "Column holding the transaction date")
	fs.StringVar(&cols.Label, "label-column", cols.Label, "Column holding the category label")
	fs.StringVar(&cols.ID, "id-column", cols.ID, "Column holding the record id")
	fs.StringVar(&cols.DateLayout, "date-layout", cols.DateLayout, "Go time layout of the date column")
	fs.BoolVar(&o.features, "features", false, "Add date and amount feature columns")
	fs.BoolVar(&o.trace, "trace", false, "With -text, print the output of every stage")
	fs.BoolVar(&o.dumpPatterns, "dump-patterns", false, "Print the pattern table as YAML and exit")
	fs.Float64Var(&o.sampleFrac, "sample-frac", 0, "Write a stratified sample of this fraction per label (0 = off)")
	fs.Int64Var(&o.seed, "seed", 1, "Sampling seed")
	fs.StringVar(&o.complementOutput, "complement-output", "", "File for the records not sampled")
	fs.IntVar(&o.workers, "workers", env.Workers, "Workers (0 = number of CPUs)")
	fs.BoolVar(&o.verbose, "verbose", false, "Log progress to stderr")

	fs.Usage = func() {
		w := fs.Output()
		fmt.Fprintf(w, "Usage: txnclean [options]\n\nOptions:\n")
		fs.PrintDefaults()
		fmt.Fprintf(w, "\nExamples:\n")
		fmt.Fprintf(w, "  txnclean -text \"Prijenos sa HR1234 TEA, AMAZON.COM**\"\n")
		fmt.Fprintf(w, "  txnclean -input statement.txt -output clean.txt\n")
		fmt.Fprintf(w, "  txnclean -format csv -input export.csv -encoding windows-1250 -features\n")
		fmt.Fprintf(w, "  txnclean -format xlsx -input labelled.xlsx -sample-frac 0.2 -output train.xlsx -complement-output holdout.xlsx\n")
	}

	if err := fs.Parse(args); err != nil {
		return o, err
	}

	cols.Encoding = o.encoding
	if o.delimiter != "" {
		r, size := utf8.DecodeRuneInString(o.delimiter)
		if size != len(o.delimiter) {
			return o, fmt.Errorf("delimiter must be a single character, got %q", o.delimiter)
		}
		cols.Comma = r
	}
	o.columns = cols

	return o, o.validate()
}

func (o options) validate() error {
	switch o.format {
	case formatLines, formatCSV, formatXLSX:
	default:
		return fmt.Errorf("invalid format: %s. Must be 'lines', 'csv' or 'xlsx'", o.format)
	}
	if o.trace && o.text == "" {
		return errors.New("-trace needs -text")
	}
	if o.sampleFrac != 0 && o.format == formatLines {
		return errors.New("sampling needs a labelled table (-format csv or xlsx)")
	}
	if o.complementOutput != "" && o.sampleFrac == 0 {
		return errors.New("-complement-output needs -sample-frac")
	}
	return sampling.Config{Fraction: o.sampleFrac, Seed: o.seed}.Validate()
}

func run(ctx context.Context, o options, stdin io.Reader, stdout, stderr io.Writer) error {
	if o.dumpPatterns {
		return dumpPatterns(o, stdout)
	}

	n, err := buildNormalizer(o, stderr)
	if err != nil {
		return err
	}

	if o.text != "" {
		return runText(n, o, stdout)
	}

	in, closeIn, err := openInput(o.input, stdin)
	if err != nil {
		return err
	}
	defer closeIn()

	switch o.format {
	case formatLines:
		return runLines(ctx, n, o, in, stdout)
	default:
		return runTable(ctx, n, o, in, stdout, stderr)
	}
}

func runLines(ctx context.Context, n *normalizer.Normalizer, o options, in io.Reader, stdout io.Writer) (err error) {
	out, closeOut, err := openOutput(o.output, stdout)
	if err != nil {
		return err
	}
	defer closeInto(&err, closeOut)

	_, err = n.ProcessLines(ctx, in, out)
	return err
}

func buildNormalizer(o options, stderr io.Writer) (*normalizer.Normalizer, error) {
	ids, err := normalizer.ParseStages(o.stages)
	if err != nil {
		return nil, err
	}

	opts := []normalizer.Option{
		normalizer.WithStages(ids...),
		normalizer.WithWorkers(o.workers),
		normalizer.WithFeatures(o.features),
		normalizer.WithSilentLogging(),
	}
	if o.patterns != "" {
		opts = append(opts, normalizer.WithPatternFile(o.patterns))
	}
	if o.verbose {
		cfg := logger.DefaultConfig(stderr)
		cfg.AsyncWrite = false
		lg, err := l.NewStandardFactory().CreateLogger(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create logger: %w", err)
		}
		opts = append(opts, normalizer.WithLogger(lg))
	}
	return normalizer.New(opts...)
}

func dumpPatterns(o options, stdout io.Writer) error {
	t := patternfile.Default()
	if o.patterns != "" {
		var err error
		if t, err = patternfile.Load(o.patterns); err != nil {
			return err
		}
	}
	data, err := patternfile.Marshal(t)
	if err != nil {
		return err
	}
	_, err = stdout.Write(data)
	return err
}

func runText(n *normalizer.Normalizer, o options, stdout io.Writer) error {
	if !o.trace {
		_, err := fmt.Fprintln(stdout, n.Normalize(o.text))
		return err
	}
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(n.Trace(o.text))
}

func runTable(ctx context.Context, n *normalizer.Normalizer, o options, in io.Reader, stdout, stderr io.Writer) error {
	var records []normalizer.RawRecord
	var err error
	if o.format == formatXLSX {
		records, err = table.ReadXLSX(in, o.sheet, o.columns)
	} else {
		records, err = table.ReadCSV(in, o.columns)
	}
	if err != nil {
		return fmt.Errorf("reading %s: %w", o.input, err)
	}

	normalized, err := n.NormalizeRecords(ctx, records)
	if err != nil {
		return err
	}

	if o.sampleFrac == 0 {
		return writeTable(o, o.output, normalized, stdout)
	}

	split, err := normalizer.StratifiedSplit(normalized, o.sampleFrac, o.seed)
	if err != nil {
		return err
	}
	if o.verbose {
		printSampleSummary(stderr, normalized, split.Sample)
	}
	if err := writeTable(o, o.output, split.Sample, stdout); err != nil {
		return err
	}
	if o.complementOutput != "" {
		return writeTable(o, o.complementOutput, split.Complement, stdout)
	}
	return nil
}

// printSampleSummary reports, per label, how many rows went into the sample.
func printSampleSummary(w io.Writer, all, sample []normalizer.NormalizedRecord) {
	labels, total := normalizer.LabelCounts(all)
	_, picked := normalizer.LabelCounts(sample)
	for _, label := range labels {
		fmt.Fprintf(w, "sample label=%q rows=%d of %d\n", label, picked[label], total[label])
	}
}

func writeTable(o options, path string, records []normalizer.NormalizedRecord, stdout io.Writer) (err error) {
	out, closeOut, err := openOutput(path, stdout)
	if err != nil {
		return err
	}
	defer closeInto(&err, closeOut)

	if o.format == formatXLSX {
		return table.WriteXLSX(out, records, o.features, o.columns.DateLayout)
	}
	return table.WriteCSV(out, records, o.features, o.columns.DateLayout)
}

func openInput(path string, stdin io.Reader) (io.Reader, func(), error) {
	if path == "" || path == "-" {
		return stdin, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening input: %w", err)
	}
	return f, func() { f.Close() }, nil
}

// openOutput returns the destination and its closer. Closing a file can
// report a failed final write, so callers must check the closer's error.
func openOutput(path string, stdout io.Writer) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return stdout, func() error { return nil }, nil
	}
	if strings.HasSuffix(path, string(os.PathSeparator)) {
		return nil, nil, fmt.Errorf("output %q is a directory", path)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("creating output: %w", err)
	}
	return f, f.Close, nil
}

// closeInto runs closeFn and stores its error in *errp unless an earlier
// error is already there.
func closeInto(errp *error, closeFn func() error) {
	if cerr := closeFn(); cerr != nil && *errp == nil {
		*errp = fmt.Errorf("closing output: %w", cerr)
	}
}
