// Package txnnormalizer cleans free-text financial transaction descriptions.
//
// The package-level functions use a shared normalizer built from the default
// pattern table and the canonical stage order:
//
//	credit_card, repeated_words, commas_spaces, abbreviations, non_ascii,
//	cro_codes, branch_no, atm_no, iban, punctuation
//
// Every function accepts any value; non-string values (nil, numbers, missing
// cells) are returned unchanged. Use pkg/normalizer for custom tables, stage
// lists, batches and streams.
package txnnormalizer

import (
	"sync"

	"github.com/baditaflorin/go_txn_normalizer/pkg/normalizer"
)

var (
	defaultOnce       sync.Once
	defaultNormalizer *normalizer.Normalizer
)

// Default returns the shared normalizer.
func Default() *normalizer.Normalizer {
	defaultOnce.Do(func() {
		opts := []normalizer.Option{normalizer.WithSilentLogging()}
		if lg, err := createDefaultLogger(); err == nil {
			opts = []normalizer.Option{normalizer.WithLogger(lg)}
		}
		n, err := normalizer.New(opts...)
		if err != nil {
			// The built-in table is validated by tests; failing here is a programming error.
			panic("txnnormalizer: default normalizer: " + err.Error())
		}
		defaultNormalizer = n
	})
	return defaultNormalizer
}

// Normalize runs the full default pipeline on text.
func Normalize(text string) string {
	return Default().Normalize(text)
}

// NormalizeValue runs the full default pipeline on string values.
func NormalizeValue(v interface{}) interface{} {
	return Default().NormalizeValue(v)
}

// ExtractMaskedCard returns the first masked card number (six digits, a run of
// X, four digits) in text without modifying it.
func ExtractMaskedCard(text string) (string, bool) {
	return Default().ExtractMaskedCard(text)
}

func applyStage(id normalizer.StageID, v interface{}) interface{} {
	switch s := v.(type) {
	case string:
		out, _ := Default().ApplyStage(id, s)
		return out
	case *string:
		if s == nil {
			return s
		}
		out, _ := Default().ApplyStage(id, *s)
		return &out
	default:
		return v
	}
}

// RemoveCreditCards deletes masked card numbers and trims the result.
func RemoveCreditCards(v interface{}) interface{} {
	return applyStage(normalizer.StageCreditCard, v)
}

// RemoveRepeatedWords keeps the first occurrence of every word, compared
// case-insensitively.
func RemoveRepeatedWords(v interface{}) interface{} {
	return applyStage(normalizer.StageRepeatedWords, v)
}

// RemoveCommasAndExtraSpaces deletes commas and collapses runs of spaces.
func RemoveCommasAndExtraSpaces(v interface{}) interface{} {
	return applyStage(normalizer.StageCommasSpaces, v)
}

// RemoveAbbreviations deletes legal-form and web-domain suffixes.
func RemoveAbbreviations(v interface{}) interface{} {
	return applyStage(normalizer.StageAbbreviations, v)
}

// RemoveNonASCII deletes characters outside the printable ASCII range.
func RemoveNonASCII(v interface{}) interface{} {
	return applyStage(normalizer.StageNonASCII, v)
}

// RemoveCroatianCodes deletes bank prefixes, business-unit and terminal codes.
func RemoveCroatianCodes(v interface{}) interface{} {
	return applyStage(normalizer.StageCroCodes, v)
}

// RemoveBranchNumbers deletes P-dddd branch tags.
func RemoveBranchNumbers(v interface{}) interface{} {
	return applyStage(normalizer.StageBranch, v)
}

// NormalizeATM reduces "ATM <id> " to "ATM ".
func NormalizeATM(v interface{}) interface{} {
	return applyStage(normalizer.StageATM, v)
}

// RemoveIBANTransfers deletes "sa HR<digits> " transfer markers.
func RemoveIBANTransfers(v interface{}) interface{} {
	return applyStage(normalizer.StageIBAN, v)
}

// RemovePunctuation deletes dots, colons, apostrophes and edge commas.
func RemovePunctuation(v interface{}) interface{} {
	return applyStage(normalizer.StagePunctuation, v)
}
