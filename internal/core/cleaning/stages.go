package cleaning

import (
	"fmt"
	"regexp"
	"strings"
)

// StageID names one stage of the pipeline.
type StageID string

// Stage identifiers, listed in canonical order.
const (
	StageCreditCard    StageID = "credit_card"
	StageRepeatedWords StageID = "repeated_words"
	StageCommasSpaces  StageID = "commas_spaces"
	StageAbbreviations StageID = "abbreviations"
	StageNonASCII      StageID = "non_ascii"
	StageCroCodes      StageID = "cro_codes"
	StageBranch        StageID = "branch_no"
	StageATM           StageID = "atm_no"
	StageIBAN          StageID = "iban"
	StagePunctuation   StageID = "punctuation"
)

// CanonicalOrder returns the default stage order. Later stages rely on
// artifacts the earlier ones removed, so the order matters.
func CanonicalOrder() []StageID {
	return []StageID{
		StageCreditCard,
		StageRepeatedWords,
		StageCommasSpaces,
		StageAbbreviations,
		StageNonASCII,
		StageCroCodes,
		StageBranch,
		StageATM,
		StageIBAN,
		StagePunctuation,
	}
}

// ParseStageID validates a stage name.
func ParseStageID(name string) (StageID, error) {
	id := StageID(strings.TrimSpace(name))
	for _, known := range CanonicalOrder() {
		if id == known {
			return id, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStage, name)
}

// ParseStageList parses a comma separated list of stage names.
// An empty list yields the canonical order.
func ParseStageList(list string) ([]StageID, error) {
	if strings.TrimSpace(list) == "" {
		return CanonicalOrder(), nil
	}
	parts := strings.Split(list, ",")
	ids := make([]StageID, 0, len(parts))
	for _, p := range parts {
		id, err := ParseStageID(p)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Stage is one pure string-to-string transformation.
type Stage struct {
	ID StageID
	fn func(string) string
}

// Apply runs the stage on text.
func (s Stage) Apply(text string) string {
	return s.fn(text)
}

// ApplyValue runs the stage on string values and returns anything else unchanged,
// so missing cells of a table flow through untouched.
func (s Stage) ApplyValue(v interface{}) interface{} {
	switch text := v.(type) {
	case string:
		return s.fn(text)
	case *string:
		if text == nil {
			return v
		}
		out := s.fn(*text)
		return &out
	default:
		return v
	}
}

// stageCategories maps the table-driven stages to the category they read.
var stageCategories = map[StageID]string{
	StageCreditCard:    CategoryCreditCard,
	StageAbbreviations: CategoryAbbreviations,
	StageNonASCII:      CategoryNonASCII,
	StageCroCodes:      CategoryCroCodes,
	StageBranch:        CategoryBranch,
	StageATM:           CategoryATM,
	StageIBAN:          CategoryIBAN,
	StagePunctuation:   CategoryPunctuation,
}

// RequiredCategories returns the table categories needed by the given stages.
func RequiredCategories(ids []StageID) []string {
	var out []string
	seen := make(map[string]bool)
	for _, id := range ids {
		name, ok := stageCategories[id]
		if !ok || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}

// buildStage compiles the stage for id against the table.
func buildStage(id StageID, table PatternTable) (Stage, error) {
	switch id {
	case StageRepeatedWords:
		return Stage{ID: id, fn: RemoveRepeatedWords}, nil
	case StageCommasSpaces:
		return Stage{ID: id, fn: RemoveCommasAndExtraSpaces}, nil
	}

	name, ok := stageCategories[id]
	if !ok {
		return Stage{}, fmt.Errorf("%w: %q", ErrUnknownStage, id)
	}
	rules, err := table.compileCategory(name)
	if err != nil {
		return Stage{}, err
	}

	fn := func(text string) string {
		return applyRules(rules, text)
	}
	if id == StageCreditCard {
		fn = func(text string) string {
			return strings.TrimSpace(applyRules(rules, text))
		}
	}
	return Stage{ID: id, fn: fn}, nil
}

// RemoveRepeatedWords keeps the first occurrence of every whitespace-delimited
// token, comparing case-insensitively, and joins the survivors with single spaces.
func RemoveRepeatedWords(text string) string {
	tokens := strings.Fields(text)
	if len(tokens) == 0 {
		return ""
	}

	seen := make(map[string]struct{}, len(tokens))
	kept := tokens[:0]
	for _, tok := range tokens {
		key := strings.ToLower(tok)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, tok)
	}
	return strings.Join(kept, " ")
}

var multiSpace = regexp.MustCompile(` +`)

// RemoveCommasAndExtraSpaces deletes commas, collapses runs of spaces and trims the edges.
func RemoveCommasAndExtraSpaces(text string) string {
	text = strings.ReplaceAll(text, ",", "")
	text = multiSpace.ReplaceAllLiteralString(text, " ")
	return strings.TrimSpace(text)
}
