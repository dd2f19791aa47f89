package cleaning

import (
	"errors"
	"fmt"
	"regexp"
)

// Category names used by the default stages.
const (
	CategoryCreditCard    = "credit_card_no"
	CategoryAbbreviations = "abbreviations"
	CategoryNonASCII      = "non_ascii_chr"
	CategoryCroCodes      = "cro_abrv"
	CategoryBranch        = "branch_no"
	CategoryATM           = "atm_no"
	CategoryIBAN          = "iban"
	CategoryPunctuation   = "punctuation"
)

// Configuration errors returned while building a pipeline.
var (
	ErrDuplicateCategory = errors.New("duplicate pattern category")
	ErrEmptyCategory     = errors.New("pattern category has no rules")
	ErrMissingCategory   = errors.New("pattern category is missing")
	ErrInvalidPattern    = errors.New("invalid pattern")
	ErrUnknownStage      = errors.New("unknown stage")
)

// Rule is one pattern of a category. An empty Replace deletes the match,
// otherwise Replace is expanded as a regexp template (e.g. "${1}").
type Rule struct {
	Pattern string `yaml:"pattern" json:"pattern"`
	Replace string `yaml:"replace,omitempty" json:"replace,omitempty"`
}

// Category groups the rules applied, in order, by one stage.
type Category struct {
	Name  string `yaml:"name" json:"name"`
	Rules []Rule `yaml:"rules" json:"rules"`
}

// PatternTable is the static cleaning configuration.
type PatternTable struct {
	Categories []Category `yaml:"categories" json:"categories"`
}

// Lookup returns the category with the given name.
func (t PatternTable) Lookup(name string) (Category, bool) {
	for _, c := range t.Categories {
		if c.Name == name {
			return c, true
		}
	}
	return Category{}, false
}

// Extend returns a copy of the table with extra rules appended to a category.
// The category is created when it does not exist yet.
func (t PatternTable) Extend(name string, rules ...Rule) PatternTable {
	out := t.Clone()
	for i := range out.Categories {
		if out.Categories[i].Name == name {
			out.Categories[i].Rules = append(out.Categories[i].Rules, rules...)
			return out
		}
	}
	out.Categories = append(out.Categories, Category{Name: name, Rules: append([]Rule(nil), rules...)})
	return out
}

// Clone returns a deep copy of the table.
func (t PatternTable) Clone() PatternTable {
	out := PatternTable{Categories: make([]Category, len(t.Categories))}
	for i, c := range t.Categories {
		out.Categories[i] = Category{Name: c.Name, Rules: append([]Rule(nil), c.Rules...)}
	}
	return out
}

// Validate checks the table invariants: unique names, non-empty rule lists
// and compilable patterns.
func (t PatternTable) Validate() error {
	seen := make(map[string]struct{}, len(t.Categories))
	for _, c := range t.Categories {
		if _, ok := seen[c.Name]; ok {
			return fmt.Errorf("%w: %q", ErrDuplicateCategory, c.Name)
		}
		seen[c.Name] = struct{}{}

		if len(c.Rules) == 0 {
			return fmt.Errorf("%w: %q", ErrEmptyCategory, c.Name)
		}
		for i, r := range c.Rules {
			if _, err := regexp.Compile(r.Pattern); err != nil {
				return fmt.Errorf("%w: %s rule %d: %v", ErrInvalidPattern, c.Name, i, err)
			}
		}
	}
	return nil
}

// compiledRule is a Rule with its regexp ready for use.
type compiledRule struct {
	re      *regexp.Regexp
	replace string
}

func (r compiledRule) apply(text string) string {
	if r.replace == "" {
		return r.re.ReplaceAllLiteralString(text, "")
	}
	return r.re.ReplaceAllString(text, r.replace)
}

// compileCategory compiles the rules of a required category.
func (t PatternTable) compileCategory(name string) ([]compiledRule, error) {
	c, ok := t.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMissingCategory, name)
	}
	if len(c.Rules) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrEmptyCategory, name)
	}

	rules := make([]compiledRule, 0, len(c.Rules))
	for i, r := range c.Rules {
		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			return nil, fmt.Errorf("%w: %s rule %d: %v", ErrInvalidPattern, name, i, err)
		}
		rules = append(rules, compiledRule{re: re, replace: r.Replace})
	}
	return rules, nil
}

// applyRules runs rules in order, each one seeing the previous one's output.
func applyRules(rules []compiledRule, text string) string {
	for _, r := range rules {
		text = r.apply(text)
	}
	return text
}
