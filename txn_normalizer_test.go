package txnnormalizer

import (
	"testing"
)

func TestStageFunctions(t *testing.T) {
	tests := []struct {
		name string
		fn   func(interface{}) interface{}
		in   string
		want string
	}{
		{"credit card", RemoveCreditCards, " Payment 462765XXXXXX1234 ", "Payment"},
		{"repeated words", RemoveRepeatedWords, "Coffee coffee Shop COFFEE", "Coffee Shop"},
		{"commas", RemoveCommasAndExtraSpaces, "A,  B ,C", "A B C"},
		{"abbreviations", RemoveAbbreviations, "AMAZON.COM*", "AMAZON"},
		{"non ascii", RemoveNonASCII, "Plaćanje", "Plaanje"},
		{"croatian codes", RemoveCroatianCodes, "PBZ1KONZUM", "KONZUM"},
		{"branch", RemoveBranchNumbers, "Store P-1234 purchase", "Store purchase"},
		{"atm", NormalizeATM, "ATM A3122001 withdrawal", "ATM withdrawal"},
		{"iban", RemoveIBANTransfers, "Prijenos sa HR1234 TEA", "Prijenos TEA"},
		{"punctuation", RemovePunctuation, "Mr. O'Neil: paid", "Mr ONeil paid"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.fn(tc.in); got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
			if got := tc.fn(nil); got != nil {
				t.Errorf("expected nil to pass through, got %v", got)
			}
			if got := tc.fn(12.5); got != 12.5 {
				t.Errorf("expected number to pass through, got %v", got)
			}
		})
	}
}

func TestStageFunctionsStringPointer(t *testing.T) {
	in := "AMAZON.COM"
	out, ok := RemoveAbbreviations(&in).(*string)
	if !ok || *out != "AMAZON" {
		t.Fatalf("unexpected result %v", out)
	}
	if in != "AMAZON.COM" {
		t.Error("input was modified")
	}
	var missing *string
	if got := RemoveAbbreviations(missing).(*string); got != nil {
		t.Error("expected nil pointer to pass through")
	}
}

func TestNormalize(t *testing.T) {
	got := Normalize("Prijenos sa HR1234 TEA, Store P-0980, AMAZON.COM**")
	if got != "Prijenos TEA Store AMAZON" {
		t.Errorf("unexpected output %q", got)
	}
	if NormalizeValue(nil) != nil {
		t.Error("expected nil to pass through")
	}
	if card, ok := ExtractMaskedCard("x 123456XXXX7890 y"); !ok || card != "123456XXXX7890" {
		t.Errorf("unexpected card %q", card)
	}
	if Default() != Default() {
		t.Error("expected a shared default normalizer")
	}
}
