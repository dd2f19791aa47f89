package ports

// Normalizer defines the interface for transaction text normalization.
type Normalizer interface {
	Normalize(text string) string
}

// CardExtractor reads the masked card number out of a description without modifying it.
type CardExtractor interface {
	ExtractMaskedCard(text string) (string, bool)
}
