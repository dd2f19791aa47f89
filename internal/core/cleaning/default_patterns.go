package cleaning

// DefaultTable returns the canonical pattern table used by the default pipeline.
// A fresh copy is returned on every call.
func DefaultTable() PatternTable {
	return PatternTable{
		Categories: []Category{
			{
				Name:  CategoryCreditCard,
				Rules: []Rule{{Pattern: `\d{6}X+\d{4}`}},
			},
			{
				Name: CategoryAbbreviations,
				Rules: []Rule{
					{Pattern: ` D\.O\.O\.?`},
					{Pattern: ` d\.o\.o\.?`},
					{Pattern: `\.DE`},
					{Pattern: `\.de`},
					{Pattern: `\.COM`},
					{Pattern: `S\.R\.L\.?`},
					{Pattern: `\.NET`},
					{Pattern: `\.com`},
					{Pattern: `\.co`},
					{Pattern: `\bD\.O\b`},
					{Pattern: `\*`},
				},
			},
			{
				Name:  CategoryNonASCII,
				Rules: []Rule{{Pattern: `[^\x20-\x7E]`}},
			},
			{
				Name: CategoryCroCodes,
				Rules: []Rule{
					// bank prefixes glued to a digit, only at the start
					{Pattern: `^PBZ\d`},
					{Pattern: `^ZABA\d`},
					{Pattern: `^HPB\d`},
					// business-unit code of retail chains
					{Pattern: `PJ\d+ `},
					// terminal id
					{Pattern: `\bT\d{3,} `},
				},
			},
			{
				Name:  CategoryBranch,
				Rules: []Rule{{Pattern: `\bP-\d{4}\b ?`}},
			},
			{
				Name:  CategoryATM,
				Rules: []Rule{{Pattern: `(ATM )[A-Z]?\d+ `, Replace: "${1}"}},
			},
			{
				Name:  CategoryIBAN,
				Rules: []Rule{{Pattern: `sa HR\d+ `}},
			},
			{
				Name: CategoryPunctuation,
				Rules: []Rule{
					{Pattern: `\.`},
					{Pattern: `:`},
					{Pattern: `'`},
					{Pattern: `^,\s*`},
					{Pattern: `\s*,$`},
					// earlier deletions can leave gaps behind
					{Pattern: `\s{2,}`, Replace: " "},
					{Pattern: `^\s+|\s+$`},
				},
			},
		},
	}
}
