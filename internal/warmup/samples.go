package warmup

import (
	"fmt"
	"strings"

	"github.com/brianvoe/gofakeit/v6"
)

var (
	legalForms  = []string{"D.O.O.", "d.o.o.", "S.R.L.", "D.O", ""}
	domains     = []string{".COM", ".com", ".DE", ".NET", ".co", ""}
	bankPrefix  = []string{"PBZ1", "ZABA2", "HPB3"}
	payVerbs    = []string{"Placanje", "Prijenos", "Uplata", "Kupnja", "Payment"}
	nonASCIIMix = []string{"Plaćanje", "Žabac", "Đakovo", "Čačak", "Šibenik"}
)

// SampleTransactions generates n synthetic bank transaction descriptions that
// hit every cleaning stage: masked cards, legal suffixes, bank and terminal
// codes, branch and ATM tags, IBAN transfers and stray punctuation.
// The output is deterministic for a seed.
func SampleTransactions(seed int64, n int) []string {
	faker := gofakeit.New(seed)
	out := make([]string, n)
	for i := range out {
		out[i] = sampleTransaction(faker, i)
	}
	return out
}

func sampleTransaction(faker *gofakeit.Faker, i int) string {
	company := strings.ToUpper(strings.Fields(faker.Company())[0])
	city := strings.ToUpper(faker.City())

	switch i % 6 {
	case 0:
		return fmt.Sprintf("%s %s %s %s, %s",
			faker.RandomString(payVerbs),
			faker.Numerify("######XXXXXX####"),
			company,
			faker.RandomString(legalForms),
			city,
		)
	case 1:
		return fmt.Sprintf("%s%s %s, %s",
			faker.RandomString(bankPrefix), company, faker.Numerify("T####"), company)
	case 2:
		return fmt.Sprintf("ATM %s%s %s %s",
			strings.ToUpper(faker.LetterN(1)), faker.Numerify("#######"), city, faker.RandomString(nonASCIIMix))
	case 3:
		return fmt.Sprintf("Prijenos sa HR%s %s, %s",
			faker.Numerify("###################"), faker.FirstName(), faker.LastName())
	case 4:
		return fmt.Sprintf("%s P-%s %s PJ%s %s: '%s'",
			company, faker.Numerify("####"), city, faker.Numerify("###"), faker.Word(), faker.Word())
	default:
		return fmt.Sprintf("%s%s** %s %s",
			company, faker.RandomString(domains), city, faker.RandomString(legalForms))
	}
}
