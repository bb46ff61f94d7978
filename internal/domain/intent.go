package domain

// Language is the detected script mix of a query
type Language string

const (
	LanguageHindi   Language = "hindi"   // Devanagari only
	LanguageMixed   Language = "mixed"   // Devanagari and Latin
	LanguageEnglish Language = "english" // Latin / romanized
)

// PriceIntent is a coarse secondary signal extracted from the query,
// used only as a ranking tie-break and for reply template selection.
type PriceIntent string

const (
	PriceIntentCheap  PriceIntent = "cheap"
	PriceIntentBest   PriceIntent = "best"
	PriceIntentNearby PriceIntent = "nearby"
)

// Categories is the closed enumeration of business categories the
// classifier may resolve to. Anything outside this list is rejected.
var Categories = []string{
	"ac repair",
	"plumber",
	"electrician",
	"carpenter",
	"salon",
	"restaurant",
	"grocery",
	"medical store",
	"mobile repair",
	"clothing",
	"jewellery",
	"sweet shop",
}

// IsKnownCategory reports whether c is in the closed category enumeration.
func IsKnownCategory(c string) bool {
	for _, known := range Categories {
		if known == c {
			return true
		}
	}
	return false
}

// ResolvedIntent is the classifier output for a query.
// Category is empty when unresolved; PriceIntent is empty when absent.
type ResolvedIntent struct {
	Language    Language
	Category    string
	PriceIntent PriceIntent
}
