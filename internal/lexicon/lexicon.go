// Package lexicon holds the static multilingual keyword tables used for
// query understanding. The tables are plain package-level values, loaded
// once and never mutated, so concurrent reads need no synchronization.
package lexicon

import "github.com/dukaanlabs/dukaan/internal/domain"

// CategoryEntry binds a category to its synonyms across English, romanized
// Hindi and Devanagari. Entries are matched in order; keep the more specific
// categories ahead of ones whose synonyms could shadow them.
type CategoryEntry struct {
	Category string
	Synonyms []string
}

// categoryTable maps each category of the closed enumeration to 5-10
// synonyms. Devanagari synonyms are matched against the original-cased
// query text because lowercasing corrupts combining sequences.
var categoryTable = []CategoryEntry{
	{"ac repair", []string{"ac repair", "ac service", "air conditioner", "ac mechanic", "ac thik", "एसी", "एसी रिपेयर", "एसी मैकेनिक"}},
	{"plumber", []string{"plumber", "plumbing", "nalka", "nal thik", "pipe leak", "tap repair", "प्लंबर", "नल", "पाइप"}},
	{"electrician", []string{"electrician", "bijli", "wiring", "fan repair", "switch board", "बिजली", "इलेक्ट्रीशियन", "वायरिंग"}},
	{"carpenter", []string{"carpenter", "badhai", "furniture repair", "woodwork", "almirah", "बढ़ई", "फर्नीचर", "लकड़ी का काम"}},
	{"salon", []string{"salon", "saloon", "haircut", "barber", "parlour", "beauty parlor", "सैलून", "नाई", "पार्लर"}},
	{"restaurant", []string{"restaurant", "dhaba", "khana", "food point", "biryani", "रेस्टोरेंट", "ढाबा", "खाना", "भोजनालय"}},
	{"grocery", []string{"grocery", "kirana", "ration", "general store", "sabzi", "किराना", "राशन", "जनरल स्टोर", "सब्ज़ी"}},
	{"medical store", []string{"medical store", "pharmacy", "chemist", "dawai", "dawa ki dukan", "मेडिकल स्टोर", "दवाई", "दवा", "केमिस्ट"}},
	{"mobile repair", []string{"mobile repair", "phone repair", "mobile thik", "screen replace", "mobile mechanic", "मोबाइल रिपेयर", "फोन रिपेयर", "मोबाइल की दुकान"}},
	{"clothing", []string{"clothing", "clothes", "kapde", "garments", "readymade", "boutique", "कपड़े की दुकान", "गारमेंट्स", "बुटीक"}},
	{"jewellery", []string{"jewellery", "jewelry", "jeweller", "gahne", "sunar", "ornaments", "ज्वेलरी", "गहने की दुकान", "सुनार"}},
	{"sweet shop", []string{"sweet shop", "sweets", "mithai", "halwai", "laddu", "मिठाई", "हलवाई", "मिठाई की दुकान"}},
}

// Price-intent buckets. Scanned in precedence order: cheap > best > nearby.
var (
	cheapSynonyms = []string{"cheap", "cheapest", "sasta", "saste", "sasti", "budget", "affordable", "kam daam", "kam paise", "सस्ता", "सस्ती", "सस्ते", "कम दाम"}

	bestSynonyms = []string{"best", "top", "accha", "acha", "badhiya", "sabse accha", "famous", "अच्छा", "अच्छी", "बढ़िया", "सबसे अच्छा", "मशहूर"}

	nearbySynonyms = []string{"near", "nearby", "nearest", "paas", "pass me", "nazdeek", "najdik", "aas paas", "पास", "नज़दीक", "नजदीक", "आस पास"}
)

// greetingKeywords trigger the greeting reply when no category resolves.
var greetingKeywords = []string{"hello", "hi", "hey", "namaste", "namaskar", "good morning", "good evening", "नमस्ते", "नमस्कार", "हेलो"}

// personalKeywords identify "about the assistant" queries, which
// short-circuit the whole retrieval pipeline.
var personalKeywords = []string{
	"who are you", "your name", "what can you do", "about you",
	"tum kaun", "tum kon", "tumhara naam", "aap kaun", "apna naam",
	"kya kar sakte", "तुम कौन", "आप कौन", "तुम्हारा नाम", "आपका नाम", "क्या कर सकते",
}

// Entries returns the category table in match order.
func Entries() []CategoryEntry {
	return categoryTable
}

// PriceIntentBuckets returns the price-intent buckets in precedence order.
func PriceIntentBuckets() []struct {
	Intent   domain.PriceIntent
	Synonyms []string
} {
	return []struct {
		Intent   domain.PriceIntent
		Synonyms []string
	}{
		{domain.PriceIntentCheap, cheapSynonyms},
		{domain.PriceIntentBest, bestSynonyms},
		{domain.PriceIntentNearby, nearbySynonyms},
	}
}

// GreetingKeywords returns the greeting keyword set.
func GreetingKeywords() []string {
	return greetingKeywords
}

// PersonalKeywords returns the "about the assistant" keyword set.
func PersonalKeywords() []string {
	return personalKeywords
}
