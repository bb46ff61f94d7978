package service

import (
	"fmt"
	"math"
	"strings"

	"github.com/dukaanlabs/dukaan/internal/domain"
)

const descriptionLimit = 100

// replySet holds every canned sentence and template for one language.
// Keyed lookups always fall back to english so a new language value can
// never produce an empty reply.
type replySet struct {
	foundDefault string // fmt verb: shop name
	foundCheap   string
	foundBest    string

	rating    string // fmt verbs: rating, review count
	distance  string // fmt verbs: rendered distance, rendered travel time
	address   string // fmt verb: address
	phone     string // fmt verb: phone
	verified  string
	cta       string
	notFound  string // fmt verb: category
	greeting  string
	partial   string // fmt verb: shop name
	clarify   string
	personal  string
	fallback  string
	minutes   string // fmt verb: minute count
	fewMinute string
}

var replies = map[domain.Language]replySet{
	domain.LanguageEnglish: {
		foundDefault: "I found %s for you.",
		foundCheap:   "For a budget-friendly option, %s is a good pick.",
		foundBest:    "The best rated option I found is %s.",
		rating:       "It has a %.1f rating from %d reviews.",
		distance:     "It's about %s away, %s.",
		address:      "Address: %s.",
		phone:        "Phone: %s.",
		verified:     "This is a verified partner shop.",
		cta:          "Would you like their number or directions?",
		notFound:     "Sorry, I couldn't find any %s near you right now. Try another category?",
		greeting:     "Hello! Tell me what you're looking for, like 'AC repair' or 'salon near me'.",
		partial:      "I couldn't pin down a category, but %s might help. Want to know more?",
		clarify:      "I didn't quite get that. What kind of shop or service do you need?",
		personal:     "I'm the Dukaan assistant. I help you find local shops and services. What do you need?",
		fallback:     "Sorry, something went wrong. Please try again in a moment.",
		minutes:      "around %d minutes from you",
		fewMinute:    "just 2-3 minutes from you",
	},
	domain.LanguageHindi: {
		foundDefault: "आपके लिए %s मिली है।",
		foundCheap:   "सस्ते दाम के लिए %s अच्छा विकल्प है।",
		foundBest:    "सबसे अच्छी दुकान %s है।",
		rating:       "इसकी रेटिंग %.1f है (%d रिव्यू)।",
		distance:     "यह लगभग %s दूर है, %s।",
		address:      "पता: %s।",
		phone:        "फ़ोन: %s।",
		verified:     "यह एक प्रमाणित साझेदार दुकान है।",
		cta:          "क्या आपको इनका नंबर या रास्ता चाहिए?",
		notFound:     "माफ़ कीजिए, अभी आपके इलाके में कोई %s नहीं मिली। कोई और श्रेणी आज़माएँ?",
		greeting:     "नमस्ते! बताइए आपको क्या चाहिए, जैसे 'AC repair' या 'सलून'।",
		partial:      "सही श्रेणी समझ नहीं आई, लेकिन %s आपके काम आ सकती है। और जानना चाहेंगे?",
		clarify:      "मैं समझ नहीं पाया। आपको किस तरह की दुकान या सेवा चाहिए?",
		personal:     "मैं दुकान असिस्टेंट हूँ। आपके आस-पास की दुकानें ढूँढने में मदद करता हूँ। आपको क्या चाहिए?",
		fallback:     "माफ़ कीजिए, कुछ गड़बड़ हो गई। थोड़ी देर में फिर कोशिश करें।",
		minutes:      "करीब %d मिनट",
		fewMinute:    "बस 2-3 मिनट",
	},
	domain.LanguageMixed: {
		foundDefault: "Aapke liye %s mili hai.",
		foundCheap:   "Saste daam ke liye %s accha option hai.",
		foundBest:    "Sabse acchi dukaan %s hai.",
		rating:       "Iski rating %.1f hai (%d reviews).",
		distance:     "Yeh around %s door hai, %s.",
		address:      "Address: %s.",
		phone:        "Phone: %s.",
		verified:     "Yeh verified partner shop hai.",
		cta:          "Kya aapko inka number ya raasta chahiye?",
		notFound:     "Sorry, abhi aapke area mein koi %s nahi mili. Koi aur category try karein?",
		greeting:     "Namaste! Batayiye kya chahiye, jaise 'AC repair' ya 'salon'.",
		partial:      "Category samajh nahi aayi, lekin %s kaam aa sakti hai. Aur jaanna chahenge?",
		clarify:      "Main samjha nahi. Aapko kis tarah ki dukaan ya service chahiye?",
		personal:     "Main Dukaan assistant hoon. Aas-paas ki dukaanein dhoondhne mein madad karta hoon. Aapko kya chahiye?",
		fallback:     "Sorry, kuch gadbad ho gayi. Thodi der mein phir try karein.",
		minutes:      "karib %d minute",
		fewMinute:    "bas 2-3 minute",
	},
}

func repliesFor(lang domain.Language) replySet {
	if r, ok := replies[lang]; ok {
		return r
	}
	return replies[domain.LanguageEnglish]
}

// Composer renders localized replies from ranked candidates. It never
// invents data: a sentence whose source field is absent is dropped.
type Composer struct{}

func NewComposer() *Composer {
	return &Composer{}
}

// ComposeFound builds the reply for a non-empty shortlist. The text
// describes the top candidate; the rest of the shortlist rides along as
// structured data for the UI.
func (c *Composer) ComposeFound(top *domain.ScoredShop, lang domain.Language, priceIntent domain.PriceIntent) string {
	r := repliesFor(lang)

	var lead string
	switch priceIntent {
	case domain.PriceIntentCheap:
		lead = fmt.Sprintf(r.foundCheap, top.Shop.Name)
	case domain.PriceIntentBest:
		lead = fmt.Sprintf(r.foundBest, top.Shop.Name)
	default:
		lead = fmt.Sprintf(r.foundDefault, top.Shop.Name)
	}

	parts := []string{lead}

	if desc := truncate(top.Shop.Description, descriptionLimit); desc != "" {
		parts = append(parts, desc)
	}
	if top.Shop.Rating > 0 {
		parts = append(parts, fmt.Sprintf(r.rating, top.Shop.Rating, top.Shop.ReviewCount))
	}
	if top.DistanceKm != nil && *top.DistanceKm > 0 {
		parts = append(parts, fmt.Sprintf(r.distance, renderDistance(*top.DistanceKm), renderTravelTime(*top.DistanceKm, r)))
	}
	if top.Shop.Address != "" {
		parts = append(parts, fmt.Sprintf(r.address, top.Shop.Address))
	}
	if top.Shop.Phone != "" {
		parts = append(parts, fmt.Sprintf(r.phone, top.Shop.Phone))
	}
	if top.HasPlan {
		parts = append(parts, r.verified)
	}
	parts = append(parts, r.cta)

	return strings.Join(parts, " ")
}

// NotFound is the reply when the category resolved but no shop serves it.
func (c *Composer) NotFound(lang domain.Language, category string) string {
	return fmt.Sprintf(repliesFor(lang).notFound, category)
}

// Greeting is the reply for greetings and very short queries.
func (c *Composer) Greeting(lang domain.Language) string {
	return repliesFor(lang).greeting
}

// PartialGuess offers the best keyword match when no category resolved.
func (c *Composer) PartialGuess(lang domain.Language, shopName string) string {
	return fmt.Sprintf(repliesFor(lang).partial, shopName)
}

// Clarification is the last resort of the degraded path.
func (c *Composer) Clarification(lang domain.Language) string {
	return repliesFor(lang).clarify
}

// Personal answers queries about the assistant itself.
func (c *Composer) Personal(lang domain.Language) string {
	return repliesFor(lang).personal
}

// Fallback is the user-safe sentence returned on internal failure.
func (c *Composer) Fallback(lang domain.Language) string {
	return repliesFor(lang).fallback
}

// renderDistance prints metres under a kilometre, kilometres above.
func renderDistance(km float64) string {
	if km < 1 {
		return fmt.Sprintf("%d m", int(math.Round(km*1000)))
	}
	return fmt.Sprintf("%.1f km", km)
}

// renderTravelTime estimates minutes as round(km x 2); sub-kilometre
// distances get the fixed "2-3 minutes" phrasing.
func renderTravelTime(km float64, r replySet) string {
	if km < 1 {
		return r.fewMinute
	}
	return fmt.Sprintf(r.minutes, int(math.Round(km*2)))
}

func truncate(s string, limit int) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
