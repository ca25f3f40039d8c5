package perception

import (
	"regexp"

	"voucherbot/internal/types"
)

// Rule is one entry in the ordered dispatch table. Match fires the rule;
// Exclude vetoes it, which stands in for negative lookahead since RE2 has
// none. The slice order below is the dispatch order and is load-bearing:
// rules are tried top to bottom and the first hit wins.
type Rule struct {
	Name    string
	Intent  types.Intent
	Match   *regexp.Regexp
	Exclude *regexp.Regexp
}

// listingRef matches an explicit listing reference ("listing 2", "#3",
// "apartment #1"). Used both as a trigger and as an exclusion guard on the
// refinement rules, so "what about listing 2" stays a follow-up while
// "what about Brooklyn" stays a refinement.
var listingRef = regexp.MustCompile(`(?i)\b(?:listing|apartment|property|unit)\s*#?\s*\d+\b|#\s*\d+\b`)

// Rules is the classifier's dispatch table. Ordering constraints, each
// covered by a test in rules_test.go:
//
//  1. Location-change phrasing ("what if", "how about", "try X", "instead")
//     outranks everything, because it shares lexical triggers with the
//     listing-question patterns below and loses ties incorrectly otherwise.
//  2. Explicit new-search requests outrank bare constraint refinements, so
//     "find apartments under $2000" starts a search instead of refining one.
//  3. Violation and voucher questions outrank listing references, so
//     "does listing 2 have violations" keeps its specific intent.
//  4. Listing references and proximity follow-ups outrank the generic help
//     patterns.
var Rules = []Rule{
	{
		Name:    "refine-what-if",
		Intent:  types.IntentRefineSearch,
		Match:   regexp.MustCompile(`(?i)\b(what if|how about|what about)\b`),
		Exclude: listingRef,
	},
	{
		Name:   "refine-try-location",
		Intent: types.IntentRefineSearch,
		Match:  regexp.MustCompile(`(?i)\btry\b.*\b(looking|searching|checking|brooklyn|bk|bklyn|manhattan|mnh|midtown|bronx|bx|queens|qns|staten|si)\b`),
	},
	{
		Name:   "refine-instead",
		Intent: types.IntentRefineSearch,
		Match:  regexp.MustCompile(`(?i)\binstead\b`),
	},
	{
		Name:   "search-request",
		Intent: types.IntentSearchListings,
		Match:  regexp.MustCompile(`(?i)\b(find|search|look for|browse|show me)\b.*\b(housing|apartments?|places?|listings?|homes?|spots?|units?|rooms?)\b`),
	},
	{
		Name:   "search-looking",
		Intent: types.IntentSearchListings,
		Match:  regexp.MustCompile(`(?i)\blooking (for|to rent|to find)\b.*\b(room|apartment|place|spot|housing|studio)\b`),
	},
	{
		Name:   "search-available",
		Intent: types.IntentSearchListings,
		Match:  regexp.MustCompile(`(?i)\b(listings?|places?|units?|apartments?)\b.*\b(available|renting|open)\b|\b(available|open)\b.*\b(units?|apartments?|listings?)\b`),
	},
	{
		Name:   "refine-rent-cap",
		Intent: types.IntentRefineSearch,
		Match:  regexp.MustCompile(`(?i)\b(under|below|max|maximum|up to|budget)\b.*\$?\d`),
	},
	{
		Name:   "refine-bedrooms",
		Intent: types.IntentRefineSearch,
		Match:  regexp.MustCompile(`(?i)\b(add|include|also|only|just|with)\b.*\b(\d+\s*(?:br|beds?|bedrooms?)|studio)\b`),
	},
	{
		Name:   "violations-check",
		Intent: types.IntentCheckViolations,
		Match:  regexp.MustCompile(`(?i)\b(check|see|lookup|find out|review|how many)\b.*\b(violations?|hpd|safety|issues?)\b|\b(has|have)\s+(any|a lot of\s+)?violations\b`),
	},
	{
		Name:   "violations-safety",
		Intent: types.IntentCheckViolations,
		Match:  regexp.MustCompile(`(?i)\b(is|was|are)\b.*\b(building|apartment|place|listing)\b.*\b(safe|clean|legal)\b`),
	},
	{
		Name:   "voucher-mention",
		Intent: types.IntentAskVoucherSupport,
		Match:  regexp.MustCompile(`(?i)\b(section[\s\-]?8|hasa|cityfheps|cityfeps|fheps|vouchers?|housing assistance|hra|hpd|dss)\b`),
	},
	{
		Name:   "voucher-accepts",
		Intent: types.IntentAskVoucherSupport,
		Match:  regexp.MustCompile(`(?i)\b(accepts?|takes?)\b.*\bvouchers?\b|\b(how|where|when)\b.*\b(apply|get|use)\b.*\bvoucher\b`),
	},
	{
		Name:   "followup-listing-ref",
		Intent: types.IntentFollowUp,
		Match:  listingRef,
	},
	{
		Name:   "followup-proximity",
		Intent: types.IntentFollowUp,
		Match:  regexp.MustCompile(`(?i)\b(nearest|closest)\b.*\b(subway|train|transit|school)\b`),
	},
	{
		Name:   "followup-navigation",
		Intent: types.IntentFollowUp,
		Match:  regexp.MustCompile(`(?i)\b(next|previous|prev|back)\b\s*(listing|one|property|apartment)?\b`),
	},
	{
		Name:   "followup-ordinal",
		Intent: types.IntentFollowUp,
		Match:  regexp.MustCompile(`(?i)\b(first|second|third|fourth|fifth|last|penultimate)\s+(listing|one|property|apartment)\b`),
	},
	{
		Name:   "help-request",
		Intent: types.IntentHelpRequest,
		Match:  regexp.MustCompile(`(?i)\b(help|what can you do|options|commands|features|assist|instructions)\b|\b(stuck|lost|confused)\b|\bhow (do|can) i\b.*\b(use|search|find)\b`),
	},
}

// Capture extractors shared by every matched rule. They pull raw substrings
// out of the full message; normalization happens later so both tiers run
// through the same validation.
var (
	boroughCaptures = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(?:in|at|near|to|about)\s+(?:the\s+)?(bronx|brooklyn|manhattan|queens|staten\s+island|midtown)\b`),
		regexp.MustCompile(`(?i)\b(bronx|brooklyn|manhattan|queens|staten\s+island|midtown)\b`),
		regexp.MustCompile(`(?i)\b(bk|bklyn|si|bx|qns|mnh)\b`),
		regexp.MustCompile(`(布朗克斯|布朗士|布鲁克林|曼哈顿|皇后区|皇后|史泰登岛)`),
		regexp.MustCompile(`(ব্রংক্স|ব্রনক্স|ব্রুকলিন|ম্যানহাটান|কুইন্স|স্ট্যাটেন আইল্যান্ড)`),
	}
	bedroomCaptures = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(\d+\s*(?:br|beds?|bedrooms?))\b`),
		regexp.MustCompile(`(?i)\b(studio|one|two|three|four|five)\s*(?:br|beds?|bedrooms?)\b`),
		regexp.MustCompile(`(?i)\b(studio)\b`),
	}
	rentCaptures = []*regexp.Regexp{
		regexp.MustCompile(`(?i)((?:under|below|max|maximum|up to)\s*\$?\s*[\d,]+(?:\.\d+)?\s*k?)`),
		regexp.MustCompile(`(?i)(\$\s*[\d,]+(?:\.\d+)?\s*k?)`),
		regexp.MustCompile(`(?i)\b([\d,]+(?:\.\d+)?\s*k)\b`),
		regexp.MustCompile(`(?i)\b(\d[\d,]*\s*dollars?)\b`),
	}
	voucherCaptures = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(section[\s\-]?8|section eight|s8|sec\s?8|cityfheps|city fheps|cityfeps|fheps|cfheps|hasa|hpd|dss|hra|housing voucher|housing assistance)\b`),
		regexp.MustCompile(`(?i)\b(voucher)s?\b`),
		regexp.MustCompile(`(sección 8|seccion 8|住房券|租房券|住房补助|第八条|ভাউচার|সেকশন ৮)`),
	}
)

func firstCapture(text string, patterns []*regexp.Regexp) string {
	for _, re := range patterns {
		if m := re.FindStringSubmatch(text); m != nil {
			return m[len(m)-1]
		}
	}
	return ""
}
