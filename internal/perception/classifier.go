package perception

import (
	"strings"

	"voucherbot/internal/logging"
	"voucherbot/internal/normalize"
	"voucherbot/internal/types"
)

// Match is a Tier 1 classification hit: the winning rule, its intent, and
// the raw captured substrings. Captures are not yet normalized; the router
// runs them through the normalizer so both tiers share one validation path.
type Match struct {
	Rule   string
	Intent types.Intent
	Raw    normalize.RawParameters
}

// Classify runs the ordered rule table against the (already resolved)
// message text. The first rule whose Match fires and whose Exclude does not
// wins. ok=false is the expected no-match signal that hands the message to
// the fallback tier, not an error.
func Classify(text string) (Match, bool) {
	msg := strings.ToLower(strings.TrimSpace(text))
	if msg == "" {
		return Match{}, false
	}

	for _, rule := range Rules {
		if !rule.Match.MatchString(msg) {
			continue
		}
		if rule.Exclude != nil && rule.Exclude.MatchString(msg) {
			continue
		}
		m := Match{
			Rule:   rule.Name,
			Intent: rule.Intent,
			Raw:    extractCaptures(msg),
		}
		logging.PerceptionDebug("rule %q matched intent=%s captures=%+v", rule.Name, rule.Intent, m.Raw)
		return m, true
	}

	logging.PerceptionDebug("no rule matched, deferring to fallback")
	return Match{}, false
}

func extractCaptures(msg string) normalize.RawParameters {
	return normalize.RawParameters{
		Borough:     firstCapture(msg, boroughCaptures),
		Bedrooms:    firstCapture(msg, bedroomCaptures),
		MaxRent:     firstCapture(msg, rentCaptures),
		VoucherType: firstCapture(msg, voucherCaptures),
	}
}
