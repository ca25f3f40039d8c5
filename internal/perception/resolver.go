package perception

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"voucherbot/internal/logging"
	"voucherbot/internal/types"
)

// The context resolver rewrites anaphoric listing references into explicit
// ones ("this one" -> "listing #3") before Tier 1 runs, so the rule table
// can match on plain text. It is a pure function of (text, state) and never
// mutates state.

var numberWords = map[string]int{
	"one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
	"eleven": 11, "twelve": 12, "thirteen": 13, "fourteen": 14, "fifteen": 15,
	"sixteen": 16, "seventeen": 17, "eighteen": 18, "nineteen": 19, "twenty": 20,
}

var (
	explicitListingRe = regexp.MustCompile(`(?i)\b(?:listing|apartment|property|unit)\s*(?:no\.?|number)?\s*#?\s*(\d+)\b|#\s*(\d+)\b`)
	numberWordRe      = regexp.MustCompile(`(?i)\b(?:listing|number|no\.?)\s+(one|two|three|four|five|six|seven|eight|nine|ten|eleven|twelve|thirteen|fourteen|fifteen|sixteen|seventeen|eighteen|nineteen|twenty)\b`)
	navNextRe         = regexp.MustCompile(`(?i)\b(next|forward)\b(\s+(listing|one|property|apartment))?`)
	navPrevRe         = regexp.MustCompile(`(?i)\b(previous|prev|back)\b(\s+(listing|one|property|apartment))?`)
	penultimateRe     = regexp.MustCompile(`(?i)\b(?:the\s+)?(?:second\s+to\s+last|next\s+to\s+last|penultimate|last\s+but\s+one)(?:\s+(?:listing|one))?\b`)
	lastListingRe     = regexp.MustCompile(`(?i)\b(?:the\s+)?last(?:\s+(?:listing|one))?\b`)
	pronounRe         = regexp.MustCompile(`(?i)\b(this one|that one|the listing|the property|the apartment|the unit)\b`)
	proximityRe       = regexp.MustCompile(`(?i)\b(nearest|closest)\b.*\b(subway|train|transit|school)\b`)
)

// Ordinal listing positions. Checked before bare number words so "the third
// listing" resolves positionally.
var ordinals = []struct {
	re    *regexp.Regexp
	index int
}{
	{regexp.MustCompile(`(?i)\b(?:the\s+)?(?:first|1st)(?:\s+(?:listing|one))?\b`), 0},
	{regexp.MustCompile(`(?i)\b(?:the\s+)?(?:second|2nd)(?:\s+(?:listing|one))?\b`), 1},
	{regexp.MustCompile(`(?i)\b(?:the\s+)?(?:third|3rd)(?:\s+(?:listing|one))?\b`), 2},
	{regexp.MustCompile(`(?i)\b(?:the\s+)?(?:fourth|4th)(?:\s+(?:listing|one))?\b`), 3},
	{regexp.MustCompile(`(?i)\b(?:the\s+)?(?:fifth|5th)(?:\s+(?:listing|one))?\b`), 4},
}

// ListingReference extracts the zero-based listing index a message refers
// to, if any. Navigation is relative to state.CurrentListingIndex and is
// clamped to [0, ListingCount-1]; pronoun references default to listing 0
// when no listing is current yet.
func ListingReference(text string, state types.ConversationState) (int, bool) {
	if state.ListingCount == 0 {
		return 0, false
	}
	msg := strings.ToLower(text)
	last := state.ListingCount - 1

	// Explicit "listing 2" / "#3" forms are 1-based in user speech.
	if m := explicitListingRe.FindStringSubmatch(msg); m != nil {
		digits := m[1]
		if digits == "" {
			digits = m[2]
		}
		if n, err := strconv.Atoi(digits); err == nil && n > 0 {
			return clampIndex(n-1, last), true
		}
	}
	if m := numberWordRe.FindStringSubmatch(msg); m != nil {
		if n, ok := numberWords[m[1]]; ok {
			return clampIndex(n-1, last), true
		}
	}

	// Navigation needs a current position to be relative to.
	if state.CurrentListingIndex != nil {
		cur := *state.CurrentListingIndex
		if navNextRe.MatchString(msg) {
			return clampIndex(cur+1, last), true
		}
		if navPrevRe.MatchString(msg) {
			return clampIndex(cur-1, last), true
		}
	}

	// Penultimate before last; "second to last" contains "last".
	if penultimateRe.MatchString(msg) {
		if state.ListingCount > 1 {
			return last - 1, true
		}
		return 0, true
	}
	if lastListingRe.MatchString(msg) {
		return last, true
	}
	for _, ord := range ordinals {
		if ord.re.MatchString(msg) {
			return clampIndex(ord.index, last), true
		}
	}

	if pronounRe.MatchString(msg) {
		if state.CurrentListingIndex != nil {
			return clampIndex(*state.CurrentListingIndex, last), true
		}
		return 0, true
	}

	return 0, false
}

// Resolve rewrites anaphoric references in text into explicit listing
// references using per-conversation state. When nothing can be bound (no
// listings yet, or no anaphor present) the text passes through unchanged
// and later stages handle it as-is.
func Resolve(text string, state types.ConversationState) string {
	idx, ok := ListingReference(text, state)
	if !ok {
		return text
	}
	ref := fmt.Sprintf("listing #%d", idx+1)

	out := text
	switch {
	case explicitListingRe.MatchString(out):
		// Already explicit; canonicalize so Tier 1 sees one form.
		out = explicitListingRe.ReplaceAllString(out, ref)
	case pronounRe.MatchString(out):
		out = pronounRe.ReplaceAllString(out, ref)
	case numberWordRe.MatchString(out):
		out = numberWordRe.ReplaceAllString(out, ref)
	case penultimateRe.MatchString(out):
		out = penultimateRe.ReplaceAllString(out, ref)
	case state.CurrentListingIndex != nil && navNextRe.MatchString(out):
		out = navNextRe.ReplaceAllString(out, ref)
	case state.CurrentListingIndex != nil && navPrevRe.MatchString(out):
		out = navPrevRe.ReplaceAllString(out, ref)
	case lastListingRe.MatchString(out):
		out = lastListingRe.ReplaceAllString(out, ref)
	default:
		for _, ord := range ordinals {
			if ord.re.MatchString(out) {
				out = ord.re.ReplaceAllString(out, ref)
				break
			}
		}
	}

	// Proximity follow-ups bind to the referenced listing even when the
	// question never names it ("what's the nearest subway?").
	if proximityRe.MatchString(out) && !strings.Contains(strings.ToLower(out), "listing") {
		out = strings.TrimRight(out, " ?!.") + " for " + ref
	}

	if out != text {
		logging.PerceptionDebug("resolved %q -> %q", text, out)
	}
	return out
}

func clampIndex(idx, last int) int {
	if idx < 0 {
		return 0
	}
	if idx > last {
		return last
	}
	return idx
}
