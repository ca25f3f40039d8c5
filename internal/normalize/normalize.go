// Package normalize maps raw captured tokens onto the canonical parameter
// vocabulary: boroughs, voucher programs, bedroom counts, and rent ceilings.
//
// All functions are pure and never return an error; an unrecognized or
// out-of-range token yields ok=false, which callers treat as "field not
// extracted". Values that parse but fall outside the validation windows are
// rejected the same way, since extraction noise is more likely than a $50
// Manhattan apartment.
package normalize

import (
	"regexp"
	"strconv"
	"strings"

	"voucherbot/internal/types"
)

// Validation windows for extracted values.
const (
	MinBedrooms = 0
	MaxBedrooms = 10
	MinRent     = 300
	MaxRent     = 15000
)

var (
	bedroomDigitRe = regexp.MustCompile(`(?i)\b(\d{1,2})\s*(?:br|bed(?:room)?s?)\b`)
	bedroomWordRe  = regexp.MustCompile(`(?i)\b(studio|one|two|three|four|five|six|seven|eight|nine|ten)\s*(?:br|bed(?:room)?s?)?\b`)
	bareNumberRe   = regexp.MustCompile(`^\d{1,2}$`)

	// Rent forms, most specific first: "$2,500", "2.5k", "2k", "2500
	// dollars", bare digits. Bound phrases ("under", "up to", "max") are
	// stripped before matching; they all denote the upper bound.
	rentKRe      = regexp.MustCompile(`(?i)\$?\s*(\d+(?:\.\d+)?)\s*k\b`)
	// The comma-grouped branch must require at least one group, otherwise
	// it would match a bare 3-digit prefix of "$2500" ahead of the \d+
	// branch and capture 250.
	rentDollarRe = regexp.MustCompile(`\$\s*(\d{1,3}(?:,\d{3})+|\d+)`)
	rentPlainRe  = regexp.MustCompile(`(?i)\b(\d{1,3}(?:,\d{3})+|\d{3,5})\s*(?:dollars?|usd)?\b`)
)

// Borough resolves a borough alias to its canonical name. The mapping is
// many-to-one and idempotent; unknown tokens (including the too-vague "nyc")
// yield ok=false.
func Borough(token string) (types.Borough, bool) {
	key := strings.ToLower(strings.TrimSpace(token))
	key = strings.Trim(key, ".,!?")
	if key == "" {
		return "", false
	}
	if b, ok := boroughAliases[key]; ok {
		return b, true
	}
	// "the bronx", "the city" style tokens arrive with or without the
	// article depending on the capture group.
	if stripped := strings.TrimPrefix(key, "the "); stripped != key {
		if b, ok := boroughAliases[stripped]; ok {
			return b, true
		}
		if b, ok := boroughAliases["the "+stripped]; ok {
			return b, true
		}
	}
	return "", false
}

// Voucher resolves a voucher program alias to its canonical name.
func Voucher(token string) (types.VoucherType, bool) {
	key := strings.ToLower(strings.TrimSpace(token))
	key = strings.Trim(key, ".,!?")
	if key == "" {
		return "", false
	}
	if v, ok := voucherAliases[key]; ok {
		return v, true
	}
	// Collapse separators: "section-8", "section_8", "city fheps".
	collapsed := strings.NewReplacer("-", " ", "_", " ").Replace(key)
	collapsed = strings.Join(strings.Fields(collapsed), " ")
	if v, ok := voucherAliases[collapsed]; ok {
		return v, true
	}
	return "", false
}

// Bedrooms extracts a bedroom count from token: "studio" (0), number words,
// "2BR", "3 bedrooms", or a bare digit. Counts outside [0, 10] are rejected.
func Bedrooms(token string) (int, bool) {
	s := strings.ToLower(strings.TrimSpace(token))
	if s == "" {
		return 0, false
	}

	if m := bedroomDigitRe.FindStringSubmatch(s); m != nil {
		return validateBedrooms(m[1])
	}
	if m := bedroomWordRe.FindStringSubmatch(s); m != nil {
		if n, ok := bedroomWords[strings.ToLower(m[1])]; ok {
			return clampBedrooms(n)
		}
	}
	if bareNumberRe.MatchString(s) {
		return validateBedrooms(s)
	}
	return 0, false
}

func validateBedrooms(digits string) (int, bool) {
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	return clampBedrooms(n)
}

func clampBedrooms(n int) (int, bool) {
	if n < MinBedrooms || n > MaxBedrooms {
		return 0, false
	}
	return n, true
}

// Rent extracts a monthly rent ceiling in whole US dollars. Handles "$2,500",
// "2k", "2.5k", "under $2500", "up to 3k", "budget of 2000", and ranges like
// "$1500-$2000" (the upper bound wins). Values outside [300, 15000] are
// treated as extraction noise and rejected.
func Rent(token string) (int, bool) {
	s := strings.ToLower(strings.TrimSpace(token))
	if s == "" {
		return 0, false
	}

	best := 0
	// For range phrases every candidate is collected and the upper bound
	// kept, matching how "under $2500" style bounds collapse to a ceiling.
	for _, m := range rentKRe.FindAllStringSubmatch(s, -1) {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			if n := int(v * 1000); n > best {
				best = n
			}
		}
	}
	if best == 0 {
		for _, m := range rentDollarRe.FindAllStringSubmatch(s, -1) {
			if n := parseThousands(m[1]); n > best {
				best = n
			}
		}
	}
	if best == 0 {
		for _, m := range rentPlainRe.FindAllStringSubmatch(s, -1) {
			if n := parseThousands(m[1]); n > best {
				best = n
			}
		}
	}

	if best < MinRent || best > MaxRent {
		return 0, false
	}
	return best, true
}

func parseThousands(s string) int {
	n, err := strconv.Atoi(strings.ReplaceAll(s, ",", ""))
	if err != nil {
		return 0
	}
	return n
}

// Parameters normalizes a raw string-valued extraction (as produced by the
// pattern classifier captures or the fallback tier's JSON) into a validated
// ParameterSet. Fields that fail validation are dropped and the reason
// recorded, never errored.
func Parameters(raw RawParameters) (types.ParameterSet, []string) {
	var out types.ParameterSet
	var dropped []string

	if raw.Borough != "" {
		if b, ok := Borough(raw.Borough); ok {
			out.Borough = types.BoroughPtr(b)
		} else {
			dropped = append(dropped, "borough: unrecognized token "+strconv.Quote(raw.Borough))
		}
	}
	if raw.Bedrooms != "" {
		if n, ok := Bedrooms(raw.Bedrooms); ok {
			out.Bedrooms = types.IntPtr(n)
		} else {
			dropped = append(dropped, "bedrooms: out of range or unparseable "+strconv.Quote(raw.Bedrooms))
		}
	}
	if raw.MaxRent != "" {
		if n, ok := Rent(raw.MaxRent); ok {
			out.MaxRent = types.IntPtr(n)
		} else {
			dropped = append(dropped, "max_rent: out of range or unparseable "+strconv.Quote(raw.MaxRent))
		}
	}
	if raw.VoucherType != "" {
		if v, ok := Voucher(raw.VoucherType); ok {
			out.VoucherType = types.VoucherPtr(v)
		} else {
			dropped = append(dropped, "voucher_type: unrecognized token "+strconv.Quote(raw.VoucherType))
		}
	}
	return out, dropped
}

// RawParameters carries not-yet-normalized captures. Empty string means the
// field was not extracted. Both classification tiers funnel through this
// type so they share identical validation.
type RawParameters struct {
	Borough     string
	Bedrooms    string
	MaxRent     string
	VoucherType string
}

// IsEmpty reports whether nothing was captured.
func (r RawParameters) IsEmpty() bool {
	return r.Borough == "" && r.Bedrooms == "" && r.MaxRent == "" && r.VoucherType == ""
}
