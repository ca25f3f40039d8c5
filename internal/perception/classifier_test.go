package perception

import (
	"testing"

	"voucherbot/internal/types"
)

func TestClassifyIntent(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    types.Intent
		wantOK  bool
	}{
		{"what-if borough", "How about Brooklyn?", types.IntentRefineSearch, true},
		{"what-if explicit", "what if I looked in the Bronx instead?", types.IntentRefineSearch, true},
		{"try location", "try searching in Queens", types.IntentRefineSearch, true},
		{"instead", "look in Manhattan instead of Brooklyn", types.IntentRefineSearch, true},
		{"budget refinement", "Budget of 2k", types.IntentRefineSearch, true},
		{"rent cap", "under $2500 please", types.IntentRefineSearch, true},
		{"bedroom refinement", "only 2br please", types.IntentRefineSearch, true},

		{"search basic", "find apartments in Brooklyn", types.IntentSearchListings, true},
		{"search with cap", "find apartments under $2000 in brooklyn", types.IntentSearchListings, true},
		{"search looking", "I'm looking for a place in Queens", types.IntentSearchListings, true},
		{"search show me", "show me listings in the Bronx", types.IntentSearchListings, true},

		{"violations check", "check violations for this building", types.IntentCheckViolations, true},
		{"violations listing", "how many violations does listing 2 have?", types.IntentCheckViolations, true},
		{"safety question", "is that building safe?", types.IntentCheckViolations, true},

		{"voucher mention", "I have a section 8 voucher", types.IntentAskVoucherSupport, true},
		{"voucher accepts", "do they accept vouchers?", types.IntentAskVoucherSupport, true},

		{"listing reference", "tell me about listing 3", types.IntentFollowUp, true},
		{"what about listing", "what about listing 2?", types.IntentFollowUp, true},
		{"hash reference", "show #4", types.IntentFollowUp, true},
		{"nearest subway", "what's the nearest subway for listing #2?", types.IntentFollowUp, true},
		{"navigation", "next listing", types.IntentFollowUp, true},

		{"help", "what can you do?", types.IntentHelpRequest, true},
		{"confused", "I'm confused", types.IntentHelpRequest, true},

		{"no match", "the weather is nice today", types.IntentUnknown, false},
		{"empty", "", types.IntentUnknown, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ok := Classify(tt.text)
			if ok != tt.wantOK {
				t.Fatalf("Classify(%q) ok = %v, want %v", tt.text, ok, tt.wantOK)
			}
			if ok && m.Intent != tt.want {
				t.Errorf("Classify(%q) = %s (rule %s), want %s", tt.text, m.Intent, m.Rule, tt.want)
			}
		})
	}
}

// The rule table's order is the dispatch semantics; these cases pin the
// ties that historically misrouted.
func TestRuleOrdering(t *testing.T) {
	tests := []struct {
		name string
		text string
		want types.Intent
	}{
		// Location-change phrasing beats the listing-question patterns
		// that share "what about".
		{"how about borough", "how about Staten Island?", types.IntentRefineSearch},
		{"what about listing wins followup", "what about listing 2", types.IntentFollowUp},
		// Explicit search framing beats the bare rent-cap refinement.
		{"search with rent cap", "search for apartments under $1800", types.IntentSearchListings},
		{"bare rent cap refines", "max $1800", types.IntentRefineSearch},
		// Specific question intents beat the listing reference they mention.
		{"violations on listing", "check violations for listing 1", types.IntentCheckViolations},
		{"voucher on listing", "does listing 2 take section 8?", types.IntentAskVoucherSupport},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ok := Classify(tt.text)
			if !ok {
				t.Fatalf("Classify(%q) did not match", tt.text)
			}
			if m.Intent != tt.want {
				t.Errorf("Classify(%q) = %s (rule %s), want %s", tt.text, m.Intent, m.Rule, tt.want)
			}
		})
	}
}

func TestClassifyCaptures(t *testing.T) {
	m, ok := Classify("find a 2br apartment in brooklyn under $2,500 with section 8")
	if !ok {
		t.Fatal("expected a match")
	}
	if m.Intent != types.IntentSearchListings {
		t.Fatalf("intent = %s, want SEARCH_LISTINGS", m.Intent)
	}
	if m.Raw.Borough != "brooklyn" {
		t.Errorf("borough capture = %q, want brooklyn", m.Raw.Borough)
	}
	if m.Raw.Bedrooms == "" {
		t.Error("expected a bedrooms capture")
	}
	if m.Raw.MaxRent == "" {
		t.Error("expected a max_rent capture")
	}
	if m.Raw.VoucherType == "" {
		t.Error("expected a voucher_type capture")
	}
}

func TestClassifyBudgetCapture(t *testing.T) {
	m, ok := Classify("Budget of 2k")
	if !ok {
		t.Fatal("expected a match")
	}
	if m.Raw.MaxRent == "" {
		t.Fatal("expected a max_rent capture")
	}
}

func TestRuleNamesUnique(t *testing.T) {
	seen := make(map[string]bool)
	for _, r := range Rules {
		if seen[r.Name] {
			t.Errorf("duplicate rule name %q", r.Name)
		}
		seen[r.Name] = true
		if r.Match == nil {
			t.Errorf("rule %q has no match pattern", r.Name)
		}
	}
}
