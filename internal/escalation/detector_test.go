package escalation

import (
	"testing"

	"voucherbot/internal/types"
)

func stateWith(voucher *types.VoucherType, borough *types.Borough) types.ConversationState {
	return types.ConversationState{
		SessionID: "test",
		Language:  "en",
		LastSearchParams: types.ParameterSet{
			VoucherType: voucher,
			Borough:     borough,
		},
	}
}

func TestDetectDiscriminationComplaint(t *testing.T) {
	d := NewDetector(nil)
	tests := []string{
		"I want to file a discrimination complaint",
		"help me report housing discrimination",
		"the landlord is discriminating against me",
		"this is against the law, they rejected my voucher",
		"I was treated differently because of my voucher",
	}
	for _, msg := range tests {
		v := d.Detect(msg, stateWith(nil, nil))
		if !v.Triggered {
			t.Errorf("Detect(%q) not triggered", msg)
			continue
		}
		if v.Reason != types.ReasonDiscriminationCase {
			t.Errorf("Detect(%q) reason = %s, want discrimination_case", msg, v.Reason)
		}
	}
}

func TestDetectHumanRequest(t *testing.T) {
	d := NewDetector(nil)
	tests := []string{
		"can I speak to a caseworker?",
		"I need to talk to someone about my application",
		"please connect me with a housing specialist",
		"I'm having trouble with my paperwork",
		"I want to understand my rights",
	}
	for _, msg := range tests {
		v := d.Detect(msg, stateWith(nil, nil))
		if !v.Triggered {
			t.Errorf("Detect(%q) not triggered", msg)
			continue
		}
		if v.Reason != types.ReasonUserRequest {
			t.Errorf("Detect(%q) reason = %s, want user_request", msg, v.Reason)
		}
	}
}

func TestDetectIndirectDiscrimination(t *testing.T) {
	d := NewDetector(nil)
	tests := []string{
		"the landlord won't accept my section 8 voucher",
		"they said they don't take cityfheps",
		"every time I mention my voucher the unit is suddenly unavailable",
		"the broker stopped responding after I brought up my voucher",
		"they prefer working professionals",
	}
	for _, msg := range tests {
		v := d.Detect(msg, stateWith(nil, nil))
		if !v.Triggered {
			t.Errorf("Detect(%q) not triggered", msg)
			continue
		}
		if v.Reason != types.ReasonDiscriminationCase {
			t.Errorf("Detect(%q) reason = %s, want discrimination_case", msg, v.Reason)
		}
	}
}

// The complaint family must win when a message matches both it and the
// human-request family.
func TestFamilyPriority(t *testing.T) {
	d := NewDetector(nil)
	v := d.Detect("I want to file a discrimination complaint and also need a caseworker", stateWith(nil, nil))
	if !v.Triggered {
		t.Fatal("expected a triggered verdict")
	}
	if v.Reason != types.ReasonDiscriminationCase {
		t.Errorf("reason = %s, want discrimination_case (family 1 outranks family 2)", v.Reason)
	}
}

func TestDetectNoTrigger(t *testing.T) {
	d := NewDetector(nil)
	tests := []string{
		"find me an apartment in Brooklyn",
		"help",
		"i need help",
		"help me find a 2 bedroom place",
		"what's the nearest subway?",
		"",
	}
	for _, msg := range tests {
		if v := d.Detect(msg, stateWith(nil, nil)); v.Triggered {
			t.Errorf("Detect(%q) triggered (reason=%s), want no trigger", msg, v.Reason)
		}
	}
}

func TestContactRouting(t *testing.T) {
	d := NewDetector(nil)

	// HASA discrimination goes to the legal team regardless of borough.
	hasa := types.VoucherPtr(types.VoucherHASA)
	bk := types.BoroughPtr(types.BoroughBrooklyn)
	v := d.Detect("the landlord won't accept my hasa voucher", stateWith(hasa, bk))
	if v.ContactKey != "housing-works-legal" {
		t.Errorf("HASA discrimination contact = %s, want housing-works-legal", v.ContactKey)
	}

	// Program discrimination with a known borough routes to the borough office.
	s8 := types.VoucherPtr(types.VoucherSection8)
	v = d.Detect("the landlord won't accept my section 8 voucher", stateWith(s8, bk))
	if v.ContactKey != "section8-brooklyn" {
		t.Errorf("contact = %s, want section8-brooklyn", v.ContactKey)
	}
	if v.Contact == nil || v.Contact.Name != "Brooklyn NYCHA Section 8 Office" {
		t.Errorf("unexpected contact %+v", v.Contact)
	}

	// No program context defaults discrimination to the commission.
	v = d.Detect("I want to file a discrimination complaint", stateWith(nil, nil))
	if v.ContactKey != "cchr" {
		t.Errorf("contact = %s, want cchr", v.ContactKey)
	}

	// Plain human requests default to HRA general support.
	v = d.Detect("can I speak to a caseworker?", stateWith(nil, nil))
	if v.ContactKey != "hra-general" {
		t.Errorf("contact = %s, want hra-general", v.ContactKey)
	}
}

func TestDirectoryLookup(t *testing.T) {
	dir := NewDirectory()

	key, contact := dir.Lookup(types.VoucherPtr(types.VoucherCityFHEPS), types.BoroughPtr(types.BoroughQueens), false)
	if key != "cityfheps-queens" || contact.Name != "Queens CityFHEPS Office" {
		t.Errorf("Lookup = (%s, %s)", key, contact.Name)
	}

	key, contact = dir.Lookup(types.VoucherPtr(types.VoucherCityFHEPS), nil, false)
	if key != "cityfheps" || contact.Name != "CityFHEPS Central Office" {
		t.Errorf("Lookup = (%s, %s)", key, contact.Name)
	}

	key, _ = dir.Lookup(types.VoucherPtr(types.VoucherHRA), nil, false)
	if key != "hra-general" {
		t.Errorf("unknown program should fall back to hra-general, got %s", key)
	}

	key, _ = dir.Lookup(types.VoucherPtr(types.VoucherSection8), types.BoroughPtr(types.BoroughStatenIsland), true)
	if key != "section8-staten_island" {
		t.Errorf("Lookup = %s, want section8-staten_island", key)
	}
}
