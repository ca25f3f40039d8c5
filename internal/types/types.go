// Package types holds the shared data model for the VoucherBot routing
// engine: intents, normalized search parameters, classification results,
// per-session conversation state, and escalation verdicts.
//
// Everything here is created fresh per routed message and is read-only after
// construction. ConversationState is the one exception: it outlives a single
// call, is owned by the session layer, and is passed into the router so the
// router can return a proposed update without mutating the caller's state.
package types

import (
	"errors"
	"fmt"
)

// =============================================================================
// INTENTS
// =============================================================================

// Intent is the closed set of message intents the router can produce.
type Intent string

const (
	IntentSearchListings    Intent = "SEARCH_LISTINGS"
	IntentCheckViolations   Intent = "CHECK_VIOLATIONS"
	IntentAskVoucherSupport Intent = "ASK_VOUCHER_SUPPORT"
	IntentRefineSearch      Intent = "REFINE_SEARCH"
	IntentFollowUp          Intent = "FOLLOW_UP"
	IntentHelpRequest       Intent = "HELP_REQUEST"
	IntentUnknown           Intent = "UNKNOWN"
)

// AllIntents lists every valid intent, in schema order.
func AllIntents() []Intent {
	return []Intent{
		IntentSearchListings,
		IntentCheckViolations,
		IntentAskVoucherSupport,
		IntentRefineSearch,
		IntentFollowUp,
		IntentHelpRequest,
		IntentUnknown,
	}
}

// ParseIntent maps a raw intent string (e.g. from an LLM response) onto the
// closed enumeration. ok is false for anything outside the set.
func ParseIntent(s string) (Intent, bool) {
	for _, in := range AllIntents() {
		if string(in) == s {
			return in, true
		}
	}
	return IntentUnknown, false
}

// =============================================================================
// PARAMETERS
// =============================================================================

// Borough is a canonical NYC borough name.
type Borough string

const (
	BoroughManhattan    Borough = "Manhattan"
	BoroughBrooklyn     Borough = "Brooklyn"
	BoroughQueens       Borough = "Queens"
	BoroughBronx        Borough = "Bronx"
	BoroughStatenIsland Borough = "Staten Island"
)

// VoucherType is a canonical housing voucher program name.
type VoucherType string

const (
	VoucherSection8  VoucherType = "Section 8"
	VoucherCityFHEPS VoucherType = "CityFHEPS"
	VoucherHASA      VoucherType = "HASA"
	VoucherHPD       VoucherType = "HPD"
	VoucherDSS       VoucherType = "DSS"
	VoucherHRA       VoucherType = "HRA"
	VoucherGeneric   VoucherType = "Housing Voucher"
)

// ParameterSet carries the four normalized search parameters. Absent fields
// are nil pointers; a present field has already passed normalizer validation.
// Unknown keys are rejected at the boundary, never stored.
type ParameterSet struct {
	Borough     *Borough     `json:"borough,omitempty"`
	Bedrooms    *int         `json:"bedrooms,omitempty"`
	MaxRent     *int         `json:"max_rent,omitempty"`
	VoucherType *VoucherType `json:"voucher_type,omitempty"`
}

// IsEmpty reports whether no parameter is set.
func (p ParameterSet) IsEmpty() bool {
	return p.Borough == nil && p.Bedrooms == nil && p.MaxRent == nil && p.VoucherType == nil
}

// Equal compares field-by-field, treating nil as absent.
func (p ParameterSet) Equal(other ParameterSet) bool {
	return eqBorough(p.Borough, other.Borough) &&
		eqInt(p.Bedrooms, other.Bedrooms) &&
		eqInt(p.MaxRent, other.MaxRent) &&
		eqVoucher(p.VoucherType, other.VoucherType)
}

// Clone returns a deep copy so merges never alias the previous search.
func (p ParameterSet) Clone() ParameterSet {
	out := ParameterSet{}
	if p.Borough != nil {
		b := *p.Borough
		out.Borough = &b
	}
	if p.Bedrooms != nil {
		n := *p.Bedrooms
		out.Bedrooms = &n
	}
	if p.MaxRent != nil {
		n := *p.MaxRent
		out.MaxRent = &n
	}
	if p.VoucherType != nil {
		v := *p.VoucherType
		out.VoucherType = &v
	}
	return out
}

func (p ParameterSet) String() string {
	s := "{"
	if p.Borough != nil {
		s += fmt.Sprintf("borough=%s ", *p.Borough)
	}
	if p.Bedrooms != nil {
		s += fmt.Sprintf("bedrooms=%d ", *p.Bedrooms)
	}
	if p.MaxRent != nil {
		s += fmt.Sprintf("max_rent=%d ", *p.MaxRent)
	}
	if p.VoucherType != nil {
		s += fmt.Sprintf("voucher=%s ", *p.VoucherType)
	}
	if len(s) > 1 {
		s = s[:len(s)-1]
	}
	return s + "}"
}

func eqBorough(a, b *Borough) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func eqInt(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func eqVoucher(a, b *VoucherType) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// BoroughPtr is a convenience constructor used heavily in tests.
func BoroughPtr(b Borough) *Borough { return &b }

// IntPtr is a convenience constructor used heavily in tests.
func IntPtr(n int) *int { return &n }

// VoucherPtr is a convenience constructor used heavily in tests.
func VoucherPtr(v VoucherType) *VoucherType { return &v }

// =============================================================================
// CLASSIFICATION RESULT
// =============================================================================

// RouterUsed identifies which classification tier produced a result.
type RouterUsed string

const (
	RouterPattern  RouterUsed = "pattern"
	RouterFallback RouterUsed = "fallback"
)

// Tier confidence levels. Deterministic matches are near-certain; a parsed
// fallback answer is trusted less; a well-formed answer with an unrecognized
// intent is coerced to UNKNOWN at low confidence rather than retried.
const (
	ConfidencePattern        = 0.95
	ConfidenceFallback       = 0.8
	ConfidenceCoercedUnknown = 0.3
	ConfidenceTerminal       = 0.0
)

// ClassificationResult is the routed decision for one message. Immutable
// once produced.
type ClassificationResult struct {
	Intent     Intent       `json:"intent"`
	Parameters ParameterSet `json:"parameters"`
	Confidence float64      `json:"confidence"`
	Reasoning  string       `json:"reasoning"`
	RouterUsed RouterUsed   `json:"router_used"`

	// Escalation is non-nil when the escalation detector preempted routing.
	Escalation *EscalationVerdict `json:"escalation,omitempty"`

	// Merge is non-nil for REFINE_SEARCH results and carries the merge
	// outcome plus the proposed new canonical parameter set.
	Merge *MergeResult `json:"merge,omitempty"`

	// ProposedState is the state update the caller should apply on success.
	// The router never mutates ConversationState in place.
	ProposedState *ConversationState `json:"proposed_state,omitempty"`
}

// =============================================================================
// CONVERSATION STATE
// =============================================================================

// ConversationState is the per-session context read by the router. It is
// exclusively owned by the calling session for the duration of one call
// (single-writer); the router returns a proposed replacement instead of
// mutating it.
type ConversationState struct {
	SessionID        string       `json:"session_id"`
	Language         string       `json:"language"` // en, es, zh, bn
	LastSearchParams ParameterSet `json:"last_search_params"`

	// CurrentListingIndex is the zero-based index of the listing under
	// discussion, or nil when no listing has been referenced yet.
	CurrentListingIndex *int `json:"current_listing_index,omitempty"`

	// ListingCount is how many listings the last search produced.
	ListingCount int `json:"listing_count"`

	// LastResultCount is the result count of the most recent completed
	// search; zero permits re-searching the same borough.
	LastResultCount int `json:"last_result_count"`

	Escalated bool `json:"escalated"`
}

// Clone deep-copies the state so a proposed update never aliases the
// caller's copy.
func (s ConversationState) Clone() ConversationState {
	out := s
	out.LastSearchParams = s.LastSearchParams.Clone()
	if s.CurrentListingIndex != nil {
		idx := *s.CurrentListingIndex
		out.CurrentListingIndex = &idx
	}
	return out
}

// =============================================================================
// ESCALATION
// =============================================================================

// EscalationReason identifies which pattern family triggered a handoff.
type EscalationReason string

const (
	ReasonDiscriminationCase EscalationReason = "discrimination_case"
	ReasonUserRequest        EscalationReason = "user_request"
)

// EscalationVerdict is the outcome of the handoff detector. When Triggered
// is true it preempts normal routing entirely.
type EscalationVerdict struct {
	Triggered  bool             `json:"triggered"`
	Reason     EscalationReason `json:"reason,omitempty"`
	ContactKey string           `json:"contact_key,omitempty"`
	Contact    *ContactInfo     `json:"contact,omitempty"`
}

// ContactInfo is a human handoff target from the contact directory.
type ContactInfo struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
	Hours   string `json:"hours"`
}

// =============================================================================
// MERGE OUTCOMES
// =============================================================================

// MergeOutcome tags the result of applying a refinement to a prior search.
// These are expected user-facing states, not errors.
type MergeOutcome string

const (
	MergeApplied       MergeOutcome = "applied"
	MergeNoOpIdentical MergeOutcome = "noop_identical"
	MergeNoPriorSearch MergeOutcome = "no_prior_search"
	MergeAmbiguous     MergeOutcome = "ambiguous"
)

// MergeResult pairs the outcome tag with the merged parameter set. Merged is
// only meaningful when Outcome is MergeApplied.
type MergeResult struct {
	Outcome MergeOutcome `json:"outcome"`
	Merged  ParameterSet `json:"merged"`
}

// =============================================================================
// ERROR TAXONOMY
// =============================================================================

// ErrInvalidInput is the only error that crosses the router boundary as a
// hard failure; it fires before any classification tier runs.
var ErrInvalidInput = errors.New("invalid input")

// InvalidInputError wraps ErrInvalidInput with the validation detail.
type InvalidInputError struct {
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input: %s", e.Reason)
}

func (e *InvalidInputError) Unwrap() error { return ErrInvalidInput }

// InvalidLLMResponseError means the fallback tier returned a response that
// failed JSON shape validation. It is retried internally, never surfaced.
type InvalidLLMResponseError struct {
	Detail string
}

func (e *InvalidLLMResponseError) Error() string {
	return fmt.Sprintf("invalid LLM response: %s", e.Detail)
}

// LLMProcessingError means the fallback tier exhausted its retries. The
// router converts it into a terminal UNKNOWN result instead of propagating.
type LLMProcessingError struct {
	Attempts int
	Last     error
}

func (e *LLMProcessingError) Error() string {
	if e.Last != nil {
		return fmt.Sprintf("LLM processing failed after %d attempts: %v", e.Attempts, e.Last)
	}
	return fmt.Sprintf("LLM processing failed after %d attempts", e.Attempts)
}

func (e *LLMProcessingError) Unwrap() error { return e.Last }
