package router

import (
	"voucherbot/internal/logging"
	"voucherbot/internal/types"
)

// Merge applies a partial parameter extraction to the previous search.
// Fields present in extracted overwrite their counterparts in a copy of
// previous; absent fields carry over. The outcome tag tells the caller
// which user-facing branch to take; none of these are errors.
//
// Re-searching the same borough is allowed when the previous search came
// back empty, so "try Brooklyn again" works after zero results.
func Merge(previous, extracted types.ParameterSet, state types.ConversationState) types.MergeResult {
	if previous.IsEmpty() {
		return types.MergeResult{Outcome: types.MergeNoPriorSearch}
	}
	if extracted.IsEmpty() {
		return types.MergeResult{Outcome: types.MergeAmbiguous}
	}

	merged := previous.Clone()
	changed := false

	if extracted.Borough != nil {
		identical := previous.Borough != nil && *previous.Borough == *extracted.Borough
		if !identical || state.LastResultCount == 0 {
			b := *extracted.Borough
			merged.Borough = &b
			if !identical {
				changed = true
			} else {
				// Borough retry after an empty result set counts as a
				// real refinement even though the value is unchanged.
				changed = true
				logging.RoutingDebug("allowing borough retry for %s after zero results", b)
			}
		}
	}
	if extracted.Bedrooms != nil {
		if previous.Bedrooms == nil || *previous.Bedrooms != *extracted.Bedrooms {
			changed = true
		}
		n := *extracted.Bedrooms
		merged.Bedrooms = &n
	}
	if extracted.MaxRent != nil {
		if previous.MaxRent == nil || *previous.MaxRent != *extracted.MaxRent {
			changed = true
		}
		n := *extracted.MaxRent
		merged.MaxRent = &n
	}
	if extracted.VoucherType != nil {
		if previous.VoucherType == nil || *previous.VoucherType != *extracted.VoucherType {
			changed = true
		}
		v := *extracted.VoucherType
		merged.VoucherType = &v
	}

	if !changed {
		return types.MergeResult{Outcome: types.MergeNoOpIdentical, Merged: previous.Clone()}
	}
	return types.MergeResult{Outcome: types.MergeApplied, Merged: merged}
}
