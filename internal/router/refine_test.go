package router

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"voucherbot/internal/types"
)

func params(borough *types.Borough, bedrooms, maxRent *int, voucher *types.VoucherType) types.ParameterSet {
	return types.ParameterSet{Borough: borough, Bedrooms: bedrooms, MaxRent: maxRent, VoucherType: voucher}
}

func TestMergeNoPriorSearch(t *testing.T) {
	got := Merge(types.ParameterSet{}, params(types.BoroughPtr(types.BoroughBrooklyn), nil, nil, nil), types.ConversationState{})
	if got.Outcome != types.MergeNoPriorSearch {
		t.Errorf("outcome = %s, want no_prior_search", got.Outcome)
	}
}

func TestMergeAmbiguous(t *testing.T) {
	prev := params(types.BoroughPtr(types.BoroughBronx), types.IntPtr(2), nil, nil)
	got := Merge(prev, types.ParameterSet{}, types.ConversationState{LastResultCount: 5})
	if got.Outcome != types.MergeAmbiguous {
		t.Errorf("outcome = %s, want ambiguous", got.Outcome)
	}
}

func TestMergeApplied(t *testing.T) {
	prev := params(types.BoroughPtr(types.BoroughBronx), types.IntPtr(2), nil, nil)
	extracted := params(types.BoroughPtr(types.BoroughBrooklyn), nil, nil, nil)
	got := Merge(prev, extracted, types.ConversationState{LastResultCount: 5})

	if got.Outcome != types.MergeApplied {
		t.Fatalf("outcome = %s, want applied", got.Outcome)
	}
	want := params(types.BoroughPtr(types.BoroughBrooklyn), types.IntPtr(2), nil, nil)
	if diff := cmp.Diff(want, got.Merged); diff != "" {
		t.Errorf("merged mismatch (-want +got):\n%s", diff)
	}
}

func TestMergeRetainsUnmentionedFields(t *testing.T) {
	prev := params(types.BoroughPtr(types.BoroughQueens), types.IntPtr(1), types.IntPtr(1800), types.VoucherPtr(types.VoucherSection8))
	extracted := params(nil, nil, types.IntPtr(2000), nil)
	got := Merge(prev, extracted, types.ConversationState{LastResultCount: 3})

	if got.Outcome != types.MergeApplied {
		t.Fatalf("outcome = %s, want applied", got.Outcome)
	}
	want := params(types.BoroughPtr(types.BoroughQueens), types.IntPtr(1), types.IntPtr(2000), types.VoucherPtr(types.VoucherSection8))
	if diff := cmp.Diff(want, got.Merged); diff != "" {
		t.Errorf("merged mismatch (-want +got):\n%s", diff)
	}
}

func TestMergeNoOpIdentical(t *testing.T) {
	prev := params(types.BoroughPtr(types.BoroughBronx), types.IntPtr(2), nil, nil)
	extracted := params(types.BoroughPtr(types.BoroughBronx), nil, nil, nil)
	got := Merge(prev, extracted, types.ConversationState{LastResultCount: 4})
	if got.Outcome != types.MergeNoOpIdentical {
		t.Errorf("outcome = %s, want noop_identical", got.Outcome)
	}
}

func TestMergeBoroughRetryAfterZeroResults(t *testing.T) {
	prev := params(types.BoroughPtr(types.BoroughBronx), types.IntPtr(2), nil, nil)
	extracted := params(types.BoroughPtr(types.BoroughBronx), nil, nil, nil)
	got := Merge(prev, extracted, types.ConversationState{LastResultCount: 0})
	if got.Outcome != types.MergeApplied {
		t.Errorf("outcome = %s, want applied (retry after zero results)", got.Outcome)
	}
}

func TestMergeDoesNotAliasPrevious(t *testing.T) {
	prev := params(types.BoroughPtr(types.BoroughBronx), types.IntPtr(2), nil, nil)
	extracted := params(types.BoroughPtr(types.BoroughBrooklyn), nil, nil, nil)
	got := Merge(prev, extracted, types.ConversationState{LastResultCount: 5})

	*got.Merged.Bedrooms = 99
	if *prev.Bedrooms != 2 {
		t.Error("merge aliased the previous parameter set")
	}
}
