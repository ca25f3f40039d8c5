// Package router composes the routing engine: input validation, handoff
// detection, context resolution, the deterministic rule tier, and the
// generative fallback tier, in that fixed order. The stage order is a
// correctness invariant; later stages assume earlier rewrites have run.
package router

import (
	"context"
	"errors"
	"fmt"

	"voucherbot/internal/escalation"
	"voucherbot/internal/logging"
	"voucherbot/internal/normalize"
	"voucherbot/internal/perception"
	"voucherbot/internal/types"
)

// Router routes one message at a time. Instances are safe for concurrent
// use across sessions: the only shared state is the immutable rule and
// alias tables.
type Router struct {
	detector *escalation.Detector
	fallback *perception.Fallback
}

// New creates a Router. fallback may be nil, in which case Tier 1 misses
// degrade directly to a terminal UNKNOWN result.
func New(detector *escalation.Detector, fallback *perception.Fallback) *Router {
	if detector == nil {
		detector = escalation.NewDetector(nil)
	}
	return &Router{detector: detector, fallback: fallback}
}

// Route classifies one message against the caller's conversation state.
// Only input validation surfaces an error (plus context cancellation, so
// callers can tell an aborted call from a failed classification);
// everything downstream degrades to an UNKNOWN result. State is read-only
// here; the returned ProposedState carries the update for the caller to
// apply.
func (r *Router) Route(ctx context.Context, message string, state types.ConversationState) (*types.ClassificationResult, error) {
	if err := perception.ValidateInput(message, ""); err != nil {
		return nil, err
	}

	defer logging.StartTimer(logging.CategoryRouting, "route").Stop()

	language := state.Language
	if language == "" {
		language = perception.DetectLanguage(message)
		logging.Perception("detected language %s for session %s", language, state.SessionID)
	}

	// Handoff detection preempts everything else.
	if verdict := r.detector.Detect(message, state); verdict.Triggered {
		proposed := state.Clone()
		proposed.Language = language
		proposed.Escalated = true
		v := verdict
		return &types.ClassificationResult{
			Intent:        types.IntentHelpRequest,
			Confidence:    types.ConfidencePattern,
			Reasoning:     fmt.Sprintf("human handoff: %s", verdict.Reason),
			RouterUsed:    types.RouterPattern,
			Escalation:    &v,
			ProposedState: &proposed,
		}, nil
	}

	resolved := perception.Resolve(message, state)

	var result *types.ClassificationResult
	if match, ok := perception.Classify(resolved); ok {
		params, dropped := normalize.Parameters(match.Raw)
		for _, reason := range dropped {
			logging.Routing("dropped parameter: %s", reason)
		}
		result = &types.ClassificationResult{
			Intent:     match.Intent,
			Parameters: params,
			Confidence: types.ConfidencePattern,
			Reasoning:  fmt.Sprintf("matched rule %q", match.Rule),
			RouterUsed: types.RouterPattern,
		}
	} else {
		var err error
		result, err = r.classifyFallback(ctx, resolved, state, language)
		if err != nil {
			return nil, err
		}
	}

	r.assemble(result, resolved, state, language)
	logging.Routing("routed intent=%s confidence=%.2f router=%s", result.Intent, result.Confidence, result.RouterUsed)
	return result, nil
}

func (r *Router) classifyFallback(ctx context.Context, resolved string, state types.ConversationState, language string) (*types.ClassificationResult, error) {
	if r.fallback == nil {
		return terminalUnknown("no fallback classifier configured"), nil
	}

	result, err := r.fallback.Classify(ctx, resolved, searchContext(state), language)
	if err == nil {
		return result, nil
	}

	// A canceled call must stay distinguishable from a failed one.
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil, err
	}

	var procErr *types.LLMProcessingError
	if errors.As(err, &procErr) {
		logging.Routing("fallback exhausted after %d attempts: %v", procErr.Attempts, procErr.Last)
		return terminalUnknown("could not understand the message after exhausting the fallback classifier"), nil
	}
	var inputErr *types.InvalidInputError
	if errors.As(err, &inputErr) {
		return nil, err
	}

	logging.Routing("fallback failed: %v", err)
	return terminalUnknown("fallback classification failed"), nil
}

func terminalUnknown(reason string) *types.ClassificationResult {
	return &types.ClassificationResult{
		Intent:     types.IntentUnknown,
		Confidence: types.ConfidenceTerminal,
		Reasoning:  reason,
		RouterUsed: types.RouterFallback,
	}
}

// assemble finalizes the result: runs the refinement merger, computes the
// proposed state update, and binds listing references.
func (r *Router) assemble(result *types.ClassificationResult, resolved string, state types.ConversationState, language string) {
	proposed := state.Clone()
	proposed.Language = language

	switch result.Intent {
	case types.IntentRefineSearch:
		merge := Merge(state.LastSearchParams, result.Parameters, state)
		result.Merge = &merge
		if merge.Outcome == types.MergeApplied {
			proposed.LastSearchParams = merge.Merged.Clone()
		}
	case types.IntentSearchListings:
		if !result.Parameters.IsEmpty() {
			proposed.LastSearchParams = result.Parameters.Clone()
		}
	case types.IntentFollowUp:
		if idx, ok := perception.ListingReference(resolved, state); ok {
			proposed.CurrentListingIndex = types.IntPtr(idx)
		}
	}

	result.ProposedState = &proposed
}

// searchContext serializes the prior search for the fallback prompt.
func searchContext(state types.ConversationState) string {
	if state.LastSearchParams.IsEmpty() {
		return ""
	}
	return "previous search: " + state.LastSearchParams.String()
}
