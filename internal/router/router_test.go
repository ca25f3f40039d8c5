package router

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"voucherbot/internal/escalation"
	"voucherbot/internal/perception"
	"voucherbot/internal/types"
)

type stubGenerator struct {
	response string
	err      error
	calls    int
}

func (g *stubGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	g.calls++
	if g.err != nil {
		return "", g.err
	}
	return g.response, nil
}

func newTestRouter(gen perception.Generator) *Router {
	var fb *perception.Fallback
	if gen != nil {
		fb = perception.NewFallbackWithConfig(gen, perception.FallbackConfig{
			MaxRetries:     3,
			AttemptTimeout: time.Second,
			BackoffBase:    time.Millisecond,
		})
	}
	return New(escalation.NewDetector(nil), fb)
}

func baseState() types.ConversationState {
	return types.ConversationState{SessionID: "s1", Language: "en"}
}

func TestRoutePatternTier(t *testing.T) {
	gen := &stubGenerator{}
	r := newTestRouter(gen)

	result, err := r.Route(context.Background(), "find apartments in Brooklyn", baseState())
	require.NoError(t, err)
	assert.Equal(t, types.IntentSearchListings, result.Intent)
	assert.Equal(t, types.RouterPattern, result.RouterUsed)
	assert.Equal(t, types.ConfidencePattern, result.Confidence)
	require.NotNil(t, result.Parameters.Borough)
	assert.Equal(t, types.BoroughBrooklyn, *result.Parameters.Borough)
	assert.Equal(t, 0, gen.calls, "Tier 1 match must not invoke the generator")

	require.NotNil(t, result.ProposedState)
	assert.True(t, result.ProposedState.LastSearchParams.Equal(result.Parameters))
}

func TestRouteFallbackTier(t *testing.T) {
	gen := &stubGenerator{response: `{
		"intent": "SEARCH_LISTINGS",
		"parameters": {"borough": "queens", "bedrooms": null, "max_rent": null, "voucher_type": null},
		"reasoning": "user describes wanting to move"
	}`}
	r := newTestRouter(gen)

	result, err := r.Route(context.Background(), "thinking about moving somewhere new", baseState())
	require.NoError(t, err)
	assert.Equal(t, types.RouterFallback, result.RouterUsed)
	assert.Equal(t, types.ConfidenceFallback, result.Confidence)
	assert.Equal(t, 1, gen.calls)
}

func TestRouteRefinementScenario(t *testing.T) {
	r := newTestRouter(&stubGenerator{})
	state := baseState()
	state.LastSearchParams = types.ParameterSet{
		Borough:  types.BoroughPtr(types.BoroughBronx),
		Bedrooms: types.IntPtr(2),
	}
	state.LastResultCount = 7

	result, err := r.Route(context.Background(), "How about Brooklyn?", state)
	require.NoError(t, err)
	assert.Equal(t, types.IntentRefineSearch, result.Intent)

	require.NotNil(t, result.Merge)
	assert.Equal(t, types.MergeApplied, result.Merge.Outcome)
	require.NotNil(t, result.Merge.Merged.Borough)
	assert.Equal(t, types.BoroughBrooklyn, *result.Merge.Merged.Borough)
	require.NotNil(t, result.Merge.Merged.Bedrooms)
	assert.Equal(t, 2, *result.Merge.Merged.Bedrooms)

	require.NotNil(t, result.ProposedState)
	assert.True(t, result.ProposedState.LastSearchParams.Equal(result.Merge.Merged))
}

func TestRouteBudgetRefinement(t *testing.T) {
	r := newTestRouter(&stubGenerator{})
	state := baseState()
	state.LastSearchParams = types.ParameterSet{Borough: types.BoroughPtr(types.BoroughQueens)}
	state.LastResultCount = 3

	result, err := r.Route(context.Background(), "Budget of 2k", state)
	require.NoError(t, err)
	assert.Equal(t, types.IntentRefineSearch, result.Intent)
	require.NotNil(t, result.Parameters.MaxRent)
	assert.Equal(t, 2000, *result.Parameters.MaxRent)
}

func TestRouteInvalidInput(t *testing.T) {
	gen := &stubGenerator{}
	r := newTestRouter(gen)

	for _, msg := range []string{"", "   ", strings.Repeat("x", 1500)} {
		_, err := r.Route(context.Background(), msg, baseState())
		require.Error(t, err)
		assert.ErrorIs(t, err, types.ErrInvalidInput)
	}
	assert.Equal(t, 0, gen.calls, "invalid input must not reach any tier")
}

func TestRouteGeneratorExhaustionDegradesToUnknown(t *testing.T) {
	defer goleak.VerifyNone(t)

	gen := &stubGenerator{err: errors.New("backend down")}
	r := newTestRouter(gen)

	result, err := r.Route(context.Background(), "thinking about moving somewhere new", baseState())
	require.NoError(t, err, "exhausted retries must not surface as an error")
	assert.Equal(t, types.IntentUnknown, result.Intent)
	assert.Equal(t, types.ConfidenceTerminal, result.Confidence)
	assert.Equal(t, types.RouterFallback, result.RouterUsed)
	assert.Equal(t, 3, gen.calls)
}

func TestRouteNilFallbackDegradesToUnknown(t *testing.T) {
	r := newTestRouter(nil)
	result, err := r.Route(context.Background(), "thinking about moving somewhere new", baseState())
	require.NoError(t, err)
	assert.Equal(t, types.IntentUnknown, result.Intent)
	assert.Equal(t, types.ConfidenceTerminal, result.Confidence)
}

func TestRouteEscalationPreemptsClassification(t *testing.T) {
	gen := &stubGenerator{}
	r := newTestRouter(gen)

	result, err := r.Route(context.Background(), "I want to file a discrimination complaint", baseState())
	require.NoError(t, err)
	require.NotNil(t, result.Escalation)
	assert.True(t, result.Escalation.Triggered)
	assert.Equal(t, types.ReasonDiscriminationCase, result.Escalation.Reason)
	assert.Equal(t, 0, gen.calls, "escalation must preempt both tiers")

	require.NotNil(t, result.ProposedState)
	assert.True(t, result.ProposedState.Escalated)
}

func TestRouteContextResolution(t *testing.T) {
	r := newTestRouter(&stubGenerator{})
	state := baseState()
	state.ListingCount = 5
	state.CurrentListingIndex = types.IntPtr(2)

	result, err := r.Route(context.Background(), "what's the nearest subway for this one?", state)
	require.NoError(t, err)
	assert.Equal(t, types.IntentFollowUp, result.Intent)
	assert.Equal(t, types.RouterPattern, result.RouterUsed)

	require.NotNil(t, result.ProposedState)
	require.NotNil(t, result.ProposedState.CurrentListingIndex)
	assert.Equal(t, 2, *result.ProposedState.CurrentListingIndex)
}

func TestRouteCancellationDistinguishable(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	gen := &stubGenerator{err: errors.New("backend down")}
	r := newTestRouter(gen)

	_, err := r.Route(ctx, "thinking about moving somewhere new", baseState())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, types.ErrInvalidInput)
}

func TestRouteDoesNotMutateState(t *testing.T) {
	r := newTestRouter(&stubGenerator{})
	state := baseState()
	state.LastSearchParams = types.ParameterSet{
		Borough:  types.BoroughPtr(types.BoroughBronx),
		Bedrooms: types.IntPtr(2),
	}
	state.LastResultCount = 7
	before := state.Clone()

	_, err := r.Route(context.Background(), "How about Brooklyn?", state)
	require.NoError(t, err)

	assert.True(t, state.LastSearchParams.Equal(before.LastSearchParams), "router must not mutate caller state")
	assert.Equal(t, before.LastResultCount, state.LastResultCount)
}

func TestRouteDetectsLanguageWhenUnset(t *testing.T) {
	r := newTestRouter(&stubGenerator{response: `{
		"intent": "HELP_REQUEST",
		"parameters": {"borough": null, "bedrooms": null, "max_rent": null, "voucher_type": null},
		"reasoning": "user asks for help in Spanish"
	}`})
	state := baseState()
	state.Language = ""

	result, err := r.Route(context.Background(), "hola, necesito ayuda para buscar apartamento por favor", state)
	require.NoError(t, err)
	require.NotNil(t, result.ProposedState)
	assert.Equal(t, "es", result.ProposedState.Language)
}
