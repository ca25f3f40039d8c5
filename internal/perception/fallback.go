package perception

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"voucherbot/internal/logging"
	"voucherbot/internal/normalize"
	"voucherbot/internal/types"
)

// Input limits enforced before any generator call.
const (
	MaxMessageLen = 1000
	MaxContextLen = 2000
)

// FallbackConfig tunes the Tier 2 retry policy. The per-attempt timeout is
// independent of the backoff delays between attempts.
type FallbackConfig struct {
	MaxRetries     int
	AttemptTimeout time.Duration
	BackoffBase    time.Duration
}

// DefaultFallbackConfig returns sensible defaults.
func DefaultFallbackConfig() FallbackConfig {
	return FallbackConfig{
		MaxRetries:     3,
		AttemptTimeout: 30 * time.Second,
		BackoffBase:    time.Second,
	}
}

// Fallback is the Tier 2 classifier. It prompts a text generation backend
// for a schema-constrained JSON classification, validates and normalizes
// the answer, and retries transient failures.
type Fallback struct {
	gen Generator
	cfg FallbackConfig
}

// NewFallback creates a fallback classifier with default config.
func NewFallback(gen Generator) *Fallback {
	return NewFallbackWithConfig(gen, DefaultFallbackConfig())
}

// NewFallbackWithConfig creates a fallback classifier with custom config.
func NewFallbackWithConfig(gen Generator, cfg FallbackConfig) *Fallback {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.AttemptTimeout <= 0 {
		cfg.AttemptTimeout = 30 * time.Second
	}
	if cfg.BackoffBase <= 0 {
		cfg.BackoffBase = time.Second
	}
	return &Fallback{gen: gen, cfg: cfg}
}

// ValidateInput enforces the message and context limits. It runs before
// any tier and its error is the only hard failure the engine surfaces.
func ValidateInput(message, context string) error {
	if strings.TrimSpace(message) == "" {
		return &types.InvalidInputError{Reason: "message cannot be empty or whitespace-only"}
	}
	// Limits are in characters, not bytes; a Chinese or Bengali message
	// carries three bytes per rune.
	if utf8.RuneCountInString(strings.TrimSpace(message)) > MaxMessageLen {
		return &types.InvalidInputError{Reason: fmt.Sprintf("message exceeds maximum length of %d characters", MaxMessageLen)}
	}
	if utf8.RuneCountInString(context) > MaxContextLen {
		return &types.InvalidInputError{Reason: fmt.Sprintf("context exceeds maximum length of %d characters", MaxContextLen)}
	}
	return nil
}

// Classify runs the Tier 2 classification. Retries cover transport
// failures, timeouts, and malformed responses; a well-formed response with
// an unrecognized intent is coerced to UNKNOWN at low confidence instead,
// since retrying a confidently wrong answer does not help. Context
// cancellation aborts the loop and returns the wrapped context error.
func (f *Fallback) Classify(ctx context.Context, message, contextStr, language string) (*types.ClassificationResult, error) {
	if err := ValidateInput(message, contextStr); err != nil {
		return nil, err
	}

	prompt := BuildPrompt(message, contextStr, language)

	var lastErr error
	for attempt := 1; attempt <= f.cfg.MaxRetries; attempt++ {
		if attempt > 1 {
			// Exponential backoff: 1s, 2s, 4s
			delay := f.cfg.BackoffBase << uint(attempt-2)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, fmt.Errorf("fallback classification canceled: %w", ctx.Err())
			}
		}

		logging.FallbackDebug("generator attempt %d/%d", attempt, f.cfg.MaxRetries)

		attemptCtx, cancel := context.WithTimeout(ctx, f.cfg.AttemptTimeout)
		raw, err := f.gen.Generate(attemptCtx, prompt)
		cancel()

		if ctx.Err() != nil {
			return nil, fmt.Errorf("fallback classification canceled: %w", ctx.Err())
		}
		if err != nil {
			lastErr = err
			logging.FallbackDebug("attempt %d failed: %v", attempt, err)
			continue
		}

		parsed, err := parseResponse(raw)
		if err != nil {
			lastErr = err
			logging.FallbackDebug("attempt %d returned invalid response: %v", attempt, err)
			continue
		}

		intent, ok := types.ParseIntent(parsed.Intent)
		if !ok {
			logging.Fallback("coercing unrecognized intent %q to UNKNOWN", parsed.Intent)
			return &types.ClassificationResult{
				Intent:     types.IntentUnknown,
				Confidence: types.ConfidenceCoercedUnknown,
				Reasoning:  fmt.Sprintf("generator returned unrecognized intent %q", parsed.Intent),
				RouterUsed: types.RouterFallback,
			}, nil
		}

		params, dropped := normalize.Parameters(parsed.Raw)
		for _, reason := range dropped {
			logging.Fallback("dropped parameter: %s", reason)
		}

		return &types.ClassificationResult{
			Intent:     intent,
			Parameters: params,
			Confidence: types.ConfidenceFallback,
			Reasoning:  parsed.Reasoning,
			RouterUsed: types.RouterFallback,
		}, nil
	}

	return nil, &types.LLMProcessingError{Attempts: f.cfg.MaxRetries, Last: lastErr}
}

// fallbackResponse is the validated shape of a generator answer before
// normalization.
type fallbackResponse struct {
	Intent    string
	Raw       normalize.RawParameters
	Reasoning string
}

var parameterKeys = map[string]bool{
	"borough":      true,
	"bedrooms":     true,
	"max_rent":     true,
	"voucher_type": true,
}

func parseResponse(raw string) (*fallbackResponse, error) {
	jsonStr := extractJSON(raw)
	if jsonStr == "" {
		return nil, &types.InvalidLLMResponseError{Detail: "no JSON object found in response"}
	}

	var payload map[string]json.RawMessage
	if err := json.Unmarshal([]byte(jsonStr), &payload); err != nil {
		return nil, &types.InvalidLLMResponseError{Detail: fmt.Sprintf("invalid JSON: %v", err)}
	}

	for _, field := range []string{"intent", "parameters", "reasoning"} {
		if _, ok := payload[field]; !ok {
			return nil, &types.InvalidLLMResponseError{Detail: "missing required field: " + field}
		}
	}

	var intent string
	if err := json.Unmarshal(payload["intent"], &intent); err != nil {
		return nil, &types.InvalidLLMResponseError{Detail: "intent must be a string"}
	}

	var reasoning string
	if err := json.Unmarshal(payload["reasoning"], &reasoning); err != nil || strings.TrimSpace(reasoning) == "" {
		return nil, &types.InvalidLLMResponseError{Detail: "reasoning must be a non-empty string"}
	}

	var params map[string]json.RawMessage
	if err := json.Unmarshal(payload["parameters"], &params); err != nil {
		return nil, &types.InvalidLLMResponseError{Detail: "parameters must be an object"}
	}

	resp := &fallbackResponse{Intent: intent, Reasoning: strings.TrimSpace(reasoning)}
	for key, value := range params {
		if !parameterKeys[key] {
			// Rejected, never stored.
			logging.FallbackDebug("ignoring unknown parameter key %q", key)
			continue
		}
		token, err := scalarToken(value)
		if err != nil {
			return nil, &types.InvalidLLMResponseError{Detail: fmt.Sprintf("parameter %q: %v", key, err)}
		}
		switch key {
		case "borough":
			resp.Raw.Borough = token
		case "bedrooms":
			resp.Raw.Bedrooms = token
		case "max_rent":
			resp.Raw.MaxRent = token
		case "voucher_type":
			resp.Raw.VoucherType = token
		}
	}
	return resp, nil
}

// scalarToken converts a string, integer, or null JSON value into the raw
// token form the normalizer consumes. Empty string means absent.
func scalarToken(value json.RawMessage) (string, error) {
	trimmed := strings.TrimSpace(string(value))
	if trimmed == "null" {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(value, &s); err == nil {
		return s, nil
	}
	var n float64
	if err := json.Unmarshal(value, &n); err == nil {
		if n != float64(int64(n)) {
			return "", fmt.Errorf("must be an integer, got %v", n)
		}
		return strconv.FormatInt(int64(n), 10), nil
	}
	return "", fmt.Errorf("must be string, integer, or null")
}

// extractJSON pulls the first balanced JSON object out of text, tolerating
// markdown fences and surrounding prose. Returns "" when no object closes.
func extractJSON(text string) string {
	start := strings.Index(text, "{")
	if start == -1 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if escaped {
			escaped = false
			continue
		}
		switch c {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return text[start : i+1]
				}
			}
		}
	}
	return ""
}
