package perception

import (
	"fmt"
	"strings"
)

// Language-specific instruction lines for the fallback prompt.
var languageInstructions = map[string]string{
	"en": "The user interface is in English. Respond appropriately to English queries.",
	"es": "La interfaz de usuario está en español. El usuario puede escribir en español, responde apropiadamente.",
	"zh": "用户界面是中文的。用户可能会用中文写消息，请适当回应。",
	"bn": "ব্যবহারকারী ইন্টারফেস বাংলায়। ব্যবহারকারী বাংলায় বার্তা লিখতে পারেন, উপযুক্তভাবে সাড়া দিন।",
}

type promptExample struct {
	message string
	intent  string
}

var languageExamples = map[string][]promptExample{
	"en": {
		{"I need help finding an apartment", "HELP_REQUEST"},
		{"Show me listings in Brooklyn", "SEARCH_LISTINGS"},
		{"What vouchers do you accept?", "ASK_VOUCHER_SUPPORT"},
	},
	"es": {
		{"Necesito ayuda para encontrar apartamento", "HELP_REQUEST"},
		{"Busco apartamento en Brooklyn", "SEARCH_LISTINGS"},
		{"¿Qué tipos de voucher aceptan?", "ASK_VOUCHER_SUPPORT"},
	},
	"zh": {
		{"我需要帮助找房子", "HELP_REQUEST"},
		{"在布鲁克林找两居室", "SEARCH_LISTINGS"},
		{"你们接受什么类型的住房券?", "ASK_VOUCHER_SUPPORT"},
	},
	"bn": {
		{"ভাউচার নিয়ে সাহায্য চাই", "HELP_REQUEST"},
		{"ব্রুকলিনে অ্যাপার্টমেন্ট খুঁজছি", "SEARCH_LISTINGS"},
		{"কি ধরনের ভাউচার গ্রহণ করেন?", "ASK_VOUCHER_SUPPORT"},
	},
}

// BuildPrompt assembles the schema-constrained classification prompt for
// the fallback tier. context may be empty; language is the interface
// language code, falling back to English for unknown codes.
func BuildPrompt(message, context, language string) string {
	instruction, ok := languageInstructions[language]
	if !ok {
		instruction = languageInstructions["en"]
	}
	examples, ok := languageExamples[language]
	if !ok {
		examples = languageExamples["en"]
	}

	if detected := DetectLanguages(message); len(detected) > 1 {
		instruction += fmt.Sprintf(" Note: This message contains multiple languages: %s. Handle accordingly.", strings.Join(detected, ", "))
	}

	var exampleLines []string
	for _, ex := range examples {
		exampleLines = append(exampleLines, fmt.Sprintf("- %q → %s", ex.message, ex.intent))
	}

	contextStr := "null"
	if context != "" {
		contextStr = fmt.Sprintf("%q", context)
	}

	return fmt.Sprintf(`You are a semantic router and parameter extraction engine for a housing chatbot designed to help users find voucher-friendly listings in New York City.

LANGUAGE CONTEXT: %s

EXAMPLES FOR THIS LANGUAGE:
%s

Your job is to:
1. Classify the **intent** of the user's message.
2. Extract **relevant search parameters** (if any).
3. Generate a short explanation of your reasoning.

You will be given:
- message: the user's latest message (string)
- context: optionally, a prior message or search state (string or null)

Your response must be a valid JSON object with the following schema:

{
  "intent": one of [
    "SEARCH_LISTINGS",
    "CHECK_VIOLATIONS",
    "ASK_VOUCHER_SUPPORT",
    "REFINE_SEARCH",
    "FOLLOW_UP",
    "HELP_REQUEST",
    "UNKNOWN"
  ],

  "parameters": {
    "borough": (string or null),
    "bedrooms": (integer or null),
    "max_rent": (integer or null),
    "voucher_type": (string or null)
  },

  "reasoning": (string)
}

Guidelines:
- Normalize borough abbreviations: "BK" → "Brooklyn", etc.
- Support multilingual borough names: "布鲁克林" → "Brooklyn", "ব্রুকলিন" → "Brooklyn"
- Normalize voucher types: "section eight" → "Section 8", "sección 8" → "Section 8"
- Handle mixed language inputs appropriately
- If the message is vague, return "UNKNOWN" intent and explain why.
- Format JSON precisely.

Input:
- Message: %q
- Context: %s

Response:`, instruction, strings.Join(exampleLines, "\n"), message, contextStr)
}
