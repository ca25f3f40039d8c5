// Package escalation decides when a conversation should leave the
// automated flow and go to a human caseworker. Detection runs before any
// classification tier; a triggered verdict preempts routing entirely.
package escalation

import (
	"regexp"
	"strings"

	"voucherbot/internal/logging"
	"voucherbot/internal/types"
)

// Three pattern families are evaluated in fixed order. Explicit complaint
// and rights language goes first because its vocabulary overlaps heavily
// with generic assistance requests; the indirect discrimination signals go
// last because they are the loosest patterns and must not shadow the
// specific ones.

var complaintPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(file|report|make|submit|lodge)\b.*\b(complaint|report)\b.*\b(discrimination|unfair|illegal)`),
	regexp.MustCompile(`(?i)\b(file|report|make|submit|lodge)\b.*\b(discrimination|unfair|illegal)\b.*\b(complaint|report)`),
	regexp.MustCompile(`(?i)\b(complain|report)\b.*\b(discrimination|unfair treatment|illegal)`),
	regexp.MustCompile(`(?i)\b(help|assist)\w*\b.*\b(file|report|make)\b.*\b(complaint|discrimination)`),
	regexp.MustCompile(`(?i)\b(housing|voucher|illegal)\s+discrimination\b`),
	regexp.MustCompile(`(?i)\bdiscriminat\w+\b`),
	regexp.MustCompile(`(?i)\bagainst the law\b`),
	regexp.MustCompile(`(?i)\btreated differently\b.*\bbecause of\b`),
}

var rightsKeywords = []string{
	"understand my rights", "know my rights", "understand my options",
	"know my options", "what are my rights", "what options do i have",
	"help understanding my rights", "help with my rights",
	"explain my rights", "learn about my rights",
}

var humanRequestPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(speak|talk)\s+(to|with)\b.*\b(someone|anybody|a person|human|caseworker|specialist|counselor|agent|housing specialist)`),
	regexp.MustCompile(`(?i)\b(need|want|would like|trying)\b.*\b(speak|talk|connect|reach|contact)\b.*\b(someone|anybody|person|human|caseworker|specialist|counselor|agent)`),
	regexp.MustCompile(`(?i)\b(connect|put|get)\s+(me|us|in touch|through)\b.*\b(someone|person|caseworker|specialist|counselor|agent)`),
	regexp.MustCompile(`(?i)\b(is there)\s+(someone|anybody|a person|a caseworker|a specialist)\b.*\b(speak|talk|contact|meet)`),
	regexp.MustCompile(`(?i)\b(having|got)\s+(trouble|problems|issues|difficulty)\s+with\b.*\b(application|paperwork|forms|voucher)`),
	regexp.MustCompile(`(?i)\b(how|where|who)\s+(do|can|should)\s+(i|we)\s+(get in touch|reach|contact)\b`),
}

var indirectDiscriminationPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(landlords?|owners?|brokers?|agents?|they|management|building)\b.*\b(won'?t|will not|refuses?|refused|denied|denying|declined|declining|stopped)\b.*\b(take|taking|accept|accepting|consider|allow|process|approve)\b.*\b(vouchers?|section\s*8|cityfheps|hasa|applications?)`),
	regexp.MustCompile(`(?i)\b(don'?t|doesn'?t|do not|does not|won'?t|will not)\s+(take|accept|allow|consider)\b.*\b(vouchers?|section\s*8|cityfheps|hasa)`),
	regexp.MustCompile(`(?i)\b(no|not)\s+(accepting|taking|allowing)\b.*\b(vouchers?|section\s*8|cityfheps|hasa)`),
	regexp.MustCompile(`(?i)\b(every time|whenever|after|when)\b.*\b(mention|say|tell|bring up|brought up|mentioned|said)\b.*\b(vouchers?|section\s*8|cityfheps|hasa)`),
	regexp.MustCompile(`(?i)\b(vouchers?|section\s*8|cityfheps|hasa)\b.*\b(no longer|suddenly|just|recently)\s*(available|unavailable|rented|taken|gone)`),
	regexp.MustCompile(`(?i)\b(suddenly|keeps?|always)\s+(unavailable|gone|taken|changed|different)`),
	regexp.MustCompile(`(?i)\b(unit|apartment|place)\s+(was|is|got|became)\s+(just|recently|suddenly)?\s*(rented|taken|unavailable)\b.*\b(vouchers?|section\s*8|cityfheps|hasa|mention)`),
	regexp.MustCompile(`(?i)\bstop(ped)?\s+(responding|answering|replying|calling|getting back)`),
	regexp.MustCompile(`(?i)\b(prefer|only accept)\b.*\b(working|employed)\s*(professionals|people|tenants)?`),
}

// Search phrasing that frequently co-occurs with assistance words without
// meaning a handoff ("help me find a place").
var searchWords = []string{"find", "search", "looking", "show", "list"}

var humanPhrases = []string{
	"talk to", "speak with", "speak to", "talk with", "need someone",
	"human", "person", "caseworker", "agent", "staff", "specialist",
	"having trouble", "need help with", "assistance with",
}

// Detector evaluates handoff triggers against its contact directory.
type Detector struct {
	directory *Directory
}

// NewDetector creates a detector backed by the given directory.
func NewDetector(directory *Directory) *Detector {
	if directory == nil {
		directory = NewDirectory()
	}
	return &Detector{directory: directory}
}

// Detect checks a message for handoff triggers. The voucher program and
// borough from the caller's last search select the contact; a zero verdict
// means routing continues normally.
func (d *Detector) Detect(message string, state types.ConversationState) types.EscalationVerdict {
	msg := strings.TrimSpace(message)
	if msg == "" {
		return types.EscalationVerdict{}
	}
	lower := strings.ToLower(msg)

	voucher := state.LastSearchParams.VoucherType
	borough := state.LastSearchParams.Borough

	// Family 1: explicit complaint and rights language.
	for _, re := range complaintPatterns {
		if re.MatchString(msg) {
			return d.verdict(types.ReasonDiscriminationCase, voucher, borough, true)
		}
	}
	for _, kw := range rightsKeywords {
		if strings.Contains(lower, kw) {
			return d.verdict(types.ReasonUserRequest, voucher, borough, false)
		}
	}

	// Family 2: direct human-assistance requests. Search phrasing needs a
	// clear human reference to avoid triggering on "help me find a place".
	for _, re := range humanRequestPatterns {
		if !re.MatchString(msg) {
			continue
		}
		if isBareHelp(lower) {
			break
		}
		if containsAny(lower, searchWords) && !containsAny(lower, humanPhrases) {
			break
		}
		return d.verdict(types.ReasonUserRequest, voucher, borough, false)
	}

	// Family 3: indirect discrimination signals, loosest patterns last.
	for _, re := range indirectDiscriminationPatterns {
		if re.MatchString(msg) {
			return d.verdict(types.ReasonDiscriminationCase, voucher, borough, true)
		}
	}

	return types.EscalationVerdict{}
}

func (d *Detector) verdict(reason types.EscalationReason, voucher *types.VoucherType, borough *types.Borough, discrimination bool) types.EscalationVerdict {
	key, contact := d.directory.Lookup(voucher, borough, discrimination)
	logging.Escalation("handoff triggered reason=%s contact=%s", reason, key)
	return types.EscalationVerdict{
		Triggered:  true,
		Reason:     reason,
		ContactKey: key,
		Contact:    &contact,
	}
}

func isBareHelp(lower string) bool {
	switch strings.TrimSpace(lower) {
	case "help", "i need help", "need help":
		return true
	}
	return false
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
