package evaluator

import (
	"strings"

	"github.com/clearpathhq/supportbot/internal/domain/queryModel"
)

// Post-generation answer checks. Each rule is independent and they never
// suppress each other: an answer can carry no_context and refusal at the
// same time, and callers rely on that for the low-confidence warning.
// Everything here is pure string work over the finished answer, the
// checks run identically for the blocking and the streaming path.

type checkInput struct {
	answerLower string
	chunkCount  int
	citations   []queryModel.Citation
}

type rule struct {
	flag  queryModel.Flag
	match func(in checkInput) bool
}

// rules are evaluated in order, which fixes the emitted flag order.
var rules = []rule{
	{flag: queryModel.FlagNoContext, match: matchNoContext},
	{flag: queryModel.FlagRefusal, match: matchRefusal},
	{flag: queryModel.FlagConflictingInfo, match: matchConflict},
}

// Evaluate inspects a generated answer and returns every quality flag
// that applies. chunkCount is the number of chunks that made it into the
// generation context.
func Evaluate(answer string, chunkCount int, citations []queryModel.Citation) []queryModel.Flag {
	in := checkInput{
		answerLower: strings.ToLower(answer),
		chunkCount:  chunkCount,
		citations:   citations,
	}

	var flags []queryModel.Flag
	for _, r := range rules {
		if r.match(in) {
			flags = append(flags, r.flag)
		}
	}
	return flags
}

// no_context keys off the retrieval count alone, never the answer text.
func matchNoContext(in checkInput) bool {
	return in.chunkCount == 0
}

func matchRefusal(in checkInput) bool {
	return containsAny(in.answerLower, refusalPhrases)
}

// matchConflict fires on explicit conflict language, on a hedge about
// one topic followed by an affirmative pivot, or on answers that weave
// together three or more documents with multiple transition words.
func matchConflict(in checkInput) bool {
	if containsAny(in.answerLower, conflictPhrases) {
		return true
	}
	if containsAny(in.answerLower, partialHedges) && containsAny(in.answerLower, affirmativeTransitions) {
		return true
	}
	return multiSourceTension(in)
}

func multiSourceTension(in checkInput) bool {
	if len(in.citations) < 3 {
		return false
	}
	docs := make(map[string]struct{})
	for _, c := range in.citations {
		docs[c.Document] = struct{}{}
	}
	if len(docs) < 3 {
		return false
	}

	padded := wordPadded(in.answerLower)
	distinct := 0
	for _, w := range transitionWords {
		if strings.Contains(padded, " "+w+" ") {
			distinct++
		}
	}
	return distinct >= 2
}

// WarningMessage renders the user-facing low-confidence banner for a set
// of flags, empty when there is nothing to warn about. The pipeline
// prepends it to the answer before anything is persisted.
func WarningMessage(flags []queryModel.Flag) string {
	var parts []string
	for _, f := range flags {
		switch f {
		case queryModel.FlagNoContext:
			parts = append(parts, "I couldn't find relevant documentation for this query")
		case queryModel.FlagRefusal:
			parts = append(parts, "the answer may be missing information")
		case queryModel.FlagConflictingInfo:
			parts = append(parts, "multiple sources may contain conflicting information")
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return "Low confidence: " + strings.Join(parts, " and ") + ". Please confirm with our support team."
}

func containsAny(haystack string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(haystack, p) {
			return true
		}
	}
	return false
}

// wordPadded reduces text to space-separated word tokens so whole-word
// checks become substring tests.
func wordPadded(lower string) string {
	mapped := strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '\'' {
			return r
		}
		return ' '
	}, lower)
	return " " + strings.Join(strings.Fields(mapped), " ") + " "
}
