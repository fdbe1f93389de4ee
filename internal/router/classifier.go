package router

import (
	"fmt"
	"strings"

	"github.com/clearpathhq/supportbot/internal/config"
	"github.com/clearpathhq/supportbot/internal/domain/queryModel"
)

// Classify scores a raw user query and picks the generation tier. Pure
// string work, no I/O, same query always produces the same decision.
//
// Greetings short-circuit to the simple tier with score 0 so small talk
// never burns retrieval or the large model. Everything else accumulates
// points from independent signals and crosses to the complex tier at
// config.ComplexityBoundary.
func Classify(query string) queryModel.RouteDecision {
	lower := strings.ToLower(strings.TrimSpace(query))
	wordCount := len(strings.Fields(lower))

	if wordCount <= config.GreetingMaxWords && isGreeting(lower) {
		return queryModel.RouteDecision{
			Classification: queryModel.TierSimple,
			Score:          0,
			Signals:        []queryModel.Signal{{Name: "greeting_detected"}},
			Model:          config.ModelSimple,
			Greeting:       true,
		}
	}

	score := 0
	var signals []queryModel.Signal

	switch {
	case wordCount >= config.LongQueryWords:
		score += 2
		signals = append(signals, queryModel.Signal{
			Name: "long_query", Points: 2,
			Detail: fmt.Sprintf("%d words", wordCount),
		})
	case wordCount >= config.ModerateQueryWords:
		score += 1
		signals = append(signals, queryModel.Signal{
			Name: "moderate_length", Points: 1,
			Detail: fmt.Sprintf("%d words", wordCount),
		})
	}

	keywords := containsAny(lower, complexKeywords)
	switch {
	case len(keywords) >= 2:
		score += 2
		signals = append(signals, queryModel.Signal{
			Name: "multiple_complex_keywords", Points: 2,
			Detail: strings.Join(firstN(keywords, 3), ", "),
		})
	case len(keywords) == 1:
		score += 1
		signals = append(signals, queryModel.Signal{
			Name: "complex_keyword", Points: 1,
			Detail: keywords[0],
		})
	}

	if marks := strings.Count(query, "?"); marks >= 2 {
		score += 2
		signals = append(signals, queryModel.Signal{
			Name: "multi_question", Points: 2,
			Detail: fmt.Sprintf("%d question marks", marks),
		})
	}

	//any complaint hit is one point, not one per hit
	if complaints := containsAny(lower, complaintKeywords); len(complaints) > 0 {
		score += 1
		signals = append(signals, queryModel.Signal{
			Name: "complaint_indicators", Points: 1,
			Detail: strings.Join(firstN(complaints, 2), ", "),
		})
	}

	if clauses := containsDelimited(lower, conjunctions); len(clauses) >= 2 {
		score += 1
		signals = append(signals, queryModel.Signal{
			Name: "subordinate_clauses", Points: 1,
			Detail: strings.Join(clauses, ", "),
		})
	}

	if len(signals) == 0 {
		signals = append(signals, queryModel.Signal{Name: "no_special_signals"})
	}

	decision := queryModel.RouteDecision{
		Score:          score,
		Signals:        signals,
		Classification: queryModel.TierSimple,
		Model:          config.ModelSimple,
	}
	if score >= config.ComplexityBoundary {
		decision.Classification = queryModel.TierComplex
		decision.Model = config.ModelComplex
	}
	return decision
}

// isGreeting matches greeting words and phrases on word boundaries, so
// "hi" fires for "hi there!" but not for "high memory usage".
func isGreeting(lower string) bool {
	padded := wordPadded(lower)
	for _, w := range greetingWords {
		if strings.Contains(padded, " "+w+" ") {
			return true
		}
	}
	for _, p := range greetingPhrases {
		if strings.Contains(padded, " "+p+" ") {
			return true
		}
	}
	return false
}

// wordPadded reduces text to space-separated word tokens wrapped in
// leading/trailing spaces, which makes whole-word checks a plain
// substring test.
func wordPadded(lower string) string {
	mapped := strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '\'' {
			return r
		}
		return ' '
	}, lower)
	return " " + strings.Join(strings.Fields(mapped), " ") + " "
}

// containsAny returns the terms present as plain substrings, in
// vocabulary order. Distinct terms count once each.
func containsAny(lower string, terms []string) []string {
	var found []string
	for _, t := range terms {
		if strings.Contains(lower, t) {
			found = append(found, t)
		}
	}
	return found
}

// containsDelimited matches whole space-delimited words only.
func containsDelimited(lower string, terms []string) []string {
	padded := " " + lower + " "
	var found []string
	for _, t := range terms {
		if strings.Contains(padded, " "+t+" ") {
			found = append(found, t)
		}
	}
	return found
}

func firstN(items []string, n int) []string {
	if len(items) <= n {
		return items
	}
	return items[:n]
}
