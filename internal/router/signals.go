package router

// Signal vocabulary for the complexity classifier. Slices, not maps, so
// match order and scoring stay deterministic run to run. Tune here, the
// classifier itself never hardcodes a phrase.

var greetingWords = []string{
	"hi", "hello", "hey", "howdy", "greetings",
	"thanks", "bye", "goodbye", "cheers",
}

var greetingPhrases = []string{
	"good morning", "good afternoon", "good evening",
	"thank you", "see you",
}

var complexKeywords = []string{
	"how", "why", "explain", "compare", "comparison",
	"difference", "differences", "between", "steps",
	"troubleshoot", "troubleshooting", "configure", "configuration",
	"integrate", "integration", "setup", "set up",
	"multi", "multiple", "detailed", "describe",
	"walk me through", "guide", "process", "workflow",
	"migrate", "migration", "architecture",
	"implement", "implementation",
}

var complaintKeywords = []string{
	"not working", "broken", "issue", "problem", "bug", "error",
	"frustrated", "urgent", "critical", "failing", "failed",
	"can't", "cannot", "unable", "doesn't work", "won't",
	"help me", "stuck", "confused", "disappointed",
}

var conjunctions = []string{
	"and", "but", "because", "while", "when", "although", "however",
}
