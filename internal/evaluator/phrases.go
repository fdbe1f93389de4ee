package evaluator

// Phrase vocabularies for the post-generation checks. All matching is
// done against the lowercased answer, keep every entry lowercase.

var refusalPhrases = []string{
	"i don't have", "i do not have",
	"not mentioned", "does not mention",
	"cannot find", "can't find",
	"no information", "do not see any information",
	"i'm not sure", "i am not sure",
	"don't know", "do not know",
	"not available", "no relevant",
	"unable to find", "unable to answer",
	"not enough information", "not provided in",
	"doesn't contain", "does not contain",
	"not in the documentation",
	"context doesn't", "context does not",
	"no documentation",
	"i cannot", "i can't",
}

var conflictPhrases = []string{
	"conflicting", "contradictory", "inconsistent", "discrepancy",
	"differs from", "different from what", "varies depending",
	"unclear from the documentation",
	"multiple sources suggest different",
	"appears to conflict", "however, another",
	"on the other hand", "but the documentation also states",
	"note that there may be",
}

// partialHedges paired with an affirmative transition suggest the answer
// hedged on one topic while asserting another.
var partialHedges = []string{
	"does not mention", "doesn't mention", "not covered in",
}

var affirmativeTransitions = []string{
	"however", "that said", "on the other hand", "meanwhile",
}

// transitionWords back the multi-document heuristic, matched as whole
// words so "but" never fires inside "attributes".
var transitionWords = []string{
	"however", "but", "although", "whereas", "nevertheless",
}
