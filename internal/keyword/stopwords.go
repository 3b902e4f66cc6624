package keyword

// stopWords lists common English function words that never count as keywords.
// Words of two characters or fewer are dropped by length already and are
// therefore not listed.
var stopWords = map[string]struct{}{
	// articles and determiners
	"the": {}, "this": {}, "that": {}, "these": {}, "those": {},
	"each": {}, "every": {}, "some": {}, "any": {}, "all": {},
	"both": {}, "few": {}, "more": {}, "most": {}, "much": {},
	"many": {}, "such": {}, "other": {}, "another": {}, "same": {},

	// pronouns
	"you": {}, "your": {}, "yours": {}, "yourself": {}, "yourselves": {},
	"she": {}, "her": {}, "hers": {}, "herself": {},
	"him": {}, "his": {}, "himself": {},
	"its": {}, "itself": {},
	"they": {}, "them": {}, "their": {}, "theirs": {}, "themselves": {},
	"our": {}, "ours": {}, "ourselves": {},
	"mine": {}, "myself": {},
	"who": {}, "whom": {}, "whose": {}, "which": {}, "what": {},

	// auxiliary and modal verbs
	"are": {}, "was": {}, "were": {}, "been": {}, "being": {},
	"have": {}, "has": {}, "had": {}, "having": {},
	"does": {}, "did": {}, "doing": {}, "done": {},
	"can": {}, "could": {}, "will": {}, "would": {},
	"shall": {}, "should": {}, "may": {}, "might": {}, "must": {},

	// prepositions and conjunctions
	"and": {}, "but": {}, "nor": {}, "for": {}, "yet": {},
	"with": {}, "without": {}, "from": {}, "into": {}, "onto": {},
	"about": {}, "above": {}, "below": {}, "after": {}, "before": {},
	"against": {}, "between": {}, "during": {}, "through": {},
	"over": {}, "under": {}, "until": {}, "upon": {}, "off": {},
	"out": {}, "than": {}, "then": {}, "because": {}, "while": {},
	"since": {}, "though": {}, "although": {}, "unless": {},

	// adverbs and misc
	"not": {}, "too": {}, "very": {}, "just": {}, "only": {},
	"also": {}, "again": {}, "once": {}, "here": {}, "there": {},
	"when": {}, "where": {}, "why": {}, "how": {}, "now": {},
	"own": {}, "further": {},
}

// IsStopWord reports whether word is in the stop list.
// The word must already be lower-case.
func IsStopWord(word string) bool {
	_, ok := stopWords[word]
	return ok
}
