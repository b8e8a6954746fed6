package corpus

import "fmt"

var english = []string{
	"a", "about", "above", "after", "again", "against", "all", "am", "an", "and", "any",
	"are", "as", "at", "be", "because", "been", "before", "being", "below", "between",
	"both", "but", "by", "can", "could", "did", "do", "does", "doing", "down", "during",
	"each", "few", "for", "from", "further", "had", "has", "have", "having", "he", "her",
	"here", "hers", "herself", "him", "himself", "his", "how", "i", "if", "in", "into",
	"is", "it", "its", "itself", "just", "me", "more", "most", "my", "myself", "no", "nor",
	"not", "now", "of", "off", "on", "once", "only", "or", "other", "our", "ours",
	"ourselves", "out", "over", "own", "same", "she", "should", "so", "some", "such",
	"than", "that", "the", "their", "theirs", "them", "themselves", "then", "there",
	"these", "they", "this", "those", "through", "to", "too", "under", "until", "up",
	"very", "was", "we", "were", "what", "when", "where", "which", "while", "who", "whom",
	"why", "will", "with", "would", "you", "your", "yours", "yourself", "yourselves",
}

// StopWords returns the named stop-word set. Known names are "none" (or empty) and
// "english".
func StopWords(name string) (map[string]struct{}, error) {
	switch name {
	case "", "none":
		return nil, nil
	case "english":
		set := make(map[string]struct{}, len(english))
		for _, w := range english {
			set[w] = struct{}{}
		}
		return set, nil
	}
	return nil, fmt.Errorf("unknown stop-word list %q", name)
}
