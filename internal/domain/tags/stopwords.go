package tags

// stopwordList holds common words that carry no filtering value as tags.
// Comparisons happen after lowercasing, so the list is lower case only.
var stopwordList = []string{
	"a", "an", "and", "are", "as", "at", "be", "but", "by",
	"for", "from", "has", "he", "in", "is", "it", "its",
	"of", "on", "or", "our", "she", "that", "the", "their",
	"this", "to", "was", "were", "will", "with", "you", "your",
}

func defaultStopwords() map[string]struct{} {
	set := make(map[string]struct{}, len(stopwordList))
	for _, w := range stopwordList {
		set[w] = struct{}{}
	}
	return set
}
