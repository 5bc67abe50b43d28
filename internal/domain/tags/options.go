package tags

// Option applies a configuration option to the Extractor.
type Option func(*Extractor)

// WithLengthBounds sets the accepted tag length range.
func WithLengthBounds(minLength, maxLength int) Option {
	return func(e *Extractor) {
		if minLength > 0 && maxLength >= minLength {
			e.minLength = minLength
			e.maxLength = maxLength
		}
	}
}

// WithMaxTags caps how many tags one text can yield.
func WithMaxTags(maxTags int) Option {
	return func(e *Extractor) {
		if maxTags > 0 {
			e.maxTags = maxTags
		}
	}
}

// WithStopwords replaces the default stopword list.
func WithStopwords(words []string) Option {
	return func(e *Extractor) {
		set := make(map[string]struct{}, len(words))
		for _, w := range words {
			set[Normalize(w)] = struct{}{}
		}
		e.stopwords = set
	}
}
