// Package tags tokenizes free text into normalized, de-duplicated tag sets
// used to filter featured listings.
package tags

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Default extractor configuration constants.
const (
	defaultMinLength = 2
	defaultMaxLength = 32
	defaultMaxTags   = 16
)

// delimiters end a token without invalidating it. Whitespace is always a
// delimiter; the characters below are sentence punctuation.
const delimiterSet = "!?.,;:()[]{}\"<>"

// Extractor scans display text for tag tokens. It is a pure function
// holder: no shared state, safe for concurrent use.
type Extractor struct {
	minLength int
	maxLength int
	maxTags   int
	stopwords map[string]struct{}
}

// New creates an extractor with configuration options.
func New(opts ...Option) *Extractor {
	e := &Extractor{
		minLength: defaultMinLength,
		maxLength: defaultMaxLength,
		maxTags:   defaultMaxTags,
		stopwords: defaultStopwords(),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Normalize lowercases and trims an explicit tag so it compares equal to
// extracted tags.
func Normalize(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}

func isDelimiter(r rune) bool {
	return unicode.IsSpace(r) || strings.ContainsRune(delimiterSet, r)
}

func isAlnum(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// Extract tokenizes text into at most maxTags normalized tags, in first
// acceptance order, without duplicates.
//
// Tokens start at an alphanumeric rune. Letters and digits extend the
// token; a single connector (any rune that is neither alphanumeric nor a
// delimiter, e.g. '-' or '_') is allowed inside, but two adjacent
// connectors invalidate the whole token. A delimiter ends the token. A
// trailing connector is stripped before the token is checked against the
// length bounds and the stopword list. Length bounds count runes, not
// bytes.
func (e *Extractor) Extract(text string) []string {
	runes := []rune(text)
	seen := make(map[string]struct{})
	var out []string

	i := 0
	for i < len(runes) && len(out) < e.maxTags {
		r := runes[i]
		switch {
		case isDelimiter(r):
			i++
		case !isAlnum(r):
			// Junk run; jump to the next whitespace.
			i = skipToWhitespace(runes, i)
		default:
			token, next, ok := scanToken(runes, i)
			i = next
			if !ok {
				continue
			}
			tag := strings.ToLower(token)
			if n := utf8.RuneCountInString(tag); n < e.minLength || n > e.maxLength {
				continue
			}
			if _, stop := e.stopwords[tag]; stop {
				continue
			}
			if _, dup := seen[tag]; dup {
				continue
			}
			seen[tag] = struct{}{}
			out = append(out, tag)
		}
	}
	return out
}

// scanToken reads one token starting at an alphanumeric rune. It returns
// the raw token (trailing connector stripped), the position to resume
// scanning from, and whether the token survived.
func scanToken(runes []rune, start int) (string, int, bool) {
	j := start
	lastConnector := false
	for j < len(runes) {
		r := runes[j]
		switch {
		case isAlnum(r):
			lastConnector = false
			j++
		case isDelimiter(r):
			goto done
		default:
			if lastConnector {
				// Doubled connector invalidates the token entirely.
				return "", skipToWhitespace(runes, j), false
			}
			lastConnector = true
			j++
		}
	}
done:
	end := j
	if lastConnector {
		end--
	}
	return string(runes[start:end]), j, true
}

// skipToWhitespace advances past the current run up to (but not past) the
// next whitespace rune.
func skipToWhitespace(runes []rune, i int) int {
	for i < len(runes) && !unicode.IsSpace(runes[i]) {
		i++
	}
	return i
}
