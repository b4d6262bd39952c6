// Package ngram provides character and word n-gram generation, Jaccard
// similarity scoring, and an inverted n-gram index for fuzzy text matching.
package ngram

import (
	"strings"
	"unicode"
)

// Kind selects between character-level and word-level n-grams.
type Kind int

const (
	// KindChar generates contiguous rune substrings of length n.
	KindChar Kind = iota
	// KindWord generates contiguous runs of n whitespace-separated tokens.
	KindWord
)

// String returns a string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindChar:
		return "char"
	case KindWord:
		return "word"
	default:
		return "unknown"
	}
}

// Set is a set of n-gram tokens.
type Set map[string]struct{}

// NewSet builds a Set from the given tokens.
func NewSet(tokens ...string) Set {
	s := make(Set, len(tokens))
	for _, t := range tokens {
		s[t] = struct{}{}
	}
	return s
}

// Add inserts a token into the set.
func (s Set) Add(token string) {
	s[token] = struct{}{}
}

// Contains reports whether token is in the set.
func (s Set) Contains(token string) bool {
	_, ok := s[token]
	return ok
}

// Normalize lowercases text, replaces characters outside the letter/digit
// allowlist with spaces, and collapses whitespace runs. It is idempotent:
// Normalize(Normalize(x)) == Normalize(x).
func Normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	pendingSpace := false
	wrote := false
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSpace && wrote {
				b.WriteByte(' ')
			}
			pendingSpace = false
			b.WriteRune(unicode.ToLower(r))
			wrote = true
		} else {
			pendingSpace = true
		}
	}
	return b.String()
}

// Tokenize splits normalized text on whitespace. Empty or all-punctuation
// input yields a nil slice, never a slice containing one empty string.
func Tokenize(text string) []string {
	normalized := Normalize(text)
	if normalized == "" {
		return nil
	}
	return strings.Fields(normalized)
}

// CharacterNgrams generates the set of contiguous length-n rune substrings
// of Normalize(text). When the normalized text is shorter than n, the whole
// normalized string is returned as a one-element set so that short inputs
// still participate in similarity scoring instead of failing every
// comparison.
func CharacterNgrams(text string, n int) Set {
	if n < 1 {
		n = 1
	}
	runes := []rune(Normalize(text))
	if len(runes) < n {
		return NewSet(string(runes))
	}
	grams := make(Set, len(runes)-n+1)
	for i := 0; i+n <= len(runes); i++ {
		grams.Add(string(runes[i : i+n]))
	}
	return grams
}

// WordNgrams generates the set of contiguous runs of n tokens joined by a
// single space. Fewer than n tokens yields a one-element set of all tokens
// joined (same short-input policy as CharacterNgrams); zero tokens yields
// an empty set.
func WordNgrams(text string, n int) Set {
	if n < 1 {
		n = 1
	}
	tokens := Tokenize(text)
	if len(tokens) == 0 {
		return make(Set)
	}
	if len(tokens) < n {
		return NewSet(strings.Join(tokens, " "))
	}
	grams := make(Set, len(tokens)-n+1)
	for i := 0; i+n <= len(tokens); i++ {
		grams.Add(strings.Join(tokens[i:i+n], " "))
	}
	return grams
}

// MixedNgrams generates the union of character and word n-grams, each
// prefixed by its kind ("c:" or "w:") so a 3-character gram can never
// collide with an unrelated 2-word gram when stored in a shared index.
func MixedNgrams(text string, charN, wordN int) Set {
	chars := CharacterNgrams(text, charN)
	words := WordNgrams(text, wordN)
	mixed := make(Set, len(chars)+len(words))
	for g := range chars {
		mixed.Add("c:" + g)
	}
	for g := range words {
		mixed.Add("w:" + g)
	}
	return mixed
}

// Generate produces the n-gram set of text for the given kind.
func Generate(text string, kind Kind, n int) Set {
	if kind == KindWord {
		return WordNgrams(text, n)
	}
	return CharacterNgrams(text, n)
}
