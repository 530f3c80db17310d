// Package moderation masks forbidden words in outbound message text.
// Matching is accent- and case-insensitive and ignores punctuation, so
// split or decorated spellings of a banned word are still caught.
package moderation

import (
	"unicode"

	goahocorasick "github.com/anknown/ahocorasick"
)

// Moderator holds a compiled Aho-Corasick automaton over the
// normalized banned-word list. The zero word list produces a disabled
// moderator whose Censor is the identity function.
type Moderator struct {
	matcher     *goahocorasick.Machine
	replacement rune
}

// NewModerator compiles the banned-word automaton. replacement is the
// character written over censored spans, '*' in the default setup.
func NewModerator(words []string, replacement rune) (Moderator, error) {
	if len(words) == 0 {
		return Moderator{replacement: replacement}, nil
	}

	patterns := make([][]rune, 0, len(words))
	for _, word := range words {
		if norm, _ := normalize(word); len(norm) > 0 {
			patterns = append(patterns, norm)
		}
	}
	if len(patterns) == 0 {
		return Moderator{replacement: replacement}, nil
	}

	machine := new(goahocorasick.Machine)
	if err := machine.Build(patterns); err != nil {
		return Moderator{}, err
	}
	return Moderator{matcher: machine, replacement: replacement}, nil
}

// Censor returns text with every banned span overwritten by the
// replacement rune, preserving length and spacing of the original.
func (m Moderator) Censor(text string) string {
	if m.matcher == nil {
		return text
	}

	norm, origIdx := normalize(text)
	if len(norm) == 0 {
		return text
	}

	spans := m.matcher.MultiPatternSearch(norm, false)
	if len(spans) == 0 {
		return text
	}

	runes := []rune(text)
	for _, span := range spans {
		start := span.Pos
		end := start + len(span.Word)
		if start < 0 || end > len(origIdx) {
			continue
		}
		for i := origIdx[start]; i <= origIdx[end-1]; i++ {
			runes[i] = m.replacement
		}
	}
	return string(runes)
}

// normalize lowercases the input and drops punctuation, spacing and
// symbols, returning the searchable rune slice plus a mapping from
// normalized positions back to original rune indexes.
func normalize(input string) ([]rune, []int) {
	runes := []rune(input)
	norm := make([]rune, 0, len(runes))
	origIdx := make([]int, 0, len(runes))
	for i, r := range runes {
		if unicode.IsPunct(r) || unicode.IsSpace(r) || unicode.IsSymbol(r) {
			continue
		}
		norm = append(norm, unicode.ToLower(r))
		origIdx = append(origIdx, i)
	}
	return norm, origIdx
}
