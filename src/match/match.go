// Package match scores recognized screen text against profile field labels.
// It is a pure function of its inputs: no I/O, no state, deterministic.
package match

import (
	"sort"
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/unicode/norm"

	"profile-clip/src/profile"
)

// DefaultThreshold is the minimum similarity for a label to be considered a
// candidate: exactly half the longer string may differ.
const DefaultThreshold = 0.5

// punctuation covers ASCII and full-width CJK marks that OCR commonly picks
// up around a form-field label (trailing colons in particular).
const punctuation = "：:，,。.、；;！!？?（）()【】[]「」《》<>\"'“”‘’·-—_"

// Candidate is a scored pairing of a profile field value with the recognized
// text. Every stored value of a surviving field becomes its own candidate,
// all sharing the field's score.
type Candidate struct {
	Label string
	Value string
	Score float64
}

// Normalize prepares text for comparison: NFKC fold (full-width forms
// collapse to their canonical shape), punctuation stripped, all whitespace
// removed, lower-cased. Removing whitespace entirely (rather than collapsing
// it) is deliberate: OCR tends to insert spurious gaps inside CJK labels,
// so "手 机" must compare equal to "手机".
func Normalize(text string) string {
	folded := norm.NFKC.String(text)
	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			continue
		}
		if strings.ContainsRune(punctuation, r) {
			continue
		}
		b.WriteRune(r)
	}
	return strings.ToLower(b.String())
}

// Similarity is an edit-distance ratio over runes in [0,1]. Two empty
// strings score 0, not 1: an empty label can never be a match target.
func Similarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	la := len([]rune(a))
	lb := len([]rune(b))
	maxLen := la
	if lb > maxLen {
		maxLen = lb
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1 - float64(dist)/float64(maxLen)
}

// Match ranks profile fields against the recognized text. Inclusion requires
// similarity >= threshold. The result is sorted descending by score; ties
// keep field load order, then value order within a field. Empty recognized
// text (after normalization) and an empty field set both yield nil.
func Match(recognized string, fields []profile.Field, threshold float64) []Candidate {
	text := Normalize(recognized)
	if text == "" {
		return nil
	}

	var out []Candidate
	for _, f := range fields {
		score := Similarity(text, Normalize(f.Label))
		if score < threshold {
			continue
		}
		for _, v := range f.Values {
			if v == "" {
				continue
			}
			out = append(out, Candidate{Label: f.Label, Value: v, Score: score})
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

// JoinFragments glues multi-fragment recognizer output into the single
// string handed to Match. sep is the configured fragment join string.
func JoinFragments(fragments []string, sep string) string {
	return strings.Join(fragments, sep)
}
