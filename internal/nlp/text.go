// CampaignWatch - Influence Campaign Detection and Threat Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campaignwatch

package nlp

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

var (
	urlPattern    = regexp.MustCompile(`https?://\S+`)
	handlePattern = regexp.MustCompile(`[@#][\p{L}\p{N}_]+`)
	repeatedPunct = regexp.MustCompile(`[!?.]{3,}`)
)

// cleanText strips URLs and collapses whitespace.
func cleanText(s string) string {
	s = urlPattern.ReplaceAllString(s, " ")
	s = repeatedPunct.ReplaceAllString(s, "...")
	return strings.Join(strings.Fields(s), " ")
}

// fold NFKC-normalises and case-folds s.
func fold(s string) string {
	return cases.Fold().String(norm.NFKC.String(s))
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r)
}

// words splits s into runs of letters, digits and combining marks.
func words(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool { return !isWordRune(r) })
}

// hasPhrase reports whether phrase occurs in text starting at a word
// boundary. With whole set the match must also end at one; otherwise the
// phrase acts as a stem ("india collaps" matches "india collapsing").
func hasPhrase(text, phrase string, whole bool) bool {
	if phrase == "" {
		return false
	}
	for off := 0; off < len(text); {
		i := strings.Index(text[off:], phrase)
		if i < 0 {
			return false
		}
		start := off + i
		end := start + len(phrase)
		if boundaryBefore(text, start) && (!whole || boundaryAfter(text, end)) {
			return true
		}
		_, size := utf8.DecodeRuneInString(text[start:])
		off = start + size
	}
	return false
}

func boundaryBefore(text string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(text[:i])
	return !isWordRune(r)
}

func boundaryAfter(text string, i int) bool {
	if i >= len(text) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(text[i:])
	return !isWordRune(r)
}

func foldAll(list []string) []string {
	out := make([]string, len(list))
	for i, s := range list {
		out[i] = fold(s)
	}
	return out
}
