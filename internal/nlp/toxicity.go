// CampaignWatch - Influence Campaign Detection and Threat Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campaignwatch

package nlp

import (
	"math"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

const (
	modelRuleBased = "rule_based"
	modelNone      = "none"
)

// Word list keys. Hinglish text uses the mixed list; Hindi and Urdu text
// is checked against the mixed list as well.
const (
	listEnglish = "en"
	listHindi   = "hi"
	listUrdu    = "ur"
	listMixed   = "mixed"
)

var toxicWordLists = map[string][]string{
	listEnglish: foldAll([]string{
		"hate", "kill", "die", "death", "stupid", "idiot", "fool", "dumb",
		"threat", "violence", "attack", "destroy", "evil", "terrorist",
		"bomb", "explosive", "weapon", "murder", "assassinate",
	}),
	listHindi: foldAll([]string{
		"मूर्ख", "बेवकूफ", "गधा", "कमीना", "हरामी", "साला",
		"मार", "मारना", "हत्या", "खत्म",
	}),
	listUrdu: foldAll([]string{
		"بیوقوف", "احمق", "گدھا", "کمینہ", "حرامی",
		"مار", "مارنا", "قتل", "ختم",
	}),
	listMixed: foldAll([]string{
		"bakwas", "faltu", "pagal", "stupid", "bewakoof",
		"maar", "khatam", "badtameez", "ghatiya",
	}),
}

var toxicPatterns = []struct {
	category string
	re       *regexp.Regexp
}{
	{CategoryHateSpeech, regexp.MustCompile(`\b(hate|kill|die|death)\b`)},
	{CategoryInsult, regexp.MustCompile(`\b(stupid|idiot|fool|dumb)\b`)},
	{CategoryThreat, regexp.MustCompile(`\b(threat|violence|attack)\b`)},
}

// ToxicityClassifier scores text for toxic language.
type ToxicityClassifier struct{}

// NewToxicityClassifier creates a rule-based toxicity classifier.
func NewToxicityClassifier() *ToxicityClassifier {
	return &ToxicityClassifier{}
}

// Classify scores text written in language. Texts shorter than three
// characters return a non-toxic result with full confidence.
func (c *ToxicityClassifier) Classify(text, language string) ToxicityResult {
	cleaned := cleanText(text)
	if utf8.RuneCountInString(cleaned) < 3 {
		return NeutralToxicity()
	}
	folded := fold(cleaned)

	tokens := make(map[string]struct{})
	for _, w := range words(folded) {
		tokens[w] = struct{}{}
	}
	matched := make(map[string]struct{})
	for _, list := range toxicListsFor(language) {
		for _, w := range toxicWordLists[list] {
			if _, ok := tokens[w]; ok {
				matched[w] = struct{}{}
			}
		}
	}

	var score float64
	categories := make(map[string]struct{})
	if total := len(strings.Fields(cleaned)); total > 0 && len(matched) > 0 {
		score = math.Min(float64(len(matched))/float64(total), 1) * 0.8
		categories[CategoryOffensive] = struct{}{}
	}
	for _, p := range toxicPatterns {
		if p.re.MatchString(folded) {
			score = math.Max(score, 0.6)
			categories[p.category] = struct{}{}
		}
	}
	if len(categories) > 0 && score < 0.3 {
		score = 0.3
	}

	res := ToxicityResult{
		Score:      score,
		Severity:   ToxicitySeverity(score),
		Confidence: 0.9,
		Categories: make([]string, 0, len(categories)),
		Model:      modelRuleBased,
	}
	if score > 0.3 {
		res.Confidence = 0.7
	}
	for c := range categories {
		res.Categories = append(res.Categories, c)
	}
	sort.Strings(res.Categories)
	return res
}

// ToxicitySeverity maps a score to none [0,0.3), low [0.3,0.5),
// medium [0.5,0.7), high [0.7,0.85) or severe.
func ToxicitySeverity(score float64) string {
	switch {
	case score < 0.3:
		return SeverityNone
	case score < 0.5:
		return SeverityLow
	case score < 0.7:
		return SeverityMedium
	case score < 0.85:
		return SeverityHigh
	default:
		return SeveritySevere
	}
}

func toxicListsFor(language string) []string {
	switch strings.ToLower(language) {
	case LanguageHindi:
		return []string{listHindi, listMixed}
	case LanguageUrdu:
		return []string{listUrdu, listMixed}
	case LanguageHinglish, listMixed:
		return []string{listMixed}
	default:
		return []string{listEnglish}
	}
}

// NeutralToxicity is the non-toxic result used for short text and failed
// classifications.
func NeutralToxicity() ToxicityResult {
	return ToxicityResult{
		Severity:   SeverityNone,
		Confidence: 1,
		Categories: []string{},
		Model:      modelNone,
	}
}
