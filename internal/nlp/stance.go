// CampaignWatch - Influence Campaign Detection and Threat Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campaignwatch

package nlp

import (
	"math"
	"regexp"
	"strings"
	"unicode/utf8"
)

// indiaTopics are matched as whole phrases. Order is the reporting order
// of relevant topics.
var indiaTopics = []struct {
	name     string
	keywords []string
}{
	{"economy", []string{"economy", "gdp", "unemployment", "poverty", "economic growth", "recession"}},
	{"politics", []string{"government", "democracy", "election", "corruption", "politics", "modi", "congress"}},
	{"military", []string{"military", "army", "defense", "border", "security", "terrorism", "war"}},
	{"society", []string{"culture", "religion", "hindu", "muslim", "caste", "society", "tradition"}},
	{"international", []string{"pakistan", "china", "relations", "diplomacy", "foreign policy", "trade"}},
	{"kashmir", []string{"kashmir", "article 370", "pok", "azad kashmir", "loc", "ceasefire"}},
	{"general", foldAll([]string{"india", "indian", "bharat", "hindustan", "delhi", "mumbai", "bangalore", "भारत", "بھارت"})},
}

var indiaMention = regexp.MustCompile(`\b(india|indian|bharat|hindustan)\b`)

// stanceIndicators are matched as stems, keyed by word list.
var stanceIndicators = map[string]map[string][]string{
	StanceAntiIndia: {
		listEnglish: {
			"india fail", "india collaps", "india weak", "india corrupt",
			"india terror", "india occupi", "india aggress", "india evil",
			"hate india", "destroy india", "india enemy", "india bad",
			"india wrong", "india lies", "india propaganda", "fake india",
			"india oppress", "india violat", "india illegal", "india fraud",
		},
		listHindi: foldAll([]string{
			"भारत बुरा", "भारत गलत", "भारत दुश्मन", "भारत कमजोर",
			"भारत झूठ", "भारत धोखा", "भारत अत्याचार", "भारत नफरत",
		}),
		listUrdu: foldAll([]string{
			"بھارت برا", "بھارت غلط", "بھارت دشمن", "بھارت کمزور",
			"بھارت جھوٹ", "بھارت دھوکہ",
		}),
		listMixed: {
			"india bad hai", "india ganda hai", "india galat hai",
			"india bekar hai", "india nautanki", "india fake hai",
		},
	},
	StanceProIndia: {
		listEnglish: {
			"india great", "india strong", "india success", "india grow",
			"love india", "proud india", "india good", "india right",
			"india develop", "india progress", "india superpower", "jai hind",
			"bharat mata", "incredible india", "shining india", "india rise",
		},
		listHindi: foldAll([]string{
			"भारत महान", "भारत अच्छा", "भारत मजबूत", "भारत प्रगति",
			"जय हिंद", "भारत माता", "वंदे मातरम्", "भारत गर्व",
		}),
		listUrdu: foldAll([]string{
			"بھارت اچھا", "بھارت مضبوط", "بھارت ترقی",
		}),
		listMixed: {
			"india accha hai", "india best hai", "india strong hai",
			"proud of india", "jai hind", "bharat mata ki jai",
		},
	},
}

var (
	economicNegative = []string{
		"economy collaps", "unemployment high", "poverty increas",
		"economic crisis", "gdp fall", "recession", "inflation",
	}
	economicPositive = []string{
		"economy grow", "gdp increas", "economic succes",
		"development", "progress", "prosperity", "growth",
	}
	securityTriggers   = []string{"terrorist", "attack", "violence", "conflict"}
	aggressorPhrases   = []string{"india attack", "india aggress", "india occupi"}
	victimPhrases      = []string{"attack on india", "terror in india", "victim"}
	regionalTriggers   = []string{"pakistan", "china", "border", "dispute"}
	regionalAntiPhrase = []string{"india wrong", "india fault", "india aggressive"}
	regionalProPhrase  = []string{"india defend", "india right", "support india"}

	positiveWords = []string{
		"good", "great", "excellent", "amazing", "wonderful", "fantastic", "love",
		"like", "support", "praise", "success", "progress", "development",
	}
	negativeWords = []string{
		"bad", "terrible", "awful", "horrible", "hate", "dislike", "fail",
		"failure", "crisis", "problem", "issue", "corrupt", "weak",
	}
)

// StanceDetector classifies the stance of text towards India.
type StanceDetector struct{}

// NewStanceDetector creates a rule-based stance detector.
func NewStanceDetector() *StanceDetector {
	return &StanceDetector{}
}

// Detect classifies text written in language. Short or off-topic text is
// not_relevant.
func (d *StanceDetector) Detect(text, language string) StanceResult {
	cleaned := cleanText(text)
	if utf8.RuneCountInString(cleaned) < 3 {
		return notRelevantStance(1)
	}
	folded := fold(cleaned)

	topics := relevantTopics(folded)
	if len(topics) == 0 {
		return notRelevantStance(1)
	}

	var anti, pro float64
	indicators := make([]string, 0)
	list := stanceListFor(language)
	for _, phrase := range stanceIndicators[StanceAntiIndia][list] {
		if hasPhrase(folded, phrase, false) {
			anti += 0.3
			indicators = append(indicators, "anti: "+phrase)
		}
	}
	for _, phrase := range stanceIndicators[StanceProIndia][list] {
		if hasPhrase(folded, phrase, false) {
			pro += 0.3
			indicators = append(indicators, "pro: "+phrase)
		}
	}
	ctxAnti, ctxPro := stanceContext(folded)
	anti += ctxAnti
	pro += ctxPro

	neutral := 0.8
	if anti != 0 || pro != 0 {
		neutral = math.Max(0, 1-anti-pro)
	}
	if total := anti + pro + neutral; total > 0 {
		anti /= total
		pro /= total
		neutral /= total
	}

	res := StanceResult{
		Scores: StanceScores{
			AntiIndia: math.Min(1, anti),
			ProIndia:  math.Min(1, pro),
			Neutral:   math.Min(1, neutral),
		},
		Topics:     topics,
		Indicators: indicators,
		Sentiment:  lexiconSentiment(folded),
	}
	res.Primary, res.Confidence = StanceAntiIndia, res.Scores.AntiIndia
	if res.Scores.ProIndia > res.Confidence {
		res.Primary, res.Confidence = StanceProIndia, res.Scores.ProIndia
	}
	if res.Scores.Neutral > res.Confidence {
		res.Primary, res.Confidence = StanceNeutral, res.Scores.Neutral
	}
	return res
}

// relevantTopics returns the India topics mentioned in folded text. A
// direct mention of the country always marks the general topic.
func relevantTopics(folded string) []string {
	topics := make([]string, 0)
	for _, t := range indiaTopics {
		for _, kw := range t.keywords {
			if hasPhrase(folded, kw, true) {
				topics = append(topics, t.name)
				break
			}
		}
	}
	if len(topics) == 0 && indiaMention.MatchString(folded) {
		topics = append(topics, "general")
	}
	return topics
}

// stanceContext scores economic, security and regional framing. Each side
// is capped at 0.5.
func stanceContext(folded string) (anti, pro float64) {
	for _, p := range economicNegative {
		if hasPhrase(folded, p, false) {
			anti += 0.2
		}
	}
	for _, p := range economicPositive {
		if hasPhrase(folded, p, false) {
			pro += 0.2
		}
	}
	if anyPhrase(folded, securityTriggers) {
		switch {
		case anyPhrase(folded, aggressorPhrases):
			anti += 0.3
		case anyPhrase(folded, victimPhrases):
			pro += 0.2
		}
	}
	if anyPhrase(folded, regionalTriggers) {
		switch {
		case anyPhrase(folded, regionalAntiPhrase):
			anti += 0.2
		case anyPhrase(folded, regionalProPhrase):
			pro += 0.2
		}
	}
	return math.Min(0.5, anti), math.Min(0.5, pro)
}

func lexiconSentiment(folded string) Sentiment {
	var pos, neg int
	for _, w := range positiveWords {
		if hasPhrase(folded, w, false) {
			pos++
		}
	}
	for _, w := range negativeWords {
		if hasPhrase(folded, w, false) {
			neg++
		}
	}
	total := pos + neg
	if total == 0 {
		return Sentiment{Positive: 0.33, Negative: 0.33, Neutral: 0.34}
	}
	return Sentiment{
		Positive: float64(pos) / float64(total),
		Negative: float64(neg) / float64(total),
	}
}

func anyPhrase(folded string, phrases []string) bool {
	for _, p := range phrases {
		if hasPhrase(folded, p, false) {
			return true
		}
	}
	return false
}

func stanceListFor(language string) string {
	switch strings.ToLower(language) {
	case LanguageHindi:
		return listHindi
	case LanguageUrdu:
		return listUrdu
	case LanguageHinglish, listMixed:
		return listMixed
	default:
		return listEnglish
	}
}

func notRelevantStance(confidence float64) StanceResult {
	return StanceResult{
		Scores:     StanceScores{NotRelevant: 1},
		Primary:    StanceNotRelevant,
		Confidence: confidence,
		Topics:     []string{},
		Indicators: []string{},
		Sentiment:  Sentiment{Positive: 0.33, Negative: 0.33, Neutral: 0.34},
	}
}

// NeutralStance is the not_relevant result used for failed classifications.
func NeutralStance() StanceResult {
	return notRelevantStance(1)
}
