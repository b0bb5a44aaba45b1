// CampaignWatch - Influence Campaign Detection and Threat Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campaignwatch

package nlp

import (
	"math"
	"unicode"
	"unicode/utf8"
)

// hinglishMarkers are romanised Hindi function words that rarely occur in
// English text.
var hinglishMarkers = map[string]struct{}{
	"aur": {}, "hai": {}, "hain": {}, "kar": {}, "ke": {}, "ki": {}, "ko": {},
	"se": {}, "kya": {}, "kyun": {}, "kaise": {}, "kab": {}, "kahan": {},
	"yaar": {}, "bhai": {}, "ji": {}, "sahab": {}, "accha": {}, "theek": {},
	"sahi": {}, "galat": {}, "nahi": {}, "bahut": {},
}

// LanguageDetector identifies the language of short social-media text from
// its script mix.
type LanguageDetector struct{}

// NewLanguageDetector creates a script-based language detector.
func NewLanguageDetector() *LanguageDetector {
	return &LanguageDetector{}
}

// Detect returns the most likely language of text.
func (d *LanguageDetector) Detect(text string) LanguageResult {
	cleaned := cleanText(handlePattern.ReplaceAllString(urlPattern.ReplaceAllString(text, " "), " "))
	if utf8.RuneCountInString(cleaned) < 3 {
		return unknownLanguage()
	}

	var devanagari, arabic, latin, letters int
	for _, r := range cleaned {
		if !unicode.IsLetter(r) {
			continue
		}
		letters++
		switch {
		case unicode.Is(unicode.Devanagari, r):
			devanagari++
		case unicode.Is(unicode.Arabic, r):
			arabic++
		case unicode.Is(unicode.Latin, r):
			latin++
		}
	}
	if letters == 0 {
		return unknownLanguage()
	}

	total := float64(letters)
	devRatio := float64(devanagari) / total
	arRatio := float64(arabic) / total
	latRatio := float64(latin) / total

	switch {
	case devRatio > 0.7:
		return scriptResult(LanguageHindi, devRatio)
	case arRatio > 0.7:
		return scriptResult(LanguageUrdu, arRatio)
	case devRatio > 0.1 && latRatio > 0.3:
		return hinglishResult()
	}

	if latRatio > 0.5 {
		var markers int
		for _, w := range words(fold(cleaned)) {
			if _, ok := hinglishMarkers[w]; ok {
				markers++
			}
		}
		if float64(markers)*0.15 > 0.3 {
			return hinglishResult()
		}
		return LanguageResult{
			Language:       LanguageEnglish,
			Confidence:     math.Min(0.9, latRatio),
			MixedLanguages: []string{LanguageEnglish},
		}
	}
	return unknownLanguage()
}

// scriptResult reports a dominant non-Latin script. Below 90% the text is
// treated as mixed with English.
func scriptResult(lang string, ratio float64) LanguageResult {
	res := LanguageResult{
		Language:       lang,
		Confidence:     math.Min(0.95, ratio),
		MixedLanguages: []string{lang},
	}
	if ratio < 0.9 {
		res.IsMixed = true
		res.MixedLanguages = append(res.MixedLanguages, LanguageEnglish)
	}
	return res
}

func hinglishResult() LanguageResult {
	return LanguageResult{
		Language:       LanguageHinglish,
		Confidence:     0.8,
		IsMixed:        true,
		MixedLanguages: []string{LanguageHindi, LanguageEnglish},
	}
}

func unknownLanguage() LanguageResult {
	return LanguageResult{Language: LanguageUnknown, MixedLanguages: []string{}}
}
