// CampaignWatch - Influence Campaign Detection and Threat Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campaignwatch

package nlp

import "context"

// Classifier bundles the local rule-based text classifiers.
type Classifier struct {
	toxicity *ToxicityClassifier
	stance   *StanceDetector
	language *LanguageDetector
}

// NewClassifier creates the local classifier set.
func NewClassifier() *Classifier {
	return &Classifier{
		toxicity: NewToxicityClassifier(),
		stance:   NewStanceDetector(),
		language: NewLanguageDetector(),
	}
}

// Toxicity classifies text. The error is non-nil only when ctx is done.
func (c *Classifier) Toxicity(ctx context.Context, text, language string) (ToxicityResult, error) {
	if err := ctx.Err(); err != nil {
		return NeutralToxicity(), err
	}
	return c.toxicity.Classify(text, language), nil
}

// Stance classifies text. The error is non-nil only when ctx is done.
func (c *Classifier) Stance(ctx context.Context, text, language string) (StanceResult, error) {
	if err := ctx.Err(); err != nil {
		return notRelevantStance(1), err
	}
	return c.stance.Detect(text, language), nil
}

// Language detects the language of text.
func (c *Classifier) Language(text string) LanguageResult {
	return c.language.Detect(text)
}
