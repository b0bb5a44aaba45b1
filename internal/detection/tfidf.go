// CampaignWatch - Influence Campaign Detection and Threat Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campaignwatch

package detection

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// sparseVector is a TF-IDF vector: weights keyed by vocabulary index,
// sorted by index so dot products sum in a fixed order.
type sparseVector []termWeight

type termWeight struct {
	term   int
	weight float64
}

// tfidfVectorizer turns documents into L2-normalised TF-IDF vectors over
// word n-grams, using smoothed IDF: ln((1+n)/(1+df)) + 1.
type tfidfVectorizer struct {
	minN, maxN  int
	maxFeatures int
	stopWords   map[string]struct{}
}

func newTFIDFVectorizer(maxNGram, maxFeatures int) *tfidfVectorizer {
	if maxNGram < 1 {
		maxNGram = 1
	}
	return &tfidfVectorizer{
		minN:        1,
		maxN:        maxNGram,
		maxFeatures: maxFeatures,
		stopWords:   englishStopWords,
	}
}

// tokenize case-folds and NFKC-normalises text, then returns word tokens of
// two or more runes with stop words removed. Combining marks stay inside
// tokens so Devanagari words are not split at vowel signs.
func (v *tfidfVectorizer) tokenize(text string) []string {
	folded := cases.Fold().String(norm.NFKC.String(text))
	words := strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && !unicode.IsMark(r) && r != '_'
	})
	out := make([]string, 0, len(words))
	for _, w := range words {
		if len([]rune(w)) < 2 {
			continue
		}
		if _, stop := v.stopWords[w]; stop {
			continue
		}
		out = append(out, w)
	}
	return out
}

func (v *tfidfVectorizer) ngrams(tokens []string) []string {
	out := make([]string, 0, len(tokens)*v.maxN)
	for n := v.minN; n <= v.maxN; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			out = append(out, strings.Join(tokens[i:i+n], " "))
		}
	}
	return out
}

// fitTransform builds the vocabulary from docs and returns one vector per doc.
func (v *tfidfVectorizer) fitTransform(docs []string) []sparseVector {
	termCounts := make([]map[string]int, len(docs))
	corpusFreq := make(map[string]int)
	docFreq := make(map[string]int)

	for i, doc := range docs {
		counts := make(map[string]int)
		for _, term := range v.ngrams(v.tokenize(doc)) {
			counts[term]++
		}
		for term, c := range counts {
			corpusFreq[term] += c
			docFreq[term]++
		}
		termCounts[i] = counts
	}

	vocab := v.selectVocabulary(corpusFreq)
	n := float64(len(docs))

	vectors := make([]sparseVector, len(docs))
	for i, counts := range termCounts {
		vec := make(sparseVector, 0, len(counts))
		for term, c := range counts {
			idx, ok := vocab[term]
			if !ok {
				continue
			}
			idf := math.Log((1+n)/(1+float64(docFreq[term]))) + 1
			vec = append(vec, termWeight{term: idx, weight: float64(c) * idf})
		}
		sort.Slice(vec, func(a, b int) bool { return vec[a].term < vec[b].term })

		var norm2 float64
		for _, tw := range vec {
			norm2 += tw.weight * tw.weight
		}
		if norm2 > 0 {
			l2 := math.Sqrt(norm2)
			for k := range vec {
				vec[k].weight /= l2
			}
		}
		vectors[i] = vec
	}
	return vectors
}

// selectVocabulary keeps the maxFeatures most frequent terms and indexes
// them in lexical order.
func (v *tfidfVectorizer) selectVocabulary(corpusFreq map[string]int) map[string]int {
	terms := make([]string, 0, len(corpusFreq))
	for t := range corpusFreq {
		terms = append(terms, t)
	}
	if v.maxFeatures > 0 && len(terms) > v.maxFeatures {
		sort.Slice(terms, func(i, j int) bool {
			if corpusFreq[terms[i]] != corpusFreq[terms[j]] {
				return corpusFreq[terms[i]] > corpusFreq[terms[j]]
			}
			return terms[i] < terms[j]
		})
		terms = terms[:v.maxFeatures]
	}
	sort.Strings(terms)
	vocab := make(map[string]int, len(terms))
	for i, t := range terms {
		vocab[t] = i
	}
	return vocab
}

// cosine of two L2-normalised sparse vectors, clamped to [0,1].
func cosine(a, b sparseVector) float64 {
	var dot float64
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i].term < b[j].term:
			i++
		case a[i].term > b[j].term:
			j++
		default:
			dot += a[i].weight * b[j].weight
			i++
			j++
		}
	}
	return clamp01(dot)
}

// denseCosine is the cosine similarity of two equal-length vectors, or 0 when
// either has zero norm. Negative similarities are clamped to 0.
func denseCosine(a, b []float64) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return clamp01(dot / (math.Sqrt(na) * math.Sqrt(nb)))
}
