// CampaignWatch - Influence Campaign Detection and Threat Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campaignwatch

package campaign

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/campaignwatch/internal/breaker"
	"github.com/tomtom215/campaignwatch/internal/detection"
	"github.com/tomtom215/campaignwatch/internal/logging"
	"github.com/tomtom215/campaignwatch/internal/metrics"
	"github.com/tomtom215/campaignwatch/internal/models"
	"github.com/tomtom215/campaignwatch/internal/nlp"
)

// TextClassifier classifies the text of a single post.
type TextClassifier interface {
	Toxicity(ctx context.Context, text, language string) (nlp.ToxicityResult, error)
	Stance(ctx context.Context, text, language string) (nlp.StanceResult, error)
	Language(text string) nlp.LanguageResult
}

// NarrativeClusterer groups classified posts into narratives.
type NarrativeClusterer interface {
	Cluster(ctx context.Context, posts []nlp.ClassifiedPost) (nlp.NarrativeResult, error)
}

// Option customises a Scorer.
type Option func(*Scorer)

// WithClock sets the time source used for result and alert timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Scorer) {
		if now != nil {
			s.now = now
		}
	}
}

type classification struct {
	toxicity nlp.ToxicityResult
	stance   nlp.StanceResult
}

// Scorer combines detector and collaborator outputs into a campaign threat
// score. It holds no per-call state and is safe for concurrent use.
type Scorer struct {
	config Config

	burst        *detection.BurstDetector
	coordination *detection.CoordinationDetector
	bots         *detection.BotDetector

	classifier TextClassifier
	clusterer  NarrativeClusterer

	classifierCB *gobreaker.CircuitBreaker[classification]
	narrativeCB  *gobreaker.CircuitBreaker[nlp.NarrativeResult]

	now func() time.Time
}

// NewScorer creates a Scorer. Nil collaborators fall back to the local
// rule-based implementations in package nlp.
func NewScorer(cfg Config, classifier TextClassifier, clusterer NarrativeClusterer, opts ...Option) *Scorer {
	cfg = cfg.withDefaults()
	if classifier == nil {
		classifier = nlp.NewClassifier()
	}
	if clusterer == nil {
		clusterer = nlp.NewNarrativeClusterer(nlp.DefaultNarrativeConfig())
	}
	s := &Scorer{
		config:       cfg,
		burst:        detection.NewBurstDetector(cfg.Burst),
		coordination: detection.NewCoordinationDetector(cfg.Coordination),
		bots:         detection.NewBotDetector(cfg.Bot),
		classifier:   classifier,
		clusterer:    clusterer,
		classifierCB: breaker.New[classification](cfg.ClassifierBreaker),
		narrativeCB:  breaker.New[nlp.NarrativeResult](cfg.NarrativeBreaker),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Config returns the effective configuration.
func (s *Scorer) Config() Config {
	return s.config
}

// Score scores one set of posts. When authors is nil they are derived from
// the posts. Failures of individual steps zero their component and are
// listed in DegradedSteps; Score itself never fails.
func (s *Scorer) Score(ctx context.Context, posts []models.Post, authors []models.Author) Result {
	return s.score(ctx, "", posts, authors)
}

// ScoreCampaign scores c and tags the result and its alerts with c.ID.
func (s *Scorer) ScoreCampaign(ctx context.Context, c Campaign) Result {
	return s.score(ctx, c.ID, c.Posts, c.Authors)
}

func (s *Scorer) score(ctx context.Context, id string, posts []models.Post, authors []models.Author) Result {
	now := s.now().UTC()
	if len(posts) == 0 {
		res := emptyResult(id, now)
		metrics.RecordCampaignScore(0, string(res.Severity), 0)
		return res
	}
	if id != "" {
		ctx = logging.ContextWithCampaignID(ctx, id)
	}
	log := logging.Ctx(ctx)
	start := time.Now()

	if authors == nil {
		authors = models.DeriveAuthors(posts)
	}
	posts = s.withLanguages(posts)
	steps := newStepLog(log)

	var (
		classified   []nlp.ClassifiedPost
		narrative    *nlp.NarrativeResult
		coordination *detection.CoordinationResult
		botNetwork   *detection.BotNetworkResult
		bursts       *detection.BurstResult
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		classified = s.classify(gctx, posts, steps)
		narrative = s.clusterNarratives(gctx, classified, steps)
		return nil
	})
	g.Go(func() error {
		coordination = runDetector(steps, StepCoordination, func() detection.CoordinationResult {
			return s.coordination.DetectCoordination(posts, authors)
		}, func(r *detection.CoordinationResult) []string { return r.DegradedSteps })
		return nil
	})
	g.Go(func() error {
		botNetwork = runDetector(steps, StepBotNetwork, func() detection.BotNetworkResult {
			return s.bots.AnalyzeNetwork(authors, posts)
		}, func(r *detection.BotNetworkResult) []string { return r.DegradedSteps })
		return nil
	})
	g.Go(func() error {
		bursts = runDetector(steps, StepBurst, func() detection.BurstResult {
			return s.burst.DetectBursts(posts, s.burst.Config().WindowHours)
		}, func(r *detection.BurstResult) []string { return r.DegradedSteps })
		return nil
	})
	_ = g.Wait()

	comps := map[string]float64{
		ComponentToxicity:        toxicityComponent(classified, s.config.HighToxicity),
		ComponentStance:          stanceComponent(classified, s.config.AntiStance),
		ComponentCoordination:    coordinationComponent(coordination),
		ComponentBotNetwork:      botNetworkComponent(botNetwork, s.config.HighBot),
		ComponentBurstActivity:   burstComponent(bursts),
		ComponentNarrativeThreat: narrativeComponent(narrative, s.config.NarrativeToxicity, s.config.NarrativeStance),
	}
	score := FinalScore(s.config.Weights, comps)
	severity := SeverityFor(score)

	res := Result{
		CampaignID:          id,
		Score:               score,
		Severity:            severity,
		ComponentScores:     comps,
		HumanReviewRequired: score > s.config.ReviewScore || severity == SeverityHigh || severity == SeverityCritical,
		PostCount:           len(posts),
		AuthorCount:         len(authors),
		Classifications:     summarizeClassifications(classified),
		Analysis: Analysis{
			Burst:        bursts,
			Coordination: coordination,
			BotNetwork:   botNetwork,
			Narrative:    narrative,
		},
		DegradedSteps: steps.degraded(),
		ScoredAt:      now,
	}
	res.Alerts = buildAlerts(s.config.Alerts, &res)
	res.Recommendations = Recommendations(score, comps)

	metrics.RecordCampaignScore(score, string(severity), len(posts))
	metrics.RecordComponentScores(comps)
	metrics.RecordDegradedSteps("campaign", res.DegradedSteps)
	for _, a := range res.Alerts {
		metrics.RecordAlert(a.Type, string(a.Severity))
	}

	log.Info().
		Str("component", "campaign").
		Int("posts", len(posts)).
		Int("authors", len(authors)).
		Float64("score", score).
		Str("severity", string(severity)).
		Int("alerts", len(res.Alerts)).
		Strs("degraded_steps", res.DegradedSteps).
		Dur("duration", time.Since(start)).
		Msg("Campaign scored")
	return res
}

// withLanguages returns a copy of posts with empty languages detected from
// the text. Undetectable languages stay empty.
func (s *Scorer) withLanguages(posts []models.Post) []models.Post {
	out := make([]models.Post, len(posts))
	copy(out, posts)
	for i := range out {
		if out[i].Language != "" {
			continue
		}
		lang, err := guard(func() (nlp.LanguageResult, error) {
			return s.classifier.Language(out[i].Text), nil
		})
		if err == nil && lang.Language != nlp.LanguageUnknown {
			out[i].Language = lang.Language
		}
	}
	return out
}

// classify runs toxicity and stance classification per post. A failed post
// gets neutral results; the step is degraded if any post failed.
func (s *Scorer) classify(ctx context.Context, posts []models.Post, steps *stepLog) []nlp.ClassifiedPost {
	start := time.Now()
	out := make([]nlp.ClassifiedPost, len(posts))

	var (
		failures atomic.Int64
		firstErr error
		once     sync.Once
	)
	g := new(errgroup.Group)
	g.SetLimit(s.config.ClassifyConcurrency)
	for i := range posts {
		g.Go(func() error {
			p := &posts[i]
			c, err := breaker.Execute(s.classifierCB, func() (classification, error) {
				return guard(func() (classification, error) { return s.classifyPost(ctx, p) })
			})
			if err != nil {
				failures.Add(1)
				once.Do(func() { firstErr = err })
				c = classification{toxicity: nlp.NeutralToxicity(), stance: nlp.NeutralStance()}
			}
			out[i] = nlp.ClassifiedPost{Post: *p, Toxicity: c.toxicity, Stance: c.stance}
			return nil
		})
	}
	_ = g.Wait()
	metrics.RecordAnalysis(StepClassification, time.Since(start))

	if n := failures.Load(); n > 0 {
		steps.record(StepClassification, fmt.Errorf("%d of %d posts: %w", n, len(posts), firstErr))
	}
	return out
}

func (s *Scorer) classifyPost(ctx context.Context, p *models.Post) (classification, error) {
	tox, err := s.classifier.Toxicity(ctx, p.Text, p.Language)
	if err != nil {
		return classification{}, fmt.Errorf("toxicity: %w", err)
	}
	st, err := s.classifier.Stance(ctx, p.Text, p.Language)
	if err != nil {
		return classification{}, fmt.Errorf("stance: %w", err)
	}
	return classification{toxicity: tox, stance: st}, nil
}

func (s *Scorer) clusterNarratives(ctx context.Context, posts []nlp.ClassifiedPost, steps *stepLog) *nlp.NarrativeResult {
	start := time.Now()
	res, err := breaker.Execute(s.narrativeCB, func() (nlp.NarrativeResult, error) {
		return guard(func() (nlp.NarrativeResult, error) { return s.clusterer.Cluster(ctx, posts) })
	})
	metrics.RecordAnalysis(StepNarrative, time.Since(start))
	if err != nil {
		steps.record(StepNarrative, err)
		return nil
	}
	return &res
}

// runDetector runs one detector inside an error boundary. A panic records
// the step and yields nil; the detector's own degraded sub-steps are merged.
func runDetector[T any](steps *stepLog, step string, fn func() T, degraded func(*T) []string) *T {
	start := time.Now()
	out, err := guard(func() (T, error) { return fn(), nil })
	metrics.RecordAnalysis(step, time.Since(start))
	if err != nil {
		steps.record(step, err)
		return nil
	}
	steps.merge(step, degraded(&out))
	return &out
}

func summarizeClassifications(posts []nlp.ClassifiedPost) []PostClassification {
	out := make([]PostClassification, len(posts))
	for i := range posts {
		p := &posts[i]
		out[i] = PostClassification{
			PostID:           p.Post.PostID,
			Platform:         p.Post.Platform,
			Language:         p.Post.Language,
			ToxicityScore:    p.Toxicity.Score,
			ToxicitySeverity: p.Toxicity.Severity,
			ToxicCategories:  p.Toxicity.Categories,
			Stance:           p.Stance.Primary,
			AntiIndiaScore:   p.Stance.Scores.AntiIndia,
		}
	}
	return out
}

func emptyResult(id string, now time.Time) Result {
	comps := make(map[string]float64, len(Components))
	for _, c := range Components {
		comps[c] = 0
	}
	return Result{
		CampaignID:      id,
		Severity:        SeverityLow,
		ComponentScores: comps,
		Alerts:          []Alert{},
		Recommendations: []string{NoDataRecommendation},
		Classifications: []PostClassification{},
		ScoredAt:        now,
	}
}
