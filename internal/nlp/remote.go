// CampaignWatch - Influence Campaign Detection and Threat Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campaignwatch

package nlp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/campaignwatch/internal/breaker"
	"github.com/tomtom215/campaignwatch/internal/cache"
	"github.com/tomtom215/campaignwatch/internal/logging"
	"github.com/tomtom215/campaignwatch/internal/metrics"
)

// Remote endpoints, relative to the base URL.
const (
	EndpointToxicity = "toxicity"
	EndpointStance   = "stance"
)

const maxResponseBytes = 1 << 20

// ErrInvalidResponse is returned when the remote service answers with
// scores outside [0, 1].
var ErrInvalidResponse = errors.New("invalid classifier response")

// RemoteConfig configures the remote classifier client.
type RemoteConfig struct {
	URL           string         `koanf:"url" json:"url"`
	Timeout       time.Duration  `koanf:"timeout" json:"timeout"`
	RatePerSecond float64        `koanf:"rate_per_second" json:"rate_per_second"`
	Burst         int            `koanf:"burst" json:"burst"`
	Breaker       breaker.Config `koanf:"breaker" json:"breaker"`

	// CacheSize bounds the answer cache per endpoint; negative disables it.
	CacheSize int           `koanf:"cache_size" json:"cache_size"`
	CacheTTL  time.Duration `koanf:"cache_ttl" json:"cache_ttl"`
}

// DefaultRemoteConfig returns client defaults for url.
func DefaultRemoteConfig(url string) RemoteConfig {
	return RemoteConfig{
		URL:           url,
		Timeout:       5 * time.Second,
		RatePerSecond: 20,
		Burst:         10,
		Breaker:       breaker.DefaultConfig("nlp-remote"),
		CacheSize:     10000,
		CacheTTL:      time.Hour,
	}
}

type remoteRequest struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

// RemoteClassifier calls an HTTP inference service and falls back to the
// local classifier when the call fails or the breaker is open.
type RemoteClassifier struct {
	baseURL  string
	client   *http.Client
	limiter  *rate.Limiter
	cb       *gobreaker.CircuitBreaker[[]byte]
	fallback *Classifier

	// nil when caching is disabled
	toxicityCache *cache.LRU[ToxicityResult]
	stanceCache   *cache.LRU[StanceResult]
}

// NewRemoteClassifier validates cfg and creates the client. A nil fallback
// uses NewClassifier.
func NewRemoteClassifier(cfg RemoteConfig, fallback *Classifier) (*RemoteClassifier, error) {
	u, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse remote classifier url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("remote classifier url must be http or https, got %q", cfg.URL)
	}
	def := DefaultRemoteConfig(cfg.URL)
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.RatePerSecond <= 0 {
		cfg.RatePerSecond = def.RatePerSecond
	}
	if cfg.Burst <= 0 {
		cfg.Burst = def.Burst
	}
	if cfg.Breaker.Name == "" {
		cfg.Breaker = def.Breaker
	}
	if cfg.CacheSize == 0 {
		cfg.CacheSize = def.CacheSize
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = def.CacheTTL
	}
	if fallback == nil {
		fallback = NewClassifier()
	}
	r := &RemoteClassifier{
		baseURL:  strings.TrimRight(cfg.URL, "/"),
		client:   &http.Client{Timeout: cfg.Timeout},
		limiter:  rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.Burst),
		cb:       breaker.New[[]byte](cfg.Breaker),
		fallback: fallback,
	}
	if cfg.CacheSize > 0 {
		r.toxicityCache = cache.NewLRU[ToxicityResult](cfg.CacheSize, cfg.CacheTTL)
		r.stanceCache = cache.NewLRU[StanceResult](cfg.CacheSize, cfg.CacheTTL)
	}
	return r, nil
}

// cacheKey identifies one classification request.
func cacheKey(text, language string) string {
	return fmt.Sprintf("%s:%016x", language, xxhash.Sum64String(text))
}

func lookup[V any](c *cache.LRU[V], endpoint, key string) (V, bool) {
	if c == nil {
		var zero V
		return zero, false
	}
	v, ok := c.Get(key)
	metrics.RecordCollaboratorCache(endpoint, ok)
	return v, ok
}

// Toxicity classifies text remotely.
func (r *RemoteClassifier) Toxicity(ctx context.Context, text, language string) (ToxicityResult, error) {
	key := cacheKey(text, language)
	if hit, ok := lookup(r.toxicityCache, EndpointToxicity, key); ok {
		return hit, nil
	}

	var out ToxicityResult
	err := r.call(ctx, EndpointToxicity, remoteRequest{Text: text, Language: language}, &out)
	if err == nil && (out.Score < 0 || out.Score > 1) {
		err = fmt.Errorf("%w: toxicity score %v", ErrInvalidResponse, out.Score)
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return NeutralToxicity(), ctxErr
		}
		r.logFallback(ctx, EndpointToxicity, err)
		return r.fallback.Toxicity(ctx, text, language)
	}
	if out.Severity == "" {
		out.Severity = ToxicitySeverity(out.Score)
	}
	if out.Model == "" {
		out.Model = "remote"
	}
	if out.Categories == nil {
		out.Categories = []string{}
	}
	if r.toxicityCache != nil {
		r.toxicityCache.Add(key, out)
	}
	return out, nil
}

// Stance classifies text remotely.
func (r *RemoteClassifier) Stance(ctx context.Context, text, language string) (StanceResult, error) {
	key := cacheKey(text, language)
	if hit, ok := lookup(r.stanceCache, EndpointStance, key); ok {
		return hit, nil
	}

	var out StanceResult
	err := r.call(ctx, EndpointStance, remoteRequest{Text: text, Language: language}, &out)
	if err == nil && !validStance(out.Scores) {
		err = fmt.Errorf("%w: stance scores %+v", ErrInvalidResponse, out.Scores)
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return notRelevantStance(1), ctxErr
		}
		r.logFallback(ctx, EndpointStance, err)
		return r.fallback.Stance(ctx, text, language)
	}
	if out.Primary == "" {
		out.Primary = StanceNotRelevant
	}
	if r.stanceCache != nil {
		r.stanceCache.Add(key, out)
	}
	return out, nil
}

// Language is always detected locally.
func (r *RemoteClassifier) Language(text string) LanguageResult {
	return r.fallback.Language(text)
}

func (r *RemoteClassifier) call(ctx context.Context, endpoint string, req, out any) error {
	if err := r.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	start := time.Now()
	body, err := breaker.Execute(r.cb, func() ([]byte, error) {
		return r.post(ctx, endpoint, payload)
	})
	metrics.CollaboratorDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s response: %w", endpoint, err)
	}
	return nil
}

func (r *RemoteClassifier) post(ctx context.Context, endpoint string, payload []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/"+endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if id := logging.CorrelationIDFromContext(ctx); id != "" {
		req.Header.Set("X-Correlation-ID", id)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request: %w", endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", endpoint, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s returned status %d", endpoint, resp.StatusCode)
	}
	return body, nil
}

func (r *RemoteClassifier) logFallback(ctx context.Context, endpoint string, err error) {
	metrics.RecordCollaboratorFailure("remote_" + endpoint)
	logging.Ctx(ctx).Warn().
		Err(err).
		Str("component", "nlp").
		Str("endpoint", endpoint).
		Msg("Remote classifier failed, using local rules")
}

func validStance(s StanceScores) bool {
	for _, v := range []float64{s.AntiIndia, s.ProIndia, s.Neutral, s.NotRelevant} {
		if v < 0 || v > 1 {
			return false
		}
	}
	return true
}
