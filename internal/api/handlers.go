// CampaignWatch - Influence Campaign Detection and Threat Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campaignwatch

package api

import (
	"context"
	"net/http"
	"time"

	gws "github.com/gorilla/websocket"

	"github.com/tomtom215/campaignwatch/internal/auth"
	"github.com/tomtom215/campaignwatch/internal/campaign"
	"github.com/tomtom215/campaignwatch/internal/database"
	"github.com/tomtom215/campaignwatch/internal/detection"
	"github.com/tomtom215/campaignwatch/internal/logging"
	"github.com/tomtom215/campaignwatch/internal/middleware"
	"github.com/tomtom215/campaignwatch/internal/websocket"
)

// CampaignScorer scores single campaigns and batches.
type CampaignScorer interface {
	ScoreCampaign(ctx context.Context, c campaign.Campaign) campaign.Result
	ScoreBatch(ctx context.Context, campaigns []campaign.Campaign) []campaign.Result
}

// SnapshotReader returns the latest full result of a campaign.
type SnapshotReader interface {
	Get(ctx context.Context, id string) (*campaign.Result, error)
}

// History is the score and alert history.
type History interface {
	ListScores(ctx context.Context, filter database.ScoreFilter) ([]database.ScoreRecord, error)
	LatestScore(ctx context.Context, campaignID string) (*database.ScoreRecord, error)
	Summary(ctx context.Context) (*database.Summary, error)
	GetAlert(ctx context.Context, id string) (*database.AlertRecord, error)
	ListAlerts(ctx context.Context, filter database.AlertFilter) ([]database.AlertRecord, error)
	CountAlerts(ctx context.Context, filter database.AlertFilter) (int, error)
	AcknowledgeAlert(ctx context.Context, id, acknowledgedBy string) error
}

// HealthCheck reports on one dependency for GET /health.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// Deps are the collaborators behind the handlers. Scorer and the three
// detectors are required; everything else may be nil and the endpoints
// depending on it answer 503.
type Deps struct {
	Scorer       CampaignScorer
	Burst        *detection.BurstDetector
	Coordination *detection.CoordinationDetector
	Bots         *detection.BotDetector

	Sink      campaign.Sink
	Snapshots SnapshotReader
	History   History
	Hub       *websocket.Hub

	JWT         *auth.JWTManager
	Credentials *auth.Credentials

	Checks  []HealthCheck
	Latency *middleware.LatencyMonitor
}

// HandlerConfig holds request limits and identity.
type HandlerConfig struct {
	Version      string
	AuthMode     string
	MaxBodyBytes int64
	MaxBatchSize int
	CORSOrigins  []string
}

// DefaultHandlerConfig returns the limits used when none are configured.
func DefaultHandlerConfig() HandlerConfig {
	return HandlerConfig{
		Version:      "dev",
		AuthMode:     auth.ModeNone,
		MaxBodyBytes: 10 << 20,
		MaxBatchSize: 100,
		CORSOrigins:  []string{"*"},
	}
}

// Handler serves the campaign API.
type Handler struct {
	deps      Deps
	config    HandlerConfig
	startTime time.Time
}

// NewHandler creates the API handler.
func NewHandler(deps Deps, cfg HandlerConfig) *Handler {
	def := DefaultHandlerConfig()
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = def.MaxBodyBytes
	}
	if cfg.MaxBatchSize <= 0 {
		cfg.MaxBatchSize = def.MaxBatchSize
	}
	if cfg.Version == "" {
		cfg.Version = def.Version
	}
	if cfg.AuthMode == "" {
		cfg.AuthMode = def.AuthMode
	}
	return &Handler{deps: deps, config: cfg, startTime: time.Now()}
}

// record hands a result to the configured sink. Delivery failures are
// logged by the sink and never fail the request.
func (h *Handler) record(ctx context.Context, res campaign.Result) {
	if h.deps.Sink == nil {
		return
	}
	if err := h.deps.Sink.Record(ctx, res); err != nil {
		logging.Ctx(ctx).Debug().Err(err).Str("campaign_id", res.CampaignID).Msg("Result persisted with errors")
	}
}

func (h *Handler) getUpgrader() gws.Upgrader {
	return gws.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		CheckOrigin:      h.checkWebSocketOrigin,
		HandshakeTimeout: 10 * time.Second,
	}
}

// checkWebSocketOrigin accepts configured origins. Requests without an
// Origin header come from non-browser clients and are allowed only when
// the wildcard origin is configured.
func (h *Handler) checkWebSocketOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	for _, allowed := range h.config.CORSOrigins {
		if allowed == "*" || (origin != "" && allowed == origin) {
			return true
		}
	}
	logging.Ctx(r.Context()).Warn().Str("origin", origin).Msg("WebSocket connection rejected: origin not allowed")
	return false
}
