// CampaignWatch - Influence Campaign Detection and Threat Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campaignwatch

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/tomtom215/campaignwatch/internal/api"
	"github.com/tomtom215/campaignwatch/internal/auth"
	"github.com/tomtom215/campaignwatch/internal/authz"
	"github.com/tomtom215/campaignwatch/internal/campaign"
	"github.com/tomtom215/campaignwatch/internal/config"
	"github.com/tomtom215/campaignwatch/internal/database"
	"github.com/tomtom215/campaignwatch/internal/detection"
	"github.com/tomtom215/campaignwatch/internal/eventprocessor"
	"github.com/tomtom215/campaignwatch/internal/logging"
	"github.com/tomtom215/campaignwatch/internal/metrics"
	"github.com/tomtom215/campaignwatch/internal/middleware"
	"github.com/tomtom215/campaignwatch/internal/nlp"
	"github.com/tomtom215/campaignwatch/internal/notify"
	"github.com/tomtom215/campaignwatch/internal/store"
	"github.com/tomtom215/campaignwatch/internal/supervisor"
	ws "github.com/tomtom215/campaignwatch/internal/websocket"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

//nolint:gocyclo // sequential setup
func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
		Output:    os.Stderr,
	})
	metrics.AppInfo.WithLabelValues(version, runtime.Version()).Set(1)

	logging.Info().
		Str("version", version).
		Str("auth_mode", cfg.Security.AuthMode).
		Bool("store", cfg.Store.Enabled).
		Bool("database", cfg.Database.Enabled).
		Bool("nats", cfg.NATS.Enabled).
		Msg("Starting campaignwatch")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	scorer, err := newScorer(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create scorer")
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: shutdownTimeout(cfg),
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	sink := campaign.NewFanout()
	deps := api.Deps{
		Scorer:       scorer,
		Burst:        detection.NewBurstDetector(cfg.Detection.Burst),
		Coordination: detection.NewCoordinationDetector(cfg.Detection.Coordination),
		Bots:         detection.NewBotDetector(cfg.Detection.Bot),
		Sink:         sink,
		Latency:      middleware.NewLatencyMonitor(1000, time.Second),
	}

	// Snapshot store
	var snapshots *store.Store
	if cfg.Store.Enabled {
		snapshots, err = store.Open(storeConfig(cfg))
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to open snapshot store")
		}
		defer closeLogged("snapshot store", snapshots.Close)
		sink.Add("snapshots", snapshots)
		deps.Snapshots = snapshots
		tree.AddStorageService(snapshots)
		logging.Info().Str("path", cfg.Store.Path).Bool("in_memory", cfg.Store.InMemory).Msg("Snapshot store opened")
	}

	// Score and alert history
	var history *database.DB
	if cfg.Database.Enabled {
		history, err = database.New(database.Config{
			Path:      cfg.Database.Path,
			MaxMemory: cfg.Database.MaxMemory,
			Threads:   cfg.Database.Threads,
		})
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to open database")
		}
		defer closeLogged("database", history.Close)
		sink.Add("history", history)
		deps.History = history
		deps.Checks = append(deps.Checks, api.HealthCheck{Name: "database", Check: history.Ping})
		logging.Info().Str("path", cfg.Database.Path).Msg("Database initialized")
	}

	// Live alert stream
	var hub *ws.Hub
	if cfg.WebSocket.Enabled {
		hub = ws.NewHub(ws.Config{
			BroadcastBuffer: cfg.WebSocket.BroadcastBuffer,
			ClientBuffer:    cfg.WebSocket.ClientBuffer,
		})
		deps.Hub = hub
		tree.AddMessagingService(supervisor.NewHubService(hub))
	}

	// Event-driven scoring
	if cfg.NATS.Enabled {
		processor, err := eventprocessor.New(ctx, eventConfig(cfg), scorer, sink)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to initialize event processor")
		}
		defer func() {
			closeCtx, closeCancel := context.WithTimeout(context.Background(), shutdownTimeout(cfg))
			defer closeCancel()
			if err := processor.Close(closeCtx); err != nil {
				logging.Error().Err(err).Msg("Error closing event processor")
			}
		}()

		sink.Add("publisher", processor.Publisher())
		tree.AddMessagingService(processor.Router())
		deps.Checks = append(deps.Checks, api.HealthCheck{Name: "events", Check: processorCheck(processor)})

		// Alerts reach websocket clients through the bus so every replica
		// sees every alert.
		if hub != nil && processor.AlertSource() != nil {
			tree.AddMessagingService(ws.NewBridge(hub, processor.AlertSource(), processor.Topics().Alerts))
		}
		logging.Info().Str("requests", processor.Topics().Requests).Msg("Event processor initialized")
	} else if hub != nil {
		sink.Add("websocket", hub)
	}

	if ns := notifiers(cfg); len(ns) > 0 {
		sink.Add("notify", notify.NewSink(campaign.Severity(cfg.Notify.MinSeverity), ns...))
		logging.Info().
			Int("notifiers", len(ns)).
			Str("min_severity", cfg.Notify.MinSeverity).
			Msg("Alert notifications enabled")
	}

	// Authentication and authorization
	var authorizer *authz.Middleware
	if cfg.AuthEnabled() {
		deps.JWT, err = auth.NewJWTManager(cfg.Security.JWTSecret, cfg.Security.TokenTTL)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to initialize JWT manager")
		}
		deps.Credentials = auth.NewCredentials()
		if err := deps.Credentials.Add(cfg.Security.AdminUsername, cfg.Security.AdminPassword, auth.RoleAdmin); err != nil {
			logging.Fatal().Err(err).Msg("Failed to register admin account")
		}
		enforcer, err := authz.NewEnforcer(authzConfig(cfg))
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to initialize RBAC enforcer")
		}
		authorizer = authz.NewMiddleware(enforcer)
		logging.Info().Int("rules", len(enforcer.Policy())).Msg("JWT authentication and RBAC enabled")
	} else {
		logging.Warn().Msg("Authentication is DISABLED (AUTH_MODE=none). Every caller has full access.")
	}
	if cfg.Security.RateLimitDisabled {
		logging.Warn().Msg("Rate limiting is DISABLED (DISABLE_RATE_LIMIT=true)")
	}

	handler := api.NewHandler(deps, handlerConfig(cfg))
	router := api.NewRouter(
		handler,
		api.NewChiMiddleware(chiMiddlewareConfig(cfg)),
		auth.NewMiddleware(deps.JWT, authMode(cfg)),
		authorizer,
	)

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router.Setup(),
		ReadTimeout:       cfg.Server.Timeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
	}
	tree.AddAPIService(supervisor.NewHTTPServerService(server, shutdownTimeout(cfg)))
	logging.Info().Str("addr", server.Addr).Int("sinks", sink.Len()).Msg("HTTP server service added")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	// The channel yields exactly one value when the root supervisor returns.
	errCh := tree.ServeBackground(ctx)
	select {
	case <-ctx.Done():
		logging.Info().Msg("Waiting for services to stop")
		if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
		cancel()
	}

	if unstopped, _ := tree.UnstoppedServiceReport(); len(unstopped) > 0 {
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
		}
	}
	logging.Info().Msg("Stopped")
}

// newScorer builds the campaign scorer with the remote classifier when
// one is configured.
func newScorer(cfg *config.Config) (*campaign.Scorer, error) {
	clusterer := nlp.NewNarrativeClusterer(cfg.Collaborators.Narrative)

	remoteCfg, ok := cfg.RemoteClassifierConfig()
	if !ok {
		return campaign.NewScorer(cfg.ScorerConfig(), nlp.NewClassifier(), clusterer), nil
	}
	remote, err := nlp.NewRemoteClassifier(remoteCfg, nlp.NewClassifier())
	if err != nil {
		return nil, err
	}
	logging.Info().Str("url", remoteCfg.URL).Msg("Remote text classifier enabled")
	return campaign.NewScorer(cfg.ScorerConfig(), remote, clusterer), nil
}

func processorCheck(p *eventprocessor.Processor) func(context.Context) error {
	return func(context.Context) error {
		if !p.Healthy() {
			return errors.New("event router is not running")
		}
		return nil
	}
}

func closeLogged(name string, closeFn func() error) {
	if err := closeFn(); err != nil {
		logging.Error().Err(err).Str("component", name).Msg("Close failed")
	}
}
