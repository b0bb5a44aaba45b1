// CampaignWatch - Influence Campaign Detection and Threat Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campaignwatch

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/tomtom215/campaignwatch/internal/breaker"
	"github.com/tomtom215/campaignwatch/internal/campaign"
	"github.com/tomtom215/campaignwatch/internal/detection"
	"github.com/tomtom215/campaignwatch/internal/nlp"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/campaignwatch/config.yaml",
	"/etc/campaignwatch/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// Auth modes.
const (
	AuthModeNone = "none"
	AuthModeJWT  = "jwt"
)

// defaultConfig returns a Config with every default applied. Defaults load
// first and are overridden by the config file and then the environment.
func defaultConfig() *Config {
	scoring := campaign.DefaultConfig()
	return &Config{
		Server: ServerConfig{
			Port:         8090,
			Host:         "0.0.0.0",
			Timeout:      30 * time.Second,
			Environment:  "development",
			MaxBodyBytes: 10 << 20, // 10 MB
			MaxBatchSize: 100,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Security: SecurityConfig{
			AuthMode:        AuthModeNone,
			TokenTTL:        24 * time.Hour,
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
			CORSOrigins:     []string{"*"},
			Casbin: CasbinConfig{
				DefaultRole: "viewer",
			},
		},
		Detection: DetectionConfig{
			Burst:        detection.DefaultBurstConfig(),
			Coordination: detection.DefaultCoordinationConfig(),
			Bot:          detection.DefaultBotConfig(),
		},
		Scoring: ScoringConfig{
			Weights:             scoring.Weights,
			Alerts:              scoring.Alerts,
			HighToxicity:        scoring.HighToxicity,
			AntiStance:          scoring.AntiStance,
			HighBot:             scoring.HighBot,
			NarrativeToxicity:   scoring.NarrativeToxicity,
			NarrativeStance:     scoring.NarrativeStance,
			ReviewScore:         scoring.ReviewScore,
			BatchConcurrency:    scoring.BatchConcurrency,
			ClassifyConcurrency: scoring.ClassifyConcurrency,
			ClassifierBreaker:   scoring.ClassifierBreaker,
			NarrativeBreaker:    scoring.NarrativeBreaker,
		},
		Collaborators: CollaboratorsConfig{
			Timeout:       5 * time.Second,
			RatePerSecond: 20,
			Burst:         10,
			Breaker:       breaker.DefaultConfig("nlp-remote"),
			CacheSize:     10000,
			CacheTTL:      time.Hour,
			Narrative:     nlp.DefaultNarrativeConfig(),
		},
		Store: StoreConfig{
			Enabled: true,
			Path:    "/data/snapshots",
			TTL:     7 * 24 * time.Hour,
		},
		Database: DatabaseConfig{
			Enabled:   true,
			Path:      "/data/campaignwatch.duckdb",
			MaxMemory: "1GB",
		},
		NATS: NATSConfig{
			Enabled:                    false,
			URL:                        "nats://127.0.0.1:4222",
			EmbeddedServer:             true,
			StoreDir:                   "/data/nats/jetstream",
			MaxMemory:                  256 << 20, // 256MB
			MaxStore:                   1 << 30,   // 1GB
			StreamName:                 "CAMPAIGNS",
			RequestTopic:               "campaign.requests",
			ScoredTopic:                "campaign.scored",
			AlertsTopic:                "campaign.alerts",
			DurableName:                "campaign-scorer",
			QueueGroup:                 "scorers",
			SubscribersCount:           2,
			RouterRetryCount:           3,
			RouterRetryInitialInterval: 100 * time.Millisecond,
			RouterPoisonQueueTopic:     "campaign.poison",
			RouterCloseTimeout:         30 * time.Second,
			PublishBreaker:             breaker.DefaultConfig("nats-publish"),
		},
		WebSocket: WebSocketConfig{
			Enabled:         true,
			BroadcastBuffer: 256,
			ClientBuffer:    64,
		},
		Notify: NotifyConfig{
			MinSeverity: "high",
			RateLimit:   time.Second,
			Timeout:     10 * time.Second,
		},
	}
}

// Load loads configuration using Koanf v2 with layered sources:
//  1. Defaults: built-in defaults
//  2. Config File: optional YAML config file
//  3. Environment Variables: override any mapped setting
//
// The result is validated before it is returned.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// HTTP_PORT -> server.port, BURST_WINDOW_HOURS -> detection.burst.window_hours
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// findConfigFile returns the first existing config file, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths are parsed as comma-separated lists when set from env.
var sliceConfigPaths = []string{
	"security.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps environment variable names (lower-cased) to koanf paths.
// Unmapped variables are ignored.
var envMappings = map[string]string{
	// Server
	"http_port":      "server.port",
	"http_host":      "server.host",
	"http_timeout":   "server.timeout",
	"environment":    "server.environment",
	"max_body_bytes": "server.max_body_bytes",
	"max_batch_size": "server.max_batch_size",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	// Security
	"auth_mode":           "security.auth_mode",
	"jwt_secret":          "security.jwt_secret",
	"token_ttl":           "security.token_ttl",
	"admin_username":      "security.admin_username",
	"admin_password":      "security.admin_password",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",
	"cors_origins":        "security.cors_origins",
	"casbin_model_path":   "security.casbin.model_path",
	"casbin_policy_path":  "security.casbin.policy_path",
	"casbin_default_role": "security.casbin.default_role",

	// Detection
	"burst_states":                    "detection.burst.states",
	"burst_window_hours":              "detection.burst.window_hours",
	"burst_zscore_threshold":          "detection.burst.zscore_threshold",
	"burst_min_posts":                 "detection.burst.min_posts",
	"burst_max_span_hours":            "detection.burst.max_span_hours",
	"coordination_text_threshold":     "detection.coordination.text_similarity_threshold",
	"coordination_timing_minutes":     "detection.coordination.timing_threshold_minutes",
	"coordination_behavior_threshold": "detection.coordination.behavioral_similarity_threshold",
	"coordination_min_accounts":       "detection.coordination.min_accounts",
	"coordination_min_score":          "detection.coordination.min_coordination_score",
	"bot_threshold":                   "detection.bot.bot_threshold",
	"bot_suspicious_threshold":        "detection.bot.suspicious_threshold",
	"bot_min_network_accounts":        "detection.bot.min_network_accounts",

	// Scoring
	"scoring_review_score":         "scoring.review_score",
	"scoring_batch_concurrency":    "scoring.batch_concurrency",
	"scoring_classify_concurrency": "scoring.classify_concurrency",

	// Collaborators
	"nlp_remote_url":      "collaborators.remote_url",
	"nlp_timeout":         "collaborators.timeout",
	"nlp_rate_per_second": "collaborators.rate_per_second",
	"nlp_burst":           "collaborators.burst",
	"nlp_cache_size":      "collaborators.cache_size",
	"nlp_cache_ttl":       "collaborators.cache_ttl",

	// Store
	"store_enabled":   "store.enabled",
	"badger_path":     "store.path",
	"store_in_memory": "store.in_memory",
	"store_ttl":       "store.ttl",

	// Database
	"database_enabled":  "database.enabled",
	"duckdb_path":       "database.path",
	"duckdb_max_memory": "database.max_memory",
	"duckdb_threads":    "database.threads",

	// NATS
	"nats_enabled":               "nats.enabled",
	"nats_url":                   "nats.url",
	"nats_embedded":              "nats.embedded_server",
	"nats_store_dir":             "nats.store_dir",
	"nats_max_memory":            "nats.max_memory",
	"nats_max_store":             "nats.max_store",
	"nats_stream":                "nats.stream_name",
	"nats_request_topic":         "nats.request_topic",
	"nats_scored_topic":          "nats.scored_topic",
	"nats_alerts_topic":          "nats.alerts_topic",
	"nats_durable_name":          "nats.durable_name",
	"nats_queue_group":           "nats.queue_group",
	"nats_subscribers":           "nats.subscribers_count",
	"nats_router_retry_count":    "nats.router_retry_count",
	"nats_router_retry_interval": "nats.router_retry_initial_interval",
	"nats_router_poison_topic":   "nats.router_poison_queue_topic",
	"nats_router_close_timeout":  "nats.router_close_timeout",

	// WebSocket
	"websocket_enabled": "websocket.enabled",

	// Alert notifications
	"notify_webhook_url":  "notify.webhook_url",
	"notify_discord_url":  "notify.discord_url",
	"notify_min_severity": "notify.min_severity",
	"notify_rate_limit":   "notify.rate_limit",
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
// Examples:
//   - HTTP_PORT -> server.port
//   - DUCKDB_PATH -> database.path
//   - NLP_REMOTE_URL -> collaborators.remote_url
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
