// CampaignWatch - Influence Campaign Detection and Threat Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campaignwatch

package eventprocessor

import (
	"time"

	"github.com/tomtom215/campaignwatch/internal/breaker"
)

// Topics names the subjects the processor consumes and produces.
type Topics struct {
	Requests string
	Scored   string
	Alerts   string
	Poison   string
}

// DefaultTopics returns the production subject names.
func DefaultTopics() Topics {
	return Topics{
		Requests: "campaign.requests",
		Scored:   "campaign.scored",
		Alerts:   "campaign.alerts",
		Poison:   "campaign.poison",
	}
}

// Subjects returns the stream subjects covering every topic.
func (t Topics) Subjects() []string {
	out := make([]string, 0, 4)
	for _, s := range []string{t.Requests, t.Scored, t.Alerts, t.Poison} {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// ServerConfig configures the embedded NATS server.
type ServerConfig struct {
	Host      string
	Port      int // -1 picks a random port
	StoreDir  string
	MaxMemory int64
	MaxStore  int64
}

// ClientConfig configures NATS connections shared by the publisher and
// subscriber.
type ClientConfig struct {
	URL           string
	MaxReconnects int
	ReconnectWait time.Duration
}

// SubscriberConfig configures the durable request consumer.
type SubscriberConfig struct {
	ClientConfig
	StreamName       string
	DurableName      string
	QueueGroup       string
	SubscribersCount int
	AckWaitTimeout   time.Duration
	CloseTimeout     time.Duration
	MaxDeliver       int
}

// RouterConfig holds configuration for the Watermill Router.
type RouterConfig struct {
	CloseTimeout time.Duration

	RetryMaxRetries      int
	RetryInitialInterval time.Duration
	RetryMaxInterval     time.Duration
	RetryMultiplier      float64

	PoisonQueueTopic string
}

// DefaultRouterConfig returns production defaults for the Router.
func DefaultRouterConfig() RouterConfig {
	return RouterConfig{
		CloseTimeout:         30 * time.Second,
		RetryMaxRetries:      3,
		RetryInitialInterval: 100 * time.Millisecond,
		RetryMaxInterval:     10 * time.Second,
		RetryMultiplier:      2.0,
		PoisonQueueTopic:     DefaultTopics().Poison,
	}
}

// Config is the full processor configuration.
type Config struct {
	URL            string
	EmbeddedServer bool
	Server         ServerConfig
	StreamName     string
	Topics         Topics
	Subscriber     SubscriberConfig
	Router         RouterConfig
	PublishBreaker breaker.Config
}

// DefaultConfig returns production defaults for url.
func DefaultConfig(url string) Config {
	client := ClientConfig{URL: url, MaxReconnects: -1, ReconnectWait: 2 * time.Second}
	return Config{
		URL:            url,
		EmbeddedServer: true,
		Server: ServerConfig{
			Host:      "127.0.0.1",
			Port:      4222,
			StoreDir:  "/data/nats/jetstream",
			MaxMemory: 256 << 20,
			MaxStore:  1 << 30,
		},
		StreamName: "CAMPAIGNS",
		Topics:     DefaultTopics(),
		Subscriber: SubscriberConfig{
			ClientConfig:     client,
			StreamName:       "CAMPAIGNS",
			DurableName:      "campaign-scorer",
			QueueGroup:       "scorers",
			SubscribersCount: 2,
			AckWaitTimeout:   30 * time.Second,
			CloseTimeout:     30 * time.Second,
			MaxDeliver:       5,
		},
		Router:         DefaultRouterConfig(),
		PublishBreaker: breaker.DefaultConfig("nats-publish"),
	}
}
