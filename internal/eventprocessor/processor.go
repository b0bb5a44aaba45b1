// CampaignWatch - Influence Campaign Detection and Threat Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campaignwatch

package eventprocessor

import (
	"context"
	"errors"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/tomtom215/campaignwatch/internal/campaign"
	"github.com/tomtom215/campaignwatch/internal/logging"
)

// Processor wires event-driven scoring: requests consumed by the router,
// results published by the ResultPublisher and alerts re-exposed for
// websocket fan-out.
type Processor struct {
	server      *EmbeddedServer
	publisher   *ResultPublisher
	alertSource *PayloadSource
	router      *Router
	handler     *ScoringHandler
	topics      Topics
	closers     []func() error
}

// Parts are the transport pieces a Processor runs on.
type Parts struct {
	Publisher       message.Publisher
	RequestSource   message.Subscriber
	AlertSubscriber message.Subscriber
}

// New starts the embedded server when configured, provisions the stream
// and connects publisher and subscribers to NATS.
func New(ctx context.Context, cfg Config, scorer CampaignScorer, sink campaign.Sink) (*Processor, error) {
	logger := logging.NewWatermillAdapter()

	var srv *EmbeddedServer
	url := cfg.URL
	if cfg.EmbeddedServer {
		var err error
		srv, err = NewEmbeddedServer(cfg.Server)
		if err != nil {
			return nil, err
		}
		url = srv.ClientURL()
		logging.Info().Str("url", url).Msg("Embedded NATS server started")
	}

	p, err := newNATSProcessor(ctx, cfg, url, logger, scorer, sink)
	if err != nil {
		if srv != nil {
			_ = srv.Shutdown(ctx)
		}
		return nil, err
	}
	p.server = srv
	return p, nil
}

func newNATSProcessor(ctx context.Context, cfg Config, url string, logger watermill.LoggerAdapter, scorer CampaignScorer, sink campaign.Sink) (*Processor, error) {
	if err := EnsureStreamAt(ctx, url, StreamConfig(cfg.StreamName, cfg.Topics)); err != nil {
		return nil, err
	}

	client := cfg.Subscriber.ClientConfig
	client.URL = url

	pub, err := NewNATSPublisher(client, logger)
	if err != nil {
		return nil, err
	}

	reqCfg := cfg.Subscriber
	reqCfg.ClientConfig = client
	reqCfg.StreamName = cfg.StreamName
	requests, err := NewNATSSubscriber(reqCfg, logger)
	if err != nil {
		_ = pub.Close()
		return nil, err
	}

	// Every instance sees every alert: no durable, no queue group.
	alertCfg := reqCfg
	alertCfg.DurableName = ""
	alertCfg.QueueGroup = ""
	alertCfg.SubscribersCount = 1
	alerts, err := NewNATSSubscriber(alertCfg, logger)
	if err != nil {
		_ = pub.Close()
		_ = requests.Close()
		return nil, err
	}

	return NewWithParts(cfg, Parts{Publisher: pub, RequestSource: requests, AlertSubscriber: alerts}, logger, scorer, sink)
}

// NewWithParts builds a Processor on existing transport, such as a
// Watermill gochannel Pub/Sub.
func NewWithParts(cfg Config, parts Parts, logger watermill.LoggerAdapter, scorer CampaignScorer, sink campaign.Sink) (*Processor, error) {
	if parts.Publisher == nil || parts.RequestSource == nil {
		return nil, errors.New("publisher and request subscriber are required")
	}
	if logger == nil {
		logger = logging.NewWatermillAdapter()
	}

	handler, err := NewScoringHandler(scorer, sink)
	if err != nil {
		return nil, err
	}

	router, err := NewRouter(cfg.Router, parts.Publisher, logger)
	if err != nil {
		return nil, err
	}
	router.AddConsumerHandler("campaign-scorer", cfg.Topics.Requests, parts.RequestSource, handler.Handle)

	p := &Processor{
		publisher: NewResultPublisher(parts.Publisher, cfg.Topics, cfg.PublishBreaker),
		router:    router,
		handler:   handler,
		topics:    cfg.Topics,
	}
	p.closers = append(p.closers, parts.RequestSource.Close)
	if parts.AlertSubscriber != nil {
		p.alertSource = NewPayloadSource(parts.AlertSubscriber)
		p.closers = append(p.closers, p.alertSource.Close)
	}
	return p, nil
}

// Publisher returns the result sink that publishes to the bus.
func (p *Processor) Publisher() *ResultPublisher { return p.publisher }

// Router returns the request-consuming router service.
func (p *Processor) Router() *Router { return p.router }

// Handler returns the scoring handler.
func (p *Processor) Handler() *ScoringHandler { return p.handler }

// AlertSource returns the alert payload source, or nil when none was
// configured.
func (p *Processor) AlertSource() *PayloadSource { return p.alertSource }

// Topics returns the configured topics.
func (p *Processor) Topics() Topics { return p.topics }

// Healthy reports whether the router runs and the embedded server, if
// any, is up.
func (p *Processor) Healthy() bool {
	if p.server != nil && !p.server.IsRunning() {
		return false
	}
	return p.router.IsRunning()
}

// Close stops the router, closes subscribers and the publisher, then
// shuts down the embedded server.
func (p *Processor) Close(ctx context.Context) error {
	errs := []error{p.router.Close()}
	for _, c := range p.closers {
		errs = append(errs, c())
	}
	errs = append(errs, p.publisher.Close())
	if p.server != nil {
		errs = append(errs, p.server.Shutdown(ctx))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("close event processor: %w", err)
	}
	return nil
}
