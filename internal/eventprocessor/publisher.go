// CampaignWatch - Influence Campaign Detection and Threat Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campaignwatch

package eventprocessor

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	natsgo "github.com/nats-io/nats.go"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/campaignwatch/internal/breaker"
	"github.com/tomtom215/campaignwatch/internal/campaign"
	"github.com/tomtom215/campaignwatch/internal/metrics"
)

// ErrPublisherClosed is returned after Close.
var ErrPublisherClosed = errors.New("publisher is closed")

// NewNATSPublisher creates a JetStream publisher. The stream must already
// exist; see EnsureStream.
func NewNATSPublisher(cfg ClientConfig, logger watermill.LoggerAdapter) (message.Publisher, error) {
	if logger == nil {
		logger = watermill.NopLogger{}
	}

	wmConfig := wmNats.PublisherConfig{
		URL:         cfg.URL,
		NatsOptions: clientOptions(cfg, logger),
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			Disabled:      false,
			AutoProvision: false,
			TrackMsgId:    true,
		},
	}

	pub, err := wmNats.NewPublisher(wmConfig, logger)
	if err != nil {
		return nil, fmt.Errorf("create watermill publisher: %w", err)
	}
	return pub, nil
}

func clientOptions(cfg ClientConfig, logger watermill.LoggerAdapter) []natsgo.Option {
	return []natsgo.Option{
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(cfg.MaxReconnects),
		natsgo.ReconnectWait(cfg.ReconnectWait),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			if err != nil {
				logger.Error("NATS disconnected", err, nil)
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logger.Info("NATS reconnected", watermill.LogFields{"url": nc.ConnectedUrl()})
		}),
	}
}

// ResultPublisher publishes scored results and their alerts. It
// implements campaign.Sink.
type ResultPublisher struct {
	publisher message.Publisher
	topics    Topics
	cb        *gobreaker.CircuitBreaker[struct{}]

	mu     sync.RWMutex
	closed bool
}

// NewResultPublisher wraps pub with the publish circuit breaker.
func NewResultPublisher(pub message.Publisher, topics Topics, cbCfg breaker.Config) *ResultPublisher {
	if cbCfg.Name == "" {
		cbCfg = breaker.DefaultConfig("nats-publish")
	}
	return &ResultPublisher{
		publisher: pub,
		topics:    topics,
		cb:        breaker.New[struct{}](cbCfg),
	}
}

// Record publishes res to the scored topic, then each alert to the alerts
// topic.
func (p *ResultPublisher) Record(ctx context.Context, res campaign.Result) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPublisherClosed
	}

	payload, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	msg := newMessage(ctx, payload)
	msg.Metadata.Set(MetadataCampaignID, res.CampaignID)
	msg.Metadata.Set(MetadataSeverity, string(res.Severity))
	if err := p.publish(p.topics.Scored, msg); err != nil {
		return err
	}

	for i := range res.Alerts {
		a := &res.Alerts[i]
		payload, err := json.Marshal(a)
		if err != nil {
			return fmt.Errorf("marshal alert %s: %w", a.ID, err)
		}
		msg := newMessage(ctx, payload)
		msg.Metadata.Set(MetadataCampaignID, res.CampaignID)
		msg.Metadata.Set(MetadataSeverity, string(a.Severity))
		msg.Metadata.Set(MetadataAlertType, a.Type)
		if err := p.publish(p.topics.Alerts, msg); err != nil {
			return err
		}
	}
	return nil
}

func newMessage(ctx context.Context, payload []byte) *message.Message {
	msg := message.NewMessage(uuid.NewString(), payload)
	msg.Metadata.Set(natsgo.MsgIdHdr, msg.UUID)
	msg.SetContext(ctx)
	return msg
}

func (p *ResultPublisher) publish(topic string, msg *message.Message) error {
	_, err := breaker.Execute(p.cb, func() (struct{}, error) {
		return struct{}{}, p.publisher.Publish(topic, msg)
	})
	if err != nil {
		return fmt.Errorf("publish to %s: %w", topic, err)
	}
	metrics.RecordEventPublished(topic)
	return nil
}

// Close closes the underlying publisher.
func (p *ResultPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	return p.publisher.Close()
}
