// CampaignWatch - Influence Campaign Detection and Threat Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campaignwatch

package eventprocessor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/tomtom215/campaignwatch/internal/campaign"
)

// stubScorer scores a campaign by its post count and raises one alert.
type stubScorer struct {
	mu    sync.Mutex
	calls []string
}

func (s *stubScorer) ScoreCampaign(_ context.Context, c campaign.Campaign) campaign.Result {
	s.mu.Lock()
	s.calls = append(s.calls, c.ID)
	s.mu.Unlock()
	return campaign.Result{
		CampaignID: c.ID,
		Score:      float64(len(c.Posts)),
		Severity:   campaign.SeverityLow,
		Alerts: []campaign.Alert{{
			ID:         c.ID + "-alert",
			CampaignID: c.ID,
			Type:       campaign.AlertBurstActivity,
			Severity:   campaign.SeverityMedium,
		}},
	}
}

func (s *stubScorer) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

// recordingSink keeps every result and optionally fails.
type recordingSink struct {
	mu      sync.Mutex
	results []campaign.Result
	err     error
	got     chan struct{}
}

func newRecordingSink() *recordingSink {
	return &recordingSink{got: make(chan struct{}, 16)}
}

func (s *recordingSink) Record(_ context.Context, res campaign.Result) error {
	s.mu.Lock()
	s.results = append(s.results, res)
	s.mu.Unlock()
	s.got <- struct{}{}
	return s.err
}

func (s *recordingSink) Results() []campaign.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]campaign.Result(nil), s.results...)
}

func (s *recordingSink) wait(t *testing.T) {
	t.Helper()
	select {
	case <-s.got:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a recorded result")
	}
}

var errPublish = errors.New("publish failed")

// failingPublisher rejects every publish.
type failingPublisher struct{}

func (failingPublisher) Publish(string, ...*message.Message) error { return errPublish }
func (failingPublisher) Close() error                              { return nil }

func newPubSub(t *testing.T) *gochannel.GoChannel {
	t.Helper()
	ps := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 64}, watermill.NopLogger{})
	t.Cleanup(func() { _ = ps.Close() })
	return ps
}

func testConfig(name string) Config {
	cfg := DefaultConfig("nats://unused")
	cfg.EmbeddedServer = false
	cfg.Router.RetryMaxRetries = 0
	cfg.PublishBreaker.Name = name
	cfg.PublishBreaker.FailureThreshold = 2
	return cfg
}
