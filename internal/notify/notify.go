// CampaignWatch - Influence Campaign Detection and Threat Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campaignwatch

package notify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/tomtom215/campaignwatch/internal/campaign"
	"github.com/tomtom215/campaignwatch/internal/logging"
	"github.com/tomtom215/campaignwatch/internal/metrics"
)

const defaultTimeout = 10 * time.Second

// Notifier delivers one alert of a scored campaign.
type Notifier interface {
	Name() string
	Send(ctx context.Context, res *campaign.Result, alert *campaign.Alert) error
}

// Sink forwards alerts at or above a minimum severity to every notifier.
type Sink struct {
	notifiers []Notifier
	minRank   int
}

// NewSink returns a sink for the given notifiers. An unknown minimum
// severity forwards every alert.
func NewSink(minSeverity campaign.Severity, notifiers ...Notifier) *Sink {
	return &Sink{notifiers: notifiers, minRank: max(minSeverity.Rank(), 0)}
}

// Len returns the number of notifiers.
func (s *Sink) Len() int { return len(s.notifiers) }

// Record sends every qualifying alert of res.
func (s *Sink) Record(ctx context.Context, res campaign.Result) error {
	var errs []error
	for i := range res.Alerts {
		alert := &res.Alerts[i]
		if alert.Severity.Rank() < s.minRank {
			continue
		}
		for _, n := range s.notifiers {
			err := n.Send(ctx, &res, alert)
			metrics.RecordNotification(n.Name(), err)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", n.Name(), err))
				continue
			}
			logging.Ctx(ctx).Debug().
				Str("notifier", n.Name()).
				Str("campaign_id", res.CampaignID).
				Str("alert_type", alert.Type).
				Msg("Alert notification sent")
		}
	}
	return errors.Join(errs...)
}

// newLimiter allows one message per interval; a non-positive interval
// disables limiting.
func newLimiter(interval time.Duration) *rate.Limiter {
	if interval <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(interval), 1)
}

func newClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

// postJSON waits for the limiter, then posts payload to url.
func postJSON(ctx context.Context, client *http.Client, limiter *rate.Limiter, url string, headers map[string]string, payload any) error {
	if err := limiter.Wait(ctx); err != nil {
		return err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("endpoint returned status %d", resp.StatusCode)
	}
	return nil
}
