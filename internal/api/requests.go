// CampaignWatch - Influence Campaign Detection and Threat Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campaignwatch

package api

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/tomtom215/campaignwatch/internal/campaign"
	"github.com/tomtom215/campaignwatch/internal/models"
)

// ScoreRequest is the body of POST /campaigns/score. Posts are capped
// because pairwise text similarity is quadratic in their number.
type ScoreRequest struct {
	ID      string          `json:"id" validate:"omitempty,campaign_id"`
	Posts   []models.Post   `json:"posts" validate:"max=10000,dive"`
	Authors []models.Author `json:"authors,omitempty" validate:"omitempty,max=10000,dive"`
}

// Campaign converts the request for the scorer.
func (r *ScoreRequest) Campaign() campaign.Campaign {
	return campaign.Campaign{ID: r.ID, Posts: r.Posts, Authors: r.Authors}
}

// BatchRequest is the body of POST /campaigns/batch.
type BatchRequest struct {
	Campaigns []ScoreRequest `json:"campaigns" validate:"required,min=1,dive"`
}

// PostsRequest is the body of the burst and coordination analyses.
type PostsRequest struct {
	Posts   []models.Post   `json:"posts" validate:"max=10000,dive"`
	Authors []models.Author `json:"authors,omitempty" validate:"omitempty,max=10000,dive"`
}

// BotRequest is the body of POST /analysis/bots.
type BotRequest struct {
	Author models.Author `json:"author"`
	Posts  []models.Post `json:"posts" validate:"max=10000,dive"`
}

// BurstQuery holds the query parameters of POST /analysis/bursts.
type BurstQuery struct {
	WindowHours int    `json:"window_hours" validate:"gte=0,lte=168"`
	Hashtag     string `json:"hashtag" validate:"max=256"`
}

// ListCampaignsQuery holds the query parameters of GET /campaigns.
type ListCampaignsQuery struct {
	CampaignID string `json:"campaign_id" validate:"omitempty,campaign_id"`
	Severity   string `json:"severity" validate:"omitempty,severity"`
	Limit      int    `json:"limit" validate:"gte=0,lte=1000"`
	Offset     int    `json:"offset" validate:"gte=0"`
}

// ListAlertsQuery holds the query parameters of GET /alerts.
type ListAlertsQuery struct {
	CampaignID   string   `json:"campaign_id" validate:"omitempty,campaign_id"`
	Types        []string `json:"type" validate:"omitempty,dive,max=64"`
	Severities   []string `json:"severity" validate:"omitempty,dive,severity"`
	Acknowledged *bool    `json:"acknowledged"`
	Limit        int      `json:"limit" validate:"gte=0,lte=1000"`
	Offset       int      `json:"offset" validate:"gte=0"`
	OrderBy      string   `json:"order_by" validate:"omitempty,oneof=created_at score severity alert_type campaign_id"`
	Direction    string   `json:"direction" validate:"omitempty,oneof=asc desc ASC DESC"`
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Username string `json:"username" validate:"required,max=128"`
	Password string `json:"password" validate:"required,max=72"`
}

// LoginResponse is returned by a successful login.
type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
	Username  string `json:"username"`
	Role      string `json:"role"`
}

// queryInt parses an integer query parameter, returning def when absent.
func queryInt(q url.Values, key string, def int) (int, error) {
	v := q.Get(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", key)
	}
	return n, nil
}

// queryBool parses an optional boolean query parameter.
func queryBool(q url.Values, key string) (*bool, error) {
	v := q.Get(key)
	if v == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil, fmt.Errorf("%s must be true or false", key)
	}
	return &b, nil
}
