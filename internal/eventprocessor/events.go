// CampaignWatch - Influence Campaign Detection and Threat Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campaignwatch

package eventprocessor

import (
	"errors"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/tomtom215/campaignwatch/internal/campaign"
	"github.com/tomtom215/campaignwatch/internal/models"
)

// Metadata keys set on published messages.
const (
	MetadataCampaignID = "campaign_id"
	MetadataSeverity   = "severity"
	MetadataAlertType  = "alert_type"
)

// ErrEmptyRequest is returned for a request without posts or authors.
var ErrEmptyRequest = errors.New("scoring request has no posts or authors")

// ScoreRequest is the payload consumed from the requests topic.
type ScoreRequest struct {
	ID      string          `json:"id,omitempty"`
	Posts   []models.Post   `json:"posts"`
	Authors []models.Author `json:"authors,omitempty"`
}

// DecodeScoreRequest parses a request payload.
func DecodeScoreRequest(data []byte) (*ScoreRequest, error) {
	var req ScoreRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("decode score request: %w", err)
	}
	if req.Posts == nil && req.Authors == nil {
		return nil, ErrEmptyRequest
	}
	return &req, nil
}

// Campaign converts the request into a scorer input.
func (r *ScoreRequest) Campaign() campaign.Campaign {
	return campaign.Campaign{ID: r.ID, Posts: r.Posts, Authors: r.Authors}
}
