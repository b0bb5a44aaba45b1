// CampaignWatch - Influence Campaign Detection and Threat Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campaignwatch

// Package validation validates API request structs with
// go-playground/validator and translates failures into the API's
// VALIDATION_ERROR envelope.
//
//	type ScoreRequest struct {
//	    ID    string        `json:"campaign_id" validate:"omitempty,campaign_id"`
//	    Posts []models.Post `json:"posts" validate:"max=10000"`
//	}
//
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    apiErr := verr.ToAPIError()
//	    ...
//	}
package validation
