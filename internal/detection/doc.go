// CampaignWatch - Influence Campaign Detection and Threat Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campaignwatch

// Package detection implements the signal detectors behind campaign
// scoring: temporal bursts, coordinated inauthentic behavior, and bot
// likelihood for single accounts and account networks.
//
// Detection Architecture:
//
//	[]models.Post ──┬─> BurstDetector        ──> BurstResult
//	                ├─> CoordinationDetector ──> CoordinationResult
//	                └─> BotDetector          ──> BotResult / BotNetworkResult
//
// All detectors are pure functions of their input. They hold only
// read-only configuration, are safe for concurrent use, and never read the
// wall clock: account ages are measured against the newest post in the
// input, so identical input always yields identical output.
//
// Error Handling:
//
// Detectors never return errors. Inputs below a detector's minimum sample
// size produce a documented empty result. Each sub-analysis runs inside its
// own boundary; a panic in one step is logged, its contribution falls back
// to a zero value, and the step name is listed in DegradedSteps while the
// remaining steps still run.
//
// Configuration:
//
// Every threshold and weight map is a plain struct with a Default...Config
// constructor. Structs carry koanf tags so the config package can embed
// them directly:
//
//	det := detection.NewBurstDetector(cfg.Detection.Burst)
//	res := det.DetectBursts(posts, 24)
package detection
