// CampaignWatch - Influence Campaign Detection and Threat Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campaignwatch

package campaign

import (
	"fmt"

	"github.com/google/uuid"
)

// alertNamespace seeds deterministic alert IDs.
var alertNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/tomtom215/campaignwatch/alerts"))

// AlertID derives a stable alert ID from the campaign and alert type.
func AlertID(campaignID, alertType string) string {
	return uuid.NewSHA1(alertNamespace, []byte(campaignID+"/"+alertType)).String()
}

// buildAlerts emits one alert per component above its threshold, in
// component order.
func buildAlerts(t AlertThresholds, res *Result) []Alert {
	comps := res.ComponentScores
	alerts := make([]Alert, 0, 5)
	add := func(alertType, component string, sev Severity, message, evidence string) {
		alerts = append(alerts, Alert{
			ID:         AlertID(res.CampaignID, alertType),
			CampaignID: res.CampaignID,
			Type:       alertType,
			Severity:   sev,
			Component:  component,
			Score:      comps[component],
			Message:    message,
			Evidence:   evidence,
			CreatedAt:  res.ScoredAt,
		})
	}

	if v := comps[ComponentToxicity]; v > t.Toxicity {
		add(AlertHighToxicity, ComponentToxicity, SeverityHigh,
			fmt.Sprintf("High toxicity detected (score: %.1f)", v),
			"Multiple posts contain toxic content above threshold")
	}
	if v := comps[ComponentStance]; v > t.Stance {
		add(AlertAntiIndiaNarrative, ComponentStance, SeverityHigh,
			fmt.Sprintf("Anti-India narrative detected (score: %.1f)", v),
			"Coordinated negative stance towards India detected")
	}
	if v := comps[ComponentCoordination]; v > t.Coordination {
		groups := 0
		if c := res.Analysis.Coordination; c != nil {
			groups = len(c.Groups)
		}
		add(AlertCoordinatedBehavior, ComponentCoordination, SeverityCritical,
			fmt.Sprintf("Coordinated inauthentic behavior detected (%d groups)", groups),
			fmt.Sprintf("Coordination score: %.1f", v))
	}
	if v := comps[ComponentBotNetwork]; v > t.BotNetwork {
		bots := 0
		if b := res.Analysis.BotNetwork; b != nil {
			bots = b.PotentialBotsCount
		}
		add(AlertBotNetwork, ComponentBotNetwork, SeverityHigh,
			fmt.Sprintf("Bot network detected (%d potential bots)", bots),
			fmt.Sprintf("Network score: %.1f", v))
	}
	if v := comps[ComponentBurstActivity]; v > t.BurstActivity {
		bursts := 0
		if b := res.Analysis.Burst; b != nil {
			bursts = len(b.StateBursts)
		}
		add(AlertBurstActivity, ComponentBurstActivity, SeverityMedium,
			fmt.Sprintf("Suspicious burst activity detected (%d bursts)", bursts),
			fmt.Sprintf("Burst score: %.1f", v))
	}
	return alerts
}
