package recommend

import (
	"fmt"

	"wellbeing-insights-go/internal/types"
)

// Fallback rule thresholds. Percentages are 0-100, scores 1-10.
const (
	burnoutCardThreshold  = 20.0
	turnoverCardThreshold = 15.0
	lowScoreCardThreshold = 5.0
)

// FallbackCards derives intervention cards from the risk summary alone,
// used when no model is reachable. Each triggered rule yields one card; a
// quiet summary yields a single monitoring card.
func FallbackCards(s *types.RiskSummary) []types.ActionCard {
	var cards []types.ActionCard

	if s.BurnoutRiskPercentage >= burnoutCardThreshold {
		cards = append(cards, types.ActionCard{
			Insight: fmt.Sprintf("Severe burnout risk at %.1f%% of respondents", s.BurnoutRiskPercentage),
			Action:  "Schedule workload review with team leads; enforce recovery time after peak periods",
			Impact:  "Lower burnout rate and unplanned absence",
		})
	}
	if s.TurnoverRiskPercentage >= turnoverCardThreshold {
		cards = append(cards, types.ActionCard{
			Insight: fmt.Sprintf("Turnover risk at %.1f%% (detractors reporting low growth)", s.TurnoverRiskPercentage),
			Action:  "Run growth-path conversations with flagged cohorts; publish internal mobility options",
			Impact:  "Retain at-risk employees before resignations harden",
		})
	}
	if s.AvgWorkLifeBalance != nil && *s.AvgWorkLifeBalance < lowScoreCardThreshold {
		cards = append(cards, types.ActionCard{
			Insight: fmt.Sprintf("Work-life balance averaging %.2f of 10", *s.AvgWorkLifeBalance),
			Action:  "Audit after-hours load and meeting density; introduce protected no-meeting blocks",
			Impact:  "Recover personal time and reduce quiet quitting",
		})
	}
	if s.AvgManagerSupport != nil && *s.AvgManagerSupport < lowScoreCardThreshold {
		cards = append(cards, types.ActionCard{
			Insight: fmt.Sprintf("Manager support averaging %.2f of 10", *s.AvgManagerSupport),
			Action:  "Coach managers on 1:1 cadence and feedback quality",
			Impact:  "Improve support scores and downstream engagement",
		})
	}

	if len(cards) == 0 {
		cards = append(cards, types.ActionCard{
			Insight: "No strong risk pattern detected",
			Action:  "Monitor and collect more survey data",
			Impact:  "Low immediate intervention",
		})
	}
	return cards
}

// FallbackOutput adapts cards into the recommendation shape the endpoint
// always returns, so a degraded response still renders on the dashboard.
func FallbackOutput(cards []types.ActionCard) *types.RecommendationOutput {
	out := &types.RecommendationOutput{
		PriorityActions:    []types.PriorityAction{},
		RecommendedEvents:  []types.RecommendedEvent{},
		LongTermStrategies: []types.LongTermStrategy{},
		MetricsToTrack:     []string{"Burnout_Rate", "Turnover_Risk", "eNPS", "Overall_Engagement"},
	}
	for _, c := range cards {
		out.PriorityActions = append(out.PriorityActions, types.PriorityAction{
			Action:    c.Action,
			Rationale: c.Insight,
			Timeline:  "Next 30 days",
		})
	}
	return out
}
