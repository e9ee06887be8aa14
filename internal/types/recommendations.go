package types

type PriorityAction struct {
	Action    string `json:"action"`
	Rationale string `json:"rationale"`
	Timeline  string `json:"timeline"`
}

type RecommendedEvent struct {
	Event          string `json:"event"`
	Description    string `json:"description"`
	ExpectedImpact string `json:"expected_impact"`
}

type LongTermStrategy struct {
	Strategy       string `json:"strategy"`
	Implementation string `json:"implementation,omitempty"`
}

type RecommendationOutput struct {
	PriorityActions    []PriorityAction   `json:"priority_actions"`
	RecommendedEvents  []RecommendedEvent `json:"recommended_events"`
	LongTermStrategies []LongTermStrategy `json:"long_term_strategies"`
	MetricsToTrack     []string           `json:"metrics_to_track"`
}

// RecommendationResult is the tagged outcome of parsing LLM output.
// Exactly one of Parsed/RawText is meaningful; repair never panics and
// never loses the raw text when parsing fails.
type RecommendationResult struct {
	Parsed  *RecommendationOutput `json:"parsed,omitempty"`
	RawText string                `json:"raw_text,omitempty"`
	Reason  string                `json:"reason,omitempty"`
}

func (r RecommendationResult) IsParsed() bool { return r.Parsed != nil }

type RecommendationResponse struct {
	Department      string                `json:"department"`
	Quarter         string                `json:"quarter,omitempty"`
	Year            int                   `json:"year,omitempty"`
	Context         *RiskSummary          `json:"context,omitempty"`
	Recommendations *RecommendationOutput `json:"recommendations,omitempty"`
	RawText         string                `json:"raw_text,omitempty"`
	GeneratedAt     string                `json:"generated_at"`
	Error           string                `json:"error,omitempty"`
}

// ActionCard is the rule-based fallback shape when no LLM is reachable.
type ActionCard struct {
	Insight string `json:"insight"`
	Action  string `json:"action"`
	Impact  string `json:"impact"`
}
