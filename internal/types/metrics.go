package types

// MetricsGroup is one aggregated row: the grouping values plus every
// computed metric. Pointer metrics marshal as null when the group had
// no usable input; counts are always present (zero when empty).
type MetricsGroup struct {
	Department string `json:"Department,omitempty"`
	Year       *int   `json:"Year,omitempty"`
	Quarter    string `json:"Quarter,omitempty"`

	ResponseCount  int      `json:"Response_Count"`
	TotalEmployees int      `json:"Total_Employees"`
	ResponseRate   *float64 `json:"Response_Rate"`

	JobSatisfaction     *float64 `json:"Job_Satisfaction"`
	WorkLifeBalance     *float64 `json:"Work_Life_Balance"`
	ManagerSupport      *float64 `json:"Manager_Support"`
	GrowthOpportunities *float64 `json:"Growth_Opportunities"`
	OverallEngagement   *float64 `json:"Overall_Engagement"`

	ENPS           *float64 `json:"eNPS"`
	ENPSPromoters  int      `json:"eNPS_Promoters"`
	ENPSPassives   int      `json:"eNPS_Passives"`
	ENPSDetractors int      `json:"eNPS_Detractors"`
	AvgENPSScore   *float64 `json:"Avg_eNPS_Score"`

	BurnoutScore *float64 `json:"Burnout_Score"`
	BurnoutRate  *float64 `json:"Burnout_Rate"`
	TurnoverRisk *float64 `json:"Turnover_Risk"`

	AvgWorkload  *float64 `json:"Avg_Workload"`
	AvgSentiment *float64 `json:"Avg_Sentiment"`

	BurnoutDetail  *BurnoutDetail  `json:"Burnout_Detail,omitempty"`
	TurnoverDetail *TurnoverDetail `json:"Turnover_Detail,omitempty"`
}

// BurnoutDetail tiers are cumulative: severe implies moderate implies
// at-risk, so severe_rate <= moderate_rate <= at_risk_rate always holds.
type BurnoutDetail struct {
	SevereRate    *float64 `json:"severe_rate"`
	ModerateRate  *float64 `json:"moderate_rate"`
	AtRiskRate    *float64 `json:"at_risk_rate"`
	TotalSevere   int      `json:"total_severe"`
	TotalModerate int      `json:"total_moderate"`
	TotalAtRisk   int      `json:"total_at_risk"`
}

type TurnoverDetail struct {
	HighRiskRate     *float64 `json:"high_risk_rate"`
	ModerateRiskRate *float64 `json:"moderate_risk_rate"`
	DetractorRate    *float64 `json:"detractor_rate"`
	LowGrowthRate    *float64 `json:"low_growth_rate"`
	TotalHighRisk    int      `json:"total_high_risk"`
	TotalDetractors  int      `json:"total_detractors"`
	TotalLowGrowth   int      `json:"total_low_growth"`
}

// RiskSummary is the prompt context handed to the recommendation
// generator for one department slice.
type RiskSummary struct {
	Department string `json:"department"`
	Quarter    string `json:"quarter,omitempty"`
	Year       int    `json:"year,omitempty"`

	TotalEmployees    int `json:"total_employees"`
	TotalResponses    int `json:"total_responses"`
	BadSentimentCount int `json:"bad_sentiment_count"`
	BadScoreCount     int `json:"bad_score_count"`

	AvgJobSatisfaction     *float64 `json:"avg_job_satisfaction"`
	AvgWorkLifeBalance     *float64 `json:"avg_work_life_balance"`
	AvgManagerSupport      *float64 `json:"avg_manager_support"`
	AvgGrowthOpportunities *float64 `json:"avg_growth_opportunities"`
	AvgENPS                *float64 `json:"avg_enps"`
	AvgSentiment           *float64 `json:"avg_sentiment"`
	AvgWorkload            *float64 `json:"avg_workload"`

	BurnoutRiskCount       int     `json:"burnout_risk_count"`
	BurnoutRiskPercentage  float64 `json:"burnout_risk_percentage"`
	TurnoverRiskCount      int     `json:"turnover_risk_count"`
	TurnoverRiskPercentage float64 `json:"turnover_risk_percentage"`

	LowWLBCount         int     `json:"low_wlb_count"`
	LowWLBPercentage    float64 `json:"low_wlb_percentage"`
	LowJobSatCount      int     `json:"low_job_sat_count"`
	LowJobSatPercentage float64 `json:"low_job_sat_percentage"`
	LowGrowthCount      int     `json:"low_growth_count"`
	LowGrowthPercentage float64 `json:"low_growth_percentage"`

	DetractorsCount int     `json:"detractors_count"`
	PassivesCount   int     `json:"passives_count"`
	PromotersCount  int     `json:"promoters_count"`
	ENPSScore       float64 `json:"enps_score"`

	CommonBadCategories []string `json:"common_bad_categories"`
	SampleBadComments   []string `json:"sample_bad_comments"`
}
