package risk

import "wellbeing-insights-go/internal/types"

// PercentageJSON converts aggregated groups to the dashboard shape: 1-10
// scale metrics rescaled to 0-100, percentage and count metrics passed
// through, grouping columns as top-level siblings of a nested Metrics
// object. Nil metrics are omitted entirely so callers read absence as
// unknown, not zero.
func PercentageJSON(groups []types.MetricsGroup) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(groups))
	for i := range groups {
		g := &groups[i]
		metrics := make(map[string]interface{})

		scale := func(name string, v *float64) {
			if v != nil {
				metrics[name] = Round2(*v * 10)
			}
		}
		keep := func(name string, v *float64) {
			if v != nil {
				metrics[name] = *v
			}
		}

		scale("Job_Satisfaction", g.JobSatisfaction)
		scale("Work_Life_Balance", g.WorkLifeBalance)
		scale("Manager_Support", g.ManagerSupport)
		scale("Growth_Opportunities", g.GrowthOpportunities)
		scale("Overall_Engagement", g.OverallEngagement)
		scale("Burnout_Score", g.BurnoutScore)
		scale("Avg_Workload", g.AvgWorkload)

		keep("eNPS", g.ENPS)
		keep("Burnout_Rate", g.BurnoutRate)
		keep("Turnover_Risk", g.TurnoverRisk)
		keep("Response_Rate", g.ResponseRate)
		keep("Avg_Sentiment", g.AvgSentiment)
		metrics["Response_Count"] = g.ResponseCount
		metrics["Total_Employees"] = g.TotalEmployees

		entry := make(map[string]interface{})
		if g.Department != "" {
			entry["Department"] = g.Department
		}
		if g.Year != nil {
			entry["Year"] = *g.Year
		}
		if g.Quarter != "" {
			entry["Quarter"] = g.Quarter
		}
		entry["Metrics"] = metrics
		out = append(out, entry)
	}
	return out
}
