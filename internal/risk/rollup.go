package risk

import (
	"strings"

	"wellbeing-insights-go/internal/types"
)

// RollupQuery narrows and collapses aggregated groups for the summary
// metrics view. Year is always applied; Department and Quarter are optional
// filters. ByQuarter switches to the per-quarter trend shape.
type RollupQuery struct {
	Department string
	Quarter    string
	Year       int
	ByQuarter  bool
}

var quarterLabels = []string{"Q1", "Q2", "Q3", "Q4"}

// Rollup filters groups to the query's year and collapses what remains.
// With both department and quarter set it returns the matching detail rows.
// With one or neither set the remaining rows roll up into one "All" record:
// counts sum, metric means average, and all-nil metrics stay nil. ByQuarter
// returns one record per quarter, zero-filled when a quarter has no data so
// trend charts keep their x-axis.
func Rollup(groups []types.MetricsGroup, q RollupQuery) []types.MetricsGroup {
	filtered := make([]types.MetricsGroup, 0, len(groups))
	for _, g := range groups {
		if g.Year != nil && *g.Year == q.Year {
			filtered = append(filtered, g)
		}
	}

	if q.ByQuarter {
		if q.Department != "" {
			filtered = filterDepartment(filtered, q.Department)
		}
		deptName := q.Department
		if deptName == "" {
			deptName = "All"
		}
		out := make([]types.MetricsGroup, 0, len(quarterLabels))
		for _, label := range quarterLabels {
			qRows := filterQuarter(filtered, label)
			if len(qRows) == 0 {
				out = append(out, emptyQuarter(deptName, label, q.Year))
				continue
			}
			out = append(out, collapse(qRows, deptName, label, q.Year))
		}
		return out
	}

	if q.Quarter != "" {
		filtered = filterQuarter(filtered, q.Quarter)
	}
	if q.Department != "" {
		filtered = filterDepartment(filtered, q.Department)
		if q.Quarter != "" {
			return filtered
		}
		return []types.MetricsGroup{collapse(filtered, q.Department, "All", q.Year)}
	}
	if q.Quarter != "" {
		return []types.MetricsGroup{collapse(filtered, "All", q.Quarter, q.Year)}
	}
	return []types.MetricsGroup{collapse(filtered, "All", "All", q.Year)}
}

func filterDepartment(groups []types.MetricsGroup, dept string) []types.MetricsGroup {
	want := deptKey(dept)
	out := make([]types.MetricsGroup, 0, len(groups))
	for _, g := range groups {
		if deptKey(g.Department) == want {
			out = append(out, g)
		}
	}
	return out
}

func filterQuarter(groups []types.MetricsGroup, quarter string) []types.MetricsGroup {
	want := strings.ToUpper(strings.TrimSpace(quarter))
	out := make([]types.MetricsGroup, 0, len(groups))
	for _, g := range groups {
		if strings.ToUpper(strings.TrimSpace(g.Quarter)) == want {
			out = append(out, g)
		}
	}
	return out
}

// emptyQuarter is the zero-filled placeholder for a quarter with no rows.
func emptyQuarter(dept, quarter string, year int) types.MetricsGroup {
	y := year
	return types.MetricsGroup{
		Department:        dept,
		Quarter:           quarter,
		Year:              &y,
		BurnoutRate:       fptr(0),
		TurnoverRisk:      fptr(0),
		ENPS:              fptr(0),
		OverallEngagement: fptr(0),
	}
}

// collapse sums the count columns and averages the metric columns across
// the given groups.
func collapse(groups []types.MetricsGroup, dept, quarter string, year int) types.MetricsGroup {
	y := year
	out := types.MetricsGroup{Department: dept, Quarter: quarter, Year: &y}

	for _, g := range groups {
		out.ResponseCount += g.ResponseCount
		out.TotalEmployees += g.TotalEmployees
		out.ENPSPromoters += g.ENPSPromoters
		out.ENPSPassives += g.ENPSPassives
		out.ENPSDetractors += g.ENPSDetractors
	}

	out.ResponseRate = meanOf(groups, func(g *types.MetricsGroup) *float64 { return g.ResponseRate })
	out.JobSatisfaction = meanOf(groups, func(g *types.MetricsGroup) *float64 { return g.JobSatisfaction })
	out.WorkLifeBalance = meanOf(groups, func(g *types.MetricsGroup) *float64 { return g.WorkLifeBalance })
	out.ManagerSupport = meanOf(groups, func(g *types.MetricsGroup) *float64 { return g.ManagerSupport })
	out.GrowthOpportunities = meanOf(groups, func(g *types.MetricsGroup) *float64 { return g.GrowthOpportunities })
	out.OverallEngagement = meanOf(groups, func(g *types.MetricsGroup) *float64 { return g.OverallEngagement })
	out.ENPS = meanOf(groups, func(g *types.MetricsGroup) *float64 { return g.ENPS })
	out.AvgENPSScore = meanOf(groups, func(g *types.MetricsGroup) *float64 { return g.AvgENPSScore })
	out.BurnoutScore = meanOf(groups, func(g *types.MetricsGroup) *float64 { return g.BurnoutScore })
	out.BurnoutRate = meanOf(groups, func(g *types.MetricsGroup) *float64 { return g.BurnoutRate })
	out.TurnoverRisk = meanOf(groups, func(g *types.MetricsGroup) *float64 { return g.TurnoverRisk })
	out.AvgWorkload = meanOf(groups, func(g *types.MetricsGroup) *float64 { return g.AvgWorkload })
	out.AvgSentiment = meanOf(groups, func(g *types.MetricsGroup) *float64 { return g.AvgSentiment })

	roundGroup(&out)
	return out
}

func meanOf(groups []types.MetricsGroup, get func(*types.MetricsGroup) *float64) *float64 {
	var vals []float64
	for i := range groups {
		if v := get(&groups[i]); v != nil {
			vals = append(vals, *v)
		}
	}
	return Mean(vals)
}
