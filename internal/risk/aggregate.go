package risk

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"wellbeing-insights-go/internal/types"
)

var defaultGroupBy = []string{"Department", "Year", "Quarter"}

// Round2 rounds half away from zero to 2 decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round2p(v *float64) *float64 {
	if v == nil {
		return nil
	}
	r := Round2(*v)
	return &r
}

func fptr(v float64) *float64 { return &v }

// Mean averages the values, nil for an empty series.
func Mean(vals []float64) *float64 {
	if len(vals) == 0 {
		return nil
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	m := sum / float64(len(vals))
	return &m
}

// scorePair is one row's aligned values for a two-column metric.
type scorePair struct{ a, b float64 }

// ENPSScore returns (%promoters - %detractors) on a 0-10 response scale.
func ENPSScore(scores []float64) *float64 {
	if len(scores) == 0 {
		return nil
	}
	var promoters, detractors int
	for _, s := range scores {
		if s >= 9 {
			promoters++
		}
		if s <= 6 {
			detractors++
		}
	}
	v := float64(promoters-detractors) / float64(len(scores)) * 100
	return &v
}

// burnoutScore inverts the mean wellness score: 10 - Mean((wlb+sat)/2) over
// rows where both values are present.
func burnoutScore(pairs []scorePair) *float64 {
	if len(pairs) == 0 {
		return nil
	}
	var sum float64
	for _, p := range pairs {
		sum += (p.a + p.b) / 2
	}
	v := 10 - sum/float64(len(pairs))
	return &v
}

// burnoutRate is the severe tier: both work-life balance and job
// satisfaction at or below 2, as a percentage of aligned rows.
func burnoutRate(pairs []scorePair) *float64 {
	if len(pairs) == 0 {
		return nil
	}
	var severe int
	for _, p := range pairs {
		if p.a <= 2 && p.b <= 2 {
			severe++
		}
	}
	v := float64(severe) / float64(len(pairs)) * 100
	return &v
}

// turnoverRisk is the high tier: detractor (eNPS <= 6) and low growth
// (<= 2) together, as a percentage of aligned rows.
func turnoverRisk(pairs []scorePair) *float64 {
	if len(pairs) == 0 {
		return nil
	}
	var high int
	for _, p := range pairs {
		if p.a <= 6 && p.b <= 2 {
			high++
		}
	}
	v := float64(high) / float64(len(pairs)) * 100
	return &v
}

func responseRate(responses, totalEmployees int) *float64 {
	if totalEmployees == 0 {
		return nil
	}
	v := float64(responses) / float64(totalEmployees) * 100
	return &v
}

// respondent counting prefers distinct employees, then distinct responses,
// then the plain row count; the mode is decided once over the whole set so
// sparse groups do not switch strategy mid-aggregation.
type countMode int

const (
	countByEmployee countMode = iota
	countByResponse
	countByRows
)

func resolveCountMode(rows []types.EnrichedRow) countMode {
	for i := range rows {
		if rows[i].EmployeeID != "" {
			return countByEmployee
		}
	}
	for i := range rows {
		if rows[i].ResponseID != "" {
			return countByResponse
		}
	}
	return countByRows
}

func responseCount(rows []*types.EnrichedRow, mode countMode) int {
	switch mode {
	case countByEmployee:
		seen := make(map[string]struct{})
		for _, r := range rows {
			if r.EmployeeID != "" {
				seen[r.EmployeeID] = struct{}{}
			}
		}
		return len(seen)
	case countByResponse:
		seen := make(map[string]struct{})
		for _, r := range rows {
			if r.ResponseID != "" {
				seen[r.ResponseID] = struct{}{}
			}
		}
		return len(seen)
	default:
		return len(rows)
	}
}

// groupColumn describes one usable grouping dimension.
type groupColumn struct {
	name string
	key  func(r *types.EnrichedRow) (string, bool)
}

func columnFor(name string, rows []types.EnrichedRow) (groupColumn, bool) {
	switch name {
	case "Department":
		usable := false
		for i := range rows {
			if rows[i].Department != "" {
				usable = true
				break
			}
		}
		return groupColumn{name: name, key: func(r *types.EnrichedRow) (string, bool) {
			if r.Department == "" {
				return "", false
			}
			return deptKey(r.Department), true
		}}, usable
	case "Year":
		usable := false
		for i := range rows {
			if rows[i].Year != nil {
				usable = true
				break
			}
		}
		return groupColumn{name: name, key: func(r *types.EnrichedRow) (string, bool) {
			if r.Year == nil {
				return "", false
			}
			return strconv.Itoa(*r.Year), true
		}}, usable
	case "Quarter":
		usable := false
		for i := range rows {
			if rows[i].Quarter != "" {
				usable = true
				break
			}
		}
		return groupColumn{name: name, key: func(r *types.EnrichedRow) (string, bool) {
			if r.Quarter == "" {
				return "", false
			}
			return strings.ToUpper(strings.TrimSpace(r.Quarter)), true
		}}, usable
	}
	return groupColumn{}, false
}

type partition struct {
	keys []string
	rows []*types.EnrichedRow
}

// Aggregate partitions enriched rows by the requested grouping columns and
// computes the full metric set per partition. Requested columns with no data
// are dropped from the key; if none remain the call fails with
// ErrNoGroupColumns. Rows missing a value for an active grouping column are
// excluded, mirroring how null keys drop out of a grouped aggregation.
func Aggregate(rows []types.EnrichedRow, opts Options) ([]types.MetricsGroup, error) {
	if len(rows) == 0 {
		return []types.MetricsGroup{}, nil
	}

	groupBy := opts.GroupBy
	if len(groupBy) == 0 {
		groupBy = defaultGroupBy
	}

	var cols []groupColumn
	for _, name := range groupBy {
		if col, ok := columnFor(name, rows); ok {
			cols = append(cols, col)
		}
	}
	if len(cols) == 0 {
		return nil, ErrNoGroupColumns
	}

	mode := resolveCountMode(rows)

	parts := make(map[string]*partition)
	var order []string
	for i := range rows {
		r := &rows[i]
		keys := make([]string, 0, len(cols))
		ok := true
		for _, col := range cols {
			k, has := col.key(r)
			if !has {
				ok = false
				break
			}
			keys = append(keys, k)
		}
		if !ok {
			continue
		}
		composite := strings.Join(keys, "\x1f")
		p := parts[composite]
		if p == nil {
			p = &partition{keys: keys}
			parts[composite] = p
			order = append(order, composite)
		}
		p.rows = append(p.rows, r)
	}

	out := make([]types.MetricsGroup, 0, len(parts))
	for _, composite := range order {
		p := parts[composite]
		out = append(out, computeGroup(p, cols, mode, opts.IncludeDetailed))
	}

	sort.Slice(out, func(i, j int) bool {
		for _, col := range cols {
			switch col.name {
			case "Department":
				a, b := deptKey(out[i].Department), deptKey(out[j].Department)
				if a != b {
					return a < b
				}
			case "Year":
				a, b := yearOrZero(out[i].Year), yearOrZero(out[j].Year)
				if a != b {
					return a < b
				}
			case "Quarter":
				a, b := strings.ToUpper(out[i].Quarter), strings.ToUpper(out[j].Quarter)
				if a != b {
					return a < b
				}
			}
		}
		return false
	})

	return out, nil
}

func yearOrZero(y *int) int {
	if y == nil {
		return 0
	}
	return *y
}

func computeGroup(p *partition, cols []groupColumn, mode countMode, detailed bool) types.MetricsGroup {
	g := types.MetricsGroup{}

	// Display values keep the first-seen casing for the partition.
	first := p.rows[0]
	for _, col := range cols {
		switch col.name {
		case "Department":
			g.Department = first.Department
		case "Year":
			g.Year = first.Year
		case "Quarter":
			g.Quarter = first.Quarter
		}
	}

	var (
		jobSat, wlb, mgr, growth []float64
		engagement, enps         []float64
		workloadVals, sentiment  []float64
		burnoutPairs, riskPairs  []scorePair
	)
	for _, r := range p.rows {
		if r.JobSatisfaction != nil {
			jobSat = append(jobSat, *r.JobSatisfaction)
		}
		if r.WorkLifeBalance != nil {
			wlb = append(wlb, *r.WorkLifeBalance)
		}
		if r.ManagerSupport != nil {
			mgr = append(mgr, *r.ManagerSupport)
		}
		if r.GrowthOpportunities != nil {
			growth = append(growth, *r.GrowthOpportunities)
		}
		if r.OverallEngagement != nil {
			engagement = append(engagement, *r.OverallEngagement)
		}
		if r.ENPS != nil {
			enps = append(enps, *r.ENPS)
		}
		if r.AvgDeptWorkload != nil {
			workloadVals = append(workloadVals, *r.AvgDeptWorkload)
		}
		if r.SentimentScore != nil {
			sentiment = append(sentiment, *r.SentimentScore)
		}
		if r.WorkLifeBalance != nil && r.JobSatisfaction != nil {
			burnoutPairs = append(burnoutPairs, scorePair{a: *r.WorkLifeBalance, b: *r.JobSatisfaction})
		}
		if r.ENPS != nil && r.GrowthOpportunities != nil {
			riskPairs = append(riskPairs, scorePair{a: *r.ENPS, b: *r.GrowthOpportunities})
		}
	}

	totalEmployees := 0
	for _, r := range p.rows {
		if r.TotalEmployees != nil {
			totalEmployees = int(*r.TotalEmployees)
			break
		}
	}

	g.ResponseCount = responseCount(p.rows, mode)
	g.TotalEmployees = totalEmployees
	g.ResponseRate = responseRate(g.ResponseCount, totalEmployees)

	g.JobSatisfaction = Mean(jobSat)
	g.WorkLifeBalance = Mean(wlb)
	g.ManagerSupport = Mean(mgr)
	g.GrowthOpportunities = Mean(growth)
	g.OverallEngagement = Mean(engagement)

	g.ENPS = ENPSScore(enps)
	for _, s := range enps {
		switch {
		case s >= 9:
			g.ENPSPromoters++
		case s >= 7 && s <= 8:
			g.ENPSPassives++
		case s <= 6:
			g.ENPSDetractors++
		}
	}
	g.AvgENPSScore = Mean(enps)

	g.BurnoutScore = burnoutScore(burnoutPairs)
	g.BurnoutRate = burnoutRate(burnoutPairs)
	g.TurnoverRisk = turnoverRisk(riskPairs)

	g.AvgWorkload = Mean(workloadVals)
	g.AvgSentiment = Mean(sentiment)

	if detailed {
		bd := burnoutBreakdown(burnoutPairs)
		td := turnoverBreakdown(riskPairs)
		g.BurnoutDetail = &bd
		g.TurnoverDetail = &td
	}

	roundGroup(&g)
	return g
}

// roundGroup applies the 2-decimal rounding contract to every emitted
// numeric metric. Counts stay integral.
func roundGroup(g *types.MetricsGroup) {
	g.ResponseRate = round2p(g.ResponseRate)
	g.JobSatisfaction = round2p(g.JobSatisfaction)
	g.WorkLifeBalance = round2p(g.WorkLifeBalance)
	g.ManagerSupport = round2p(g.ManagerSupport)
	g.GrowthOpportunities = round2p(g.GrowthOpportunities)
	g.OverallEngagement = round2p(g.OverallEngagement)
	g.ENPS = round2p(g.ENPS)
	g.AvgENPSScore = round2p(g.AvgENPSScore)
	g.BurnoutScore = round2p(g.BurnoutScore)
	g.BurnoutRate = round2p(g.BurnoutRate)
	g.TurnoverRisk = round2p(g.TurnoverRisk)
	g.AvgWorkload = round2p(g.AvgWorkload)
	g.AvgSentiment = round2p(g.AvgSentiment)
	if g.BurnoutDetail != nil {
		g.BurnoutDetail.SevereRate = round2p(g.BurnoutDetail.SevereRate)
		g.BurnoutDetail.ModerateRate = round2p(g.BurnoutDetail.ModerateRate)
		g.BurnoutDetail.AtRiskRate = round2p(g.BurnoutDetail.AtRiskRate)
	}
	if g.TurnoverDetail != nil {
		g.TurnoverDetail.HighRiskRate = round2p(g.TurnoverDetail.HighRiskRate)
		g.TurnoverDetail.ModerateRiskRate = round2p(g.TurnoverDetail.ModerateRiskRate)
		g.TurnoverDetail.DetractorRate = round2p(g.TurnoverDetail.DetractorRate)
		g.TurnoverDetail.LowGrowthRate = round2p(g.TurnoverDetail.LowGrowthRate)
	}
}
