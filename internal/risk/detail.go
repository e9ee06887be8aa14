package risk

import "wellbeing-insights-go/internal/types"

// burnoutBreakdown computes the three cumulative burnout tiers over aligned
// work-life balance / job satisfaction pairs: severe requires both scores at
// or below 2, moderate either at or below 2, at-risk either at or below 3.
// With no aligned pairs the rates stay nil and the counts zero.
func burnoutBreakdown(pairs []scorePair) types.BurnoutDetail {
	d := types.BurnoutDetail{}
	if len(pairs) == 0 {
		return d
	}

	total := float64(len(pairs))
	for _, p := range pairs {
		wlb, sat := p.a, p.b
		if wlb <= 2 && sat <= 2 {
			d.TotalSevere++
		}
		if wlb <= 2 || sat <= 2 {
			d.TotalModerate++
		}
		if wlb <= 3 || sat <= 3 {
			d.TotalAtRisk++
		}
	}

	severe := float64(d.TotalSevere) / total * 100
	moderate := float64(d.TotalModerate) / total * 100
	atRisk := float64(d.TotalAtRisk) / total * 100
	d.SevereRate = &severe
	d.ModerateRate = &moderate
	d.AtRiskRate = &atRisk
	return d
}

// SurveyBurnoutDetail computes the burnout tiers over raw survey rows,
// pairing work-life balance with job satisfaction where both are present.
// Shared with the risk-summary path so both report the same counts.
func SurveyBurnoutDetail(rows []types.SurveyRecord) types.BurnoutDetail {
	var pairs []scorePair
	for i := range rows {
		r := &rows[i]
		if r.WorkLifeBalance != nil && r.JobSatisfaction != nil {
			pairs = append(pairs, scorePair{a: *r.WorkLifeBalance, b: *r.JobSatisfaction})
		}
	}
	return burnoutBreakdown(pairs)
}

// SurveyTurnoverDetail computes the turnover tiers over raw survey rows,
// pairing eNPS with growth opportunities where both are present.
func SurveyTurnoverDetail(rows []types.SurveyRecord) types.TurnoverDetail {
	var pairs []scorePair
	for i := range rows {
		r := &rows[i]
		if r.ENPS != nil && r.GrowthOpportunities != nil {
			pairs = append(pairs, scorePair{a: *r.ENPS, b: *r.GrowthOpportunities})
		}
	}
	return turnoverBreakdown(pairs)
}

// turnoverBreakdown computes the turnover tiers over aligned eNPS / growth
// pairs: high risk is detractor and low growth together, moderate either.
func turnoverBreakdown(pairs []scorePair) types.TurnoverDetail {
	d := types.TurnoverDetail{}
	if len(pairs) == 0 {
		return d
	}

	total := float64(len(pairs))
	moderateCount := 0
	for _, p := range pairs {
		enps, growth := p.a, p.b
		detractor := enps <= 6
		lowGrowth := growth <= 2
		if detractor {
			d.TotalDetractors++
		}
		if lowGrowth {
			d.TotalLowGrowth++
		}
		if detractor && lowGrowth {
			d.TotalHighRisk++
		}
		if detractor || lowGrowth {
			moderateCount++
		}
	}

	high := float64(d.TotalHighRisk) / total * 100
	moderate := float64(moderateCount) / total * 100
	detractorRate := float64(d.TotalDetractors) / total * 100
	lowGrowthRate := float64(d.TotalLowGrowth) / total * 100
	d.HighRiskRate = &high
	d.ModerateRiskRate = &moderate
	d.DetractorRate = &detractorRate
	d.LowGrowthRate = &lowGrowthRate
	return d
}
