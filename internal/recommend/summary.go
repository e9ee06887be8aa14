package recommend

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"wellbeing-insights-go/internal/risk"
	"wellbeing-insights-go/internal/types"
)

// ErrNoData means no survey rows matched the requested filters.
var ErrNoData = errors.New("no data found for the specified filters")

// badScoreThreshold marks a core score (or sentiment) as "bad"; low counts
// use the harsher lowScoreCeiling band shared with the risk tiers.
const (
	badScoreThreshold = 5.0
	lowScoreCeiling   = 2.0
)

// Source supplies the raw record sets the risk summary is built from.
type Source interface {
	FetchSurvey(ctx context.Context) ([]types.SurveyRecord, error)
	FetchEmployees(ctx context.Context) ([]types.EmployeeRecord, error)
	FetchWorkload(ctx context.Context) ([]types.WorkloadRecord, error)
}

// Query selects the department slice recommendations are generated for.
// Department is required; zero Quarter/Year disable those filters.
type Query struct {
	Department string
	Quarter    string
	Year       int
}

// RiskSummary builds the prompt context for one department slice: response
// and bad-score tallies, score means, burnout/turnover tiers, eNPS bands,
// plus employee headcount and average logged workload for the department.
func (g *Generator) RiskSummary(ctx context.Context, q Query) (*types.RiskSummary, error) {
	survey, err := g.src.FetchSurvey(ctx)
	if err != nil {
		return nil, err
	}
	rows := filterSurvey(survey, q)
	if len(rows) == 0 {
		return nil, ErrNoData
	}

	s := &types.RiskSummary{
		Department:     q.Department,
		Quarter:        q.Quarter,
		Year:           q.Year,
		TotalResponses: len(rows),
	}

	var jobSat, wlb, mgr, growth, enps, sentiment []float64
	for i := range rows {
		r := &rows[i]
		if r.SentimentScore != nil {
			sentiment = append(sentiment, *r.SentimentScore)
			if *r.SentimentScore <= badScoreThreshold {
				s.BadSentimentCount++
			}
		}
		if hasBadScore(r) {
			s.BadScoreCount++
		}
		if r.JobSatisfaction != nil {
			jobSat = append(jobSat, *r.JobSatisfaction)
			if *r.JobSatisfaction <= lowScoreCeiling {
				s.LowJobSatCount++
			}
		}
		if r.WorkLifeBalance != nil {
			wlb = append(wlb, *r.WorkLifeBalance)
			if *r.WorkLifeBalance <= lowScoreCeiling {
				s.LowWLBCount++
			}
		}
		if r.ManagerSupport != nil {
			mgr = append(mgr, *r.ManagerSupport)
		}
		if r.GrowthOpportunities != nil {
			growth = append(growth, *r.GrowthOpportunities)
			if *r.GrowthOpportunities <= lowScoreCeiling {
				s.LowGrowthCount++
			}
		}
		if r.ENPS != nil {
			enps = append(enps, *r.ENPS)
			switch {
			case *r.ENPS >= 9:
				s.PromotersCount++
			case *r.ENPS >= 7 && *r.ENPS <= 8:
				s.PassivesCount++
			case *r.ENPS <= 6:
				s.DetractorsCount++
			}
		}
	}

	s.AvgJobSatisfaction = roundedMean(jobSat)
	s.AvgWorkLifeBalance = roundedMean(wlb)
	s.AvgManagerSupport = roundedMean(mgr)
	s.AvgGrowthOpportunities = roundedMean(growth)
	s.AvgENPS = roundedMean(enps)
	s.AvgSentiment = roundedMean(sentiment)

	bd := risk.SurveyBurnoutDetail(rows)
	s.BurnoutRiskCount = bd.TotalSevere
	if bd.SevereRate != nil {
		s.BurnoutRiskPercentage = risk.Round2(*bd.SevereRate)
	}
	td := risk.SurveyTurnoverDetail(rows)
	s.TurnoverRiskCount = td.TotalHighRisk
	if td.HighRiskRate != nil {
		s.TurnoverRiskPercentage = risk.Round2(*td.HighRiskRate)
	}

	// Low-score percentages are over all filtered responses, not just rows
	// that answered the question; so is the eNPS score. Both mirror the
	// dashboard's summary panel.
	total := float64(len(rows))
	s.LowWLBPercentage = risk.Round2(float64(s.LowWLBCount) / total * 100)
	s.LowJobSatPercentage = risk.Round2(float64(s.LowJobSatCount) / total * 100)
	s.LowGrowthPercentage = risk.Round2(float64(s.LowGrowthCount) / total * 100)
	s.ENPSScore = risk.Round2(float64(s.PromotersCount-s.DetractorsCount) / total * 100)

	s.CommonBadCategories = badCategories(rows, 5)
	s.SampleBadComments = badComments(rows, 5)

	if err := g.fillDepartmentContext(ctx, s, q.Department); err != nil {
		return nil, err
	}

	g.log.WithFields(logrus.Fields{
		"department":  q.Department,
		"responses":   s.TotalResponses,
		"bad_scores":  s.BadScoreCount,
		"burnout_pct": s.BurnoutRiskPercentage,
	}).Debug("risk summary built")
	return s, nil
}

// fillDepartmentContext adds headcount and average logged hours from the
// employee and workload tables. Headcount counts every employee row in the
// department, active or not.
func (g *Generator) fillDepartmentContext(ctx context.Context, s *types.RiskSummary, department string) error {
	employees, err := g.src.FetchEmployees(ctx)
	if err != nil {
		return err
	}
	dept := strings.TrimSpace(department)
	ids := make(map[string]struct{})
	for i := range employees {
		e := &employees[i]
		if !strings.EqualFold(strings.TrimSpace(e.Department), dept) {
			continue
		}
		s.TotalEmployees++
		if e.EmployeeID != "" {
			ids[e.EmployeeID] = struct{}{}
		}
	}

	workload, err := g.src.FetchWorkload(ctx)
	if err != nil {
		return err
	}
	var hours []float64
	for i := range workload {
		w := &workload[i]
		if w.HoursLogged == nil {
			continue
		}
		if _, ok := ids[w.EmployeeID]; !ok {
			continue
		}
		hours = append(hours, *w.HoursLogged)
	}
	s.AvgWorkload = roundedMean(hours)
	return nil
}

// filterSurvey keeps rows matching the query: department equality and
// quarter substring match fold case, the year filter needs a parsable
// submission date.
func filterSurvey(rows []types.SurveyRecord, q Query) []types.SurveyRecord {
	dept := strings.TrimSpace(q.Department)
	quarter := strings.ToLower(strings.TrimSpace(q.Quarter))

	var out []types.SurveyRecord
	for i := range rows {
		r := rows[i]
		if dept != "" && !strings.EqualFold(strings.TrimSpace(r.Department), dept) {
			continue
		}
		if quarter != "" && !strings.Contains(strings.ToLower(r.Quarter), quarter) {
			continue
		}
		if q.Year != 0 {
			t, err := time.Parse("2006-01-02", strings.TrimSpace(r.SubmissionDate))
			if err != nil || t.Year() != q.Year {
				continue
			}
		}
		out = append(out, r)
	}
	return out
}

// hasBadScore is true when any answered core score sits at or below the
// bad-score threshold.
func hasBadScore(r *types.SurveyRecord) bool {
	for _, v := range []*float64{r.JobSatisfaction, r.WorkLifeBalance, r.ManagerSupport, r.GrowthOpportunities, r.ENPS} {
		if v != nil && *v <= badScoreThreshold {
			return true
		}
	}
	return false
}

// badCategories collects distinct category labels from bad-score rows in
// first-seen order, up to limit.
func badCategories(rows []types.SurveyRecord, limit int) []string {
	seen := make(map[string]struct{})
	var out []string
	for i := range rows {
		r := &rows[i]
		if !hasBadScore(r) {
			continue
		}
		c := strings.TrimSpace(r.Categories)
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
		if len(out) == limit {
			break
		}
	}
	return out
}

// badComments returns rephrased comments from rows with bad sentiment or a
// bad score, up to limit.
func badComments(rows []types.SurveyRecord, limit int) []string {
	var out []string
	for i := range rows {
		r := &rows[i]
		badSentiment := r.SentimentScore != nil && *r.SentimentScore <= badScoreThreshold
		if !badSentiment && !hasBadScore(r) {
			continue
		}
		c := strings.TrimSpace(r.RephrasedComment)
		if c == "" {
			continue
		}
		out = append(out, c)
		if len(out) == limit {
			break
		}
	}
	return out
}

func roundedMean(vals []float64) *float64 {
	m := risk.Mean(vals)
	if m == nil {
		return nil
	}
	v := risk.Round2(*m)
	return &v
}
