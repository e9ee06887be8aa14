package theme

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"wellbeing-insights-go/internal/logger"
	"wellbeing-insights-go/internal/risk"
	"wellbeing-insights-go/internal/types"
)

// Source supplies survey rows; thematic views need no other table.
type Source interface {
	FetchSurvey(ctx context.Context) ([]types.SurveyRecord, error)
}

type Analyzer struct {
	src Source
	log *logrus.Entry
}

func NewAnalyzer(src Source, lg *logger.Logger) *Analyzer {
	return &Analyzer{src: src, log: lg.Component("theme")}
}

// Query filters the thematic views. A department or sentiment label of
// "all" is treated the same as leaving the filter unset.
type Query struct {
	Year           *int
	Quarter        string
	Department     string
	SentimentLabel string
	Limit          int
}

// SentimentCounts tallies labeled responses under canonical Title-Case
// keys. Counting is case-insensitive on the stored label.
type SentimentCounts struct {
	Positive int `json:"Positive"`
	Negative int `json:"Negative"`
	Neutral  int `json:"Neutral"`
}

// CategoryScores carries the four per-category score means next to their
// period-over-period deltas. Missing means collapse to zero here, the
// caller-facing contract predates the sparse null encoding used by the
// department aggregation.
type CategoryScores struct {
	AvgJobSatisfaction     float64 `json:"avg_job_satisfaction"`
	AvgJobSatisfactionDiff float64 `json:"avg_job_satisfaction_diff"`
	AvgWorkLifeBalance     float64 `json:"avg_work_life_balance"`
	AvgWorkLifeBalanceDiff float64 `json:"avg_work_life_balance_diff"`
	AvgManagerSupport      float64 `json:"avg_manager_support"`
	AvgManagerSupportDiff  float64 `json:"avg_manager_support_diff"`
	AvgENPS                float64 `json:"avg_enps"`
	AvgENPSDiff            float64 `json:"avg_enps_diff"`
}

type CategoryInsight struct {
	Category           string          `json:"category"`
	ResponseCount      int             `json:"response_count"`
	DominantSentiment  string          `json:"dominant_sentiment"`
	SentimentBreakdown SentimentCounts `json:"sentiment_breakdown"`
	Insights           CategoryScores  `json:"insights"`
}

type InsightsResponse struct {
	TotalThemesDetected     int               `json:"total_themes_detected"`
	TotalResponsesProcessed int               `json:"total_responses_processed"`
	GlobalSentiment         SentimentCounts   `json:"global_sentiment"`
	PeriodCompared          string            `json:"period_compared"`
	Data                    []CategoryInsight `json:"data"`
}

// Insights groups categorized responses by theme label and reports each
// theme's sentiment profile and score means, with deltas against the
// previous quarter or year when a year filter is active.
func (a *Analyzer) Insights(ctx context.Context, q Query) (*InsightsResponse, error) {
	survey, err := a.src.FetchSurvey(ctx)
	if err != nil {
		return nil, err
	}

	limit := q.Limit
	if limit <= 0 {
		limit = 5
	}

	current := categorized(filterRows(survey, q.Year, q.Quarter, q.Department, q.SentimentLabel))
	if len(current) == 0 {
		return &InsightsResponse{PeriodCompared: "None", Data: []CategoryInsight{}}, nil
	}

	byCategory := make(map[string][]types.SurveyRecord)
	var categories []string
	for _, r := range current {
		c := strings.TrimSpace(r.Categories)
		if _, seen := byCategory[c]; !seen {
			categories = append(categories, c)
		}
		byCategory[c] = append(byCategory[c], r)
	}
	sort.Strings(categories)

	// Previous-period score means feed the per-theme deltas; without a
	// year filter there is no anchor to compare against.
	previous := make(map[string]scoreMeans)
	if q.Year != nil {
		prevYear, prevQuarter := previousPeriod(*q.Year, q.Quarter)
		for _, r := range categorized(filterRows(survey, &prevYear, prevQuarter, q.Department, q.SentimentLabel)) {
			c := strings.TrimSpace(r.Categories)
			m := previous[c]
			m.add(&r)
			previous[c] = m
		}
	}

	data := make([]CategoryInsight, 0, len(categories))
	for _, c := range categories {
		group := byCategory[c]
		breakdown := countSentiment(group)

		var cur scoreMeans
		for i := range group {
			cur.add(&group[i])
		}
		prev, hasPrev := previous[c]

		data = append(data, CategoryInsight{
			Category:           c,
			ResponseCount:      len(group),
			DominantSentiment:  dominantSentiment(breakdown),
			SentimentBreakdown: breakdown,
			Insights:           scorePayload(cur, prev, hasPrev),
		})
	}
	sort.SliceStable(data, func(i, j int) bool { return data[i].ResponseCount > data[j].ResponseCount })
	if len(data) > limit {
		data = data[:limit]
	}

	resp := &InsightsResponse{
		TotalThemesDetected:     len(categories),
		TotalResponsesProcessed: len(current),
		GlobalSentiment:         countSentiment(current),
		PeriodCompared:          periodCompared(q),
		Data:                    data,
	}
	a.log.WithFields(logrus.Fields{"themes": resp.TotalThemesDetected, "responses": resp.TotalResponsesProcessed}).Debug("theme insights built")
	return resp, nil
}

func periodCompared(q Query) string {
	switch {
	case q.Quarter != "":
		return "Quarter"
	case q.Year != nil:
		return "Year"
	default:
		return "None"
	}
}

// previousPeriod steps one quarter back when a quarter anchor is given,
// wrapping Q1 into the prior year's Q4, and one whole year back otherwise.
func previousPeriod(year int, quarter string) (int, string) {
	if quarter != "" {
		q := strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(quarter)), "Q")
		if n, err := strconv.Atoi(q); err == nil {
			if n == 1 {
				return year - 1, "Q4"
			}
			return year, fmt.Sprintf("Q%d", n-1)
		}
	}
	return year - 1, ""
}

// filterRows narrows survey rows by submission year, quarter, department
// and sentiment label. "all" disables the department and sentiment
// filters, mirroring how callers spell an unset dropdown.
func filterRows(survey []types.SurveyRecord, year *int, quarter, department, sentiment string) []types.SurveyRecord {
	out := make([]types.SurveyRecord, 0, len(survey))
	for _, r := range survey {
		if year != nil {
			t, err := time.Parse("2006-01-02", r.SubmissionDate)
			if err != nil || t.Year() != *year {
				continue
			}
		}
		if quarter != "" && !strings.EqualFold(strings.TrimSpace(r.Quarter), strings.TrimSpace(quarter)) {
			continue
		}
		if department != "" && !strings.EqualFold(department, "all") &&
			!strings.EqualFold(strings.TrimSpace(r.Department), strings.TrimSpace(department)) {
			continue
		}
		if sentiment != "" && !strings.EqualFold(sentiment, "all") &&
			!strings.EqualFold(strings.TrimSpace(r.SentimentLabel), strings.TrimSpace(sentiment)) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func categorized(rows []types.SurveyRecord) []types.SurveyRecord {
	out := rows[:0:0]
	for _, r := range rows {
		if strings.TrimSpace(r.Categories) != "" {
			out = append(out, r)
		}
	}
	return out
}

func countSentiment(rows []types.SurveyRecord) SentimentCounts {
	var c SentimentCounts
	for i := range rows {
		switch strings.ToLower(strings.TrimSpace(rows[i].SentimentLabel)) {
		case "positive":
			c.Positive++
		case "negative":
			c.Negative++
		case "neutral":
			c.Neutral++
		}
	}
	return c
}

// dominantSentiment picks the largest count, ties going to the earlier
// canonical label. All-zero counts report "Unknown".
func dominantSentiment(c SentimentCounts) string {
	best, name := 0, "Unknown"
	for _, s := range []struct {
		label string
		n     int
	}{
		{"Positive", c.Positive},
		{"Negative", c.Negative},
		{"Neutral", c.Neutral},
	} {
		if s.n > best {
			best, name = s.n, s.label
		}
	}
	return name
}

// scoreMeans accumulates the four comparable score columns over a group.
type scoreMeans struct {
	jobSat, wlb, mgr, enps []float64
}

func (m *scoreMeans) add(r *types.SurveyRecord) {
	if r.JobSatisfaction != nil {
		m.jobSat = append(m.jobSat, *r.JobSatisfaction)
	}
	if r.WorkLifeBalance != nil {
		m.wlb = append(m.wlb, *r.WorkLifeBalance)
	}
	if r.ManagerSupport != nil {
		m.mgr = append(m.mgr, *r.ManagerSupport)
	}
	if r.ENPS != nil {
		m.enps = append(m.enps, *r.ENPS)
	}
}

func scorePayload(cur, prev scoreMeans, hasPrev bool) CategoryScores {
	var p CategoryScores
	p.AvgJobSatisfaction, p.AvgJobSatisfactionDiff = scoreEntry(risk.Mean(cur.jobSat), prevMean(prev.jobSat, hasPrev))
	p.AvgWorkLifeBalance, p.AvgWorkLifeBalanceDiff = scoreEntry(risk.Mean(cur.wlb), prevMean(prev.wlb, hasPrev))
	p.AvgManagerSupport, p.AvgManagerSupportDiff = scoreEntry(risk.Mean(cur.mgr), prevMean(prev.mgr, hasPrev))
	p.AvgENPS, p.AvgENPSDiff = scoreEntry(risk.Mean(cur.enps), prevMean(prev.enps, hasPrev))
	return p
}

func prevMean(values []float64, hasPrev bool) *float64 {
	if !hasPrev {
		return nil
	}
	return risk.Mean(values)
}

// scoreEntry rounds the current mean (zero when missing) and diffs it
// against the unrounded previous mean when one exists.
func scoreEntry(cur, prev *float64) (float64, float64) {
	var val float64
	if cur != nil {
		val = risk.Round2(*cur)
	}
	var d float64
	if prev != nil {
		d = risk.Round2(val - *prev)
	}
	return val, d
}
