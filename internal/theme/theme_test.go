package theme

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"wellbeing-insights-go/internal/logger"
	"wellbeing-insights-go/internal/types"
)

type stubSource struct {
	rows []types.SurveyRecord
	err  error
}

func (s *stubSource) FetchSurvey(ctx context.Context) ([]types.SurveyRecord, error) {
	return s.rows, s.err
}

func newAnalyzer(rows []types.SurveyRecord) *Analyzer {
	return NewAnalyzer(&stubSource{rows: rows}, logger.New())
}

func fp(v float64) *float64 { return &v }
func ip(v int) *int         { return &v }

func themedRow(date, quarter, category, label string, js, wlb, mgr, enps float64) types.SurveyRecord {
	return types.SurveyRecord{
		Department:      "Engineering",
		Quarter:         quarter,
		SubmissionDate:  date,
		Categories:      category,
		SentimentLabel:  label,
		JobSatisfaction: fp(js),
		WorkLifeBalance: fp(wlb),
		ManagerSupport:  fp(mgr),
		ENPS:            fp(enps),
	}
}

func TestInsights(t *testing.T) {
	rows := []types.SurveyRecord{
		themedRow("2025-04-10", "Q2", "Workload", "POSITIVE", 8, 7, 6, 9),
		themedRow("2025-04-11", "Q2", "Workload", "positive", 6, 5, 4, 7),
		themedRow("2025-04-12", "Q2", "Workload", "negative", 4, 3, 2, 3),
		themedRow("2025-05-01", "Q2", "Management", "neutral", 5, 5, 5, 5),
		{Department: "Engineering", Quarter: "Q2", SubmissionDate: "2025-05-02", SentimentLabel: "positive"},
		themedRow("2025-01-10", "Q1", "Workload", "positive", 7, 6, 5, 8),
		themedRow("2025-01-11", "Q1", "Workload", "negative", 5, 4, 3, 6),
		themedRow("2024-04-10", "Q2", "Workload", "positive", 1, 1, 1, 1),
		themedRow("2025-07-10", "Q3", "Workload", "positive", 1, 1, 1, 1),
	}

	a := newAnalyzer(rows)
	resp, err := a.Insights(context.Background(), Query{Year: ip(2025), Quarter: "Q2"})
	require.NoError(t, err)

	assert.Equal(t, 2, resp.TotalThemesDetected)
	assert.Equal(t, 4, resp.TotalResponsesProcessed)
	assert.Equal(t, SentimentCounts{Positive: 2, Negative: 1, Neutral: 1}, resp.GlobalSentiment)
	assert.Equal(t, "Quarter", resp.PeriodCompared)

	require.Len(t, resp.Data, 2)

	workload := resp.Data[0]
	assert.Equal(t, "Workload", workload.Category)
	assert.Equal(t, 3, workload.ResponseCount)
	assert.Equal(t, "Positive", workload.DominantSentiment)
	assert.Equal(t, SentimentCounts{Positive: 2, Negative: 1}, workload.SentimentBreakdown)
	assert.Equal(t, 6.0, workload.Insights.AvgJobSatisfaction)
	assert.Equal(t, 0.0, workload.Insights.AvgJobSatisfactionDiff)
	assert.Equal(t, 5.0, workload.Insights.AvgWorkLifeBalance)
	assert.Equal(t, 4.0, workload.Insights.AvgManagerSupport)
	assert.Equal(t, 6.33, workload.Insights.AvgENPS)
	// Previous quarter mean was 7.0.
	assert.Equal(t, -0.67, workload.Insights.AvgENPSDiff)

	management := resp.Data[1]
	assert.Equal(t, "Management", management.Category)
	assert.Equal(t, 1, management.ResponseCount)
	assert.Equal(t, "Neutral", management.DominantSentiment)
	assert.Equal(t, 5.0, management.Insights.AvgManagerSupport)
	// No Management rows in the previous quarter.
	assert.Equal(t, 0.0, management.Insights.AvgManagerSupportDiff)
}

func TestInsightsLimit(t *testing.T) {
	rows := []types.SurveyRecord{
		themedRow("2025-04-10", "Q2", "Workload", "positive", 8, 7, 6, 9),
		themedRow("2025-04-11", "Q2", "Workload", "positive", 6, 5, 4, 7),
		themedRow("2025-05-01", "Q2", "Management", "neutral", 5, 5, 5, 5),
	}

	resp, err := newAnalyzer(rows).Insights(context.Background(), Query{Year: ip(2025), Quarter: "Q2", Limit: 1})
	require.NoError(t, err)

	assert.Equal(t, 2, resp.TotalThemesDetected)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "Workload", resp.Data[0].Category)
}

func TestInsightsYearOnlyComparesPreviousYear(t *testing.T) {
	rows := []types.SurveyRecord{
		themedRow("2025-04-10", "Q2", "Workload", "positive", 8, 8, 8, 8),
		themedRow("2024-02-10", "Q1", "Workload", "positive", 6, 6, 6, 6),
		themedRow("2024-08-10", "Q3", "Workload", "positive", 4, 4, 4, 4),
	}

	resp, err := newAnalyzer(rows).Insights(context.Background(), Query{Year: ip(2025)})
	require.NoError(t, err)

	assert.Equal(t, "Year", resp.PeriodCompared)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, 8.0, resp.Data[0].Insights.AvgJobSatisfaction)
	// Previous year mean over both quarters was 5.0.
	assert.Equal(t, 3.0, resp.Data[0].Insights.AvgJobSatisfactionDiff)
}

func TestInsightsAllDisablesFilters(t *testing.T) {
	rows := []types.SurveyRecord{
		themedRow("2025-04-10", "Q2", "Workload", "positive", 8, 7, 6, 9),
		{Department: "Sales", Quarter: "Q2", SubmissionDate: "2025-04-11", Categories: "Pay", SentimentLabel: "negative"},
	}

	resp, err := newAnalyzer(rows).Insights(context.Background(), Query{Department: "All", SentimentLabel: "all"})
	require.NoError(t, err)

	assert.Equal(t, 2, resp.TotalThemesDetected)
	assert.Equal(t, "None", resp.PeriodCompared)
}

func TestInsightsSentimentFilter(t *testing.T) {
	rows := []types.SurveyRecord{
		themedRow("2025-04-10", "Q2", "Workload", "positive", 8, 7, 6, 9),
		themedRow("2025-04-11", "Q2", "Workload", "negative", 2, 2, 2, 2),
	}

	resp, err := newAnalyzer(rows).Insights(context.Background(), Query{SentimentLabel: "Positive"})
	require.NoError(t, err)

	assert.Equal(t, 1, resp.TotalResponsesProcessed)
	assert.Equal(t, SentimentCounts{Positive: 1}, resp.GlobalSentiment)
}

func TestInsightsNoMatches(t *testing.T) {
	rows := []types.SurveyRecord{
		themedRow("2025-04-10", "Q2", "Workload", "positive", 8, 7, 6, 9),
	}

	resp, err := newAnalyzer(rows).Insights(context.Background(), Query{Year: ip(1990)})
	require.NoError(t, err)

	assert.Equal(t, 0, resp.TotalThemesDetected)
	assert.Equal(t, 0, resp.TotalResponsesProcessed)
	assert.Equal(t, SentimentCounts{}, resp.GlobalSentiment)
	assert.Equal(t, "None", resp.PeriodCompared)
	assert.Empty(t, resp.Data)
}

func TestInsightsPropagatesSourceError(t *testing.T) {
	boom := errors.New("boom")
	a := NewAnalyzer(&stubSource{err: boom}, logger.New())
	_, err := a.Insights(context.Background(), Query{})
	assert.ErrorIs(t, err, boom)
}

func TestPreviousPeriod(t *testing.T) {
	tests := []struct {
		name        string
		year        int
		quarter     string
		wantYear    int
		wantQuarter string
	}{
		{"mid year quarter", 2025, "Q3", 2025, "Q2"},
		{"first quarter wraps", 2025, "Q1", 2024, "Q4"},
		{"lowercase quarter", 2025, "q2", 2025, "Q1"},
		{"no quarter", 2025, "", 2024, ""},
		{"unparsable quarter", 2025, "QX", 2024, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			y, q := previousPeriod(tc.year, tc.quarter)
			assert.Equal(t, tc.wantYear, y)
			assert.Equal(t, tc.wantQuarter, q)
		})
	}
}

func TestDominantSentiment(t *testing.T) {
	tests := []struct {
		name   string
		counts SentimentCounts
		want   string
	}{
		{"clear winner", SentimentCounts{Positive: 1, Negative: 5, Neutral: 2}, "Negative"},
		{"tie goes to earlier label", SentimentCounts{Positive: 3, Negative: 3}, "Positive"},
		{"all zero", SentimentCounts{}, "Unknown"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, dominantSentiment(tc.counts))
		})
	}
}

func TestCountSentimentFoldsCaseAndSkipsUnknownLabels(t *testing.T) {
	rows := []types.SurveyRecord{
		{SentimentLabel: " Positive "},
		{SentimentLabel: "NEGATIVE"},
		{SentimentLabel: "neutral"},
		{SentimentLabel: "meh"},
		{SentimentLabel: ""},
	}
	assert.Equal(t, SentimentCounts{Positive: 1, Negative: 1, Neutral: 1}, countSentiment(rows))
}

func TestScoreEntry(t *testing.T) {
	val, d := scoreEntry(fp(6.333333), fp(7.0))
	assert.Equal(t, 6.33, val)
	assert.Equal(t, -0.67, d)

	val, d = scoreEntry(nil, fp(4.0))
	assert.Equal(t, 0.0, val)
	assert.Equal(t, -4.0, d)

	val, d = scoreEntry(fp(5.0), nil)
	assert.Equal(t, 5.0, val)
	assert.Equal(t, 0.0, d)
}
