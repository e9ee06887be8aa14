package season

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

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

func ip(v int) *int { return &v }

// row builds a survey record with identical 1-10 scores across the four
// engagement questions.
func row(dept, date, eventSeason string, score, enps, sentiment float64, label string) types.SurveyRecord {
	return types.SurveyRecord{
		Department:          dept,
		Quarter:             "Q1",
		SubmissionDate:      date,
		JobSatisfaction:     fp(score),
		WorkLifeBalance:     fp(score),
		ManagerSupport:      fp(score),
		GrowthOpportunities: fp(score),
		ENPS:                fp(enps),
		SentimentScore:      fp(sentiment),
		SentimentLabel:      label,
		EventSeason:         eventSeason,
	}
}

func TestInsights(t *testing.T) {
	rows := []types.SurveyRecord{
		row("Engineering", "2025-01-10", "festival: Diwali", 8, 9, 0.8, "positive"),
		row("Engineering", "2025-01-11", "festival: Diwali", 8, 9, 0.6, "positive"),
		row("Engineering", "2025-01-12", "festival: Diwali", 8, 9, 0.7, "positive"),
		row("Engineering", "2025-02-01", "normal day", 6, 7, 0.1, "neutral"),
		row("Engineering", "2025-02-02", "normal day", 6, 7, 0.3, "neutral"),
		row("Engineering", "2025-01-05", "pre-festival: Diwali", 7, 8, 0.5, "positive"),
		row("Engineering", "2025-01-20", "post-festival: Diwali", 5, 7, 0.2, "neutral"),
		row("Engineering", "2024-11-01", "festival: Diwali", 2, 2, -0.9, "negative"),
		row("Engineering", "bad-date", "normal day", 6, 7, 0.0, "neutral"),
		row("Sales", "2025-03-01", "normal day", 6, 7, 0.0, "neutral"),
	}

	a := newAnalyzer(rows)
	resp, err := a.Insights(context.Background(), InsightsQuery{Department: "engineering", Year: ip(2025)})
	require.NoError(t, err)

	assert.Equal(t, InsightsOverview{
		TotalResponses:        7,
		FestivalResponses:     3,
		PreFestivalResponses:  1,
		PostFestivalResponses: 1,
		NormalDayResponses:    2,
	}, resp.Overview)

	require.Len(t, resp.SeasonalBreakdown, 4)
	assert.Equal(t, "festival", resp.SeasonalBreakdown[0].SeasonCategory)
	assert.Equal(t, "Diwali", resp.SeasonalBreakdown[0].HolidayName)
	assert.Equal(t, 3, resp.SeasonalBreakdown[0].ResponseCount)
	require.NotNil(t, resp.SeasonalBreakdown[0].AvgSentiment)
	assert.Equal(t, 0.7, *resp.SeasonalBreakdown[0].AvgSentiment)

	assert.Equal(t, "normal", resp.SeasonalBreakdown[1].SeasonCategory)
	assert.Equal(t, "N/A", resp.SeasonalBreakdown[1].HolidayName)
	assert.Equal(t, 2, resp.SeasonalBreakdown[1].ResponseCount)

	// Equal-sized buckets keep their key order.
	assert.Equal(t, "post-festival", resp.SeasonalBreakdown[2].SeasonCategory)
	assert.Equal(t, "pre-festival", resp.SeasonalBreakdown[3].SeasonCategory)

	fn := resp.ComparativeAnalysis.FestivalVsNormal
	require.NotNil(t, fn.SentimentDiff)
	assert.Equal(t, 0.5, *fn.SentimentDiff)
	require.NotNil(t, fn.EngagementDiff)
	assert.Equal(t, 2.0, *fn.EngagementDiff)
	require.NotNil(t, fn.BurnoutDiff)
	assert.Equal(t, 0.0, *fn.BurnoutDiff)
	require.NotNil(t, fn.TurnoverDiff)
	assert.Equal(t, 0.0, *fn.TurnoverDiff)

	pp := resp.ComparativeAnalysis.PreVsPostFestival
	require.NotNil(t, pp.SentimentDiff)
	assert.Equal(t, 0.3, *pp.SentimentDiff)
	require.NotNil(t, pp.EngagementDiff)
	assert.Equal(t, 2.0, *pp.EngagementDiff)

	require.Len(t, resp.TopFestivals, 1)
	assert.Equal(t, "Diwali", resp.TopFestivals[0].HolidayName)
	assert.Equal(t, 5, resp.TopFestivals[0].TotalResponses)
	require.NotNil(t, resp.TopFestivals[0].AvgSentiment)
	assert.Equal(t, 0.56, *resp.TopFestivals[0].AvgSentiment)
	require.NotNil(t, resp.TopFestivals[0].AvgEngagement)
	assert.Equal(t, 7.2, *resp.TopFestivals[0].AvgEngagement)
	assert.NotNil(t, resp.TopFestivals[0].ImpactScore)

	require.NotNil(t, resp.FiltersApplied.Department)
	assert.Equal(t, "engineering", *resp.FiltersApplied.Department)
	assert.Equal(t, 2025, resp.FiltersApplied.Year)
	assert.Nil(t, resp.FiltersApplied.Quarter)
	assert.Nil(t, resp.FiltersApplied.SeasonType)
}

func TestInsightsSeasonTypeFilter(t *testing.T) {
	rows := []types.SurveyRecord{
		row("Engineering", "2025-01-10", "festival: Diwali", 8, 9, 0.8, "positive"),
		row("Engineering", "2025-02-01", "normal day", 6, 7, 0.1, "neutral"),
		row("Engineering", "2025-01-05", "Festival: Holi", 7, 8, 0.5, "positive"),
	}

	a := newAnalyzer(rows)
	resp, err := a.Insights(context.Background(), InsightsQuery{Year: ip(2025), SeasonType: "festival"})
	require.NoError(t, err)

	assert.Equal(t, 2, resp.Overview.TotalResponses)
	assert.Equal(t, 2, resp.Overview.FestivalResponses)
	assert.Equal(t, 0, resp.Overview.NormalDayResponses)
	assert.Len(t, resp.SeasonalBreakdown, 2)
	require.NotNil(t, resp.FiltersApplied.SeasonType)
	assert.Equal(t, "festival", *resp.FiltersApplied.SeasonType)
}

func TestInsightsDefaultsToCurrentYear(t *testing.T) {
	now := time.Now()
	rows := []types.SurveyRecord{
		row("Engineering", now.Format("2006-01-02"), "normal day", 6, 7, 0.1, "neutral"),
		row("Engineering", "1999-01-01", "normal day", 6, 7, 0.1, "neutral"),
	}

	a := newAnalyzer(rows)
	resp, err := a.Insights(context.Background(), InsightsQuery{})
	require.NoError(t, err)

	assert.Equal(t, 1, resp.Overview.TotalResponses)
	assert.Equal(t, now.Year(), resp.FiltersApplied.Year)
}

func TestInsightsImpactScore(t *testing.T) {
	t.Run("positive impact", func(t *testing.T) {
		rows := []types.SurveyRecord{row("Eng", "2025-01-10", "festival: Eid", 5, 9, 0.0, "neutral")}
		resp, err := newAnalyzer(rows).Insights(context.Background(), InsightsQuery{Year: ip(2025)})
		require.NoError(t, err)
		require.Len(t, resp.TopFestivals, 1)
		require.NotNil(t, resp.TopFestivals[0].ImpactScore)
		// 0.4*((0+1)*5) + 0.6*((5-1)*2.5)
		assert.Equal(t, 8.0, *resp.TopFestivals[0].ImpactScore)
	})

	t.Run("zero impact stays nil", func(t *testing.T) {
		rows := []types.SurveyRecord{row("Eng", "2025-01-10", "festival: Eid", 1, 9, -1.0, "negative")}
		resp, err := newAnalyzer(rows).Insights(context.Background(), InsightsQuery{Year: ip(2025)})
		require.NoError(t, err)
		require.Len(t, resp.TopFestivals, 1)
		assert.Nil(t, resp.TopFestivals[0].ImpactScore)
	})
}

func TestInsightsPropagatesSourceError(t *testing.T) {
	boom := errors.New("boom")
	a := NewAnalyzer(&stubSource{err: boom}, logger.New())
	_, err := a.Insights(context.Background(), InsightsQuery{})
	assert.ErrorIs(t, err, boom)
}

func TestTopEvents(t *testing.T) {
	rows := []types.SurveyRecord{
		row("Engineering", "2025-01-10", "festival: Diwali", 8, 9, 0.8, "positive"),
		row("Engineering", "2025-01-11", "festival: Diwali", 8, 9, 0.6, "positive"),
		row("Engineering", "2025-01-12", "pre-festival: Diwali", 7, 8, 0.4, "positive"),
		row("Engineering", "2025-02-01", "normal day", 6, 7, 0.1, "neutral"),
		row("Engineering", "2025-02-02", "normal day", 6, 7, -0.3, "negative"),
		row("Engineering", "2025-03-01", "festival: Holi", 7, 8, 0.5, "positive"),
		row("Engineering", "2024-11-01", "festival: Diwali", 8, 9, 0.9, "positive"),
		row("Engineering", "bad-date", "normal day", 6, 7, 0.0, "neutral"),
	}

	a := newAnalyzer(rows)

	t.Run("all years when unset", func(t *testing.T) {
		resp, err := a.TopEvents(context.Background(), TopEventsQuery{})
		require.NoError(t, err)

		assert.Equal(t, 8, resp.Overview.TotalResponses)
		assert.Equal(t, 3, resp.Overview.UniqueEvents)
		assert.Equal(t, 8, resp.Overview.SentimentBreakdown.TotalLabeled)

		require.Len(t, resp.TopEvents, 3)
		assert.Equal(t, "Diwali", resp.TopEvents[0].EventName)
		assert.Equal(t, 4, resp.TopEvents[0].TotalResponses)
		assert.Equal(t, "Normal Day", resp.TopEvents[1].EventName)
		assert.Equal(t, 3, resp.TopEvents[1].TotalResponses)
		assert.Equal(t, "Holi", resp.TopEvents[2].EventName)

		require.NotNil(t, resp.TopEvents[2].AvgSentimentScore)
		assert.Equal(t, 0.5, *resp.TopEvents[2].AvgSentimentScore)
		assert.Equal(t, 1, resp.TopEvents[2].SentimentBreakdown.PositiveCount)

		assert.Nil(t, resp.FiltersApplied.Year)
		assert.Nil(t, resp.FiltersApplied.Department)
	})

	t.Run("explicit year narrows", func(t *testing.T) {
		resp, err := a.TopEvents(context.Background(), TopEventsQuery{Year: ip(2025)})
		require.NoError(t, err)

		assert.Equal(t, 6, resp.Overview.TotalResponses)
		require.Len(t, resp.TopEvents, 3)
		assert.Equal(t, "Diwali", resp.TopEvents[0].EventName)
		assert.Equal(t, 3, resp.TopEvents[0].TotalResponses)
		assert.Equal(t, 2, resp.TopEvents[1].TotalResponses)
		require.NotNil(t, resp.FiltersApplied.Year)
		assert.Equal(t, 2025, *resp.FiltersApplied.Year)
	})
}

func TestTopEventsCapAtTen(t *testing.T) {
	var rows []types.SurveyRecord
	for i := 0; i < 12; i++ {
		rows = append(rows, row("Eng", "2025-01-10", fmt.Sprintf("festival: Event %d", i), 7, 8, 0.5, "positive"))
	}

	resp, err := newAnalyzer(rows).TopEvents(context.Background(), TopEventsQuery{})
	require.NoError(t, err)
	assert.Equal(t, 12, resp.Overview.UniqueEvents)
	assert.Len(t, resp.TopEvents, 10)
}
