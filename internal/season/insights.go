package season

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"wellbeing-insights-go/internal/logger"
	"wellbeing-insights-go/internal/risk"
	"wellbeing-insights-go/internal/types"
)

// Source supplies survey rows; the seasonal views need no other table.
type Source interface {
	FetchSurvey(ctx context.Context) ([]types.SurveyRecord, error)
}

type Analyzer struct {
	src Source
	log *logrus.Entry
}

func NewAnalyzer(src Source, lg *logger.Logger) *Analyzer {
	return &Analyzer{src: src, log: lg.Component("season")}
}

// InsightsQuery filters the seasonal insight view. A nil Year means the
// current calendar year.
type InsightsQuery struct {
	Department string
	Quarter    string
	Year       *int
	SeasonType string
}

type InsightsOverview struct {
	TotalResponses        int `json:"total_responses"`
	FestivalResponses     int `json:"festival_responses"`
	PreFestivalResponses  int `json:"pre_festival_responses"`
	PostFestivalResponses int `json:"post_festival_responses"`
	NormalDayResponses    int `json:"normal_day_responses"`
}

type BreakdownEntry struct {
	Metrics
	SeasonCategory string `json:"season_category"`
	HolidayName    string `json:"holiday_name"`
}

type FestivalVsNormal struct {
	SentimentDiff  *float64 `json:"sentiment_diff"`
	EngagementDiff *float64 `json:"engagement_diff"`
	BurnoutDiff    *float64 `json:"burnout_diff"`
	TurnoverDiff   *float64 `json:"turnover_diff"`
}

type PreVsPostFestival struct {
	SentimentDiff  *float64 `json:"sentiment_diff"`
	EngagementDiff *float64 `json:"engagement_diff"`
}

type ComparativeAnalysis struct {
	FestivalVsNormal  FestivalVsNormal  `json:"festival_vs_normal"`
	PreVsPostFestival PreVsPostFestival `json:"pre_vs_post_festival"`
}

type TopFestival struct {
	HolidayName    string   `json:"holiday_name"`
	TotalResponses int      `json:"total_responses"`
	AvgSentiment   *float64 `json:"avg_sentiment"`
	AvgEngagement  *float64 `json:"avg_engagement"`
	ImpactScore    *float64 `json:"impact_score"`
}

type InsightsFilters struct {
	Department *string `json:"department"`
	Year       int     `json:"year"`
	Quarter    *string `json:"quarter"`
	SeasonType *string `json:"season_type"`
}

type InsightsResponse struct {
	Overview            InsightsOverview    `json:"overview"`
	SeasonalBreakdown   []BreakdownEntry    `json:"seasonal_breakdown"`
	ComparativeAnalysis ComparativeAnalysis `json:"comparative_analysis"`
	TopFestivals        []TopFestival       `json:"top_festivals"`
	FiltersApplied      InsightsFilters     `json:"filters_applied"`
}

type parsedRow struct {
	rec   types.SurveyRecord
	label Label
}

// Insights breaks the year's responses down by parsed season descriptor,
// compares festival periods against normal days and ranks festivals by a
// weighted sentiment/engagement impact score.
func (a *Analyzer) Insights(ctx context.Context, q InsightsQuery) (*InsightsResponse, error) {
	survey, err := a.src.FetchSurvey(ctx)
	if err != nil {
		return nil, err
	}

	year := time.Now().Year()
	if q.Year != nil {
		year = *q.Year
	}

	rows := filterRows(survey, &year, q.Department, q.Quarter)

	parsed := make([]parsedRow, 0, len(rows))
	for _, r := range rows {
		parsed = append(parsed, parsedRow{rec: r, label: ParseLabel(r.EventSeason)})
	}

	if q.SeasonType != "" {
		filtered := parsed[:0]
		for _, p := range parsed {
			if typeIs(p.label, q.SeasonType) {
				filtered = append(filtered, p)
			}
		}
		parsed = filtered
	}

	resp := &InsightsResponse{
		Overview:            overviewOf(parsed),
		SeasonalBreakdown:   seasonalBreakdown(parsed),
		ComparativeAnalysis: comparePeriods(parsed),
		TopFestivals:        topFestivals(parsed),
		FiltersApplied: InsightsFilters{
			Department: optString(q.Department),
			Year:       year,
			Quarter:    optString(q.Quarter),
			SeasonType: optString(q.SeasonType),
		},
	}

	a.log.WithFields(logrus.Fields{"year": year, "responses": resp.Overview.TotalResponses}).Debug("seasonal insights built")
	return resp, nil
}

func optString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// filterRows narrows survey rows by submission year, department and
// quarter. A nil year skips the year filter entirely.
func filterRows(survey []types.SurveyRecord, year *int, department, quarter string) []types.SurveyRecord {
	out := make([]types.SurveyRecord, 0, len(survey))
	for _, r := range survey {
		if year != nil {
			y := submissionYear(r.SubmissionDate)
			if y == nil || *y != *year {
				continue
			}
		}
		if department != "" && !strings.EqualFold(strings.TrimSpace(r.Department), strings.TrimSpace(department)) {
			continue
		}
		if quarter != "" && !strings.EqualFold(strings.TrimSpace(r.Quarter), strings.TrimSpace(quarter)) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func submissionYear(date string) *int {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return nil
	}
	y := t.Year()
	return &y
}

func overviewOf(parsed []parsedRow) InsightsOverview {
	o := InsightsOverview{TotalResponses: len(parsed)}
	for _, p := range parsed {
		switch {
		case typeIs(p.label, "festival"):
			o.FestivalResponses++
		case typeIs(p.label, "pre-festival"):
			o.PreFestivalResponses++
		case typeIs(p.label, "post-festival"):
			o.PostFestivalResponses++
		case typeIs(p.label, "normal"):
			o.NormalDayResponses++
		}
	}
	return o
}

// seasonalBreakdown groups rows by (season type, holiday) and computes the
// shared metric set per bucket, largest bucket first.
func seasonalBreakdown(parsed []parsedRow) []BreakdownEntry {
	type bucket struct {
		label Label
		rows  []types.SurveyRecord
	}
	buckets := make(map[string]*bucket)
	var keys []string
	for _, p := range parsed {
		k := p.label.Type + "\x1f" + p.label.Holiday
		b := buckets[k]
		if b == nil {
			b = &bucket{label: p.label}
			buckets[k] = b
			keys = append(keys, k)
		}
		b.rows = append(b.rows, p.rec)
	}
	sort.Strings(keys)

	out := make([]BreakdownEntry, 0, len(keys))
	for _, k := range keys {
		b := buckets[k]
		holiday := b.label.Holiday
		if holiday == "" {
			holiday = "N/A"
		}
		out = append(out, BreakdownEntry{
			Metrics:        computeMetrics(b.rows),
			SeasonCategory: b.label.Type,
			HolidayName:    holiday,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ResponseCount > out[j].ResponseCount })
	return out
}

func rowsOfType(parsed []parsedRow, name string) []types.SurveyRecord {
	var out []types.SurveyRecord
	for _, p := range parsed {
		if typeIs(p.label, name) {
			out = append(out, p.rec)
		}
	}
	return out
}

func comparePeriods(parsed []parsedRow) ComparativeAnalysis {
	festival := computeMetrics(rowsOfType(parsed, "festival"))
	normal := computeMetrics(rowsOfType(parsed, "normal"))
	pre := computeMetrics(rowsOfType(parsed, "pre-festival"))
	post := computeMetrics(rowsOfType(parsed, "post-festival"))

	return ComparativeAnalysis{
		FestivalVsNormal: FestivalVsNormal{
			SentimentDiff:  diff(festival.AvgSentiment, normal.AvgSentiment),
			EngagementDiff: diff(festival.AvgEngagement, normal.AvgEngagement),
			BurnoutDiff:    diff(festival.BurnoutRate, normal.BurnoutRate),
			TurnoverDiff:   diff(festival.TurnoverRisk, normal.TurnoverRisk),
		},
		PreVsPostFestival: PreVsPostFestival{
			SentimentDiff:  diff(pre.AvgSentiment, post.AvgSentiment),
			EngagementDiff: diff(pre.AvgEngagement, post.AvgEngagement),
		},
	}
}

// topFestivals ranks holidays across their pre, during and post periods by
// an impact score weighting normalized sentiment at 0.4 and normalized
// engagement at 0.6. Scores that do not come out positive are left nil.
func topFestivals(parsed []parsedRow) []TopFestival {
	byHoliday := make(map[string][]types.SurveyRecord)
	var names []string
	for _, p := range parsed {
		if !typeIs(p.label, "festival") && !typeIs(p.label, "pre-festival") && !typeIs(p.label, "post-festival") {
			continue
		}
		h := p.label.Holiday
		if h == "" || h == "N/A" {
			continue
		}
		if _, seen := byHoliday[h]; !seen {
			names = append(names, h)
		}
		byHoliday[h] = append(byHoliday[h], p.rec)
	}
	sort.Strings(names)

	out := make([]TopFestival, 0, len(names))
	for _, name := range names {
		m := computeMetrics(byHoliday[name])
		entry := TopFestival{
			HolidayName:    name,
			TotalResponses: m.ResponseCount,
			AvgSentiment:   m.AvgSentiment,
			AvgEngagement:  m.AvgEngagement,
		}
		if m.AvgSentiment != nil && m.AvgEngagement != nil {
			sentimentNorm := (*m.AvgSentiment + 1) * 5 // [-1,1] -> [0,10]
			engagementNorm := (*m.AvgEngagement - 1) * 2.5
			impact := sentimentNorm*0.4 + engagementNorm*0.6
			if impact > 0 {
				v := risk.Round2(impact)
				entry.ImpactScore = &v
			}
		}
		out = append(out, entry)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := 0.0, 0.0
		if out[i].ImpactScore != nil {
			a = *out[i].ImpactScore
		}
		if out[j].ImpactScore != nil {
			b = *out[j].ImpactScore
		}
		if a != b {
			return a > b
		}
		return out[i].TotalResponses > out[j].TotalResponses
	})

	if len(out) > 10 {
		out = out[:10]
	}
	return out
}
