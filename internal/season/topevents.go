package season

import (
	"context"
	"sort"

	"github.com/sirupsen/logrus"
	"wellbeing-insights-go/internal/risk"
	"wellbeing-insights-go/internal/types"
)

// TopEventsQuery filters the event ranking view. Unlike InsightsQuery a
// nil Year keeps every submission year in scope.
type TopEventsQuery struct {
	Department string
	Quarter    string
	Year       *int
}

type TopEvent struct {
	EventName          string             `json:"event_name"`
	TotalResponses     int                `json:"total_responses"`
	SentimentBreakdown SentimentBreakdown `json:"sentiment_breakdown"`
	AvgSentimentScore  *float64           `json:"avg_sentiment_score"`
}

type TopEventsOverview struct {
	TotalResponses     int                `json:"total_responses"`
	UniqueEvents       int                `json:"unique_events"`
	SentimentBreakdown SentimentBreakdown `json:"sentiment_breakdown"`
}

type TopEventsFilters struct {
	Department *string `json:"department"`
	Year       *int    `json:"year"`
	Quarter    *string `json:"quarter"`
}

type TopEventsResponse struct {
	Overview       TopEventsOverview `json:"overview"`
	TopEvents      []TopEvent        `json:"top_events"`
	FiltersApplied TopEventsFilters  `json:"filters_applied"`
}

// TopEvents ranks named events, normal days included, by response volume
// with a per-event sentiment profile.
func (a *Analyzer) TopEvents(ctx context.Context, q TopEventsQuery) (*TopEventsResponse, error) {
	survey, err := a.src.FetchSurvey(ctx)
	if err != nil {
		return nil, err
	}

	rows := filterRows(survey, q.Year, q.Department, q.Quarter)

	byEvent := make(map[string][]types.SurveyRecord)
	var names []string
	for _, r := range rows {
		name := eventName(ParseLabel(r.EventSeason))
		if _, seen := byEvent[name]; !seen {
			names = append(names, name)
		}
		byEvent[name] = append(byEvent[name], r)
	}
	sort.Strings(names)

	events := make([]TopEvent, 0, len(names))
	for _, name := range names {
		group := byEvent[name]
		var scores []float64
		for _, r := range group {
			if r.SentimentScore != nil {
				scores = append(scores, *r.SentimentScore)
			}
		}
		avg := risk.Mean(scores)
		if avg != nil {
			v := risk.Round2(*avg)
			avg = &v
		}
		events = append(events, TopEvent{
			EventName:          name,
			TotalResponses:     len(group),
			SentimentBreakdown: sentimentBreakdown(group),
			AvgSentimentScore:  avg,
		})
	}
	sort.SliceStable(events, func(i, j int) bool { return events[i].TotalResponses > events[j].TotalResponses })
	if len(events) > 10 {
		events = events[:10]
	}

	resp := &TopEventsResponse{
		Overview: TopEventsOverview{
			TotalResponses:     len(rows),
			UniqueEvents:       len(byEvent),
			SentimentBreakdown: sentimentBreakdown(rows),
		},
		TopEvents: events,
		FiltersApplied: TopEventsFilters{
			Department: optString(q.Department),
			Year:       q.Year,
			Quarter:    optString(q.Quarter),
		},
	}

	a.log.WithFields(logrus.Fields{"events": resp.Overview.UniqueEvents, "responses": resp.Overview.TotalResponses}).Debug("event ranking built")
	return resp, nil
}

func eventName(l Label) string {
	if l.Holiday != "" {
		return l.Holiday
	}
	return "Normal Day"
}
