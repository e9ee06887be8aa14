package theme

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"wellbeing-insights-go/internal/types"
)

type FeedbackEntry struct {
	SubmissionDate string `json:"submission_date"`
	Category       string `json:"category"`
	Sentiment      string `json:"sentiment"`
	Comment        string `json:"comment"`
}

type FeedbackResponse struct {
	Count int             `json:"count"`
	Data  []FeedbackEntry `json:"data"`
}

// RecentFeedback returns raw comments newest first. Rows without a
// parseable submission date sort last.
func (a *Analyzer) RecentFeedback(ctx context.Context, q Query) (*FeedbackResponse, error) {
	survey, err := a.src.FetchSurvey(ctx)
	if err != nil {
		return nil, err
	}

	limit := q.Limit
	if limit <= 0 {
		limit = 10
	}

	rows := filterRows(survey, q.Year, q.Quarter, q.Department, q.SentimentLabel)

	type dated struct {
		rec types.SurveyRecord
		at  time.Time
	}
	commented := make([]dated, 0, len(rows))
	for _, r := range rows {
		if strings.TrimSpace(r.Comments) == "" {
			continue
		}
		at, _ := time.Parse("2006-01-02", r.SubmissionDate)
		commented = append(commented, dated{rec: r, at: at})
	}
	sort.SliceStable(commented, func(i, j int) bool { return commented[i].at.After(commented[j].at) })
	if len(commented) > limit {
		commented = commented[:limit]
	}

	data := make([]FeedbackEntry, 0, len(commented))
	for _, d := range commented {
		date := d.rec.SubmissionDate
		if !d.at.IsZero() {
			date = d.at.Format("2006-01-02")
		}
		category := strings.TrimSpace(d.rec.Categories)
		if category == "" {
			category = "Uncategorized"
		}
		data = append(data, FeedbackEntry{
			SubmissionDate: date,
			Category:       category,
			Sentiment:      d.rec.SentimentLabel,
			Comment:        d.rec.Comments,
		})
	}

	a.log.WithFields(logrus.Fields{"comments": len(data)}).Debug("recent feedback collected")
	return &FeedbackResponse{Count: len(data), Data: data}, nil
}
