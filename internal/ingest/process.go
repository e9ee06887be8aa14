package ingest

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"wellbeing-insights-go/internal/risk"
	"wellbeing-insights-go/internal/store"
	"wellbeing-insights-go/internal/types"
)

const (
	defaultSentiment = 5.0
	sampleLimit      = 10
)

// Run executes one upload end to end and records the outcome on the
// task. It is meant for its own goroutine; every failure lands in the
// task record rather than a return value.
func (s *Service) Run(ctx context.Context, taskID, filename string, data []byte) {
	s.update(ctx, taskID, func(t *types.IngestTask) {
		t.Status = statusProcessing
		t.Message = "Reading file..."
	})

	rows, err := ParseFile(filename, data)
	if err != nil {
		s.fail(ctx, taskID, err)
		return
	}

	res, err := s.Process(ctx, taskID, rows)
	if err != nil {
		s.fail(ctx, taskID, err)
		return
	}

	s.update(ctx, taskID, func(t *types.IngestTask) {
		t.Status = statusCompleted
		t.Message = "Processing complete!"
		t.Result = res
	})
	s.log.WithFields(logrus.Fields{
		"task_id": taskID,
		"saved":   res.SavedRows,
		"failed":  res.FailedRows,
	}).Info("upload processed")
}

// Process writes rows one at a time, best effort: a failed row is
// counted and skipped, never fatal to the batch. This is the one path
// that defaults missing values; a row without a Sentiment_Score gets 5
// and an empty label becomes neutral so every uploaded row shows up in
// the sentiment breakdowns.
func (s *Service) Process(ctx context.Context, taskID string, rows []types.SurveyRecord) (*types.IngestResult, error) {
	s.update(ctx, taskID, func(t *types.IngestTask) {
		t.Message = fmt.Sprintf("Saving %d records to database...", len(rows))
	})

	var saved, failed int
	for i := range rows {
		rec := &rows[i]
		if rec.ResponseID == "" {
			rec.ResponseID = uuid.New().String()
		}
		if rec.SentimentScore == nil {
			v := defaultSentiment
			rec.SentimentScore = &v
		}
		if rec.SentimentLabel == "" {
			rec.SentimentLabel = "neutral"
		}
		if err := s.store.Put(ctx, store.TableSurvey, rec.ResponseID, *rec); err != nil {
			s.log.WithField("response_id", rec.ResponseID).WithError(err).Warn("row not saved")
			failed++
			continue
		}
		saved++
	}

	samples, err := s.store.PeekSurvey(ctx, sampleLimit)
	if err != nil {
		return nil, fmt.Errorf("sample fetch: %w", err)
	}

	return &types.IngestResult{
		TotalRows:     len(rows),
		SavedRows:     saved,
		FailedRows:    failed,
		Statistics:    statistics(rows),
		SampleRecords: samples,
	}, nil
}

func statistics(rows []types.SurveyRecord) types.IngestStats {
	var stats types.IngestStats
	cats := map[string]struct{}{}
	quarters := map[string]struct{}{}
	var sum float64
	var n int
	for _, r := range rows {
		if r.Comments != "" {
			stats.CommentsProcessed++
		}
		if r.SentimentScore != nil {
			sum += *r.SentimentScore
			n++
		}
		if c := strings.TrimSpace(r.Categories); c != "" {
			cats[c] = struct{}{}
		}
		q := strings.TrimSpace(r.Quarter)
		if q == "" {
			continue
		}
		if _, seen := quarters[q]; !seen {
			quarters[q] = struct{}{}
			stats.UniqueQuarters = append(stats.UniqueQuarters, q)
		}
	}
	stats.UniqueCategories = len(cats)
	if n > 0 {
		avg := risk.Round2(sum / float64(n))
		stats.AvgSentimentScore = &avg
	}
	return stats
}
