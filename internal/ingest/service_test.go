package ingest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"wellbeing-insights-go/internal/logger"
	"wellbeing-insights-go/internal/store"
	"wellbeing-insights-go/internal/types"
)

type stubStore struct {
	tasks   map[string]types.IngestTask
	surveys map[string]types.SurveyRecord
	putErr  map[string]error
	peek    []types.SurveyRecord
	peekErr error
}

func newStubStore() *stubStore {
	return &stubStore{
		tasks:   make(map[string]types.IngestTask),
		surveys: make(map[string]types.SurveyRecord),
		putErr:  make(map[string]error),
	}
}

func (s *stubStore) Put(ctx context.Context, table, id string, doc interface{}) error {
	if err := s.putErr[id]; err != nil {
		return err
	}
	switch v := doc.(type) {
	case types.IngestTask:
		s.tasks[id] = v
	case types.SurveyRecord:
		s.surveys[id] = v
	}
	return nil
}

func (s *stubStore) Get(ctx context.Context, table, id string, dst interface{}) error {
	t, ok := s.tasks[id]
	if !ok {
		return store.ErrNotFound
	}
	*dst.(*types.IngestTask) = t
	return nil
}

func (s *stubStore) PeekSurvey(ctx context.Context, limit int) ([]types.SurveyRecord, error) {
	if s.peekErr != nil {
		return nil, s.peekErr
	}
	if len(s.peek) > limit {
		return s.peek[:limit], nil
	}
	return s.peek, nil
}

var testClock = func() time.Time {
	return time.Date(2025, time.August, 22, 10, 0, 0, 0, time.UTC)
}

func newTestService(st *stubStore) *Service {
	svc := NewService(st, logger.New())
	svc.now = testClock
	return svc
}

func fp(v float64) *float64 { return &v }

func TestCreateTask(t *testing.T) {
	st := newStubStore()
	svc := newTestService(st)

	task, err := svc.CreateTask(context.Background(), "survey.csv")
	require.NoError(t, err)

	assert.Len(t, task.TaskID, 36)
	assert.Equal(t, "pending", task.Status)
	assert.Equal(t, "File uploaded, starting processing...", task.Message)
	assert.Equal(t, "survey.csv", task.Filename)
	assert.Equal(t, "2025-08-22T10:00:00Z", task.CreatedAt)

	stored, ok := st.tasks[task.TaskID]
	require.True(t, ok)
	assert.Equal(t, *task, stored)
}

func TestStatusUnknownTask(t *testing.T) {
	svc := newTestService(newStubStore())
	_, err := svc.Status(context.Background(), "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestProcessAppliesDefaultsAndCounts(t *testing.T) {
	st := newStubStore()
	st.peek = []types.SurveyRecord{{ResponseID: "sample-1"}, {ResponseID: "sample-2"}}
	svc := newTestService(st)

	task, err := svc.CreateTask(context.Background(), "survey.csv")
	require.NoError(t, err)

	rows := []types.SurveyRecord{
		{EmployeeID: "E1", Quarter: "2025-Q1", Comments: "Late nights", Categories: "Workload", SentimentScore: fp(2), SentimentLabel: "negative"},
		{ResponseID: "keep-id", EmployeeID: "E2", Quarter: "2025-Q1", Categories: "Workload"},
		{EmployeeID: "E3", Quarter: "2025-Q2", Comments: "Good quarter", Categories: "Recognition", SentimentScore: fp(8), SentimentLabel: "positive"},
	}
	res, err := svc.Process(context.Background(), task.TaskID, rows)
	require.NoError(t, err)

	assert.Equal(t, 3, res.TotalRows)
	assert.Equal(t, 3, res.SavedRows)
	assert.Equal(t, 0, res.FailedRows)

	require.Len(t, st.surveys, 3)
	kept, ok := st.surveys["keep-id"]
	require.True(t, ok, "explicit response id is preserved")
	assert.Equal(t, "E2", kept.EmployeeID)
	require.NotNil(t, kept.SentimentScore)
	assert.Equal(t, 5.0, *kept.SentimentScore, "missing sentiment defaults to 5")
	assert.Equal(t, "neutral", kept.SentimentLabel, "missing label defaults to neutral")

	for id, rec := range st.surveys {
		if id == "keep-id" {
			continue
		}
		assert.Len(t, id, 36, "generated response ids are uuids")
		assert.Equal(t, id, rec.ResponseID)
	}

	assert.Equal(t, 2, res.Statistics.CommentsProcessed)
	require.NotNil(t, res.Statistics.AvgSentimentScore)
	assert.Equal(t, 5.0, *res.Statistics.AvgSentimentScore)
	assert.Equal(t, 2, res.Statistics.UniqueCategories)
	assert.Equal(t, []string{"2025-Q1", "2025-Q2"}, res.Statistics.UniqueQuarters)

	assert.Equal(t, st.peek, res.SampleRecords)

	stored := st.tasks[task.TaskID]
	assert.Equal(t, "Saving 3 records to database...", stored.Message)
	assert.Equal(t, "2025-08-22T10:00:00Z", stored.UpdatedAt)
}

func TestProcessCountsFailedRows(t *testing.T) {
	st := newStubStore()
	st.putErr["bad"] = errors.New("write refused")
	svc := newTestService(st)

	task, err := svc.CreateTask(context.Background(), "survey.csv")
	require.NoError(t, err)

	rows := []types.SurveyRecord{
		{ResponseID: "bad", EmployeeID: "E1", Comments: "Dropped row"},
		{ResponseID: "good", EmployeeID: "E2"},
	}
	res, err := svc.Process(context.Background(), task.TaskID, rows)
	require.NoError(t, err)

	assert.Equal(t, 2, res.TotalRows)
	assert.Equal(t, 1, res.SavedRows)
	assert.Equal(t, 1, res.FailedRows)
	_, saved := st.surveys["good"]
	assert.True(t, saved)
	_, dropped := st.surveys["bad"]
	assert.False(t, dropped)

	// Statistics describe the upload, saved or not.
	assert.Equal(t, 1, res.Statistics.CommentsProcessed)
}

func TestProcessSampleFetchError(t *testing.T) {
	st := newStubStore()
	boom := errors.New("redis down")
	st.peekErr = boom
	svc := newTestService(st)

	task, err := svc.CreateTask(context.Background(), "survey.csv")
	require.NoError(t, err)

	_, err = svc.Process(context.Background(), task.TaskID, []types.SurveyRecord{{ResponseID: "r1"}})
	assert.ErrorIs(t, err, boom)
}

func TestRunCompletesTask(t *testing.T) {
	st := newStubStore()
	svc := newTestService(st)

	task, err := svc.CreateTask(context.Background(), "survey.csv")
	require.NoError(t, err)

	data := []byte("Employee_ID,Quarter,Sentiment_Score\nE1,2025-Q1,7\nE2,2025-Q1,3\n")
	svc.Run(context.Background(), task.TaskID, "survey.csv", data)

	got, err := svc.Status(context.Background(), task.TaskID)
	require.NoError(t, err)
	assert.Equal(t, "completed", got.Status)
	assert.Equal(t, "Processing complete!", got.Message)
	assert.Equal(t, "2025-08-22T10:00:00Z", got.UpdatedAt)
	require.NotNil(t, got.Result)
	assert.Equal(t, 2, got.Result.TotalRows)
	assert.Equal(t, 2, got.Result.SavedRows)
	assert.Equal(t, 0, got.Result.FailedRows)
	assert.Len(t, st.surveys, 2)
}

func TestRunFailsOnUnsupportedFile(t *testing.T) {
	st := newStubStore()
	svc := newTestService(st)

	task, err := svc.CreateTask(context.Background(), "notes.txt")
	require.NoError(t, err)

	svc.Run(context.Background(), task.TaskID, "notes.txt", []byte("whatever"))

	got, err := svc.Status(context.Background(), task.TaskID)
	require.NoError(t, err)
	assert.Equal(t, "failed", got.Status)
	assert.Contains(t, got.Message, "Error: ")
	assert.Contains(t, got.Message, "unsupported file type")
	assert.Nil(t, got.Result)
}

func TestRunFailsOnBadWorkbook(t *testing.T) {
	st := newStubStore()
	svc := newTestService(st)

	task, err := svc.CreateTask(context.Background(), "broken.xlsx")
	require.NoError(t, err)

	svc.Run(context.Background(), task.TaskID, "broken.xlsx", []byte("not a workbook"))

	got, err := svc.Status(context.Background(), task.TaskID)
	require.NoError(t, err)
	assert.Equal(t, "failed", got.Status)
	assert.Contains(t, got.Message, "open workbook")
}

func TestStatisticsEmpty(t *testing.T) {
	stats := statistics(nil)
	assert.Equal(t, 0, stats.CommentsProcessed)
	assert.Nil(t, stats.AvgSentimentScore)
	assert.Equal(t, 0, stats.UniqueCategories)
	assert.Empty(t, stats.UniqueQuarters)
}
