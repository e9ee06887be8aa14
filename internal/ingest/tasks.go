package ingest

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"wellbeing-insights-go/internal/logger"
	"wellbeing-insights-go/internal/store"
	"wellbeing-insights-go/internal/types"
)

const (
	statusPending    = "pending"
	statusProcessing = "processing"
	statusCompleted  = "completed"
	statusFailed     = "failed"
)

// Store is the slice of the record store the upload pipeline uses.
// Tasks are persisted alongside the data so any server instance can
// answer a status poll.
type Store interface {
	Put(ctx context.Context, table, id string, doc interface{}) error
	Get(ctx context.Context, table, id string, dst interface{}) error
	PeekSurvey(ctx context.Context, limit int) ([]types.SurveyRecord, error)
}

// Service runs uploads in the background and tracks each one as a task
// moving pending -> processing -> completed | failed.
type Service struct {
	store Store
	log   *logrus.Entry
	now   func() time.Time
}

func NewService(st Store, lg *logger.Logger) *Service {
	return &Service{store: st, log: lg.Component("ingest"), now: time.Now}
}

// CreateTask registers a pending task for an accepted upload.
func (s *Service) CreateTask(ctx context.Context, filename string) (*types.IngestTask, error) {
	t := types.IngestTask{
		TaskID:    uuid.New().String(),
		Status:    statusPending,
		Message:   "File uploaded, starting processing...",
		Filename:  filename,
		CreatedAt: s.now().UTC().Format(time.RFC3339),
	}
	if err := s.store.Put(ctx, store.TableTasks, t.TaskID, t); err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"task_id": t.TaskID, "filename": filename}).Info("upload task created")
	return &t, nil
}

// Status returns the task as stored; store.ErrNotFound for unknown IDs.
func (s *Service) Status(ctx context.Context, taskID string) (*types.IngestTask, error) {
	var t types.IngestTask
	if err := s.store.Get(ctx, store.TableTasks, taskID, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// update applies mutate to the stored task. A status poll losing the
// race sees the previous state, never a torn write.
func (s *Service) update(ctx context.Context, taskID string, mutate func(*types.IngestTask)) {
	var t types.IngestTask
	if err := s.store.Get(ctx, store.TableTasks, taskID, &t); err != nil {
		s.log.WithField("task_id", taskID).WithError(err).Warn("task update skipped")
		return
	}
	mutate(&t)
	t.UpdatedAt = s.now().UTC().Format(time.RFC3339)
	if err := s.store.Put(ctx, store.TableTasks, taskID, t); err != nil {
		s.log.WithField("task_id", taskID).WithError(err).Warn("task update failed")
	}
}

func (s *Service) fail(ctx context.Context, taskID string, cause error) {
	s.log.WithField("task_id", taskID).WithError(cause).Warn("upload failed")
	s.update(ctx, taskID, func(t *types.IngestTask) {
		t.Status = statusFailed
		t.Message = "Error: " + cause.Error()
	})
}
