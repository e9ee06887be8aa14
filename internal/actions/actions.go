package actions

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"wellbeing-insights-go/internal/logger"
	"wellbeing-insights-go/internal/risk"
	"wellbeing-insights-go/internal/store"
	"wellbeing-insights-go/internal/types"
)

var (
	ErrMissingFields = errors.New("missing required fields")
	ErrInvalidType   = errors.New("invalid activity type")
	ErrInvalidStatus = errors.New("invalid activity status")
)

var (
	validTypes     = []string{"events", "actions", "long_term"}
	createStatuses = []string{"pending", "on-going", "completed"}
	updateStatuses = []string{"pending", "on-going", "completed", "cancelled"}
)

// Store is the slice of the record store the action log uses.
type Store interface {
	Put(ctx context.Context, table, id string, doc interface{}) error
	Get(ctx context.Context, table, id string, dst interface{}) error
	FetchActions(ctx context.Context) ([]types.ActionEntry, error)
}

// MetricsSource produces current aggregated metrics for baseline capture
// and impact measurement.
type MetricsSource interface {
	AnalyzeFromStore(ctx context.Context, opts risk.Options) ([]types.MetricsGroup, error)
}

// Log records improvement actions together with the risk level they were
// meant to address, so completing one can report measured movement.
type Log struct {
	store   Store
	metrics MetricsSource
	log     *logrus.Entry
	now     func() time.Time
}

func NewLog(st Store, metrics MetricsSource, lg *logger.Logger) *Log {
	return &Log{store: st, metrics: metrics, log: lg.Component("actions"), now: time.Now}
}

type CreateRequest struct {
	Department   string `json:"department"`
	Quarter      string `json:"quarter"`
	Year         int    `json:"year"`
	ActivityType string `json:"activity_type"`
	Description  string `json:"description"`

	Impact         string `json:"impact,omitempty"`
	ActivityStatus string `json:"activity_status,omitempty"`
	AssignedTo     string `json:"assigned_to,omitempty"`
	ActivityTitle  string `json:"activity_title,omitempty"`

	Context BaselineContext `json:"context"`
}

// BaselineContext carries the risk snapshot the caller observed when
// deciding to act. Missing values are computed from the detailed
// aggregation for the action's own period.
type BaselineContext struct {
	BurnoutRiskPercentage  *float64 `json:"burnout_risk_percentage"`
	TurnoverRiskPercentage *float64 `json:"turnover_risk_percentage"`
}

// Create validates and stores one action with its baseline snapshot.
func (l *Log) Create(ctx context.Context, req CreateRequest) (*types.ActionEntry, error) {
	if req.Department == "" || req.Quarter == "" || req.Year == 0 || req.ActivityType == "" || req.Description == "" {
		return nil, ErrMissingFields
	}
	if !oneOf(req.ActivityType, validTypes) {
		return nil, fmt.Errorf("%w: must be one of %v", ErrInvalidType, validTypes)
	}
	status := req.ActivityStatus
	if status == "" {
		status = "pending"
	}
	if !oneOf(status, createStatuses) {
		return nil, fmt.Errorf("%w: must be one of %v", ErrInvalidStatus, createStatuses)
	}

	entry := types.ActionEntry{
		ActionID:             fmt.Sprintf("action_%s_%s_%s", req.Department, req.Quarter, uuid.New()),
		Department:           req.Department,
		Quarter:              req.Quarter,
		Year:                 req.Year,
		SavedAt:              l.now().UTC().Format(time.RFC3339),
		Status:               status,
		Type:                 req.ActivityType,
		AssignedTo:           req.AssignedTo,
		Title:                req.ActivityTitle,
		Description:          req.Description,
		Impact:               req.Impact,
		BaselineBurnoutRisk:  req.Context.BurnoutRiskPercentage,
		BaselineTurnoverRisk: req.Context.TurnoverRiskPercentage,
	}
	if entry.BaselineBurnoutRisk == nil || entry.BaselineTurnoverRisk == nil {
		l.fillBaseline(ctx, &entry)
	}

	if err := l.store.Put(ctx, store.TableActions, entry.ActionID, entry); err != nil {
		return nil, err
	}
	l.log.WithFields(logrus.Fields{"action_id": entry.ActionID, "department": entry.Department}).Info("action recorded")
	return &entry, nil
}

// fillBaseline computes missing snapshot values from the detailed tiers
// for the action's own period. Best effort: on failure the baselines
// stay unset and completion reports no impact.
func (l *Log) fillBaseline(ctx context.Context, e *types.ActionEntry) {
	groups, err := l.metrics.AnalyzeFromStore(ctx, risk.Options{
		GroupBy:         []string{"Department", "Year", "Quarter"},
		IncludeDetailed: true,
	})
	if err != nil {
		l.log.WithError(err).Warn("baseline capture skipped")
		return
	}
	g := findGroup(groups, e.Department, e.Year, e.Quarter)
	if g == nil {
		return
	}
	if e.BaselineBurnoutRisk == nil && g.BurnoutDetail != nil {
		e.BaselineBurnoutRisk = g.BurnoutDetail.SevereRate
	}
	if e.BaselineTurnoverRisk == nil && g.TurnoverDetail != nil {
		e.BaselineTurnoverRisk = g.TurnoverDetail.HighRiskRate
	}
}

// UpdateStatus moves an action through its lifecycle. Completion stamps
// Completed_at and measures risk movement against the stored baseline.
func (l *Log) UpdateStatus(ctx context.Context, actionID, newStatus string) (*types.ActionEntry, error) {
	if !oneOf(newStatus, updateStatuses) {
		return nil, fmt.Errorf("%w: allowed values %v", ErrInvalidStatus, updateStatuses)
	}

	var entry types.ActionEntry
	if err := l.store.Get(ctx, store.TableActions, actionID, &entry); err != nil {
		return nil, err
	}

	entry.Status = newStatus
	if newStatus == "completed" {
		now := l.now()
		entry.CompletedAt = now.UTC().Format(time.RFC3339)
		l.applyImpact(ctx, &entry, now)
	}

	if err := l.store.Put(ctx, store.TableActions, actionID, entry); err != nil {
		return nil, err
	}
	l.log.WithFields(logrus.Fields{"action_id": actionID, "status": newStatus}).Info("action updated")
	return &entry, nil
}

// applyImpact compares the baseline against the department's aggregate
// for the quarter completion happens in, not the quarter the action was
// planned for.
func (l *Log) applyImpact(ctx context.Context, e *types.ActionEntry, now time.Time) {
	groups, err := l.metrics.AnalyzeFromStore(ctx, risk.Options{GroupBy: []string{"Department", "Year", "Quarter"}})
	if err != nil {
		l.log.WithError(err).Warn("impact calculation skipped")
		return
	}

	var latestBurnout, latestTurnover *float64
	if g := findGroup(groups, e.Department, now.Year(), quarterOf(now)); g != nil {
		latestBurnout = g.BurnoutRate
		latestTurnover = g.TurnoverRisk
	}
	e.ImpactBurnout = formatDelta(e.BaselineBurnoutRisk, latestBurnout)
	e.ImpactTurnover = formatDelta(e.BaselineTurnoverRisk, latestTurnover)
}

type ListQuery struct {
	Department string
	Year       *int
	Month      *int
}

// List returns the action log, optionally narrowed by department and by
// the year or month the action was saved in.
func (l *Log) List(ctx context.Context, q ListQuery) ([]types.ActionEntry, error) {
	entries, err := l.store.FetchActions(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]types.ActionEntry, 0, len(entries))
	for _, e := range entries {
		if q.Department != "" && !strings.EqualFold(e.Department, q.Department) {
			continue
		}
		if q.Year != nil && !strings.HasPrefix(e.SavedAt, strconv.Itoa(*q.Year)) {
			continue
		}
		if q.Month != nil && !strings.Contains(e.SavedAt, fmt.Sprintf("-%02d-", *q.Month)) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func findGroup(groups []types.MetricsGroup, department string, year int, quarter string) *types.MetricsGroup {
	for i := range groups {
		g := &groups[i]
		if !strings.EqualFold(g.Department, department) {
			continue
		}
		if g.Year == nil || *g.Year != year {
			continue
		}
		if !strings.EqualFold(g.Quarter, quarter) {
			continue
		}
		return g
	}
	return nil
}

// formatDelta renders latest minus baseline with an explicit sign, "0"
// when either side is missing or the movement is zero.
func formatDelta(baseline, latest *float64) string {
	if baseline == nil || latest == nil {
		return "0"
	}
	d := risk.Round2(*latest - *baseline)
	switch {
	case d > 0:
		return "+" + strconv.FormatFloat(d, 'f', -1, 64)
	case d < 0:
		return strconv.FormatFloat(d, 'f', -1, 64)
	default:
		return "0"
	}
}

func quarterOf(t time.Time) string {
	return fmt.Sprintf("Q%d", (int(t.Month())-1)/3+1)
}

func oneOf(v string, allowed []string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}
