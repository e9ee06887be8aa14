package risk

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
	"wellbeing-insights-go/internal/logger"
	"wellbeing-insights-go/internal/types"
)

var (
	// ErrNoEmployees means the employee table is entirely empty.
	ErrNoEmployees = errors.New("no employee data found")
	// ErrNoSurveyData means the survey table is entirely empty.
	ErrNoSurveyData = errors.New("no survey data found")
	// ErrNoGroupColumns means none of the requested grouping columns carry data.
	ErrNoGroupColumns = errors.New("no valid grouping columns found")
)

// RecordSource supplies the three record sets the engine aggregates over.
type RecordSource interface {
	FetchEmployees(ctx context.Context) ([]types.EmployeeRecord, error)
	FetchWorkload(ctx context.Context) ([]types.WorkloadRecord, error)
	FetchSurvey(ctx context.Context) ([]types.SurveyRecord, error)
}

// Options controls grouping and the optional tiered risk breakdowns.
type Options struct {
	GroupBy         []string
	IncludeDetailed bool
}

// Engine runs the fetch-merge-preprocess-aggregate pipeline. It holds no
// state between calls; every invocation rescans the source tables.
type Engine struct {
	src RecordSource
	log *logrus.Entry
}

func NewEngine(src RecordSource, lg *logger.Logger) *Engine {
	return &Engine{src: src, log: lg.Component("risk")}
}

// Analyze runs the pure pipeline over already-fetched records. An empty
// survey set yields an empty result rather than an error.
func Analyze(employees []types.EmployeeRecord, workload []types.WorkloadRecord, survey []types.SurveyRecord, opts Options) ([]types.MetricsGroup, error) {
	merged := Merge(employees, workload, survey)
	rows := Preprocess(merged)
	return Aggregate(rows, opts)
}

// AnalyzeFromStore fetches all three tables and aggregates them. Empty
// employee or survey tables are fatal here, unlike in Analyze.
func (e *Engine) AnalyzeFromStore(ctx context.Context, opts Options) ([]types.MetricsGroup, error) {
	employees, err := e.src.FetchEmployees(ctx)
	if err != nil {
		return nil, err
	}
	workload, err := e.src.FetchWorkload(ctx)
	if err != nil {
		return nil, err
	}
	survey, err := e.src.FetchSurvey(ctx)
	if err != nil {
		return nil, err
	}

	if len(employees) == 0 {
		return nil, ErrNoEmployees
	}
	if len(survey) == 0 {
		return nil, ErrNoSurveyData
	}

	e.log.WithFields(logrus.Fields{
		"employees": len(employees),
		"workload":  len(workload),
		"survey":    len(survey),
	}).Debug("records fetched")

	groups, err := Analyze(employees, workload, survey, opts)
	if err != nil {
		return nil, err
	}
	e.log.WithField("groups", len(groups)).Debug("metrics aggregated")
	return groups, nil
}

// PercentageJSONFromStore is AnalyzeFromStore with the percentage view applied.
func (e *Engine) PercentageJSONFromStore(ctx context.Context, opts Options) ([]map[string]interface{}, error) {
	groups, err := e.AnalyzeFromStore(ctx, opts)
	if err != nil {
		return nil, err
	}
	return PercentageJSON(groups), nil
}
