package risk

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
	employees []types.EmployeeRecord
	workload  []types.WorkloadRecord
	survey    []types.SurveyRecord
	err       error
}

func (s *stubSource) FetchEmployees(ctx context.Context) ([]types.EmployeeRecord, error) {
	return s.employees, s.err
}

func (s *stubSource) FetchWorkload(ctx context.Context) ([]types.WorkloadRecord, error) {
	return s.workload, s.err
}

func (s *stubSource) FetchSurvey(ctx context.Context) ([]types.SurveyRecord, error) {
	return s.survey, s.err
}

func TestAnalyzeFromStoreEmptyTables(t *testing.T) {
	lg := logger.New()

	t.Run("no employees", func(t *testing.T) {
		e := NewEngine(&stubSource{survey: []types.SurveyRecord{{Department: "Sales"}}}, lg)
		_, err := e.AnalyzeFromStore(context.Background(), Options{})
		assert.ErrorIs(t, err, ErrNoEmployees)
	})

	t.Run("no survey responses", func(t *testing.T) {
		e := NewEngine(&stubSource{employees: []types.EmployeeRecord{{EmployeeID: "e1", Department: "Sales"}}}, lg)
		_, err := e.AnalyzeFromStore(context.Background(), Options{})
		assert.ErrorIs(t, err, ErrNoSurveyData)
	})
}

func TestAnalyzeFromStorePropagatesSourceError(t *testing.T) {
	boom := errors.New("scan failed")
	e := NewEngine(&stubSource{err: boom}, logger.New())

	_, err := e.AnalyzeFromStore(context.Background(), Options{})
	assert.ErrorIs(t, err, boom)
}

func TestAnalyzeFromStoreFullPipeline(t *testing.T) {
	src := &stubSource{
		employees: []types.EmployeeRecord{
			{EmployeeID: "e1", Department: "Sales", TenureYears: fptr(2)},
			{EmployeeID: "e2", Department: "Sales", TenureYears: fptr(4)},
		},
		workload: []types.WorkloadRecord{
			{EmployeeID: "e1", HoursLogged: fptr(40)},
		},
		survey: []types.SurveyRecord{
			{
				ResponseID:      "r1",
				EmployeeID:      "e1",
				Department:      "Sales",
				Quarter:         "Q1",
				SubmissionDate:  "2025-02-10",
				JobSatisfaction: fptr(8),
				WorkLifeBalance: fptr(6),
				ENPS:            fptr(9),
			},
			{
				ResponseID:     "r2",
				EmployeeID:     "e2",
				Department:     "Sales",
				Quarter:        "Q1",
				SubmissionDate: "2025-03-01",
				ENPS:           fptr(4),
			},
		},
	}
	e := NewEngine(src, logger.New())

	groups, err := e.AnalyzeFromStore(context.Background(), Options{})
	require.NoError(t, err)
	require.Len(t, groups, 1)

	g := groups[0]
	assert.Equal(t, "Sales", g.Department)
	assert.Equal(t, "Q1", g.Quarter)
	require.NotNil(t, g.Year)
	assert.Equal(t, 2025, *g.Year)
	assert.Equal(t, 2, g.ResponseCount)
	assert.Equal(t, 2, g.TotalEmployees)
	require.NotNil(t, g.ResponseRate)
	assert.Equal(t, 100.0, *g.ResponseRate)
	require.NotNil(t, g.ENPS)
	assert.Equal(t, 0.0, *g.ENPS) // one promoter, one detractor
	require.NotNil(t, g.AvgWorkload)
	assert.Equal(t, 40.0, *g.AvgWorkload)
}

func TestPercentageJSONFromStore(t *testing.T) {
	src := &stubSource{
		employees: []types.EmployeeRecord{{EmployeeID: "e1", Department: "Sales"}},
		survey: []types.SurveyRecord{{
			ResponseID:      "r1",
			EmployeeID:      "e1",
			Department:      "Sales",
			Quarter:         "Q1",
			SubmissionDate:  "2025-02-10",
			JobSatisfaction: fptr(7.5),
		}},
	}
	e := NewEngine(src, logger.New())

	out, err := e.PercentageJSONFromStore(context.Background(), Options{})
	require.NoError(t, err)
	require.Len(t, out, 1)

	metrics := out[0]["Metrics"].(map[string]interface{})
	assert.Equal(t, 75.0, metrics["Job_Satisfaction"])
}
