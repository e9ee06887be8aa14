package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"wellbeing-insights-go/internal/types"
)

func TestPercentageJSONRescale(t *testing.T) {
	y := 2025
	groups := []types.MetricsGroup{{
		Department:      "Sales",
		Year:            &y,
		Quarter:         "Q1",
		ResponseCount:   4,
		TotalEmployees:  10,
		JobSatisfaction: fptr(7.5),
		BurnoutScore:    fptr(3.25),
		ENPS:            fptr(50),
		BurnoutRate:     fptr(12.5),
		ResponseRate:    fptr(40),
	}}

	out := PercentageJSON(groups)
	require.Len(t, out, 1)

	entry := out[0]
	assert.Equal(t, "Sales", entry["Department"])
	assert.Equal(t, 2025, entry["Year"])
	assert.Equal(t, "Q1", entry["Quarter"])

	metrics, ok := entry["Metrics"].(map[string]interface{})
	require.True(t, ok)

	// 1-10 scale metrics rescale, percentage metrics pass through.
	assert.Equal(t, 75.0, metrics["Job_Satisfaction"])
	assert.Equal(t, 32.5, metrics["Burnout_Score"])
	assert.Equal(t, 50.0, metrics["eNPS"])
	assert.Equal(t, 12.5, metrics["Burnout_Rate"])
	assert.Equal(t, 40.0, metrics["Response_Rate"])
	assert.Equal(t, 4, metrics["Response_Count"])
	assert.Equal(t, 10, metrics["Total_Employees"])
}

func TestPercentageJSONOmitsNilMetrics(t *testing.T) {
	y := 2025
	groups := []types.MetricsGroup{{
		Department:     "Ops",
		Year:           &y,
		Quarter:        "Q2",
		ResponseCount:  1,
		TotalEmployees: 0,
	}}

	out := PercentageJSON(groups)
	metrics := out[0]["Metrics"].(map[string]interface{})

	_, hasJS := metrics["Job_Satisfaction"]
	assert.False(t, hasJS)
	_, hasRate := metrics["Response_Rate"]
	assert.False(t, hasRate)
	_, hasENPS := metrics["eNPS"]
	assert.False(t, hasENPS)

	// Counts are always present, zero or not.
	assert.Equal(t, 1, metrics["Response_Count"])
	assert.Equal(t, 0, metrics["Total_Employees"])
}

func TestPercentageJSONPartialGroupColumns(t *testing.T) {
	groups := []types.MetricsGroup{{
		Quarter:       "Q3",
		ResponseCount: 2,
	}}

	out := PercentageJSON(groups)
	entry := out[0]

	_, hasDept := entry["Department"]
	assert.False(t, hasDept)
	_, hasYear := entry["Year"]
	assert.False(t, hasYear)
	assert.Equal(t, "Q3", entry["Quarter"])
}

func TestPercentageJSONPromoterCountsStayInternal(t *testing.T) {
	y := 2025
	groups := []types.MetricsGroup{{
		Department:     "Sales",
		Year:           &y,
		Quarter:        "Q1",
		ENPSPromoters:  3,
		ENPSDetractors: 1,
	}}

	metrics := PercentageJSON(groups)[0]["Metrics"].(map[string]interface{})
	_, hasPromoters := metrics["eNPS_Promoters"]
	assert.False(t, hasPromoters)
}
