package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"wellbeing-insights-go/internal/types"
)

func TestSurveyBurnoutDetailAlignsPairs(t *testing.T) {
	rows := []types.SurveyRecord{
		{WorkLifeBalance: fptr(1), JobSatisfaction: fptr(2)}, // severe
		{WorkLifeBalance: fptr(2), JobSatisfaction: fptr(5)}, // moderate
		{WorkLifeBalance: fptr(4), JobSatisfaction: fptr(6)}, // outside every tier
		// rows missing either side of the pair are dropped
		{WorkLifeBalance: fptr(1)},
		{JobSatisfaction: fptr(1)},
		{SentimentScore: fptr(2)},
	}

	d := SurveyBurnoutDetail(rows)

	assert.Equal(t, 1, d.TotalSevere)
	assert.Equal(t, 2, d.TotalModerate)
	assert.Equal(t, 2, d.TotalAtRisk)
	assert.InDelta(t, 33.33, *d.SevereRate, 0.01)
}

func TestSurveyBurnoutDetailEmpty(t *testing.T) {
	d := SurveyBurnoutDetail(nil)

	assert.Nil(t, d.SevereRate)
	assert.Equal(t, 0, d.TotalSevere)
}

func TestSurveyTurnoverDetailAlignsPairs(t *testing.T) {
	rows := []types.SurveyRecord{
		{ENPS: fptr(2), GrowthOpportunities: fptr(1)}, // high risk
		{ENPS: fptr(6), GrowthOpportunities: fptr(5)}, // detractor only
		{ENPS: fptr(9), GrowthOpportunities: fptr(2)}, // low growth only
		{ENPS: fptr(10), GrowthOpportunities: fptr(5)},
		// growth unanswered, dropped from the pair set
		{ENPS: fptr(1)},
	}

	d := SurveyTurnoverDetail(rows)

	assert.Equal(t, 1, d.TotalHighRisk)
	assert.Equal(t, 2, d.TotalDetractors)
	assert.Equal(t, 2, d.TotalLowGrowth)
	assert.Equal(t, 25.0, *d.HighRiskRate)
	assert.Equal(t, 75.0, *d.ModerateRiskRate)
}
