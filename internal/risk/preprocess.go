package risk

import (
	"time"

	"wellbeing-insights-go/internal/types"
)

const submissionDateLayout = "2006-01-02"

// Preprocess derives the per-row Year and Overall_Engagement fields.
//
// Year comes from the submission date. When no row in the set carries a
// date at all, every row defaults to the current calendar year; otherwise
// unparsable dates leave Year nil for that row. Overall_Engagement is the
// mean of whichever of the four Q1-Q4 scores are present.
func Preprocess(rows []types.EnrichedRow) []types.EnrichedRow {
	anyDate := false
	for i := range rows {
		if rows[i].SubmissionDate != "" {
			anyDate = true
			break
		}
	}
	currentYear := time.Now().Year()

	for i := range rows {
		r := &rows[i]
		if r.Year == nil {
			if anyDate {
				if t, err := time.Parse(submissionDateLayout, r.SubmissionDate); err == nil {
					y := t.Year()
					r.Year = &y
				}
			} else {
				y := currentYear
				r.Year = &y
			}
		}

		var sum float64
		var n int
		for _, v := range []*float64{r.JobSatisfaction, r.WorkLifeBalance, r.ManagerSupport, r.GrowthOpportunities} {
			if v != nil {
				sum += *v
				n++
			}
		}
		if n > 0 {
			e := sum / float64(n)
			r.OverallEngagement = &e
		}
	}
	return rows
}
