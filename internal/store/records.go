package store

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/spf13/cast"
	"wellbeing-insights-go/internal/types"
)

// docString reads a trimmed string field, tolerating non-string JSON values.
func docString(d map[string]interface{}, key string) string {
	v, ok := d[key]
	if !ok || v == nil {
		return ""
	}
	return strings.TrimSpace(cast.ToString(v))
}

// docNumber reads the first usable numeric field among keys. Blank strings,
// "nan"/"null" markers and unparseable values all count as missing so a
// sparse survey row comes through as nil rather than zero.
func docNumber(d map[string]interface{}, keys ...string) *float64 {
	for _, k := range keys {
		v, ok := d[k]
		if !ok || v == nil {
			continue
		}
		if s, isStr := v.(string); isStr {
			s = strings.TrimSpace(s)
			if s == "" || strings.EqualFold(s, "nan") || strings.EqualFold(s, "null") || strings.EqualFold(s, "none") {
				continue
			}
		}
		f, err := cast.ToFloat64E(v)
		if err != nil || math.IsNaN(f) {
			continue
		}
		return &f
	}
	return nil
}

func docBool(d map[string]interface{}, key string) bool {
	v, ok := d[key]
	if !ok || v == nil {
		return false
	}
	b, err := cast.ToBoolE(v)
	if err != nil {
		return false
	}
	return b
}

func surveyFromDoc(d map[string]interface{}) types.SurveyRecord {
	return types.SurveyRecord{
		ResponseID:          docString(d, "Response_ID"),
		EmployeeID:          docString(d, "Employee_ID"),
		Department:          docString(d, "Department"),
		Quarter:             docString(d, "Quarter"),
		SubmissionDate:      docString(d, "Submission_Date"),
		JobSatisfaction:     docNumber(d, "Q1_Job_Satisfaction"),
		WorkLifeBalance:     docNumber(d, "Q2_Work_Life_Balance"),
		ManagerSupport:      docNumber(d, "Q3_Manager_Support"),
		GrowthOpportunities: docNumber(d, "Q4_Growth_Opportunities"),
		ENPS:                docNumber(d, "Q5_eNPS"),
		Comments:            docString(d, "Comments"),
		RephrasedComment:    docString(d, "Rephrased_Comment"),
		Categories:          docString(d, "Categories"),
		SentimentScore:      docNumber(d, "Sentiment_Score"),
		SentimentLabel:      docString(d, "Sentiment_Label"),
		EventSeason:         docString(d, "Event_Season"),
	}
}

// hireDateFormats covers the date shapes seen in employee imports.
var hireDateFormats = []string{"2006-01-02", time.RFC3339, "2006-01-02 15:04:05", "01/02/2006"}

func parseHireDate(s string) (time.Time, bool) {
	for _, layout := range hireDateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func employeeFromDoc(d map[string]interface{}, now time.Time) types.EmployeeRecord {
	rec := types.EmployeeRecord{
		EmployeeID: docString(d, "Employee_ID"),
		Name:       docString(d, "Name"),
		Department: docString(d, "Department"),
		Role:       docString(d, "Role"),
		HireDate:   docString(d, "Hire_Date"),
		IsActive:   docBool(d, "Is_Active"),
	}
	if hired, ok := parseHireDate(rec.HireDate); ok {
		years := now.Sub(hired).Hours() / 24 / 365.25
		rec.TenureYears = &years
	}
	return rec
}

func workloadFromDoc(d map[string]interface{}) types.WorkloadRecord {
	return types.WorkloadRecord{
		WorkloadID:  docString(d, "Workload_ID"),
		EmployeeID:  docString(d, "Employee_ID"),
		Date:        docString(d, "Date"),
		HoursLogged: docNumber(d, "Hours_Logged"),
	}
}

// FetchSurvey scans the survey table into typed records.
func (s *Store) FetchSurvey(ctx context.Context) ([]types.SurveyRecord, error) {
	docs, err := s.FetchAll(ctx, TableSurvey)
	if err != nil {
		return nil, err
	}
	out := make([]types.SurveyRecord, 0, len(docs))
	for _, d := range docs {
		out = append(out, surveyFromDoc(d))
	}
	return out, nil
}

// PeekSurvey returns up to limit survey records without a full table walk.
func (s *Store) PeekSurvey(ctx context.Context, limit int) ([]types.SurveyRecord, error) {
	docs, err := s.Peek(ctx, TableSurvey, limit)
	if err != nil {
		return nil, err
	}
	out := make([]types.SurveyRecord, 0, len(docs))
	for _, d := range docs {
		out = append(out, surveyFromDoc(d))
	}
	return out, nil
}

// FetchEmployees scans the employee table, deriving tenure from hire dates.
func (s *Store) FetchEmployees(ctx context.Context) ([]types.EmployeeRecord, error) {
	docs, err := s.FetchAll(ctx, TableEmployees)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	out := make([]types.EmployeeRecord, 0, len(docs))
	for _, d := range docs {
		out = append(out, employeeFromDoc(d, now))
	}
	return out, nil
}

// FetchWorkload scans the workload table into typed records.
func (s *Store) FetchWorkload(ctx context.Context) ([]types.WorkloadRecord, error) {
	docs, err := s.FetchAll(ctx, TableWorkload)
	if err != nil {
		return nil, err
	}
	out := make([]types.WorkloadRecord, 0, len(docs))
	for _, d := range docs {
		out = append(out, workloadFromDoc(d))
	}
	return out, nil
}

// FetchDepartments returns the department directory documents as stored.
func (s *Store) FetchDepartments(ctx context.Context) ([]map[string]interface{}, error) {
	return s.FetchAll(ctx, TableDepartments)
}

func actionFromDoc(d map[string]interface{}) types.ActionEntry {
	return types.ActionEntry{
		ActionID:             docString(d, "Action_ID"),
		Department:           docString(d, "Department"),
		Quarter:              docString(d, "Quarter"),
		Year:                 cast.ToInt(d["Year"]),
		SavedAt:              docString(d, "Saved_at"),
		Status:               docString(d, "Activity_status"),
		Type:                 docString(d, "Activity_type"),
		AssignedTo:           docString(d, "Assigned_to"),
		Title:                docString(d, "Activity_title"),
		Description:          docString(d, "Description"),
		Impact:               docString(d, "Impact"),
		BaselineBurnoutRisk:  docNumber(d, "Baseline_Burnout_Risk"),
		BaselineTurnoverRisk: docNumber(d, "Baseline_Turnover_Risk"),
		CompletedAt:          docString(d, "Completed_at"),
		ImpactBurnout:        docString(d, "Impact_Burnout"),
		ImpactTurnover:       docString(d, "Impact_Turnover"),
	}
}

// FetchActions scans the action log into typed entries.
func (s *Store) FetchActions(ctx context.Context) ([]types.ActionEntry, error) {
	docs, err := s.FetchAll(ctx, TableActions)
	if err != nil {
		return nil, err
	}
	out := make([]types.ActionEntry, 0, len(docs))
	for _, d := range docs {
		out = append(out, actionFromDoc(d))
	}
	return out, nil
}
