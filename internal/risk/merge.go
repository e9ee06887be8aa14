package risk

import (
	"strings"

	"wellbeing-insights-go/internal/types"
)

// deptKey folds a department name for join and grouping comparisons.
func deptKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

type deptAggregate struct {
	avgTenure      *float64
	totalEmployees *float64
	avgWorkload    *float64
}

// Merge enriches each survey response with department-level aggregates:
// mean tenure and headcount from the employee table, mean logged hours from
// the workload table. Departments present in the survey but absent from the
// employee table come through with nil aggregates, not an error. With no
// employee data at all, headcount defaults to 0 and the means stay nil.
func Merge(employees []types.EmployeeRecord, workload []types.WorkloadRecord, survey []types.SurveyRecord) []types.EnrichedRow {
	type acc struct {
		tenureSum float64
		tenureN   int
		headcount float64
		hoursSum  float64
		hoursN    int
	}

	depts := make(map[string]*acc)
	empDept := make(map[string]string)
	for _, e := range employees {
		k := deptKey(e.Department)
		if e.EmployeeID != "" {
			empDept[e.EmployeeID] = k
		}
		if k == "" {
			continue
		}
		a := depts[k]
		if a == nil {
			a = &acc{}
			depts[k] = a
		}
		if e.TenureYears != nil {
			a.tenureSum += *e.TenureYears
			a.tenureN++
		}
		if e.EmployeeID != "" {
			a.headcount++
		}
	}

	// Workload rows attribute to a department through the employee join;
	// rows with an unknown employee carry no department and are skipped.
	for _, w := range workload {
		k, ok := empDept[w.EmployeeID]
		if !ok || k == "" || w.HoursLogged == nil {
			continue
		}
		a := depts[k]
		if a == nil {
			a = &acc{}
			depts[k] = a
		}
		a.hoursSum += *w.HoursLogged
		a.hoursN++
	}

	aggregates := make(map[string]deptAggregate, len(depts))
	for k, a := range depts {
		agg := deptAggregate{}
		if a.tenureN > 0 {
			v := a.tenureSum / float64(a.tenureN)
			agg.avgTenure = &v
		}
		hc := a.headcount
		agg.totalEmployees = &hc
		if a.hoursN > 0 {
			v := a.hoursSum / float64(a.hoursN)
			agg.avgWorkload = &v
		}
		aggregates[k] = agg
	}

	noEmployees := len(employees) == 0

	out := make([]types.EnrichedRow, 0, len(survey))
	for _, s := range survey {
		row := types.EnrichedRow{SurveyRecord: s}
		if noEmployees {
			zero := 0.0
			row.TotalEmployees = &zero
		} else if agg, ok := aggregates[deptKey(s.Department)]; ok {
			row.AvgDeptTenure = agg.avgTenure
			row.TotalEmployees = agg.totalEmployees
			row.AvgDeptWorkload = agg.avgWorkload
		}
		out = append(out, row)
	}
	return out
}
