package directory

import (
	"context"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cast"
	"wellbeing-insights-go/internal/logger"
	"wellbeing-insights-go/internal/types"
)

type Source interface {
	FetchEmployees(ctx context.Context) ([]types.EmployeeRecord, error)
	FetchDepartments(ctx context.Context) ([]map[string]interface{}, error)
}

// Directory answers the dashboard's filter lookups: which departments
// exist and who manages them.
type Directory struct {
	src Source
	log *logrus.Entry
}

func NewDirectory(src Source, lg *logger.Logger) *Directory {
	return &Directory{src: src, log: lg.Component("directory")}
}

// departmentName reads the name out of a directory document, whichever
// key the import used.
func departmentName(doc map[string]interface{}) string {
	for _, k := range []string{"Department_Name", "Department", "Name"} {
		v, ok := doc[k]
		if !ok || v == nil {
			continue
		}
		if s := strings.TrimSpace(cast.ToString(v)); s != "" {
			return s
		}
	}
	return ""
}

// Departments returns the sorted department names, merging the
// directory table with names that only appear on employee records.
// Dedup is case-insensitive; the first spelling seen wins.
func (d *Directory) Departments(ctx context.Context) ([]string, error) {
	docs, err := d.src.FetchDepartments(ctx)
	if err != nil {
		return nil, err
	}
	emps, err := d.src.FetchEmployees(ctx)
	if err != nil {
		return nil, err
	}

	var names []string
	seen := map[string]struct{}{}
	add := func(name string) {
		name = strings.TrimSpace(name)
		if name == "" {
			return
		}
		k := strings.ToLower(name)
		if _, ok := seen[k]; ok {
			return
		}
		seen[k] = struct{}{}
		names = append(names, name)
	}
	for _, doc := range docs {
		add(departmentName(doc))
	}
	for _, e := range emps {
		add(e.Department)
	}
	sort.Strings(names)

	d.log.WithField("departments", len(names)).Debug("department list built")
	return names, nil
}

// Managers lists the active managers of one department.
func (d *Directory) Managers(ctx context.Context, department string) ([]types.EmployeeRecord, error) {
	emps, err := d.src.FetchEmployees(ctx)
	if err != nil {
		return nil, err
	}

	want := strings.TrimSpace(department)
	var out []types.EmployeeRecord
	for _, e := range emps {
		if !e.IsActive || !strings.EqualFold(e.Role, "Manager") {
			continue
		}
		if !strings.EqualFold(strings.TrimSpace(e.Department), want) {
			continue
		}
		out = append(out, e)
	}

	d.log.WithFields(logrus.Fields{"department": department, "managers": len(out)}).Debug("manager lookup")
	return out, nil
}
