package ingest

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"wellbeing-insights-go/internal/types"
)

// columns maps survey fields to header positions; -1 means the column
// was not found and every cell read from it comes back empty.
type columns struct {
	responseID int
	employeeID int
	department int
	quarter    int
	date       int

	q1, q2, q3, q4, q5 int

	comments  int
	rephrased int
	category  int
	sentScore int
	sentLabel int
	season    int
}

// mapHeader locates columns by header heuristics so exports with
// slightly different spellings ("Employee ID", "Q5 eNPS") still load.
func mapHeader(header []string) columns {
	c := columns{
		responseID: -1, employeeID: -1, department: -1, quarter: -1, date: -1,
		q1: -1, q2: -1, q3: -1, q4: -1, q5: -1,
		comments: -1, rephrased: -1, category: -1, sentScore: -1, sentLabel: -1, season: -1,
	}
	for i, h := range header {
		l := strings.ToLower(strings.TrimSpace(h))
		switch {
		case strings.Contains(l, "response") && strings.Contains(l, "id"):
			if c.responseID == -1 {
				c.responseID = i
			}
		case strings.Contains(l, "employee"):
			if c.employeeID == -1 {
				c.employeeID = i
			}
		case strings.Contains(l, "department") || l == "dept":
			if c.department == -1 {
				c.department = i
			}
		case strings.Contains(l, "quarter"):
			if c.quarter == -1 {
				c.quarter = i
			}
		case strings.Contains(l, "submission") || strings.Contains(l, "date"):
			if c.date == -1 {
				c.date = i
			}
		case strings.HasPrefix(l, "q1") || strings.Contains(l, "job_satisfaction") || strings.Contains(l, "job satisfaction"):
			if c.q1 == -1 {
				c.q1 = i
			}
		case strings.HasPrefix(l, "q2") || strings.Contains(l, "work_life") || strings.Contains(l, "work life"):
			if c.q2 == -1 {
				c.q2 = i
			}
		case strings.HasPrefix(l, "q3") || strings.Contains(l, "manager"):
			if c.q3 == -1 {
				c.q3 = i
			}
		case strings.HasPrefix(l, "q4") || strings.Contains(l, "growth"):
			if c.q4 == -1 {
				c.q4 = i
			}
		case strings.HasPrefix(l, "q5") || strings.Contains(l, "enps"):
			if c.q5 == -1 {
				c.q5 = i
			}
		case strings.Contains(l, "rephrase"):
			if c.rephrased == -1 {
				c.rephrased = i
			}
		case strings.Contains(l, "comment"):
			if c.comments == -1 {
				c.comments = i
			}
		case strings.Contains(l, "categor"):
			if c.category == -1 {
				c.category = i
			}
		case strings.Contains(l, "sentiment") && strings.Contains(l, "label"):
			if c.sentLabel == -1 {
				c.sentLabel = i
			}
		case strings.Contains(l, "sentiment"):
			if c.sentScore == -1 {
				c.sentScore = i
			}
		case strings.Contains(l, "season") || strings.Contains(l, "event"):
			if c.season == -1 {
				c.season = i
			}
		}
	}
	return c
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// cellNumber keeps a sparse cell sparse: blanks, nan/null markers and
// unparseable values come back nil, never zero.
func cellNumber(row []string, idx int) *float64 {
	s := cell(row, idx)
	if s == "" || strings.EqualFold(s, "nan") || strings.EqualFold(s, "null") || strings.EqualFold(s, "none") {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}

func rowToRecord(row []string, c columns) types.SurveyRecord {
	return types.SurveyRecord{
		ResponseID:          cell(row, c.responseID),
		EmployeeID:          cell(row, c.employeeID),
		Department:          cell(row, c.department),
		Quarter:             cell(row, c.quarter),
		SubmissionDate:      cell(row, c.date),
		JobSatisfaction:     cellNumber(row, c.q1),
		WorkLifeBalance:     cellNumber(row, c.q2),
		ManagerSupport:      cellNumber(row, c.q3),
		GrowthOpportunities: cellNumber(row, c.q4),
		ENPS:                cellNumber(row, c.q5),
		Comments:            cell(row, c.comments),
		RephrasedComment:    cell(row, c.rephrased),
		Categories:          cell(row, c.category),
		SentimentScore:      cellNumber(row, c.sentScore),
		SentimentLabel:      cell(row, c.sentLabel),
		EventSeason:         cell(row, c.season),
	}
}

func blankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func recordsFromRows(rows [][]string) ([]types.SurveyRecord, error) {
	if len(rows) <= 1 {
		return nil, fmt.Errorf("no data rows")
	}
	cols := mapHeader(rows[0])
	var out []types.SurveyRecord
	for i, r := range rows {
		if i == 0 || blankRow(r) {
			continue
		}
		out = append(out, rowToRecord(r, cols))
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no data rows")
	}
	return out, nil
}

// ParseCSV reads a survey export in CSV form. Ragged rows are tolerated;
// missing cells read as empty.
func ParseCSV(r io.Reader) ([]types.SurveyRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return recordsFromRows(rows)
}

// ParseXLSX reads the first sheet of a survey workbook.
func ParseXLSX(r io.Reader) ([]types.SurveyRecord, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	return recordsFromRows(rows)
}

// ParseFile picks the parser from the filename extension.
func ParseFile(filename string, data []byte) ([]types.SurveyRecord, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return ParseCSV(bytes.NewReader(data))
	case ".xlsx", ".xlsm":
		return ParseXLSX(bytes.NewReader(data))
	default:
		return nil, fmt.Errorf("unsupported file type %q", filepath.Ext(filename))
	}
}
