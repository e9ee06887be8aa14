package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"wellbeing-insights-go/internal/actions"
	"wellbeing-insights-go/internal/recommend"
	"wellbeing-insights-go/internal/risk"
	"wellbeing-insights-go/internal/season"
	"wellbeing-insights-go/internal/store"
	"wellbeing-insights-go/internal/theme"
)

// renderError maps service errors onto HTTP statuses. Empty-data
// sentinels are 404s, validation sentinels are 400s, everything else
// is a logged 500.
func (s *Server) renderError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	switch {
	case errors.Is(err, risk.ErrNoEmployees),
		errors.Is(err, risk.ErrNoSurveyData),
		errors.Is(err, store.ErrNotFound):
		render.Render(w, r, NotFoundResponse(msg, err))
	case errors.Is(err, risk.ErrNoGroupColumns),
		errors.Is(err, actions.ErrMissingFields),
		errors.Is(err, actions.ErrInvalidType),
		errors.Is(err, actions.ErrInvalidStatus):
		render.Render(w, r, BadRequestResponse(msg, err))
	default:
		s.log.WithError(err).Error(msg)
		render.Render(w, r, InternalErrorResponse(msg, err))
	}
}

func (s *Server) getMetrics(w http.ResponseWriter, r *http.Request) {
	year, err := queryInt(r, "year")
	if err != nil {
		render.Render(w, r, BadRequestResponse("invalid query", err))
		return
	}
	yr := s.now().Year()
	if year != nil {
		yr = *year
	}

	groups, err := s.deps.Engine.AnalyzeFromStore(r.Context(), risk.Options{
		GroupBy: []string{"Department", "Year", "Quarter"},
	})
	if err != nil {
		s.renderError(w, r, "metrics analysis failed", err)
		return
	}

	records := risk.Rollup(groups, risk.RollupQuery{
		Department: queryString(r, "departments", "department"),
		Quarter:    queryString(r, "quarter"),
		Year:       yr,
		ByQuarter:  strings.EqualFold(queryString(r, "group_by"), "quarter"),
	})
	render.Render(w, r, SuccessResponse("metrics computed", records))
}

func (s *Server) getMetricsPercentage(w http.ResponseWriter, r *http.Request) {
	groupBy := splitList(queryString(r, "group_by"))
	if len(groupBy) == 0 {
		groupBy = []string{"Department", "Year", "Quarter"}
	}

	rows, err := s.deps.Engine.PercentageJSONFromStore(r.Context(), risk.Options{GroupBy: groupBy})
	if err != nil {
		s.renderError(w, r, "percentage metrics failed", err)
		return
	}
	render.Render(w, r, SuccessResponse("percentage metrics computed", rows))
}

func (s *Server) getSeasonInsights(w http.ResponseWriter, r *http.Request) {
	year, err := queryInt(r, "year")
	if err != nil {
		render.Render(w, r, BadRequestResponse("invalid query", err))
		return
	}

	out, err := s.deps.Seasons.Insights(r.Context(), season.InsightsQuery{
		Department: queryString(r, "department"),
		Quarter:    queryString(r, "quarter"),
		Year:       year,
		SeasonType: queryString(r, "season_type"),
	})
	if err != nil {
		s.renderError(w, r, "season insights failed", err)
		return
	}
	render.Render(w, r, SuccessResponse("season insights computed", out))
}

func (s *Server) getTopEvents(w http.ResponseWriter, r *http.Request) {
	year, err := queryInt(r, "year")
	if err != nil {
		render.Render(w, r, BadRequestResponse("invalid query", err))
		return
	}

	out, err := s.deps.Seasons.TopEvents(r.Context(), season.TopEventsQuery{
		Department: queryString(r, "department"),
		Quarter:    queryString(r, "quarter"),
		Year:       year,
	})
	if err != nil {
		s.renderError(w, r, "top events failed", err)
		return
	}
	render.Render(w, r, SuccessResponse("top events computed", out))
}

func themeQuery(r *http.Request) (theme.Query, error) {
	year, err := queryInt(r, "year")
	if err != nil {
		return theme.Query{}, err
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		return theme.Query{}, err
	}

	q := theme.Query{
		Year:           year,
		Quarter:        queryString(r, "quarter"),
		Department:     queryString(r, "department"),
		SentimentLabel: queryString(r, "sentiment_label"),
	}
	if limit != nil {
		q.Limit = *limit
	}
	return q, nil
}

func (s *Server) getThemeInsights(w http.ResponseWriter, r *http.Request) {
	q, err := themeQuery(r)
	if err != nil {
		render.Render(w, r, BadRequestResponse("invalid query", err))
		return
	}

	out, err := s.deps.Themes.Insights(r.Context(), q)
	if err != nil {
		s.renderError(w, r, "theme insights failed", err)
		return
	}
	render.Render(w, r, SuccessResponse("theme insights computed", out))
}

func (s *Server) getRecentFeedback(w http.ResponseWriter, r *http.Request) {
	q, err := themeQuery(r)
	if err != nil {
		render.Render(w, r, BadRequestResponse("invalid query", err))
		return
	}

	out, err := s.deps.Themes.RecentFeedback(r.Context(), q)
	if err != nil {
		s.renderError(w, r, "recent feedback failed", err)
		return
	}
	render.Render(w, r, SuccessResponse("recent feedback fetched", out))
}

func (s *Server) createAction(w http.ResponseWriter, r *http.Request) {
	var req actions.CreateRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.Render(w, r, BadRequestResponse("invalid request body", err))
		return
	}

	entry, err := s.deps.Actions.Create(r.Context(), req)
	if err != nil {
		s.renderError(w, r, "action not saved", err)
		return
	}
	render.Render(w, r, SuccessResponse("action saved", entry))
}

func (s *Server) listActions(w http.ResponseWriter, r *http.Request) {
	year, err := queryInt(r, "year")
	if err != nil {
		render.Render(w, r, BadRequestResponse("invalid query", err))
		return
	}
	month, err := queryInt(r, "month")
	if err != nil {
		render.Render(w, r, BadRequestResponse("invalid query", err))
		return
	}

	entries, err := s.deps.Actions.List(r.Context(), actions.ListQuery{
		Department: queryString(r, "department"),
		Year:       year,
		Month:      month,
	})
	if err != nil {
		s.renderError(w, r, "action list failed", err)
		return
	}
	render.Render(w, r, SuccessResponse("actions fetched", entries))
}

func (s *Server) updateActionStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status string `json:"Activity_status"`
	}
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.Render(w, r, BadRequestResponse("invalid request body", err))
		return
	}

	entry, err := s.deps.Actions.UpdateStatus(r.Context(), chi.URLParam(r, "actionID"), req.Status)
	if errors.Is(err, store.ErrNotFound) {
		render.Render(w, r, NotFoundResponse("Action not found", nil))
		return
	}
	if err != nil {
		s.renderError(w, r, "action not updated", err)
		return
	}
	render.Render(w, r, SuccessResponse("action updated", entry))
}

func (s *Server) generateRecommendations(w http.ResponseWriter, r *http.Request) {
	var req recommend.Request
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.Render(w, r, BadRequestResponse("invalid request body", err))
		return
	}
	if strings.TrimSpace(req.Department) == "" {
		render.Render(w, r, BadRequestResponse("department is required", nil))
		return
	}

	out, err := s.deps.Recommend.Generate(r.Context(), req)
	if err != nil {
		s.renderError(w, r, "recommendation generation failed", err)
		return
	}
	render.Render(w, r, SuccessResponse("recommendations generated", out))
}

func (s *Server) uploadFile(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		render.Render(w, r, BadRequestResponse("file is required", err))
		return
	}
	defer file.Close()

	switch strings.ToLower(filepath.Ext(header.Filename)) {
	case ".csv", ".xlsx", ".xlsm":
	default:
		render.Render(w, r, BadRequestResponse("Invalid file type. Only CSV and Excel files are accepted.", nil))
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		render.Render(w, r, InternalErrorResponse("upload not read", err))
		return
	}

	task, err := s.deps.Ingest.CreateTask(r.Context(), header.Filename)
	if err != nil {
		s.renderError(w, r, "upload task not created", err)
		return
	}

	// Processing outlives the request, so it gets its own context.
	go s.deps.Ingest.Run(context.Background(), task.TaskID, header.Filename, data)

	render.Render(w, r, SuccessResponse("Upload started. Check status with /upload/tasks/{task_id}", map[string]interface{}{
		"task_id": task.TaskID,
	}))
}

func (s *Server) uploadStatus(w http.ResponseWriter, r *http.Request) {
	task, err := s.deps.Ingest.Status(r.Context(), chi.URLParam(r, "taskID"))
	if errors.Is(err, store.ErrNotFound) {
		render.Render(w, r, NotFoundResponse("Task not found", nil))
		return
	}
	if err != nil {
		s.renderError(w, r, "task status failed", err)
		return
	}
	render.Render(w, r, SuccessResponse("task status fetched", task))
}

func (s *Server) listDepartments(w http.ResponseWriter, r *http.Request) {
	departments, err := s.deps.Directory.Departments(r.Context())
	if err != nil {
		s.renderError(w, r, "department list failed", err)
		return
	}
	render.Render(w, r, SuccessResponse("departments fetched", departments))
}

func (s *Server) listManagers(w http.ResponseWriter, r *http.Request) {
	department := queryString(r, "department")
	if department == "" {
		render.Render(w, r, BadRequestResponse("department is required", nil))
		return
	}

	managers, err := s.deps.Directory.Managers(r.Context(), department)
	if err != nil {
		s.renderError(w, r, "manager list failed", err)
		return
	}
	render.Render(w, r, SuccessResponse("managers fetched", managers))
}
