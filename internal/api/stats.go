package api

import (
	"net/http"
	"time"

	"github.com/huckwnmo101/taskdeck/internal/stats"
	"github.com/huckwnmo101/taskdeck/internal/types"
)

func (s *Server) handleStatsOverview(w http.ResponseWriter, r *http.Request) {
	period := types.Period(r.URL.Query().Get("period"))
	if period == "" {
		period = types.PeriodWeek
	}
	if !period.IsValid() {
		writeFieldErrors(w, map[string]string{"period": "must be day, week or month"})
		return
	}

	tasks, err := s.store.ListTasks(r.Context(), userID(r), types.TaskFilter{})
	if err != nil {
		writeInternalError(w, "listing tasks", err)
		return
	}
	writeJSON(w, http.StatusOK, stats.Overview(tasks, time.Now(), period))
}

func (s *Server) handleStatsByCategory(w http.ResponseWriter, r *http.Request) {
	owner := userID(r)

	tasks, err := s.store.ListTasks(r.Context(), owner, types.TaskFilter{})
	if err != nil {
		writeInternalError(w, "listing tasks", err)
		return
	}
	categories, err := s.store.ListCategories(r.Context(), owner)
	if err != nil {
		writeInternalError(w, "listing categories", err)
		return
	}
	writeJSON(w, http.StatusOK, stats.ByCategory(tasks, categories))
}
