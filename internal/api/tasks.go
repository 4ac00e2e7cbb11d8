package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/huckwnmo101/taskdeck/internal/rules"
	"github.com/huckwnmo101/taskdeck/internal/types"
)

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	filter, fields := taskFilterFromQuery(r)
	if len(fields) > 0 {
		writeFieldErrors(w, fields)
		return
	}

	tasks, err := s.store.ListTasks(r.Context(), userID(r), filter)
	if err != nil {
		writeInternalError(w, "listing tasks", err)
		return
	}
	if tasks == nil {
		tasks = []*types.Task{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

// taskFilterFromQuery parses list filters from query parameters.
// status and priority accept comma-separated sets.
func taskFilterFromQuery(r *http.Request) (types.TaskFilter, map[string]string) {
	q := r.URL.Query()
	filter := types.TaskFilter{Search: q.Get("search")}
	fields := map[string]string{}

	if raw := q.Get("status"); raw != "" {
		for _, v := range strings.Split(raw, ",") {
			status := types.Status(v)
			if !status.IsValid() {
				fields["status"] = "invalid status: " + v
				break
			}
			filter.Status = append(filter.Status, status)
		}
	}

	if raw := q.Get("priority"); raw != "" {
		for _, v := range strings.Split(raw, ",") {
			priority := types.Priority(v)
			if !priority.IsValid() {
				fields["priority"] = "invalid priority: " + v
				break
			}
			filter.Priority = append(filter.Priority, priority)
		}
	}

	parseID := func(name string) *int64 {
		raw := q.Get(name)
		if raw == "" {
			return nil
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			fields[name] = "must be an integer"
			return nil
		}
		return &id
	}

	filter.CategoryID = parseID("category_id")
	filter.ProjectID = parseID("project_id")
	filter.DueDateFrom = parseID("due_from")
	filter.DueDateTo = parseID("due_to")

	if raw := q.Get("is_today"); raw != "" {
		isToday, err := strconv.ParseBool(raw)
		if err != nil {
			fields["is_today"] = "must be a boolean"
		} else {
			filter.IsToday = &isToday
		}
	}

	return filter, fields
}

type createTaskRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Status      string  `json:"status"`
	Priority    string  `json:"priority"`
	DueDate     *int64  `json:"due_date"`
	IsToday     bool    `json:"is_today"`
	ProjectID   *int64  `json:"project_id"`
	CategoryID  *int64  `json:"category_id"`
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	task := &types.Task{
		UserID:      userID(r),
		ProjectID:   req.ProjectID,
		CategoryID:  req.CategoryID,
		Title:       req.Title,
		Description: req.Description,
		Status:      types.Status(req.Status),
		Priority:    types.Priority(req.Priority),
		DueDate:     req.DueDate,
		IsToday:     req.IsToday,
	}
	if task.Status == "" {
		task.Status = types.StatusTodo
	}
	if task.Priority == "" {
		task.Priority = types.PriorityMedium
	}
	if err := task.Validate(); err != nil {
		writeFieldErrors(w, map[string]string{"task": err.Error()})
		return
	}

	created, err := s.store.CreateTask(r.Context(), task)
	if err != nil {
		writeInternalError(w, "creating task", err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	task, err := s.store.GetTask(r.Context(), id, userID(r))
	if err != nil {
		writeInternalError(w, "getting task", err)
		return
	}
	if task == nil {
		writeNotFound(w)
		return
	}

	if task.Subtasks, err = s.store.ListSubtasks(r.Context(), id); err != nil {
		writeInternalError(w, "listing subtasks", err)
		return
	}
	if task.Comments, err = s.store.ListComments(r.Context(), id); err != nil {
		writeInternalError(w, "listing comments", err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

type updateTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	Priority    *string `json:"priority"`
	DueDate     *int64  `json:"due_date"`
	IsToday     *bool   `json:"is_today"`
	IsCompleted *bool   `json:"is_completed"`
	ProjectID   *int64  `json:"project_id"`
	CategoryID  *int64  `json:"category_id"`
}

// handleUpdateTask applies a partial update. A zero project_id,
// category_id or due_date clears the field. Setting is_completed stamps
// or clears completed_at; unlike the toggle endpoint it does not force a
// status change.
func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req updateTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		if len(*req.Title) == 0 || len(*req.Title) > 500 {
			writeFieldErrors(w, map[string]string{"title": "title must be 1-500 characters"})
			return
		}
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Status != nil {
		if !types.Status(*req.Status).IsValid() {
			writeFieldErrors(w, map[string]string{"status": "invalid status: " + *req.Status})
			return
		}
		updates["status"] = *req.Status
	}
	if req.Priority != nil {
		if !types.Priority(*req.Priority).IsValid() {
			writeFieldErrors(w, map[string]string{"priority": "invalid priority: " + *req.Priority})
			return
		}
		updates["priority"] = *req.Priority
	}
	if req.DueDate != nil {
		if *req.DueDate == 0 {
			updates["due_date"] = nil
		} else {
			updates["due_date"] = *req.DueDate
		}
	}
	if req.IsToday != nil {
		updates["is_today"] = *req.IsToday
	}
	if req.IsCompleted != nil {
		updates["is_completed"] = *req.IsCompleted
		if *req.IsCompleted {
			updates["completed_at"] = time.Now().UnixMilli()
		} else {
			updates["completed_at"] = nil
		}
	}
	if req.ProjectID != nil {
		if *req.ProjectID == 0 {
			updates["project_id"] = nil
		} else {
			updates["project_id"] = *req.ProjectID
		}
	}
	if req.CategoryID != nil {
		if *req.CategoryID == 0 {
			updates["category_id"] = nil
		} else {
			updates["category_id"] = *req.CategoryID
		}
	}

	task, err := s.store.UpdateTask(r.Context(), id, userID(r), updates)
	if err != nil {
		writeInternalError(w, "updating task", err)
		return
	}
	if task == nil {
		writeNotFound(w)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	if err := s.store.DeleteTask(r.Context(), id, userID(r)); err != nil {
		writeInternalError(w, "deleting task", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleToggleTask(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	task, err := s.rules.ToggleTask(r.Context(), userID(r), id)
	if err != nil {
		writeInternalError(w, "toggling task", err)
		return
	}
	if task == nil {
		writeNotFound(w)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) handleToday(w http.ResponseWriter, r *http.Request) {
	owner := userID(r)

	tasks, err := s.store.ListTasks(r.Context(), owner, types.TaskFilter{})
	if err != nil {
		writeInternalError(w, "listing tasks", err)
		return
	}
	subtasks, err := s.store.ListTodaySubtasks(r.Context(), owner)
	if err != nil {
		writeInternalError(w, "listing today subtasks", err)
		return
	}

	view := rules.TodayView{
		Tasks:    rules.TodayTasks(tasks, time.Now()),
		Subtasks: subtasks,
	}
	if view.Tasks == nil {
		view.Tasks = []*types.Task{}
	}
	if view.Subtasks == nil {
		view.Subtasks = []*types.Subtask{}
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleAvailableForToday(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.store.ListTasks(r.Context(), userID(r), types.TaskFilter{})
	if err != nil {
		writeInternalError(w, "listing tasks", err)
		return
	}

	available := rules.AvailableForToday(tasks, time.Now())
	if available == nil {
		available = []*types.Task{}
	}
	writeJSON(w, http.StatusOK, available)
}
