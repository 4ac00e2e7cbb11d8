package api

import (
	"net/http"

	"github.com/huckwnmo101/taskdeck/internal/rules"
	"github.com/huckwnmo101/taskdeck/internal/types"
)

func (s *Server) handleCreateSubtask(w http.ResponseWriter, r *http.Request) {
	taskID, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req struct {
		Title   string `json:"title"`
		IsToday bool   `json:"is_today"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if len(req.Title) == 0 || len(req.Title) > 500 {
		writeFieldErrors(w, map[string]string{"title": "title must be 1-500 characters"})
		return
	}

	// Parent ownership gate; a foreign task looks missing
	task, err := s.store.GetTask(r.Context(), taskID, userID(r))
	if err != nil {
		writeInternalError(w, "getting task", err)
		return
	}
	if task == nil {
		writeNotFound(w)
		return
	}

	subtask, err := s.store.CreateSubtask(r.Context(), &types.Subtask{
		TaskID:  taskID,
		Title:   req.Title,
		IsToday: req.IsToday,
	})
	if err != nil {
		writeInternalError(w, "creating subtask", err)
		return
	}
	writeJSON(w, http.StatusCreated, subtask)
}

func (s *Server) handleUpdateSubtask(w http.ResponseWriter, r *http.Request) {
	taskID, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	subtaskID, ok := pathID(r, "subtaskID")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid subtask id")
		return
	}

	var req struct {
		Title       *string `json:"title"`
		IsCompleted *bool   `json:"is_completed"`
		IsToday     *bool   `json:"is_today"`
		Order       *int    `json:"order"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Title != nil && (len(*req.Title) == 0 || len(*req.Title) > 500) {
		writeFieldErrors(w, map[string]string{"title": "title must be 1-500 characters"})
		return
	}

	subtask, err := s.rules.UpdateSubtask(r.Context(), userID(r), taskID, subtaskID, rules.SubtaskChange{
		Title:       req.Title,
		IsCompleted: req.IsCompleted,
		IsToday:     req.IsToday,
		Order:       req.Order,
	})
	if err != nil {
		writeInternalError(w, "updating subtask", err)
		return
	}
	if subtask == nil {
		writeNotFound(w)
		return
	}
	writeJSON(w, http.StatusOK, subtask)
}

func (s *Server) handleDeleteSubtask(w http.ResponseWriter, r *http.Request) {
	taskID, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	subtaskID, ok := pathID(r, "subtaskID")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid subtask id")
		return
	}

	task, err := s.store.GetTask(r.Context(), taskID, userID(r))
	if err != nil {
		writeInternalError(w, "getting task", err)
		return
	}
	if task == nil {
		writeNotFound(w)
		return
	}

	if err := s.store.DeleteSubtask(r.Context(), subtaskID, taskID); err != nil {
		writeInternalError(w, "deleting subtask", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
