package api

import (
	"net/http"

	"github.com/huckwnmo101/taskdeck/internal/types"
)

func (s *Server) handleCreateComment(w http.ResponseWriter, r *http.Request) {
	taskID, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if len(req.Content) == 0 {
		writeFieldErrors(w, map[string]string{"content": "content is required"})
		return
	}

	owner := userID(r)
	task, err := s.store.GetTask(r.Context(), taskID, owner)
	if err != nil {
		writeInternalError(w, "getting task", err)
		return
	}
	if task == nil {
		writeNotFound(w)
		return
	}

	comment, err := s.store.CreateComment(r.Context(), &types.Comment{
		TaskID:  taskID,
		UserID:  owner,
		Content: req.Content,
	})
	if err != nil {
		writeInternalError(w, "creating comment", err)
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}

func (s *Server) handleUpdateComment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if len(req.Content) == 0 {
		writeFieldErrors(w, map[string]string{"content": "content is required"})
		return
	}

	comment, err := s.store.UpdateComment(r.Context(), id, userID(r), req.Content)
	if err != nil {
		writeInternalError(w, "updating comment", err)
		return
	}
	if comment == nil {
		writeNotFound(w)
		return
	}
	writeJSON(w, http.StatusOK, comment)
}

func (s *Server) handleDeleteComment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	if err := s.store.DeleteComment(r.Context(), id, userID(r)); err != nil {
		writeInternalError(w, "deleting comment", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
