package api

import (
	"net/http"

	"github.com/huckwnmo101/taskdeck/internal/stats"
	"github.com/huckwnmo101/taskdeck/internal/types"
)

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := s.store.ListProjects(r.Context(), userID(r))
	if err != nil {
		writeInternalError(w, "listing projects", err)
		return
	}
	if projects == nil {
		projects = []*types.Project{}
	}
	writeJSON(w, http.StatusOK, projects)
}

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Color       string `json:"color"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if len(req.Name) == 0 || len(req.Name) > 200 {
		writeFieldErrors(w, map[string]string{"name": "name must be 1-200 characters"})
		return
	}

	project, err := s.store.CreateProject(r.Context(), &types.Project{
		UserID:      userID(r),
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
	})
	if err != nil {
		writeInternalError(w, "creating project", err)
		return
	}
	writeJSON(w, http.StatusCreated, project)
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	project, err := s.store.GetProject(r.Context(), id, userID(r))
	if err != nil {
		writeInternalError(w, "getting project", err)
		return
	}
	if project == nil {
		writeNotFound(w)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

func (s *Server) handleUpdateProject(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
		Color       *string `json:"color"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		if len(*req.Name) == 0 || len(*req.Name) > 200 {
			writeFieldErrors(w, map[string]string{"name": "name must be 1-200 characters"})
			return
		}
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Color != nil {
		updates["color"] = *req.Color
	}

	project, err := s.store.UpdateProject(r.Context(), id, userID(r), updates)
	if err != nil {
		writeInternalError(w, "updating project", err)
		return
	}
	if project == nil {
		writeNotFound(w)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	if err := s.store.DeleteProject(r.Context(), id, userID(r)); err != nil {
		writeInternalError(w, "deleting project", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleProjectStats(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	owner := userID(r)

	project, err := s.store.GetProject(r.Context(), id, owner)
	if err != nil {
		writeInternalError(w, "getting project", err)
		return
	}
	if project == nil {
		writeNotFound(w)
		return
	}

	tasks, err := s.store.ListTasks(r.Context(), owner, types.TaskFilter{ProjectID: &id})
	if err != nil {
		writeInternalError(w, "listing project tasks", err)
		return
	}
	writeJSON(w, http.StatusOK, stats.ByProject(tasks, id))
}
