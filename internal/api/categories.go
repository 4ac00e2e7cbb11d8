package api

import (
	"net/http"

	"github.com/huckwnmo101/taskdeck/internal/types"
)

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.store.ListCategories(r.Context(), userID(r))
	if err != nil {
		writeInternalError(w, "listing categories", err)
		return
	}
	if categories == nil {
		categories = []*types.Category{}
	}
	writeJSON(w, http.StatusOK, categories)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name  string `json:"name"`
		Color string `json:"color"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if len(req.Name) == 0 || len(req.Name) > 100 {
		writeFieldErrors(w, map[string]string{"name": "name must be 1-100 characters"})
		return
	}

	category, err := s.store.CreateCategory(r.Context(), &types.Category{
		UserID: userID(r),
		Name:   req.Name,
		Color:  req.Color,
	})
	if err != nil {
		writeInternalError(w, "creating category", err)
		return
	}
	writeJSON(w, http.StatusCreated, category)
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req struct {
		Name  *string `json:"name"`
		Color *string `json:"color"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		if len(*req.Name) == 0 || len(*req.Name) > 100 {
			writeFieldErrors(w, map[string]string{"name": "name must be 1-100 characters"})
			return
		}
		updates["name"] = *req.Name
	}
	if req.Color != nil {
		updates["color"] = *req.Color
	}

	category, err := s.store.UpdateCategory(r.Context(), id, userID(r), updates)
	if err != nil {
		writeInternalError(w, "updating category", err)
		return
	}
	if category == nil {
		writeNotFound(w)
		return
	}
	writeJSON(w, http.StatusOK, category)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	if err := s.store.DeleteCategory(r.Context(), id, userID(r)); err != nil {
		writeInternalError(w, "deleting category", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
