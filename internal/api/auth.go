package api

import (
	"net/http"
	"strings"

	"github.com/huckwnmo101/taskdeck/internal/auth"
	"github.com/huckwnmo101/taskdeck/internal/types"
)

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Token string      `json:"token"`
	User  *types.User `json:"user"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	fields := map[string]string{}
	if !strings.Contains(req.Email, "@") {
		fields["email"] = "a valid email is required"
	}
	if len(req.Password) < 6 {
		fields["password"] = "password must be at least 6 characters"
	}
	if strings.TrimSpace(req.Name) == "" {
		fields["name"] = "name is required"
	}
	if len(fields) > 0 {
		writeFieldErrors(w, fields)
		return
	}

	existing, err := s.store.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		writeInternalError(w, "checking email", err)
		return
	}
	if existing != nil {
		writeError(w, http.StatusConflict, "email already in use")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeFieldErrors(w, map[string]string{"password": err.Error()})
		return
	}

	user, err := s.store.CreateUser(r.Context(), &types.User{
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: hash,
	})
	if err != nil {
		writeInternalError(w, "creating user", err)
		return
	}

	token, err := s.auth.IssueToken(user.ID)
	if err != nil {
		writeInternalError(w, "issuing token", err)
		return
	}
	writeJSON(w, http.StatusCreated, sessionResponse{Token: token, User: user})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	user, err := s.store.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		writeInternalError(w, "looking up user", err)
		return
	}
	// Same answer for unknown email and wrong password
	if user == nil || !auth.CheckPassword(user.PasswordHash, req.Password) {
		writeError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	if err := s.store.TouchUserSignIn(r.Context(), user.ID); err != nil {
		writeInternalError(w, "recording sign-in", err)
		return
	}

	token, err := s.auth.IssueToken(user.ID)
	if err != nil {
		writeInternalError(w, "issuing token", err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{Token: token, User: user})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user, err := s.store.GetUser(r.Context(), userID(r))
	if err != nil {
		writeInternalError(w, "getting user", err)
		return
	}
	if user == nil {
		writeNotFound(w)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
