package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ganttline/ganttline/internal/auth"
	"github.com/ganttline/ganttline/internal/db"
	"github.com/ganttline/ganttline/types"
)

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, types.NewAPIError(code, message, nil))
}

// decodeJSON parses the request body into dst, replying 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_payload", "Invalid JSON payload.")
		return false
	}
	return true
}

// authenticate resolves an access token to its account. On success it
// returns the username plus the token to echo back, renewed when expiry is
// inside the renew-ahead window. On failure it writes the error response
// itself: 410 for expired tokens, 403 for everything else.
func (s *Server) authenticate(w http.ResponseWriter, token string) (string, string, bool) {
	if token == "" {
		writeError(w, http.StatusForbidden, "invalid_token", "Missing access token.")
		return "", "", false
	}

	username, err := auth.Subject(token)
	if err != nil {
		writeError(w, http.StatusForbidden, "invalid_token", "Invalid access token.")
		return "", "", false
	}

	user, err := s.store.GetUser(username)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(w, http.StatusForbidden, "invalid_token", "Invalid access token.")
		} else {
			s.logger.Error("look up user for auth", "error", err)
			writeError(w, http.StatusInternalServerError, "internal", "Internal server error.")
		}
		return "", "", false
	}

	now := s.now()
	expiresAt, err := auth.VerifyAccessToken(token, user.SecretKey, now)
	if err != nil {
		if errors.Is(err, auth.ErrTokenExpired) {
			writeError(w, http.StatusGone, "token_expired", "Access expired.")
		} else {
			writeError(w, http.StatusForbidden, "invalid_token", "Invalid access token.")
		}
		return "", "", false
	}

	if auth.NeedsRenewal(expiresAt, now) {
		fresh, err := auth.NewAccessToken(username, user.SecretKey, now)
		if err != nil {
			s.logger.Error("renew access token", "user", username, "error", err)
			writeError(w, http.StatusInternalServerError, "internal", "Internal server error.")
			return "", "", false
		}
		token = fresh
	}

	return username, token, true
}

// requireProjectAccess loads the project and checks the user administers it.
// Writes 404 when the project is missing and 403 when owned by someone else.
func (s *Server) requireProjectAccess(w http.ResponseWriter, projectID, username string) (*db.ProjectRecord, bool) {
	if projectID == "" {
		writeError(w, http.StatusBadRequest, "invalid_payload", "Project id cannot be empty.")
		return nil, false
	}
	project, err := s.store.GetProject(projectID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "Project not found.")
		} else {
			s.logger.Error("load project", "project", projectID, "error", err)
			writeError(w, http.StatusInternalServerError, "internal", "Internal server error.")
		}
		return nil, false
	}
	if project.Admin != username {
		writeError(w, http.StatusForbidden, "forbidden", "You don't have access to this project.")
		return nil, false
	}
	return project, true
}
