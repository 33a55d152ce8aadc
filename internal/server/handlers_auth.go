package server

import (
	"errors"
	"net/http"
	"unicode"

	"github.com/ganttline/ganttline/internal/auth"
	"github.com/ganttline/ganttline/internal/db"
)

func validateUsername(username string) string {
	if len(username) < 4 {
		return "Username too short. Must be at least 4 characters."
	}
	if len(username) > 32 {
		return "Username too long. Must be at most 32 characters."
	}
	for _, r := range username {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return "Username must contain only letters and numbers."
		}
	}
	return ""
}

func validatePassword(password string) string {
	if len(password) < 8 || len(password) > 32 {
		return "Password must be between 8 and 32 characters."
	}
	var hasUpper, hasLower, hasDigit, hasLetter, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
			hasLetter = true
		case unicode.IsLower(r):
			hasLower = true
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		default:
			hasSpecial = true
		}
	}
	switch {
	case !hasUpper:
		return "Password must contain at least one uppercase letter."
	case !hasLower:
		return "Password must contain at least one lowercase letter."
	case !hasDigit:
		return "Password must contain at least one number."
	case !hasLetter:
		return "Password must contain at least one letter."
	case !hasSpecial:
		return "Password must contain at least one special character."
	}
	return ""
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "invalid_payload", "Missing username or password.")
		return
	}

	if _, err := s.store.GetUser(req.Username); err == nil {
		writeError(w, http.StatusConflict, "user_exists", "User already exists.")
		return
	} else if !errors.Is(err, db.ErrNotFound) {
		s.logger.Error("check existing user", "error", err)
		writeError(w, http.StatusInternalServerError, "internal", "Internal server error.")
		return
	}

	if msg := validateUsername(req.Username); msg != "" {
		writeError(w, http.StatusBadRequest, "invalid_username", msg)
		return
	}
	if msg := validatePassword(req.Password); msg != "" {
		writeError(w, http.StatusBadRequest, "invalid_password", msg)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		s.logger.Error("hash password", "error", err)
		writeError(w, http.StatusInternalServerError, "internal", "Internal server error.")
		return
	}
	secret, err := auth.GenerateSecretKey()
	if err != nil {
		s.logger.Error("generate secret key", "error", err)
		writeError(w, http.StatusInternalServerError, "internal", "Internal server error.")
		return
	}

	if err := s.store.CreateUser(db.User{
		Username:     req.Username,
		PasswordHash: hash,
		SecretKey:    secret,
	}); err != nil {
		s.logger.Error("create user", "error", err)
		writeError(w, http.StatusInternalServerError, "internal", "Internal server error.")
		return
	}

	s.logger.Info("user registered", "user", req.Username)
	writeJSON(w, http.StatusOK, authResponse{Username: req.Username})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusUnauthorized, "bad_credentials", "Username or password is incorrect.")
		return
	}

	user, err := s.store.GetUser(req.Username)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "This user does not exist.")
		} else {
			s.logger.Error("load user", "error", err)
			writeError(w, http.StatusInternalServerError, "internal", "Internal server error.")
		}
		return
	}

	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		writeError(w, http.StatusUnauthorized, "bad_credentials", "Username or password is incorrect.")
		return
	}

	token, err := auth.NewAccessToken(user.Username, user.SecretKey, s.now())
	if err != nil {
		s.logger.Error("mint access token", "error", err)
		writeError(w, http.StatusInternalServerError, "internal", "Internal server error.")
		return
	}

	writeJSON(w, http.StatusOK, authResponse{Username: user.Username, AccessToken: token})
}
