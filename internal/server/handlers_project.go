package server

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/ganttline/ganttline/internal/db"
)

func validateProjectName(name string) string {
	if name == "" {
		return "Project name cannot be empty."
	}
	if len(name) > 50 {
		return "Project name must be 50 characters or less."
	}
	return ""
}

func (s *Server) handleNewProject(w http.ResponseWriter, r *http.Request) {
	var req newProjectRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	username, token, ok := s.authenticate(w, req.AccessToken)
	if !ok {
		return
	}

	if msg := validateProjectName(req.Name); msg != "" {
		writeError(w, http.StatusBadRequest, "invalid_payload", msg)
		return
	}

	project := db.ProjectRecord{
		ID:    uuid.NewString(),
		Name:  req.Name,
		Admin: username,
	}
	if err := s.store.CreateProject(project); err != nil {
		s.logger.Error("create project", "error", err)
		writeError(w, http.StatusInternalServerError, "internal", "Internal server error.")
		return
	}

	created, err := s.store.GetProject(project.ID)
	if err != nil {
		s.logger.Error("reload project", "error", err)
		writeError(w, http.StatusInternalServerError, "internal", "Internal server error.")
		return
	}

	s.logger.Info("project created", "project", project.ID, "user", username)
	writeJSON(w, http.StatusOK, projectResponse{Project: *created, AccessToken: token})
}

func (s *Server) handleRenameProject(w http.ResponseWriter, r *http.Request) {
	var req renameProjectRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	username, token, ok := s.authenticate(w, req.AccessToken)
	if !ok {
		return
	}

	if req.ProjectID == "" {
		writeError(w, http.StatusBadRequest, "invalid_payload", "Project id cannot be empty.")
		return
	}
	if msg := validateProjectName(req.Name); msg != "" {
		writeError(w, http.StatusBadRequest, "invalid_payload", msg)
		return
	}
	if _, ok := s.requireProjectAccess(w, req.ProjectID, username); !ok {
		return
	}

	project, err := s.store.RenameProject(req.ProjectID, username, req.Name)
	if err != nil {
		s.logger.Error("rename project", "project", req.ProjectID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal", "Internal server error.")
		return
	}

	writeJSON(w, http.StatusOK, projectResponse{Project: *project, AccessToken: token})
}

func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	var req deleteProjectRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	username, token, ok := s.authenticate(w, req.AccessToken)
	if !ok {
		return
	}

	if _, ok := s.requireProjectAccess(w, req.ProjectID, username); !ok {
		return
	}

	if err := s.store.DeleteProject(req.ProjectID, username); err != nil {
		s.logger.Error("delete project", "project", req.ProjectID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal", "Internal server error.")
		return
	}

	s.logger.Info("project deleted", "project", req.ProjectID, "user", username)
	writeJSON(w, http.StatusOK, deleteResponse{ID: req.ProjectID, AccessToken: token})
}

func (s *Server) handleFetchProjects(w http.ResponseWriter, r *http.Request) {
	var req fetchProjectsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	username, token, ok := s.authenticate(w, req.AccessToken)
	if !ok {
		return
	}

	projects, err := s.store.ListProjects(username)
	if err != nil {
		s.logger.Error("list projects", "user", username, "error", err)
		writeError(w, http.StatusInternalServerError, "internal", "Internal server error.")
		return
	}
	if projects == nil {
		projects = []db.ProjectRecord{}
	}

	writeJSON(w, http.StatusOK, projectListResponse{Projects: projects, AccessToken: token})
}
