package server

import (
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/ganttline/ganttline/internal/db"
	"github.com/ganttline/ganttline/models"
)

func (s *Server) handleNewTask(w http.ResponseWriter, r *http.Request) {
	var req newTaskRequest
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

	task := req.Task
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	if task.Successors == nil {
		task.Successors = []string{}
	}

	// New tasks land in the next free lane.
	count, err := s.store.CountTasks(req.ProjectID)
	if err != nil {
		s.logger.Error("count tasks", "project", req.ProjectID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal", "Internal server error.")
		return
	}
	task.Lane = count

	if err := models.ValidateStruct(task); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_task", err.Error())
		return
	}

	if err := s.store.UpsertTask(req.ProjectID, task); err != nil {
		s.logger.Error("insert task", "project", req.ProjectID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal", "Internal server error.")
		return
	}
	if err := s.store.TouchProject(req.ProjectID); err != nil {
		s.logger.Warn("touch project", "project", req.ProjectID, "error", err)
	}

	writeJSON(w, http.StatusOK, taskResponse{Task: task, AccessToken: token})
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	var req updateTaskRequest
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

	task := req.Task
	if task.Successors == nil {
		task.Successors = []string{}
	}
	if err := models.ValidateStruct(task); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_task", err.Error())
		return
	}

	if err := s.store.UpsertTask(req.ProjectID, task); err != nil {
		s.logger.Error("update task", "project", req.ProjectID, "task", task.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal", "Internal server error.")
		return
	}
	if err := s.store.TouchProject(req.ProjectID); err != nil {
		s.logger.Warn("touch project", "project", req.ProjectID, "error", err)
	}

	writeJSON(w, http.StatusOK, taskResponse{Task: task, AccessToken: token})
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	var req deleteTaskRequest
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

	if err := s.store.DeleteTask(req.ProjectID, req.TaskID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "Task not found.")
		} else {
			s.logger.Error("delete task", "project", req.ProjectID, "task", req.TaskID, "error", err)
			writeError(w, http.StatusInternalServerError, "internal", "Internal server error.")
		}
		return
	}
	if err := s.store.TouchProject(req.ProjectID); err != nil {
		s.logger.Warn("touch project", "project", req.ProjectID, "error", err)
	}

	writeJSON(w, http.StatusOK, deleteResponse{ID: req.TaskID, AccessToken: token})
}

func (s *Server) handleFetchTasks(w http.ResponseWriter, r *http.Request) {
	var req fetchTasksRequest
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

	tasks, err := s.store.ListTasks(req.ProjectID)
	if err != nil {
		s.logger.Error("list tasks", "project", req.ProjectID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal", "Internal server error.")
		return
	}

	writeJSON(w, http.StatusOK, taskListResponse{Tasks: tasks, AccessToken: token})
}
