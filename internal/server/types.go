package server

import (
	"github.com/ganttline/ganttline/internal/db"
	"github.com/ganttline/ganttline/models"
)

// Authed routes carry the access token in the JSON body. Handlers echo the
// token back, replacing it with a fresh one when expiry is near, so clients
// stay logged in across long sessions.

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type newProjectRequest struct {
	AccessToken string `json:"access_token"`
	Name        string `json:"name"`
}

type renameProjectRequest struct {
	AccessToken string `json:"access_token"`
	ProjectID   string `json:"project_id"`
	Name        string `json:"name"`
}

type deleteProjectRequest struct {
	AccessToken string `json:"access_token"`
	ProjectID   string `json:"project_id"`
}

type fetchProjectsRequest struct {
	AccessToken string `json:"access_token"`
}

type newTaskRequest struct {
	AccessToken string      `json:"access_token"`
	ProjectID   string      `json:"project_id"`
	Task        models.Task `json:"task"`
}

type updateTaskRequest struct {
	AccessToken string      `json:"access_token"`
	ProjectID   string      `json:"project_id"`
	Task        models.Task `json:"task"`
}

type deleteTaskRequest struct {
	AccessToken string `json:"access_token"`
	ProjectID   string `json:"project_id"`
	TaskID      string `json:"task_id"`
}

type fetchTasksRequest struct {
	AccessToken string `json:"access_token"`
	ProjectID   string `json:"project_id"`
}

type authResponse struct {
	Username    string `json:"username"`
	AccessToken string `json:"access_token,omitempty"`
}

type projectResponse struct {
	Project     db.ProjectRecord `json:"project"`
	AccessToken string           `json:"access_token"`
}

type projectListResponse struct {
	Projects    []db.ProjectRecord `json:"projects"`
	AccessToken string             `json:"access_token"`
}

type taskResponse struct {
	Task        models.Task `json:"task"`
	AccessToken string      `json:"access_token"`
}

type taskListResponse struct {
	Tasks       map[string]models.Task `json:"tasks"`
	AccessToken string                 `json:"access_token"`
}

type deleteResponse struct {
	ID          string `json:"id"`
	AccessToken string `json:"access_token"`
}
