// Package server exposes the sync API used by remote clients: account
// registration and login, project metadata CRUD, and task push/pull. All
// scheduling logic runs client-side; the server is plain storage with
// per-user token auth.
package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/ganttline/ganttline/internal/db"
	"github.com/ganttline/ganttline/types"
)

type Server struct {
	store   *db.Store
	logger  *log.Logger
	origins map[string]struct{}
	port    int
	now     func() time.Time
	server  *http.Server
}

// New builds a server over an already opened store. The server takes
// ownership of the store and closes it when the listener stops.
func New(cfg types.ServerConfig, store *db.Store, logger *log.Logger) *Server {
	origins := make(map[string]struct{}, len(cfg.AllowedOrigins))
	for _, o := range cfg.AllowedOrigins {
		origins[o] = struct{}{}
	}

	s := &Server{
		store:   store,
		logger:  logger,
		origins: origins,
		port:    cfg.Port,
		now:     time.Now,
	}

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           s.registerRoutes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

// registerRoutes sets up all API endpoints.
func (s *Server) registerRoutes() http.Handler {
	mux := http.NewServeMux()

	// Go 1.21's ServeMux has no "METHOD /path" pattern support, so split the
	// pattern and enforce the method here, matching the Go 1.22+ mux
	// behaviour (405 with an Allow header on method mismatch).
	handle := func(pattern string, h http.HandlerFunc) {
		method, path, _ := strings.Cut(pattern, " ")
		mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
			if r.Method != method {
				w.Header().Set("Allow", method)
				http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
				return
			}
			h(w, r)
		})
	}

	handle("POST /user/register", s.handleRegister)
	handle("POST /user/authorise", s.handleLogin)

	handle("PUT /project/new-project", s.handleNewProject)
	handle("POST /project/rename-project", s.handleRenameProject)
	handle("POST /project/delete-project", s.handleDeleteProject)
	handle("POST /project/fetch-user-projects", s.handleFetchProjects)

	handle("PUT /project/task/new", s.handleNewTask)
	handle("POST /project/task/update", s.handleUpdateTask)
	handle("POST /project/task/delete", s.handleDeleteTask)
	handle("POST /project/task/fetch-all", s.handleFetchTasks)

	return s.corsMiddleware(mux)
}

// Start runs the listener on its own goroutine. Fatal listener errors land
// on errChan.
func (s *Server) Start(wg *sync.WaitGroup, errChan chan<- error) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer func() { _ = s.store.Close() }()

		s.logger.Info("sync server listening", "port", s.port)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("sync server error: %w", err)
		}
	}()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Handler returns the routed handler, used directly by httptest.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}
