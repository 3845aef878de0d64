package server

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/tasktreasure/tasktreasure/internal/calendar"
	"github.com/tasktreasure/tasktreasure/internal/handler"
	"github.com/tasktreasure/tasktreasure/internal/middleware"
	"github.com/tasktreasure/tasktreasure/internal/store"
	ws "github.com/tasktreasure/tasktreasure/internal/websocket"
)

// Options are the settings the server takes from configuration.
type Options struct {
	SessionTTL    time.Duration
	FanoutTimeout time.Duration
	FanoutPolicy  calendar.Policy
	Location      *time.Location
	WSOrigins     []string
}

type Server struct {
	db           *sql.DB
	hub          *ws.Hub
	authH        *handler.AuthHandler
	childH       *handler.ChildHandler
	choreH       *handler.ChoreHandler
	taskH        *handler.TaskHandler
	calendarH    *handler.CalendarHandler
	sessionStore *store.SessionStore
	parentStore  *store.ParentStore
	childStore   *store.ChildStore
	rateLimiter  *middleware.RateLimiter
	wsOrigins    []string
	logger       *slog.Logger
}

func New(db *sql.DB, opts Options, logger *slog.Logger) *Server {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	hub := ws.NewHub(logger)

	parentStore := store.NewParentStore(db)
	sessionStore := store.NewSessionStore(db)
	childStore := store.NewChildStore(db)
	choreStore := store.NewChoreStore(db, logger.With("component", "chore_store"))
	taskStore := store.NewTaskStore(db, logger.With("component", "task_store"))

	loader := calendar.NewLoader(childStore, choreStore, taskStore, calendar.Options{
		Timeout: opts.FanoutTimeout,
		Policy:  opts.FanoutPolicy,
	}, logger)

	authH := handler.NewAuthHandler(parentStore, sessionStore, opts.SessionTTL, logger.With("component", "auth"))

	return &Server{
		db:           db,
		hub:          hub,
		authH:        authH,
		childH:       handler.NewChildHandler(childStore, choreStore, authH, hub, opts.Location, logger.With("component", "child")),
		choreH:       handler.NewChoreHandler(choreStore, authH, hub, opts.Location, logger.With("component", "chore")),
		taskH:        handler.NewTaskHandler(taskStore, hub, logger.With("component", "task")),
		calendarH:    handler.NewCalendarHandler(loader, childStore, opts.Location, logger.With("component", "calendar")),
		sessionStore: sessionStore,
		parentStore:  parentStore,
		childStore:   childStore,
		rateLimiter:  middleware.NewRateLimiter(10, time.Minute),
		wsOrigins:    opts.WSOrigins,
		logger:       logger,
	}
}

// SessionStore returns the session store for cleanup tasks.
func (s *Server) SessionStore() *store.SessionStore {
	return s.sessionStore
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Hub() *ws.Hub {
	return s.hub
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes (no auth required)
	limit := s.rateLimiter.Limit(middleware.RealIP)
	outerMux.Handle("POST /api/register", limit(http.HandlerFunc(s.authH.Register)))
	outerMux.Handle("POST /api/login", limit(http.HandlerFunc(s.authH.Login)))
	outerMux.HandleFunc("GET /health", s.healthHandler)

	// Protected routes, wrapped with RequireAuth
	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)
	authMiddleware := middleware.RequireAuth(s.sessionStore, s.parentStore)
	outerMux.Handle("/", authMiddleware(protectedMux))

	var h http.Handler = outerMux
	h = middleware.Recover(s.logger.With("component", "http"))(h)
	return middleware.RequestLogger(s.logger.With("component", "http"))(h)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := s.db.PingContext(r.Context()); err != nil {
		s.logger.Error("health check", "error", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"status":"unavailable"}`))
		return
	}
	w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	// Account
	mux.HandleFunc("POST /api/logout", s.authH.Logout)
	mux.HandleFunc("GET /api/me", s.authH.Me)
	mux.HandleFunc("PATCH /api/me", s.authH.UpdateMe)

	// Children
	mux.HandleFunc("GET /api/children", s.childH.List)
	mux.HandleFunc("POST /api/children", s.childH.Create)
	mux.HandleFunc("GET /api/children/{id}", s.childH.Get)
	mux.HandleFunc("PATCH /api/children/{id}", s.childH.Update)
	mux.HandleFunc("DELETE /api/children/{id}", s.childH.Delete)
	mux.HandleFunc("POST /api/children/{id}/savings", s.childH.AdjustSavings)
	mux.HandleFunc("PUT /api/children/{id}/goals", s.childH.SetGoals)
	mux.HandleFunc("GET /api/children/{id}/progress", s.childH.Progress)

	// Chores
	mux.HandleFunc("GET /api/children/{id}/chores", s.choreH.List)
	mux.HandleFunc("POST /api/children/{id}/chores", s.choreH.Create)
	mux.HandleFunc("POST /api/children/{id}/chores/reset", s.choreH.Reset)
	mux.HandleFunc("PATCH /api/children/{id}/chores/{choreId}", s.choreH.Update)
	mux.HandleFunc("DELETE /api/children/{id}/chores/{choreId}", s.choreH.Delete)
	mux.HandleFunc("POST /api/children/{id}/chores/{choreId}/toggle", s.choreH.Toggle)

	// Tasks
	mux.HandleFunc("GET /api/children/{id}/tasks", s.taskH.List)
	mux.HandleFunc("POST /api/children/{id}/tasks", s.taskH.Create)
	mux.HandleFunc("DELETE /api/children/{id}/tasks/{taskId}", s.taskH.Delete)

	// Calendar
	mux.HandleFunc("GET /api/children/{id}/week", s.calendarH.ChildWeek)
	mux.HandleFunc("GET /api/children/{id}/day", s.calendarH.ChildDay)
	mux.HandleFunc("GET /api/week", s.calendarH.FamilyWeek)

	// Subscriptions
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub, s.authorizeTopic, s.wsOrigins, s.logger.With("component", "websocket")))
}

var errForeignTopic = errors.New("topic belongs to another account")

// authorizeTopic lets a parent subscribe only to its own collections.
func (s *Server) authorizeTopic(ctx context.Context, parentID, topic string) error {
	childID, err := ws.ParseTopic(topic)
	if err != nil {
		return err
	}
	if childID == "" {
		return nil
	}
	child, err := s.childStore.Get(ctx, parentID, childID)
	if err != nil {
		return err
	}
	if child == nil {
		return errForeignTopic
	}
	return nil
}
