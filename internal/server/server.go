package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/ldi/taskboard/internal/db"
)

type Server struct {
	db     *db.DB
	logger zerolog.Logger
	engine *gin.Engine
	server *http.Server
}

func NewServer(database *db.DB, logger zerolog.Logger) *Server {
	s := &Server{db: database, logger: logger}
	s.engine = s.routes()
	s.server = &http.Server{Handler: s.engine}
	return s
}

func (s *Server) routes() *gin.Engine {
	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(s.requestLogger())
	router.Use(gin.CustomRecovery(s.recovered))

	router.NoRoute(func(c *gin.Context) {
		abort(c, newStatusTextError(http.StatusNotFound))
	})
	router.NoMethod(func(c *gin.Context) {
		abort(c, newStatusTextError(http.StatusMethodNotAllowed))
	})

	router.GET("/", s.handleHome)

	router.POST("/tasks", s.handleCreateTask)
	router.GET("/tasks", s.handleListTasks)
	router.PUT("/tasks/:id", s.handleUpdateTask)
	router.DELETE("/tasks/:id", s.handleDeleteTask)

	router.GET("/analytics", s.handleAnalytics)

	return router
}

// Handler returns the HTTP handler serving the task API.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) Start(addr string) error {
	s.server.Addr = addr

	s.logger.Info().
		Str("addr", addr).
		Msg("setting up http server")
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("shutting down http server")
	return s.server.Shutdown(ctx)
}
