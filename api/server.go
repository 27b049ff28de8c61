package api

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/stellarlinkco/qa-eval/internal/config"
	"github.com/stellarlinkco/qa-eval/internal/jobs"
	"github.com/stellarlinkco/qa-eval/internal/store"
)

type Server struct {
	router *gin.Engine
	store  store.Store
	queue  *jobs.Queue
	config *config.Config
	logger *slog.Logger
}

func NewServer(cfg *config.Config, st store.Store, queue *jobs.Queue, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	r := gin.New()
	s := &Server{
		router: r,
		store:  st,
		queue:  queue,
		config: cfg,
		logger: logger,
	}
	s.registerMiddleware()
	if err := s.registerRoutes(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Server) Run(addr string) error {
	if s == nil || s.router == nil {
		return errors.New("api: nil server")
	}
	addr = strings.TrimSpace(addr)
	if addr == "" {
		addr = ":8080"
	}
	return s.router.Run(addr)
}
