package api

import (
	"errors"
	"os"
	"strings"
)

func (s *Server) registerRoutes() error {
	if s == nil || s.router == nil {
		return nil
	}

	api := s.router.Group("/api")
	apiKey := strings.TrimSpace(os.Getenv("QA_EVAL_API_KEY"))
	if apiKey != "" {
		api.Use(apiKeyAuthMiddleware(apiKey))
	} else if strings.EqualFold(strings.TrimSpace(os.Getenv("QA_EVAL_DISABLE_AUTH")), "true") {
		// Explicitly allow unauthenticated access.
	} else {
		return errors.New("api: missing auth configuration: set QA_EVAL_API_KEY or set QA_EVAL_DISABLE_AUTH=true")
	}

	api.GET("/health", s.handleHealth)

	api.POST("/suites", s.handleCreateSuite)
	api.GET("/suites", s.handleListSuites)
	api.GET("/suites/:id", s.handleGetSuite)

	api.POST("/runs", s.handleCreateRun)
	api.GET("/runs", s.handleListRuns)
	api.GET("/runs/:id", s.handleGetRun)
	api.GET("/runs/:id/results", s.handleGetRunResults)

	api.GET("/jobs/:id", s.handleGetJob)

	api.GET("/leaderboard", s.handleGetLeaderboard)

	return nil
}
