package api

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/stellarlinkco/qa-eval/internal/leaderboard"
	"github.com/stellarlinkco/qa-eval/internal/llm"
	"github.com/stellarlinkco/qa-eval/internal/store"
	"github.com/stellarlinkco/qa-eval/internal/suite"
)

type contextSpec struct {
	ID   string `json:"id,omitempty"`
	Text string `json:"text,omitempty"`
	File string `json:"file,omitempty"`
}

type caseSpec struct {
	ID            string `json:"id,omitempty"`
	Question      string `json:"question,omitempty"`
	QuestionAudio string `json:"question_audio,omitempty"`
	QuestionImage string `json:"question_image,omitempty"`
	Expected      string `json:"expected"`
}

type createSuiteRequest struct {
	Name         string        `json:"name"`
	SystemPrompt string        `json:"system_prompt,omitempty"`
	Contexts     []contextSpec `json:"contexts,omitempty"`
	Cases        []caseSpec    `json:"cases"`
}

type createRunRequest struct {
	SuiteID     string  `json:"suite_id"`
	Model       string  `json:"model"`
	Prompt      string  `json:"prompt,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
	TopP        float64 `json:"top_p,omitempty"`
	TopK        int     `json:"top_k,omitempty"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleCreateSuite(c *gin.Context) {
	if s.store == nil {
		respondError(c, http.StatusInternalServerError, errors.New("server not initialized"))
		return
	}

	var req createSuiteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}

	def := &suite.File{
		Suite:        req.Name,
		SystemPrompt: req.SystemPrompt,
	}
	for _, ctx := range req.Contexts {
		def.Contexts = append(def.Contexts, suite.ContextSpec{ID: ctx.ID, Text: ctx.Text, File: ctx.File})
	}
	for _, cs := range req.Cases {
		def.Cases = append(def.Cases, suite.CaseSpec{
			ID:            cs.ID,
			Question:      cs.Question,
			QuestionAudio: cs.QuestionAudio,
			QuestionImage: cs.QuestionImage,
			Expected:      cs.Expected,
		})
	}

	if err := suite.Validate(def); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}

	created, err := def.Import(c.Request.Context(), s.store)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":    created.ID,
		"name":  created.Name,
		"cases": len(def.Cases),
	})
}

func (s *Server) handleListSuites(c *gin.Context) {
	if s.store == nil {
		respondError(c, http.StatusInternalServerError, errors.New("server not initialized"))
		return
	}

	suites, err := s.store.ListSuites(c.Request.Context())
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, suites)
}

func (s *Server) handleGetSuite(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		respondError(c, http.StatusBadRequest, errors.New("missing suite id"))
		return
	}

	got, err := s.store.GetSuite(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(c, http.StatusNotFound, fmt.Errorf("suite %q not found", id))
			return
		}
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, got)
}

func (s *Server) handleCreateRun(c *gin.Context) {
	if s.store == nil || s.queue == nil {
		respondError(c, http.StatusInternalServerError, errors.New("server not initialized"))
		return
	}

	var req createRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	if strings.TrimSpace(req.SuiteID) == "" {
		respondError(c, http.StatusBadRequest, errors.New("missing suite_id"))
		return
	}
	if _, _, err := llm.ParseModelID(req.Model); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}

	ctx := c.Request.Context()
	if _, err := s.store.GetSuite(ctx, req.SuiteID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(c, http.StatusNotFound, fmt.Errorf("suite %q not found", req.SuiteID))
			return
		}
		respondError(c, http.StatusInternalServerError, err)
		return
	}

	run := &store.TestRun{
		ID:          uuid.NewString(),
		SuiteID:     req.SuiteID,
		Model:       req.Model,
		Prompt:      req.Prompt,
		Temperature: req.Temperature,
		TopP:        req.TopP,
		TopK:        req.TopK,
		Status:      store.RunStatusPending,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.store.CreateRun(ctx, run); err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}

	job, err := s.queue.Enqueue(run.ID)
	if err != nil {
		respondError(c, http.StatusServiceUnavailable, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"run_id": run.ID,
		"job_id": job.ID,
		"status": run.Status,
	})
}

func (s *Server) handleListRuns(c *gin.Context) {
	if s.store == nil {
		respondError(c, http.StatusInternalServerError, errors.New("server not initialized"))
		return
	}

	limit, err := parseLimitParam(c.Query("limit"), 0)
	if err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}

	filter := store.RunFilter{
		SuiteID: strings.TrimSpace(c.Query("suite_id")),
		Status:  strings.TrimSpace(c.Query("status")),
		Limit:   limit,
	}
	runs, err := s.store.ListRuns(c.Request.Context(), filter)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, runs)
}

func (s *Server) handleGetRun(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		respondError(c, http.StatusBadRequest, errors.New("missing run id"))
		return
	}

	run, err := s.store.GetRun(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(c, http.StatusNotFound, fmt.Errorf("run %q not found", id))
			return
		}
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, run)
}

func (s *Server) handleGetRunResults(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		respondError(c, http.StatusBadRequest, errors.New("missing run id"))
		return
	}

	ctx := c.Request.Context()
	run, err := s.store.GetRun(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(c, http.StatusNotFound, fmt.Errorf("run %q not found", id))
			return
		}
		respondError(c, http.StatusInternalServerError, err)
		return
	}

	results, err := s.store.GetResults(ctx, id)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"run":     run,
		"results": results,
	})
}

func (s *Server) handleGetJob(c *gin.Context) {
	if s.queue == nil {
		respondError(c, http.StatusInternalServerError, errors.New("server not initialized"))
		return
	}
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		respondError(c, http.StatusBadRequest, errors.New("missing job id"))
		return
	}

	job := s.queue.Get(id)
	if job == nil {
		respondError(c, http.StatusNotFound, fmt.Errorf("job %q not found", id))
		return
	}
	c.JSON(http.StatusOK, job)
}

func (s *Server) handleGetLeaderboard(c *gin.Context) {
	if s.store == nil {
		respondError(c, http.StatusInternalServerError, errors.New("server not initialized"))
		return
	}

	limit, err := parseLimitParam(c.Query("runs"), 0)
	if err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}

	entries, err := leaderboard.Compute(c.Request.Context(), s.store, limit)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	if entries == nil {
		entries = []leaderboard.Entry{}
	}
	c.JSON(http.StatusOK, entries)
}

func respondError(c *gin.Context, status int, err error) {
	if err == nil {
		c.Status(status)
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func parseLimitParam(raw string, fallback int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid limit %q", raw)
	}
	if v < 0 {
		return 0, fmt.Errorf("limit must be >= 0")
	}
	return v, nil
}
