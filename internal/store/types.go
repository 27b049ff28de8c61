package store

import (
	"context"
	"time"
)

// Run lifecycle states. A run starts PENDING and is moved to COMPLETED once
// all of its results have been written, regardless of how many cases failed.
const (
	RunStatusPending   = "PENDING"
	RunStatusCompleted = "COMPLETED"
)

// Per-case result states.
const (
	ResultStatusCompleted = "COMPLETED"
	ResultStatusFailed    = "FAILED"
)

// SuiteWriter defines persistence for suite definitions.
type SuiteWriter interface {
	SaveSuite(ctx context.Context, suite *TestSuite) error
	SaveCase(ctx context.Context, tc *TestCase) error
	SaveDocument(ctx context.Context, doc *ContextDocument) error
}

// SuiteReader defines read access to suite definitions.
type SuiteReader interface {
	GetSuite(ctx context.Context, id string) (*TestSuite, error)
	ListSuites(ctx context.Context) ([]*TestSuite, error)
}

// RunWriter defines persistence for runs and their results.
type RunWriter interface {
	CreateRun(ctx context.Context, run *TestRun) error
	// SaveResults writes every result of a run in a single transaction.
	SaveResults(ctx context.Context, results []*RunResult) error
	MarkRunCompleted(ctx context.Context, runID string, completedAt time.Time) error
}

// RunReader defines read access to runs and results.
type RunReader interface {
	GetRun(ctx context.Context, id string) (*TestRun, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]*TestRun, error)
	GetResults(ctx context.Context, runID string) ([]*RunResult, error)
	// GetRunBundle loads the run plus everything needed to process it: the
	// suite, its cases and its context documents.
	GetRunBundle(ctx context.Context, runID string) (*RunBundle, error)
}

// Store defines persistence for suites, runs and results.
type Store interface {
	SuiteWriter
	SuiteReader
	RunWriter
	RunReader
	Close() error
}

// TestSuite groups test cases that share a system prompt and context.
type TestSuite struct {
	ID           string
	Name         string
	SystemPrompt string
	CreatedAt    time.Time
}

// TestCase is one question/expected-answer pair. At most one of the question
// fields is set; which one determines the generation path.
type TestCase struct {
	ID                string
	SuiteID           string
	QuestionText      string
	QuestionAudioPath string
	QuestionImagePath string
	ExpectedAnswer    string
	CreatedAt         time.Time
}

// ContextDocument is background material attached to a suite. Either inline
// text or a file path; file contents are loaded at run time.
type ContextDocument struct {
	ID       string
	SuiteID  string
	Text     string
	FilePath string
}

// TestRun is one evaluation of a suite against a model.
type TestRun struct {
	ID          string
	SuiteID     string
	Model       string
	Prompt      string
	Temperature float64
	TopP        float64
	TopK        int
	Status      string
	CreatedAt   time.Time
	CompletedAt time.Time
}

// RunResult is the outcome for one (run, case) pair.
type RunResult struct {
	ID             string
	RunID          string
	CaseID         string
	Status         string
	FailReason     string
	Answer         string
	BLEUScore      float64
	CosineSimScore float64
	LLMScore       float64
	LLMScoreReason string
	CreatedAt      time.Time
}

// RunFilter filters run listings.
type RunFilter struct {
	SuiteID string
	Status  string
	Since   time.Time
	Until   time.Time
	Limit   int
}

// RunBundle is everything the orchestrator needs for one run, fetched in one
// round of queries.
type RunBundle struct {
	Run       *TestRun
	Suite     *TestSuite
	Cases     []*TestCase
	Documents []*ContextDocument
}
