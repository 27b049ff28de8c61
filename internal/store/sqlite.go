package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const defaultListLimit = 50

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB

	insertSuiteStmt  *sql.Stmt
	insertCaseStmt   *sql.Stmt
	insertDocStmt    *sql.Stmt
	insertRunStmt    *sql.Stmt
	insertResultStmt *sql.Stmt
	completeRunStmt  *sql.Stmt
	getSuiteStmt     *sql.Stmt
	listSuitesStmt   *sql.Stmt
	getRunStmt       *sql.Stmt
	casesBySuiteStmt *sql.Stmt
	docsBySuiteStmt  *sql.Stmt
	resultsByRunStmt *sql.Stmt
}

var (
	sqliteOpen              = sql.Open
	sqlitePrepareStatements = (*SQLiteStore).prepareStatements
)

// NewSQLiteStore opens or creates a SQLite store at the given path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("store: empty sqlite path")
	}
	if path != ":memory:" {
		dir := filepath.Dir(path)
		if dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("store: create sqlite dir: %w", err)
			}
		}
	}

	db, err := sqliteOpen("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("store: open sqlite: %w", err)
	}
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: ping sqlite: %w", err)
	}

	if err := initSQLiteSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	st := &SQLiteStore{db: db}
	if err := sqlitePrepareStatements(st); err != nil {
		_ = st.Close()
		return nil, err
	}
	return st, nil
}

func initSQLiteSchema(db *sql.DB) error {
	stmts := []string{
		`PRAGMA foreign_keys = ON`,
		`PRAGMA journal_mode = WAL`,
		`CREATE TABLE IF NOT EXISTS suites (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			system_prompt TEXT NOT NULL DEFAULT '',
			created_at INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS test_cases (
			id TEXT PRIMARY KEY,
			suite_id TEXT NOT NULL,
			question_text TEXT NOT NULL DEFAULT '',
			question_audio_path TEXT NOT NULL DEFAULT '',
			question_image_path TEXT NOT NULL DEFAULT '',
			expected_answer TEXT NOT NULL DEFAULT '',
			created_at INTEGER NOT NULL,
			FOREIGN KEY(suite_id) REFERENCES suites(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS context_documents (
			id TEXT PRIMARY KEY,
			suite_id TEXT NOT NULL,
			text TEXT NOT NULL DEFAULT '',
			file_path TEXT NOT NULL DEFAULT '',
			FOREIGN KEY(suite_id) REFERENCES suites(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			suite_id TEXT NOT NULL,
			model TEXT NOT NULL,
			prompt TEXT NOT NULL DEFAULT '',
			temperature REAL NOT NULL DEFAULT 0,
			top_p REAL NOT NULL DEFAULT 0,
			top_k INTEGER NOT NULL DEFAULT 0,
			status TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			completed_at INTEGER,
			FOREIGN KEY(suite_id) REFERENCES suites(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS run_results (
			id TEXT PRIMARY KEY,
			run_id TEXT NOT NULL,
			case_id TEXT NOT NULL,
			status TEXT NOT NULL,
			fail_reason TEXT NOT NULL DEFAULT '',
			answer TEXT NOT NULL DEFAULT '',
			bleu_score REAL NOT NULL DEFAULT 0,
			cosine_sim_score REAL NOT NULL DEFAULT 0,
			llm_score REAL NOT NULL DEFAULT 0,
			llm_score_reason TEXT NOT NULL DEFAULT '',
			created_at INTEGER NOT NULL,
			FOREIGN KEY(run_id) REFERENCES runs(id) ON DELETE CASCADE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_test_cases_suite_id ON test_cases(suite_id)`,
		`CREATE INDEX IF NOT EXISTS idx_context_documents_suite_id ON context_documents(suite_id)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_suite_id ON runs(suite_id)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_run_results_run_id ON run_results(run_id)`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("store: init schema: %w", err)
		}
	}
	return nil
}

func (s *SQLiteStore) prepareStatements() error {
	if s == nil || s.db == nil {
		return errors.New("store: nil sqlite store")
	}

	ctx := context.Background()
	type stmtSpec struct {
		dst    **sql.Stmt
		query  string
		errFmt string
	}

	specs := []stmtSpec{
		{
			dst: &s.insertSuiteStmt,
			query: `
				INSERT INTO suites (id, name, system_prompt, created_at)
				VALUES (?, ?, ?, ?)
			`,
			errFmt: "store: prepare insert suite: %w",
		},
		{
			dst: &s.insertCaseStmt,
			query: `
				INSERT INTO test_cases (
					id, suite_id, question_text, question_audio_path, question_image_path,
					expected_answer, created_at
				) VALUES (?, ?, ?, ?, ?, ?, ?)
			`,
			errFmt: "store: prepare insert case: %w",
		},
		{
			dst: &s.insertDocStmt,
			query: `
				INSERT INTO context_documents (id, suite_id, text, file_path)
				VALUES (?, ?, ?, ?)
			`,
			errFmt: "store: prepare insert document: %w",
		},
		{
			dst: &s.insertRunStmt,
			query: `
				INSERT INTO runs (
					id, suite_id, model, prompt, temperature, top_p, top_k, status, created_at, completed_at
				) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, NULL)
			`,
			errFmt: "store: prepare insert run: %w",
		},
		{
			dst: &s.insertResultStmt,
			query: `
				INSERT INTO run_results (
					id, run_id, case_id, status, fail_reason, answer,
					bleu_score, cosine_sim_score, llm_score, llm_score_reason, created_at
				) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			`,
			errFmt: "store: prepare insert result: %w",
		},
		{
			dst: &s.completeRunStmt,
			query: `
				UPDATE runs SET status = ?, completed_at = ? WHERE id = ?
			`,
			errFmt: "store: prepare complete run: %w",
		},
		{
			dst: &s.getSuiteStmt,
			query: `
				SELECT id, name, system_prompt, created_at FROM suites WHERE id = ?
			`,
			errFmt: "store: prepare get suite: %w",
		},
		{
			dst: &s.listSuitesStmt,
			query: `
				SELECT id, name, system_prompt, created_at FROM suites ORDER BY created_at DESC
			`,
			errFmt: "store: prepare list suites: %w",
		},
		{
			dst: &s.getRunStmt,
			query: `
				SELECT id, suite_id, model, prompt, temperature, top_p, top_k, status, created_at, completed_at
				FROM runs WHERE id = ?
			`,
			errFmt: "store: prepare get run: %w",
		},
		{
			dst: &s.casesBySuiteStmt,
			query: `
				SELECT id, suite_id, question_text, question_audio_path, question_image_path,
					expected_answer, created_at
				FROM test_cases
				WHERE suite_id = ?
				ORDER BY created_at ASC, id ASC
			`,
			errFmt: "store: prepare cases by suite: %w",
		},
		{
			dst: &s.docsBySuiteStmt,
			query: `
				SELECT id, suite_id, text, file_path
				FROM context_documents
				WHERE suite_id = ?
				ORDER BY id ASC
			`,
			errFmt: "store: prepare documents by suite: %w",
		},
		{
			dst: &s.resultsByRunStmt,
			query: `
				SELECT id, run_id, case_id, status, fail_reason, answer,
					bleu_score, cosine_sim_score, llm_score, llm_score_reason, created_at
				FROM run_results
				WHERE run_id = ?
				ORDER BY created_at ASC, case_id ASC
			`,
			errFmt: "store: prepare results by run: %w",
		},
	}

	for _, spec := range specs {
		stmt, err := s.db.PrepareContext(ctx, spec.query)
		if err != nil {
			return fmt.Errorf(spec.errFmt, err)
		}
		*spec.dst = stmt
	}

	return nil
}

// Close releases database resources.
func (s *SQLiteStore) Close() error {
	if s == nil {
		return nil
	}
	stmts := []*sql.Stmt{
		s.insertSuiteStmt,
		s.insertCaseStmt,
		s.insertDocStmt,
		s.insertRunStmt,
		s.insertResultStmt,
		s.completeRunStmt,
		s.getSuiteStmt,
		s.listSuitesStmt,
		s.getRunStmt,
		s.casesBySuiteStmt,
		s.docsBySuiteStmt,
		s.resultsByRunStmt,
	}
	for _, stmt := range stmts {
		if stmt != nil {
			_ = stmt.Close()
		}
	}
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveSuite persists a suite definition.
func (s *SQLiteStore) SaveSuite(ctx context.Context, suite *TestSuite) error {
	if s == nil {
		return errors.New("store: nil sqlite store")
	}
	if ctx == nil {
		return errors.New("store: nil context")
	}
	if suite == nil {
		return errors.New("store: nil suite")
	}
	id := strings.TrimSpace(suite.ID)
	if id == "" {
		return errors.New("store: empty suite id")
	}
	if strings.TrimSpace(suite.Name) == "" {
		return errors.New("store: empty suite name")
	}

	createdAt := suite.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := s.insertSuiteStmt.ExecContext(ctx, id, suite.Name, suite.SystemPrompt, createdAt.UTC().UnixMilli())
	if err != nil {
		return fmt.Errorf("store: insert suite: %w", err)
	}
	return nil
}

// SaveCase persists a test case.
func (s *SQLiteStore) SaveCase(ctx context.Context, tc *TestCase) error {
	if s == nil {
		return errors.New("store: nil sqlite store")
	}
	if ctx == nil {
		return errors.New("store: nil context")
	}
	if tc == nil {
		return errors.New("store: nil test case")
	}
	id := strings.TrimSpace(tc.ID)
	if id == "" {
		return errors.New("store: empty case id")
	}
	if strings.TrimSpace(tc.SuiteID) == "" {
		return errors.New("store: empty suite id")
	}

	createdAt := tc.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := s.insertCaseStmt.ExecContext(
		ctx,
		id,
		tc.SuiteID,
		tc.QuestionText,
		tc.QuestionAudioPath,
		tc.QuestionImagePath,
		tc.ExpectedAnswer,
		createdAt.UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("store: insert case: %w", err)
	}
	return nil
}

// SaveDocument persists a context document.
func (s *SQLiteStore) SaveDocument(ctx context.Context, doc *ContextDocument) error {
	if s == nil {
		return errors.New("store: nil sqlite store")
	}
	if ctx == nil {
		return errors.New("store: nil context")
	}
	if doc == nil {
		return errors.New("store: nil document")
	}
	id := strings.TrimSpace(doc.ID)
	if id == "" {
		return errors.New("store: empty document id")
	}
	if strings.TrimSpace(doc.SuiteID) == "" {
		return errors.New("store: empty suite id")
	}

	_, err := s.insertDocStmt.ExecContext(ctx, id, doc.SuiteID, doc.Text, doc.FilePath)
	if err != nil {
		return fmt.Errorf("store: insert document: %w", err)
	}
	return nil
}

// CreateRun persists a new run in PENDING state.
func (s *SQLiteStore) CreateRun(ctx context.Context, run *TestRun) error {
	if s == nil {
		return errors.New("store: nil sqlite store")
	}
	if ctx == nil {
		return errors.New("store: nil context")
	}
	if run == nil {
		return errors.New("store: nil run")
	}
	id := strings.TrimSpace(run.ID)
	if id == "" {
		return errors.New("store: empty run id")
	}
	if strings.TrimSpace(run.SuiteID) == "" {
		return errors.New("store: empty suite id")
	}
	if strings.TrimSpace(run.Model) == "" {
		return errors.New("store: empty run model")
	}

	status := strings.TrimSpace(run.Status)
	if status == "" {
		status = RunStatusPending
	}
	createdAt := run.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := s.insertRunStmt.ExecContext(
		ctx,
		id,
		run.SuiteID,
		run.Model,
		run.Prompt,
		run.Temperature,
		run.TopP,
		run.TopK,
		status,
		createdAt.UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("store: insert run: %w", err)
	}
	return nil
}

// SaveResults writes all results of a run in a single transaction. Either
// every result lands or none do.
func (s *SQLiteStore) SaveResults(ctx context.Context, results []*RunResult) error {
	if s == nil {
		return errors.New("store: nil sqlite store")
	}
	if ctx == nil {
		return errors.New("store: nil context")
	}
	if len(results) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin results tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	stmt := tx.StmtContext(ctx, s.insertResultStmt)
	defer stmt.Close()

	for _, r := range results {
		if r == nil {
			return errors.New("store: nil result")
		}
		if strings.TrimSpace(r.ID) == "" || strings.TrimSpace(r.RunID) == "" || strings.TrimSpace(r.CaseID) == "" {
			return errors.New("store: result missing id/run/case")
		}
		createdAt := r.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now().UTC()
		}
		_, err := stmt.ExecContext(
			ctx,
			r.ID,
			r.RunID,
			r.CaseID,
			r.Status,
			r.FailReason,
			r.Answer,
			r.BLEUScore,
			r.CosineSimScore,
			r.LLMScore,
			r.LLMScoreReason,
			createdAt.UTC().UnixMilli(),
		)
		if err != nil {
			return fmt.Errorf("store: insert result for case %s: %w", r.CaseID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit results: %w", err)
	}
	return nil
}

// MarkRunCompleted transitions a run to COMPLETED with the given timestamp.
func (s *SQLiteStore) MarkRunCompleted(ctx context.Context, runID string, completedAt time.Time) error {
	if s == nil {
		return errors.New("store: nil sqlite store")
	}
	if ctx == nil {
		return errors.New("store: nil context")
	}
	runID = strings.TrimSpace(runID)
	if runID == "" {
		return errors.New("store: empty run id")
	}
	if completedAt.IsZero() {
		completedAt = time.Now().UTC()
	}

	res, err := s.completeRunStmt.ExecContext(ctx, RunStatusCompleted, completedAt.UTC().UnixMilli(), runID)
	if err != nil {
		return fmt.Errorf("store: complete run: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: complete run rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("store: run %q not found", runID)
	}
	return nil
}

// GetSuite loads a suite by id.
func (s *SQLiteStore) GetSuite(ctx context.Context, id string) (*TestSuite, error) {
	if s == nil {
		return nil, errors.New("store: nil sqlite store")
	}
	if ctx == nil {
		return nil, errors.New("store: nil context")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errors.New("store: empty suite id")
	}

	row := s.getSuiteStmt.QueryRowContext(ctx, id)
	suite, err := scanSuite(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("store: get suite: %w", err)
	}
	return suite, nil
}

// ListSuites returns all suites, newest first.
func (s *SQLiteStore) ListSuites(ctx context.Context) ([]*TestSuite, error) {
	if s == nil {
		return nil, errors.New("store: nil sqlite store")
	}
	if ctx == nil {
		return nil, errors.New("store: nil context")
	}

	rows, err := s.listSuitesStmt.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("store: list suites: %w", err)
	}
	defer rows.Close()

	var out []*TestSuite
	for rows.Next() {
		suite, err := scanSuite(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan suite: %w", err)
		}
		out = append(out, suite)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: list suites: %w", err)
	}
	return out, nil
}

// GetRun loads a run by id.
func (s *SQLiteStore) GetRun(ctx context.Context, id string) (*TestRun, error) {
	if s == nil {
		return nil, errors.New("store: nil sqlite store")
	}
	if ctx == nil {
		return nil, errors.New("store: nil context")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errors.New("store: empty run id")
	}

	row := s.getRunStmt.QueryRowContext(ctx, id)
	run, err := scanRun(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("store: get run: %w", err)
	}
	return run, nil
}

// ListRuns returns runs matching the filter, newest first.
func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunFilter) ([]*TestRun, error) {
	if s == nil {
		return nil, errors.New("store: nil sqlite store")
	}
	if ctx == nil {
		return nil, errors.New("store: nil context")
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	var sb strings.Builder
	sb.WriteString(`SELECT id, suite_id, model, prompt, temperature, top_p, top_k, status, created_at, completed_at FROM runs WHERE 1=1`)

	var args []any
	if v := strings.TrimSpace(filter.SuiteID); v != "" {
		sb.WriteString(` AND suite_id = ?`)
		args = append(args, v)
	}
	if v := strings.TrimSpace(filter.Status); v != "" {
		sb.WriteString(` AND status = ?`)
		args = append(args, v)
	}
	if !filter.Since.IsZero() {
		sb.WriteString(` AND created_at >= ?`)
		args = append(args, filter.Since.UTC().UnixMilli())
	}
	if !filter.Until.IsZero() {
		sb.WriteString(` AND created_at <= ?`)
		args = append(args, filter.Until.UTC().UnixMilli())
	}
	sb.WriteString(` ORDER BY created_at DESC LIMIT ?`)
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("store: list runs: %w", err)
	}
	defer rows.Close()

	var out []*TestRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan run: %w", err)
		}
		out = append(out, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: list runs: %w", err)
	}
	return out, nil
}

// GetResults lists results for a run.
func (s *SQLiteStore) GetResults(ctx context.Context, runID string) ([]*RunResult, error) {
	if s == nil {
		return nil, errors.New("store: nil sqlite store")
	}
	if ctx == nil {
		return nil, errors.New("store: nil context")
	}
	runID = strings.TrimSpace(runID)
	if runID == "" {
		return nil, errors.New("store: empty run id")
	}

	rows, err := s.resultsByRunStmt.QueryContext(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("store: get results: %w", err)
	}
	defer rows.Close()

	var out []*RunResult
	for rows.Next() {
		var (
			r           RunResult
			createdAtMS int64
		)
		if err := rows.Scan(
			&r.ID,
			&r.RunID,
			&r.CaseID,
			&r.Status,
			&r.FailReason,
			&r.Answer,
			&r.BLEUScore,
			&r.CosineSimScore,
			&r.LLMScore,
			&r.LLMScoreReason,
			&createdAtMS,
		); err != nil {
			return nil, fmt.Errorf("store: scan result: %w", err)
		}
		r.CreatedAt = time.UnixMilli(createdAtMS).UTC()
		out = append(out, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: get results: %w", err)
	}
	return out, nil
}

// GetRunBundle loads a run with its suite, cases and context documents.
func (s *SQLiteStore) GetRunBundle(ctx context.Context, runID string) (*RunBundle, error) {
	run, err := s.GetRun(ctx, runID)
	if err != nil {
		return nil, err
	}
	suite, err := s.GetSuite(ctx, run.SuiteID)
	if err != nil {
		return nil, fmt.Errorf("store: bundle suite %s: %w", run.SuiteID, err)
	}

	cases, err := s.casesBySuite(ctx, run.SuiteID)
	if err != nil {
		return nil, err
	}
	docs, err := s.docsBySuite(ctx, run.SuiteID)
	if err != nil {
		return nil, err
	}

	return &RunBundle{
		Run:       run,
		Suite:     suite,
		Cases:     cases,
		Documents: docs,
	}, nil
}

func (s *SQLiteStore) casesBySuite(ctx context.Context, suiteID string) ([]*TestCase, error) {
	rows, err := s.casesBySuiteStmt.QueryContext(ctx, suiteID)
	if err != nil {
		return nil, fmt.Errorf("store: cases by suite: %w", err)
	}
	defer rows.Close()

	var out []*TestCase
	for rows.Next() {
		var (
			tc          TestCase
			createdAtMS int64
		)
		if err := rows.Scan(
			&tc.ID,
			&tc.SuiteID,
			&tc.QuestionText,
			&tc.QuestionAudioPath,
			&tc.QuestionImagePath,
			&tc.ExpectedAnswer,
			&createdAtMS,
		); err != nil {
			return nil, fmt.Errorf("store: scan case: %w", err)
		}
		tc.CreatedAt = time.UnixMilli(createdAtMS).UTC()
		out = append(out, &tc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: cases by suite: %w", err)
	}
	return out, nil
}

func (s *SQLiteStore) docsBySuite(ctx context.Context, suiteID string) ([]*ContextDocument, error) {
	rows, err := s.docsBySuiteStmt.QueryContext(ctx, suiteID)
	if err != nil {
		return nil, fmt.Errorf("store: documents by suite: %w", err)
	}
	defer rows.Close()

	var out []*ContextDocument
	for rows.Next() {
		var doc ContextDocument
		if err := rows.Scan(&doc.ID, &doc.SuiteID, &doc.Text, &doc.FilePath); err != nil {
			return nil, fmt.Errorf("store: scan document: %w", err)
		}
		out = append(out, &doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: documents by suite: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSuite(row rowScanner) (*TestSuite, error) {
	var (
		suite       TestSuite
		createdAtMS int64
	)
	if err := row.Scan(&suite.ID, &suite.Name, &suite.SystemPrompt, &createdAtMS); err != nil {
		return nil, err
	}
	suite.CreatedAt = time.UnixMilli(createdAtMS).UTC()
	return &suite, nil
}

func scanRun(row rowScanner) (*TestRun, error) {
	var (
		run           TestRun
		createdAtMS   int64
		completedAtMS sql.NullInt64
	)
	if err := row.Scan(
		&run.ID,
		&run.SuiteID,
		&run.Model,
		&run.Prompt,
		&run.Temperature,
		&run.TopP,
		&run.TopK,
		&run.Status,
		&createdAtMS,
		&completedAtMS,
	); err != nil {
		return nil, err
	}
	run.CreatedAt = time.UnixMilli(createdAtMS).UTC()
	if completedAtMS.Valid {
		run.CompletedAt = time.UnixMilli(completedAtMS.Int64).UTC()
	}
	return &run, nil
}
