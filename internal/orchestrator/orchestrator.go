// Package orchestrator drives one test run end to end: fetch the run bundle,
// generate an answer per case with bounded concurrency, score every answer,
// then persist all results in bulk and finalize the run. A case failure
// becomes a FAILED result; it never aborts the run.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/stellarlinkco/qa-eval/internal/contextdoc"
	"github.com/stellarlinkco/qa-eval/internal/llm"
	"github.com/stellarlinkco/qa-eval/internal/realtime"
	"github.com/stellarlinkco/qa-eval/internal/scoring"
	"github.com/stellarlinkco/qa-eval/internal/store"
)

const defaultConcurrency = 3

// Orchestrator processes pending runs.
type Orchestrator struct {
	Store    store.Store
	Registry *llm.Registry
	// Transport handles audio questions and, for models listed in
	// RealtimeModels, text questions too. Nil means audio cases fail.
	Transport realtime.Transport
	Scorer    *scoring.Aggregator
	Loader    *contextdoc.Loader

	// Concurrency caps in-flight case pipelines. Zero means the default.
	Concurrency int
	// JudgeModel used when the run does not name one.
	JudgeModel string
	// RealtimeModels lists models whose text questions route through
	// Transport instead of the request/response path.
	RealtimeModels []string
	// CaseTimeout bounds one case's generation plus scoring. Zero disables.
	CaseTimeout time.Duration

	Logger *slog.Logger
}

// ProcessRun evaluates every case of the run and finalizes it. Only a failed
// initial fetch or a failed persistence step returns an error; per-case
// failures are recorded as FAILED results and the run still completes.
func (o *Orchestrator) ProcessRun(ctx context.Context, runID string) error {
	if o == nil {
		return errors.New("orchestrator: nil orchestrator")
	}
	if ctx == nil {
		return errors.New("orchestrator: nil context")
	}
	if o.Store == nil || o.Scorer == nil {
		return errors.New("orchestrator: missing store or scorer")
	}
	runID = strings.TrimSpace(runID)
	if runID == "" {
		return errors.New("orchestrator: empty run id")
	}

	bundle, err := o.Store.GetRunBundle(ctx, runID)
	if err != nil {
		return fmt.Errorf("orchestrator: load run %s: %w", runID, err)
	}

	log := o.logger().With("run_id", runID, "suite_id", bundle.Suite.ID, "model", bundle.Run.Model)
	log.Info("processing run", "cases", len(bundle.Cases))

	// Context documents are loaded once and shared by every case.
	contextText := o.loadContext(bundle.Documents)

	results := make([]*store.RunResult, len(bundle.Cases))
	sem := make(chan struct{}, o.concurrency())
	var wg sync.WaitGroup

	for i, tc := range bundle.Cases {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			results[i] = o.failedResult(runID, tc.ID, ctx.Err())
			continue
		}
		wg.Add(1)
		go func(i int, tc *store.TestCase) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = o.processCase(ctx, bundle, contextText, tc)
		}(i, tc)
	}
	wg.Wait()

	if err := o.Store.SaveResults(ctx, results); err != nil {
		return fmt.Errorf("orchestrator: save results for run %s: %w", runID, err)
	}
	if err := o.Store.MarkRunCompleted(ctx, runID, time.Now().UTC()); err != nil {
		return fmt.Errorf("orchestrator: complete run %s: %w", runID, err)
	}

	failed := 0
	for _, r := range results {
		if r.Status == store.ResultStatusFailed {
			failed++
		}
	}
	log.Info("run completed", "results", len(results), "failed", failed)
	return nil
}

// processCase runs the whole per-case pipeline. Every failure path, panics
// included, collapses into a FAILED result.
func (o *Orchestrator) processCase(ctx context.Context, bundle *store.RunBundle, contextText string, tc *store.TestCase) (result *store.RunResult) {
	runID := bundle.Run.ID
	defer func() {
		if r := recover(); r != nil {
			o.logger().Error("case pipeline panicked", "run_id", runID, "case_id", tc.ID, "panic", r)
			result = o.failedResult(runID, tc.ID, fmt.Errorf("panic: %v", r))
		}
	}()

	if o.CaseTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.CaseTimeout)
		defer cancel()
	}

	q, err := ResolveQuestion(tc)
	if err != nil {
		return o.failedResult(runID, tc.ID, err)
	}

	answer, transcript, err := o.generate(ctx, bundle, contextText, q)
	if err != nil {
		return o.failedResult(runID, tc.ID, err)
	}

	scoringQuestion := q.ScoringText()
	if transcript != "" {
		scoringQuestion = transcript
	}

	scores := o.Scorer.Calculate(ctx, scoring.Input{
		Question:        scoringQuestion,
		GeneratedAnswer: answer,
		ExpectedAnswer:  tc.ExpectedAnswer,
		JudgeModel:      o.JudgeModel,
	})

	return &store.RunResult{
		ID:             uuid.NewString(),
		RunID:          runID,
		CaseID:         tc.ID,
		Status:         store.ResultStatusCompleted,
		Answer:         answer,
		BLEUScore:      scores.BLEU,
		CosineSimScore: scores.Cosine,
		LLMScore:       scores.LLMScore,
		LLMScoreReason: scores.LLMReason,
		CreatedAt:      time.Now().UTC(),
	}
}

// generate produces the answer for one question, picking the transport by
// modality: audio always goes through the realtime transport, text goes
// through it only for models configured that way, everything else uses the
// request/response path. Image questions have no dedicated transport and are
// asked as their textual placeholder.
func (o *Orchestrator) generate(ctx context.Context, bundle *store.RunBundle, contextText string, q Question) (answer, transcript string, err error) {
	systemPrompt := bundle.Run.Prompt
	if systemPrompt == "" {
		systemPrompt = bundle.Suite.SystemPrompt
	}

	if q.Kind == KindAudio {
		if o.Transport == nil {
			return "", "", errors.New("orchestrator: audio question but no realtime transport configured")
		}
		res, err := o.Transport.Generate(ctx, &realtime.SessionRequest{
			SystemPrompt:      systemPrompt,
			Context:           contextText,
			QuestionAudioPath: q.Path,
		})
		if err != nil {
			return "", "", err
		}
		return res.Answer, res.InputTranscript, nil
	}

	questionText := q.ScoringText()

	if o.isRealtimeModel(bundle.Run.Model) {
		if o.Transport == nil {
			return "", "", fmt.Errorf("orchestrator: model %q routes to realtime but no transport configured", bundle.Run.Model)
		}
		res, err := o.Transport.Generate(ctx, &realtime.SessionRequest{
			SystemPrompt: systemPrompt,
			Context:      contextText,
			QuestionText: questionText,
		})
		if err != nil {
			return "", "", err
		}
		return res.Answer, res.InputTranscript, nil
	}

	if o.Registry == nil {
		return "", "", errors.New("orchestrator: no provider registry configured")
	}
	provider, model, err := o.Registry.Resolve(bundle.Run.Model)
	if err != nil {
		return "", "", err
	}

	system := systemPrompt
	if contextText != "" {
		system = strings.TrimSpace(system + "\n\nContext:\n" + contextText)
	}
	resp, err := provider.Complete(ctx, &llm.Request{
		Model:       model,
		System:      system,
		Messages:    []llm.Message{{Role: "user", Content: questionText}},
		Temperature: bundle.Run.Temperature,
		TopP:        bundle.Run.TopP,
		TopK:        bundle.Run.TopK,
	})
	if err != nil {
		return "", "", err
	}
	return resp.Text, "", nil
}

func (o *Orchestrator) loadContext(docs []*store.ContextDocument) string {
	if len(docs) == 0 {
		return ""
	}
	loader := o.Loader
	if loader == nil {
		loader = &contextdoc.Loader{Logger: o.Logger}
	}
	converted := make([]contextdoc.Document, 0, len(docs))
	for _, d := range docs {
		if d == nil {
			continue
		}
		converted = append(converted, contextdoc.Document{
			ID:       d.ID,
			Text:     d.Text,
			FilePath: d.FilePath,
		})
	}
	return loader.Load(converted)
}

func (o *Orchestrator) failedResult(runID, caseID string, err error) *store.RunResult {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	o.logger().Warn("case failed", "run_id", runID, "case_id", caseID, "error", msg)
	return &store.RunResult{
		ID:             uuid.NewString(),
		RunID:          runID,
		CaseID:         caseID,
		Status:         store.ResultStatusFailed,
		FailReason:     msg,
		Answer:         "[ERROR] " + msg,
		LLMScoreReason: "Evaluation skipped: " + msg,
		CreatedAt:      time.Now().UTC(),
	}
}

func (o *Orchestrator) isRealtimeModel(model string) bool {
	model = strings.ToLower(strings.TrimSpace(model))
	for _, m := range o.RealtimeModels {
		if strings.ToLower(strings.TrimSpace(m)) == model {
			return true
		}
	}
	return false
}

func (o *Orchestrator) concurrency() int {
	if o.Concurrency > 0 {
		return o.Concurrency
	}
	return defaultConcurrency
}

func (o *Orchestrator) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}
