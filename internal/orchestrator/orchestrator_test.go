package orchestrator

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stellarlinkco/qa-eval/internal/llm"
	"github.com/stellarlinkco/qa-eval/internal/realtime"
	"github.com/stellarlinkco/qa-eval/internal/scoring"
	"github.com/stellarlinkco/qa-eval/internal/store"
)

type fakeStore struct {
	store.Store

	bundle    *store.RunBundle
	bundleErr error

	mu        sync.Mutex
	saved     []*store.RunResult
	completed []string
	saveErr   error
}

func (f *fakeStore) GetRunBundle(ctx context.Context, runID string) (*store.RunBundle, error) {
	if f.bundleErr != nil {
		return nil, f.bundleErr
	}
	return f.bundle, nil
}

func (f *fakeStore) SaveResults(ctx context.Context, results []*store.RunResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, results...)
	return nil
}

func (f *fakeStore) MarkRunCompleted(ctx context.Context, runID string, completedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.completed = append(f.completed, runID)
	return nil
}

type fakeProvider struct {
	name   string
	answer string
	// failFor makes Complete fail when the question contains the substring.
	failFor string

	mu         sync.Mutex
	inFlight   int
	maxInUse   int
	callCount  int
	lastSystem string
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Complete(ctx context.Context, req *llm.Request) (*llm.Response, error) {
	f.mu.Lock()
	f.inFlight++
	f.callCount++
	if f.inFlight > f.maxInUse {
		f.maxInUse = f.inFlight
	}
	f.lastSystem = req.System
	f.mu.Unlock()

	time.Sleep(5 * time.Millisecond)

	f.mu.Lock()
	f.inFlight--
	f.mu.Unlock()

	if f.failFor != "" {
		for _, m := range req.Messages {
			if strings.Contains(m.Content, f.failFor) {
				return nil, errors.New("provider timeout")
			}
		}
	}
	return &llm.Response{Text: f.answer}, nil
}

type fakeTransport struct {
	mu         sync.Mutex
	requests   []*realtime.SessionRequest
	answer     string
	transcript string
	err        error
}

func (f *fakeTransport) Generate(ctx context.Context, req *realtime.SessionRequest) (*realtime.SessionResult, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return &realtime.SessionResult{Answer: f.answer, InputTranscript: f.transcript}, nil
}

func textCase(id, question, expected string) *store.TestCase {
	return &store.TestCase{ID: id, SuiteID: "suite_1", QuestionText: question, ExpectedAnswer: expected}
}

func testBundle(cases ...*store.TestCase) *store.RunBundle {
	return &store.RunBundle{
		Run:   &store.TestRun{ID: "run_1", SuiteID: "suite_1", Model: "openai:gpt-4o"},
		Suite: &store.TestSuite{ID: "suite_1", Name: "caps", SystemPrompt: "Answer concisely."},
		Cases: cases,
	}
}

func newTestOrchestrator(st store.Store, provider llm.Provider) *Orchestrator {
	reg := llm.NewRegistry()
	if provider != nil {
		reg.Register(provider)
	}
	return &Orchestrator{
		Store:    st,
		Registry: reg,
		Scorer:   &scoring.Aggregator{},
	}
}

func TestProcessRunSuccess(t *testing.T) {
	st := &fakeStore{bundle: testBundle(
		textCase("case_1", "What is the capital of France?", "Paris"),
		textCase("case_2", "What is the capital of Germany?", "Berlin"),
	)}
	provider := &fakeProvider{name: "openai", answer: "Paris"}
	o := newTestOrchestrator(st, provider)

	if err := o.ProcessRun(context.Background(), "run_1"); err != nil {
		t.Fatalf("ProcessRun: %v", err)
	}

	if len(st.saved) != 2 {
		t.Fatalf("results: got %d want 2", len(st.saved))
	}
	for _, r := range st.saved {
		if r.Status != store.ResultStatusCompleted {
			t.Fatalf("status for %s: got %q want COMPLETED", r.CaseID, r.Status)
		}
		if r.Answer != "Paris" {
			t.Fatalf("answer for %s: got %q", r.CaseID, r.Answer)
		}
	}
	// Exact match must score a full BLEU.
	var paris *store.RunResult
	for _, r := range st.saved {
		if r.CaseID == "case_1" {
			paris = r
		}
	}
	if paris == nil {
		t.Fatal("missing result for case_1")
	}
	if paris.BLEUScore <= 0.9 {
		t.Fatalf("BLEU for exact match: got %v want > 0.9", paris.BLEUScore)
	}
	if paris.CosineSimScore != 1 {
		t.Fatalf("cosine for exact match: got %v want 1", paris.CosineSimScore)
	}
	if len(st.completed) != 1 || st.completed[0] != "run_1" {
		t.Fatalf("completed runs: got %v", st.completed)
	}
}

func TestProcessRunIsolatesCaseFailures(t *testing.T) {
	st := &fakeStore{bundle: testBundle(
		textCase("case_1", "What is the capital of France?", "Paris"),
		textCase("case_2", "TRIGGER network failure", "Berlin"),
		textCase("case_3", "What is the capital of Italy?", "Rome"),
	)}
	provider := &fakeProvider{name: "openai", answer: "Paris", failFor: "TRIGGER"}
	o := newTestOrchestrator(st, provider)

	if err := o.ProcessRun(context.Background(), "run_1"); err != nil {
		t.Fatalf("ProcessRun: %v", err)
	}

	if len(st.saved) != 3 {
		t.Fatalf("results: got %d want 3", len(st.saved))
	}
	failed := 0
	for _, r := range st.saved {
		if r.Status == store.ResultStatusFailed {
			failed++
			if r.CaseID != "case_2" {
				t.Fatalf("failed case: got %q want case_2", r.CaseID)
			}
			if r.FailReason == "" {
				t.Fatal("failed result missing reason")
			}
			if !strings.HasPrefix(r.Answer, "[ERROR]") {
				t.Fatalf("failed answer: got %q", r.Answer)
			}
			if !strings.HasPrefix(r.LLMScoreReason, "Evaluation skipped:") {
				t.Fatalf("failed llm reason: got %q", r.LLMScoreReason)
			}
			if r.BLEUScore != 0 || r.CosineSimScore != 0 || r.LLMScore != 0 {
				t.Fatalf("failed scores: got %v/%v/%v want zeros", r.BLEUScore, r.CosineSimScore, r.LLMScore)
			}
		}
	}
	if failed != 1 {
		t.Fatalf("failed results: got %d want 1", failed)
	}
	if len(st.completed) != 1 {
		t.Fatalf("run not finalized: completed=%v", st.completed)
	}
}

func TestProcessRunConcurrencyCap(t *testing.T) {
	cases := make([]*store.TestCase, 12)
	for i := range cases {
		cases[i] = textCase("case_"+string(rune('a'+i)), "What is the capital of France?", "Paris")
	}
	st := &fakeStore{bundle: testBundle(cases...)}
	provider := &fakeProvider{name: "openai", answer: "Paris"}
	o := newTestOrchestrator(st, provider)
	o.Concurrency = 3

	if err := o.ProcessRun(context.Background(), "run_1"); err != nil {
		t.Fatalf("ProcessRun: %v", err)
	}
	if provider.callCount != 12 {
		t.Fatalf("provider calls: got %d want 12", provider.callCount)
	}
	if provider.maxInUse > 3 {
		t.Fatalf("in-flight cases: got %d want <= 3", provider.maxInUse)
	}
}

func TestProcessRunAudioRouting(t *testing.T) {
	audio := &store.TestCase{
		ID:                "case_audio",
		SuiteID:           "suite_1",
		QuestionAudioPath: "audio/q.wav",
		ExpectedAnswer:    "Paris",
	}
	st := &fakeStore{bundle: testBundle(audio)}
	provider := &fakeProvider{name: "openai", answer: "should not be used"}
	transport := &fakeTransport{answer: "Paris", transcript: "What is the capital of France?"}

	o := newTestOrchestrator(st, provider)
	o.Transport = transport

	if err := o.ProcessRun(context.Background(), "run_1"); err != nil {
		t.Fatalf("ProcessRun: %v", err)
	}
	if provider.callCount != 0 {
		t.Fatalf("text provider called %d times for audio case", provider.callCount)
	}
	if len(transport.requests) != 1 {
		t.Fatalf("transport calls: got %d want 1", len(transport.requests))
	}
	if transport.requests[0].QuestionAudioPath != "audio/q.wav" {
		t.Fatalf("audio path: got %q", transport.requests[0].QuestionAudioPath)
	}
	if len(st.saved) != 1 || st.saved[0].Answer != "Paris" {
		t.Fatalf("results: got %+v", st.saved)
	}
	if st.saved[0].Status != store.ResultStatusCompleted {
		t.Fatalf("status: got %q", st.saved[0].Status)
	}
	// Exact answer should score full cosine regardless of modality.
	if st.saved[0].CosineSimScore != 1 {
		t.Fatalf("cosine: got %v want 1", st.saved[0].CosineSimScore)
	}
}

func TestProcessRunAudioWithoutTransportFails(t *testing.T) {
	audio := &store.TestCase{
		ID:                "case_audio",
		SuiteID:           "suite_1",
		QuestionAudioPath: "audio/q.wav",
		ExpectedAnswer:    "Paris",
	}
	st := &fakeStore{bundle: testBundle(audio)}
	o := newTestOrchestrator(st, &fakeProvider{name: "openai"})

	if err := o.ProcessRun(context.Background(), "run_1"); err != nil {
		t.Fatalf("ProcessRun: %v", err)
	}
	if len(st.saved) != 1 || st.saved[0].Status != store.ResultStatusFailed {
		t.Fatalf("results: got %+v", st.saved)
	}
	if !strings.Contains(st.saved[0].FailReason, "transport") {
		t.Fatalf("fail reason: got %q", st.saved[0].FailReason)
	}
	if len(st.completed) != 1 {
		t.Fatal("run not finalized after audio failure")
	}
}

func TestProcessRunRealtimeTextRouting(t *testing.T) {
	st := &fakeStore{bundle: testBundle(
		textCase("case_1", "What is the capital of France?", "Paris"),
	)}
	provider := &fakeProvider{name: "openai", answer: "should not be used"}
	transport := &fakeTransport{answer: "Paris"}

	o := newTestOrchestrator(st, provider)
	o.Transport = transport
	o.RealtimeModels = []string{"openai:gpt-4o"}

	if err := o.ProcessRun(context.Background(), "run_1"); err != nil {
		t.Fatalf("ProcessRun: %v", err)
	}
	if provider.callCount != 0 {
		t.Fatalf("text provider called %d times for realtime-routed model", provider.callCount)
	}
	if len(transport.requests) != 1 || transport.requests[0].QuestionText != "What is the capital of France?" {
		t.Fatalf("transport requests: got %+v", transport.requests)
	}
}

func TestProcessRunNoQuestionContent(t *testing.T) {
	st := &fakeStore{bundle: testBundle(
		&store.TestCase{ID: "case_empty", SuiteID: "suite_1", ExpectedAnswer: "Paris"},
	)}
	o := newTestOrchestrator(st, &fakeProvider{name: "openai", answer: "Paris"})

	if err := o.ProcessRun(context.Background(), "run_1"); err != nil {
		t.Fatalf("ProcessRun: %v", err)
	}
	if len(st.saved) != 1 || st.saved[0].Status != store.ResultStatusFailed {
		t.Fatalf("results: got %+v", st.saved)
	}
	if !strings.Contains(st.saved[0].FailReason, "no question content") {
		t.Fatalf("fail reason: got %q", st.saved[0].FailReason)
	}
}

func TestProcessRunUnresolvableModel(t *testing.T) {
	bundle := testBundle(
		textCase("case_1", "What is the capital of France?", "Paris"),
		textCase("case_2", "What is the capital of Germany?", "Berlin"),
	)
	bundle.Run.Model = "nosuch:model"
	st := &fakeStore{bundle: bundle}
	o := newTestOrchestrator(st, &fakeProvider{name: "openai", answer: "Paris"})

	if err := o.ProcessRun(context.Background(), "run_1"); err != nil {
		t.Fatalf("ProcessRun: %v", err)
	}
	if len(st.saved) != 2 {
		t.Fatalf("results: got %d want 2", len(st.saved))
	}
	for _, r := range st.saved {
		if r.Status != store.ResultStatusFailed {
			t.Fatalf("status for %s: got %q want FAILED", r.CaseID, r.Status)
		}
	}
	if len(st.completed) != 1 {
		t.Fatal("run with bad model must still be finalized")
	}
}

func TestProcessRunFetchFailureAborts(t *testing.T) {
	st := &fakeStore{bundleErr: errors.New("db locked")}
	o := newTestOrchestrator(st, &fakeProvider{name: "openai"})

	err := o.ProcessRun(context.Background(), "run_1")
	if err == nil {
		t.Fatal("ProcessRun: expected error")
	}
	if len(st.saved) != 0 || len(st.completed) != 0 {
		t.Fatalf("nothing should be written after fetch failure: saved=%d completed=%d", len(st.saved), len(st.completed))
	}
}

func TestProcessRunContextInSystemPrompt(t *testing.T) {
	bundle := testBundle(textCase("case_1", "What is the capital of France?", "Paris"))
	bundle.Documents = []*store.ContextDocument{
		{ID: "doc_1", SuiteID: "suite_1", Text: "European capitals reference."},
	}
	st := &fakeStore{bundle: bundle}
	provider := &fakeProvider{name: "openai", answer: "Paris"}
	o := newTestOrchestrator(st, provider)

	if err := o.ProcessRun(context.Background(), "run_1"); err != nil {
		t.Fatalf("ProcessRun: %v", err)
	}
	if !strings.Contains(provider.lastSystem, "European capitals reference.") {
		t.Fatalf("system prompt missing context: %q", provider.lastSystem)
	}
	if !strings.Contains(provider.lastSystem, "Answer concisely.") {
		t.Fatalf("system prompt missing suite prompt: %q", provider.lastSystem)
	}
}

func TestResolveQuestion(t *testing.T) {
	tests := []struct {
		name     string
		tc       *store.TestCase
		wantKind QuestionKind
		wantErr  bool
	}{
		{"text", &store.TestCase{QuestionText: "hi"}, KindText, false},
		{"audio", &store.TestCase{QuestionAudioPath: "q.wav"}, KindAudio, false},
		{"image", &store.TestCase{QuestionImagePath: "q.png"}, KindImage, false},
		{"text wins over audio", &store.TestCase{QuestionText: "hi", QuestionAudioPath: "q.wav"}, KindText, false},
		{"empty", &store.TestCase{}, 0, true},
		{"nil", nil, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := ResolveQuestion(tt.tc)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("ResolveQuestion: %v", err)
			}
			if q.Kind != tt.wantKind {
				t.Fatalf("kind: got %v want %v", q.Kind, tt.wantKind)
			}
		})
	}
}

func TestScoringText(t *testing.T) {
	if got := (Question{Kind: KindText, Text: "hi"}).ScoringText(); got != "hi" {
		t.Fatalf("text: got %q", got)
	}
	if got := (Question{Kind: KindAudio, Path: "a.wav"}).ScoringText(); got != "[Audio: a.wav]" {
		t.Fatalf("audio: got %q", got)
	}
	if got := (Question{Kind: KindImage, Path: "b.png"}).ScoringText(); got != "[Image: b.png]" {
		t.Fatalf("image: got %q", got)
	}
}
