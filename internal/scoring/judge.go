package scoring

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"strconv"
	"strings"
	"text/template"

	"github.com/stellarlinkco/qa-eval/internal/llm"
)

// Verdicts are requested at low temperature so repeated runs on the same input
// stay consistent.
const judgeTemperature = 0.1

const judgeMaxTokens = 1024

// Verdict is a judge outcome. Score is always in [0,1]; Reason explains it or,
// when judging degraded, documents why.
type Verdict struct {
	Score  float64
	Reason string
}

// Judge scores a generated answer against an expected answer using an LLM.
// Score never returns an error: provider and parsing failures degrade to a
// neutral 0.5 verdict with an explanatory reason.
type Judge struct {
	Registry     *llm.Registry
	DefaultModel string // "<provider>:<model-id>"
	Logger       *slog.Logger
}

const judgePromptTemplate = `You are an expert evaluator assessing the quality of an AI-generated answer.

## Question
{{.Question}}

## Expected Answer
{{.Expected}}

## Generated Answer
{{.Generated}}

## Instructions
Evaluate the generated answer against the expected answer on four criteria:
- accuracy: is the answer factually correct relative to the expected answer?
- completeness: does it cover everything the expected answer covers?
- relevance: does it actually address the question?
- coherence: is it well-formed and understandable?

Each criterion is a number from 0.0 to 1.0. The overall score is a number from 0.0 to 1.0.

Output ONLY valid JSON in this exact format:
{"score": <number 0.0-1.0>, "breakdown": {"accuracy": <number>, "completeness": <number>, "relevance": <number>, "coherence": <number>}, "reason": "<brief explanation>"}`

var judgePromptTmpl = template.Must(template.New("judge").Parse(judgePromptTemplate))

type judgePromptData struct {
	Question  string
	Expected  string
	Generated string
}

var judgeSchema = &llm.ResponseSchema{
	Name: "answer_evaluation",
	Schema: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"score": map[string]any{"type": "number", "minimum": 0, "maximum": 1},
			"breakdown": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"accuracy":     map[string]any{"type": "number", "minimum": 0, "maximum": 1},
					"completeness": map[string]any{"type": "number", "minimum": 0, "maximum": 1},
					"relevance":    map[string]any{"type": "number", "minimum": 0, "maximum": 1},
					"coherence":    map[string]any{"type": "number", "minimum": 0, "maximum": 1},
				},
				"required":             []string{"accuracy", "completeness", "relevance", "coherence"},
				"additionalProperties": false,
			},
			"reason": map[string]any{"type": "string"},
		},
		"required":             []string{"score", "breakdown", "reason"},
		"additionalProperties": false,
	},
}

// Score judges generated against expected for the given question. An empty
// model falls back to the judge's default model.
func (j *Judge) Score(ctx context.Context, question, generated, expected, model string) Verdict {
	if j == nil || j.Registry == nil {
		return neutralVerdict("no judge provider configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	modelID := strings.TrimSpace(model)
	if modelID == "" {
		modelID = j.DefaultModel
	}
	provider, modelName, err := j.Registry.Resolve(modelID)
	if err != nil {
		return neutralVerdict(err.Error())
	}

	var promptBuf bytes.Buffer
	if err := judgePromptTmpl.Execute(&promptBuf, judgePromptData{
		Question:  question,
		Expected:  expected,
		Generated: generated,
	}); err != nil {
		return neutralVerdict(fmt.Sprintf("render prompt: %v", err))
	}

	req := &llm.Request{
		Model:       modelName,
		Messages:    []llm.Message{{Role: "user", Content: promptBuf.String()}},
		MaxTokens:   judgeMaxTokens,
		Temperature: judgeTemperature,
	}

	if sc, ok := provider.(llm.StructuredCompleter); ok {
		resp, err := sc.CompleteStructured(ctx, req, judgeSchema)
		if err != nil {
			j.logDegraded(modelID, err)
			return neutralVerdict(fmt.Sprintf("Evaluation failed: %v. Defaulting to neutral score.", err))
		}
		// Schema-validated output still gets a final clamp.
		return parseStructuredVerdict(resp.Text)
	}

	resp, err := provider.Complete(ctx, req)
	if err != nil {
		j.logDegraded(modelID, err)
		return neutralVerdict(fmt.Sprintf("Evaluation failed: %v. Defaulting to neutral score.", err))
	}
	return ParseVerdict(resp.Text)
}

func (j *Judge) logDegraded(modelID string, err error) {
	if j == nil || j.Logger == nil {
		return
	}
	j.Logger.Warn("judge call failed, defaulting to neutral score", "model", modelID, "error", err)
}

func neutralVerdict(reason string) Verdict {
	return Verdict{Score: 0.5, Reason: reason}
}

type judgeOutput struct {
	Score     any            `json:"score"`
	Breakdown map[string]any `json:"breakdown"`
	Reason    string         `json:"reason"`
}

func parseStructuredVerdict(raw string) Verdict {
	var out judgeOutput
	if err := llm.ParseJSON(raw, &out); err != nil {
		// Structured generation should not produce unparseable output, but a
		// misbehaving gateway can. Fall through to the free-text cascade.
		return ParseVerdict(raw)
	}
	score, ok := scoreFromOutput(out)
	if !ok {
		score = 0.5
	}
	return Verdict{Score: clamp01(score), Reason: verdictReason(out.Reason, raw)}
}

// ParseVerdict extracts a verdict from free-form judge output. The cascade:
// embedded JSON object, string-score coercion, breakdown averaging, regex
// score patterns, then a neutral 0.5 with a truncated excerpt. It never fails.
func ParseVerdict(raw string) Verdict {
	var out judgeOutput
	if err := llm.ParseJSON(raw, &out); err == nil {
		score, ok := scoreFromOutput(out)
		if !ok {
			score = 0.5
		}
		return Verdict{Score: clamp01(score), Reason: verdictReason(out.Reason, raw)}
	}

	if score, ok := scanScorePattern(raw); ok {
		return Verdict{Score: score, Reason: verdictReason("", raw)}
	}

	return Verdict{Score: 0.5, Reason: excerpt(raw, 200)}
}

func scoreFromOutput(out judgeOutput) (float64, bool) {
	switch v := out.Score.(type) {
	case float64:
		if isFinite(v) {
			return v, true
		}
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil && isFinite(f) {
			return f, true
		}
	}

	// No usable score field; average the breakdown if present.
	if len(out.Breakdown) > 0 {
		sum := 0.0
		n := 0
		for _, v := range out.Breakdown {
			if f, ok := v.(float64); ok && isFinite(f) {
				sum += f
				n++
			}
		}
		if n > 0 {
			return sum / float64(n), true
		}
	}
	return 0, false
}

// Ordered; the first pattern whose captured value lies in [0,1] wins.
var scorePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bscore\s*[:=]\s*(\d+(?:\.\d+)?)`),
	regexp.MustCompile(`(\d+(?:\.\d+)?)\s*/\s*1(?:\.0)?\b`),
	regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s+out\s+of\s+1\b`),
	regexp.MustCompile(`(?i)\brating\s*[:=]\s*(\d+(?:\.\d+)?)`),
}

func scanScorePattern(raw string) (float64, bool) {
	for _, re := range scorePatterns {
		m := re.FindStringSubmatch(raw)
		if len(m) < 2 {
			continue
		}
		f, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		if f >= 0 && f <= 1 {
			return f, true
		}
	}
	return 0, false
}

func verdictReason(reason, raw string) string {
	if r := strings.TrimSpace(reason); r != "" {
		return r
	}
	return excerpt(raw, 200)
}

func excerpt(s string, n int) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "no judge output"
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
