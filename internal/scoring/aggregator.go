package scoring

import (
	"context"
	"log/slog"

	"github.com/stellarlinkco/qa-eval/internal/llm"
)

// Scores holds the three per-answer quality metrics, each in [0,1].
type Scores struct {
	BLEU      float64
	Cosine    float64
	LLMScore  float64
	LLMReason string
}

// Input is one answer to score.
type Input struct {
	Question        string
	GeneratedAnswer string
	ExpectedAnswer  string
	JudgeModel      string // optional "<provider>:<model-id>" override
}

// Aggregator runs the three scorers and owns the embedding-to-term-frequency
// fallback. Calculate never fails: BLEU cannot error, cosine degrades to the
// term-frequency path, and the judge degrades to a neutral verdict.
type Aggregator struct {
	Embedder llm.Embedder // nil forces the term-frequency path
	Judge    *Judge
	Logger   *slog.Logger
}

func (a *Aggregator) Calculate(ctx context.Context, in Input) Scores {
	out := Scores{
		BLEU: NormalizeBLEU(BLEU(in.GeneratedAnswer, in.ExpectedAnswer)),
	}
	out.Cosine = a.cosine(ctx, in.GeneratedAnswer, in.ExpectedAnswer)

	v := a.Judge.Score(ctx, in.Question, in.GeneratedAnswer, in.ExpectedAnswer, in.JudgeModel)
	out.LLMScore = v.Score
	out.LLMReason = v.Reason
	return out
}

// cosine tries embedding cosine first and falls back to the term-frequency
// path on any failure. A missing or broken embedding provider degrades the
// metric, it never fails the run.
func (a *Aggregator) cosine(ctx context.Context, text1, text2 string) float64 {
	if a != nil && a.Embedder != nil {
		score, err := a.embeddingCosine(ctx, text1, text2)
		if err == nil {
			return clamp01(score)
		}
		if a.Logger != nil {
			a.Logger.Warn("embedding cosine failed, falling back to term frequency", "error", err)
		}
	}
	return TermFrequencyCosine(text1, text2)
}

func (a *Aggregator) embeddingCosine(ctx context.Context, text1, text2 string) (float64, error) {
	v1, err := a.Embedder.Embed(ctx, text1)
	if err != nil {
		return 0, err
	}
	v2, err := a.Embedder.Embed(ctx, text2)
	if err != nil {
		return 0, err
	}
	return CosineSimilarity(v1, v2)
}

// Weighted collapses the three metrics into one ranking scalar. The judge is
// weighted highest as the most semantically nuanced signal; lexical overlap is
// the weakest signal for open-ended answers.
func Weighted(s Scores) float64 {
	return 0.2*s.BLEU + 0.3*s.Cosine + 0.5*s.LLMScore
}
