// Package leaderboard ranks models by their scores across completed runs.
package leaderboard

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/stellarlinkco/qa-eval/internal/scoring"
	"github.com/stellarlinkco/qa-eval/internal/store"
)

const defaultRunLimit = 200

// Entry aggregates one model's results across completed runs. Failed results
// count toward Cases but contribute zero scores, so flaky models rank lower.
type Entry struct {
	Model       string    `json:"model"`
	Runs        int       `json:"runs"`
	Cases       int       `json:"cases"`
	FailedCases int       `json:"failed_cases"`
	AvgBLEU     float64   `json:"avg_bleu"`
	AvgCosine   float64   `json:"avg_cosine"`
	AvgLLM      float64   `json:"avg_llm"`
	AvgWeighted float64   `json:"avg_weighted"`
	LastRunAt   time.Time `json:"last_run_at"`
}

// Reader is the slice of the store the leaderboard needs.
type Reader interface {
	ListRuns(ctx context.Context, filter store.RunFilter) ([]*store.TestRun, error)
	GetResults(ctx context.Context, runID string) ([]*store.RunResult, error)
}

// Compute builds the leaderboard from the most recent completed runs, ranked
// by average weighted score.
func Compute(ctx context.Context, r Reader, runLimit int) ([]Entry, error) {
	if r == nil {
		return nil, errors.New("leaderboard: nil reader")
	}
	if ctx == nil {
		return nil, errors.New("leaderboard: nil context")
	}
	if runLimit <= 0 {
		runLimit = defaultRunLimit
	}

	runs, err := r.ListRuns(ctx, store.RunFilter{
		Status: store.RunStatusCompleted,
		Limit:  runLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("leaderboard: list runs: %w", err)
	}

	type acc struct {
		entry    Entry
		sumBLEU  float64
		sumCos   float64
		sumLLM   float64
		sumTotal float64
	}
	byModel := make(map[string]*acc)

	for _, run := range runs {
		model := strings.TrimSpace(run.Model)
		if model == "" {
			continue
		}
		results, err := r.GetResults(ctx, run.ID)
		if err != nil {
			return nil, fmt.Errorf("leaderboard: results for run %s: %w", run.ID, err)
		}
		if len(results) == 0 {
			continue
		}

		a, ok := byModel[model]
		if !ok {
			a = &acc{entry: Entry{Model: model}}
			byModel[model] = a
		}
		a.entry.Runs++
		if run.CompletedAt.After(a.entry.LastRunAt) {
			a.entry.LastRunAt = run.CompletedAt
		}
		for _, res := range results {
			a.entry.Cases++
			if res.Status == store.ResultStatusFailed {
				a.entry.FailedCases++
			}
			a.sumBLEU += res.BLEUScore
			a.sumCos += res.CosineSimScore
			a.sumLLM += res.LLMScore
			a.sumTotal += scoring.Weighted(scoring.Scores{
				BLEU:     res.BLEUScore,
				Cosine:   res.CosineSimScore,
				LLMScore: res.LLMScore,
			})
		}
	}

	entries := make([]Entry, 0, len(byModel))
	for _, a := range byModel {
		n := float64(a.entry.Cases)
		a.entry.AvgBLEU = a.sumBLEU / n
		a.entry.AvgCosine = a.sumCos / n
		a.entry.AvgLLM = a.sumLLM / n
		a.entry.AvgWeighted = a.sumTotal / n
		entries = append(entries, a.entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].AvgWeighted != entries[j].AvgWeighted {
			return entries[i].AvgWeighted > entries[j].AvgWeighted
		}
		return entries[i].Model < entries[j].Model
	})
	return entries, nil
}
