package scoring

import (
	"math"
	"strings"
)

const (
	defaultMaxN = 4

	// Empirically chosen for LLM answer score distributions; not derived from
	// a formal calibration.
	sigmoidMidpoint  = 0.2
	sigmoidSteepness = 10.0
)

// BLEU computes sentence-level BLEU with n-gram orders 1..4.
func BLEU(candidate, reference string) float64 {
	return BLEUWithMaxN(candidate, reference, defaultMaxN)
}

// BLEUWithMaxN computes clipped n-gram precision for n=1..maxN, smooths zero
// precisions with 1/2^n, takes the geometric mean, and applies a brevity
// penalty for candidates shorter than the reference. Result is in [0,1].
func BLEUWithMaxN(candidate, reference string, maxN int) float64 {
	if maxN <= 0 {
		maxN = defaultMaxN
	}

	cand := Tokenize(candidate)
	ref := Tokenize(reference)
	if len(cand) == 0 || len(ref) == 0 {
		return 0
	}

	var logSum float64
	counted := 0
	for n := 1; n <= maxN; n++ {
		candGrams := ngrams(cand, n)
		if len(candGrams) == 0 {
			// No n-grams of this order exist; skip rather than force 0.
			continue
		}

		p := clippedPrecision(candGrams, ngrams(ref, n))
		if p == 0 {
			p = 1 / math.Pow(2, float64(n))
		}
		logSum += math.Log(p)
		counted++
	}
	if counted == 0 {
		return 0
	}
	geoMean := math.Exp(logSum / float64(counted))

	brevity := 1.0
	if len(cand) < len(ref) {
		brevity = math.Exp(1 - float64(len(ref))/float64(len(cand)))
	}

	return clamp01(brevity * geoMean)
}

// NormalizeBLEU redistributes raw BLEU across [0,1] with a sigmoid anchored so
// f(0)=0 and f(1)=1 exactly. Raw BLEU for LLM prose compresses into roughly
// [0.1, 0.3] and underrates correct paraphrases; this is a reporting
// transform, not a correctness metric.
func NormalizeBLEU(raw float64) float64 {
	return normalizeSigmoid(raw, sigmoidMidpoint, sigmoidSteepness)
}

func normalizeSigmoid(raw, midpoint, steepness float64) float64 {
	if raw <= 0 {
		return 0
	}
	if raw >= 1 {
		return 1
	}
	sig := func(x float64) float64 {
		return 1 / (1 + math.Exp(-steepness*(x-midpoint)))
	}
	lo := sig(0)
	hi := sig(1)
	return (sig(raw) - lo) / (hi - lo)
}

func ngrams(tokens []string, n int) []string {
	if n <= 0 || len(tokens) < n {
		return nil
	}
	out := make([]string, 0, len(tokens)-n+1)
	for i := 0; i+n <= len(tokens); i++ {
		out = append(out, strings.Join(tokens[i:i+n], " "))
	}
	return out
}

// clippedPrecision caps each candidate n-gram count at the reference count of
// that n-gram, so repeating a matching n-gram cannot inflate the score.
func clippedPrecision(candGrams, refGrams []string) float64 {
	refCounts := make(map[string]int, len(refGrams))
	for _, g := range refGrams {
		refCounts[g]++
	}
	candCounts := make(map[string]int, len(candGrams))
	for _, g := range candGrams {
		candCounts[g]++
	}

	clipped := 0
	for g, c := range candCounts {
		if r := refCounts[g]; r < c {
			clipped += r
		} else {
			clipped += c
		}
	}
	return float64(clipped) / float64(len(candGrams))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
