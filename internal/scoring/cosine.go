package scoring

import (
	"fmt"
	"math"
)

// CosineSimilarity computes dot(a,b) / (||a||*||b||). Mismatched vector
// dimensions are a hard error: they indicate an embedding provider/model
// mismatch, not a scoring condition. A zero-norm vector yields 0.
func CosineSimilarity(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("scoring: embedding dimensions differ: %d vs %d", len(a), len(b))
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}

// TermFrequencyCosine is the fallback similarity used when embeddings are
// unavailable. It builds a shared vocabulary from both texts and compares raw
// term-frequency vectors (frequency divided by that text's token count).
// There is no IDF weighting: two documents are not a corpus.
func TermFrequencyCosine(text1, text2 string) float64 {
	t1 := Tokenize(text1)
	t2 := Tokenize(text2)
	if len(t1) == 0 || len(t2) == 0 {
		return 0
	}

	vocab := make(map[string]int)
	for _, tok := range t1 {
		if _, ok := vocab[tok]; !ok {
			vocab[tok] = len(vocab)
		}
	}
	for _, tok := range t2 {
		if _, ok := vocab[tok]; !ok {
			vocab[tok] = len(vocab)
		}
	}

	v1 := termFrequencyVector(t1, vocab)
	v2 := termFrequencyVector(t2, vocab)

	// Vectors share the vocabulary, so dimensions always match.
	score, _ := CosineSimilarity(v1, v2)
	return clamp01(score)
}

func termFrequencyVector(tokens []string, vocab map[string]int) []float64 {
	out := make([]float64, len(vocab))
	for _, tok := range tokens {
		out[vocab[tok]]++
	}
	total := float64(len(tokens))
	for i := range out {
		out[i] /= total
	}
	return out
}

// Jaccard computes set overlap over token sets. Both sets empty counts as a
// perfect match. Cheap alternative metric; not part of the default aggregate.
func Jaccard(text1, text2 string) float64 {
	s1 := tokenSet(text1)
	s2 := tokenSet(text2)
	if len(s1) == 0 && len(s2) == 0 {
		return 1
	}

	intersection := 0
	for tok := range s1 {
		if _, ok := s2[tok]; ok {
			intersection++
		}
	}
	union := len(s1) + len(s2) - intersection
	if union == 0 {
		return 1
	}
	return float64(intersection) / float64(union)
}

func tokenSet(s string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, tok := range Tokenize(s) {
		out[tok] = struct{}{}
	}
	return out
}
