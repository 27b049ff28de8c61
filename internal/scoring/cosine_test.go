package scoring

import (
	"math"
	"strings"
	"testing"
)

func TestCosineSimilarity(t *testing.T) {
	got, err := CosineSimilarity([]float64{1, 0}, []float64{1, 0})
	if err != nil {
		t.Fatalf("CosineSimilarity: %v", err)
	}
	if math.Abs(got-1) > 1e-9 {
		t.Fatalf("identical vectors: got %v want 1", got)
	}

	got, err = CosineSimilarity([]float64{1, 0}, []float64{0, 1})
	if err != nil {
		t.Fatalf("CosineSimilarity: %v", err)
	}
	if got != 0 {
		t.Fatalf("orthogonal vectors: got %v want 0", got)
	}

	got, err = CosineSimilarity([]float64{0, 0}, []float64{1, 1})
	if err != nil {
		t.Fatalf("CosineSimilarity: %v", err)
	}
	if got != 0 {
		t.Fatalf("zero norm: got %v want 0", got)
	}
}

func TestCosineSimilarity_DimensionMismatch(t *testing.T) {
	_, err := CosineSimilarity([]float64{1, 0}, []float64{1, 0, 0})
	if err == nil {
		t.Fatalf("dimension mismatch: expected error")
	}
	if !strings.Contains(err.Error(), "dimensions differ") {
		t.Fatalf("error: got %q", err)
	}
}

func TestTermFrequencyCosine_SelfMatch(t *testing.T) {
	text := "the capital of france is paris"
	got := TermFrequencyCosine(text, text)
	if math.Abs(got-1) > 1e-9 {
		t.Fatalf("self-match: got %v want ~1", got)
	}
}

func TestTermFrequencyCosine_Empty(t *testing.T) {
	if got := TermFrequencyCosine("", "anything"); got != 0 {
		t.Fatalf("empty first: got %v want 0", got)
	}
	if got := TermFrequencyCosine("anything", ""); got != 0 {
		t.Fatalf("empty second: got %v want 0", got)
	}
	if got := TermFrequencyCosine("?!", "anything"); got != 0 {
		t.Fatalf("punctuation-only first: got %v want 0", got)
	}
}

func TestTermFrequencyCosine_Symmetric(t *testing.T) {
	a := "paris is the capital of france"
	b := "france has paris as its capital city"
	if got, want := TermFrequencyCosine(a, b), TermFrequencyCosine(b, a); math.Abs(got-want) > 1e-12 {
		t.Fatalf("symmetry: got %v vs %v", got, want)
	}
}

func TestTermFrequencyCosine_Disjoint(t *testing.T) {
	if got := TermFrequencyCosine("alpha beta", "gamma delta"); got != 0 {
		t.Fatalf("disjoint texts: got %v want 0", got)
	}
}

func TestJaccard(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{name: "identical", a: "the cat", b: "the cat", want: 1},
		{name: "both empty", a: "", b: "", want: 1},
		{name: "disjoint", a: "alpha", b: "beta", want: 0},
		{name: "half overlap", a: "a b", b: "b c", want: 1.0 / 3.0},
		{name: "one empty", a: "", b: "word", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Jaccard(tt.a, tt.b); math.Abs(got-tt.want) > 1e-12 {
				t.Fatalf("Jaccard(%q, %q): got %v want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}
