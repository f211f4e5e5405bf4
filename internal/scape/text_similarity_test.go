package scape

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"genenet/internal/random"
)

func TestTextSimilarityRoundShape(t *testing.T) {
	s := NewTextSimilarity([]string{"kedi", "köpek", "deniz"})
	round, err := s.Round(random.New(4))
	if err != nil {
		t.Fatalf("round: %v", err)
	}
	if len(round.Inputs) != textPairs {
		t.Fatalf("expected %d pairs, got %d", textPairs, len(round.Inputs))
	}
	for i, in := range round.Inputs {
		if len(in) != s.Topology()[0] {
			t.Fatalf("pair %d has %d inputs", i, len(in))
		}
		same := reflect.DeepEqual(in[:textLength], in[textLength:])
		if want := i%2 == 0; same != want {
			t.Fatalf("pair %d: identical=%t want %t", i, same, want)
		}
	}
}

func TestTextSimilarityFitnessRewardsMatchingSign(t *testing.T) {
	fitness := similarityFitness([]float64{1, -1})
	good, err := fitness(nil, [][]float64{{0.8}, {-0.6}})
	if err != nil {
		t.Fatalf("fitness: %v", err)
	}
	bad, err := fitness(nil, [][]float64{{-0.8}, {0.6}})
	if err != nil {
		t.Fatalf("fitness: %v", err)
	}
	if good <= 0 || bad >= 0 {
		t.Fatalf("expected positive fitness for matching signs, got good=%f bad=%f", good, bad)
	}
	if diff := good - 0.7; diff < -1e-12 || diff > 1e-12 {
		t.Fatalf("unexpected mean score: %f", good)
	}
}

func TestSingleWordListOnlyProducesIdenticalPairs(t *testing.T) {
	round, err := NewTextSimilarity([]string{"tek"}).Round(random.New(1))
	if err != nil {
		t.Fatalf("round: %v", err)
	}
	for i, in := range round.Inputs {
		if !reflect.DeepEqual(in[:textLength], in[textLength:]) {
			t.Fatalf("pair %d is not identical", i)
		}
	}
}

func TestLoadWords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "words.txt")
	if err := os.WriteFile(path, []byte("alpha\n\n  beta \ngamma\n"), 0o644); err != nil {
		t.Fatalf("write words: %v", err)
	}
	words, err := LoadWords(path)
	if err != nil {
		t.Fatalf("load words: %v", err)
	}
	if !reflect.DeepEqual(words, []string{"alpha", "beta", "gamma"}) {
		t.Fatalf("unexpected words: %v", words)
	}

	empty := filepath.Join(t.TempDir(), "empty.txt")
	if err := os.WriteFile(empty, nil, 0o644); err != nil {
		t.Fatalf("write empty: %v", err)
	}
	if _, err := LoadWords(empty); err == nil {
		t.Fatal("expected empty word list error")
	}
}
