package scape

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"genenet/internal/nn"
	"genenet/internal/random"
	"genenet/internal/textenc"
)

const (
	textLength = 10
	textPairs  = 8
)

var defaultWords = []string{
	"kedi", "köpek", "çiçek", "ağaç", "güneş", "deniz", "kitap", "kalem",
	"house", "river", "stone", "cloud", "garden", "window", "bridge", "forest",
}

// TextSimilarity trains a network to tell identical word pairs from different ones.
// Both words are encoded to textLength values and concatenated.
type TextSimilarity struct {
	words []string
}

// NewTextSimilarity uses the built-in word list when words is empty.
func NewTextSimilarity(words []string) *TextSimilarity {
	if len(words) == 0 {
		words = defaultWords
	}
	return &TextSimilarity{words: append([]string(nil), words...)}
}

// LoadWords reads one word or phrase per line, skipping blank lines.
func LoadWords(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var words []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			words = append(words, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(words) == 0 {
		return nil, fmt.Errorf("word list %s is empty", path)
	}
	return words, nil
}

func (*TextSimilarity) Name() string {
	return "text-similarity"
}

func (*TextSimilarity) Topology() []int {
	return []int{2 * textLength, 50, 10, 1}
}

// Round alternates identical and different pairs. A pair of different words is
// only possible with at least two words in the list.
func (s *TextSimilarity) Round(rng *random.Source) (Round, error) {
	if rng == nil {
		return Round{}, errors.New("text-similarity requires a random source")
	}
	inputs := make([][]float64, 0, textPairs)
	labels := make([]float64, 0, textPairs)
	for i := 0; i < textPairs; i++ {
		li := rng.Intn(len(s.words))
		ri, label := li, 1.0
		if i%2 == 1 && len(s.words) > 1 {
			// skip over li so the two indices always differ
			if ri = rng.Intn(len(s.words) - 1); ri >= li {
				ri++
			}
			label = -1
		}
		inputs = append(inputs, PairInput(s.words[li], s.words[ri]))
		labels = append(labels, label)
	}
	return Round{Inputs: inputs, Fitness: similarityFitness(labels)}, nil
}

// PairInput encodes a word pair the way the text-similarity scape feeds it to a network.
func PairInput(left, right string) []float64 {
	in := textenc.Encode(left, textLength, textLength)
	return append(in, textenc.Encode(right, textLength, textLength)...)
}

// similarityFitness rewards outputs whose sign matches the pair label.
func similarityFitness(labels []float64) nn.FitnessFunc {
	return func(_ *nn.Network, outputs [][]float64) (float64, error) {
		if len(outputs) != len(labels) {
			return 0, fmt.Errorf("text-similarity requires %d output vectors, got %d", len(labels), len(outputs))
		}
		var total float64
		for i, out := range outputs {
			if len(out) != 1 {
				return 0, fmt.Errorf("text-similarity requires one output, got %d", len(out))
			}
			total += labels[i] * out[0]
		}
		return total / float64(len(labels)), nil
	}
}
