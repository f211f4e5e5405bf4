package nn

import (
	"gonum.org/v1/gonum/floats"

	"genenet/internal/random"
)

// Neuron is one computational unit: a weight per previous-layer neuron and a bias.
// Input-layer neurons carry no weights.
type Neuron struct {
	weights []float64
	bias    float64
}

func newNeuron(inputs int) *Neuron {
	return &Neuron{weights: make([]float64, inputs)}
}

func (n *Neuron) Weights() []float64 {
	return append([]float64(nil), n.weights...)
}

func (n *Neuron) Bias() float64 {
	return n.bias
}

// GenomeLength is the number of genome coordinates the neuron owns.
func (n *Neuron) GenomeLength() int {
	return len(n.weights) + 1
}

// RandomizeWeights redraws every weight and the bias from [-InitRange, InitRange).
func (n *Neuron) RandomizeWeights(rng *random.Source) {
	for i := range n.weights {
		n.weights[i] = rng.Range(-InitRange, InitRange)
	}
	n.bias = rng.Range(-InitRange, InitRange)
}

// Calculate returns Transfer(weights·previous + bias).
func (n *Neuron) Calculate(previous []float64) float64 {
	return Transfer(floats.Dot(n.weights, previous) + n.bias)
}

// appendGenes appends the neuron's weights followed by its bias.
func (n *Neuron) appendGenes(dst []float64) []float64 {
	dst = append(dst, n.weights...)
	return append(dst, n.bias)
}

// loadGenes overwrites weights and bias from src and returns the unread tail.
func (n *Neuron) loadGenes(src []float64) []float64 {
	copy(n.weights, src[:len(n.weights)])
	n.bias = src[len(n.weights)]
	return src[len(n.weights)+1:]
}
