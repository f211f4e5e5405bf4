package scape

import (
	"fmt"

	"genenet/internal/nn"
	"genenet/internal/random"
)

type XORScape struct{}

var xorCases = []struct {
	in   []float64
	want float64
}{
	{in: []float64{0, 0}, want: 0},
	{in: []float64{0, 1}, want: 1},
	{in: []float64{1, 0}, want: 1},
	{in: []float64{1, 1}, want: 0},
}

func (XORScape) Name() string {
	return "xor"
}

func (XORScape) Topology() []int {
	return []int{2, 3, 1}
}

func (XORScape) Round(_ *random.Source) (Round, error) {
	inputs := make([][]float64, len(xorCases))
	for i, c := range xorCases {
		inputs[i] = append([]float64(nil), c.in...)
	}
	return Round{Inputs: inputs, Fitness: xorFitness}, nil
}

// xorFitness is the reciprocal of the summed squared error.
func xorFitness(_ *nn.Network, outputs [][]float64) (float64, error) {
	if len(outputs) != len(xorCases) {
		return 0, fmt.Errorf("xor requires %d output vectors, got %d", len(xorCases), len(outputs))
	}
	var sse float64
	for i, out := range outputs {
		if len(out) != 1 {
			return 0, fmt.Errorf("xor requires one output, got %d", len(out))
		}
		delta := out[0] - xorCases[i].want
		sse += delta * delta
	}
	return 1.0 / (sse + 0.000001), nil
}
