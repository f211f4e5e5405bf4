package scape

import (
	"fmt"

	"genenet/internal/nn"
	"genenet/internal/random"
)

// RegressionMimicScape fits the identity y=x on [0, 1].
type RegressionMimicScape struct{}

var regressionInputs = []float64{0.0, 0.25, 0.5, 0.75, 1.0}

func (RegressionMimicScape) Name() string {
	return "regression-mimic"
}

func (RegressionMimicScape) Topology() []int {
	return []int{1, 4, 1}
}

func (RegressionMimicScape) Round(_ *random.Source) (Round, error) {
	inputs := make([][]float64, len(regressionInputs))
	for i, x := range regressionInputs {
		inputs[i] = []float64{x}
	}
	return Round{Inputs: inputs, Fitness: regressionFitness}, nil
}

// regressionFitness is one minus the mean squared error.
func regressionFitness(_ *nn.Network, outputs [][]float64) (float64, error) {
	if len(outputs) != len(regressionInputs) {
		return 0, fmt.Errorf("regression-mimic requires %d output vectors, got %d", len(regressionInputs), len(outputs))
	}
	var squaredErr float64
	for i, out := range outputs {
		if len(out) != 1 {
			return 0, fmt.Errorf("regression-mimic requires one output, got %d", len(out))
		}
		delta := out[0] - regressionInputs[i]
		squaredErr += delta * delta
	}
	return 1.0 - squaredErr/float64(len(regressionInputs)), nil
}
