package evo

import (
	"gonum.org/v1/gonum/floats"

	"genenet/internal/model"
	"genenet/internal/nn"
)

// Summarize reports the fitness spread of an evaluated generation.
func Summarize(generation int, members []*nn.Network) model.GenerationDiagnostics {
	diagnostics := model.GenerationDiagnostics{Generation: generation, Size: len(members)}
	if len(members) == 0 {
		return diagnostics
	}
	scores := make([]float64, len(members))
	for i, member := range members {
		scores[i] = member.Fitness()
	}
	diagnostics.BestFitness = floats.Max(scores)
	diagnostics.MinFitness = floats.Min(scores)
	diagnostics.MeanFitness = floats.Sum(scores) / float64(len(scores))
	return diagnostics
}
