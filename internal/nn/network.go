package nn

import (
	"fmt"

	"genenet/internal/model"
	"genenet/internal/random"
)

// MinLayers is the shortest accepted topology: input, one hidden, output.
const MinLayers = 3

// FitnessFunc scores a network from its outputs, one vector per input set in call order.
type FitnessFunc func(network *Network, outputs [][]float64) (float64, error)

// Network is an ordered stack of layers. Its topology is fixed at construction.
type Network struct {
	layers     []*Layer
	generation int
	fitness    float64
}

// New builds a network with all weights and biases set to zero.
func New(topology []int) (*Network, error) {
	if err := ValidateTopology(topology); err != nil {
		return nil, err
	}
	n := &Network{layers: make([]*Layer, 0, len(topology))}
	inputs := 0
	for _, width := range topology {
		n.layers = append(n.layers, newLayer(width, inputs))
		inputs = width
	}
	return n, nil
}

// NewRandom builds a network whose weights and biases are drawn from [-InitRange, InitRange).
func NewRandom(topology []int, rng *random.Source) (*Network, error) {
	n, err := New(topology)
	if err != nil {
		return nil, err
	}
	n.RandomizeWeights(rng)
	return n, nil
}

func ValidateTopology(topology []int) error {
	if len(topology) < MinLayers {
		return fmt.Errorf("%w: topology needs at least %d layers (at least one hidden), got %d", ErrConfiguration, MinLayers, len(topology))
	}
	for i, width := range topology {
		if width < 1 {
			return fmt.Errorf("%w: layer %d width must be > 0, got %d", ErrConfiguration, i, width)
		}
	}
	return nil
}

func (n *Network) RandomizeWeights(rng *random.Source) {
	for _, layer := range n.layers[1:] {
		for _, neuron := range layer.neurons {
			neuron.RandomizeWeights(rng)
		}
	}
}

func (n *Network) Topology() []int {
	out := make([]int, len(n.layers))
	for i, layer := range n.layers {
		out[i] = layer.Width()
	}
	return out
}

func (n *Network) Layers() []*Layer {
	return append([]*Layer(nil), n.layers...)
}

func (n *Network) Generation() int {
	return n.generation
}

func (n *Network) Fitness() float64 {
	return n.fitness
}

// Run evaluates the network on one input vector and returns the output layer values.
// Every call evaluates from scratch against its own buffers, so repeated calls with
// the same weights and input return identical outputs.
func (n *Network) Run(inputs []float64) ([]float64, error) {
	if want := n.layers[0].Width(); len(inputs) != want {
		return nil, fmt.Errorf("%w: input length %d does not match input layer width %d", ErrValidation, len(inputs), want)
	}

	previous := append([]float64(nil), inputs...)
	for _, layer := range n.layers[1:] {
		out := make([]float64, layer.Width())
		layer.calculate(previous, out)
		previous = out
	}
	return previous, nil
}

// UpdateFitness runs the network once per input set and stores fn's score.
// Errors from fn are returned unchanged.
func (n *Network) UpdateFitness(inputSets [][]float64, fn FitnessFunc) error {
	outputs := make([][]float64, 0, len(inputSets))
	for i, inputs := range inputSets {
		out, err := n.Run(inputs)
		if err != nil {
			return fmt.Errorf("input set %d: %w", i, err)
		}
		outputs = append(outputs, out)
	}
	fitness, err := fn(n, outputs)
	if err != nil {
		return err
	}
	n.fitness = fitness
	return nil
}

// Clone returns a deep copy carrying the same generation and fitness.
func (n *Network) Clone() *Network {
	clone, _ := FromDNA(n.Topology(), n.DNA(), n.generation)
	clone.fitness = n.fitness
	return clone
}

// Record converts the network into its persisted form.
func (n *Network) Record() model.Network {
	rec := model.Network{
		Generation: n.generation,
		Layers:     make([]model.Layer, 0, len(n.layers)-1),
	}
	for _, layer := range n.layers[1:] {
		neurons := make([]model.Neuron, 0, layer.Width())
		for _, neuron := range layer.neurons {
			neurons = append(neurons, model.Neuron{Weights: neuron.Weights(), Bias: neuron.bias})
		}
		rec.Layers = append(rec.Layers, model.Layer{Neurons: neurons})
	}
	return rec
}

// FromRecord rebuilds a network of the given topology from its persisted form.
func FromRecord(topology []int, rec model.Network) (*Network, error) {
	n, err := New(topology)
	if err != nil {
		return nil, err
	}
	if len(rec.Layers) != len(topology)-1 {
		return nil, fmt.Errorf("%w: record has %d weighted layers, topology needs %d", ErrValidation, len(rec.Layers), len(topology)-1)
	}
	dna := make([]float64, 0, n.GenomeLength())
	for li, layer := range rec.Layers {
		target := n.layers[li+1]
		if len(layer.Neurons) != target.Width() {
			return nil, fmt.Errorf("%w: layer %d has %d neurons, topology needs %d", ErrValidation, li+1, len(layer.Neurons), target.Width())
		}
		for ni, neuron := range layer.Neurons {
			if len(neuron.Weights) != target.inputs {
				return nil, fmt.Errorf("%w: layer %d neuron %d has %d weights, want %d", ErrValidation, li+1, ni, len(neuron.Weights), target.inputs)
			}
			dna = append(dna, neuron.Weights...)
			dna = append(dna, neuron.Bias)
		}
	}
	if err := n.SetDNA(dna); err != nil {
		return nil, err
	}
	n.generation = rec.Generation
	return n, nil
}
