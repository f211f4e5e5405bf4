package scape

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"genenet/internal/nn"
	"genenet/internal/random"
)

var (
	ErrScapeExists   = errors.New("scape already registered")
	ErrScapeNotFound = errors.New("scape not found")
)

// Round is one generation's inputs together with the fitness function that scores them.
// Fitness may assume the outputs arrive in the order of Inputs.
type Round struct {
	Inputs  [][]float64
	Fitness nn.FitnessFunc
}

// Scape is a fitness task networks are trained against.
type Scape interface {
	Name() string
	// Topology is the suggested layer widths; its first and last entries are binding.
	Topology() []int
	Round(rng *random.Source) (Round, error)
}

var registry = struct {
	mu sync.RWMutex
	m  map[string]Scape
}{
	m: map[string]Scape{
		"xor":              XORScape{},
		"regression-mimic": RegressionMimicScape{},
		"text-similarity":  NewTextSimilarity(nil),
	},
}

func Register(s Scape) error {
	if s == nil || s.Name() == "" {
		return errors.New("scape name is required")
	}

	registry.mu.Lock()
	defer registry.mu.Unlock()

	if _, exists := registry.m[s.Name()]; exists {
		return fmt.Errorf("%w: %s", ErrScapeExists, s.Name())
	}
	registry.m[s.Name()] = s
	return nil
}

func Resolve(name string) (Scape, error) {
	registry.mu.RLock()
	defer registry.mu.RUnlock()

	s, ok := registry.m[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrScapeNotFound, name)
	}
	return s, nil
}

func List() []string {
	registry.mu.RLock()
	defer registry.mu.RUnlock()

	names := make([]string, 0, len(registry.m))
	for name := range registry.m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CheckTopology reports whether topology fits the input and output widths of s.
func CheckTopology(s Scape, topology []int) error {
	want := s.Topology()
	if len(topology) == 0 {
		return fmt.Errorf("%w: empty topology", nn.ErrConfiguration)
	}
	if topology[0] != want[0] || topology[len(topology)-1] != want[len(want)-1] {
		return fmt.Errorf("%w: scape %s needs %d inputs and %d outputs, topology is %v",
			nn.ErrConfiguration, s.Name(), want[0], want[len(want)-1], topology)
	}
	return nil
}
