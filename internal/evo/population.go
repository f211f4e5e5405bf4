package evo

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/google/uuid"

	"genenet/internal/model"
	"genenet/internal/nn"
	"genenet/internal/random"
)

// Config describes a population to create. Source wins over Seed when both are set.
type Config struct {
	ID       string
	Size     int
	Topology []int
	Rates    Rates
	Workers  int
	Seed     int64
	Source   *random.Source
}

// Population is a set of networks sharing one topology, evolved one generation at a time.
type Population struct {
	id       string
	topology []int
	size     int
	rates    Rates
	workers  int
	rng      *random.Source

	mu         sync.RWMutex
	generation int
	members    []*nn.Network
}

// New creates a population of Size randomly initialized networks.
func New(cfg Config) (*Population, error) {
	p, err := newPopulation(cfg)
	if err != nil {
		return nil, err
	}
	p.members = make([]*nn.Network, 0, p.size)
	for i := 0; i < p.size; i++ {
		member, err := nn.NewRandom(p.topology, p.rng)
		if err != nil {
			return nil, err
		}
		p.members = append(p.members, member)
	}
	return p, nil
}

// FromGenomes creates a population whose members carry the given genomes.
// A zero Size takes the number of genomes.
func FromGenomes(cfg Config, genomes [][]float64) (*Population, error) {
	if cfg.Size == 0 {
		cfg.Size = len(genomes)
	}
	if len(genomes) != cfg.Size {
		return nil, fmt.Errorf("%w: got %d genomes for population size %d", nn.ErrConfiguration, len(genomes), cfg.Size)
	}
	p, err := newPopulation(cfg)
	if err != nil {
		return nil, err
	}
	p.members = make([]*nn.Network, 0, len(genomes))
	for i, dna := range genomes {
		member, err := nn.FromDNA(p.topology, dna, 0)
		if err != nil {
			return nil, fmt.Errorf("genome %d: %w", i, err)
		}
		p.members = append(p.members, member)
	}
	return p, nil
}

// Restore rebuilds a population from its persisted form. Fitness is not persisted
// and starts at zero for every member.
func Restore(doc model.Population, workers int, rng *random.Source) (*Population, error) {
	p, err := newPopulation(Config{
		ID:       doc.ID,
		Size:     doc.Size,
		Topology: doc.Topology,
		Rates:    RatesFromRecord(doc.Rates),
		Workers:  workers,
		Source:   rng,
	})
	if err != nil {
		return nil, err
	}
	if doc.Generation < 0 {
		return nil, fmt.Errorf("%w: negative generation %d", nn.ErrValidation, doc.Generation)
	}
	if len(doc.Networks) != p.size {
		return nil, fmt.Errorf("%w: document holds %d networks for population size %d", nn.ErrValidation, len(doc.Networks), p.size)
	}
	p.generation = doc.Generation
	p.members = make([]*nn.Network, 0, len(doc.Networks))
	for i, rec := range doc.Networks {
		member, err := nn.FromRecord(p.topology, rec)
		if err != nil {
			return nil, fmt.Errorf("network %d: %w", i, err)
		}
		p.members = append(p.members, member)
	}
	return p, nil
}

func newPopulation(cfg Config) (*Population, error) {
	if err := nn.ValidateTopology(cfg.Topology); err != nil {
		return nil, err
	}
	if err := validatePlan(cfg.Size, cfg.Rates); err != nil {
		return nil, err
	}
	id := cfg.ID
	if id == "" {
		id = uuid.NewString()
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	rng := cfg.Source
	if rng == nil {
		rng = random.New(cfg.Seed)
	}
	return &Population{
		id:       id,
		topology: append([]int(nil), cfg.Topology...),
		size:     cfg.Size,
		rates:    cfg.Rates,
		workers:  workers,
		rng:      rng,
	}, nil
}

func (p *Population) ID() string {
	return p.id
}

func (p *Population) Topology() []int {
	return append([]int(nil), p.topology...)
}

func (p *Population) Size() int {
	return p.size
}

func (p *Population) Rates() Rates {
	return p.rates
}

func (p *Population) Generation() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.generation
}

// Members returns a snapshot of the current member list.
func (p *Population) Members() []*nn.Network {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]*nn.Network(nil), p.members...)
}

// Snapshot converts the population into its persisted form.
func (p *Population) Snapshot() model.Population {
	p.mu.RLock()
	defer p.mu.RUnlock()

	networks := make([]model.Network, 0, len(p.members))
	for _, member := range p.members {
		networks = append(networks, member.Record())
	}
	return model.Population{
		ID:         p.id,
		Topology:   append([]int(nil), p.topology...),
		Size:       p.size,
		Generation: p.generation,
		Rates:      p.rates.Record(),
		Networks:   networks,
	}
}
