package nn

import (
	"fmt"

	"genenet/internal/random"
)

// Crossover and mutation indices are drawn from the middle of the genome.
const (
	geneWindowLow  = 0.15
	geneWindowHigh = 0.85
)

// GenomeLength returns Σ width·(previousWidth+1) over the non-input layers.
func GenomeLength(topology []int) int {
	total := 0
	for i := 1; i < len(topology); i++ {
		total += topology[i] * (topology[i-1] + 1)
	}
	return total
}

func (n *Network) GenomeLength() int {
	total := 0
	for _, layer := range n.layers[1:] {
		total += layer.GenomeLength()
	}
	return total
}

// DNA flattens weights then bias per neuron, in neuron and layer order.
func (n *Network) DNA() []float64 {
	dna := make([]float64, 0, n.GenomeLength())
	for _, layer := range n.layers[1:] {
		for _, neuron := range layer.neurons {
			dna = neuron.appendGenes(dna)
		}
	}
	return dna
}

// SetDNA is the exact inverse of DNA. A length mismatch leaves the network unchanged.
func (n *Network) SetDNA(dna []float64) error {
	if want := n.GenomeLength(); len(dna) != want {
		return fmt.Errorf("%w: genome length %d does not match topology genome length %d", ErrValidation, len(dna), want)
	}
	rest := dna
	for _, layer := range n.layers[1:] {
		for _, neuron := range layer.neurons {
			rest = neuron.loadGenes(rest)
		}
	}
	return nil
}

// FromDNA builds a network of the given topology carrying dna, tagged with generation.
func FromDNA(topology []int, dna []float64, generation int) (*Network, error) {
	n, err := New(topology)
	if err != nil {
		return nil, err
	}
	if err := n.SetDNA(dna); err != nil {
		return nil, err
	}
	n.generation = generation
	return n, nil
}

// CrossOver splices both genomes at one cut point and returns the two complementary children.
func (n *Network) CrossOver(partner *Network, generation int, rng *random.Source) (*Network, *Network, error) {
	if n.GenomeLength() != partner.GenomeLength() {
		return nil, nil, fmt.Errorf("%w: genome lengths %d and %d differ", ErrIncompatibleGenome, n.GenomeLength(), partner.GenomeLength())
	}

	mother := n.DNA()
	father := partner.DNA()
	cut := geneIndex(rng, len(mother))

	first := make([]float64, 0, len(mother))
	first = append(first, mother[:cut]...)
	first = append(first, father[cut:]...)

	second := make([]float64, 0, len(mother))
	second = append(second, father[:cut]...)
	second = append(second, mother[cut:]...)

	topology := n.Topology()
	a, err := FromDNA(topology, first, generation)
	if err != nil {
		return nil, nil, err
	}
	b, err := FromDNA(topology, second, generation)
	if err != nil {
		return nil, nil, err
	}
	return a, b, nil
}

// Mutate returns a copy with one genome coordinate redrawn from [-InitRange, InitRange).
func (n *Network) Mutate(generation int, rng *random.Source) *Network {
	dna := n.DNA()
	dna[geneIndex(rng, len(dna))] = rng.Range(-InitRange, InitRange)
	child, _ := FromDNA(n.Topology(), dna, generation)
	return child
}

// geneIndex draws uniformly from [⌊0.15·length⌋, ⌊0.85·length⌋), widened to one
// candidate for genomes too short to have a middle window.
func geneIndex(rng *random.Source, length int) int {
	low := int(float64(length) * geneWindowLow)
	high := int(float64(length) * geneWindowHigh)
	if high <= low {
		high = min(low+1, length)
	}
	return low + rng.Intn(high-low)
}
