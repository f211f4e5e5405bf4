package evo

import (
	"math"
	"sort"

	"genenet/internal/nn"
	"genenet/internal/random"
)

// RandomSelect returns a uniformly random permutation of {0, ..., n-1}.
// Every index appears exactly once; n <= 0 yields an empty slice.
func RandomSelect(rng *random.Source, n int) []int {
	return rng.Perm(n)
}

// Offspring replaces the member list with the next generation.
func (p *Population) Offspring() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.offspring()
}

// offspring keeps every elite unchanged and adds elite mutants in extra slots,
// while non-elite mutants replace their parent in place.
func (p *Population) offspring() error {
	generation := p.generation + 1
	ranked := rank(p.members)
	plan := p.rates.plan(len(ranked))

	selected := ranked[:plan.selected]
	elites := selected[:plan.elites]
	others := selected[plan.elites:]

	next := make([]*nn.Network, 0, max(p.size, plan.beforeTopUp))
	for _, elite := range elites {
		next = append(next, elite.Clone())
	}
	for _, idx := range RandomSelect(p.rng, len(elites))[:plan.eliteMutants] {
		next = append(next, elites[idx].Mutate(generation, p.rng))
	}
	children, err := p.crossCohort(elites, plan.eliteParents, generation)
	if err != nil {
		return err
	}
	next = append(next, children...)

	carried := make([]*nn.Network, len(others))
	for i, other := range others {
		carried[i] = other.Clone()
	}
	for _, idx := range RandomSelect(p.rng, len(others))[:plan.otherMutants] {
		carried[idx] = others[idx].Mutate(generation, p.rng)
	}
	next = append(next, carried...)
	children, err = p.crossCohort(others, plan.otherParents, generation)
	if err != nil {
		return err
	}
	next = append(next, children...)

	next, err = p.topUp(next, elites, others, selected, generation)
	if err != nil {
		return err
	}

	p.generation = generation
	p.members = next
	return nil
}

// crossCohort draws parents distinct members, splits the draw into two halves
// and crosses aligned pairs, keeping both children.
func (p *Population) crossCohort(cohort []*nn.Network, parents, generation int) ([]*nn.Network, error) {
	if parents == 0 {
		return nil, nil
	}
	draw := RandomSelect(p.rng, len(cohort))[:parents]
	half := parents / 2
	children := make([]*nn.Network, 0, parents)
	for i := 0; i < half; i++ {
		a, b, err := cohort[draw[i]].CrossOver(cohort[draw[half+i]], generation, p.rng)
		if err != nil {
			return nil, err
		}
		children = append(children, a, b)
	}
	return children, nil
}

// topUp fills the generation with children of a random elite and a random other.
// When either side is empty the whole selected set stands in for it.
func (p *Population) topUp(next, elites, others, selected []*nn.Network, generation int) ([]*nn.Network, error) {
	mothers, fathers := elites, others
	if len(mothers) == 0 {
		mothers = selected
	}
	if len(fathers) == 0 {
		fathers = selected
	}
	for len(next) < p.size {
		mother := mothers[p.rng.Intn(len(mothers))]
		father := fathers[p.rng.Intn(len(fathers))]
		a, b, err := mother.CrossOver(father, generation, p.rng)
		if err != nil {
			return nil, err
		}
		next = append(next, a)
		if len(next) < p.size {
			next = append(next, b)
		}
	}
	return next, nil
}

// rank orders members by fitness, then generation, both descending.
func rank(members []*nn.Network) []*nn.Network {
	ranked := append([]*nn.Network(nil), members...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return better(ranked[i], ranked[j])
	})
	return ranked
}

// better breaks fitness ties in favor of the more recent generation.
// NaN ranks below every number.
func better(a, b *nn.Network) bool {
	af, bf := a.Fitness(), b.Fitness()
	aNaN, bNaN := math.IsNaN(af), math.IsNaN(bf)
	if aNaN != bNaN {
		return bNaN
	}
	if !aNaN && af != bf {
		return af > bf
	}
	return a.Generation() > b.Generation()
}

func best(members []*nn.Network) *nn.Network {
	var top *nn.Network
	for _, member := range members {
		if top == nil || better(member, top) {
			top = member
		}
	}
	return top
}
