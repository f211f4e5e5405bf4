package evo

import (
	"fmt"
	"math"

	"genenet/internal/model"
	"genenet/internal/nn"
)

// Rates are the fractions that drive one offspring step.
type Rates struct {
	Selection    float64
	Elitism      float64
	Reproduction float64
	Mutation     float64
}

func DefaultRates() Rates {
	return Rates{
		Selection:    0.5,
		Elitism:      0.1,
		Reproduction: 0.2,
		Mutation:     0.01,
	}
}

func (r Rates) Validate() error {
	for _, item := range []struct {
		name  string
		value float64
	}{
		{"selection", r.Selection},
		{"elitism", r.Elitism},
		{"reproduction", r.Reproduction},
		{"mutation", r.Mutation},
	} {
		if math.IsNaN(item.value) || item.value < 0 || item.value > 1 {
			return fmt.Errorf("%w: %s rate must be in [0, 1], got %v", nn.ErrConfiguration, item.name, item.value)
		}
	}
	return nil
}

func (r Rates) Record() model.Rates {
	return model.Rates{
		Selection:    r.Selection,
		Elitism:      r.Elitism,
		Reproduction: r.Reproduction,
		Mutation:     r.Mutation,
	}
}

func RatesFromRecord(rec model.Rates) Rates {
	return Rates{
		Selection:    rec.Selection,
		Elitism:      rec.Elitism,
		Reproduction: rec.Reproduction,
		Mutation:     rec.Mutation,
	}
}

// plan holds the cohort sizes one offspring step produces for a population size.
type plan struct {
	selected     int
	elites       int
	others       int
	eliteMutants int
	eliteParents int
	otherMutants int
	otherParents int
	beforeTopUp  int
}

func (r Rates) plan(size int) plan {
	p := plan{selected: fraction(size, r.Selection)}
	p.elites = fraction(p.selected, r.Elitism)
	p.others = p.selected - p.elites
	p.eliteMutants = fraction(p.elites, r.Mutation)
	p.eliteParents = pairedFraction(p.elites, r.Reproduction)
	p.otherMutants = fraction(p.others, r.Mutation)
	p.otherParents = pairedFraction(p.others, r.Reproduction)
	// Others are carried with mutants substituted in place; elites keep their
	// unchanged copy so their mutants take extra slots.
	p.beforeTopUp = p.selected + p.eliteMutants + p.eliteParents + p.otherParents
	return p
}

// validatePlan rejects sizes and rates whose offspring step could not produce
// exactly size members.
func validatePlan(size int, rates Rates) error {
	if size < 1 {
		return fmt.Errorf("%w: population size must be > 0, got %d", nn.ErrConfiguration, size)
	}
	if err := rates.Validate(); err != nil {
		return err
	}
	p := rates.plan(size)
	if p.selected < 1 {
		return fmt.Errorf("%w: selection rate %v keeps no member of a population of %d", nn.ErrConfiguration, rates.Selection, size)
	}
	if p.beforeTopUp > size {
		return fmt.Errorf("%w: rates produce %d members before top-up, more than population size %d", nn.ErrConfiguration, p.beforeTopUp, size)
	}
	return nil
}

func fraction(n int, rate float64) int {
	return int(float64(n) * rate)
}

func pairedFraction(n int, rate float64) int {
	return 2 * int(float64(n)*rate/2)
}
