package nn

import (
	"runtime"
	"sync"
)

// parallelWidth is the layer width from which neuron evaluation fans out
// across goroutines. Narrower layers are cheaper to evaluate inline.
const parallelWidth = 64

// Layer is an ordered sequence of neurons sharing one previous-layer width.
type Layer struct {
	neurons []*Neuron
	inputs  int
}

func newLayer(width, inputs int) *Layer {
	l := &Layer{inputs: inputs}
	l.resize(width)
	return l
}

// resize grows the layer with freshly sized neurons or shrinks it from the end.
// Only used while a topology is being built.
func (l *Layer) resize(width int) {
	if width < len(l.neurons) {
		for i := width; i < len(l.neurons); i++ {
			l.neurons[i] = nil
		}
		l.neurons = l.neurons[:width]
		return
	}
	for len(l.neurons) < width {
		l.neurons = append(l.neurons, newNeuron(l.inputs))
	}
}

func (l *Layer) Width() int {
	return len(l.neurons)
}

func (l *Layer) Neuron(i int) *Neuron {
	return l.neurons[i]
}

// GenomeLength is width·(inputs+1) for weighted layers.
func (l *Layer) GenomeLength() int {
	return len(l.neurons) * (l.inputs + 1)
}

// calculate writes every neuron's output for the given previous-layer outputs into out.
// Neurons only read previous and write their own slot, so wide layers are split
// into contiguous chunks evaluated concurrently.
func (l *Layer) calculate(previous, out []float64) {
	width := len(l.neurons)
	workers := runtime.GOMAXPROCS(0)
	if width < parallelWidth || workers < 2 {
		for i, n := range l.neurons {
			out[i] = n.Calculate(previous)
		}
		return
	}

	chunk := (width + workers - 1) / workers
	var wg sync.WaitGroup
	for start := 0; start < width; start += chunk {
		end := min(start+chunk, width)
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				out[i] = l.neurons[i].Calculate(previous)
			}
		}(start, end)
	}
	wg.Wait()
}
