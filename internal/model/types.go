package model

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// Population is the persisted state of one evolving population.
type Population struct {
	VersionedRecord
	ID         string    `json:"id"`
	Topology   []int     `json:"topology"`
	Size       int       `json:"size"`
	Generation int       `json:"generation"`
	Rates      Rates     `json:"rates"`
	Networks   []Network `json:"networks"`
	// Scape names the fitness task the population trains against.
	Scape string `json:"scape,omitempty"`
	// Champion is the best network of the most recent training run.
	Champion *Network `json:"champion,omitempty"`
}

type Rates struct {
	Selection    float64 `json:"selection"`
	Elitism      float64 `json:"elitism"`
	Reproduction float64 `json:"reproduction"`
	Mutation     float64 `json:"mutation"`
}

// Network holds the weighted layers of one member; the input layer owns no
// genome coordinates and is described by the population topology alone.
type Network struct {
	Generation int     `json:"generation"`
	Layers     []Layer `json:"layers"`
}

type Layer struct {
	Neurons []Neuron `json:"neurons"`
}

type Neuron struct {
	Weights []float64 `json:"weights"`
	Bias    float64   `json:"bias"`
}

type GenerationDiagnostics struct {
	Generation  int     `json:"generation"`
	Size        int     `json:"size"`
	BestFitness float64 `json:"best_fitness"`
	MeanFitness float64 `json:"mean_fitness"`
	MinFitness  float64 `json:"min_fitness"`
}
