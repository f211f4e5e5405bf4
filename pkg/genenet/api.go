package genenet

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"genenet/internal/evo"
	"genenet/internal/model"
	"genenet/internal/nn"
	"genenet/internal/random"
	"genenet/internal/scape"
	"genenet/internal/storage"
)

const defaultDBPath = "genenet.db"

var ErrPopulationNotFound = errors.New("population not found")

type Options struct {
	StoreKind string
	DBPath    string
}

type Client struct {
	store storage.Store
}

type Rates struct {
	Selection    float64
	Elitism      float64
	Reproduction float64
	Mutation     float64
}

func DefaultRates() Rates {
	r := evo.DefaultRates()
	return Rates{Selection: r.Selection, Elitism: r.Elitism, Reproduction: r.Reproduction, Mutation: r.Mutation}
}

type CreateRequest struct {
	ID    string
	Scape string
	Size  int
	// Topology defaults to the scape's suggested layer widths.
	Topology []int
	// Rates defaults to DefaultRates when nil.
	Rates *Rates
	Seed  int64
}

type TrainRequest struct {
	PopulationID string
	Generations  int
	Seed         int64
	Workers      int
	// FitnessGoal stops training early once the best fitness reaches it. Zero means no goal.
	FitnessGoal float64
	// Words replaces the built-in word list of the text-similarity scape.
	Words []string
}

type PopulationSummary struct {
	ID           string
	Scape        string
	Topology     []int
	Size         int
	Generation   int
	GenomeLength int
	Rates        Rates
	HasChampion  bool
}

type TrainSummary struct {
	PopulationID     string
	Generations      int
	Generation       int
	BestByGeneration []float64
	FinalBestFitness float64
	GoalReached      bool
}

func New(opts Options) (*Client, error) {
	storeKind := opts.StoreKind
	if storeKind == "" {
		storeKind = storage.DefaultStoreKind()
	}
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}

	store, err := storage.NewStore(storeKind, dbPath)
	if err != nil {
		return nil, err
	}
	return &Client{store: store}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

func (c *Client) Init(ctx context.Context) error {
	return c.store.Init(ctx)
}

// Create builds a randomly initialized population and stores it.
func (c *Client) Create(ctx context.Context, req CreateRequest) (PopulationSummary, error) {
	if req.Scape == "" {
		req.Scape = "xor"
	}
	if req.Size <= 0 {
		req.Size = 100
	}
	if req.Seed == 0 {
		req.Seed = time.Now().UnixNano()
	}
	rates := DefaultRates()
	if req.Rates != nil {
		rates = *req.Rates
	}

	task, err := scape.Resolve(req.Scape)
	if err != nil {
		return PopulationSummary{}, err
	}
	topology := req.Topology
	if len(topology) == 0 {
		topology = task.Topology()
	}
	if err := scape.CheckTopology(task, topology); err != nil {
		return PopulationSummary{}, err
	}

	population, err := evo.New(evo.Config{
		ID:       req.ID,
		Size:     req.Size,
		Topology: topology,
		Rates:    rates.toEvo(),
		Seed:     req.Seed,
	})
	if err != nil {
		return PopulationSummary{}, err
	}

	doc := population.Snapshot()
	doc.Scape = task.Name()
	if err := c.store.SavePopulation(ctx, doc); err != nil {
		return PopulationSummary{}, err
	}
	return summarize(doc), nil
}

// Train evolves a stored population for up to Generations generations, then stores
// the new generation, its champion and the run history.
func (c *Client) Train(ctx context.Context, req TrainRequest) (TrainSummary, error) {
	if req.Generations <= 0 {
		return TrainSummary{}, fmt.Errorf("%w: generations must be positive", nn.ErrConfiguration)
	}
	if req.Seed == 0 {
		req.Seed = time.Now().UnixNano()
	}
	goal := req.FitnessGoal
	if goal == 0 {
		goal = math.Inf(1)
	}

	doc, err := c.load(ctx, req.PopulationID)
	if err != nil {
		return TrainSummary{}, err
	}
	task, err := resolveScape(doc.Scape, req.Words)
	if err != nil {
		return TrainSummary{}, err
	}
	if err := scape.CheckTopology(task, doc.Topology); err != nil {
		return TrainSummary{}, err
	}

	rng := random.New(req.Seed)
	population, err := evo.Restore(doc, req.Workers, rng)
	if err != nil {
		return TrainSummary{}, fmt.Errorf("restore population %s: %w", doc.ID, err)
	}

	history, _, err := c.store.GetFitnessHistory(ctx, doc.ID)
	if err != nil {
		return TrainSummary{}, err
	}
	diagnostics, _, err := c.store.GetGenerationDiagnostics(ctx, doc.ID)
	if err != nil {
		return TrainSummary{}, err
	}

	summary := TrainSummary{PopulationID: doc.ID}
	var champion *nn.Network
	for gen := 0; gen < req.Generations; gen++ {
		round, err := task.Round(rng)
		if err != nil {
			return TrainSummary{}, err
		}
		best, generation, err := population.Train(ctx, round.Inputs, round.Fitness)
		if err != nil {
			return TrainSummary{}, err
		}
		champion = best
		summary.Generations++
		summary.BestByGeneration = append(summary.BestByGeneration, best.Fitness())
		diagnostics = append(diagnostics, generation)
		if best.Fitness() >= goal {
			summary.GoalReached = true
			break
		}
	}
	summary.FinalBestFitness = champion.Fitness()
	summary.Generation = population.Generation()

	// The population is saved last so a failed history write leaves the
	// stored generation in step with its history.
	if err := c.store.SaveFitnessHistory(ctx, doc.ID, append(history, summary.BestByGeneration...)); err != nil {
		return TrainSummary{}, err
	}
	if err := c.store.SaveGenerationDiagnostics(ctx, doc.ID, diagnostics); err != nil {
		return TrainSummary{}, err
	}
	next := population.Snapshot()
	next.Scape = task.Name()
	record := champion.Record()
	next.Champion = &record
	if err := c.store.SavePopulation(ctx, next); err != nil {
		return TrainSummary{}, err
	}
	return summary, nil
}

// Query runs the stored champion of a population on inputs.
func (c *Client) Query(ctx context.Context, populationID string, inputs []float64) ([]float64, error) {
	doc, err := c.load(ctx, populationID)
	if err != nil {
		return nil, err
	}
	if doc.Champion == nil {
		return nil, fmt.Errorf("population %s has no champion; train it first", populationID)
	}
	champion, err := nn.FromRecord(doc.Topology, *doc.Champion)
	if err != nil {
		return nil, fmt.Errorf("champion of %s: %w", populationID, err)
	}
	return champion.Run(inputs)
}

func (c *Client) Population(ctx context.Context, id string) (PopulationSummary, error) {
	doc, err := c.load(ctx, id)
	if err != nil {
		return PopulationSummary{}, err
	}
	return summarize(doc), nil
}

func (c *Client) Populations(ctx context.Context) ([]PopulationSummary, error) {
	ids, err := c.store.ListPopulations(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]PopulationSummary, 0, len(ids))
	for _, id := range ids {
		summary, err := c.Population(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, summary)
	}
	return out, nil
}

func (c *Client) Delete(ctx context.Context, id string) error {
	if _, err := c.load(ctx, id); err != nil {
		return err
	}
	return c.store.DeletePopulation(ctx, id)
}

func (c *Client) FitnessHistory(ctx context.Context, id string) ([]float64, error) {
	history, ok, err := c.store.GetFitnessHistory(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("fitness history not found for population id: %s", id)
	}
	return history, nil
}

func (c *Client) Diagnostics(ctx context.Context, id string) ([]model.GenerationDiagnostics, error) {
	diagnostics, ok, err := c.store.GetGenerationDiagnostics(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("diagnostics not found for population id: %s", id)
	}
	return diagnostics, nil
}

// Export writes a stored population to a document file.
func (c *Client) Export(ctx context.Context, id, path string) error {
	doc, err := c.load(ctx, id)
	if err != nil {
		return err
	}
	return storage.WriteFile(path, doc)
}

// Import validates a document file and stores the population it holds,
// replacing any population with the same id.
func (c *Client) Import(ctx context.Context, path string) (PopulationSummary, error) {
	doc, err := storage.ReadFile(path)
	if err != nil {
		return PopulationSummary{}, err
	}
	if _, err := evo.Restore(doc, 1, random.New(1)); err != nil {
		return PopulationSummary{}, fmt.Errorf("import %s: %w", path, err)
	}
	if doc.Champion != nil {
		if _, err := nn.FromRecord(doc.Topology, *doc.Champion); err != nil {
			return PopulationSummary{}, fmt.Errorf("import %s: champion: %w", path, err)
		}
	}
	if err := c.store.SavePopulation(ctx, doc); err != nil {
		return PopulationSummary{}, err
	}
	return summarize(doc), nil
}

func (c *Client) load(ctx context.Context, id string) (model.Population, error) {
	if id == "" {
		return model.Population{}, errors.New("population id is required")
	}
	doc, ok, err := c.store.GetPopulation(ctx, id)
	if err != nil {
		return model.Population{}, err
	}
	if !ok {
		return model.Population{}, fmt.Errorf("%w: %s", ErrPopulationNotFound, id)
	}
	return doc, nil
}

func resolveScape(name string, words []string) (scape.Scape, error) {
	if name == "" {
		name = "xor"
	}
	if name == "text-similarity" && len(words) > 0 {
		return scape.NewTextSimilarity(words), nil
	}
	return scape.Resolve(name)
}

func summarize(doc model.Population) PopulationSummary {
	return PopulationSummary{
		ID:           doc.ID,
		Scape:        doc.Scape,
		Topology:     append([]int(nil), doc.Topology...),
		Size:         doc.Size,
		Generation:   doc.Generation,
		GenomeLength: nn.GenomeLength(doc.Topology),
		Rates: Rates{
			Selection:    doc.Rates.Selection,
			Elitism:      doc.Rates.Elitism,
			Reproduction: doc.Rates.Reproduction,
			Mutation:     doc.Rates.Mutation,
		},
		HasChampion: doc.Champion != nil,
	}
}

func (r Rates) toEvo() evo.Rates {
	return evo.Rates{Selection: r.Selection, Elitism: r.Elitism, Reproduction: r.Reproduction, Mutation: r.Mutation}
}
