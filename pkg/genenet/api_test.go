package genenet

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"genenet/internal/nn"
	"genenet/internal/scape"
	"genenet/internal/storage"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	client, err := New(Options{StoreKind: "memory"})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if err := client.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}
	t.Cleanup(func() {
		_ = client.Close()
	})
	return client
}

func TestClientCreateTrainAndQuery(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)

	created, err := client.Create(ctx, CreateRequest{ID: "xor-1", Scape: "xor", Size: 10, Seed: 1})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Generation != 0 || created.GenomeLength != 13 || created.HasChampion {
		t.Fatalf("unexpected created population: %+v", created)
	}

	summary, err := client.Train(ctx, TrainRequest{PopulationID: "xor-1", Generations: 3, Seed: 2, Workers: 2})
	if err != nil {
		t.Fatalf("train: %v", err)
	}
	if summary.Generations != 3 || summary.Generation != 3 || len(summary.BestByGeneration) != 3 {
		t.Fatalf("unexpected train summary: %+v", summary)
	}
	if summary.FinalBestFitness != summary.BestByGeneration[2] {
		t.Fatalf("final best %f does not match last generation %v", summary.FinalBestFitness, summary.BestByGeneration)
	}

	if _, err := client.Train(ctx, TrainRequest{PopulationID: "xor-1", Generations: 2, Seed: 3}); err != nil {
		t.Fatalf("second train: %v", err)
	}
	history, err := client.FitnessHistory(ctx, "xor-1")
	if err != nil {
		t.Fatalf("fitness history: %v", err)
	}
	diagnostics, err := client.Diagnostics(ctx, "xor-1")
	if err != nil {
		t.Fatalf("diagnostics: %v", err)
	}
	if len(history) != 5 || len(diagnostics) != 5 {
		t.Fatalf("expected history across runs, got history=%d diagnostics=%d", len(history), len(diagnostics))
	}
	if diagnostics[4].Generation != 4 || diagnostics[4].Size != 10 {
		t.Fatalf("unexpected last diagnostics: %+v", diagnostics[4])
	}

	population, err := client.Population(ctx, "xor-1")
	if err != nil {
		t.Fatalf("population: %v", err)
	}
	if population.Generation != 5 || !population.HasChampion || population.Scape != "xor" {
		t.Fatalf("unexpected stored population: %+v", population)
	}

	out, err := client.Query(ctx, "xor-1", []float64{0, 1})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(out) != 1 || out[0] < -1 || out[0] > 1 {
		t.Fatalf("unexpected champion output: %v", out)
	}
	if _, err := client.Query(ctx, "xor-1", []float64{0}); !errors.Is(err, nn.ErrValidation) {
		t.Fatalf("expected validation error for short input, got %v", err)
	}
}

func TestClientTrainStopsAtFitnessGoal(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)
	if _, err := client.Create(ctx, CreateRequest{ID: "goal", Size: 10, Seed: 1}); err != nil {
		t.Fatalf("create: %v", err)
	}
	summary, err := client.Train(ctx, TrainRequest{PopulationID: "goal", Generations: 50, Seed: 1, FitnessGoal: 1e-9})
	if err != nil {
		t.Fatalf("train: %v", err)
	}
	if !summary.GoalReached || summary.Generations != 1 {
		t.Fatalf("expected early stop after one generation, got %+v", summary)
	}
}

func TestClientTextSimilarityWithCustomWords(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)
	if _, err := client.Create(ctx, CreateRequest{ID: "words", Scape: "text-similarity", Size: 10, Seed: 4}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := client.Train(ctx, TrainRequest{PopulationID: "words", Generations: 2, Seed: 5, Words: []string{"elma", "armut", "kiraz"}}); err != nil {
		t.Fatalf("train: %v", err)
	}
	out, err := client.Query(ctx, "words", scape.PairInput("elma", "elma"))
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("unexpected output: %v", out)
	}
}

func TestClientCreateRejectsMismatchedTopology(t *testing.T) {
	client := newTestClient(t)
	_, err := client.Create(context.Background(), CreateRequest{Scape: "xor", Size: 10, Topology: []int{3, 4, 1}})
	if !errors.Is(err, nn.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	_, err = client.Create(context.Background(), CreateRequest{Scape: "xor", Size: 10, Rates: &Rates{Selection: 2}})
	if !errors.Is(err, nn.ErrConfiguration) {
		t.Fatalf("expected configuration error for rates, got %v", err)
	}
}

func TestClientMissingPopulation(t *testing.T) {
	client := newTestClient(t)
	if _, err := client.Train(context.Background(), TrainRequest{PopulationID: "missing", Generations: 1}); !errors.Is(err, ErrPopulationNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := client.Delete(context.Background(), "missing"); !errors.Is(err, ErrPopulationNotFound) {
		t.Fatalf("expected not found on delete, got %v", err)
	}
}

type failingHistoryStore struct {
	storage.Store
}

func (failingHistoryStore) SaveFitnessHistory(context.Context, string, []float64) error {
	return errors.New("history unavailable")
}

func TestClientTrainKeepsStoredGenerationWhenHistorySaveFails(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	client := &Client{store: failingHistoryStore{Store: store}}

	if _, err := client.Create(ctx, CreateRequest{ID: "xor-1", Scape: "xor", Size: 10, Seed: 1}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := client.Train(ctx, TrainRequest{PopulationID: "xor-1", Generations: 2, Seed: 2}); err == nil {
		t.Fatal("expected history save error")
	}
	summary, err := client.Population(ctx, "xor-1")
	if err != nil {
		t.Fatalf("population: %v", err)
	}
	if summary.Generation != 0 || summary.HasChampion {
		t.Fatalf("stored population advanced past its history: %+v", summary)
	}
}

func TestClientExportImportIsByteIdentical(t *testing.T) {
	ctx := context.Background()
	source := newTestClient(t)
	if _, err := source.Create(ctx, CreateRequest{ID: "exported", Size: 10, Seed: 9}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := source.Train(ctx, TrainRequest{PopulationID: "exported", Generations: 2, Seed: 9}); err != nil {
		t.Fatalf("train: %v", err)
	}

	dir := t.TempDir()
	first := filepath.Join(dir, "first.json")
	if err := source.Export(ctx, "exported", first); err != nil {
		t.Fatalf("export: %v", err)
	}

	target := newTestClient(t)
	imported, err := target.Import(ctx, first)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if imported.ID != "exported" || imported.Generation != 2 || !imported.HasChampion {
		t.Fatalf("unexpected imported population: %+v", imported)
	}
	second := filepath.Join(dir, "second.json")
	if err := target.Export(ctx, "exported", second); err != nil {
		t.Fatalf("re-export: %v", err)
	}

	a, err := os.ReadFile(first)
	if err != nil {
		t.Fatalf("read first: %v", err)
	}
	b, err := os.ReadFile(second)
	if err != nil {
		t.Fatalf("read second: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Fatal("export after import differs from original export")
	}

	summaries, err := target.Populations(ctx)
	if err != nil {
		t.Fatalf("populations: %v", err)
	}
	if len(summaries) != 1 || summaries[0].ID != "exported" {
		t.Fatalf("unexpected populations: %+v", summaries)
	}
	if err := target.Delete(ctx, "exported"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if summaries, _ := target.Populations(ctx); len(summaries) != 0 {
		t.Fatalf("expected no populations after delete, got %+v", summaries)
	}
}

func TestClientImportRejectsCorruptDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	doc := `{"schema_version":1,"codec_version":1,"id":"bad","topology":[2,3,1],"size":10,"generation":0,"rates":{"selection":0.5,"elitism":0.1,"reproduction":0.2,"mutation":0.01},"networks":[]}`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	client := newTestClient(t)
	if _, err := client.Import(context.Background(), path); !errors.Is(err, nn.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
