package storage

import (
	"context"
	"reflect"
	"testing"

	"genenet/internal/model"
)

func TestMemoryStorePopulationLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	population := decodePopulationFixture(t, "minimal_population_v1.json")
	other := population
	other.ID = "population-a"
	for _, p := range []model.Population{population, other} {
		if err := store.SavePopulation(ctx, p); err != nil {
			t.Fatalf("save population %s: %v", p.ID, err)
		}
	}

	ids, err := store.ListPopulations(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !reflect.DeepEqual(ids, []string{"population-a", "population-minimal-1"}) {
		t.Fatalf("unexpected ids: %v", ids)
	}

	loaded, ok, err := store.GetPopulation(ctx, population.ID)
	if err != nil {
		t.Fatalf("get population: %v", err)
	}
	if !ok || !reflect.DeepEqual(loaded, population) {
		t.Fatalf("unexpected population: ok=%t %+v", ok, loaded)
	}

	if err := store.DeletePopulation(ctx, population.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, err := store.GetPopulation(ctx, population.ID); err != nil || ok {
		t.Fatalf("expected deleted population, ok=%t err=%v", ok, err)
	}
}

func TestMemoryStoreFitnessHistoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	input := []float64{0.1, 0.2, 0.3}
	if err := store.SaveFitnessHistory(ctx, "run-1", input); err != nil {
		t.Fatalf("save history: %v", err)
	}
	input[0] = 42
	output, ok, err := store.GetFitnessHistory(ctx, "run-1")
	if err != nil {
		t.Fatalf("get history: %v", err)
	}
	if !ok || len(output) != 3 || output[0] != 0.1 {
		t.Fatalf("unexpected history: ok=%t %v", ok, output)
	}
	if _, ok, _ := store.GetFitnessHistory(ctx, "missing"); ok {
		t.Fatal("expected missing history")
	}
}

func TestMemoryStoreDiagnosticsRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	input := []model.GenerationDiagnostics{{Generation: 2, Size: 10, BestFitness: 1, MeanFitness: 0.5, MinFitness: 0}}
	if err := store.SaveGenerationDiagnostics(ctx, "run-1", input); err != nil {
		t.Fatalf("save diagnostics: %v", err)
	}
	output, ok, err := store.GetGenerationDiagnostics(ctx, "run-1")
	if err != nil {
		t.Fatalf("get diagnostics: %v", err)
	}
	if !ok || !reflect.DeepEqual(output, input) {
		t.Fatalf("unexpected diagnostics: ok=%t %+v", ok, output)
	}
}
