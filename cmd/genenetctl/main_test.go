package main

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"genenet/internal/storage"
)

func TestRunRequiresCommand(t *testing.T) {
	err := run(context.Background(), nil)
	if err == nil || !strings.Contains(err.Error(), "usage: genenetctl") {
		t.Fatalf("expected usage error, got %v", err)
	}
	err = run(context.Background(), []string{"bogus"})
	if err == nil || !strings.Contains(err.Error(), "unknown command: bogus") {
		t.Fatalf("expected unknown command error, got %v", err)
	}
}

func TestTrainCommandResumesFromFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "last_population.json")
	args := []string{"train", "--store", "memory", "--file", path, "--id", "cli", "--pop", "10", "--gens", "2", "--seed", "3", "--workers", "2"}

	if err := run(ctx, args); err != nil {
		t.Fatalf("first train: %v", err)
	}
	first, err := storage.ReadFile(path)
	if err != nil {
		t.Fatalf("read first document: %v", err)
	}
	if first.ID != "cli" || first.Generation != 2 || first.Champion == nil {
		t.Fatalf("unexpected first document: id=%s generation=%d", first.ID, first.Generation)
	}

	if err := run(ctx, args); err != nil {
		t.Fatalf("second train: %v", err)
	}
	second, err := storage.ReadFile(path)
	if err != nil {
		t.Fatalf("read second document: %v", err)
	}
	if second.Generation != 4 {
		t.Fatalf("expected resumed population at generation 4, got %d", second.Generation)
	}

	if err := run(ctx, []string{"query", "--store", "memory", "--file", path, "--inputs", "0,1"}); err != nil {
		t.Fatalf("query: %v", err)
	}
	if err := run(ctx, []string{"query", "--store", "memory", "--file", path}); err == nil {
		t.Fatal("expected query without inputs to fail")
	}
	if err := run(ctx, []string{"import", "--store", "memory", "--in", path}); err != nil {
		t.Fatalf("import: %v", err)
	}
}

func TestTrainCommandReadsConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "genenet.ini")
	body := `
[population]
size = 12
topology = 20 8 1

[rates]
elitism = 0.2

[run]
scape = text-similarity
generations = 1
seed = 7

[store]
kind = memory
`
	if err := os.WriteFile(cfgPath, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	path := filepath.Join(dir, "population.json")
	if err := run(context.Background(), []string{"train", "--config", cfgPath, "--file", path, "--gens", "2"}); err != nil {
		t.Fatalf("train: %v", err)
	}
	doc, err := storage.ReadFile(path)
	if err != nil {
		t.Fatalf("read document: %v", err)
	}
	if doc.Size != 12 || doc.Scape != "text-similarity" || !reflect.DeepEqual(doc.Topology, []int{20, 8, 1}) {
		t.Fatalf("config not applied: size=%d scape=%s topology=%v", doc.Size, doc.Scape, doc.Topology)
	}
	if doc.Generation != 2 {
		t.Fatalf("flag should override config generations, got generation %d", doc.Generation)
	}
	if doc.Rates.Elitism != 0.2 {
		t.Fatalf("unexpected elitism: %f", doc.Rates.Elitism)
	}
}

func TestCreateRejectsInvalidTopology(t *testing.T) {
	err := run(context.Background(), []string{"create", "--store", "memory", "--topology", "2 x 1"})
	if err == nil || !strings.Contains(err.Error(), "invalid layer width") {
		t.Fatalf("expected topology parse error, got %v", err)
	}
}

func TestParseWidthsAndValues(t *testing.T) {
	widths, err := parseWidths("20, 50 10\t1")
	if err != nil {
		t.Fatalf("parse widths: %v", err)
	}
	if !reflect.DeepEqual(widths, []int{20, 50, 10, 1}) {
		t.Fatalf("unexpected widths: %v", widths)
	}
	values, err := parseValues("0.5 -1")
	if err != nil {
		t.Fatalf("parse values: %v", err)
	}
	if !reflect.DeepEqual(values, []float64{0.5, -1}) {
		t.Fatalf("unexpected values: %v", values)
	}
	if _, err := parseValues("nope"); err == nil {
		t.Fatal("expected parse error")
	}
}
