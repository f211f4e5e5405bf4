package storage

import (
	"fmt"
	"os"

	"genenet/internal/model"
)

// WriteFile exports one population document to path.
func WriteFile(path string, population model.Population) error {
	payload, err := EncodePopulation(population)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return fmt.Errorf("write population %s: %w", path, err)
	}
	return nil
}

func ReadFile(path string) (model.Population, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return model.Population{}, fmt.Errorf("read population %s: %w", path, err)
	}
	population, err := DecodePopulation(payload)
	if err != nil {
		return model.Population{}, fmt.Errorf("decode population %s: %w", path, err)
	}
	return population, nil
}
