package catalogRepo

import (
	"context"
	"fmt"
	"io"
	"os"

	"toltimed/models"

	json "github.com/goccy/go-json"
)

// Seed is the document format of a catalog seed file.
type Seed struct {
	Services      []models.Service      `json:"services"`
	Practitioners []models.Practitioner `json:"practitioners"`
}

// Upserter stores catalog entries by ID.
type Upserter interface {
	UpsertService(ctx context.Context, s models.Service) error
	UpsertPractitioner(ctx context.Context, p models.Practitioner) error
}

// DecodeSeed reads a seed document. Every entry needs an ID, IDs are unique per
// kind, and service categories must be known.
func DecodeSeed(r io.Reader) (Seed, error) {
	var seed Seed
	if err := json.NewDecoder(r).Decode(&seed); err != nil {
		return Seed{}, fmt.Errorf("invalid catalog seed: %w", err)
	}
	seen := make(map[string]bool, len(seed.Services))
	for i, s := range seed.Services {
		if s.ID == "" {
			return Seed{}, fmt.Errorf("invalid catalog seed: service %d has no id", i)
		}
		if seen[s.ID] {
			return Seed{}, fmt.Errorf("invalid catalog seed: duplicate service %s", s.ID)
		}
		if !s.Category.Valid() {
			return Seed{}, fmt.Errorf("invalid catalog seed: service %s has unknown category %q", s.ID, s.Category)
		}
		seen[s.ID] = true
	}
	seen = make(map[string]bool, len(seed.Practitioners))
	for i, p := range seed.Practitioners {
		if p.ID == "" {
			return Seed{}, fmt.Errorf("invalid catalog seed: practitioner %d has no id", i)
		}
		if seen[p.ID] {
			return Seed{}, fmt.Errorf("invalid catalog seed: duplicate practitioner %s", p.ID)
		}
		seen[p.ID] = true
	}
	return seed, nil
}

// Apply upserts every entry of seed into repo.
func (seed Seed) Apply(ctx context.Context, repo Upserter) error {
	for _, s := range seed.Services {
		if err := repo.UpsertService(ctx, s); err != nil {
			return err
		}
	}
	for _, p := range seed.Practitioners {
		if err := repo.UpsertPractitioner(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// SeedFromFile loads the seed document at path into repo.
func SeedFromFile(ctx context.Context, repo Upserter, path string) (Seed, error) {
	f, err := os.Open(path)
	if err != nil {
		return Seed{}, fmt.Errorf("open catalog seed: %w", err)
	}
	defer f.Close()

	seed, err := DecodeSeed(f)
	if err != nil {
		return Seed{}, err
	}
	return seed, seed.Apply(ctx, repo)
}
