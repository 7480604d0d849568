package main

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/choralworks/medialib/internal/assets"
	"github.com/google/uuid"
)

//go:embed seeds/*.json
var seedFiles embed.FS

func init() {
	registerSeeder(&AssetSeeder{})
}

// AssetSeedData represents the JSON structure for asset seed files.
type AssetSeedData struct {
	Assets []SeedAsset `json:"assets"`
}

// SeedAsset is one asset record in a seed file. The id must be stable so
// repeated seeding updates rather than duplicates.
type SeedAsset struct {
	ID        uuid.UUID   `json:"id"`
	Scope     string      `json:"scope"`
	Name      string      `json:"name"`
	URL       string      `json:"url"`
	Type      assets.Type `json:"type"`
	SizeBytes int64       `json:"size_bytes"`
	Folder    string      `json:"folder"`
	BlobRef   string      `json:"blob_ref"`
	PageCount *int        `json:"page_count"`
}

// AssetSeeder implements Seeder for sample asset metadata records.
// It loads seed data from an embedded file or an external file path.
type AssetSeeder struct {
	file string
}

// Name returns "assets" as the seeder identifier.
func (s *AssetSeeder) Name() string {
	return "assets"
}

// Description returns a human-readable description of this seeder.
func (s *AssetSeeder) Description() string {
	return "Seeds sample media asset records"
}

// SetFile configures an external seed file path, overriding the embedded default.
func (s *AssetSeeder) SetFile(path string) {
	s.file = path
}

// Seed loads asset data and saves each record to the database.
// Uses save semantics (insert or update) for idempotent execution.
func (s *AssetSeeder) Seed(ctx context.Context, tx *sql.Tx) error {
	data, err := s.loadSeedData()
	if err != nil {
		return err
	}

	for _, a := range data.Assets {
		if err := s.saveAsset(ctx, tx, a); err != nil {
			return fmt.Errorf("save asset %s/%s: %w", a.Scope, a.Name, err)
		}
	}

	return nil
}

func (s *AssetSeeder) loadSeedData() (*AssetSeedData, error) {
	var content []byte
	var err error

	if s.file != "" {
		content, err = os.ReadFile(s.file)
		if err != nil {
			return nil, fmt.Errorf("read seed file: %w", err)
		}
	} else {
		content, err = seedFiles.ReadFile("seeds/sample_assets.json")
		if err != nil {
			return nil, fmt.Errorf("read embedded seed file: %w", err)
		}
	}

	var data AssetSeedData
	if err := json.Unmarshal(content, &data); err != nil {
		return nil, fmt.Errorf("parse seed data: %w", err)
	}

	return &data, nil
}

func (s *AssetSeeder) saveAsset(ctx context.Context, tx *sql.Tx, a SeedAsset) error {
	if !a.Type.Valid() {
		return fmt.Errorf("invalid asset type %q", a.Type)
	}
	if a.Folder == "" {
		a.Folder = string(a.Type)
	}

	_, err := tx.ExecContext(ctx, `
		INSERT INTO assets (id, scope, name, url, type, size_bytes, folder, blob_ref, page_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			scope = EXCLUDED.scope,
			name = EXCLUDED.name,
			url = EXCLUDED.url,
			type = EXCLUDED.type,
			size_bytes = EXCLUDED.size_bytes,
			folder = EXCLUDED.folder,
			blob_ref = EXCLUDED.blob_ref,
			page_count = EXCLUDED.page_count,
			updated_at = now()`,
		a.ID, a.Scope, a.Name, a.URL, a.Type, a.SizeBytes, a.Folder, nullable(a.BlobRef), a.PageCount,
	)
	return err
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
