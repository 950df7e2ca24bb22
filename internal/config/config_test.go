package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if len(cfg.Scan.IncludeExtensions) != 1 || cfg.Scan.IncludeExtensions[0] != ".py" {
		t.Errorf("expected default extensions [.py], got %v", cfg.Scan.IncludeExtensions)
	}

	if cfg.Similarity.Weights.Sum() != 1.0 {
		t.Errorf("expected default weights to sum to 1.0, got %f", cfg.Similarity.Weights.Sum())
	}

	if cfg.Similarity.DuplicateThreshold != 0.8 {
		t.Errorf("expected duplicate_threshold 0.8, got %f", cfg.Similarity.DuplicateThreshold)
	}

	if cfg.Similarity.ReviewThreshold != 0.6 {
		t.Errorf("expected review_threshold 0.6, got %f", cfg.Similarity.ReviewThreshold)
	}

	if cfg.Similarity.ReportingFloor != 0.5 {
		t.Errorf("expected reporting_floor 0.5, got %f", cfg.Similarity.ReportingFloor)
	}

	if len(cfg.FeatureRules) == 0 {
		t.Error("expected default feature rules, got none")
	}

	if len(cfg.Placeholders) == 0 {
		t.Error("expected default placeholder rules, got none")
	}

	// Defaults must themselves validate.
	if err := Validate(cfg); err != nil {
		t.Errorf("default config failed validation: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid defaults",
			modify:  func(c *Config) {},
			wantErr: false,
		},
		{
			name: "weights sum below one",
			modify: func(c *Config) {
				c.Similarity.Weights.Size = 0.25 // sum 0.95
			},
			wantErr: true,
		},
		{
			name: "weights sum above one",
			modify: func(c *Config) {
				c.Similarity.Weights.Imports = 0.25 // sum 1.05
			},
			wantErr: true,
		},
		{
			name: "duplicate threshold above range",
			modify: func(c *Config) {
				c.Similarity.DuplicateThreshold = 1.1
			},
			wantErr: true,
		},
		{
			name: "review threshold negative",
			modify: func(c *Config) {
				c.Similarity.ReviewThreshold = -0.1
			},
			wantErr: true,
		},
		{
			name: "review threshold not below duplicate",
			modify: func(c *Config) {
				c.Similarity.ReviewThreshold = 0.8
				c.Similarity.DuplicateThreshold = 0.8
			},
			wantErr: true,
		},
		{
			name: "negative workers",
			modify: func(c *Config) {
				c.Scan.Workers = -1
			},
			wantErr: true,
		},
		{
			name: "feature rule with unknown kind",
			modify: func(c *Config) {
				c.FeatureRules = append(c.FeatureRules, FeatureRule{
					Label: "bad", Kind: "modules", Pattern: "x",
				})
			},
			wantErr: true,
		},
		{
			name: "placeholder confidence out of range",
			modify: func(c *Config) {
				c.Placeholders = append(c.Placeholders, PlaceholderRule{
					Name: "bad", Pattern: "x", Category: "x", Confidence: 1.5,
				})
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)

			err := Validate(cfg)
			if tt.wantErr && err == nil {
				t.Error("expected validation error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected validation error: %v", err)
			}
			if tt.wantErr && err != nil && !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected error wrapping ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestLoadFromPathMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Similarity.DuplicateThreshold != 0.8 {
		t.Errorf("expected defaults for missing file, got %+v", cfg.Similarity)
	}
}

func TestLoadFromPathMergesWithDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	yaml := `
similarity:
  duplicate_threshold: 0.9
  review_threshold: 0.7
scan:
  workers: 2
`
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Similarity.DuplicateThreshold != 0.9 {
		t.Errorf("expected loaded duplicate_threshold 0.9, got %f", cfg.Similarity.DuplicateThreshold)
	}
	if cfg.Scan.Workers != 2 {
		t.Errorf("expected loaded workers 2, got %d", cfg.Scan.Workers)
	}

	// Unspecified fields come from defaults.
	if cfg.Similarity.Weights.Sum() != 1.0 {
		t.Errorf("expected default weights, got %+v", cfg.Similarity.Weights)
	}
	if len(cfg.FeatureRules) == 0 {
		t.Error("expected default feature rules to survive merge")
	}
}

func TestLoadFromPathRejectsInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	// Weights sum to 0.95: must be rejected at load time, before any
	// scanning could begin.
	yaml := `
similarity:
  weights:
    size: 0.25
    functions: 0.3
    classes: 0.2
    imports: 0.2
`
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadFromPath(path)
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestFindConfigDirWalksUp(t *testing.T) {
	root := t.TempDir()
	siftDir := filepath.Join(root, ConfigDirName)
	if err := os.MkdirAll(siftDir, 0755); err != nil {
		t.Fatal(err)
	}
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}

	found, err := FindConfigDir(nested)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found != siftDir {
		t.Errorf("expected %s, got %s", siftDir, found)
	}
}
