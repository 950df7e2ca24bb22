// Package config loads and validates sift configuration: scan filters,
// similarity weights, classification thresholds, and the feature and
// placeholder rule tables.
//
// Configuration is validated eagerly at load time, before any file I/O
// begins. Structural problems (weights that do not sum to 1.0, thresholds
// out of range) are fatal; per-rule problems (an uncompilable regex) are
// degraded by the consuming package, not here.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ConfigFileName is the name of the sift configuration file.
const ConfigFileName = "config.yaml"

// ConfigDirName is the name of the sift configuration directory.
const ConfigDirName = ".sift"

// weightSumTolerance is the permitted deviation from 1.0 for the
// similarity weight sum. Covers float literal rounding in YAML, nothing more.
const weightSumTolerance = 1e-6

// Config holds all sift configuration.
type Config struct {
	Scan         ScanConfig        `yaml:"scan"`
	Similarity   SimilarityConfig  `yaml:"similarity"`
	FeatureRules []FeatureRule     `yaml:"feature_rules"`
	Placeholders []PlaceholderRule `yaml:"placeholder_rules"`
}

// ScanConfig holds configuration for corpus scanning.
type ScanConfig struct {
	// IncludeExtensions lists the file extensions to analyze (with dot).
	IncludeExtensions []string `yaml:"include_extensions"`
	// ExcludeSubstrings lists path substrings that exclude a file or
	// directory from the scan.
	ExcludeSubstrings []string `yaml:"exclude_substrings"`
	// Workers bounds the analysis worker pool. Zero means NumCPU.
	Workers int `yaml:"workers"`
	// FileTimeoutSeconds bounds the time spent reading a single file.
	// A stalled file is reported as a read error, not a stalled run.
	FileTimeoutSeconds int `yaml:"file_timeout_seconds"`
}

// SimilarityConfig holds weights, thresholds, and grouping heuristics
// for the redundancy analysis.
type SimilarityConfig struct {
	Weights Weights `yaml:"weights"`
	// ReportingFloor is the minimum score at which a pair produces a
	// persisted similarity edge.
	ReportingFloor float64 `yaml:"reporting_floor"`
	// DuplicateThreshold is the score at or above which a pair is a duplicate.
	DuplicateThreshold float64 `yaml:"duplicate_threshold"`
	// ReviewThreshold is the score at or above which a pair is a variant
	// needing manual review.
	ReviewThreshold float64 `yaml:"review_threshold"`
	// SuffixTokens are the filename suffix tokens stripped when deriving
	// identity-group keys, applied greedily from longest to shortest.
	SuffixTokens []string `yaml:"suffix_tokens"`
}

// Weights are the similarity score component weights. They must sum to 1.0.
type Weights struct {
	Size      float64 `yaml:"size"`
	Functions float64 `yaml:"functions"`
	Classes   float64 `yaml:"classes"`
	Imports   float64 `yaml:"imports"`
}

// Sum returns the total of all component weights.
func (w Weights) Sum() float64 {
	return w.Size + w.Functions + w.Classes + w.Imports
}

// FeatureRule describes a single feature extraction rule.
type FeatureRule struct {
	// Label identifies the rule in warnings.
	Label string `yaml:"label"`
	// Kind is the feature set the rule feeds: function, class, import, marker.
	Kind string `yaml:"kind"`
	// Matcher selects the implementation: "regex" (default) or one of the
	// AST matchers (python_functions, python_classes, python_imports).
	Matcher string `yaml:"matcher"`
	// Pattern is the regex for regex matchers; first capture group wins,
	// otherwise the whole match. Unused for AST matchers.
	Pattern string `yaml:"pattern"`
}

// PlaceholderRule describes a single placeholder detection rule.
type PlaceholderRule struct {
	Name       string  `yaml:"name"`
	Pattern    string  `yaml:"pattern"`
	Category   string  `yaml:"category"`
	Confidence float64 `yaml:"confidence"`
}

// ErrConfigNotFound is returned when no config file can be found.
var ErrConfigNotFound = errors.New("config file not found")

// ErrInvalidConfig is returned when config validation fails.
var ErrInvalidConfig = errors.New("invalid configuration")

// Load reads config from .sift/config.yaml, falling back to defaults.
// It searches for the config directory starting from workDir and walking up
// the directory tree. If no config is found, returns defaults.
func Load(workDir string) (*Config, error) {
	configDir, err := FindConfigDir(workDir)
	if err != nil {
		return DefaultConfig(), nil
	}

	configPath := filepath.Join(configDir, ConfigFileName)
	return LoadFromPath(configPath)
}

// LoadFromPath reads config from a specific path.
// Merges loaded config with defaults and validates the result.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	loaded := &Config{}
	if err := yaml.Unmarshal(data, loaded); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	merged := Merge(loaded, DefaultConfig())

	if err := Validate(merged); err != nil {
		return nil, err
	}

	return merged, nil
}

// FindConfigDir locates the .sift directory by walking up from startDir.
// Returns the path to the .sift directory if found.
func FindConfigDir(startDir string) (string, error) {
	absDir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	currentDir := absDir
	for {
		configDir := filepath.Join(currentDir, ConfigDirName)
		info, err := os.Stat(configDir)
		if err == nil && info.IsDir() {
			return configDir, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return "", ErrConfigNotFound
		}
		currentDir = parentDir
	}
}

// EnsureConfigDir creates the .sift directory if it doesn't exist.
// Returns the path to the .sift directory.
func EnsureConfigDir(workDir string) (string, error) {
	absDir, err := filepath.Abs(workDir)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	configDir := filepath.Join(absDir, ConfigDirName)

	info, err := os.Stat(configDir)
	if err == nil {
		if info.IsDir() {
			return configDir, nil
		}
		return "", fmt.Errorf("%s exists but is not a directory", configDir)
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", fmt.Errorf("creating config directory: %w", err)
	}

	return configDir, nil
}

// Validate checks that config values are structurally valid.
// Returns an error wrapping ErrInvalidConfig if validation fails.
// Per-rule regex compilation is deliberately not checked here: a broken
// rule degrades that rule only, at table compile time.
func Validate(cfg *Config) error {
	if sum := cfg.Similarity.Weights.Sum(); math.Abs(sum-1.0) > weightSumTolerance {
		return fmt.Errorf("%w: similarity weights must sum to 1.0, got %g",
			ErrInvalidConfig, sum)
	}

	for name, v := range map[string]float64{
		"duplicate_threshold": cfg.Similarity.DuplicateThreshold,
		"review_threshold":    cfg.Similarity.ReviewThreshold,
		"reporting_floor":     cfg.Similarity.ReportingFloor,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("%w: %s must be between 0 and 1, got %f",
				ErrInvalidConfig, name, v)
		}
	}

	if cfg.Similarity.ReviewThreshold >= cfg.Similarity.DuplicateThreshold {
		return fmt.Errorf("%w: review_threshold (%f) must be below duplicate_threshold (%f)",
			ErrInvalidConfig, cfg.Similarity.ReviewThreshold, cfg.Similarity.DuplicateThreshold)
	}

	if cfg.Scan.Workers < 0 {
		return fmt.Errorf("%w: workers must be non-negative, got %d",
			ErrInvalidConfig, cfg.Scan.Workers)
	}

	if cfg.Scan.FileTimeoutSeconds < 0 {
		return fmt.Errorf("%w: file_timeout_seconds must be non-negative, got %d",
			ErrInvalidConfig, cfg.Scan.FileTimeoutSeconds)
	}

	for _, rule := range cfg.FeatureRules {
		if rule.Label == "" {
			return fmt.Errorf("%w: feature rule with empty label", ErrInvalidConfig)
		}
		if !validFeatureKind(rule.Kind) {
			return fmt.Errorf("%w: feature rule %q has unknown kind %q",
				ErrInvalidConfig, rule.Label, rule.Kind)
		}
	}

	for _, rule := range cfg.Placeholders {
		if rule.Name == "" {
			return fmt.Errorf("%w: placeholder rule with empty name", ErrInvalidConfig)
		}
		if rule.Confidence < 0 || rule.Confidence > 1 {
			return fmt.Errorf("%w: placeholder rule %q confidence must be between 0 and 1, got %f",
				ErrInvalidConfig, rule.Name, rule.Confidence)
		}
	}

	return nil
}

// validFeatureKind reports whether kind names one of the feature sets.
func validFeatureKind(kind string) bool {
	switch kind {
	case "function", "class", "import", "marker":
		return true
	}
	return false
}

// SaveDefault writes the default configuration to .sift/config.yaml in workDir.
// Creates the .sift directory if it doesn't exist.
func SaveDefault(workDir string) (string, error) {
	configDir, err := EnsureConfigDir(workDir)
	if err != nil {
		return "", err
	}

	configPath := filepath.Join(configDir, ConfigFileName)

	if _, err := os.Stat(configPath); err == nil {
		return "", fmt.Errorf("config file already exists: %s", configPath)
	}

	cfg := DefaultConfig()
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("marshaling config: %w", err)
	}

	header := "# sift configuration\n# See https://github.com/hargabyte/sift for documentation\n\n"
	data = append([]byte(header), data...)

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return "", fmt.Errorf("writing config file: %w", err)
	}

	return configPath, nil
}
