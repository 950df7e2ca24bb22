package config

// DefaultConfig returns configuration with sensible defaults.
// These defaults are used when no config file exists or when the
// config file is missing specific fields.
func DefaultConfig() *Config {
	return &Config{
		Scan: ScanConfig{
			IncludeExtensions: []string{".py"},
			ExcludeSubstrings: []string{
				"__pycache__",
				".git",
				".venv",
				"node_modules",
				"_backup",
				"archive",
			},
			Workers:            0, // NumCPU
			FileTimeoutSeconds: 30,
		},
		Similarity: SimilarityConfig{
			Weights: Weights{
				Size:      0.3,
				Functions: 0.3,
				Classes:   0.2,
				Imports:   0.2,
			},
			ReportingFloor:     0.5,
			DuplicateThreshold: 0.8,
			ReviewThreshold:    0.6,
			// Suffix tokens humans append to iterative variants of the
			// same script. Matching is greedy longest-first regardless
			// of the order here.
			SuffixTokens: []string{
				"_clean",
				"_enhanced",
				"_complete",
				"_final",
				"_v2",
				"_v3",
				"_advanced",
			},
		},
		FeatureRules: DefaultFeatureRules(),
		Placeholders: DefaultPlaceholderRules(),
	}
}

// DefaultFeatureRules returns the built-in feature extraction rule table.
// Regex rules cover line-oriented declarations; the python AST matchers
// add parse-accurate names for Python sources.
func DefaultFeatureRules() []FeatureRule {
	return []FeatureRule{
		{Label: "py_def_lines", Kind: "function", Matcher: "regex",
			Pattern: `(?m)^\s*def\s+([A-Za-z_]\w*)`},
		{Label: "py_class_lines", Kind: "class", Matcher: "regex",
			Pattern: `(?m)^\s*class\s+([A-Za-z_]\w*)`},
		{Label: "py_import_lines", Kind: "import", Matcher: "regex",
			Pattern: `(?m)^\s*(?:import|from)\s+([A-Za-z_][\w.]*)`},
		{Label: "marker_text", Kind: "marker", Matcher: "regex",
			Pattern: `DUAL COPILOT|AUTONOMOUS|ENTERPRISE`},
		{Label: "ast_functions", Kind: "function", Matcher: "python_functions"},
		{Label: "ast_classes", Kind: "class", Matcher: "python_classes"},
		{Label: "ast_imports", Kind: "import", Matcher: "python_imports"},
	}
}

// DefaultPlaceholderRules returns the built-in placeholder detection table.
// Each rule proposes one category of literal as a template placeholder.
func DefaultPlaceholderRules() []PlaceholderRule {
	return []PlaceholderRule{
		{Name: "database_path", Category: "database_path", Confidence: 0.8,
			Pattern: `['"]([^'"]*\.db)['"]`},
		{Name: "class_name", Category: "class_name", Confidence: 0.7,
			Pattern: `class\s+([A-Z][A-Za-z0-9]*)`},
		{Name: "function_name", Category: "function_name", Confidence: 0.6,
			Pattern: `def\s+([a-z][a-z0-9_]*)`},
		{Name: "file_path", Category: "file_path", Confidence: 0.7,
			Pattern: `['"]((?:[A-Za-z]:[\\/])?[\w./\\-]+\.[A-Za-z0-9]{1,4})['"]`},
		{Name: "environment", Category: "environment", Confidence: 0.9,
			Pattern: `['"](development|staging|production|testing)['"]`},
		{Name: "author", Category: "author", Confidence: 0.8,
			Pattern: `[Aa]uthor[:\s]*['"]([^'"]+)['"]`},
		{Name: "version", Category: "version", Confidence: 0.9,
			Pattern: `[Vv]ersion[:\s]*['"](\d+\.\d+\.\d+)['"]`},
		{Name: "ip_address", Category: "ip_address", Confidence: 0.9,
			Pattern: `\d+\.\d+\.\d+\.\d+`},
	}
}

// Merge merges loaded config with defaults.
// Values from loaded config take precedence over defaults.
// Returns a new Config with merged values.
func Merge(loaded, defaults *Config) *Config {
	result := &Config{}

	result.Scan = mergeScanConfig(loaded.Scan, defaults.Scan)
	result.Similarity = mergeSimilarityConfig(loaded.Similarity, defaults.Similarity)

	if len(loaded.FeatureRules) > 0 {
		result.FeatureRules = loaded.FeatureRules
	} else {
		result.FeatureRules = defaults.FeatureRules
	}

	if len(loaded.Placeholders) > 0 {
		result.Placeholders = loaded.Placeholders
	} else {
		result.Placeholders = defaults.Placeholders
	}

	return result
}

func mergeScanConfig(loaded, defaults ScanConfig) ScanConfig {
	result := ScanConfig{}

	if len(loaded.IncludeExtensions) > 0 {
		result.IncludeExtensions = loaded.IncludeExtensions
	} else {
		result.IncludeExtensions = defaults.IncludeExtensions
	}

	if len(loaded.ExcludeSubstrings) > 0 {
		result.ExcludeSubstrings = loaded.ExcludeSubstrings
	} else {
		result.ExcludeSubstrings = defaults.ExcludeSubstrings
	}

	// Workers: zero means "use NumCPU", so loaded zero falls through.
	if loaded.Workers != 0 {
		result.Workers = loaded.Workers
	} else {
		result.Workers = defaults.Workers
	}

	if loaded.FileTimeoutSeconds != 0 {
		result.FileTimeoutSeconds = loaded.FileTimeoutSeconds
	} else {
		result.FileTimeoutSeconds = defaults.FileTimeoutSeconds
	}

	return result
}

func mergeSimilarityConfig(loaded, defaults SimilarityConfig) SimilarityConfig {
	result := SimilarityConfig{}

	// Weights are all-or-nothing: a partially specified weight set would
	// silently fail the sum-to-1 validation with a confusing value.
	if loaded.Weights != (Weights{}) {
		result.Weights = loaded.Weights
	} else {
		result.Weights = defaults.Weights
	}

	if loaded.ReportingFloor != 0 {
		result.ReportingFloor = loaded.ReportingFloor
	} else {
		result.ReportingFloor = defaults.ReportingFloor
	}

	if loaded.DuplicateThreshold != 0 {
		result.DuplicateThreshold = loaded.DuplicateThreshold
	} else {
		result.DuplicateThreshold = defaults.DuplicateThreshold
	}

	if loaded.ReviewThreshold != 0 {
		result.ReviewThreshold = loaded.ReviewThreshold
	} else {
		result.ReviewThreshold = defaults.ReviewThreshold
	}

	if len(loaded.SuffixTokens) > 0 {
		result.SuffixTokens = loaded.SuffixTokens
	} else {
		result.SuffixTokens = defaults.SuffixTokens
	}

	return result
}
