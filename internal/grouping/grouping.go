// Package grouping buckets corpus files into identity groups and scores
// pairwise similarity within each group.
//
// The identity key mirrors how humans name iterative variants of the same
// script: version and qualifier suffixes are stripped from the base name,
// and numbered "stepNN" scripts collapse into one bucket. The heuristic is
// intentionally approximate; it may over- or under-group, and the token
// list is configuration, not a constant.
package grouping

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/hargabyte/sift/internal/feature"
	"github.com/hargabyte/sift/internal/fingerprint"
)

// stepBucket is the shared identity key for numbered step scripts
// (step07_bootstrap.py, step12_validate.py, ...).
const stepBucket = "step_framework"

// KeyNormalizer derives identity-group keys from file names.
type KeyNormalizer struct {
	// tokens sorted longest first so greedy stripping prefers the most
	// specific suffix ("_enhanced" before "_v2" would otherwise never
	// matter, but "_final_v2" style stacking does).
	tokens []string
}

// NewKeyNormalizer builds a normalizer for the configured suffix tokens.
func NewKeyNormalizer(suffixTokens []string) *KeyNormalizer {
	tokens := make([]string, len(suffixTokens))
	copy(tokens, suffixTokens)
	sort.Slice(tokens, func(i, j int) bool {
		if len(tokens[i]) != len(tokens[j]) {
			return len(tokens[i]) > len(tokens[j])
		}
		return tokens[i] < tokens[j]
	})
	return &KeyNormalizer{tokens: tokens}
}

// Key returns the identity-group key for a file path.
// Suffix tokens are stripped repeatedly, longest match first, so stacked
// qualifiers ("report_final_v2.py") normalize all the way down.
func (n *KeyNormalizer) Key(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))

	stripped := true
	for stripped && base != "" {
		stripped = false
		for _, tok := range n.tokens {
			if tok != "" && strings.HasSuffix(base, tok) && len(base) > len(tok) {
				base = base[:len(base)-len(tok)]
				stripped = true
				break
			}
		}
	}

	if isStepScript(base) {
		return stepBucket
	}

	return base
}

// isStepScript reports whether the name follows the stepNN prefix pattern.
func isStepScript(name string) bool {
	if !strings.HasPrefix(name, "step") || len(name) < 5 {
		return false
	}
	return name[4] >= '0' && name[4] <= '9'
}

// Member pairs a file record with its extracted features for comparison.
type Member struct {
	Record   *fingerprint.FileRecord
	Features *feature.FeatureSet
}

// BuildGroups buckets members by identity key. Members within a bucket are
// sorted by path so downstream pair enumeration is deterministic regardless
// of scan order.
func BuildGroups(members []Member, n *KeyNormalizer) map[string][]Member {
	groups := make(map[string][]Member)
	for _, m := range members {
		key := n.Key(m.Record.Path)
		groups[key] = append(groups[key], m)
	}
	for key := range groups {
		sort.Slice(groups[key], func(i, j int) bool {
			return groups[key][i].Record.Path < groups[key][j].Record.Path
		})
	}
	return groups
}
