package feature

import (
	"testing"

	"github.com/hargabyte/sift/internal/config"
)

const sampleScript = `#!/usr/bin/env python3
"""ENTERPRISE deployment helper."""
import os
import sqlite3 as sql
from pathlib import Path

class DeploymentAnalyzer:
    def analyze(self):
        pass

def main():
    # DUAL COPILOT pattern
    analyzer = DeploymentAnalyzer()
    analyzer.analyze()
`

func defaultExtractor(t *testing.T) *Extractor {
	t.Helper()
	ex, ruleErrs := NewExtractor(config.DefaultFeatureRules())
	if len(ruleErrs) != 0 {
		t.Fatalf("default rules must compile cleanly: %v", ruleErrs)
	}
	return ex
}

func TestExtractDefaultRules(t *testing.T) {
	ex := defaultExtractor(t)
	fs := ex.Extract([]byte(sampleScript))

	for _, fn := range []string{"analyze", "main"} {
		if !fs.Functions[fn] {
			t.Errorf("expected function %q in %v", fn, fs.Functions)
		}
	}

	if !fs.Classes["DeploymentAnalyzer"] {
		t.Errorf("expected class DeploymentAnalyzer in %v", fs.Classes)
	}

	for _, imp := range []string{"os", "sqlite3", "pathlib"} {
		if !fs.Imports[imp] {
			t.Errorf("expected import %q in %v", imp, fs.Imports)
		}
	}

	for _, marker := range []string{"ENTERPRISE", "DUAL COPILOT"} {
		if !fs.Markers[marker] {
			t.Errorf("expected marker %q in %v", marker, fs.Markers)
		}
	}
}

func TestExtractIsPure(t *testing.T) {
	ex := defaultExtractor(t)

	first := ex.Extract([]byte(sampleScript))
	second := ex.Extract([]byte(sampleScript))

	if first.Total() != second.Total() {
		t.Fatalf("repeat extraction differs: %d vs %d features", first.Total(), second.Total())
	}
	for fn := range first.Functions {
		if !second.Functions[fn] {
			t.Errorf("function %q missing on repeat extraction", fn)
		}
	}
}

func TestExtractRuleOrderDoesNotMatter(t *testing.T) {
	rules := config.DefaultFeatureRules()
	reversed := make([]config.FeatureRule, len(rules))
	for i, r := range rules {
		reversed[len(rules)-1-i] = r
	}

	exA, _ := NewExtractor(rules)
	exB, _ := NewExtractor(reversed)

	a := exA.Extract([]byte(sampleScript))
	b := exB.Extract([]byte(sampleScript))

	if a.Total() != b.Total() {
		t.Fatalf("rule order changed output: %d vs %d features", a.Total(), b.Total())
	}
	for _, pair := range []struct{ got, want Set }{
		{a.Functions, b.Functions},
		{a.Classes, b.Classes},
		{a.Imports, b.Imports},
		{a.Markers, b.Markers},
	} {
		for v := range pair.want {
			if !pair.got[v] {
				t.Errorf("value %q present in one order but not the other", v)
			}
		}
	}
}

func TestExtractMalformedPythonDegradesToRegexRules(t *testing.T) {
	ex := defaultExtractor(t)

	// Not valid Python, but the line-oriented regex rules still apply.
	fs := ex.Extract([]byte("def orphan():\nclass Broken(::\n"))

	if !fs.Functions["orphan"] {
		t.Errorf("regex rule should still find orphan, got %v", fs.Functions)
	}
}

func TestExtractEmptyContent(t *testing.T) {
	ex := defaultExtractor(t)
	fs := ex.Extract(nil)

	if fs.Total() != 0 {
		t.Errorf("expected no features for empty content, got %d", fs.Total())
	}
}

func TestNewExtractorSkipsBadRuleOnly(t *testing.T) {
	rules := []config.FeatureRule{
		{Label: "broken", Kind: "function", Matcher: "regex", Pattern: "("},
		{Label: "good", Kind: "function", Matcher: "regex", Pattern: `def\s+(\w+)`},
	}

	ex, ruleErrs := NewExtractor(rules)
	if len(ruleErrs) != 1 {
		t.Fatalf("expected exactly 1 rule error, got %v", ruleErrs)
	}

	fs := ex.Extract([]byte("def working(): pass"))
	if !fs.Functions["working"] {
		t.Errorf("surviving rule should still extract, got %v", fs.Functions)
	}
}

func TestNewExtractorUnknownMatcher(t *testing.T) {
	rules := []config.FeatureRule{
		{Label: "mystery", Kind: "function", Matcher: "ruby_ast"},
	}

	_, ruleErrs := NewExtractor(rules)
	if len(ruleErrs) != 1 {
		t.Fatalf("expected 1 rule error for unknown matcher, got %v", ruleErrs)
	}
}
