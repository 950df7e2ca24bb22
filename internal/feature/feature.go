// Package feature derives structural feature sets from file content.
//
// Extraction is a pure function of content bytes: an ordered list of rules,
// each contributing matches to one of four feature sets (functions, classes,
// imports, markers). Rules are independent; a rule that fails on a given
// input contributes an empty set for that input only. Because outputs are
// sets, rule order never affects the result.
package feature

import (
	"regexp"
	"strings"

	"github.com/hargabyte/sift/internal/config"
)

// Feature kinds. Each rule feeds exactly one.
const (
	KindFunction = "function"
	KindClass    = "class"
	KindImport   = "import"
	KindMarker   = "marker"
)

// Set holds one kind of extracted feature values.
type Set map[string]bool

// FeatureSet holds all structural features extracted from one file's
// content. Immutable once computed for a given content hash: equal content
// always yields equal features.
type FeatureSet struct {
	Functions Set
	Classes   Set
	Imports   Set
	Markers   Set
}

// NewFeatureSet returns an empty FeatureSet with all sets allocated.
func NewFeatureSet() *FeatureSet {
	return &FeatureSet{
		Functions: make(Set),
		Classes:   make(Set),
		Imports:   make(Set),
		Markers:   make(Set),
	}
}

// add records a value under the given kind, discarding blanks.
func (fs *FeatureSet) add(kind, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	switch kind {
	case KindFunction:
		fs.Functions[value] = true
	case KindClass:
		fs.Classes[value] = true
	case KindImport:
		fs.Imports[value] = true
	case KindMarker:
		fs.Markers[value] = true
	}
}

// Total returns the number of feature values across all kinds.
func (fs *FeatureSet) Total() int {
	return len(fs.Functions) + len(fs.Classes) + len(fs.Imports) + len(fs.Markers)
}

// rule pairs a label and target kind with a matcher implementation.
type rule struct {
	label   string
	kind    string
	matcher matcher
}

// Extractor applies a compiled, ordered rule table to file content.
type Extractor struct {
	rules []rule
}

// NewExtractor compiles the configured rule table. Rules that fail to
// compile are skipped and reported as *config.RuleConfigError values;
// the remaining rules operate normally.
func NewExtractor(cfgRules []config.FeatureRule) (*Extractor, []error) {
	var rules []rule
	var ruleErrs []error

	for _, cr := range cfgRules {
		m, err := newMatcher(cr)
		if err != nil {
			ruleErrs = append(ruleErrs, &config.RuleConfigError{Rule: cr.Label, Err: err})
			continue
		}
		rules = append(rules, rule{label: cr.Label, kind: cr.Kind, matcher: m})
	}

	return &Extractor{rules: rules}, ruleErrs
}

// Extract derives the feature set for the given content. It performs no
// I/O and has no side effects. A rule's runtime failure (for example a
// Python source the AST matcher cannot parse) degrades to an empty
// contribution from that rule; extraction itself never fails.
func (e *Extractor) Extract(content []byte) *FeatureSet {
	fs := NewFeatureSet()

	mc := newMatchContext(content)
	defer mc.close()

	for _, r := range e.rules {
		values, err := r.matcher.match(mc)
		if err != nil {
			continue
		}
		for _, v := range values {
			fs.add(r.kind, v)
		}
	}

	return fs
}

// regexMatcher extracts the first capture group of each match, or the
// whole match when the pattern has no groups.
type regexMatcher struct {
	re *regexp.Regexp
}

func (m *regexMatcher) match(mc *matchContext) ([]string, error) {
	matches := m.re.FindAllSubmatch(mc.content, -1)
	values := make([]string, 0, len(matches))
	for _, sub := range matches {
		if len(sub) > 1 && sub[1] != nil {
			values = append(values, string(sub[1]))
		} else {
			values = append(values, string(sub[0]))
		}
	}
	return values, nil
}

// newMatcher builds the matcher implementation selected by the rule.
func newMatcher(cr config.FeatureRule) (matcher, error) {
	switch cr.Matcher {
	case "", "regex":
		re, err := regexp.Compile(cr.Pattern)
		if err != nil {
			return nil, err
		}
		return &regexMatcher{re: re}, nil
	case "python_functions":
		return &pythonMatcher{nodeType: "function_definition"}, nil
	case "python_classes":
		return &pythonMatcher{nodeType: "class_definition"}, nil
	case "python_imports":
		return &pythonImportMatcher{}, nil
	default:
		return nil, &unknownMatcherError{Matcher: cr.Matcher}
	}
}
