// Package placeholder mines file content for literal values that are
// candidates for parameterization, such as hard-coded paths, versions,
// and IP addresses.
package placeholder

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/hargabyte/sift/internal/config"
	"github.com/hargabyte/sift/internal/fingerprint"
)

// Candidate is a single literal proposed for replacement with a
// placeholder. Its ID is stable across files and runs so repeated
// sightings of the same literal accumulate instead of duplicating.
type Candidate struct {
	ID             string
	RuleName       string
	Category       string
	Literal        string
	SourceFileHash string
	Confidence     float64
}

type rule struct {
	name       string
	category   string
	confidence float64
	pattern    *regexp.Regexp
}

// Detector applies a compiled rule table to file content.
type Detector struct {
	rules []rule
}

// NewDetector compiles the rule table. A rule whose regex does not
// compile or whose confidence is out of range is skipped and reported;
// the remaining rules still operate.
func NewDetector(rules []config.PlaceholderRule) (*Detector, []error) {
	d := &Detector{}
	var errs []error
	for _, r := range rules {
		if r.Confidence < 0 || r.Confidence > 1 {
			errs = append(errs, &config.RuleConfigError{
				Rule: r.Name,
				Err:  fmt.Errorf("confidence %.2f outside [0,1]", r.Confidence),
			})
			continue
		}
		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			errs = append(errs, &config.RuleConfigError{Rule: r.Name, Err: err})
			continue
		}
		d.rules = append(d.rules, rule{
			name:       r.Name,
			category:   r.Category,
			confidence: r.Confidence,
			pattern:    re,
		})
	}
	return d, errs
}

// Detect scans content against every rule and returns one candidate per
// distinct matched literal per rule. Rules may overlap: the same
// literal can yield a candidate under several rules. Whitespace-only
// matches are discarded.
func (d *Detector) Detect(content []byte, fileHash string) []Candidate {
	var out []Candidate
	for _, r := range d.rules {
		seen := make(map[string]bool)
		for _, m := range r.pattern.FindAllSubmatch(content, -1) {
			literal := string(m[0])
			if len(m) > 1 && m[1] != nil {
				literal = string(m[1])
			}
			literal = strings.TrimSpace(literal)
			if literal == "" || seen[literal] {
				continue
			}
			seen[literal] = true
			out = append(out, Candidate{
				ID:             candidateID(r.name, literal),
				RuleName:       r.name,
				Category:       r.category,
				Literal:        literal,
				SourceFileHash: fileHash,
				Confidence:     r.confidence,
			})
		}
	}
	return out
}

// candidateID derives a stable identifier from the rule name and the
// matched literal, independent of which file the literal appeared in.
func candidateID(ruleName, literal string) string {
	return ruleName + "-" + fingerprint.HashBytes([]byte(literal))[:8]
}
