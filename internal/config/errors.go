package config

import "fmt"

// RuleConfigError reports a single invalid rule in a rule table, typically
// a regex that failed to compile. The rule is skipped; other rules in the
// table continue to operate.
type RuleConfigError struct {
	Rule string
	Err  error
}

// Error implements the error interface.
func (e *RuleConfigError) Error() string {
	return fmt.Sprintf("invalid rule %q: %v", e.Rule, e.Err)
}

// Unwrap returns the underlying error.
func (e *RuleConfigError) Unwrap() error {
	return e.Err
}
