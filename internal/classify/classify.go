// Package classify turns similarity scores into redundancy verdicts.
package classify

// Verdict is the tri-state outcome for a scored file pair.
type Verdict string

const (
	VerdictDuplicate   Verdict = "DUPLICATE"
	VerdictVariant     Verdict = "VARIANT"
	VerdictIndependent Verdict = "INDEPENDENT"
)

// Action is the recommendation attached to a verdict.
type Action string

const (
	ActionRemoveRedundant Action = "REMOVE_REDUNDANT"
	ActionReviewVariation Action = "REVIEW_VARIATION"
	ActionNone            Action = "NO_ACTION"
)

// Classify maps a score onto a verdict using the two configured
// thresholds. Thresholds are validated at config load so dupThreshold >
// reviewThreshold always holds here.
func Classify(score, dupThreshold, reviewThreshold float64) Verdict {
	switch {
	case score >= dupThreshold:
		return VerdictDuplicate
	case score >= reviewThreshold:
		return VerdictVariant
	default:
		return VerdictIndependent
	}
}

// Recommend returns the action for a verdict. Duplicates recommend
// removing the secondary file; variants are flagged for manual review.
func Recommend(v Verdict) Action {
	switch v {
	case VerdictDuplicate:
		return ActionRemoveRedundant
	case VerdictVariant:
		return ActionReviewVariation
	default:
		return ActionNone
	}
}
