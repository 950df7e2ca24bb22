package store

import "fmt"

// StoreError wraps a failed store operation with the stage that
// produced it, so a failed run can record where it broke.
type StoreError struct {
	Stage string
	Err   error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Stage, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
