package reconcile

import "fmt"

// LoadError reports a topology that could not be loaded. Err may wrap a
// *model.InconsistencyError.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load topology model %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }
