package melodex

import (
	"errors"
	"fmt"
)

// Error types
var (
	// ErrAssetNotFound indicates no record exists for the requested id.
	ErrAssetNotFound = errors.New("asset not found")

	// ErrNotOwner indicates the caller's wallet does not own the record.
	ErrNotOwner = errors.New("ownership verification failed")

	// ErrMissingFields indicates a required upload field was absent.
	ErrMissingFields = errors.New("missing required fields")

	// ErrInvalidOwnerAddress indicates the owner wallet is not a 0x address.
	ErrInvalidOwnerAddress = errors.New("invalid owner address format")
)

// PipelineError wraps the failure of one step of the upload pipeline.
// Steps already completed are not compensated: pinned files stay pinned
// and a confirmed registration stays on chain.
type PipelineError struct {
	Step string
	Err  error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("upload step %q failed: %v", e.Step, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// StoreError represents a failure of an asset store operation.
type StoreError struct {
	Backend string
	Key     string
	Op      string
	Err     error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store operation %s failed for key %s on backend %s: %v", e.Op, e.Key, e.Backend, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
