package formstruct

import (
	"errors"
	"fmt"
)

// NoContentError indicates the block graph contains no WORD blocks at all.
// Nothing can be reconstructed from such a graph.
type NoContentError struct{}

func (e *NoContentError) Error() string {
	return "no WORD blocks found in block graph"
}

// NoRowsError indicates that words exist but no row grouping succeeded
// under the attempted strategy.
type NoRowsError struct {
	Strategy RowStrategy
}

func (e *NoRowsError) Error() string {
	return fmt.Sprintf("no rows produced by %s row extraction", e.Strategy)
}

// UnknownFormError indicates classification succeeded but the form does not
// match the expected layout (header zone or data zone is empty). A caller may
// retry with an alternate row-extraction strategy before reporting the form
// as unrecognized.
type UnknownFormError struct {
	Reason string
}

func (e *UnknownFormError) Error() string {
	return fmt.Sprintf("unknown form: %s", e.Reason)
}

// isDecline reports whether err is one of the engine's typed failures,
// meaning the processor declined the form rather than hitting an
// unexpected condition.
func isDecline(err error) bool {
	var noContent *NoContentError
	var noRows *NoRowsError
	var unknown *UnknownFormError
	return errors.As(err, &noContent) || errors.As(err, &noRows) || errors.As(err, &unknown)
}
