package engine

import (
	"errors"
	"fmt"
)

// ValidationError rejects malformed request parameters. It is the only error
// kind in this subsystem that surfaces to the caller; everything else is
// recovered internally with a documented fallback.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid request: %s", e.Reason)
}

// IsValidationError reports whether err is a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
