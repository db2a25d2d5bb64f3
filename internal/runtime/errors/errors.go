package errors

import (
	"fmt"

	sterrors "errors"
)

var (
	ErrConfigRequired       = sterrors.New("schemaflow: configuration is required")
	ErrLoggerRequired       = sterrors.New("schemaflow: logger is required")
	ErrIndexRequired        = sterrors.New("schemaflow: symbol index is required")
	ErrDeclarationsRequired = sterrors.New("schemaflow: declaration set is required")
	ErrResolverRequired     = sterrors.New("schemaflow: property resolver is required")
	ErrPublisherRequired    = sterrors.New("schemaflow: publisher is required")
	ErrChannelRequired      = sterrors.New("schemaflow: channel name is required")
	ErrPayloadRequired      = sterrors.New("schemaflow: message payload is required")
)

// ConfigValidationError wraps configuration problems that must block startup.
// The wrapped error names the exact property or field the user has to fix.
type ConfigValidationError struct {
	Err error
}

func (e ConfigValidationError) Error() string {
	return fmt.Sprintf("schemaflow: invalid configuration: %v", e.Err)
}

func (e ConfigValidationError) Unwrap() error {
	return e.Err
}

// NewConfigValidationError wraps err in a ConfigValidationError. A nil err
// returns nil.
func NewConfigValidationError(err error) error {
	if err == nil {
		return nil
	}
	return ConfigValidationError{Err: err}
}
