package errors

import (
	"errors"
	"testing"
)

func TestSentinelErrors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantMsg string
	}{
		{"ErrConfigRequired", ErrConfigRequired, "schemaflow: configuration is required"},
		{"ErrLoggerRequired", ErrLoggerRequired, "schemaflow: logger is required"},
		{"ErrIndexRequired", ErrIndexRequired, "schemaflow: symbol index is required"},
		{"ErrDeclarationsRequired", ErrDeclarationsRequired, "schemaflow: declaration set is required"},
		{"ErrResolverRequired", ErrResolverRequired, "schemaflow: property resolver is required"},
		{"ErrPublisherRequired", ErrPublisherRequired, "schemaflow: publisher is required"},
		{"ErrChannelRequired", ErrChannelRequired, "schemaflow: channel name is required"},
		{"ErrPayloadRequired", ErrPayloadRequired, "schemaflow: message payload is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", got, tt.wantMsg)
			}
		})
	}
}

func TestConfigValidationError(t *testing.T) {
	inner := errors.New("watermill-kafka.registry.url must be set")
	err := ConfigValidationError{Err: inner}

	want := "schemaflow: invalid configuration: watermill-kafka.registry.url must be set"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	if unwrapped := err.Unwrap(); unwrapped != inner {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, inner)
	}
}

func TestNewConfigValidationError(t *testing.T) {
	t.Run("nil error returns nil", func(t *testing.T) {
		if err := NewConfigValidationError(nil); err != nil {
			t.Errorf("NewConfigValidationError(nil) = %v, want nil", err)
		}
	})

	t.Run("errors.As and errors.Is see through the wrapper", func(t *testing.T) {
		inner := errors.New("bad port")
		err := NewConfigValidationError(inner)

		var cfgErr ConfigValidationError
		if !errors.As(err, &cfgErr) {
			t.Fatalf("expected ConfigValidationError, got %T", err)
		}
		if !errors.Is(err, inner) {
			t.Error("errors.Is should match the wrapped error")
		}
	})
}
