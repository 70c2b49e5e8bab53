package textbuffer

import "github.com/inkwell-editor/piecetable/internal/piece"

// InvalidArgumentError reports out-of-range addressing: a line index
// outside [0, line_count), a malformed range, or a bad EOL string. It is
// an alias of the piece engine's error type so callers can use a single
// errors.As check regardless of which layer raised it.
type InvalidArgumentError = piece.InvalidArgumentError

// InternalError reports an invariant violation inside the piece engine.
// It indicates a bug, not caller misuse; callers should not attempt
// recovery.
type InternalError = piece.InternalError

func newInvalidArgument(op string, value any, want string) error {
	return &InvalidArgumentError{Op: op, Value: value, Want: want}
}
