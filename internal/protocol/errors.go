package protocol

import (
	"errors"
	"fmt"
)

const (
	// Frame boundaries: missing or unexpected sentinel line.
	CodeFraming = "E_FRAMING"

	// Payload content.
	CodeDecode         = "E_DECODE"
	CodeUnknownVariant = "E_UNKNOWN_VARIANT"
	CodeCardinality    = "E_CARDINALITY"

	// Transport deadline expired. Recoverable only by restarting the transport.
	CodeTimeout = "E_TIMEOUT"
)

var (
	ErrFraming        = errors.New("framing error")
	ErrDecode         = errors.New("decode error")
	ErrUnknownVariant = errors.New("unknown variant")
	ErrCardinality    = errors.New("cardinality mismatch")
	ErrTimeout        = errors.New("transport timeout")
)

var knownCodes = map[string]error{
	CodeFraming:        ErrFraming,
	CodeDecode:         ErrDecode,
	CodeUnknownVariant: ErrUnknownVariant,
	CodeCardinality:    ErrCardinality,
	CodeTimeout:        ErrTimeout,
}

func IsKnownCode(code string) bool {
	_, ok := knownCodes[code]
	return ok
}

// Error is a protocol failure. Op names where it happened, e.g. "ships[3].health".
type Error struct {
	Code string
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%s: %v", e.Code, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Code, e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the sentinel for the error's code, so errors.Is(err, ErrDecode)
// works on any *Error carrying CodeDecode.
func (e *Error) Is(target error) bool {
	s, ok := knownCodes[e.Code]
	return ok && s == target
}

func newf(code, op, format string, args ...any) *Error {
	return &Error{Code: code, Op: op, Err: fmt.Errorf(format, args...)}
}

func Framingf(op, format string, args ...any) error {
	return newf(CodeFraming, op, format, args...)
}

func Decodef(op, format string, args ...any) error {
	return newf(CodeDecode, op, format, args...)
}

func UnknownVariantf(op, format string, args ...any) error {
	return newf(CodeUnknownVariant, op, format, args...)
}

func Cardinalityf(op, format string, args ...any) error {
	return newf(CodeCardinality, op, format, args...)
}

func Timeout(op string, err error) error {
	return &Error{Code: CodeTimeout, Op: op, Err: err}
}

// CodeOf returns the protocol code carried by err, or "" for foreign errors.
func CodeOf(err error) string {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Code
	}
	return ""
}

// Within prefixes the Op of a protocol error with scope ("ships[2]" + "health"
// becomes "ships[2].health"). Other errors pass through unchanged.
func Within(scope string, err error) error {
	var pe *Error
	if !errors.As(err, &pe) {
		return err
	}
	op := scope
	if pe.Op != "" {
		op = scope + "." + pe.Op
	}
	return &Error{Code: pe.Code, Op: op, Err: pe.Err}
}
