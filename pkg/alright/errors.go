package alright

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidDate reports a malformed or out-of-range date.
	ErrInvalidDate = errors.New("invalid date")
	// ErrUnknownCategory reports a dish category string outside the known table.
	ErrUnknownCategory = errors.New("unknown dish category")
	// ErrUnknownStatus reports an order status string outside the known set.
	ErrUnknownStatus = errors.New("unknown order status")
	// ErrMalformedBody reports a body that does not follow the expected shape.
	ErrMalformedBody = errors.New("malformed body")
	// ErrNoDishes is returned when an order names no dishes.
	ErrNoDishes = errors.New("order requires at least one dish id")
	// ErrMissingID is returned when a required identifier is empty.
	ErrMissingID = errors.New("identifier is empty")
	// ErrInvalidID is returned when an identifier contains list delimiters or spaces.
	ErrInvalidID = errors.New("identifier contains a reserved character")
)

// DecodeError wraps a failure to decode a response body.
type DecodeError struct {
	Op   string
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("decode %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("decode %s (%s): %v", e.Op, e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
