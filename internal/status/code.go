// internal/status/code.go
package status

import (
	"context"
	"errors"

	"github.com/tamzrod/register-poller/internal/planner"
	"github.com/tamzrod/register-poller/internal/poller"
	"github.com/tamzrod/register-poller/internal/schema"
)

// Code extracts a stable uint16 code from an error without assuming concrete
// transport types. Errors exposing Code() uint16 pass through verbatim.
// If nothing matches, returns CodeGeneric.
func Code(err error) uint16 {
	if err == nil {
		return CodeNone
	}

	type coder interface{ Code() uint16 }
	type exceptionCoder interface{ ExceptionCode() uint8 }

	var c coder
	if errors.As(err, &c) {
		return c.Code()
	}
	var ex exceptionCoder
	if errors.As(err, &ex) {
		return CodeExceptionBase | uint16(ex.ExceptionCode())
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return CodeTimeout
	case errors.Is(err, context.Canceled):
		return CodeCancelled
	case errors.Is(err, planner.ErrInternal):
		return CodeInternal
	case errors.Is(err, planner.ErrEmptyRequest):
		return CodeEmptyRequest
	case errors.Is(err, schema.ErrInvalidSchema):
		return CodeInvalidSchema
	case errors.Is(err, schema.ErrUnknownAddress):
		return CodeUnknownAddress
	}

	var tf *poller.TransportFailure
	if errors.As(err, &tf) {
		return CodeTransport
	}
	return CodeGeneric
}
