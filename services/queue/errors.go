package queue

import (
	"errors"
	"fmt"
)

// Error codes for the validation failures a caller can recover from. The HTTP
// layer translates them into 4xx responses; anything else is a storage fault.
const (
	CodeNotFound             = "notFound"
	CodeInvalidTransition    = "invalidTransition"
	CodeConflict             = "conflict"
	CodeScopeMismatch        = "scopeMismatch"
	CodePaymentRequired      = "paymentRequired"
	CodeDuplicateActiveEntry = "duplicateActiveEntry"
)

type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func newError(code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// IsCode reports whether err is a queue Error with the given code.
func IsCode(err error, code string) bool {
	var qerr *Error
	return errors.As(err, &qerr) && qerr.Code == code
}
