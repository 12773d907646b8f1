package appointment

import (
	"errors"
	"fmt"
)

// Error codes for validation failures surfaced to the HTTP layer.
const (
	CodeNotFound          = "notFound"
	CodeInvalidTransition = "invalidTransition"
	CodeSlotConflict      = "slotConflict"
	CodePaymentRequired   = "paymentRequired"
	CodeInvalidSchedule   = "invalidSchedule"
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

// IsCode reports whether err is an appointment Error with the given code.
func IsCode(err error, code string) bool {
	var aerr *Error
	return errors.As(err, &aerr) && aerr.Code == code
}
