package errorx

import (
	"errors"
	"fmt"
)

type Error struct {
	Code    Code
	Message string
}

func New(code Code, format string, a ...any) Error {
	return Error{Code: code, Message: fmt.Sprintf(format, a...)}
}

func (e Error) Error() string {
	return e.Message
}

// Is matches two errorx.Error by their code, so errors.Is(err, errorx.Error{Code: NotFound})
// reports any not found error regardless of its message.
func (e Error) Is(target error) bool {
	var t Error
	if !errors.As(target, &t) {
		return false
	}

	return e.Code == t.Code
}

// CodeOf returns the code of err if it is an errorx.Error, otherwise the code of Unknown.
func CodeOf(err error) Code {
	var errx Error
	if errors.As(err, &errx) {
		return errx.Code
	}

	return Unknown.Code
}
