package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// AppError carries a machine-readable code alongside the message. Op, when
// set, names the statistical operation that rejected its input.
type AppError struct {
	Code    string
	Op      string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	msg := e.Message
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Cause != nil {
		return msg + ": " + e.Cause.Error()
	}
	return msg
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func New(code, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Wrap adds context to err. The code of the innermost AppError survives, so a
// precondition failure stays one however many layers report it.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return &AppError{Code: codeOr(err, CodeInternalError), Message: message, Cause: err}
}

func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// GetCode returns the code of the first AppError in the chain, or "UNKNOWN"
func GetCode(err error) string {
	return codeOr(err, "UNKNOWN")
}

func codeOr(err error, fallback string) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return fallback
}

const (
	CodeConfigInvalid = "CONFIG_INVALID"
	CodeInternalError = "INTERNAL_ERROR"
	CodeInvalidInput  = "INVALID_INPUT"
	CodeNotFound      = "NOT_FOUND"
	CodePrecondition  = "PRECONDITION_FAILED"
)

var httpStatus = map[string]int{
	CodePrecondition: http.StatusUnprocessableEntity,
	CodeInvalidInput: http.StatusBadRequest,
	CodeNotFound:     http.StatusNotFound,
}

// HTTPStatus maps the code of err to a response status; unmapped codes are 500
func HTTPStatus(err error) int {
	if status, ok := httpStatus[GetCode(err)]; ok {
		return status
	}
	return http.StatusInternalServerError
}

func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

func InvalidInput(message string) *AppError {
	return New(CodeInvalidInput, message)
}

// NotFound wraps a sentinel such as core.ErrDeploymentNotFound so errors.Is
// still matches it
func NotFound(cause error, id string) *AppError {
	return &AppError{Code: CodeNotFound, Message: id, Cause: cause}
}

// Precondition reports that op was called with arguments outside its
// mathematical domain. The message reads "op: reason".
func Precondition(op, format string, args ...interface{}) *AppError {
	return &AppError{Code: CodePrecondition, Op: op, Message: fmt.Sprintf(format, args...)}
}

func IsPrecondition(err error) bool {
	return GetCode(err) == CodePrecondition
}
