package errors

import (
	stderrors "errors"
	"fmt"
	"path/filepath"
	"runtime"
)

// AppError represents a structured pipeline error
type AppError struct {
	Code     string
	Message  string
	Op       string
	Location string
	Cause    error
}

func (e *AppError) Error() string {
	msg := e.Message
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Location != "" {
		msg = fmt.Sprintf("%s [%s]", msg, e.Location)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:     code,
		Message:  message,
		Location: caller(2),
	}
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return &AppError{
			Code:     appErr.Code,
			Message:  message,
			Location: caller(2),
			Cause:    err,
		}
	}
	return &AppError{
		Code:     CodeInternalError,
		Message:  message,
		Location: caller(2),
		Cause:    err,
	}
}

// Wrapf wraps an error with formatted additional context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	code := CodeInternalError
	if stderrors.As(err, &appErr) {
		code = appErr.Code
	}
	return &AppError{
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Location: caller(2),
		Cause:    err,
	}
}

// WithCode adds an error code to an existing error
func WithCode(code string, err error) error {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return &AppError{
			Code:     code,
			Message:  appErr.Message,
			Op:       appErr.Op,
			Location: appErr.Location,
			Cause:    appErr.Cause,
		}
	}
	return &AppError{
		Code:     code,
		Message:  err.Error(),
		Location: caller(2),
		Cause:    err,
	}
}

// Stage wraps a failure at a stage boundary, keeping the inner code.
func Stage(stage string, err error) error {
	if err == nil {
		return nil
	}
	code := GetCode(err)
	if code == CodeUnknown {
		code = CodeInternalError
	}
	return &AppError{
		Code:     code,
		Message:  "stage failed",
		Op:       stage,
		Location: caller(2),
		Cause:    err,
	}
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// GetCode returns the code of the outermost AppError in the chain, otherwise "UNKNOWN"
func GetCode(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeUnknown
}

// Is reports whether any AppError in the chain carries code.
func Is(err error, code string) bool {
	for err != nil {
		if appErr, ok := err.(*AppError); ok && appErr.Code == code {
			return true
		}
		err = stderrors.Unwrap(err)
	}
	return false
}

// Predefined error codes
const (
	CodeSourceRead    = "SOURCE_READ"
	CodeSchema        = "SCHEMA"
	CodeFit           = "FIT"
	CodeSerialization = "SERIALIZATION"
	CodeConfigInvalid = "CONFIG_INVALID"
	CodeInternalError = "INTERNAL_ERROR"
	CodeUnknown       = "UNKNOWN"
)

// SourceRead reports a missing, unreadable or unparseable table file.
func SourceRead(op string, cause error) *AppError {
	return newOp(CodeSourceRead, op, "cannot read source table", cause)
}

// Schema reports a declared column absent from a loaded table.
func Schema(op string, cause error) *AppError {
	return newOp(CodeSchema, op, "schema mismatch", cause)
}

// Fit reports a sub-pipeline that cannot learn or apply its parameters.
func Fit(op string, cause error) *AppError {
	return newOp(CodeFit, op, "fit failed", cause)
}

// Serialization reports a transformer that cannot be written or read.
func Serialization(op string, cause error) *AppError {
	return newOp(CodeSerialization, op, "serialization failed", cause)
}

func ConfigInvalid(message string) *AppError {
	e := New(CodeConfigInvalid, message)
	e.Location = caller(2)
	return e
}

func newOp(code, op, message string, cause error) *AppError {
	return &AppError{
		Code:     code,
		Message:  message,
		Op:       op,
		Location: caller(3),
		Cause:    cause,
	}
}

// caller returns "file.go:line" for the frame skip levels above caller itself.
func caller(skip int) string {
	_, file, line, ok := runtime.Caller(skip)
	if !ok {
		return ""
	}
	return fmt.Sprintf("%s:%d", filepath.Base(file), line)
}
