package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrorType classifies why a job could not produce its output file.
type ErrorType int

const (
	ErrFileNotFound ErrorType = iota + 1
	ErrFileRead
	ErrFileWrite
	ErrValidation
	ErrConfig
	ErrCancelled
	ErrInternal
)

var errorTypeNames = map[ErrorType]string{
	ErrFileNotFound: "FileNotFound",
	ErrFileRead:     "FileRead",
	ErrFileWrite:    "FileWrite",
	ErrValidation:   "Validation",
	ErrConfig:       "Config",
	ErrCancelled:    "Cancelled",
	ErrInternal:     "Internal",
}

var hints = map[ErrorType]string{
	ErrFileNotFound: "check the path; the file may have been moved since it was queued",
	ErrFileRead:     "make sure the file is a readable, well-formed .srt",
	ErrFileWrite:    "make sure the directory of the source file is writable",
	ErrValidation:   "languages must be one of `srt-translator languages` and batch size at least 1",
	ErrConfig:       "check the config file and SRT_* environment variables",
	ErrCancelled:    "the run stopped before the file was saved; run it again",
}

func (t ErrorType) String() string {
	if name, ok := errorTypeNames[t]; ok {
		return name
	}
	return "Unknown"
}

// TransError is a job failure together with the values it concerns.
type TransError struct {
	Type    ErrorType
	Message string
	Context map[string]any
	Cause   error
}

func NewError(errorType ErrorType, message string) *TransError {
	return &TransError{Type: errorType, Message: message}
}

func WrapError(err error, errorType ErrorType, message string) *TransError {
	return &TransError{Type: errorType, Message: message, Cause: err}
}

func (e *TransError) WithContext(key string, value any) *TransError {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// Error renders "[Type] message | context: k=v | cause: ...", context keys sorted.
func (e *TransError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", e.Type, e.Message)

	if len(e.Context) > 0 {
		keys := make([]string, 0, len(e.Context))
		for k := range e.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteString(" | context: ")
		for i, k := range keys {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s=%v", k, e.Context[k])
		}
	}

	if e.Cause != nil {
		fmt.Fprintf(&b, " | cause: %v", e.Cause)
	}
	return b.String()
}

func (e *TransError) Unwrap() error {
	return e.Cause
}

func IsErrorType(err error, errorType ErrorType) bool {
	var te *TransError
	return errors.As(err, &te) && te.Type == errorType
}

// Hint returns what the user can do about err, or "" when there is nothing
// specific to suggest.
func Hint(err error) string {
	var te *TransError
	if !errors.As(err, &te) {
		return ""
	}
	return hints[te.Type]
}

// SafeExecute runs fn and turns a panic into an ErrInternal failure.
func SafeExecute(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = NewError(ErrInternal, fmt.Sprintf("runtime error: %v", r))
		}
	}()

	return fn()
}
