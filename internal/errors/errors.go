// Package errors provides a hierarchical error system for tzcc operations.
// It implements typed errors that can be inspected and handled differently
// based on their category, so the command layer can report failures precisely.
package errors

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"path/filepath"
)

// ErrorType represents the category of error for classification and handling.
type ErrorType string

// Error type constants define the categories of failures a run can hit.
// Startup failures are file, config and parsing errors; input and lookup
// errors happen while records stream through the pipeline.
const (
	ErrTypeFile    ErrorType = "file"
	ErrTypeConfig  ErrorType = "config"
	ErrTypeParsing ErrorType = "parsing"
	ErrTypeInput   ErrorType = "input"
	ErrTypeLookup  ErrorType = "lookup"
)

// ToolError is the base error type that provides structured error information.
// Path names the file involved, if any, and Line is the 1-based line number
// within that file or within standard input. Zero means no line context.
type ToolError struct {
	Type    ErrorType
	Path    string
	Line    int
	Message string
	Cause   error
}

func (e *ToolError) Error() string {
	var location string
	switch {
	case e.Path != "" && e.Line > 0:
		location = fmt.Sprintf(" for %s:%d", e.Path, e.Line)
	case e.Path != "":
		location = " for " + e.Path
	case e.Line > 0:
		location = fmt.Sprintf(" at line %d", e.Line)
	}

	msg := fmt.Sprintf("%s error%s: %s", e.Type, location, e.Message)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *ToolError) toolError() *ToolError {
	return e
}

func (e *ToolError) Unwrap() error {
	return e.Cause
}

// Is implements error identity checking so errors.Is matches on category.
func (e *ToolError) Is(target error) bool {
	t, ok := target.(*ToolError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// Sentinels for errors.Is checks against a category.
var (
	ErrFile    = &ToolError{Type: ErrTypeFile}
	ErrConfig  = &ToolError{Type: ErrTypeConfig}
	ErrParsing = &ToolError{Type: ErrTypeParsing}
	ErrInput   = &ToolError{Type: ErrTypeInput}
	ErrLookup  = &ToolError{Type: ErrTypeLookup}
)

// FileError represents file system operation errors.
type FileError struct {
	*ToolError
}

// NewFileError creates a file operation error with context.
func NewFileError(path, message string, cause error) *FileError {
	return &FileError{
		ToolError: &ToolError{
			Type:    ErrTypeFile,
			Path:    path,
			Message: message,
			Cause:   cause,
		},
	}
}

// FileNotFoundError represents errors when files cannot be located.
type FileNotFoundError struct {
	*FileError
}

// NewFileNotFoundError creates a file not found error.
func NewFileNotFoundError(path string, cause error) *FileNotFoundError {
	return &FileNotFoundError{
		FileError: NewFileError(path, "file not found", cause),
	}
}

// FileNotReadableError represents errors when files exist but cannot be read.
type FileNotReadableError struct {
	*FileError
}

// NewFileNotReadableError creates a file read permission error.
func NewFileNotReadableError(path string, cause error) *FileNotReadableError {
	return &FileNotReadableError{
		FileError: NewFileError(path, "file not readable", cause),
	}
}

// ConfigError represents configuration validation and parsing errors.
// These halt execution before any table is loaded or input is read.
type ConfigError struct {
	*ToolError
}

// NewConfigError creates a configuration error without path context.
func NewConfigError(message string, cause error) *ConfigError {
	return &ConfigError{
		ToolError: &ToolError{
			Type:    ErrTypeConfig,
			Message: message,
			Cause:   cause,
		},
	}
}

// NewConfigErrorWithPath creates a configuration error tied to a file.
func NewConfigErrorWithPath(path, message string, cause error) *ConfigError {
	return &ConfigError{
		ToolError: &ToolError{
			Type:    ErrTypeConfig,
			Path:    path,
			Message: message,
			Cause:   cause,
		},
	}
}

// ParsingError represents malformed rows in the timezone database files.
type ParsingError struct {
	*ToolError
}

// NewParsingError creates a parsing error pointing at a line of a file.
func NewParsingError(path string, line int, message string, cause error) *ParsingError {
	return &ParsingError{
		ToolError: &ToolError{
			Type:    ErrTypeParsing,
			Path:    path,
			Line:    line,
			Message: message,
			Cause:   cause,
		},
	}
}

// InputError represents a malformed record on standard input.
type InputError struct {
	*ToolError
}

// NewInputError creates an input error for the given 1-based input line.
func NewInputError(line int, message string, cause error) *InputError {
	return &InputError{
		ToolError: &ToolError{
			Type:    ErrTypeInput,
			Line:    line,
			Message: message,
			Cause:   cause,
		},
	}
}

// LookupError represents a timezone name with no entry in the zone table.
type LookupError struct {
	*ToolError
	Zone string
}

// NewLookupError creates a lookup error for an unresolvable zone name.
func NewLookupError(zone string) *LookupError {
	return &LookupError{
		ToolError: &ToolError{
			Type:    ErrTypeLookup,
			Message: fmt.Sprintf("no country code for timezone %q", zone),
		},
		Zone: zone,
	}
}

// WrapFileError converts standard Go errors into typed ToolError instances.
func WrapFileError(path string, err error) error {
	if err == nil {
		return nil
	}

	absPath, absErr := filepath.Abs(path)
	if absErr != nil {
		absPath = path
	}
	switch {
	case stderrors.Is(err, fs.ErrNotExist):
		return NewFileNotFoundError(absPath, err)
	case stderrors.Is(err, fs.ErrPermission):
		return NewFileNotReadableError(absPath, err)
	default:
		return NewFileError(absPath, "file operation failed", err)
	}
}

// AsToolError finds the first ToolError in err's chain, looking through the
// typed wrappers (FileError, LookupError, ...) that embed it.
func AsToolError(err error) (*ToolError, bool) {
	var carrier interface{ toolError() *ToolError }
	if !stderrors.As(err, &carrier) {
		return nil, false
	}
	return carrier.toolError(), true
}
