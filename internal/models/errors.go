package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyGroupSet is returned when the sampler finds no year groups to draw from
var ErrEmptyGroupSet = errors.New("no valid years found in dataset")

// ValidationError represents a data validation error
type ValidationError struct {
	Field   string
	Value   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// IsTransient returns false as validation errors are permanent
func (e *ValidationError) IsTransient() bool {
	return false
}

// SourceNotFoundError is returned when no candidate data file exists
type SourceNotFoundError struct {
	Candidates []string
}

func (e *SourceNotFoundError) Error() string {
	return fmt.Sprintf("no data file found; looked for: %s", strings.Join(e.Candidates, ", "))
}

// IsTransient returns true: the file may be added later
func (e *SourceNotFoundError) IsTransient() bool {
	return true
}

// UnreadableSourceError is returned when a file exists but is not tabular
type UnreadableSourceError struct {
	Path string
	Err  error
}

func (e *UnreadableSourceError) Error() string {
	return fmt.Sprintf("unreadable data source %s: %v", e.Path, e.Err)
}

func (e *UnreadableSourceError) Unwrap() error {
	return e.Err
}

// IsTransient returns false as a corrupt file stays corrupt
func (e *UnreadableSourceError) IsTransient() bool {
	return false
}
