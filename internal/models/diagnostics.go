package models

import "fmt"

// Severity of a non-fatal pipeline issue
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// DiagnosticKind classifies recovered row- and column-level problems
type DiagnosticKind string

const (
	KindCellParseFailure      DiagnosticKind = "cell_parse_failure"
	KindMissingOptionalColumn DiagnosticKind = "missing_optional_column"
	KindMissingRequiredColumn DiagnosticKind = "missing_required_column"
	KindFallbackYear          DiagnosticKind = "fallback_year"
)

// Diagnostic is a non-fatal issue returned alongside a pipeline result
type Diagnostic struct {
	Severity Severity       `json:"severity"`
	Kind     DiagnosticKind `json:"kind"`
	Column   string         `json:"column,omitempty"`
	Count    int            `json:"count,omitempty"`
	Message  string         `json:"message"`
}

// Diagnostics is an ordered list of non-fatal issues
type Diagnostics []Diagnostic

// HasErrors reports whether any diagnostic has error severity
func (d Diagnostics) HasErrors() bool {
	for _, diag := range d {
		if diag.Severity == SeverityError {
			return true
		}
	}
	return false
}

// OfKind returns the diagnostics of a single kind
func (d Diagnostics) OfKind(kind DiagnosticKind) Diagnostics {
	var out Diagnostics
	for _, diag := range d {
		if diag.Kind == kind {
			out = append(out, diag)
		}
	}
	return out
}

// CellParseFailure builds the per-column parse failure diagnostic
func CellParseFailure(column string, count int) Diagnostic {
	return Diagnostic{
		Severity: SeverityWarning,
		Kind:     KindCellParseFailure,
		Column:   column,
		Count:    count,
		Message:  fmt.Sprintf("%d value(s) in '%s' could not be parsed and were set to null", count, column),
	}
}

// MissingOptionalColumn builds the default-fill diagnostic
func MissingOptionalColumn(column, fill string) Diagnostic {
	return Diagnostic{
		Severity: SeverityWarning,
		Kind:     KindMissingOptionalColumn,
		Column:   column,
		Message:  fmt.Sprintf("missing '%s' column; filled with %s", column, fill),
	}
}

// MissingRequiredColumn builds the degraded-mode diagnostic
func MissingRequiredColumn(column string) Diagnostic {
	return Diagnostic{
		Severity: SeverityError,
		Kind:     KindMissingRequiredColumn,
		Column:   column,
		Message:  fmt.Sprintf("missing required '%s' column", column),
	}
}
