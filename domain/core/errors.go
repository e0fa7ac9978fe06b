package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound       = errors.New("resource not found")
	ErrChartNotFound  = fmt.Errorf("%w: chart", ErrNotFound)
	ErrSourceNotFound = fmt.Errorf("%w: datasource", ErrNotFound)

	// Input errors
	ErrMissingStatistic = errors.New("missing statistic")
	ErrUnknownColumn    = errors.New("unknown column")
	ErrInvalidWhisker   = errors.New("invalid whisker option")
	ErrUnsupportedViz   = errors.New("unsupported visualization type")
	ErrInsufficientData = errors.New("insufficient data for aggregation")
	ErrInvalidPayload   = errors.New("invalid chart payload")
)

// MissingStatisticError reports a row that lacks one of the pre-aggregated
// <metric>__<stat> fields, or carries a non-numeric value in it.
type MissingStatisticError struct {
	Metric string
	Field  string
	Row    int
	Reason string
}

func (e *MissingStatisticError) Error() string {
	reason := e.Reason
	if reason == "" {
		reason = "absent"
	}
	return fmt.Sprintf("%v: row %d field %s__%s (%s)", ErrMissingStatistic, e.Row, e.Metric, e.Field, reason)
}

func (e *MissingStatisticError) Unwrap() error {
	return ErrMissingStatistic
}

// Error constructors with context
func NewNotFoundError(resource string, id string) error {
	return fmt.Errorf("%w: %s with id %s", ErrNotFound, resource, id)
}

func NewUnknownColumnError(column string) error {
	return fmt.Errorf("%w: %q", ErrUnknownColumn, column)
}

func NewWhiskerError(option string) error {
	return fmt.Errorf("%w: %q", ErrInvalidWhisker, option)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsInputError reports errors caused by the caller's chart configuration or
// data rather than by the service.
func IsInputError(err error) bool {
	return errors.Is(err, ErrMissingStatistic) ||
		errors.Is(err, ErrUnknownColumn) ||
		errors.Is(err, ErrInvalidWhisker) ||
		errors.Is(err, ErrUnsupportedViz) ||
		errors.Is(err, ErrInsufficientData) ||
		errors.Is(err, ErrInvalidPayload)
}
