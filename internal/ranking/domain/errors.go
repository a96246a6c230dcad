package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrUnrecognizedStrategy is returned when strict strategy checking is on.
	ErrUnrecognizedStrategy = errors.New("unrecognized strategy")

	// ErrInvalidTaskReference marks a dependency on a task that is not in the list.
	ErrInvalidTaskReference = errors.New("invalid task reference")

	// ErrInvalidTask is the root of every task validation failure.
	ErrInvalidTask = errors.New("invalid task data")
)

// StrategyError names the strategy that could not be resolved.
type StrategyError struct {
	Name string
}

func (e *StrategyError) Error() string {
	return fmt.Sprintf("%s: %q", ErrUnrecognizedStrategy, e.Name)
}

func (e *StrategyError) Unwrap() error {
	return ErrUnrecognizedStrategy
}

// ValidationError collects field problems keyed by "tasks[i].field".
type ValidationError struct {
	Details map[string][]string
}

func (e *ValidationError) add(field, msg string) {
	if e.Details == nil {
		e.Details = make(map[string][]string)
	}
	e.Details[field] = append(e.Details[field], msg)
}

func (e *ValidationError) empty() bool {
	return len(e.Details) == 0
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Details))
	for f := range e.Details {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+strings.Join(e.Details[f], "; "))
	}
	return fmt.Sprintf("%s: %s", ErrInvalidTask, strings.Join(parts, ", "))
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidTask
}
