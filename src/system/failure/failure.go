// Package failure holds the error taxonomy of the compiler. Every error names
// the entity it was raised for; none of them is meant to be retried.
package failure

import (
	"fmt"
	"strconv"
)

// ConfigurationError reports an unsupported parameter combination, a
// timestep a rule cannot work with or an edge the filter cannot classify.
type ConfigurationError struct {
	Entity string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "configuration error on " + e.Entity + ": " + e.Reason
}

func Configuration(entity string, format string, args ...interface{}) *ConfigurationError {
	return &ConfigurationError{Entity: entity, Reason: fmt.Sprintf(format, args...)}
}

// ResourceExhaustedError reports a joint allocation the placement pool
// could not satisfy.
type ResourceExhaustedError struct {
	Population string
	Slice      string
	Resource   string
	Requested  int64
	Available  int64
}

// Excess is how much more of Resource the request needed.
func (e *ResourceExhaustedError) Excess() int64 {
	return e.Requested - e.Available
}

func (e *ResourceExhaustedError) Error() string {
	msg := "resource exhausted"
	if "" != e.Population {
		msg += " for " + e.Population
	}
	if "" != e.Slice {
		msg += " slice " + e.Slice
	}
	return msg + ": " + e.Resource + " requested " + strconv.FormatInt(e.Requested, 10) +
		" available " + strconv.FormatInt(e.Available, 10) +
		" (excess " + strconv.FormatInt(e.Excess(), 10) + ")"
}

// PreconditionError is a programming error: malformed slices, calls in the
// wrong lifecycle state and the like.
type PreconditionError struct {
	Entity string
	Reason string
}

func (e *PreconditionError) Error() string {
	return "precondition violated on " + e.Entity + ": " + e.Reason
}

func Precondition(entity string, format string, args ...interface{}) *PreconditionError {
	return &PreconditionError{Entity: entity, Reason: fmt.Sprintf(format, args...)}
}

// BoundsError reports a delay (or other numeric) range a connector cannot
// support. Values are never clamped.
type BoundsError struct {
	Entity string
	Min    float64
	Max    float64
	Limit  float64
}

func (e *BoundsError) Error() string {
	return fmt.Sprintf("bounds violation on %s: range [%g, %g] outside supported [0, %g]", e.Entity, e.Min, e.Max, e.Limit)
}
