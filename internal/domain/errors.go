package domain

import (
	"errors"
	"fmt"
)

type NotFoundError struct {
	Resource string
	Err      error
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e NotFoundError) Unwrap() error { return e.Err }

type ValidationError struct {
	Field string
	Msg   string
	Err   error
}

func (e ValidationError) Error() string {
	if e.Msg != "" && e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Msg)
	}
	if e.Msg != "" {
		return e.Msg
	}
	if e.Field != "" {
		return fmt.Sprintf("invalid %s", e.Field)
	}
	return "validation error"
}

func (e ValidationError) Unwrap() error { return e.Err }

// ConflictError marks an optimistic-concurrency revision mismatch. It is the
// only error the shared retry helper classifies as retryable.
type ConflictError struct {
	Resource string
	Msg      string
	Err      error
}

func (e ConflictError) Error() string {
	switch {
	case e.Msg != "" && e.Resource != "":
		return fmt.Sprintf("%s conflict: %s", e.Resource, e.Msg)
	case e.Msg != "":
		return e.Msg
	case e.Resource != "":
		return fmt.Sprintf("%s conflict", e.Resource)
	default:
		return "conflict"
	}
}

func (e ConflictError) Unwrap() error { return e.Err }

type InternalError struct {
	Msg string
	Err error
}

func (e InternalError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "internal error"
}

func (e InternalError) Unwrap() error { return e.Err }

// CapacityError reports a reserve attempt that exceeds the remaining seats.
type CapacityError struct {
	DepartureID int64
	Requested   int
	Available   int
}

func (e CapacityError) Error() string {
	return fmt.Sprintf("departure %d: insufficient capacity (requested %d, available %d)",
		e.DepartureID, e.Requested, e.Available)
}

// PolicyConflictError rejects activation of a refund policy whose day-range or
// priority collides with an already-active policy of the same category.
type PolicyConflictError struct {
	Category string
	Msg      string
}

func (e PolicyConflictError) Error() string {
	if e.Msg == "" {
		return fmt.Sprintf("conflicting refund policy for category %s", e.Category)
	}
	return fmt.Sprintf("conflicting refund policy for category %s: %s", e.Category, e.Msg)
}

// AmbiguousPolicyError is a configuration error: more than one active policy
// matched a cancellation at the same priority. Never shown to end users.
type AmbiguousPolicyError struct {
	Category   string
	DaysBefore int
	PolicyIDs  []int64
}

func (e AmbiguousPolicyError) Error() string {
	return fmt.Sprintf("ambiguous refund policy for category %s at %d days: candidates %v",
		e.Category, e.DaysBefore, e.PolicyIDs)
}

// InsufficientHeldError rejects a settle that exceeds the held balance.
type InsufficientHeldError struct {
	OperatorID int64
	Requested  int64
	Held       int64
}

func (e InsufficientHeldError) Error() string {
	return fmt.Sprintf("operator %d: insufficient held balance (requested %d, held %d)",
		e.OperatorID, e.Requested, e.Held)
}

// PartialAdjustmentError reports an adjust that was clamped at zero because the
// held balance could not cover the full amount. The clamped portion was applied.
type PartialAdjustmentError struct {
	OperatorID int64
	Requested  int64
	Adjusted   int64
}

func (e PartialAdjustmentError) Error() string {
	return fmt.Sprintf("operator %d: partial adjustment (requested %d, applied %d)",
		e.OperatorID, e.Requested, e.Adjusted)
}

// StateError rejects a booking status transition that is not allowed.
type StateError struct {
	BookingID int64
	From      string
	To        string
}

func (e StateError) Error() string {
	return fmt.Sprintf("booking %d: invalid transition %s -> %s", e.BookingID, e.From, e.To)
}

// AlreadyProcessedError signals an idempotent no-op: the requested operation was
// completed by an earlier invocation. Callers treat it as success.
type AlreadyProcessedError struct {
	BookingID int64
	Op        string
}

func (e AlreadyProcessedError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("booking %d already processed", e.BookingID)
	}
	return fmt.Sprintf("booking %d: operation %s already processed", e.BookingID, e.Op)
}

func IsNotFound(err error) bool {
	var target NotFoundError
	return errors.As(err, &target)
}

func IsValidation(err error) bool {
	var target ValidationError
	return errors.As(err, &target)
}

func IsConflict(err error) bool {
	var target ConflictError
	return errors.As(err, &target)
}

func IsInternal(err error) bool {
	var target InternalError
	return errors.As(err, &target)
}

func IsCapacity(err error) bool {
	var target CapacityError
	return errors.As(err, &target)
}

func IsPolicyConflict(err error) bool {
	var target PolicyConflictError
	return errors.As(err, &target)
}

func IsAmbiguousPolicy(err error) bool {
	var target AmbiguousPolicyError
	return errors.As(err, &target)
}

func IsInsufficientHeld(err error) bool {
	var target InsufficientHeldError
	return errors.As(err, &target)
}

func IsPartialAdjustment(err error) bool {
	var target PartialAdjustmentError
	return errors.As(err, &target)
}

func IsStateError(err error) bool {
	var target StateError
	return errors.As(err, &target)
}

func IsAlreadyProcessed(err error) bool {
	var target AlreadyProcessedError
	return errors.As(err, &target)
}
