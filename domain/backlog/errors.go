package backlog

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrValidation is returned when input fails type, presence or range checks.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is returned when the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrStorageCorrupt is returned when a persisted document cannot be parsed.
	ErrStorageCorrupt = errors.New("storage corrupt")

	// ErrDraftGeneration is returned when the language model output is unusable.
	ErrDraftGeneration = errors.New("draft generation failed")

	// ErrServiceUnavailable is returned when an optional collaborator is not configured.
	ErrServiceUnavailable = errors.New("service unavailable")
)

// FieldProblem names one rejected field and why it was rejected.
type FieldProblem struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// Problems accumulates field problems while checking a payload.
type Problems []FieldProblem

// Add records a problem for field.
func (p *Problems) Add(field, reason string) {
	*p = append(*p, FieldProblem{Field: field, Reason: reason})
}

// Err returns a *ValidationError holding the problems, or nil when there are none.
func (p Problems) Err() error {
	if len(p) == 0 {
		return nil
	}
	return &ValidationError{Problems: append([]FieldProblem(nil), p...)}
}

// ValidationError lists every field that failed validation.
type ValidationError struct {
	Problems []FieldProblem
}

func (e *ValidationError) Error() string {
	return "validation failed: " + describeProblems(e.Problems)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// NotFoundError reports a missing entity by kind and id.
type NotFoundError struct {
	Entity string
	ID     int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// DraftError reports a language model response that could not be turned into
// valid entities. Problems is set when the output parsed but failed validation.
type DraftError struct {
	Reason   string
	Problems []FieldProblem
}

func (e *DraftError) Error() string {
	if len(e.Problems) == 0 {
		return "draft generation failed: " + e.Reason
	}
	return "draft generation failed: " + e.Reason + ": " + describeProblems(e.Problems)
}

func (e *DraftError) Is(target error) bool { return target == ErrDraftGeneration }

func describeProblems(problems []FieldProblem) string {
	parts := make([]string, 0, len(problems))
	for _, p := range problems {
		parts = append(parts, p.Field+": "+p.Reason)
	}
	return strings.Join(parts, "; ")
}

// Kind classifies an error for transport and HTTP status mapping.
type Kind string

const (
	KindValidation  Kind = "validation"
	KindNotFound    Kind = "not_found"
	KindCorrupt     Kind = "storage_corrupt"
	KindDraft       Kind = "draft_generation"
	KindUnavailable Kind = "service_unavailable"
	KindInternal    Kind = "internal"
)

var kindSentinels = map[Kind]error{
	KindValidation:  ErrValidation,
	KindNotFound:    ErrNotFound,
	KindCorrupt:     ErrStorageCorrupt,
	KindDraft:       ErrDraftGeneration,
	KindUnavailable: ErrServiceUnavailable,
}

// KindOf classifies err. Unknown errors are KindInternal.
func KindOf(err error) Kind {
	switch {
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrStorageCorrupt):
		return KindCorrupt
	case errors.Is(err, ErrDraftGeneration):
		return KindDraft
	case errors.Is(err, ErrServiceUnavailable):
		return KindUnavailable
	default:
		return KindInternal
	}
}

// ProblemsOf extracts field problems from a validation or draft error.
func ProblemsOf(err error) []FieldProblem {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Problems
	}
	var de *DraftError
	if errors.As(err, &de) {
		return de.Problems
	}
	var f *Fault
	if errors.As(err, &f) {
		return f.Problems
	}
	return nil
}

// Fault is the serializable form of an error carried in service responses, so
// callers on the other side of a request-reply hop keep the error kind.
type Fault struct {
	Kind     Kind           `json:"kind"`
	Message  string         `json:"message"`
	Problems []FieldProblem `json:"problems,omitempty"`
}

// FaultFrom converts err into a Fault. It returns nil for a nil error.
func FaultFrom(err error) *Fault {
	if err == nil {
		return nil
	}
	return &Fault{
		Kind:     KindOf(err),
		Message:  err.Error(),
		Problems: ProblemsOf(err),
	}
}

func (f *Fault) Error() string { return f.Message }

// Is matches the sentinel for the fault's kind.
func (f *Fault) Is(target error) bool {
	sentinel, ok := kindSentinels[f.Kind]
	return ok && sentinel == target
}
