package ebd

import "fmt"

// Error codes surfaced through the Error event. The core never returns
// these across the public API; callers that need to know whether an
// operation took effect inspect the post-state.
const (
	ErrCapacityExhausted      = "CAPACITY_EXHAUSTED"       // No free slot in the requested partition
	ErrInvalidParent          = "INVALID_PARENT"           // Parent inactive or edge would form a cycle
	ErrIterationLimitExceeded = "ITERATION_LIMIT_EXCEEDED" // Transform recalculation failed to converge
	ErrHandlerPanic           = "HANDLER_PANIC"            // An event subscriber panicked
	ErrReentrantMutation      = "REENTRANT_MUTATION"       // Set re-entered for the same entity and behavior
	ErrPersistence            = "PERSISTENCE_ERROR"        // External persistence collaborator failure
	ErrDeserialization        = "DESERIALIZATION_ERROR"    // External loader collaborator failure
)

// RuntimeError is the payload of an Error event. It carries the entity
// and behavior involved when they are known.
type RuntimeError struct {
	Code     string
	Message  string
	Entity   EntityIndex
	Behavior BehaviorType
}

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	switch {
	case e.Behavior != "":
		return fmt.Sprintf("[%s] %s (entity %d, behavior %s)", e.Code, e.Message, e.Entity, e.Behavior)
	case e.Code == ErrCapacityExhausted || e.Code == ErrIterationLimitExceeded:
		return fmt.Sprintf("[%s] %s", e.Code, e.Message)
	default:
		return fmt.Sprintf("[%s] %s (entity %d)", e.Code, e.Message, e.Entity)
	}
}

// NewRuntimeError creates an error with no entity context.
func NewRuntimeError(code, message string) *RuntimeError {
	return &RuntimeError{Code: code, Message: message}
}

// NewEntityError creates an error scoped to one entity.
func NewEntityError(code, message string, entity EntityIndex) *RuntimeError {
	return &RuntimeError{Code: code, Message: message, Entity: entity}
}

// NewBehaviorError creates an error scoped to one entity and behavior.
func NewBehaviorError(code, message string, entity EntityIndex, behavior BehaviorType) *RuntimeError {
	return &RuntimeError{Code: code, Message: message, Entity: entity, Behavior: behavior}
}

// IsCode reports whether err is a RuntimeError with the given code.
func IsCode(err error, code string) bool {
	re, ok := err.(*RuntimeError)
	return ok && re.Code == code
}
