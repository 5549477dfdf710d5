package k8s

// NotFoundError represents a "resource not found" case that the evaluators
// treat as a status, not an error.
type NotFoundError struct{}

func (e *NotFoundError) Error() string {
	return "resource not found"
}

func (e *NotFoundError) IsNotFound() {}

var errNotFound = &NotFoundError{}
