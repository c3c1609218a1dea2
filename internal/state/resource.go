package state

// Status enumerates the states of a Resource.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return "idle"
	}
}

// Resource is the result of one asynchronous fetch. Exactly one state is
// active: the value is only present on success and the error only on error.
type Resource[T any] struct {
	status Status
	value  T
	err    error
}

// Idle returns a resource that has never been fetched.
func Idle[T any]() Resource[T] {
	return Resource[T]{status: StatusIdle}
}

// Loading returns a resource with a fetch in flight.
func Loading[T any]() Resource[T] {
	return Resource[T]{status: StatusLoading}
}

// Succeeded returns a resource holding value.
func Succeeded[T any](value T) Resource[T] {
	return Resource[T]{status: StatusSuccess, value: value}
}

// Failed returns a resource holding err.
func Failed[T any](err error) Resource[T] {
	return Resource[T]{status: StatusError, err: err}
}

// Status returns the active state.
func (r Resource[T]) Status() Status {
	return r.status
}

// Value returns the payload and whether the resource is in the success state.
func (r Resource[T]) Value() (T, bool) {
	return r.value, r.status == StatusSuccess
}

// Err returns the failure when the resource is in the error state.
func (r Resource[T]) Err() error {
	if r.status != StatusError {
		return nil
	}
	return r.err
}

// IsTerminal reports whether the resource is success or error.
func (r Resource[T]) IsTerminal() bool {
	return r.status == StatusSuccess || r.status == StatusError
}
