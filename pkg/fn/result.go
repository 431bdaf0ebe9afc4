// Package fn holds small generic helpers: a Result type for chaining
// fallible calls, retry with backoff, and slice utilities.
package fn

// Result[T] is a value or an error.
type Result[T any] struct {
	val T
	err error
	ok  bool
}

// Ok creates a successful Result.
func Ok[T any](v T) Result[T] {
	return Result[T]{val: v, ok: true}
}

// Err creates a failed Result from an error.
func Err[T any](err error) Result[T] {
	return Result[T]{err: err}
}

// IsOk returns true if the result is successful.
func (r Result[T]) IsOk() bool { return r.ok }

// IsErr returns true if the result is an error.
func (r Result[T]) IsErr() bool { return !r.ok }

// Unwrap returns the value and error.
func (r Result[T]) Unwrap() (T, error) { return r.val, r.err }

// AndThenResult chains a fallible step that changes the value type.
func AndThenResult[T, U any](r Result[T], f func(T) Result[U]) Result[U] {
	if !r.ok {
		return Err[U](r.err)
	}
	return f(r.val)
}

// FromPair creates a Result from a (value, error) pair.
func FromPair[T any](v T, err error) Result[T] {
	if err != nil {
		return Err[T](err)
	}
	return Ok(v)
}
