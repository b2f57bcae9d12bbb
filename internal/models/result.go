package models

import "fmt"

// OpResult is the uniform contract every externally triggered operation
// returns, so any transport (HTTP handler, CLI command) can wrap it the
// same way. Failures carry a user-facing message, never a raised panic.
type OpResult[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// OK wraps a successful payload.
func OK[T any](data T) OpResult[T] {
	return OpResult[T]{Success: true, Data: data}
}

// Fail wraps a failure message.
func Fail[T any](msg string) OpResult[T] {
	return OpResult[T]{Success: false, Error: msg}
}

// Failf wraps a formatted failure message.
func Failf[T any](format string, args ...any) OpResult[T] {
	return OpResult[T]{Success: false, Error: fmt.Sprintf(format, args...)}
}
