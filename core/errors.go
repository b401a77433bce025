package core

import "errors"

// Sentinel errors returned by the engine and its loaders. Match them with errors.Is.
var (
	ErrNotFound        = errors.New("subject not found")
	ErrStudentNotFound = errors.New("student not found")
	ErrMalformedInput  = errors.New("malformed input")
)
