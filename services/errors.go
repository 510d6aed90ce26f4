package services

import "fmt"

// ErrorKind classifies a failed request so the HTTP layer can pick a
// status code and the client can tell validation from backend trouble.
type ErrorKind string

const (
	KindValidation ErrorKind = "validation"
	KindBackend    ErrorKind = "backend"
	KindParse      ErrorKind = "parse"
	KindQuota      ErrorKind = "quota"
	KindNotFound   ErrorKind = "not-found"
)

// RequestError wraps an underlying failure with its kind.
type RequestError struct {
	Kind ErrorKind
	Err  error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *RequestError) Unwrap() error { return e.Err }

func newError(kind ErrorKind, err error) *RequestError {
	return &RequestError{Kind: kind, Err: err}
}

func validationErrorf(format string, args ...any) *RequestError {
	return &RequestError{Kind: KindValidation, Err: fmt.Errorf(format, args...)}
}
