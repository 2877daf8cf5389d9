package model

type ErrorKind string

const (
	KindValidation   ErrorKind = "validation"
	KindPrecondition ErrorKind = "precondition"
	KindNotFound     ErrorKind = "not_found"
)

// DomainError is a rule violation reported to the acting client only
type DomainError struct {
	Kind    ErrorKind
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewValidationError builds a validation error
func NewValidationError(msg string) *DomainError {
	return &DomainError{Kind: KindValidation, Message: msg}
}

// NewPreconditionError builds a precondition error
func NewPreconditionError(msg string) *DomainError {
	return &DomainError{Kind: KindPrecondition, Message: msg}
}

// NewNotFoundError builds a not-found error
func NewNotFoundError(msg string) *DomainError {
	return &DomainError{Kind: KindNotFound, Message: msg}
}
