package server

import "errors"

// Store-level sentinels. Domain code maps these to user-facing errors; the
// retry loop keys off ErrVersionConflict.
var (
	ErrGameExists      = errors.New("game already exists")
	ErrGameNotFound    = errors.New("game not found")
	ErrVersionConflict = errors.New("version conflict")
)

const (
	kindValidation   = "validation"
	kindNotFound     = "not_found"
	kindUnauthorized = "unauthorized"
	kindConflict     = "conflict"
	kindUnexpected   = "unexpected"
)

type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// domainError is the only error type crossing the orchestrator boundary. Kind
// drives the HTTP status; Code is the machine-readable discriminator clients
// switch on.
type domainError struct {
	Kind    string       `json:"kind"`
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Fields  []fieldError `json:"fields,omitempty"`
}

func (e *domainError) Error() string {
	return e.Message
}

func validationError(field, message string) *domainError {
	return &domainError{
		Kind:    kindValidation,
		Code:    "validation_failed",
		Message: message,
		Fields:  []fieldError{{Field: field, Message: message}},
	}
}

func notFoundError(code, message string) *domainError {
	return &domainError{Kind: kindNotFound, Code: code, Message: message}
}

func unauthorizedError(message string) *domainError {
	return &domainError{Kind: kindUnauthorized, Code: "unauthorized", Message: message}
}

func conflictError(code, message string) *domainError {
	return &domainError{Kind: kindConflict, Code: code, Message: message}
}

func invalidTargetError() *domainError {
	return &domainError{Kind: kindValidation, Code: "invalid_target", Message: "target is not a living player"}
}

// unexpectedError hides internal detail from the client; the real cause is
// logged where it happens.
func unexpectedError() *domainError {
	return &domainError{Kind: kindUnexpected, Code: "unexpected", Message: "unexpected error"}
}

func asDomainError(err error) *domainError {
	var derr *domainError
	if errors.As(err, &derr) {
		return derr
	}
	return nil
}
