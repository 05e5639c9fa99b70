// Package apierr is C6, the Error Mapper: it translates the typed errors
// surfaced by the Validator, User/Event services and Registration Engine
// into the external wire taxonomy (spec §7). It never lets a raw store or
// internal error string escape to a client.
package apierr

import "net/http"

type Code string

const (
	CodeValidation            Code = "VALIDATION_ERROR"
	CodeUserNotFound          Code = "USER_NOT_FOUND"
	CodeEventNotFound         Code = "EVENT_NOT_FOUND"
	CodeRegistrationNotFound  Code = "REGISTRATION_NOT_FOUND"
	CodeDuplicateUser         Code = "DUPLICATE_USER"
	CodeAlreadyRegistered     Code = "ALREADY_REGISTERED"
	CodeAlreadyOnWaitlist     Code = "ALREADY_ON_WAITLIST"
	CodeEventFull             Code = "EVENT_FULL"
	CodeConcurrentModification Code = "CONCURRENT_MODIFICATION"
	CodeContention            Code = "CONTENTION"
	CodeInternal              Code = "INTERNAL_ERROR"
	CodeServiceUnavailable    Code = "SERVICE_UNAVAILABLE"
)

// APIError is the typed error every HTTP handler ultimately deals with.
// Construct one with the New* helpers rather than building it by hand so
// the Code/Status pairing always matches spec §7.
type APIError struct {
	Code    Code
	Status  int
	Message string
	Details interface{}
}

func (e *APIError) Error() string { return e.Message }

func newErr(code Code, status int, message string, details interface{}) *APIError {
	return &APIError{Code: code, Status: status, Message: message, Details: details}
}

func Validation(message string, details interface{}) *APIError {
	return newErr(CodeValidation, http.StatusBadRequest, message, details)
}

func UserNotFound() *APIError {
	return newErr(CodeUserNotFound, http.StatusNotFound, "user not found", nil)
}

func EventNotFound() *APIError {
	return newErr(CodeEventNotFound, http.StatusNotFound, "event not found", nil)
}

func RegistrationNotFound() *APIError {
	return newErr(CodeRegistrationNotFound, http.StatusNotFound, "registration not found", nil)
}

func DuplicateUser() *APIError {
	return newErr(CodeDuplicateUser, http.StatusConflict, "user already exists", nil)
}

func AlreadyRegistered() *APIError {
	return newErr(CodeAlreadyRegistered, http.StatusConflict, "user is already registered for this event", nil)
}

func AlreadyOnWaitlist() *APIError {
	return newErr(CodeAlreadyOnWaitlist, http.StatusConflict, "user is already on the waitlist for this event", nil)
}

func EventFull() *APIError {
	return newErr(CodeEventFull, http.StatusConflict, "event is at capacity and waitlist is disabled", nil)
}

// Contention maps the engine's exhausted optimistic-retry budget. The spec
// lists both a 409 CONCURRENT_MODIFICATION and a 503 CONTENTION reading;
// this mapper treats it as a 409, matching "retry budget exhausted" as a
// conflict the caller can retry, and reserves 503 for Transient store
// exhaustion below.
func Contention() *APIError {
	return newErr(CodeConcurrentModification, http.StatusConflict, "too many concurrent changes, please retry", nil)
}

func Internal() *APIError {
	return newErr(CodeInternal, http.StatusInternalServerError, "internal error", nil)
}

func ServiceUnavailable() *APIError {
	return newErr(CodeServiceUnavailable, http.StatusServiceUnavailable, "service temporarily unavailable", nil)
}
