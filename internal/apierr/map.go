package apierr

import (
	"errors"

	"github.com/elthrasher/eventreg/internal/domain/event"
	"github.com/elthrasher/eventreg/internal/domain/registration"
	"github.com/elthrasher/eventreg/internal/domain/user"
	"github.com/elthrasher/eventreg/internal/store"
	"github.com/elthrasher/eventreg/internal/validate"
)

// From maps any error returned by the Validator, services, or engine to
// the wire taxonomy. Unrecognised errors become CodeInternal — the raw
// error is never embedded in the response; callers are expected to log it
// before discarding.
func From(err error) *APIError {
	if err == nil {
		return nil
	}

	var existing *APIError
	if errors.As(err, &existing) {
		return existing
	}

	var ve *validate.ValidationError
	if errors.As(err, &ve) {
		details := make([]map[string]string, 0, len(ve.Fields))
		for _, f := range ve.Fields {
			details = append(details, map[string]string{"field": f.Field, "message": f.Message})
		}
		return Validation(ve.Error(), details)
	}

	switch {
	case errors.Is(err, user.ErrNotFound):
		return UserNotFound()
	case errors.Is(err, user.ErrDuplicate):
		return DuplicateUser()
	case errors.Is(err, event.ErrNotFound):
		return EventNotFound()
	case errors.Is(err, registration.ErrNotFound):
		return RegistrationNotFound()
	case errors.Is(err, registration.ErrAlreadyRegistered):
		return AlreadyRegistered()
	case errors.Is(err, registration.ErrAlreadyOnWaitlist):
		return AlreadyOnWaitlist()
	case errors.Is(err, registration.ErrEventFull):
		return EventFull()
	case errors.Is(err, registration.ErrContention):
		return Contention()
	case store.Is(err, store.KindTransient):
		return ServiceUnavailable()
	}

	return Internal()
}
