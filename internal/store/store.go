package store

import (
	"context"

	"github.com/elthrasher/eventreg/internal/domain/event"
	"github.com/elthrasher/eventreg/internal/domain/registration"
	"github.com/elthrasher/eventreg/internal/domain/user"
)

// Store is the typed persistence contract for C1 (spec §4.1). Every method
// either fully commits or leaves its targeted records unchanged — partial
// observable states are forbidden. Implementations retry KindTransient
// failures internally with capped backoff before ever returning one; every
// other Kind is surfaced immediately for the caller to act on.
type Store interface {
	PutUserIfAbsent(ctx context.Context, u user.User) error
	GetUser(ctx context.Context, userID string) (user.User, error)

	PutEvent(ctx context.Context, e event.Event) error
	GetEvent(ctx context.Context, eventID string) (event.Event, error)
	ListEvents(ctx context.Context, filter event.ListFilter) ([]event.Event, error)
	// UpdateEventOpaque never changes capacity/registeredCount/
	// waitlistEnabled/waitlist: OpaquePatch has no way to set those fields,
	// and the HTTP handler rejects request bodies that name them.
	UpdateEventOpaque(ctx context.Context, eventID string, patch event.OpaquePatch) (event.Event, error)
	DeleteEvent(ctx context.Context, eventID string) error

	GetRegistration(ctx context.Context, userID, eventID string) (registration.Registration, error)
	QueryRegistrationsByUser(ctx context.Context, userID string) ([]registration.Registration, error)
	QueryRegistrationsByEvent(ctx context.Context, eventID string) ([]registration.Registration, error)

	// TxRegisterConfirmed atomically inserts reg (condition: (userID,
	// eventID) absent) and increments Event.RegisteredCount (condition:
	// RegisteredCount < Capacity), returning the post-commit event.
	TxRegisterConfirmed(ctx context.Context, userID, eventID string, reg registration.Registration) (event.Event, error)

	// TxRegisterWaitlist atomically inserts reg with status=waitlist
	// (condition: absent) and appends userID to Event.Waitlist (condition:
	// RegisteredCount == Capacity, WaitlistEnabled, userID not already
	// present), returning the post-commit event.
	TxRegisterWaitlist(ctx context.Context, userID, eventID string, reg registration.Registration) (event.Event, error)

	// TxUnregisterConfirmed atomically deletes the confirmed registration
	// (condition: present, status=confirmed) and decrements
	// Event.RegisteredCount (condition: RegisteredCount > 0), returning the
	// post-commit event.
	TxUnregisterConfirmed(ctx context.Context, userID, eventID string) (event.Event, error)

	// TxUnregisterWaitlist atomically deletes the waitlisted registration
	// (condition: present, status=waitlist) and removes userID from
	// Event.Waitlist preserving order of the remaining entries.
	TxUnregisterWaitlist(ctx context.Context, userID, eventID string) (event.Event, error)

	// TxPromoteHead atomically pops index 0 off Event.Waitlist (condition:
	// Waitlist[0] == userID) and flips that user's registration status
	// from waitlist to confirmed, re-incrementing Event.RegisteredCount
	// (condition: RegisteredCount < Capacity) since the promoted waitlister
	// now occupies the slot the preceding unregister freed. Returns
	// ErrPromotionTargetGone if the head matched but the registration
	// record was already gone (skip, not an error).
	TxPromoteHead(ctx context.Context, eventID, userID string) error
}
