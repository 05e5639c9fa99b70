package event

import "github.com/google/uuid"

// GenerateID produces a fresh event id for creation requests that omit one
// (spec §4.2: "When omitted on event creation, the Event Service generates
// a fresh UUID.").
func GenerateID() string {
	return uuid.NewString()
}
