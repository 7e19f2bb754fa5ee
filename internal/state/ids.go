package state

import "github.com/google/uuid"

// newID returns a time-ordered element id. Version 7 ids carry a millisecond
// timestamp plus a per-process sequence, so two elements created in the same
// millisecond still get distinct ids.
func newID() uuid.UUID {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New()
	}
	return id
}
