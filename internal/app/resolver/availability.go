package resolver

import (
	"time"

	"github.com/relinkd/relink/internal/app/model"
)

// Availability is the outcome of the availability gate: whether a link may
// resolve at all at a given instant, independent of destination.
type Availability int

const (
	Available Availability = iota
	Suspended
	Gone
	NotYetActive
)

// CheckAvailability decides whether the link may resolve at the instant now.
// The check order is deliberate and must not be reordered:
//
//  1. Owner suspension is an account-level emergency control; a suspended
//     owner's links never resolve, whatever their own state.
//  2. An inactive link reads as deleted to visitors.
//  3. Scheduled activation is checked before expiry, so a misconfigured
//     record with expires_at <= active_from reports as not-yet-active
//     rather than expired.
func CheckAvailability(link *model.Link, now time.Time) Availability {
	if link.OwnerSuspended {
		return Suspended
	}
	if !link.Active {
		return Gone
	}
	if link.ActiveFrom != nil && now.Before(*link.ActiveFrom) {
		return NotYetActive
	}
	if link.ExpiresAt != nil && !now.Before(*link.ExpiresAt) {
		return Gone
	}
	return Available
}
