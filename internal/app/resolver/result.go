// Package resolver implements the redirect resolution engine: given a visit
// to a short link it decides which destination to reveal, or whether to
// reveal one at all. The pipeline is load, availability gate, destination
// resolution, access gate; every stage past the loader is a pure function.
package resolver

// Status enumerates every visitor-facing outcome of a resolution. All of
// these are normal business outcomes, not errors; the engine never returns
// an error for a rule decision.
type Status string

const (
	// StatusRedirect means a destination was resolved and may be revealed.
	StatusRedirect Status = "redirect"
	// StatusNotFound covers both an unknown code and a storage failure.
	// Visitors cannot tell the two apart; operators can, via logs and metrics.
	StatusNotFound Status = "not_found"
	// StatusGone covers deactivated and expired links alike, so visitors
	// cannot distinguish "never existed" from "expired".
	StatusGone Status = "gone"
	// StatusNotYetActive means the link's scheduled start time has not been
	// reached. The HTTP layer renders this as a 404 so scheduled campaigns
	// cannot be enumerated ahead of launch.
	StatusNotYetActive Status = "not_yet_active"
	// StatusSuspended means the owning account is suspended.
	StatusSuspended Status = "suspended"
	// StatusPasswordRequired means the link is password gated and no
	// credential was supplied. The destination URL is never carried here.
	StatusPasswordRequired Status = "password_required"
	// StatusUnauthorized means a password was supplied and did not match.
	StatusUnauthorized Status = "unauthorized"
)

// Result is the tagged outcome of one resolution. URL is populated only when
// Status is StatusRedirect.
type Result struct {
	Status Status
	URL    string
}

// Redirect builds the single Result variant that carries a destination.
func Redirect(url string) Result {
	return Result{Status: StatusRedirect, URL: url}
}
