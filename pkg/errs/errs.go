// Package errs defines the error kinds the export pipeline surfaces.
// Every failure aborts the run; these types exist so main can name the
// failing stage and tests can assert on the class of failure.
package errs

import (
	"fmt"
)

// InvalidActionError reports a bad or incomplete action descriptor.
// Raised before any network call.
type InvalidActionError struct {
	Reason string
}

func (e *InvalidActionError) Error() string { return "invalid action: " + e.Reason }

// AuthenticationError reports credential or token rejection by either
// the identity provider or the ticketing system.
type AuthenticationError struct {
	System string // "okta" or "jira"
	Reason string
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("%s authentication failed: %s", e.System, e.Reason)
}

// NotFoundError reports a detail lookup whose identifier does not
// resolve (a resource id, or the Jira issue key on upload).
type NotFoundError struct {
	Kind string // "group", "app", "device", "issue"
	ID   string
}

func (e *NotFoundError) Error() string { return fmt.Sprintf("%s %q not found", e.Kind, e.ID) }

// APIError reports any other non-success HTTP response.
type APIError struct {
	System string
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s api error: status %d: %s", e.System, e.Status, e.Body)
}

// IOError reports a filesystem failure while writing or archiving.
type IOError struct {
	Op   string // "write", "archive", "clean"
	Path string
	Err  error
}

func (e *IOError) Error() string { return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err) }
func (e *IOError) Unwrap() error { return e.Err }
