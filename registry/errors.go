package registry

import "fmt"

// NotFoundError reports a project, or a version of it, the registry does not
// have or has no compatible build of.
type NotFoundError struct {
	Project string
	Version string
	Reason  string
}

func (e *NotFoundError) Error() string {
	reason := e.Reason
	if reason == "" {
		reason = "not found in registry"
	}
	if e.Version != "" {
		return fmt.Sprintf("project %q version %q: %s", e.Project, e.Version, reason)
	}
	return fmt.Sprintf("project %q: %s", e.Project, reason)
}

// RegistryError reports a failed registry lookup. Transient errors (network
// failures, throttling, server errors) are retried before they surface.
type RegistryError struct {
	Project    string
	StatusCode int
	Transient  bool
	Err        error
}

func (e *RegistryError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("registry lookup for %q: HTTP %d: %v", e.Project, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("registry lookup for %q: %v", e.Project, e.Err)
}

func (e *RegistryError) Unwrap() error {
	return e.Err
}
