package git

import (
	"fmt"
	"strings"
)

// AuthError indicates the remote rejected our credentials.
type AuthError struct {
	Op  string
	URL string
	Err error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s %s: authentication failed: %v", e.Op, e.URL, e.Err)
}
func (e *AuthError) Unwrap() error { return e.Err }

// Hint returns an actionable diagnostic for the operator.
func (e *AuthError) Hint() string {
	return "If this is a private repository: configure SSH keys, supply a personal access token via the repository's token_env variable, or set up repository secrets in your CI environment."
}

// NotFoundError indicates the repository or branch does not exist on the remote.
type NotFoundError struct {
	Op  string
	URL string
	Err error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s: repository or branch not found: %v", e.Op, e.URL, e.Err)
}
func (e *NotFoundError) Unwrap() error { return e.Err }

// classifyCloneError wraps underlying go-git errors into typed failures so
// callers can surface actionable diagnostics without string parsing.
func classifyCloneError(url string, err error) error {
	l := strings.ToLower(err.Error())
	switch {
	case strings.Contains(l, "authentication") ||
		strings.Contains(l, "authorization") ||
		strings.Contains(l, "permission") ||
		strings.Contains(l, "invalid username or password") ||
		strings.Contains(l, "invalid credentials"):
		return &AuthError{Op: "clone", URL: url, Err: err}
	case strings.Contains(l, "not found") ||
		strings.Contains(l, "repository does not exist") ||
		strings.Contains(l, "reference not found"):
		return &NotFoundError{Op: "clone", URL: url, Err: err}
	}
	return fmt.Errorf("failed to clone repository %s: %w", url, err)
}
