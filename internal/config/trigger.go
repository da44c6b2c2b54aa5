package config

import (
	"os"
	"strings"
)

// Trigger carries the signals supplied by the invoking automation environment.
// All fields are optional; a zero Trigger means "pull everything at branch tip".
type Trigger struct {
	Repository   string   // Identifier of the repository that caused this run
	CommitSHA    string   // Specific revision to synchronize, if known
	ChangedFiles []string // Repository-relative paths touched by the revision
}

// Environment variable names set by the CI/automation environment.
const (
	EnvTriggerRepository = "TRIGGER_REPOSITORY"
	EnvTriggerCommitSHA  = "TRIGGER_COMMIT_SHA"
	EnvChangedFiles      = "CHANGED_FILES"
)

// TriggerFromEnv reads the trigger signals from the process environment.
func TriggerFromEnv() Trigger {
	return Trigger{
		Repository:   strings.ToLower(strings.TrimSpace(os.Getenv(EnvTriggerRepository))),
		CommitSHA:    strings.TrimSpace(os.Getenv(EnvTriggerCommitSHA)),
		ChangedFiles: splitChangedFiles(os.Getenv(EnvChangedFiles)),
	}
}

// Selects reports whether the trigger names the given repository. An empty
// trigger selects every repository. An identifier that matches no configured
// repository also selects everything, so an unrecognized trigger degrades to a
// full pull instead of a silent no-op.
func (t Trigger) Selects(repoName string, known []Repository) bool {
	if t.Repository == "" {
		return true
	}
	if triggerMatchesName(t.Repository, repoName) {
		return true
	}
	for _, r := range known {
		if triggerMatchesName(t.Repository, r.Name) {
			return false // Trigger names a different known repository
		}
	}
	return true // Unknown trigger identifier: pull from all repos to be safe
}

// Names reports whether the trigger explicitly identifies the given
// repository. Unlike Selects, an empty or unknown trigger names nothing;
// revision-scoped behavior (commit checkout, changed-file manifests) only
// applies to the repository that actually caused the run.
func (t Trigger) Names(repoName string) bool {
	return t.Repository != "" && triggerMatchesName(t.Repository, repoName)
}

// triggerMatchesName compares a trigger identifier (often "org/repo-name")
// against a configured repository name, treating '-' and '_' as equivalent.
func triggerMatchesName(trigger, name string) bool {
	norm := func(s string) string {
		return strings.ReplaceAll(strings.ToLower(s), "_", "-")
	}
	return strings.Contains(norm(trigger), norm(name))
}

func splitChangedFiles(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	files := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			files = append(files, p)
		}
	}
	return files
}
