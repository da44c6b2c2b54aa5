package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docsync/internal/config"
)

// setupOriginRepo creates a local git repository with documentation content.
func setupOriginRepo(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()

	repo, err := gogit.PlainInit(dir, false)
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)

	for rel, content := range files {
		full := filepath.Join(dir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o750))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
		_, err = wt.Add(rel)
		require.NoError(t, err)
	}
	_, err = wt.Commit("content", &gogit.CommitOptions{
		Author: &object.Signature{Name: "tester", Email: "tester@example.com", When: time.Now()},
	})
	require.NoError(t, err)
	return dir
}

func clearTriggerEnv(t *testing.T) {
	t.Helper()
	t.Setenv(config.EnvTriggerRepository, "")
	t.Setenv(config.EnvTriggerCommitSHA, "")
	t.Setenv(config.EnvChangedFiles, "")
}

func TestRunPullEndToEnd(t *testing.T) {
	clearTriggerEnv(t)

	origin := setupOriginRepo(t, map[string]string{
		"docs/a/b.md":       "# B",
		"docs/skip.txt":     "not docs",
		"events/order.yaml": "event: order\n",
	})

	docsDir := t.TempDir()
	cfg := &config.Config{
		Repositories: []config.Repository{
			{
				Name:   "engineering",
				URL:    origin,
				Branch: "master",
				Patterns: []config.PatternRule{
					{Source: "docs/**/*.md", Destination: "guides/"},
					{Source: "events/*.yaml", Destination: "asyncapi/"},
				},
			},
		},
		TempDir: filepath.Join(t.TempDir(), "clones"),
		DocsDir: docsDir,
	}

	require.NoError(t, runPull(cfg))

	copied, err := os.ReadFile(filepath.Join(docsDir, "guides", "a", "b.md"))
	require.NoError(t, err)
	assert.Equal(t, "# B", string(copied))

	wrapper, err := os.ReadFile(filepath.Join(docsDir, "asyncapi", "order.yaml.md"))
	require.NoError(t, err)
	assert.Contains(t, string(wrapper), "Source: `events/order.yaml`")

	_, err = os.Stat(filepath.Join(docsDir, "asyncapi", "order.yaml"))
	assert.True(t, os.IsNotExist(err), "raw YAML must not land in the destination tree")

	_, err = os.Stat(cfg.TempDir)
	assert.True(t, os.IsNotExist(err), "temporary workspace must be removed after the run")
}

func TestRunPullTriggerScoping(t *testing.T) {
	clearTriggerEnv(t)
	t.Setenv(config.EnvTriggerRepository, "acme/engineering")

	origin := setupOriginRepo(t, map[string]string{"docs/a.md": "# A"})

	docsDir := t.TempDir()
	cfg := &config.Config{
		Repositories: []config.Repository{
			{
				Name:     "engineering",
				URL:      origin,
				Branch:   "master",
				Patterns: []config.PatternRule{{Source: "docs/*.md", Destination: "engineering/"}},
			},
			{
				// Unreachable on purpose; the trigger must skip it entirely.
				Name:     "operations",
				URL:      "https://invalid.invalid/acme/operations.git",
				Branch:   "main",
				Patterns: []config.PatternRule{{Source: "docs/*.md", Destination: "operations/"}},
			},
		},
		TempDir: filepath.Join(t.TempDir(), "clones"),
		DocsDir: docsDir,
	}

	require.NoError(t, runPull(cfg))

	_, err := os.Stat(filepath.Join(docsDir, "engineering", "a.md"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(docsDir, "operations"))
	assert.True(t, os.IsNotExist(err))
}

func TestRunPullZeroCopiesIsNotAnError(t *testing.T) {
	clearTriggerEnv(t)

	origin := setupOriginRepo(t, map[string]string{"src/main.go": "package main"})

	cfg := &config.Config{
		Repositories: []config.Repository{
			{
				Name:     "engineering",
				URL:      origin,
				Branch:   "master",
				Patterns: []config.PatternRule{{Source: "docs/*.md", Destination: "guides/"}},
			},
		},
		TempDir: filepath.Join(t.TempDir(), "clones"),
		DocsDir: t.TempDir(),
	}

	require.NoError(t, runPull(cfg), "zero copies is a warning, not a failure")
}

func TestRunVerify(t *testing.T) {
	base := t.TempDir()
	files := map[string]string{
		"mkdocs.yml":                       "site_name: Platform Docs\n",
		"config.json":                      `{"repositories":[{"name":"engineering","url":"https://github.com/acme/engineering.git"}]}`,
		".gitignore":                       ".temp_repos/\n",
		".github/workflows/docs.yml":       "name: docs\n",
		"docs/index.md":                    "# Welcome\n",
		"docs/getting-started/overview.md": "# Overview\n",
		"docs/getting-started/setup.md":    "# Setup\n",
		"docs/engineering/index.md":        "# Engineering\n",
		"docs/operations/index.md":         "# Operations\n",
		"docs/asyncapi/index.md":           "# AsyncAPI\n",
	}
	for rel, content := range files {
		full := filepath.Join(base, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o750))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}

	require.NoError(t, runVerify(base))

	require.NoError(t, os.Remove(filepath.Join(base, "docs", "index.md")))
	require.Error(t, runVerify(base), "verify must fail when a required page is missing")
}
