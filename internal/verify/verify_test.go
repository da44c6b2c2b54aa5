package verify

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupCompleteSite writes a fully valid documentation setup into a temp dir.
func setupCompleteSite(t *testing.T) string {
	t.Helper()
	base := t.TempDir()

	files := map[string]string{
		"mkdocs.yml":                       "site_name: Platform Docs\nnav:\n  - Home: index.md\n",
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
	return base
}

func TestRunAllChecksPass(t *testing.T) {
	base := setupCompleteSite(t)

	summary := NewVerifier(base).Run()
	for _, r := range summary.Results {
		assert.True(t, r.Passed, "check %q failed: %s", r.Name, r.Detail)
	}
	assert.True(t, summary.AllPassed())
	assert.Equal(t, summary.Total(), summary.Passed())
}

func TestMissingFilesFailIndependently(t *testing.T) {
	base := setupCompleteSite(t)
	require.NoError(t, os.Remove(filepath.Join(base, ".gitignore")))
	require.NoError(t, os.Remove(filepath.Join(base, "docs", "asyncapi", "index.md")))

	summary := NewVerifier(base).Run()
	assert.False(t, summary.AllPassed())
	// Exactly two checks fail; the rest are unaffected.
	assert.Equal(t, summary.Total()-2, summary.Passed())
}

func TestInvalidJSONConfig(t *testing.T) {
	base := setupCompleteSite(t)
	require.NoError(t, os.WriteFile(filepath.Join(base, "config.json"), []byte("{not json"), 0o644))

	summary := NewVerifier(base).Run()
	failed := map[string]bool{}
	for _, r := range summary.Results {
		if !r.Passed {
			failed[r.Name] = true
		}
	}
	assert.True(t, failed["config.json is valid JSON"])
	assert.True(t, failed["config.json has no placeholders"])
}

func TestPlaceholderDetection(t *testing.T) {
	base := setupCompleteSite(t)
	cfg := `{"repositories":[{"name":"engineering","url":"https://github.com/your-org/engineering.git"}]}`
	require.NoError(t, os.WriteFile(filepath.Join(base, "config.json"), []byte(cfg), 0o644))
	mkdocs := "site_name: Docs\nrepo_url: https://github.com/your-org/docs\n"
	require.NoError(t, os.WriteFile(filepath.Join(base, "mkdocs.yml"), []byte(mkdocs), 0o644))

	summary := NewVerifier(base).Run()
	var placeholders, mkdocsCheck *Result
	for i := range summary.Results {
		switch summary.Results[i].Name {
		case "config.json has no placeholders":
			placeholders = &summary.Results[i]
		case "mkdocs.yml is valid":
			mkdocsCheck = &summary.Results[i]
		}
	}
	require.NotNil(t, placeholders)
	require.NotNil(t, mkdocsCheck)
	assert.False(t, placeholders.Passed)
	assert.Contains(t, placeholders.Detail, "your-org")
	assert.False(t, mkdocsCheck.Passed)
}

func TestMkdocsMissingSiteName(t *testing.T) {
	base := setupCompleteSite(t)
	require.NoError(t, os.WriteFile(filepath.Join(base, "mkdocs.yml"), []byte("theme: material\n"), 0o644))

	summary := NewVerifier(base).Run()
	for _, r := range summary.Results {
		if r.Name == "mkdocs.yml is valid" {
			assert.False(t, r.Passed)
			assert.Contains(t, r.Detail, "site_name")
			return
		}
	}
	t.Fatal("mkdocs check not found")
}

func TestPageWithoutHeadingFails(t *testing.T) {
	base := setupCompleteSite(t)
	require.NoError(t, os.WriteFile(filepath.Join(base, "docs", "index.md"), []byte("just prose, no heading\n"), 0o644))

	summary := NewVerifier(base).Run()
	for _, r := range summary.Results {
		if r.Name == "documentation page index.md" {
			assert.False(t, r.Passed)
			assert.Equal(t, "no heading found", r.Detail)
			return
		}
	}
	t.Fatal("page check not found")
}

func TestHasHeading(t *testing.T) {
	assert.True(t, hasHeading([]byte("# Title\n\nbody\n")))
	assert.True(t, hasHeading([]byte("Setext Title\n=====\n")))
	assert.False(t, hasHeading([]byte("plain paragraph\n")))
	assert.False(t, hasHeading([]byte("")))
}
