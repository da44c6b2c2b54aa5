// Package verify implements the pre-deployment setup checklist. Every check
// is independent and read-only; the aggregate result is the count of passed
// checks.
package verify

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/docsync/internal/config"
)

// Result is the outcome of one independent check.
type Result struct {
	Name   string
	Detail string
	Passed bool
}

// Summary aggregates the results of a verification run.
type Summary struct {
	Results []Result
}

// Passed returns the number of checks that passed.
func (s Summary) Passed() int {
	n := 0
	for _, r := range s.Results {
		if r.Passed {
			n++
		}
	}
	return n
}

// Total returns the number of checks executed.
func (s Summary) Total() int { return len(s.Results) }

// AllPassed reports whether every check passed.
func (s Summary) AllPassed() bool { return s.Passed() == s.Total() }

// RequiredPages is the fixed list of documentation pages that must exist
// before deployment.
var RequiredPages = []string{
	"index.md",
	"getting-started/overview.md",
	"getting-started/setup.md",
	"engineering/index.md",
	"operations/index.md",
	"asyncapi/index.md",
}

// Verifier validates that the documentation setup is ready for deployment.
type Verifier struct {
	baseDir string
}

// NewVerifier creates a verifier rooted at the repository base directory.
func NewVerifier(baseDir string) *Verifier {
	return &Verifier{baseDir: baseDir}
}

// Run executes every check. Checks are order-insensitive and share no state.
func (v *Verifier) Run() Summary {
	var s Summary
	s.Results = append(s.Results, v.checkRequiredFiles()...)
	s.Results = append(s.Results, v.checkConfigJSON())
	s.Results = append(s.Results, v.checkConfigPlaceholders())
	s.Results = append(s.Results, v.checkMkdocsConfig())
	s.Results = append(s.Results, v.checkDocsStructure()...)
	return s
}

// checkRequiredFiles verifies the expected top-level files exist.
func (v *Verifier) checkRequiredFiles() []Result {
	required := []struct {
		rel  string
		desc string
	}{
		{"mkdocs.yml", "MkDocs configuration"},
		{"config.json", "Sync configuration file"},
		{".gitignore", "Git ignore file"},
		{filepath.Join(".github", "workflows", "docs.yml"), "CI workflow"},
	}

	results := make([]Result, 0, len(required))
	for _, f := range required {
		path := filepath.Join(v.baseDir, f.rel)
		if _, err := os.Stat(path); err != nil {
			results = append(results, Result{Name: f.desc, Detail: f.rel + " not found", Passed: false})
		} else {
			results = append(results, Result{Name: f.desc, Detail: f.rel, Passed: true})
		}
	}
	return results
}

// checkConfigJSON verifies the configuration file parses as JSON.
func (v *Verifier) checkConfigJSON() Result {
	const name = "config.json is valid JSON"
	data, err := os.ReadFile(filepath.Join(v.baseDir, "config.json"))
	if err != nil {
		return Result{Name: name, Detail: err.Error(), Passed: false}
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("invalid JSON: %v", err), Passed: false}
	}
	return Result{Name: name, Passed: true}
}

// checkConfigPlaceholders verifies the configuration has no placeholder values
// and declares at least one repository with a URL.
func (v *Verifier) checkConfigPlaceholders() Result {
	const name = "config.json has no placeholders"
	data, err := os.ReadFile(filepath.Join(v.baseDir, "config.json"))
	if err != nil {
		return Result{Name: name, Detail: err.Error(), Passed: false}
	}

	var cfg config.Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("invalid JSON: %v", err), Passed: false}
	}

	var issues []string
	if len(cfg.Repositories) == 0 {
		issues = append(issues, "no repositories configured")
	}
	for _, repo := range cfg.Repositories {
		if repo.URL == "" {
			issues = append(issues, fmt.Sprintf("repository %q has no url", repo.Name))
		}
		if strings.Contains(repo.URL, "your-org") {
			issues = append(issues, fmt.Sprintf("repository %q URL contains 'your-org' placeholder", repo.Name))
		}
	}
	if len(issues) > 0 {
		return Result{Name: name, Detail: strings.Join(issues, "; "), Passed: false}
	}
	return Result{Name: name, Passed: true}
}

// mkdocsConfig is the subset of mkdocs.yml we validate.
type mkdocsConfig struct {
	SiteName string `yaml:"site_name"`
}

// checkMkdocsConfig verifies mkdocs.yml parses as YAML, carries a site name,
// and contains no placeholder organization.
func (v *Verifier) checkMkdocsConfig() Result {
	const name = "mkdocs.yml is valid"
	data, err := os.ReadFile(filepath.Join(v.baseDir, "mkdocs.yml"))
	if err != nil {
		return Result{Name: name, Detail: err.Error(), Passed: false}
	}

	var mk mkdocsConfig
	if err := yaml.Unmarshal(data, &mk); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("invalid YAML: %v", err), Passed: false}
	}

	var issues []string
	if strings.TrimSpace(mk.SiteName) == "" {
		issues = append(issues, "site_name is empty")
	}
	if strings.Contains(string(data), "your-org") {
		issues = append(issues, "contains 'your-org' placeholder(s)")
	}
	if len(issues) > 0 {
		return Result{Name: name, Detail: strings.Join(issues, "; "), Passed: false}
	}
	return Result{Name: name, Passed: true}
}

// checkDocsStructure verifies the fixed list of documentation pages exists and
// that each existing page is meaningful markdown (contains a heading).
func (v *Verifier) checkDocsStructure() []Result {
	docsDir := filepath.Join(v.baseDir, "docs")
	results := make([]Result, 0, len(RequiredPages))
	for _, rel := range RequiredPages {
		name := "documentation page " + rel
		path := filepath.Join(docsDir, filepath.FromSlash(rel))
		data, err := os.ReadFile(path)
		if err != nil {
			results = append(results, Result{Name: name, Detail: "missing", Passed: false})
			continue
		}
		if !hasHeading(data) {
			results = append(results, Result{Name: name, Detail: "no heading found", Passed: false})
			continue
		}
		results = append(results, Result{Name: name, Passed: true})
	}
	return results
}

// hasHeading parses markdown and reports whether the document contains at
// least one heading.
func hasHeading(source []byte) bool {
	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(source))
	found := false
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if _, ok := n.(*ast.Heading); ok {
			found = true
			return ast.WalkStop, nil
		}
		return ast.WalkContinue, nil
	})
	return found
}
