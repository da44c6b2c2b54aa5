// Package sync copies files matched by configured pattern rules from a cloned
// repository into the local documentation tree.
package sync

import (
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/docsync/internal/config"
	"git.home.luguber.info/inful/docsync/internal/logfields"
	"git.home.luguber.info/inful/docsync/internal/match"
)

// Outcome classifies the result of one attempted file synchronization.
type Outcome int

const (
	OutcomeCopied Outcome = iota
	OutcomeRendered
	OutcomeSkippedExcluded
	OutcomeSkippedNoMatch
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCopied:
		return "copied"
	case OutcomeRendered:
		return "rendered"
	case OutcomeSkippedExcluded:
		return "skipped-excluded"
	case OutcomeSkippedNoMatch:
		return "skipped-no-match"
	case OutcomeFailed:
		return "failed-io"
	default:
		return "unknown"
	}
}

// Stats aggregates per-file outcomes for one synchronization pass.
type Stats struct {
	Copied   int
	Rendered int
	Skipped  int
	Failed   int
}

// Total returns the number of files that landed in the destination tree.
func (s Stats) Total() int { return s.Copied + s.Rendered }

func (s *Stats) record(o Outcome) {
	switch o {
	case OutcomeCopied:
		s.Copied++
	case OutcomeRendered:
		s.Rendered++
	case OutcomeSkippedExcluded, OutcomeSkippedNoMatch:
		s.Skipped++
	case OutcomeFailed:
		s.Failed++
	}
}

// Syncer copies matched files into the destination documentation tree.
type Syncer struct {
	docsDir    string
	exclusions []string
	stats      Stats
}

// NewSyncer creates a syncer writing into docsDir with the given global
// exclusion patterns.
func NewSyncer(docsDir string, exclusions []string) *Syncer {
	return &Syncer{docsDir: docsDir, exclusions: exclusions}
}

// Stats returns the outcome counters accumulated so far.
func (s *Syncer) Stats() Stats { return s.stats }

// Sync performs a full pattern-based pass over the repository working copy and
// returns the number of files copied or rendered. Static path mappings are
// applied first, then every pattern rule in order. Individual copy failures
// are logged and counted but never abort the run.
func (s *Syncer) Sync(sourceRoot string, repo config.Repository) (int, error) {
	before := s.stats.Total()

	s.copyStaticPaths(sourceRoot, repo)

	for _, rule := range repo.Patterns {
		if rule.Description != "" {
			slog.Info("Applying pattern", logfields.Pattern(rule.Source), slog.String("description", rule.Description))
		}
		if err := s.syncRule(sourceRoot, repo, rule); err != nil {
			slog.Warn("Pattern rule failed", logfields.Repository(repo.Name), logfields.Pattern(rule.Source), logfields.Error(err))
		}
	}

	s.cleanupRawConfigFiles()
	return s.stats.Total() - before, nil
}

// SyncChanged restricts synchronization to the supplied changed-file manifest.
// Paths absent from the working copy (deleted in the revision) are skipped
// with a diagnostic. When no manifest entry matches any rule the synchronizer
// falls back to a full pattern pass.
func (s *Syncer) SyncChanged(sourceRoot string, repo config.Repository, changed []string) (int, error) {
	if len(changed) == 0 {
		return s.Sync(sourceRoot, repo)
	}

	before := s.stats.Total()
	for _, rel := range changed {
		rel = match.Normalize(rel)
		srcPath := filepath.Join(sourceRoot, filepath.FromSlash(rel))
		info, err := os.Stat(srcPath)
		if err != nil || info.IsDir() {
			slog.Info("Changed file not present in working copy, skipping", logfields.Repository(repo.Name), logfields.File(rel))
			continue
		}
		outcome := s.syncCandidate(sourceRoot, repo, rel)
		slog.Debug("Changed file processed", logfields.File(rel), slog.String("outcome", outcome.String()))
	}

	copied := s.stats.Total() - before
	if copied == 0 {
		slog.Info("No changed files matched configured patterns, falling back to full sync", logfields.Repository(repo.Name))
		return s.Sync(sourceRoot, repo)
	}

	s.cleanupRawConfigFiles()
	return copied, nil
}

// syncCandidate tests one repo-relative path against every rule and copies it
// via the first rule that matches.
func (s *Syncer) syncCandidate(sourceRoot string, repo config.Repository, rel string) Outcome {
	if match.Excluded(rel, s.exclusions) {
		s.stats.record(OutcomeSkippedExcluded)
		return OutcomeSkippedExcluded
	}
	for _, rule := range repo.Patterns {
		if !match.Matches(rel, rule, s.exclusions) {
			continue
		}
		outcome := s.syncFile(sourceRoot, rel, rule)
		s.stats.record(outcome)
		return outcome
	}
	s.stats.record(OutcomeSkippedNoMatch)
	return OutcomeSkippedNoMatch
}

// syncRule walks the rule's implied search root and copies every match.
func (s *Syncer) syncRule(sourceRoot string, repo config.Repository, rule config.PatternRule) error {
	root := match.SearchRoot(rule.Source)
	walkBase := filepath.Join(sourceRoot, filepath.FromSlash(root))

	if _, err := os.Stat(walkBase); os.IsNotExist(err) {
		slog.Warn("Source directory does not exist", logfields.Repository(repo.Name), logfields.Path(root))
		return nil
	}

	matched := 0
	err := filepath.WalkDir(walkBase, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return fs.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(sourceRoot, p)
		if err != nil {
			return fmt.Errorf("relative path for %s: %w", p, err)
		}
		rel = match.Normalize(rel)
		if !match.Matches(rel, rule, s.exclusions) {
			return nil
		}
		matched++
		s.stats.record(s.syncFile(sourceRoot, rel, rule))
		return nil
	})
	if err != nil {
		return fmt.Errorf("walk %s: %w", root, err)
	}
	if matched == 0 {
		slog.Info("No files matched pattern", logfields.Repository(repo.Name), logfields.Pattern(rule.Source))
	}
	return nil
}

// syncFile copies or renders one matched file to its computed destination.
func (s *Syncer) syncFile(sourceRoot, rel string, rule config.PatternRule) Outcome {
	srcPath := filepath.Join(sourceRoot, filepath.FromSlash(rel))
	destPath := s.destinationPath(rel, rule)

	if isStructuredConfig(rel) {
		if err := s.renderWrapped(srcPath, rel, destPath+".md"); err != nil {
			slog.Error("Failed to render file", logfields.Source(rel), logfields.Error(err))
			return OutcomeFailed
		}
		slog.Info("Rendered file", logfields.Source(rel), logfields.Destination(destPath+".md"))
		return OutcomeRendered
	}

	if err := copyFile(srcPath, destPath); err != nil {
		slog.Error("Failed to copy file", logfields.Source(rel), logfields.Error(err))
		return OutcomeFailed
	}
	slog.Info("Copied file", logfields.Source(rel), logfields.Destination(destPath))
	return OutcomeCopied
}

// destinationPath computes where a matched file lands. A destination ending in
// a separator (or empty) is a directory: the file's path relative to the
// rule's search root is appended, preserving subdirectory structure. Anything
// else is an exact target file path, only sensible for single-file rules.
func (s *Syncer) destinationPath(rel string, rule config.PatternRule) string {
	dest := match.Normalize(rule.Destination)
	if dest != "" && !strings.HasSuffix(dest, "/") {
		return filepath.Join(s.docsDir, filepath.FromSlash(dest))
	}

	root := match.SearchRoot(rule.Source)
	tail := rel
	if root != "." {
		tail = strings.TrimPrefix(rel, root+"/")
	}
	return filepath.Join(s.docsDir, filepath.FromSlash(dest), filepath.FromSlash(tail))
}

// copyStaticPaths applies the repository's literal source -> destination file
// mapping. Missing sources are warnings, not errors.
func (s *Syncer) copyStaticPaths(sourceRoot string, repo config.Repository) {
	for src, dst := range repo.Paths {
		srcPath := filepath.Join(sourceRoot, filepath.FromSlash(match.Normalize(src)))
		if _, err := os.Stat(srcPath); err != nil {
			slog.Warn("Static mapping source not found", logfields.Repository(repo.Name), logfields.Source(src))
			continue
		}
		destPath := filepath.Join(s.docsDir, filepath.FromSlash(match.Normalize(dst)))
		if err := copyFile(srcPath, destPath); err != nil {
			slog.Error("Failed to copy static mapping", logfields.Source(src), logfields.Error(err))
			s.stats.record(OutcomeFailed)
			continue
		}
		slog.Info("Copied file", logfields.Source(src), logfields.Destination(dst))
		s.stats.record(OutcomeCopied)
	}
}

// renderWrapped embeds a structured-configuration file into a generated
// markdown wrapper instead of copying it verbatim. Raw YAML in the destination
// tree would collide with the site generator's routing, so the content is
// presented as a titled page with the original text fenced as a code block.
func (s *Syncer) renderWrapped(srcPath, rel, destPath string) error {
	raw, err := os.ReadFile(srcPath)
	if err != nil {
		return fmt.Errorf("read source: %w", err)
	}
	// Lenient decode: drop invalid UTF-8 bytes rather than failing the file.
	text := strings.ToValidUTF8(string(raw), "")

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", filepath.Base(rel))
	fmt.Fprintf(&b, "Source: `%s`\n\n", rel)
	fmt.Fprintf(&b, "```yaml\n%s", text)
	if !strings.HasSuffix(text, "\n") {
		b.WriteString("\n")
	}
	b.WriteString("```\n")

	if err := os.MkdirAll(filepath.Dir(destPath), 0o750); err != nil {
		return fmt.Errorf("create destination directory: %w", err)
	}
	if err := os.WriteFile(destPath, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write wrapper: %w", err)
	}
	return nil
}

// cleanupRawConfigFiles removes any raw structured-configuration file left
// under the destination tree, regardless of which rule (or earlier run)
// produced it. Stale copies would otherwise shadow their rendered wrappers.
func (s *Syncer) cleanupRawConfigFiles() {
	_ = filepath.WalkDir(s.docsDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // Best effort; the destination tree may not exist yet
		}
		if d.IsDir() || !isStructuredConfig(p) {
			return nil
		}
		if rmErr := os.Remove(p); rmErr != nil {
			slog.Warn("Failed to remove stale file", logfields.Path(p), logfields.Error(rmErr))
		} else {
			slog.Info("Removed raw config file from destination tree", logfields.Path(p))
		}
		return nil
	})
}

// isStructuredConfig reports whether the file uses one of the two conventional
// YAML extensions.
func isStructuredConfig(p string) bool {
	ext := strings.ToLower(filepath.Ext(p))
	return ext == ".yaml" || ext == ".yml"
}

// copyFile copies src to dst, creating parent directories and preserving the
// source modification time where the platform supports it.
func copyFile(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return fmt.Errorf("create destination directory: %w", err)
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create destination: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy content: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close destination: %w", err)
	}

	if err := os.Chtimes(dst, info.ModTime(), info.ModTime()); err != nil {
		slog.Debug("Could not preserve timestamps", logfields.Path(dst), logfields.Error(err))
	}
	return nil
}
