// Package match implements the glob matching rules used to select files for
// synchronization. Patterns use '*' and '?' within a path segment and '**' for
// arbitrary depth. Matching is case-sensitive and path-separator-normalized so
// behavior is identical across platforms.
package match

import (
	"path"
	"strings"

	"git.home.luguber.info/inful/docsync/internal/config"
)

// Matches reports whether candidate satisfies the rule's source pattern and is
// not excluded. The candidate path must be relative to the repository root.
// Exclusions are checked first and short-circuit to false.
func Matches(candidate string, rule config.PatternRule, exclusions []string) bool {
	candidate = Normalize(candidate)
	if Excluded(candidate, exclusions) {
		return false
	}

	source := Normalize(rule.Source)
	switch {
	case strings.Contains(source, "**"):
		return matchDoubleStar(candidate, source)
	case strings.ContainsAny(source, "*?"):
		return matchSingleGlob(candidate, source, rule.Recursive)
	default:
		// No wildcards: exact path, or exact filename for bare names.
		if candidate == source {
			return true
		}
		return !strings.Contains(source, "/") && path.Base(candidate) == source
	}
}

// Excluded reports whether candidate matches any exclusion pattern. Each
// pattern is tried against both the full path and the final path component.
func Excluded(candidate string, exclusions []string) bool {
	candidate = Normalize(candidate)
	name := path.Base(candidate)
	for _, pattern := range exclusions {
		pattern = Normalize(pattern)
		if ok, _ := path.Match(pattern, name); ok {
			return true
		}
		if ok, _ := path.Match(pattern, candidate); ok {
			return true
		}
	}
	return false
}

// Normalize converts backslashes to forward slashes and trims a leading "./".
func Normalize(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	return strings.TrimPrefix(p, "./")
}

// SearchRoot returns the literal directory prefix of a pattern, i.e. the
// deepest directory that can be walked without evaluating any wildcard.
// Returns "." when the pattern has no literal prefix.
func SearchRoot(source string) string {
	source = Normalize(source)
	if i := strings.IndexAny(source, "*?"); i >= 0 {
		source = source[:i]
	} else {
		// Literal path: the search root is its directory.
		return orDot(path.Dir(source))
	}
	if i := strings.LastIndex(source, "/"); i >= 0 {
		return orDot(source[:i])
	}
	return "."
}

func orDot(dir string) string {
	if dir == "" || dir == "/" {
		return "."
	}
	return strings.TrimSuffix(dir, "/")
}

// matchDoubleStar handles patterns containing '**'. The pattern splits at the
// first '**' into a literal prefix and a suffix glob; a candidate matches when
// it lies under the prefix and its final component satisfies the suffix glob
// at any depth. Patterns with more than one '**' degrade to a best-effort
// match with the extra '**' treated as '*' (documented limitation; richer
// grammars should be expressed as multiple rules).
func matchDoubleStar(candidate, source string) bool {
	idx := strings.Index(source, "**")
	prefix := strings.TrimSuffix(source[:idx], "/")
	suffix := strings.TrimPrefix(source[idx+2:], "/")
	suffix = strings.ReplaceAll(suffix, "**", "*")

	remainder := candidate
	if prefix != "" {
		if !strings.HasPrefix(candidate, prefix+"/") {
			return false
		}
		remainder = candidate[len(prefix)+1:]
	}
	if suffix == "" {
		return true // "dir/**" takes everything under dir
	}
	return segmentGlobMatch(remainder, suffix)
}

// segmentGlobMatch applies a suffix glob to the tail of the remainder path.
// A single-segment suffix matches the final component at any depth; a
// multi-segment suffix must match the trailing segments exactly.
func segmentGlobMatch(remainder, suffix string) bool {
	sufSegs := strings.Split(suffix, "/")
	remSegs := strings.Split(remainder, "/")
	if len(remSegs) < len(sufSegs) {
		return false
	}
	tail := remSegs[len(remSegs)-len(sufSegs):]
	for i, pat := range sufSegs {
		if ok, err := path.Match(pat, tail[i]); err != nil || !ok {
			return false
		}
	}
	return true
}

// matchSingleGlob handles patterns with '*'/'?' but no '**'. Non-recursive
// rules require the candidate to live directly in the pattern's directory;
// recursive rules apply the filename glob at every depth below it.
func matchSingleGlob(candidate, source string, recursive bool) bool {
	dir := path.Dir(source)
	nameGlob := path.Base(source)

	if recursive {
		remainder := candidate
		if dir != "." {
			if !strings.HasPrefix(candidate, dir+"/") {
				return false
			}
			remainder = candidate[len(dir)+1:]
		}
		ok, err := path.Match(nameGlob, path.Base(remainder))
		return err == nil && ok
	}

	if path.Dir(candidate) != dir {
		return false
	}
	ok, err := path.Match(nameGlob, path.Base(candidate))
	return err == nil && ok
}
