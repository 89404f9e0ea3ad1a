package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/bmatcuk/doublestar/v4"
	ignore "github.com/sabhiram/go-gitignore"
)

// sourceFile is one file selected for rendering or analysis.
type sourceFile struct {
	Path    string // slash-separated, relative to root
	Content string
}

// ignoreDirs are directory names skipped when gitignore handling is on.
// Build outputs, caches, VCS metadata and dependency directories.
var ignoreDirs = map[string]bool{
	"node_modules": true, "__pycache__": true,
	"vendor": true, "dist": true, "build": true, "target": true,
	".next": true, ".nuxt": true, "venv": true, ".venv": true,
	".idea": true, ".vscode": true, "coverage": true,
	".cache": true, ".tmp": true, ".terraform": true,
	".mypy_cache": true, ".pytest_cache": true, ".tox": true,
}

// binarySniffLen is how many leading bytes are checked for NUL bytes.
const binarySniffLen = 8000

// resolveRoot returns the absolute, symlink-free form of root and checks
// that it is a directory.
func resolveRoot(root string) (string, error) {
	if root == "" {
		return "", errors.New("root path is empty")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolving root path %s: %w", root, err)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}

	info, err := os.Stat(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("root path does not exist: %s", root)
		}
		return "", fmt.Errorf("reading root path %s: %w", root, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("root path is not a directory: %s", root)
	}
	return abs, nil
}

// collect selects the files this run covers, sorted by path for directory
// walks and in request order for explicit file lists.
func (e *Engine) collect(ctx context.Context, root string) ([]sourceFile, error) {
	if len(e.opts.ExplicitFiles) > 0 {
		return e.collectExplicit(root)
	}

	m, err := newMatcher(root, e.opts)
	if err != nil {
		return nil, err
	}

	var files []sourceFile
	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if p == root {
				return walkErr
			}
			// Unreadable subtrees are skipped, not fatal.
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if p == root {
			return nil
		}

		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if m.skipDir(rel, d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || !m.keepFile(rel) {
			return nil
		}

		content, ok, err := readSource(p, e.opts.MaxFileSize)
		if err != nil || !ok {
			return nil
		}
		files = append(files, sourceFile{Path: rel, Content: content})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", e.opts.Root, err)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

// collectExplicit reads exactly the requested files. Every path must stay
// inside root and name a regular file.
func (e *Engine) collectExplicit(root string) ([]sourceFile, error) {
	// Absolute requests may be spelled against the root as given, before
	// symlinks were resolved.
	lexicalRoot, err := filepath.Abs(e.opts.Root)
	if err != nil {
		return nil, fmt.Errorf("resolving root path %s: %w", e.opts.Root, err)
	}

	seen := make(map[string]bool, len(e.opts.ExplicitFiles))
	var files []sourceFile

	for _, requested := range e.opts.ExplicitFiles {
		abs := filepath.Clean(requested)
		if !filepath.IsAbs(abs) {
			abs = filepath.Join(root, abs)
		} else if rel, ok := relativeTo(lexicalRoot, abs); ok {
			abs = filepath.Join(root, rel)
		}
		if resolved, err := filepath.EvalSymlinks(abs); err == nil {
			abs = resolved
		}

		rel, ok := relativeTo(root, abs)
		if !ok {
			return nil, fmt.Errorf("path resolves outside the project root: %s", requested)
		}
		rel = filepath.ToSlash(rel)
		if seen[rel] {
			continue
		}
		seen[rel] = true

		info, err := os.Stat(abs)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("file not found: %s", requested)
			}
			return nil, fmt.Errorf("reading %s: %w", requested, err)
		}
		if info.IsDir() {
			return nil, fmt.Errorf("path is a directory: %s", requested)
		}

		content, ok, err := readSource(abs, e.opts.MaxFileSize)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", requested, err)
		}
		if !ok {
			continue
		}
		files = append(files, sourceFile{Path: rel, Content: content})
	}
	return files, nil
}

// relativeTo returns p relative to root when p lies inside root.
func relativeTo(root, p string) (string, bool) {
	rel, err := filepath.Rel(root, p)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(rel) {
		return "", false
	}
	return rel, true
}

// readSource reads a text file. ok is false for binary or oversized files.
func readSource(p string, maxSize int64) (string, bool, error) {
	info, err := os.Stat(p)
	if err != nil {
		return "", false, err
	}
	if info.Size() > maxSize {
		return "", false, nil
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return "", false, err
	}
	if isBinary(data) {
		return "", false, nil
	}
	return string(data), true, nil
}

func isBinary(data []byte) bool {
	sniff := data
	if len(sniff) > binarySniffLen {
		sniff = sniff[:binarySniffLen]
	}
	return bytes.IndexByte(sniff, 0) >= 0 || !utf8.Valid(data)
}

// matcher decides which walked paths are kept.
type matcher struct {
	include   []string
	exclude   []string
	skipDirs  map[string]bool
	gitignore *ignore.GitIgnore
}

func newMatcher(root string, opts Options) (*matcher, error) {
	m := &matcher{
		include:  opts.IncludePatterns,
		exclude:  opts.ExcludePatterns,
		skipDirs: map[string]bool{".git": true},
	}
	for _, p := range append(append([]string{}, opts.IncludePatterns...), opts.ExcludePatterns...) {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid glob pattern: %q", p)
		}
	}

	if !opts.RespectGitignore {
		return m, nil
	}
	for name := range ignoreDirs {
		m.skipDirs[name] = true
	}
	for _, name := range opts.ExtraIgnoreDirs {
		m.skipDirs[name] = true
	}

	gi, err := ignore.CompileIgnoreFile(filepath.Join(root, ".gitignore"))
	switch {
	case err == nil:
		m.gitignore = gi
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, fmt.Errorf("reading .gitignore: %w", err)
	}
	return m, nil
}

func (m *matcher) skipDir(rel, name string) bool {
	if m.skipDirs[name] {
		return true
	}
	if m.gitignore != nil && (m.gitignore.MatchesPath(rel) || m.gitignore.MatchesPath(rel+"/")) {
		return true
	}
	return matchAny(m.exclude, rel)
}

func (m *matcher) keepFile(rel string) bool {
	if m.gitignore != nil && m.gitignore.MatchesPath(rel) {
		return false
	}
	if matchAny(m.exclude, rel) {
		return false
	}
	return len(m.include) == 0 || matchAny(m.include, rel)
}

// matchAny reports whether rel matches any glob. Patterns without a slash
// also match against the base name, so "*.go" selects Go files at any depth.
func matchAny(patterns []string, rel string) bool {
	base := path.Base(rel)
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
		if !strings.Contains(p, "/") {
			if ok, _ := doublestar.Match(p, base); ok {
				return true
			}
		}
	}
	return false
}
