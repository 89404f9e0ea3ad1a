// Package engine turns a project directory into prompt text and computes
// token/line statistics over it.
//
// An Engine is built per request from Options and is not reused: callers
// construct one, call Generate or Analyse, and drop it. The engine only
// reads from the filesystem; it never writes.
package engine

import (
	"context"
	"fmt"
	"path/filepath"
)

// Format selects the layout of generated prompt text.
type Format string

const (
	FormatDefault  Format = "default"
	FormatMarkdown Format = "markdown"
	FormatCXML     Format = "cxml"
)

// Formats lists every supported output format in presentation order.
var Formats = []Format{FormatDefault, FormatMarkdown, FormatCXML}

// Valid reports whether f is one of the supported formats.
func (f Format) Valid() bool {
	for _, known := range Formats {
		if f == known {
			return true
		}
	}
	return false
}

// DefaultTreeDepth is the project tree depth used when Options leaves it unset.
const DefaultTreeDepth = 5

// DefaultMaxFileSize is the largest file (in bytes) the engine will read.
const DefaultMaxFileSize = 1 << 20

// Options configures a single engine run.
type Options struct {
	// Root is the project directory. Required.
	Root string
	// IncludePatterns restricts the walk to files matching at least one glob.
	IncludePatterns []string
	// ExcludePatterns drops files and directories matching any glob.
	ExcludePatterns []string
	// RespectGitignore honours the root .gitignore and skips conventional
	// dependency and build directories.
	RespectGitignore bool
	// Compress replaces file bodies with a declaration skeleton where the
	// language is recognised.
	Compress bool
	// Format selects the output layout. Empty means FormatDefault.
	Format Format
	// TreeDepth limits the rendered project tree. Negative means DefaultTreeDepth.
	TreeDepth int
	// ExplicitFiles, when non-empty, replaces the directory walk with exactly
	// these files. Paths are absolute or relative to Root.
	ExplicitFiles []string
	// MaxFileSize skips larger files. Zero means DefaultMaxFileSize.
	MaxFileSize int64
	// ExtraIgnoreDirs are directory names skipped in addition to the
	// conventional set when RespectGitignore is on.
	ExtraIgnoreDirs []string
}

// Engine generates prompts and statistics for one project.
type Engine struct {
	opts Options
}

// New creates an Engine. It performs no I/O; path problems surface from
// Generate and Analyse.
func New(opts Options) *Engine {
	if opts.Format == "" {
		opts.Format = FormatDefault
	}
	if opts.TreeDepth < 0 {
		opts.TreeDepth = DefaultTreeDepth
	}
	if opts.MaxFileSize <= 0 {
		opts.MaxFileSize = DefaultMaxFileSize
	}
	return &Engine{opts: opts}
}

// Options returns the effective options after defaults were applied.
func (e *Engine) Options() Options {
	return e.opts
}

// Generate renders the selected project files as prompt text.
func (e *Engine) Generate(ctx context.Context) (string, error) {
	if !e.opts.Format.Valid() {
		return "", fmt.Errorf("unsupported output format %q", e.opts.Format)
	}

	root, err := resolveRoot(e.opts.Root)
	if err != nil {
		return "", err
	}
	files, err := e.collect(ctx, root)
	if err != nil {
		return "", err
	}

	if e.opts.Compress {
		for i := range files {
			files[i].Content = compress(files[i].Path, files[i].Content)
		}
	}

	return render(filepath.Base(root), e.opts, files)
}

// Analyse computes totals, a per-extension breakdown and the largest files
// by token count. Both ranked lists are cut to topN entries; topN <= 0
// leaves them uncut.
func (e *Engine) Analyse(ctx context.Context, topN int) (*Analysis, error) {
	root, err := resolveRoot(e.opts.Root)
	if err != nil {
		return nil, err
	}
	files, err := e.collect(ctx, root)
	if err != nil {
		return nil, err
	}
	return analyse(files, topN), nil
}
