// Package whitespace rewrites source files in place so that they use Unix
// line endings and spaces instead of tabs.
//
// Content is treated as raw bytes. Every '\r' is removed, which turns both
// CRLF and bare CR line endings into LF, and every '\t' is replaced with a
// fixed replacement string (two spaces by default). Files that need neither
// fix are never written, so their modification time is preserved.
package whitespace

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/FocuswithJustin/srctools/core/errors"
	"github.com/FocuswithJustin/srctools/internal/digest"
	"github.com/FocuswithJustin/srctools/internal/fileutil"
	"github.com/FocuswithJustin/srctools/internal/logging"
)

// DefaultTabReplacement replaces each tab byte.
const DefaultTabReplacement = "  "

// DefaultExtensions are the file suffixes processed when none are configured.
var DefaultExtensions = []string{".cpp", ".h", ".cmake", ".txt"}

// Change records which fixes were applied to a file.
type Change uint8

const (
	// ChangeCR means carriage returns were removed.
	ChangeCR Change = 1 << iota
	// ChangeTabs means tabs were replaced.
	ChangeTabs
)

// Has reports whether c includes flag.
func (c Change) Has(flag Change) bool {
	return c&flag != 0
}

func (c Change) String() string {
	switch c {
	case 0:
		return "none"
	case ChangeCR:
		return "crlf"
	case ChangeTabs:
		return "tabs"
	case ChangeCR | ChangeTabs:
		return "crlf+tabs"
	}
	return fmt.Sprintf("Change(%d)", uint8(c))
}

// Fix applies both fixes with the default tab replacement.
func Fix(data []byte) ([]byte, Change) {
	return fix(data, []byte(DefaultTabReplacement))
}

func fix(data, tab []byte) ([]byte, Change) {
	var c Change
	if bytes.IndexByte(data, '\r') >= 0 {
		data = bytes.ReplaceAll(data, []byte{'\r'}, nil)
		c |= ChangeCR
	}
	if bytes.IndexByte(data, '\t') >= 0 {
		data = bytes.ReplaceAll(data, []byte{'\t'}, tab)
		c |= ChangeTabs
	}
	return data, c
}

// Options configures a Normalizer.
type Options struct {
	// Extensions lists the accepted file suffixes, compared case-insensitively.
	// Empty means DefaultExtensions.
	Extensions []string
	// TabReplacement replaces every tab. Empty means DefaultTabReplacement.
	TabReplacement string
	// DryRun reports fixes without writing files.
	DryRun bool
	// Out receives the operator report. Nil discards it.
	Out io.Writer
}

// FileResult describes one file that needed fixing.
type FileResult struct {
	Path   string
	Change Change
	// BLAKE3 is the digest of the fixed content.
	BLAKE3 string
}

// Summary is the outcome of a Run.
type Summary struct {
	Scanned int // regular files visited
	Matched int // files with an accepted extension
	Fixed   []FileResult
}

// Normalizer walks a directory tree and fixes whitespace in matching files.
type Normalizer struct {
	exts   []string
	tab    []byte
	dryRun bool
	out    io.Writer
}

// New creates a Normalizer from opts.
func New(opts Options) *Normalizer {
	exts := opts.Extensions
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	n := &Normalizer{
		exts:   make([]string, 0, len(exts)),
		tab:    []byte(DefaultTabReplacement),
		dryRun: opts.DryRun,
		out:    opts.Out,
	}
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		n.exts = append(n.exts, ext)
	}
	if opts.TabReplacement != "" {
		n.tab = []byte(opts.TabReplacement)
	}
	if n.out == nil {
		n.out = io.Discard
	}
	return n
}

// Matches reports whether the file name has an accepted extension.
func (n *Normalizer) Matches(name string) bool {
	name = strings.ToLower(name)
	for _, ext := range n.exts {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

// Fix applies both fixes using the configured tab replacement.
func (n *Normalizer) Fix(data []byte) ([]byte, Change) {
	return fix(data, n.tab)
}

// Run walks root recursively and fixes every matching regular file. The
// first read, write or walk error aborts the run.
func (n *Normalizer) Run(ctx context.Context, root string) (*Summary, error) {
	sum := &Summary{}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return errors.NewIO("walk", path, err)
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		sum.Scanned++
		if !n.Matches(d.Name()) {
			return nil
		}
		sum.Matched++

		res, err := n.FixFile(ctx, path)
		if err != nil {
			return err
		}
		if res.Change != 0 {
			sum.Fixed = append(sum.Fixed, res)
		}
		return nil
	})
	return sum, err
}

// FixFile reads path, reports and applies the needed fixes. The extension
// is not checked.
func (n *Normalizer) FixFile(ctx context.Context, path string) (FileResult, error) {
	data, err := fileutil.ReadFile(path)
	if err != nil {
		return FileResult{}, err
	}

	fixed, change := n.Fix(data)
	res := FileResult{Path: path, Change: change}
	if change == 0 {
		return res, nil
	}
	res.BLAKE3 = digest.Sum(fixed)

	verb := "Fixing"
	if n.dryRun {
		verb = "Would fix"
	}
	if change.Has(ChangeCR) {
		fmt.Fprintf(n.out, "%s \\r\\n in: %s\n", verb, path)
	}
	if change.Has(ChangeTabs) {
		fmt.Fprintf(n.out, "%s TABs in: %s\n", verb, path)
	}
	logging.FileFixed(ctx, path, change.Has(ChangeCR), change.Has(ChangeTabs), n.dryRun, res.BLAKE3)

	if n.dryRun {
		return res, nil
	}
	if err := fileutil.Rewrite(path, fixed); err != nil {
		return FileResult{}, err
	}
	return res, nil
}
