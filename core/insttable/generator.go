package insttable

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/FocuswithJustin/srctools/core/errors"
	"github.com/FocuswithJustin/srctools/internal/digest"
	"github.com/FocuswithJustin/srctools/internal/fileutil"
	"github.com/FocuswithJustin/srctools/internal/logging"
)

// Target is one source file to regenerate.
type Target struct {
	Path string `json:"file"`
	Arch string `json:"arch"`
}

// Config configures a Generator.
type Config struct {
	Targets []Target
	// DryRun computes the new content without writing it.
	DryRun bool
	// Out receives the operator report. Nil discards it.
	Out io.Writer
}

// Result describes one processed target.
type Result struct {
	Target
	Entries  int
	BlobSize int
	// Changed is true when the generated region differed from the file.
	Changed bool
	// BLAKE3 is the digest of the generated file content.
	BLAKE3 string
}

// Report is the outcome of a Run.
type Report struct {
	Results []Result
}

// Stale returns the results whose files were out of date.
func (r *Report) Stale() []Result {
	var stale []Result
	for _, res := range r.Results {
		if res.Changed {
			stale = append(stale, res)
		}
	}
	return stale
}

// Generator regenerates instruction tables for a fixed list of targets.
type Generator struct {
	cfg Config
	out io.Writer
}

// New creates a Generator.
func New(cfg Config) *Generator {
	out := cfg.Out
	if out == nil {
		out = io.Discard
	}
	return &Generator{cfg: cfg, out: out}
}

// Run processes every target in order and stops at the first failure.
// Targets after a failing one are not attempted.
func (g *Generator) Run(ctx context.Context) (*Report, error) {
	report := &Report{}
	for _, t := range g.cfg.Targets {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		res, err := g.Process(ctx, t)
		if err != nil {
			return report, err
		}
		report.Results = append(report.Results, res)
	}
	return report, nil
}

// Process regenerates a single target. The file is only written after the
// new content has been fully computed.
func (g *Generator) Process(ctx context.Context, t Target) (Result, error) {
	if t.Arch == "" {
		return Result{}, errors.NewValidation("arch", "must not be empty")
	}

	src, err := fileutil.ReadFile(t.Path)
	if err != nil {
		return Result{}, err
	}

	out, table, err := Generate(src, t.Arch)
	if err != nil {
		return Result{}, withPath(err, t.Path)
	}

	res := Result{
		Target:   t,
		Entries:  table.Len(),
		BlobSize: table.Size(),
		Changed:  !bytes.Equal(src, out),
		BLAKE3:   digest.Sum(out),
	}

	switch {
	case g.cfg.DryRun && res.Changed:
		fmt.Fprintf(g.out, "Stale: %s (%d instructions)\n", t.Path, res.Entries)
	case g.cfg.DryRun:
		fmt.Fprintf(g.out, "Up to date: %s (%d instructions)\n", t.Path, res.Entries)
	default:
		if err := fileutil.Rewrite(t.Path, out); err != nil {
			return Result{}, err
		}
		fmt.Fprintf(g.out, "Generated: %s (%d instructions, %d bytes)\n", t.Path, res.Entries, res.BlobSize)
	}

	logging.TableGenerated(ctx, t.Path, t.Arch, res.Entries, res.BlobSize, res.Changed, digest.Short(res.BLAKE3))
	return res, nil
}

// withPath records path on pattern and marker errors.
func withPath(err error, path string) error {
	var pe *errors.PatternError
	if errors.As(err, &pe) {
		pe.Path = path
		return pe
	}
	var me *errors.MarkerError
	if errors.As(err, &me) {
		me.Path = path
		return me
	}
	return err
}
