// Command srctools runs the source maintenance tools for the AsmJit tree:
// whitespace normalization and instruction name table generation.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/alecthomas/kong"

	"github.com/FocuswithJustin/srctools/core/insttable"
	"github.com/FocuswithJustin/srctools/core/whitespace"
	"github.com/FocuswithJustin/srctools/internal/config"
	"github.com/FocuswithJustin/srctools/internal/logging"
)

const version = "0.1.0"

// CLI defines the command-line interface for srctools.
type CLI struct {
	// Global flags
	LogLevel  string `name:"log-level" help:"Log level (${enum})" default:"info" enum:"debug,info,warn,error" env:"SRCTOOLS_LOG_LEVEL"`
	LogFormat string `name:"log-format" help:"Log format (${enum})" default:"text" enum:"text,json" env:"SRCTOOLS_LOG_FORMAT"`

	Fix     FixCmd     `cmd:"" help:"Convert TABs to spaces and CRLF to LF in source files"`
	Gendefs GendefsCmd `cmd:"" help:"Regenerate instruction name tables between INST_DATA markers"`
	Targets TargetsCmd `cmd:"" help:"List instruction table targets"`
	Version VersionCmd `cmd:"" help:"Print version information"`
}

// runContext carries per-invocation state into command Run methods.
type runContext struct {
	ctx    context.Context
	stdout io.Writer
}

// FixCmd normalizes whitespace under a directory tree.
type FixCmd struct {
	Root     string   `arg:"" optional:"" default:".." help:"Root directory to process"`
	Ext      []string `name:"ext" short:"e" help:"File extensions to process" default:".cpp,.h,.cmake,.txt"`
	TabWidth int      `name:"tab-width" help:"Spaces written for each TAB" default:"2"`
	DryRun   bool     `name:"dry-run" short:"n" help:"Report files that would change without writing them"`
}

func (c *FixCmd) Run(rc *runContext) error {
	if c.TabWidth < 1 {
		return fmt.Errorf("--tab-width must be at least 1, got %d", c.TabWidth)
	}

	start := time.Now()
	n := whitespace.New(whitespace.Options{
		Extensions:     c.Ext,
		TabReplacement: strings.Repeat(" ", c.TabWidth),
		DryRun:         c.DryRun,
		Out:            rc.stdout,
	})
	sum, err := n.Run(rc.ctx, c.Root)
	if err != nil {
		return err
	}

	logging.RunSummary(rc.ctx, "fix", time.Since(start),
		"root", c.Root,
		"files_scanned", sum.Scanned,
		"files_matched", sum.Matched,
		"files_fixed", len(sum.Fixed),
		"dry_run", c.DryRun,
	)
	return nil
}

// GendefsCmd regenerates instruction name tables.
type GendefsCmd struct {
	Config string `short:"c" help:"JSON targets file (default: built-in target list)" type:"existingfile" env:"SRCTOOLS_TARGETS"`
	DryRun bool   `name:"dry-run" short:"n" help:"Compute tables without writing files"`
	Check  bool   `help:"Fail if any table is out of date (implies --dry-run)"`
}

func (c *GendefsCmd) Run(rc *runContext) error {
	targets, err := resolveTargets(c.Config)
	if err != nil {
		return err
	}

	start := time.Now()
	g := insttable.New(insttable.Config{
		Targets: targets,
		DryRun:  c.DryRun || c.Check,
		Out:     rc.stdout,
	})
	report, err := g.Run(rc.ctx)
	if err != nil {
		return err
	}

	stale := report.Stale()
	logging.RunSummary(rc.ctx, "gendefs", time.Since(start),
		"targets", len(report.Results),
		"stale", len(stale),
		"dry_run", c.DryRun || c.Check,
	)

	if c.Check && len(stale) > 0 {
		return fmt.Errorf("%d instruction table(s) out of date, run gendefs", len(stale))
	}
	return nil
}

// TargetsCmd lists the resolved instruction table targets.
type TargetsCmd struct {
	Config string `short:"c" help:"JSON targets file (default: built-in target list)" type:"existingfile" env:"SRCTOOLS_TARGETS"`
}

func (c *TargetsCmd) Run(rc *runContext) error {
	targets, err := resolveTargets(c.Config)
	if err != nil {
		return err
	}
	for _, t := range targets {
		fmt.Fprintf(rc.stdout, "%s\t%s\n", t.Arch, t.Path)
	}
	return nil
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run(rc *runContext) error {
	fmt.Fprintf(rc.stdout, "srctools version %s\n", version)
	return nil
}

func resolveTargets(path string) ([]insttable.Target, error) {
	if path == "" {
		return config.DefaultTargets(), nil
	}
	return config.LoadTargets(path)
}

// exitCode is raised through panic by kong's exit hook so that help output
// returns from run instead of terminating the process.
type exitCode int

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the CLI and returns the exit code.
func run(args []string, stdout, stderr io.Writer) (code int) {
	defer func() {
		if r := recover(); r != nil {
			c, ok := r.(exitCode)
			if !ok {
				panic(r)
			}
			code = int(c)
		}
	}()

	if err := config.LoadEnv(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	var cli CLI
	parser, err := kong.New(&cli,
		kong.Name("srctools"),
		kong.Description("AsmJit source maintenance tools"),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Writers(stdout, stderr),
		kong.Exit(func(c int) { panic(exitCode(c)) }),
	)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	kctx, err := parser.Parse(args)
	if err != nil {
		fmt.Fprintf(stderr, "srctools: error: %v\n", err)
		return 1
	}

	level, _ := logging.ParseLevel(cli.LogLevel)
	format, _ := logging.ParseFormat(cli.LogFormat)
	logging.InitLogger(stderr, level, format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logging.NewRun(ctx)

	if err := kctx.Run(&runContext{ctx: ctx, stdout: stdout}); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
