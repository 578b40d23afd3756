// Tool generate-defs packs all instruction names into a single string so the
// linker does not have to relocate one pointer per instruction.
//
// Usage: go run ./tools/generate-defs
//
// The target files are fixed; paths are relative to the tools/ directory.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/FocuswithJustin/srctools/core/insttable"
	"github.com/FocuswithJustin/srctools/internal/config"
	"github.com/FocuswithJustin/srctools/internal/logging"
)

// targets is the file list processed by the tool (injectable for testing).
var targets = config.DefaultTargets

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run regenerates every target and returns an exit code.
func run(args []string, stdout, stderr io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintln(stderr, "Usage: generate-defs")
		return 1
	}

	logging.InitLogger(stderr, logging.LevelWarn, logging.FormatText)
	ctx := logging.NewRun(context.Background())

	g := insttable.New(insttable.Config{Targets: targets(), Out: stdout})
	if _, err := g.Run(ctx); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	return 0
}
