// Tool code-fix converts TABs to spaces and CRLF line endings to LF in every
// .cpp, .h, .cmake and .txt file under a directory tree.
//
// Usage: go run ./tools/code-fix [root]
//
// The root defaults to the parent directory, matching a run from tools/.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/FocuswithJustin/srctools/core/whitespace"
	"github.com/FocuswithJustin/srctools/internal/config"
	"github.com/FocuswithJustin/srctools/internal/logging"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the normalizer and returns an exit code.
func run(args []string, stdout, stderr io.Writer) int {
	root := config.DefaultRoot
	switch len(args) {
	case 0:
	case 1:
		if args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
			fmt.Fprintln(stdout, "Usage: code-fix [root]")
			return 0
		}
		root = args[0]
	default:
		fmt.Fprintln(stderr, "Usage: code-fix [root]")
		return 1
	}

	logging.InitLogger(stderr, logging.LevelWarn, logging.FormatText)
	ctx := logging.NewRun(context.Background())

	n := whitespace.New(whitespace.Options{Out: stdout})
	if _, err := n.Run(ctx, root); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
