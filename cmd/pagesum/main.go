// Command pagesum summarizes web pages with OpenAI, Claude or DeepSeek.
package main

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/vinayprograms/pagesum/errors"
)

var version = "dev"

func main() {
	if err := newApp().Run(os.Args); err != nil {
		var s shown
		if !stderrors.As(err, &s) {
			fmt.Fprintln(os.Stderr, "Error: "+errors.Display(err))
		}
		os.Exit(exitCode(err))
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "pagesum",
		Usage:   "summarize web pages with an LLM provider",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "state", Usage: "bbolt state file (overrides PAGESUM_STATE_PATH)"},
			&cli.StringFlag{Name: "credentials", Usage: "credentials.toml (overrides PAGESUM_CREDENTIALS)"},
			&cli.StringFlag{Name: "format", Usage: "output format requested from providers: html or markdown"},
			&cli.StringFlag{Name: "log-level", Usage: "debug, info, warn or error"},
			&cli.DurationFlag{Name: "timeout", Usage: "provider HTTP timeout, 0 for none"},
		},
		Commands: []*cli.Command{
			providersCommand(),
			prefsCommand(),
			openCommand(),
			summarizeCommand(),
			historyCommand(),
			serveCommand(),
		},
	}
}

// exitCode maps errors to process exit codes: 2 when running again will
// not help, 3 when it might.
func exitCode(err error) int {
	switch {
	case errors.IsCategory(err, errors.CategoryPermanent):
		return 2
	case errors.IsRetryable(err):
		return 3
	default:
		return 1
	}
}
