package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/vinayprograms/pagesum/errors"
	"github.com/vinayprograms/pagesum/pagetext"
	"github.com/vinayprograms/pagesum/preferences"
	"github.com/vinayprograms/pagesum/provider"
	"github.com/vinayprograms/pagesum/render"
	"github.com/vinayprograms/pagesum/server"
	"github.com/vinayprograms/pagesum/shutdown"
	"github.com/vinayprograms/pagesum/summarize"
)

func providersCommand() *cli.Command {
	return &cli.Command{
		Name:  "providers",
		Usage: "list providers and their models (* marks the default)",
		Action: func(c *cli.Context) error {
			printProviders(c.App.Writer)
			return nil
		},
	}
}

func printProviders(w io.Writer) {
	for _, p := range provider.List() {
		fmt.Fprintf(w, "%s (%s)\n", p.ID, p.Name)
		for _, m := range p.Models {
			mark := " "
			if m.ID == p.Default {
				mark = "*"
			}
			fmt.Fprintf(w, "  %s %-28s %s\n", mark, m.ID, m.Label)
		}
	}
}

func prefsCommand() *cli.Command {
	return &cli.Command{
		Name:  "prefs",
		Usage: "show or change preferences",
		Subcommands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "print preferences with keys masked",
				Action: withEnv(prefsShow),
			},
			{
				Name:  "set",
				Usage: "set provider, model or instruction",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "provider", Usage: "openai, claude or deepseek"},
					&cli.StringFlag{Name: "model", Usage: "model id; empty selects the provider default"},
					&cli.StringFlag{Name: "instruction", Usage: "custom instruction; empty restores the built-in one"},
				},
				Action: withEnv(prefsSet),
			},
			{
				Name:      "key",
				Usage:     "store an API key; an empty key removes it",
				ArgsUsage: "<provider> <key>",
				Action:    withEnv(prefsKey),
			},
		},
	}
}

func prefsShow(c *cli.Context, e *env) error {
	stored, err := e.prefs.Load()
	if err != nil {
		return err
	}
	merged := preferences.MergeCredentials(stored, e.creds)
	sel, err := preferences.Resolve(merged)
	if err != nil {
		return err
	}

	w := c.App.Writer
	fmt.Fprintf(w, "provider:    %s\n", sel.Provider)
	fmt.Fprintf(w, "model:       %s\n", sel.Model)
	if strings.TrimSpace(stored.CustomInstruction) == "" {
		fmt.Fprintf(w, "instruction: (default) %s\n", preferences.DefaultInstruction)
	} else {
		fmt.Fprintf(w, "instruction: %s\n", stored.CustomInstruction)
	}
	fmt.Fprintln(w, "keys:")
	for _, id := range provider.IDs() {
		origin := ""
		switch {
		case stored.Secret(id) != "":
			origin = "stored"
		case merged.Secret(id) != "":
			origin = "credentials"
		default:
			origin = "not set"
		}
		fmt.Fprintf(w, "  %-9s %-14s %s\n", id, preferences.Mask(merged.Secret(id)), origin)
	}

	if warning := summarize.ReadinessWarning(merged); warning != "" {
		fmt.Fprintln(c.App.ErrWriter, warning)
	}
	return nil
}

func prefsSet(c *cli.Context, e *env) error {
	p, err := e.prefs.Load()
	if err != nil {
		return err
	}

	if c.IsSet("provider") {
		id, err := provider.ParseID(c.String("provider"))
		if err != nil {
			return err
		}
		if id != p.Provider && !c.IsSet("model") {
			// A model belongs to its provider.
			p.Model = ""
		}
		p.Provider = id
	}
	if c.IsSet("model") {
		p.Model = strings.TrimSpace(c.String("model"))
		if info, err := provider.Lookup(p.Provider); err == nil && p.Model != "" && !info.HasModel(p.Model) {
			fmt.Fprintf(c.App.ErrWriter, "note: %q is not a listed %s model\n", p.Model, info.Name)
		}
	}
	if c.IsSet("instruction") {
		p.CustomInstruction = c.String("instruction")
	}

	if err := e.prefs.Save(p); err != nil {
		return err
	}
	return prefsShow(c, e)
}

func prefsKey(c *cli.Context, e *env) error {
	if c.NArg() < 1 || c.NArg() > 2 {
		return errors.InvalidInput("usage: pagesum prefs key <provider> <key>")
	}
	id, err := provider.ParseID(c.Args().Get(0))
	if err != nil {
		return err
	}
	if err := e.prefs.SetSecret(id, c.Args().Get(1)); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "%s key updated\n", provider.Name(id))
	return nil
}

func pageURLArg(c *cli.Context) (string, error) {
	return pagetext.FindURL(strings.Join(c.Args().Slice(), " "))
}

func openCommand() *cli.Command {
	return &cli.Command{
		Name:      "open",
		Usage:     "show the cached summary of a page without calling a provider",
		ArgsUsage: "<url>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "raw", Usage: "print the summary markup as is"},
		},
		Action: withEnv(func(c *cli.Context, e *env) error {
			pageURL, err := pageURLArg(c)
			if err != nil {
				return err
			}
			view := &terminalView{out: c.App.Writer, status: c.App.ErrWriter, raw: c.Bool("raw")}
			_, err = e.orch.Open(c.Context, pageURL, view)
			return err
		}),
	}
}

func summarizeCommand() *cli.Command {
	return &cli.Command{
		Name:      "summarize",
		Aliases:   []string{"sum"},
		Usage:     "summarize a page with the selected provider",
		ArgsUsage: "<url or text containing a url>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "model", Aliases: []string{"m"}, Usage: "provider:model for this run, e.g. claude:claude-opus-4-20250514"},
			&cli.StringFlag{Name: "prompt", Aliases: []string{"p"}, Usage: "instruction for this run"},
			&cli.StringFlag{Name: "text-file", Usage: "summarize this file (- for stdin) instead of fetching the page"},
			&cli.BoolFlag{Name: "raw", Usage: "print the summary markup as is"},
		},
		Action: withEnv(runSummarize),
	}
}

func runSummarize(c *cli.Context, e *env) error {
	pageURL, err := pageURLArg(c)
	if err != nil {
		return err
	}

	opts := summarize.Options{
		Selection: c.String("model"),
		Prompt:    c.String("prompt"),
	}
	if path := c.String("text-file"); path != "" {
		text, err := readText(c, path)
		if err != nil {
			return err
		}
		opts.Source = pagetext.Static(text)
	}

	if warning, err := e.orch.Readiness(); err == nil && warning != "" {
		fmt.Fprintln(c.App.ErrWriter, warning)
	}

	view := &terminalView{out: c.App.Writer, status: c.App.ErrWriter, raw: c.Bool("raw")}
	if _, err := e.orch.Summarize(c.Context, pageURL, view, opts); err != nil {
		if view.failed {
			return shown{err}
		}
		return err
	}
	return nil
}

func readText(c *cli.Context, path string) (string, error) {
	var r io.Reader
	if path == "-" {
		r = c.App.Reader
	} else {
		f, err := os.Open(path)
		if err != nil {
			return "", errors.InvalidInput(err.Error())
		}
		defer f.Close()
		r = f
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", errors.Wrap(err, "read text")
	}
	return string(b), nil
}

func historyCommand() *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "list or search cached summaries",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "search", Aliases: []string{"s"}, Usage: "full-text query over cached summaries"},
			&cli.IntFlag{Name: "limit", Value: 10, Usage: "maximum results"},
			&cli.BoolFlag{Name: "full", Usage: "print whole summaries"},
		},
		Action: withEnv(func(c *cli.Context, e *env) error {
			hits, err := e.cache.Search(c.String("search"), c.Int("limit"))
			if err != nil {
				return errors.Wrap(err, "read history")
			}
			if len(hits) == 0 {
				fmt.Fprintln(c.App.ErrWriter, "No cached summaries.")
				return nil
			}
			w := c.App.Writer
			for _, h := range hits {
				fmt.Fprintf(w, "%s  %s\n", h.Timestamp.Local().Format("2006-01-02 15:04"), h.URL)
				text := render.PlainText(render.Render(h.Summary, e.orch.Format()))
				if !c.Bool("full") {
					text = firstLine(text, 100)
				}
				fmt.Fprintf(w, "    %s\n", strings.ReplaceAll(text, "\n", "\n    "))
			}
			return nil
		}),
	}
}

func firstLine(s string, max int) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if r := []rune(s); len(r) > max {
		s = string(r[:max]) + "..."
	}
	return s
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "serve the JSON API and /metrics",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "addr", Usage: "listen address (overrides PAGESUM_LISTEN_ADDR)"},
		},
		Action: withEnv(func(c *cli.Context, e *env) error {
			addr := e.cfg.ListenAddr
			if c.IsSet("addr") {
				addr = c.String("addr")
			}

			srv := server.New(e.orch, e.cache, e.logger).HTTPServer(addr)
			coord := shutdown.New(shutdown.DefaultTimeout, e.logger)
			coord.Register("http", shutdown.PhaseListener, srv.Shutdown)
			coord.Register("state", shutdown.PhaseStorage, func(context.Context) error { return e.Close() })

			ctx, cancel := context.WithCancel(c.Context)
			defer cancel()

			serveErr := make(chan error, 1)
			go func() {
				e.logger.Info("listening", map[string]interface{}{"addr": addr})
				if err := srv.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
					serveErr <- err
					cancel()
				}
				close(serveErr)
			}()

			stopErr := coord.WaitForSignal(ctx)
			if err := <-serveErr; err != nil {
				return errors.Wrap(err, "listen")
			}
			return stopErr
		}),
	}
}
