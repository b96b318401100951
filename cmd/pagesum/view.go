package main

import (
	"fmt"
	"io"

	"github.com/vinayprograms/pagesum/render"
	"github.com/vinayprograms/pagesum/summarize"
)

// terminalView prints summaries as plain text on out and everything else
// on status.
type terminalView struct {
	out    io.Writer
	status io.Writer
	raw    bool
	failed bool
}

var _ summarize.View = (*terminalView)(nil)

func (v *terminalView) Status(msg string) {
	fmt.Fprintln(v.status, msg)
}

func (v *terminalView) Banner(msg string) {
	if msg != "" {
		fmt.Fprintf(v.status, "[%s]\n", msg)
	}
}

func (v *terminalView) Summary(html string) {
	if v.raw {
		fmt.Fprintln(v.out, html)
		return
	}
	fmt.Fprintln(v.out, render.PlainText(html))
}

func (v *terminalView) Error(msg string) {
	v.failed = true
	fmt.Fprintln(v.status, msg)
}

// shown marks an error the view has already printed.
type shown struct{ error }

func (s shown) Unwrap() error { return s.error }
