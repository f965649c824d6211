// Copyright (c) 2025 Sqlselect
// Licensed under the MIT License. See LICENSE file in the project root for details.

package screen

import (
	"fmt"
	"io"
	"time"

	"sqlselect/cli/internal/query"

	"atomicgo.dev/cursor"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pterm/pterm"
)

// Labels shown by the terminal surface.
const (
	PleaseWaitLabel = "Please Wait."
	ExceptionLabel  = "Exception"
	OkLabel         = "Ok"
)

// Renderer is the terminal Presenter: an inline spinner for progress, a table
// for rows and a red box for errors.
type Renderer struct {
	out         io.Writer
	interval    time.Duration
	hideCursor  bool
	stopSpinner func()
}

// RendererOption configures a Renderer.
type RendererOption func(*Renderer)

// WithCursorHidden hides the terminal cursor while the spinner runs.
func WithCursorHidden() RendererOption {
	return func(r *Renderer) { r.hideCursor = true }
}

// WithSpinnerInterval overrides the spinner frame interval.
func WithSpinnerInterval(d time.Duration) RendererOption {
	return func(r *Renderer) { r.interval = d }
}

// NewRenderer creates a Renderer writing to out.
func NewRenderer(out io.Writer, opts ...RendererOption) *Renderer {
	r := &Renderer{out: out, interval: 120 * time.Millisecond}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ShowProgress starts the spinner. There is no key that dismisses it.
func (r *Renderer) ShowProgress() {
	if r.stopSpinner != nil {
		return
	}
	if r.hideCursor {
		cursor.Hide()
	}
	r.stopSpinner = StartSpinner(r.out, PleaseWaitLabel, SpinnerFrames, r.interval)
}

// DismissProgress stops the spinner and clears its line.
func (r *Renderer) DismissProgress() {
	if r.stopSpinner == nil {
		return
	}
	r.stopSpinner()
	r.stopSpinner = nil
	if r.hideCursor {
		cursor.Show()
	}
}

// ShowRows renders rows as a table, using the first row for the header.
func (r *Renderer) ShowRows(rows []query.Row) {
	if len(rows) == 0 {
		fmt.Fprintln(r.out, "(0 rows)")
		return
	}

	cols := rows[0].Names()
	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetStyle(table.StyleLight)

	header := make(table.Row, len(cols))
	for i, col := range cols {
		header[i] = col
	}
	t.AppendHeader(header)

	for _, row := range rows {
		line := make(table.Row, len(cols))
		for i, col := range cols {
			v, _ := row.Get(col)
			line[i] = FormatValue(v)
		}
		t.AppendRow(line)
	}
	t.Render()

	if len(rows) == 1 {
		fmt.Fprintln(r.out, "(1 row)")
		return
	}
	fmt.Fprintf(r.out, "(%d rows)\n", len(rows))
}

// ShowError presents message in a modal box. The only way out is to
// acknowledge it.
func (r *Renderer) ShowError(message string) {
	title := pterm.NewStyle(pterm.FgRed, pterm.Bold).Sprint(ExceptionLabel)
	box := pterm.DefaultBox.WithTitle(title).WithPadding(1).Sprint(message)
	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, box)
	fmt.Fprintln(r.out, pterm.NewStyle(pterm.FgYellow).Sprint("Press Enter to acknowledge ["+OkLabel+"]"))
}

// DismissError closes the error box.
func (r *Renderer) DismissError() {
	fmt.Fprintln(r.out)
}

// FormatValue renders a single cell.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return string(x)
	case time.Time:
		return x.Format(time.RFC3339)
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}
