// Copyright (c) 2025 Sqlselect
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync/atomic"
	"time"

	"sqlselect/cli/internal/dsn"
	"sqlselect/cli/internal/logging"
	"sqlselect/cli/internal/query"
	"sqlselect/cli/internal/screen"
	"sqlselect/cli/internal/sqlexec"
	"sqlselect/cli/internal/terminal"
	"sqlselect/cli/internal/xdg"

	"github.com/chzyer/readline"
	"github.com/pterm/pterm"
	"golang.org/x/sync/errgroup"
)

const (
	screenPrompt   = "sql> "
	catalogTimeout = 5 * time.Second
)

// sessionOptions carries per-invocation overrides into the query screen.
type sessionOptions struct {
	dsn string
	// in replaces stdin; it also switches the screen to scripted input
	in io.ReadCloser
}

// selectScreen is one visit to the query screen.
type selectScreen struct {
	rl      *readline.Instance
	ctrl    *screen.Controller
	catalog *sqlexec.Catalog
	// scripted input waits for each query before reading the next line
	scripted bool
	quitting atomic.Bool
}

// runSelectScreen runs the query screen until the user leaves it. quit is true
// when the user asked to end the program rather than go back to the menu.
func runSelectScreen(ctx context.Context, out io.Writer, opts sessionOptions) (quit bool, err error) {
	rawDSN, source, err := resolveDSN(opts.dsn, cfg, keychainDSN)
	if err != nil {
		return false, err
	}
	backend, err := sqlexec.Open(rawDSN, sqlexec.Options{ReadOnly: cfg.DB.ReadOnly, Logger: logger})
	if err != nil {
		return false, err
	}

	catalog := sqlexec.NewCatalog(backend)
	loadCtx, cancelLoad := context.WithTimeout(ctx, catalogTimeout)
	if _, err := catalog.Load(loadCtx); err != nil {
		logger.Debug("table completion unavailable", logger.Args("error", err.Error()))
	}
	cancelLoad()

	scripted := opts.in != nil || !terminal.IsInteractive()
	rlCfg := &readline.Config{
		Prompt:          screenPrompt,
		AutoComplete:    &tableCompleter{catalog: catalog},
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
		Stdout:          out,
		Stdin:           opts.in,
	}
	if !scripted {
		if hist, err := xdg.HistoryFile(); err == nil {
			rlCfg.HistoryFile = hist
		}
	}
	rl, err := readline.NewEx(rlCfg)
	if err != nil {
		return false, fmt.Errorf("failed to initialize prompt: %w", err)
	}
	defer func() { _ = rl.Close() }()

	sctx, leave := context.WithCancel(ctx)
	defer leave()

	var renderOpts []screen.RendererOption
	if !scripted {
		renderOpts = append(renderOpts, screen.WithCursorHidden())
	}
	sc := &selectScreen{rl: rl, catalog: catalog, scripted: scripted}
	sc.ctrl = screen.NewController(
		query.NewExecutor(backend, query.WithTimeout(cfg.Query.Timeout), query.WithLogger(logger)),
		screen.NewRenderer(rl.Stdout(), renderOpts...),
		screen.NavigatorFunc(leave),
		screen.WithControllerLogger(logger),
		screen.WithObserver(logScreenEvent),
	)

	printScreenHeader(rl.Stdout(), rawDSN, source, cfg.DB.ReadOnly)

	g, gctx := errgroup.WithContext(sctx)
	g.Go(func() error {
		if err := sc.ctrl.Run(gctx); !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		_ = rl.Close()
		return nil
	})
	g.Go(func() error {
		defer leave()
		sc.readInput(gctx)
		return nil
	})

	err = g.Wait()
	return sc.quitting.Load(), err
}

// readInput feeds prompt lines to the controller until the screen is left or
// the input ends. At the end of input the outstanding query, if any, is
// allowed to finish before the screen closes.
func (sc *selectScreen) readInput(ctx context.Context) {
	out := sc.rl.Stdout()
	for {
		line, err := sc.rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if err != nil {
			if ctx.Err() == nil {
				_ = sc.ctrl.Drain(ctx)
			}
			if ctx.Err() == nil {
				sc.quitting.Store(true)
			}
			return
		}

		switch strings.ToLower(strings.TrimSpace(line)) {
		case ".return":
			sc.ctrl.Return()
			<-ctx.Done()
			return
		case ".quit", ".exit":
			sc.quitting.Store(true)
			return
		case ".help":
			printScreenHelp(out)
			continue
		case ".tables":
			for _, t := range sc.catalog.Complete("") {
				fmt.Fprintln(out, t)
			}
			continue
		case ".refresh":
			sc.refreshTables(ctx)
			continue
		}

		sc.ctrl.HandleInput(line)
		if sc.scripted {
			if err := sc.ctrl.Drain(ctx); err != nil || ctx.Err() != nil {
				return
			}
		}
	}
}

func (sc *selectScreen) refreshTables(ctx context.Context) {
	loadCtx, cancel := context.WithTimeout(ctx, catalogTimeout)
	defer cancel()
	tables, err := sc.catalog.Refresh(loadCtx)
	if err != nil {
		logger.Debug("table refresh failed", logger.Args("error", err.Error()))
		fmt.Fprintln(sc.rl.Stdout(), pterm.Yellow("Could not reload table names: "+logging.Mask(err.Error())))
		return
	}
	fmt.Fprintf(sc.rl.Stdout(), "Table names reloaded: %d\n", len(tables))
}

func logScreenEvent(ev screen.Event) {
	logger.Debug("screen transition", logger.Args(
		"event", string(ev.Type),
		"phase", ev.State.Phase().String(),
		"reason", ev.Reason,
		"rows", ev.RowCount,
	))
}

func printScreenHeader(w io.Writer, rawDSN, source string, readOnly bool) {
	target := "database"
	if info, err := dsn.ParseInfo(rawDSN); err == nil {
		target = info.Target()
	}
	mode := "read-only"
	if !readOnly {
		mode = "read-write"
	}
	fmt.Fprintf(w, "%s %s (%s, from %s)\n", pterm.Bold.Sprint("Connected to"), target, mode, source)
	fmt.Fprintln(w, pterm.Gray("Type a SELECT statement and press Enter. .help lists commands."))
	fmt.Fprintln(w)
}

func printScreenHelp(w io.Writer) {
	fmt.Fprint(w, `
Commands:
  .help           Show this help message
  .tables         List tables known to completion
  .refresh        Reload table names from the database
  .return         Go back to the main menu
  .quit / .exit   Leave sqlselect

While a query runs, further input is ignored. After an error, press Enter to
acknowledge it and return to the main menu.

`)
}

var dotCommands = []string{".help", ".tables", ".refresh", ".return", ".quit", ".exit"}

// tableCompleter completes the word under the cursor: dot commands at the
// start of the line, cached table names anywhere else.
type tableCompleter struct {
	catalog *sqlexec.Catalog
}

// Do implements readline.AutoCompleter.
func (c *tableCompleter) Do(line []rune, pos int) ([][]rune, int) {
	head := string(line[:pos])
	start := strings.LastIndexAny(head, " \t,(") + 1
	word := head[start:]

	var candidates []string
	if start == 0 && strings.HasPrefix(word, ".") {
		candidates = dotCommands
	} else if word != "" {
		candidates = c.catalog.Complete(word)
	}

	var out [][]rune
	for _, cand := range candidates {
		if strings.HasPrefix(cand, word) {
			out = append(out, []rune(cand[len(word):]))
		}
	}
	return out, len([]rune(word))
}
