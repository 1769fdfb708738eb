// Package menu drives the interactive report loop: print the menu, read a
// choice, ask for the report's parameters, run it, repeat.
package menu

import (
	"bufio"
	"context"
	"io"
	"strings"
	"sync"

	"github.com/dshills/mininet/internal/catalog"
	"github.com/dshills/mininet/internal/errors"
	"github.com/dshills/mininet/internal/log"
	"github.com/dshills/mininet/internal/report"
)

// State of the loop.
type State int

const (
	Running State = iota
	Terminated
)

func (s State) String() string {
	if s == Terminated {
		return "terminated"
	}
	return "running"
}

// ExitKey ends the loop.
const ExitKey = "e"

// Loop is the read-eval-print menu over a report catalog.
type Loop struct {
	catalog *catalog.Catalog
	runner  catalog.Runner
	in      *bufio.Reader
	console *report.Console
	logger  log.Logger
	state   State

	once  sync.Once
	lines chan string
	done  chan struct{}
}

// New returns a Loop reading choices from in and writing to console.
func New(cat *catalog.Catalog, runner catalog.Runner, in io.Reader, console *report.Console, logger log.Logger) *Loop {
	return &Loop{
		catalog: cat,
		runner:  runner,
		in:      bufio.NewReader(in),
		console: console,
		logger:  logger,
		state:   Running,
		done:    make(chan struct{}),
	}
}

// State returns the current state.
func (l *Loop) State() State {
	return l.state
}

// Run steps until the loop terminates. It returns the connection error that
// ended the session, or nil when the user exited or input ran out.
func (l *Loop) Run(ctx context.Context) error {
	for l.state == Running {
		if err := l.Step(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Step performs one iteration: menu, choice, and at most one report.
func (l *Loop) Step(ctx context.Context) error {
	if l.state == Terminated {
		return nil
	}

	l.printMenu()
	choice, ok := l.readLine(ctx)
	if !ok {
		l.terminate(endReason(ctx))
		return nil
	}
	if choice == ExitKey {
		l.terminate("exit requested")
		return nil
	}

	entry, found := l.catalog.Lookup(choice)
	if !found {
		l.console.Printf("Invalid choice!\n")
		return nil
	}

	args := make([]string, 0, len(entry.Params))
	for _, p := range entry.Params {
		l.console.Printf("%s", p.Prompt)
		v, ok := l.readLine(ctx)
		if !ok {
			l.terminate(endReason(ctx))
			return nil
		}
		args = append(args, v)
	}

	l.logger.Debug("running report", log.String("report", entry.Key), log.Int("params", len(args)))
	err := l.catalog.Run(ctx, l.runner, entry.Key, args...)
	if err != nil && errors.IsConnection(err) {
		l.console.Notice("Connection Not Available.")
		l.terminate("connection lost")
		return err
	}
	// Statement errors were already printed by the runner.
	return nil
}

func (l *Loop) printMenu() {
	l.console.Printf("\nSelect a query to run:\n")
	for _, e := range l.catalog.Entries() {
		l.console.Printf("%s. %s\n", e.Key, e.Title)
	}
	l.console.Printf("%s. Exit\n", ExitKey)
	l.console.Printf("Enter your choice: ")
}

// readLine returns one line without its terminator, however long it is.
// It gives up when ctx is cancelled so an interrupt is not stuck behind a
// blocking read.
func (l *Loop) readLine(ctx context.Context) (string, bool) {
	l.once.Do(l.startReader)
	select {
	case <-ctx.Done():
		return "", false
	case s, ok := <-l.lines:
		return s, ok
	}
}

func (l *Loop) startReader() {
	l.lines = make(chan string)
	go func() {
		defer close(l.lines)
		for {
			line, err := l.in.ReadString('\n')
			if line != "" {
				line = strings.TrimSuffix(line, "\n")
				line = strings.TrimSuffix(line, "\r")
				select {
				case l.lines <- line:
				case <-l.done:
					return
				}
			}
			if err != nil {
				if err != io.EOF {
					l.logger.Warn("reading input", log.Err(err))
				}
				return
			}
		}
	}()
}

func endReason(ctx context.Context) string {
	if ctx.Err() != nil {
		return "interrupted"
	}
	return "end of input"
}

func (l *Loop) terminate(reason string) {
	l.logger.Debug("menu terminated", log.String("reason", reason))
	l.state = Terminated
	close(l.done)
}
