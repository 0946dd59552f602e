// Package menu implements the interactive weight tracker loop.
package menu

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"weighttracker/internal/app"
	"weighttracker/internal/domain"
)

const (
	choiceRecord = "1"
	choiceShow   = "2"
)

type state int

const (
	stateMenu state = iota
	stateExit
)

// Controller drives the menu loop against one RecordStore.
type Controller struct {
	store *app.RecordStore
	in    io.Reader
	out   io.Writer
	log   *zap.Logger
	unit  string
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the diagnostic logger.
func WithLogger(log *zap.Logger) Option {
	return func(c *Controller) { c.log = log }
}

// WithUnit sets the unit label shown in prompts and listings.
func WithUnit(unit string) Option {
	return func(c *Controller) { c.unit = unit }
}

// New creates a Controller reading choices from in and writing to out.
func New(store *app.RecordStore, in io.Reader, out io.Writer, opts ...Option) *Controller {
	c := &Controller{store: store, in: in, out: out, log: zap.NewNop(), unit: "kg"}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run shows the menu until the user picks exit or input ends, and then
// returns nil. It returns the context error if ctx is cancelled while
// waiting for input.
func (c *Controller) Run(ctx context.Context) error {
	lines := newLineReader(c.in)
	defer lines.stop()

	for st := stateMenu; st != stateExit; {
		c.printMenu()
		choice, ok, err := lines.next(ctx)
		if err != nil {
			return err
		}
		if !ok {
			c.printf("\n")
			break
		}
		st, err = c.dispatch(ctx, strings.TrimSpace(choice), lines)
		if err != nil {
			return err
		}
	}
	return nil
}

func (c *Controller) dispatch(ctx context.Context, choice string, lines *lineReader) (state, error) {
	c.log.Debug("menu choice", zap.String("choice", choice))
	switch choice {
	case choiceRecord:
		return c.recordWeight(ctx, lines)
	case choiceShow:
		c.showRecords()
		return stateMenu, nil
	default:
		c.printf("Goodbye!\n")
		return stateExit, nil
	}
}

func (c *Controller) recordWeight(ctx context.Context, lines *lineReader) (state, error) {
	c.printf("Enter your weight (%s): ", c.unit)
	input, ok, err := lines.next(ctx)
	if err != nil {
		return stateExit, err
	}
	if !ok {
		c.printf("\n")
		return stateExit, nil
	}

	v, err := domain.ParseWeight(input)
	if err != nil {
		c.log.Debug("rejected weight input", zap.String("input", input), zap.Error(err))
		c.printf("Invalid input. Please enter a positive number.\n\n")
		return stateMenu, nil
	}

	e, err := c.store.Add(ctx, v, time.Time{})
	switch {
	case errors.Is(err, domain.ErrPersistence):
		c.printf("Warning: %s %s recorded for this session but not saved: %v\n\n",
			domain.FormatWeight(e.Value), c.unit, err)
	case err != nil:
		c.printf("Invalid input: %v\n\n", err)
	default:
		c.printf("Value recorded successfully!\n\n")
	}
	return stateMenu, nil
}

func (c *Controller) showRecords() {
	Render(c.out, c.store.Trend(), c.store.Summary(), c.unit)
}

func (c *Controller) printMenu() {
	c.printf("Weight Tracker Menu:\n")
	c.printf("%s. Record new weight\n", choiceRecord)
	c.printf("%s. Show all records\n", choiceShow)
	c.printf("0. Exit\n")
	c.printf("Enter your choice: ")
}

func (c *Controller) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(c.out, format, args...)
}

// lineReader delivers input lines from a single goroutine so a blocked read
// can be abandoned when the context is cancelled. Lines have no length limit.
type lineReader struct {
	lines chan string
	done  chan struct{}
	err   error // set before lines is closed
}

func newLineReader(r io.Reader) *lineReader {
	lr := &lineReader{
		lines: make(chan string),
		done:  make(chan struct{}),
	}
	go func() {
		defer close(lr.lines)
		br := bufio.NewReader(r)
		for {
			line, err := br.ReadString('\n')
			if line != "" {
				select {
				case lr.lines <- strings.TrimRight(line, "\r\n"):
				case <-lr.done:
					return
				}
			}
			if err != nil {
				if err != io.EOF {
					lr.err = err
				}
				return
			}
		}
	}()
	return lr
}

// next returns the next line, or ok=false at end of input.
func (lr *lineReader) next(ctx context.Context) (line string, ok bool, err error) {
	select {
	case <-ctx.Done():
		return "", false, ctx.Err()
	case line, ok = <-lr.lines:
		if ok {
			return line, true, nil
		}
		if lr.err != nil {
			return "", false, fmt.Errorf("read input: %w", lr.err)
		}
		return "", false, nil
	}
}

func (lr *lineReader) stop() {
	close(lr.done)
}
