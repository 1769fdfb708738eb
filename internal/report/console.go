package report

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/dshills/mininet/internal/errors"
)

// Console writes the user-facing status lines. Colour is dropped
// automatically when stdout is not a terminal.
type Console struct {
	out    io.Writer
	ok     *color.Color
	fail   *color.Color
	notice *color.Color
}

// NewConsole returns a Console writing to out.
func NewConsole(out io.Writer) *Console {
	return &Console{
		out:    out,
		ok:     color.New(color.FgGreen),
		fail:   color.New(color.FgRed),
		notice: color.New(color.FgYellow),
	}
}

// Writer exposes the underlying writer for tables and menus.
func (c *Console) Writer() io.Writer {
	return c.out
}

// Connected announces a successful connection.
func (c *Console) Connected(title string) {
	c.ok.Fprintf(c.out, "%s Database connection successful\n", title)
}

// Success closes a report.
func (c *Console) Success() {
	c.ok.Fprintln(c.out, "Query successful")
}

// Failure prints the driver's message for err.
func (c *Console) Failure(err error) {
	c.fail.Fprintf(c.out, "Error: '%s'\n", errors.Message(err))
}

// Notice prints a plain informational line.
func (c *Console) Notice(msg string) {
	c.notice.Fprintln(c.out, msg)
}

// Printf writes uncoloured text.
func (c *Console) Printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}
