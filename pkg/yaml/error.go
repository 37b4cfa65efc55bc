package yaml

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/goccy/go-yaml/printer"
	"github.com/goccy/go-yaml/token"

	"github.com/macropower/folio/pkg/ui/theme"
)

// DefaultFormatter is the chroma formatter used to highlight sources.
const DefaultFormatter = "terminal16m"

// Matches the line number gutter goccy's printer puts in front of each
// source line, e.g. ">  3 | ".
var gutterRe = regexp.MustCompile(`^([> ] *\d+ \| )(.*)$`)

type ErrorWrapper struct {
	Opts []ErrorOpt
}

func NewErrorWrapper(opts ...ErrorOpt) *ErrorWrapper {
	return &ErrorWrapper{
		Opts: opts,
	}
}

// Wrap applies the wrapper's options to [Error]s.
// If the error isn't an [Error], it returns the original error unmodified.
func (ew *ErrorWrapper) Wrap(err error, opts ...ErrorOpt) error {
	if err == nil {
		return nil
	}

	var yamlErr *Error
	if errors.As(err, &yamlErr) {
		for _, opt := range ew.Opts {
			opt(yamlErr)
		}

		for _, opt := range opts {
			opt(yamlErr)
		}

		return yamlErr
	}

	return err
}

// Error represents a YAML error. It includes the original error, and the
// [*token.Token] where the error occurred.
type Error struct {
	Err       error
	Token     *token.Token
	Theme     *theme.Theme
	Formatter string
}

func NewError(err error, opts ...ErrorOpt) *Error {
	e := &Error{
		Err:       err,
		Theme:     theme.Default,
		Formatter: DefaultFormatter,
	}
	for _, opt := range opts {
		opt(e)
	}

	return e
}

type ErrorOpt func(e *Error)

func WithToken(tk *token.Token) ErrorOpt {
	return func(e *Error) {
		e.Token = tk
	}
}

func WithTheme(t *theme.Theme) ErrorOpt {
	return func(e *Error) {
		e.Theme = t
	}
}

func WithFormatter(formatter string) ErrorOpt {
	return func(e *Error) {
		e.Formatter = formatter
	}
}

func (e Error) Error() string {
	if e.Err == nil {
		return ""
	}
	if e.Token == nil {
		return e.Err.Error()
	}

	pos := e.Token.Position

	return fmt.Sprintf("[%d:%d] %v:\n\n%s", pos.Line, pos.Column, e.Err, e.annotateSource())
}

func (e Error) Unwrap() error {
	return e.Err
}

// annotateSource prints the lines around the token with a caret under the
// error, highlighting the YAML with the theme's chroma style.
func (e Error) annotateSource() string {
	var pp printer.Printer

	src := pp.PrintErrorToken(e.Token.Clone(), false)

	t := e.Theme
	if t == nil {
		t = theme.Default
	}

	formatter := e.Formatter
	if formatter == "" {
		formatter = DefaultFormatter
	}

	lines := strings.Split(strings.TrimRight(src, "\n"), "\n")
	for i, line := range lines {
		m := gutterRe.FindStringSubmatch(line)
		if m == nil {
			// The caret line.
			lines[i] = t.Selected.Render(line)
			continue
		}

		gutter := t.Subtle.Render(m[1])
		if strings.HasPrefix(m[1], ">") {
			gutter = t.Selected.Render(m[1])
		}

		lines[i] = gutter + highlight(m[2], formatter, t)
	}

	return strings.Join(lines, "\n")
}

func highlight(line, formatter string, t *theme.Theme) string {
	var b strings.Builder

	err := quick.Highlight(&b, line, "yaml", formatter, t.Chroma.Name)
	if err != nil {
		return line
	}

	return strings.TrimSuffix(b.String(), "\n")
}
