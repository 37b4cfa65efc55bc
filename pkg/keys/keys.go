// Package keys describes configurable key bindings and renders them as help.
package keys

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/x/ansi"
)

const ellipsis = "…"

var ErrDuplicateKey = errors.New("duplicate key binding")

// Key is one key of a binding.
type Key struct {
	// Code is the key as reported by Bubble Tea, e.g. "ctrl+c" or "pgdown".
	Code string `yaml:"code"`
	// Alias replaces the code in the help view.
	Alias  string `yaml:"alias,omitempty"`
	Hidden bool   `yaml:"hidden,omitempty"`
}

type KeyOpt func(k *Key)

func New(code string, opts ...KeyOpt) Key {
	k := Key{Code: code}
	for _, opt := range opts {
		opt(&k)
	}

	return k
}

func WithAlias(alias string) KeyOpt {
	return func(k *Key) {
		k.Alias = alias
	}
}

// Hidden keeps the key out of the help view.
func Hidden() KeyOpt {
	return func(k *Key) {
		k.Hidden = true
	}
}

func (k Key) String() string {
	if k.Alias != "" {
		return k.Alias
	}

	return k.Code
}

// Bind is an action and the keys that trigger it.
type Bind struct {
	Description string `yaml:"description"`
	Keys        []Key  `yaml:"keys"`
}

func NewBind(description string, keys ...Key) Bind {
	return Bind{Description: description, Keys: keys}
}

// String joins the visible keys with "/".
func (b *Bind) String() string {
	visible := make([]string, 0, len(b.Keys))
	for _, k := range b.Keys {
		if !k.Hidden {
			visible = append(visible, k.String())
		}
	}

	return strings.Join(visible, "/")
}

// Match reports whether key triggers b. A nil binding matches nothing.
func (b *Bind) Match(key string) bool {
	if b == nil {
		return false
	}

	for _, k := range b.Keys {
		if k.Code == key {
			return true
		}
	}

	return false
}

// AddKey appends k unless a key with the same code is already bound.
func (b *Bind) AddKey(k Key) {
	if b == nil || b.Match(k.Code) {
		return
	}

	b.Keys = append(b.Keys, k)
}

// Default fills a binding loaded from configuration. A missing binding is
// replaced by def, and a binding without keys or description inherits them.
func Default(b **Bind, def Bind) {
	if *b == nil {
		*b = &def
		return
	}

	if len((*b).Keys) == 0 {
		(*b).Keys = def.Keys
	}

	if (*b).Description == "" {
		(*b).Description = def.Description
	}
}

// Validate reports every key code bound more than once across groups.
func Validate(groups ...[]Bind) error {
	var errs []error

	owner := map[string]string{}

	for _, group := range groups {
		for _, b := range group {
			for _, k := range b.Keys {
				if prev, ok := owner[k.Code]; ok {
					errs = append(errs, fmt.Errorf("%w: %q is bound to %q and %q",
						ErrDuplicateKey, k.Code, prev, b.Description))

					continue
				}

				owner[k.Code] = b.Description
			}
		}
	}

	return errors.Join(errs...)
}

// Help renders bindings as side by side columns.
type Help struct {
	columns [][]Bind
}

func (h *Help) AddColumn(binds ...Bind) {
	if len(binds) > 0 {
		h.columns = append(h.columns, binds)
	}
}

// Height returns the number of lines [Help.Render] produces.
func (h *Help) Height() int {
	rows := 0
	for _, col := range h.columns {
		rows = max(rows, len(visibleRows(col)))
	}

	return rows
}

// Render lays the columns out in exactly width cells per line when width
// allows it. Each column gets an equal share of the width.
func (h *Help) Render(width int) string {
	n := len(h.columns)
	if n == 0 {
		return ""
	}

	colWidth := max(6, width/n-2)
	remainder := max(0, width-n*(colWidth+2))

	cols := make([][]string, n)
	for i, col := range h.columns {
		cols[i] = renderColumn(visibleRows(col), colWidth)
	}

	lines := make([]string, 0, h.Height())
	for row := range h.Height() {
		var sb strings.Builder
		for _, col := range cols {
			cell := strings.Repeat(" ", colWidth)
			if row < len(col) {
				cell = col[row]
			}

			sb.WriteString(" " + cell + " ")
		}

		sb.WriteString(strings.Repeat(" ", remainder))
		lines = append(lines, sb.String())
	}

	return strings.Join(lines, "\n")
}

func visibleRows(binds []Bind) []Bind {
	rows := make([]Bind, 0, len(binds))
	for _, b := range binds {
		if b.String() != "" {
			rows = append(rows, b)
		}
	}

	return rows
}

func renderColumn(binds []Bind, width int) []string {
	keyWidth := 0
	for _, b := range binds {
		keyWidth = max(keyWidth, ansi.StringWidth(b.String()))
	}

	descWidth := max(0, width-keyWidth-2)

	rows := make([]string, 0, len(binds))
	for _, b := range binds {
		desc := ansi.Truncate(b.Description, descWidth, ellipsis)
		rows = append(rows, pad(b.String(), keyWidth)+"  "+pad(desc, descWidth))
	}

	return rows
}

func pad(s string, width int) string {
	return s + strings.Repeat(" ", max(0, width-ansi.StringWidth(s)))
}
