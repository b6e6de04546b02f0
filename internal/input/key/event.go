package key

import (
	"fmt"
	"unicode"
)

// Event is a single key press: a key code with its active modifiers.
// Event is comparable; two events are equal iff code and modifiers match.
type Event struct {
	// Code identifies the key pressed.
	Code Code

	// Modifiers contains the active modifier keys.
	Modifiers Modifier
}

// NewEvent creates a key event.
func NewEvent(code Code, mods Modifier) Event {
	return Event{Code: code, Modifiers: mods}
}

// NewRuneEvent creates a key event for a character.
func NewRuneEvent(r rune, mods Modifier) Event {
	return Event{Code: Char(r), Modifiers: mods}
}

// IsRune returns true if this is a character key event.
func (e Event) IsRune() bool {
	return e.Code.IsChar()
}

// IsChar returns true if this is a printable character.
func (e Event) IsChar() bool {
	r, ok := e.Code.Rune()
	return ok && unicode.IsPrint(r)
}

// IsModified returns true if any modifier is pressed.
// For character events, Shift alone is not considered modified
// (since Shift changes the character itself).
func (e Event) IsModified() bool {
	if e.IsRune() {
		return e.Modifiers.Has(ModCtrl | ModAlt)
	}
	return e.Modifiers != ModNone
}

// String returns a compact representation.
// Examples: "a", "C-s", "C-S-q", "Enter", "S-Tab", "F5"
func (e Event) String() string {
	return withPrefix(e.Modifiers, keyName(e.Code))
}

// VimString returns a Vim-style string representation.
// Examples: "<Esc>", "<C-s>", "<C-S-p>", "<CR>", "a", "A"
//
// The result is the canonical key specification: Parse(e.VimString())
// returns e.
func (e Event) VimString() string {
	if r, ok := e.Code.Rune(); ok && e.Modifiers == ModNone && bareRune(r) {
		return string(r)
	}

	return "<" + withPrefix(e.Modifiers, vimKeyName(e.Code)) + ">"
}

// withPrefix prepends the short modifier names to name: "C-S-q".
func withPrefix(m Modifier, name string) string {
	if prefix := m.ShortString(); prefix != "" {
		return prefix + "-" + name
	}
	return name
}

// bareRune reports whether r can be written outside angle brackets
// without being mistaken for a key name or modifier syntax.
func bareRune(r rune) bool {
	switch r {
	case '<', '>', '+':
		return false
	}
	return formatRune(r) == string(r)
}

// keyName returns the short display name used by String.
func keyName(c Code) string {
	switch c.Kind() {
	case KindChar:
		r, _ := c.Rune()
		if r == ' ' {
			return "Space"
		}
		return formatRune(r)
	case KindEsc:
		return "Esc"
	case KindBackspace:
		return "BS"
	case KindDelete:
		return "Del"
	case KindInsert:
		return "Ins"
	case KindPageUp:
		return "PgUp"
	case KindPageDown:
		return "PgDn"
	default:
		return c.String()
	}
}

// vimKeyName returns the key part used inside <...> notation.
func vimKeyName(c Code) string {
	switch c.Kind() {
	case KindChar:
		r, _ := c.Rune()
		switch r {
		case ' ':
			return "Space"
		case '<':
			return "lt"
		case '>':
			return "gt"
		}
		return formatRune(r)
	case KindEnter:
		return "CR"
	case KindBackspace:
		return "BS"
	case KindDelete:
		return "Del"
	default:
		return c.String()
	}
}

// Matches checks if this event matches a key specification string.
func (e Event) Matches(spec string) bool {
	parsed, err := Parse(spec)
	if err != nil {
		return false
	}
	return e == parsed
}

// IsEscape returns true if this is the Escape key (with no modifiers).
func (e Event) IsEscape() bool {
	return e.Code == Esc && e.Modifiers == ModNone
}

// IsEnter returns true if this is the Enter key (with no modifiers).
func (e Event) IsEnter() bool {
	return e.Code == Enter && e.Modifiers == ModNone
}

// WithModifier returns a copy with the specified modifier added.
func (e Event) WithModifier(mod Modifier) Event {
	e.Modifiers = e.Modifiers.With(mod)
	return e
}

// MarshalText encodes the event as its canonical key specification.
func (e Event) MarshalText() ([]byte, error) {
	if !e.Code.Kind().Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidSpec, e.Code.Kind())
	}
	return []byte(e.VimString()), nil
}

// UnmarshalText decodes any key specification accepted by Parse.
func (e *Event) UnmarshalText(text []byte) error {
	ev, err := Parse(string(text))
	if err != nil {
		return err
	}
	*e = ev
	return nil
}

// GoString implements fmt.GoStringer for debugging.
func (e Event) GoString() string {
	return fmt.Sprintf("Event{Code: %s, Modifiers: %s}", e.Code, e.Modifiers)
}
