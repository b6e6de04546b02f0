package key

import (
	"cmp"
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Kind identifies which variant of Code is active.
type Kind uint8

const (
	KindBackspace Kind = iota
	KindEnter
	KindLeft
	KindRight
	KindUp
	KindDown
	KindHome
	KindEnd
	KindPageUp
	KindPageDown
	KindTab
	KindBackTab
	KindDelete
	KindInsert

	// KindFunction is a function key; the index is carried by the Code.
	KindFunction

	// KindChar is a character key; the rune is carried by the Code.
	KindChar

	KindNull
	KindEsc

	// kindCount must stay last.
	kindCount
)

var kindNames = [...]string{
	KindBackspace: "Backspace",
	KindEnter:     "Enter",
	KindLeft:      "Left",
	KindRight:     "Right",
	KindUp:        "Up",
	KindDown:      "Down",
	KindHome:      "Home",
	KindEnd:       "End",
	KindPageUp:    "PageUp",
	KindPageDown:  "PageDown",
	KindTab:       "Tab",
	KindBackTab:   "BackTab",
	KindDelete:    "Delete",
	KindInsert:    "Insert",
	KindFunction:  "Function",
	KindChar:      "Char",
	KindNull:      "Null",
	KindEsc:       "Esc",
}

// A Kind appended without a name fails here. One inserted earlier in the
// list shifts the array instead, leaving a gap that TestKinds reports.
var _ [kindCount]string = kindNames

// NumKinds is the number of declared kinds. Tables indexed by Kind should
// be sized with it.
const NumKinds = int(kindCount)

// Kinds returns every Kind in declaration order.
func Kinds() []Kind {
	kinds := make([]Kind, 0, kindCount)
	for k := Kind(0); k < kindCount; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}

// Valid reports whether k is one of the declared kinds.
func (k Kind) Valid() bool {
	return k < kindCount
}

// String returns the name of the kind.
func (k Kind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("Kind(%d)", k)
	}
	return kindNames[k]
}

// Code identifies a key independently of any terminal library.
//
// Exactly one variant is active. Function keys carry an index
// (F(1) is F1) and character keys carry a rune; every other variant has
// no payload. Neither payload is validated: F(0), F(255), control
// characters and invalid scalars are all carried as given.
//
// Code is comparable and may be used as a map key. The zero value is
// Backspace.
type Code struct {
	kind Kind
	fn   uint8
	ch   rune
}

// Unit key codes.
var (
	Backspace = Code{kind: KindBackspace}
	Enter     = Code{kind: KindEnter}
	Left      = Code{kind: KindLeft}
	Right     = Code{kind: KindRight}
	Up        = Code{kind: KindUp}
	Down      = Code{kind: KindDown}
	Home      = Code{kind: KindHome}
	End       = Code{kind: KindEnd}
	PageUp    = Code{kind: KindPageUp}
	PageDown  = Code{kind: KindPageDown}
	Tab       = Code{kind: KindTab}
	BackTab   = Code{kind: KindBackTab}
	Delete    = Code{kind: KindDelete}
	Insert    = Code{kind: KindInsert}
	Null      = Code{kind: KindNull}
	Esc       = Code{kind: KindEsc}
)

// F returns the function key with index n.
func F(n uint8) Code {
	return Code{kind: KindFunction, fn: n}
}

// Char returns the character key for r.
func Char(r rune) Code {
	return Code{kind: KindChar, ch: r}
}

// Unit returns the payload-free Code for k. It returns false for
// KindFunction, KindChar and undeclared kinds.
func Unit(k Kind) (Code, bool) {
	if !k.Valid() || k == KindFunction || k == KindChar {
		return Code{}, false
	}
	return Code{kind: k}, true
}

// Kind returns the active variant.
func (c Code) Kind() Kind {
	return c.kind
}

// Function returns the function key index if c is a function key.
func (c Code) Function() (uint8, bool) {
	return c.fn, c.kind == KindFunction
}

// Rune returns the character if c is a character key.
func (c Code) Rune() (rune, bool) {
	return c.ch, c.kind == KindChar
}

// IsFunction returns true if this is a function key.
func (c Code) IsFunction() bool {
	return c.kind == KindFunction
}

// IsChar returns true if this is a character key.
func (c Code) IsChar() bool {
	return c.kind == KindChar
}

// IsArrow returns true if this is an arrow key.
func (c Code) IsArrow() bool {
	switch c.kind {
	case KindLeft, KindRight, KindUp, KindDown:
		return true
	}
	return false
}

// IsNavigation returns true if this is an arrow or paging key.
func (c Code) IsNavigation() bool {
	switch c.kind {
	case KindHome, KindEnd, KindPageUp, KindPageDown:
		return true
	}
	return c.IsArrow()
}

// Compare orders codes by kind, then by payload.
func (c Code) Compare(other Code) int {
	if n := cmp.Compare(c.kind, other.kind); n != 0 {
		return n
	}
	if n := cmp.Compare(c.fn, other.fn); n != 0 {
		return n
	}
	return cmp.Compare(c.ch, other.ch)
}

// String returns a readable name: "Enter", "F5", "'q'".
func (c Code) String() string {
	switch c.kind {
	case KindFunction:
		return "F" + strconv.Itoa(int(c.fn))
	case KindChar:
		return strconv.QuoteRune(c.ch)
	default:
		return c.kind.String()
	}
}

// MarshalText encodes unit keys by name, function keys as "F<n>" and
// characters as the rune itself when printable, otherwise as "U+XXXX".
func (c Code) MarshalText() ([]byte, error) {
	switch c.kind {
	case KindFunction:
		return []byte("F" + strconv.Itoa(int(c.fn))), nil
	case KindChar:
		return []byte(formatRune(c.ch)), nil
	default:
		if !c.kind.Valid() {
			return nil, fmt.Errorf("%w: %s", ErrInvalidSpec, c.kind)
		}
		return []byte(kindNames[c.kind]), nil
	}
}

// UnmarshalText decodes a code written by MarshalText. Key names are
// matched case-insensitively and the aliases accepted by Parse are allowed.
func (c *Code) UnmarshalText(text []byte) error {
	code, err := ParseCode(string(text))
	if err != nil {
		return err
	}
	*c = code
	return nil
}

// ParseCode parses the key part of a key specification: a key name, an
// "F<n>" function key, a "U+XXXX" code point or a single character.
func ParseCode(s string) (Code, error) {
	if s == "" {
		return Code{}, ErrEmptySpec
	}
	if utf8.RuneCountInString(s) == 1 {
		r, _ := utf8.DecodeRuneInString(s)
		return Char(r), nil
	}

	lower := strings.ToLower(strings.TrimSpace(s))
	if code, ok := codeNameMap[lower]; ok {
		return code, nil
	}
	if utf8.RuneCountInString(lower) == 1 {
		// surrounding whitespace around a single character
		r, _ := utf8.DecodeRuneInString(lower)
		return Char(r), nil
	}
	if n, ok := strings.CutPrefix(lower, "f"); ok {
		v, err := strconv.ParseUint(n, 10, 8)
		if err == nil {
			return F(uint8(v)), nil
		}
	}
	if hex, ok := strings.CutPrefix(lower, "u+"); ok {
		v, err := strconv.ParseUint(hex, 16, 32)
		if err == nil {
			return Char(rune(v)), nil
		}
	}
	return Code{}, fmt.Errorf("%w: unknown key %q", ErrInvalidSpec, s)
}

// formatRune renders r so that ParseCode returns it unchanged.
func formatRune(r rune) string {
	if utf8.ValidRune(r) && unicode.IsGraphic(r) && !unicode.IsSpace(r) {
		return string(r)
	}
	return fmt.Sprintf("U+%04X", uint32(r))
}

// codeNameMap maps key names and aliases (lowercase) to unit codes.
var codeNameMap = map[string]Code{
	"backspace": Backspace,
	"bs":        Backspace,
	"enter":     Enter,
	"return":    Enter,
	"cr":        Enter,
	"left":      Left,
	"right":     Right,
	"up":        Up,
	"down":      Down,
	"home":      Home,
	"end":       End,
	"pageup":    PageUp,
	"pgup":      PageUp,
	"pagedown":  PageDown,
	"pgdn":      PageDown,
	"tab":       Tab,
	"backtab":   BackTab,
	"delete":    Delete,
	"del":       Delete,
	"insert":    Insert,
	"ins":       Insert,
	"null":      Null,
	"nul":       Null,
	"esc":       Esc,
	"escape":    Esc,
	"space":     Char(' '),
	"lt":        Char('<'),
	"gt":        Char('>'),
	"bar":       Char('|'),
	"bslash":    Char('\\'),
	"minus":     Char('-'),
}
