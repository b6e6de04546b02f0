package backend

import (
	"fmt"
	"strconv"
)

// EventType identifies the type of terminal event.
type EventType int

const (
	EventNone EventType = iota
	EventKey
	EventResize
	EventPaste
	EventFocus
)

// String returns the event type name.
func (t EventType) String() string {
	switch t {
	case EventNone:
		return "none"
	case EventKey:
		return "key"
	case EventResize:
		return "resize"
	case EventPaste:
		return "paste"
	case EventFocus:
		return "focus"
	default:
		return fmt.Sprintf("EventType(%d)", int(t))
	}
}

// Event represents a terminal event.
type Event struct {
	Type EventType

	// Key event fields
	Code KeyCode
	Mod  ModMask

	// Resize event fields
	Width, Height int

	// Focus event fields; for paste events, true marks the start
	// of a bracketed paste and false its end.
	Focused bool
}

// NewKeyEvent returns a key event.
func NewKeyEvent(code KeyCode, mod ModMask) Event {
	return Event{Type: EventKey, Code: code, Mod: mod}
}

// ModMask represents modifier key state. The bit layout matches tcell.
type ModMask int16

const (
	ModShift ModMask = 1 << iota
	ModCtrl
	ModAlt
	ModMeta
	ModNone ModMask = 0
)

// Has returns true if the mask contains the given modifier.
func (m ModMask) Has(mod ModMask) bool {
	return m&mod != 0
}

// KeyKind identifies the active variant of a KeyCode.
type KeyKind int

const (
	KeyBackspace KeyKind = iota
	KeyEnter
	KeyLeft
	KeyRight
	KeyUp
	KeyDown
	KeyHome
	KeyEnd
	KeyPgUp
	KeyPgDn
	KeyTab
	KeyBacktab
	KeyDelete
	KeyInsert
	KeyF
	KeyChar
	KeyNull
	KeyEsc

	// KeyKindCount is the number of key kinds.
	KeyKindCount
)

var keyKindNames = [...]string{
	KeyBackspace: "Backspace",
	KeyEnter:     "Enter",
	KeyLeft:      "Left",
	KeyRight:     "Right",
	KeyUp:        "Up",
	KeyDown:      "Down",
	KeyHome:      "Home",
	KeyEnd:       "End",
	KeyPgUp:      "PgUp",
	KeyPgDn:      "PgDn",
	KeyTab:       "Tab",
	KeyBacktab:   "Backtab",
	KeyDelete:    "Delete",
	KeyInsert:    "Insert",
	KeyF:         "F",
	KeyChar:      "Char",
	KeyNull:      "Null",
	KeyEsc:       "Esc",
}

var _ [KeyKindCount]string = keyKindNames

// String returns the kind name.
func (k KeyKind) String() string {
	if k < 0 || k >= KeyKindCount {
		return fmt.Sprintf("KeyKind(%d)", int(k))
	}
	return keyKindNames[k]
}

// KeyCode is the key carried by a key event. Function keys carry their
// number and character keys carry their rune.
type KeyCode struct {
	Kind KeyKind
	Num  uint8
	Ch   rune
}

// Key returns the payload-free KeyCode for kind.
func Key(kind KeyKind) KeyCode {
	return KeyCode{Kind: kind}
}

// FKey returns the function key Fn.
func FKey(n uint8) KeyCode {
	return KeyCode{Kind: KeyF, Num: n}
}

// CharKey returns the key for the character r.
func CharKey(r rune) KeyCode {
	return KeyCode{Kind: KeyChar, Ch: r}
}

// String returns a readable name like "Enter", "F5" or "Char('q')".
func (k KeyCode) String() string {
	switch k.Kind {
	case KeyF:
		return "F" + strconv.Itoa(int(k.Num))
	case KeyChar:
		return "Char(" + strconv.QuoteRune(k.Ch) + ")"
	default:
		return k.Kind.String()
	}
}
