// Package termkey converts between the terminal-agnostic key types and the
// terminal backend's native event vocabulary.
//
// It is the only package that imports both key and backend. The
// conversions are pure, total and lossless for every key.Code and for the
// shift, control and alt modifier flags.
package termkey

import (
	"github.com/dshills/termkeys/internal/backend"
	"github.com/dshills/termkeys/internal/input/key"
)

// modifierPairs lists each key modifier flag with its backend equivalent.
var modifierPairs = [...]struct {
	key     key.Modifier
	backend backend.ModMask
}{
	{key.ModShift, backend.ModShift},
	{key.ModCtrl, backend.ModCtrl},
	{key.ModAlt, backend.ModAlt},
}

// ModifiersToBackend converts a modifier set to a backend mask. Each flag
// present in m is added to the result.
func ModifiersToBackend(m key.Modifier) backend.ModMask {
	result := backend.ModNone
	for _, p := range modifierPairs {
		if m.Has(p.key) {
			result |= p.backend
		}
	}
	return result
}

// ModifiersFromBackend converts a backend mask to a modifier set. Bits
// other than shift, control and alt are ignored.
func ModifiersFromBackend(m backend.ModMask) key.Modifier {
	result := key.ModNone
	for _, p := range modifierPairs {
		if m.Has(p.backend) {
			result |= p.key
		}
	}
	return result
}

// kindToBackend maps every key kind to its backend kind. Missing entries
// default to backend.KeyBackspace.
var kindToBackend = [...]backend.KeyKind{
	key.KindBackspace: backend.KeyBackspace,
	key.KindEnter:     backend.KeyEnter,
	key.KindLeft:      backend.KeyLeft,
	key.KindRight:     backend.KeyRight,
	key.KindUp:        backend.KeyUp,
	key.KindDown:      backend.KeyDown,
	key.KindHome:      backend.KeyHome,
	key.KindEnd:       backend.KeyEnd,
	key.KindPageUp:    backend.KeyPgUp,
	key.KindPageDown:  backend.KeyPgDn,
	key.KindTab:       backend.KeyTab,
	key.KindBackTab:   backend.KeyBacktab,
	key.KindDelete:    backend.KeyDelete,
	key.KindInsert:    backend.KeyInsert,
	key.KindFunction:  backend.KeyF,
	key.KindChar:      backend.KeyChar,
	key.KindNull:      backend.KeyNull,
	key.KindEsc:       backend.KeyEsc,
}

// kindFromBackend is the inverse of kindToBackend.
var kindFromBackend = [...]key.Kind{
	backend.KeyBackspace: key.KindBackspace,
	backend.KeyEnter:     key.KindEnter,
	backend.KeyLeft:      key.KindLeft,
	backend.KeyRight:     key.KindRight,
	backend.KeyUp:        key.KindUp,
	backend.KeyDown:      key.KindDown,
	backend.KeyHome:      key.KindHome,
	backend.KeyEnd:       key.KindEnd,
	backend.KeyPgUp:      key.KindPageUp,
	backend.KeyPgDn:      key.KindPageDown,
	backend.KeyTab:       key.KindTab,
	backend.KeyBacktab:   key.KindBackTab,
	backend.KeyDelete:    key.KindDelete,
	backend.KeyInsert:    key.KindInsert,
	backend.KeyF:         key.KindFunction,
	backend.KeyChar:      key.KindChar,
	backend.KeyNull:      key.KindNull,
	backend.KeyEsc:       key.KindEsc,
}

// A kind appended on either side without a table entry fails here. A
// missing entry for a kind declared before the last one still compiles;
// TestKindTablesAreBijective catches it as a duplicate mapping.
var (
	_ [key.NumKinds]backend.KeyKind = kindToBackend
	_ [backend.KeyKindCount]key.Kind = kindFromBackend
)

// CodeToBackend converts a key code to the backend's key code. Function
// indices and runes are copied unchanged.
func CodeToBackend(c key.Code) backend.KeyCode {
	kind := c.Kind()
	if !kind.Valid() {
		return backend.KeyCode{Kind: backend.KeyKindCount}
	}

	out := backend.KeyCode{Kind: kindToBackend[kind]}
	if n, ok := c.Function(); ok {
		out.Num = n
	}
	if r, ok := c.Rune(); ok {
		out.Ch = r
	}
	return out
}

// CodeFromBackend converts a backend key code to a key code. Payload
// fields that do not belong to the code's kind are ignored. An undeclared
// backend kind yields Null.
func CodeFromBackend(c backend.KeyCode) key.Code {
	if c.Kind < 0 || c.Kind >= backend.KeyKindCount {
		return key.Null
	}

	switch kind := kindFromBackend[c.Kind]; kind {
	case key.KindFunction:
		return key.F(c.Num)
	case key.KindChar:
		return key.Char(c.Ch)
	default:
		code, _ := key.Unit(kind)
		return code
	}
}

// EventToBackend converts a key event to a backend key event.
func EventToBackend(e key.Event) backend.Event {
	return backend.NewKeyEvent(CodeToBackend(e.Code), ModifiersToBackend(e.Modifiers))
}

// EventFromBackend converts a backend event to a key event. It returns
// false for events that are not key events.
func EventFromBackend(e backend.Event) (key.Event, bool) {
	if e.Type != backend.EventKey {
		return key.Event{}, false
	}
	return key.NewEvent(CodeFromBackend(e.Code), ModifiersFromBackend(e.Mod)), true
}
