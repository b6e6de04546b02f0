package key

import (
	"fmt"
	"strings"
)

// Modifier represents keyboard modifier keys as a bit set.
type Modifier uint8

const (
	// ModNone indicates no modifiers.
	ModNone Modifier = 0

	// ModShift indicates the Shift key.
	ModShift Modifier = 1 << 0

	// ModCtrl indicates the Control key.
	ModCtrl Modifier = 1 << 1

	// ModAlt indicates the Alt key (Option on macOS).
	ModAlt Modifier = 1 << 2

	modMask = ModShift | ModCtrl | ModAlt
)

// AllModifiers returns every combination of Shift, Ctrl and Alt,
// starting with ModNone, in bit order.
func AllModifiers() []Modifier {
	mods := make([]Modifier, 0, modMask+1)
	for m := ModNone; m <= modMask; m++ {
		mods = append(mods, m)
	}
	return mods
}

// Has returns true if m contains any of the bits in mod.
func (m Modifier) Has(mod Modifier) bool {
	return m&mod != 0
}

// HasShift returns true if Shift is pressed.
func (m Modifier) HasShift() bool {
	return m.Has(ModShift)
}

// HasCtrl returns true if Control is pressed.
func (m Modifier) HasCtrl() bool {
	return m.Has(ModCtrl)
}

// HasAlt returns true if Alt is pressed.
func (m Modifier) HasAlt() bool {
	return m.Has(ModAlt)
}

// With returns a new Modifier with the specified modifier added.
func (m Modifier) With(mod Modifier) Modifier {
	return m | mod
}

// Without returns a new Modifier with the specified modifier removed.
func (m Modifier) Without(mod Modifier) Modifier {
	return m &^ mod
}

// Intersect returns the modifiers present in both m and mod.
func (m Modifier) Intersect(mod Modifier) Modifier {
	return m & mod
}

// IsEmpty returns true if no modifiers are set.
func (m Modifier) IsEmpty() bool {
	return m == ModNone
}

// flagNames gives each flag its display and short names. Display
// order is Ctrl, Alt, Shift.
var flagNames = [...]struct {
	mod     Modifier
	display string
	short   string
}{
	{ModCtrl, "Ctrl", "C"},
	{ModAlt, "Alt", "A"},
	{ModShift, "Shift", "S"},
}

// textNames is the stable serialized vocabulary, in encoding order.
var textNames = [...]struct {
	mod  Modifier
	name string
}{
	{ModShift, "shift"},
	{ModCtrl, "control"},
	{ModAlt, "alt"},
}

func (m Modifier) join(sep string, short bool) string {
	var parts []string
	for _, f := range flagNames {
		if !m.Has(f.mod) {
			continue
		}
		if short {
			parts = append(parts, f.short)
		} else {
			parts = append(parts, f.display)
		}
	}
	return strings.Join(parts, sep)
}

// String returns a human-readable representation like "Ctrl+Alt".
func (m Modifier) String() string {
	return m.join("+", false)
}

// ShortString returns a compact representation like "C-A-S".
func (m Modifier) ShortString() string {
	return m.join("-", true)
}

// MarshalText encodes the set using the flag names shift, control and alt
// joined by "+", or "none" for the empty set.
func (m Modifier) MarshalText() ([]byte, error) {
	var parts []string
	for _, f := range textNames {
		if m.Has(f.mod) {
			parts = append(parts, f.name)
		}
	}
	if len(parts) == 0 {
		return []byte("none"), nil
	}
	return []byte(strings.Join(parts, "+")), nil
}

// UnmarshalText decodes a set written by MarshalText. Any name accepted by
// ModifierFromName may be used; unknown names are rejected.
func (m *Modifier) UnmarshalText(text []byte) error {
	s := strings.ToLower(strings.TrimSpace(string(text)))
	if s == "" || s == "none" {
		*m = ModNone
		return nil
	}

	var result Modifier
	for _, part := range strings.Split(s, "+") {
		part = strings.TrimSpace(part)
		mod := ModifierFromName(part)
		if mod == ModNone {
			return fmt.Errorf("%w: unknown modifier %q", ErrInvalidSpec, part)
		}
		result = result.With(mod)
	}
	*m = result
	return nil
}

// modifierNameMap maps modifier names (lowercase) to Modifier values.
var modifierNameMap = map[string]Modifier{
	"ctrl":    ModCtrl,
	"control": ModCtrl,
	"c":       ModCtrl,
	"alt":     ModAlt,
	"a":       ModAlt,
	"option":  ModAlt,
	"opt":     ModAlt,
	"shift":   ModShift,
	"s":       ModShift,
}

// ModifierFromName returns the Modifier for a given name (case-insensitive).
// Returns ModNone if the name is not recognized.
func ModifierFromName(name string) Modifier {
	if m, ok := modifierNameMap[strings.ToLower(name)]; ok {
		return m
	}
	return ModNone
}

// ParseModifiers parses a modifier string like "Ctrl+Alt" or "C-A".
// Unrecognized parts are ignored.
func ParseModifiers(s string) Modifier {
	s = strings.ToLower(s)
	var result Modifier

	var parts []string
	if strings.Contains(s, "+") {
		parts = strings.Split(s, "+")
	} else if strings.Contains(s, "-") {
		parts = strings.Split(s, "-")
	} else {
		parts = []string{s}
	}

	for _, part := range parts {
		part = strings.TrimSpace(part)
		if mod := ModifierFromName(part); mod != ModNone {
			result = result.With(mod)
		}
	}

	return result
}
