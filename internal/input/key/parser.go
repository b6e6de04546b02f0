package key

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Parse errors
var (
	ErrEmptySpec   = errors.New("empty key specification")
	ErrInvalidSpec = errors.New("invalid key specification")
)

// Parse parses a key specification string into an Event.
//
// Supported formats:
//   - Single character: "a", "A", "1", "@"
//   - Key names: "Enter", "Escape", "Tab", "Backspace", "Space", "F12"
//   - With modifiers: "Ctrl+S", "Alt+F4", "Ctrl+Shift+P"
//   - Vim-style: "<C-s>", "<A-f>", "<C-S-p>", "<CR>", "<Esc>", "<lt>", "<U+0001>"
//
// Characters are taken as written: "A" is the character 'A' without
// Shift, and "<C-S-q>" keeps the lowercase 'q'.
func Parse(spec string) (Event, error) {
	if spec == "" {
		return Event{}, ErrEmptySpec
	}

	// A lone character is always itself, even whitespace.
	if utf8.RuneCountInString(spec) == 1 {
		r, _ := utf8.DecodeRuneInString(spec)
		return NewRuneEvent(r, ModNone), nil
	}

	spec = strings.TrimSpace(spec)
	if spec == "" {
		return Event{}, ErrEmptySpec
	}

	if len(spec) > 2 && strings.HasPrefix(spec, "<") && strings.HasSuffix(spec, ">") {
		return parseVimStyle(spec[1 : len(spec)-1])
	}

	lower := strings.ToLower(spec)
	if strings.Contains(spec[1:], "+") && !strings.HasPrefix(lower, "u+") {
		return parseModifierStyle(spec)
	}

	code, err := ParseCode(spec)
	if err != nil {
		return Event{}, err
	}
	return NewEvent(code, ModNone), nil
}

// parseVimStyle parses the inside of Vim-style notation like "C-s",
// "A-F4", "CR", "C--".
func parseVimStyle(inner string) (Event, error) {
	var mods Modifier

	// Consume "X-" prefixes while something is left for the key.
	for len(inner) >= 3 && inner[1] == '-' {
		var mod Modifier
		switch inner[0] {
		case 'c', 'C':
			mod = ModCtrl
		case 'a', 'A', 'm', 'M':
			mod = ModAlt
		case 's', 'S':
			mod = ModShift
		default:
			return Event{}, fmt.Errorf("%w: unknown modifier %q", ErrInvalidSpec, inner[:1])
		}
		mods = mods.With(mod)
		inner = inner[2:]
	}

	code, err := ParseCode(inner)
	if err != nil {
		return Event{}, err
	}
	return NewEvent(code, mods), nil
}

// parseModifierStyle parses "Ctrl+S" style notation.
func parseModifierStyle(spec string) (Event, error) {
	// The last "+" that is not the final character separates the key,
	// which lets "Ctrl++" name the plus key.
	idx := strings.LastIndex(spec[:len(spec)-1], "+")
	if idx <= 0 {
		return Event{}, fmt.Errorf("%w: %q", ErrInvalidSpec, spec)
	}

	var mods Modifier
	for _, p := range strings.Split(spec[:idx], "+") {
		p = strings.TrimSpace(p)
		mod := ModifierFromName(p)
		if mod == ModNone {
			return Event{}, fmt.Errorf("%w: unknown modifier %q", ErrInvalidSpec, p)
		}
		mods = mods.With(mod)
	}

	keyPart := spec[idx+1:]
	if utf8.RuneCountInString(keyPart) != 1 {
		keyPart = strings.TrimSpace(keyPart)
	}
	code, err := ParseCode(keyPart)
	if err != nil {
		return Event{}, err
	}
	return NewEvent(code, mods), nil
}

// MustParse parses a key specification and panics on error.
// Use only for known-valid specs in initialization code.
func MustParse(spec string) Event {
	event, err := Parse(spec)
	if err != nil {
		panic("invalid key specification: " + spec + ": " + err.Error())
	}
	return event
}

// FormatSpec formats a key event as a specification string.
// This produces a canonical form that can be parsed back.
func FormatSpec(event Event) string {
	return event.VimString()
}

// NormalizeSpec parses and re-formats a key specification to its canonical form.
func NormalizeSpec(spec string) (string, error) {
	event, err := Parse(spec)
	if err != nil {
		return "", err
	}
	return FormatSpec(event), nil
}
