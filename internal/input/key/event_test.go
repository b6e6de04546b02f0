package key

import (
	"testing"
)

func TestNewRuneEvent(t *testing.T) {
	e := NewRuneEvent('a', ModNone)
	if e.Code != Char('a') {
		t.Errorf("NewRuneEvent code = %v, want 'a'", e.Code)
	}
	if e.Modifiers != ModNone {
		t.Errorf("NewRuneEvent modifiers = %v, want ModNone", e.Modifiers)
	}
}

func TestEventIsRune(t *testing.T) {
	tests := []struct {
		event Event
		want  bool
	}{
		{NewRuneEvent('a', ModNone), true},
		{NewRuneEvent('A', ModShift), true},
		{NewRuneEvent(0, ModNone), true},
		{NewEvent(Esc, ModNone), false},
		{NewEvent(Enter, ModNone), false},
		{NewEvent(Null, ModNone), false},
	}

	for _, tt := range tests {
		if got := tt.event.IsRune(); got != tt.want {
			t.Errorf("Event.IsRune() = %v, want %v for %#v", got, tt.want, tt.event)
		}
	}
}

func TestEventIsChar(t *testing.T) {
	tests := []struct {
		event Event
		want  bool
	}{
		{NewRuneEvent('a', ModNone), true},
		{NewRuneEvent(' ', ModNone), true},
		{NewRuneEvent('\n', ModNone), false}, // Not printable
		{NewEvent(Esc, ModNone), false},
	}

	for _, tt := range tests {
		if got := tt.event.IsChar(); got != tt.want {
			t.Errorf("Event.IsChar() = %v, want %v for %#v", got, tt.want, tt.event)
		}
	}
}

func TestEventIsModified(t *testing.T) {
	tests := []struct {
		event Event
		want  bool
	}{
		{NewRuneEvent('a', ModNone), false},
		{NewRuneEvent('A', ModShift), false}, // Shift alone doesn't count for runes
		{NewRuneEvent('a', ModCtrl), true},
		{NewRuneEvent('a', ModAlt), true},
		{NewEvent(Esc, ModNone), false},
		{NewEvent(Esc, ModShift), true}, // Shift counts for special keys
		{NewEvent(Enter, ModCtrl), true},
	}

	for _, tt := range tests {
		if got := tt.event.IsModified(); got != tt.want {
			t.Errorf("Event.IsModified() = %v, want %v for %#v", got, tt.want, tt.event)
		}
	}
}

func TestEventEquality(t *testing.T) {
	tests := []struct {
		a, b Event
		want bool
	}{
		{NewRuneEvent('a', ModNone), NewRuneEvent('a', ModNone), true},
		{NewRuneEvent('a', ModNone), NewRuneEvent('b', ModNone), false},
		{NewRuneEvent('a', ModNone), NewRuneEvent('a', ModCtrl), false},
		{NewEvent(Esc, ModNone), NewEvent(Esc, ModNone), true},
		{NewEvent(Esc, ModNone), NewEvent(Enter, ModNone), false},
		{NewEvent(F(3), ModAlt), NewEvent(F(3), ModAlt), true},
	}

	for _, tt := range tests {
		if got := tt.a == tt.b; got != tt.want {
			t.Errorf("%#v == %#v is %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestEventString(t *testing.T) {
	tests := []struct {
		event Event
		want  string
	}{
		{NewRuneEvent('a', ModNone), "a"},
		{NewRuneEvent('A', ModNone), "A"},
		{NewRuneEvent('s', ModCtrl), "C-s"},
		{NewRuneEvent('f', ModCtrl|ModAlt), "C-A-f"},
		{NewRuneEvent('q', ModCtrl|ModShift), "C-S-q"},
		{NewEvent(Esc, ModNone), "Esc"},
		{NewEvent(Enter, ModNone), "Enter"},
		{NewEvent(Enter, ModCtrl), "C-Enter"},
		{NewEvent(Tab, ModShift), "S-Tab"},
		{NewEvent(F(5), ModNone), "F5"},
		{NewRuneEvent(' ', ModNone), "Space"},
	}

	for _, tt := range tests {
		if got := tt.event.String(); got != tt.want {
			t.Errorf("Event.String() = %q, want %q", got, tt.want)
		}
	}
}

func TestEventVimString(t *testing.T) {
	tests := []struct {
		event Event
		want  string
	}{
		{NewRuneEvent('a', ModNone), "a"},
		{NewRuneEvent('A', ModNone), "A"},
		{NewRuneEvent('s', ModCtrl), "<C-s>"},
		{NewRuneEvent('p', ModCtrl|ModShift), "<C-S-p>"},
		{NewRuneEvent(' ', ModNone), "<Space>"},
		{NewRuneEvent('<', ModNone), "<lt>"},
		{NewRuneEvent('>', ModNone), "<gt>"},
		{NewRuneEvent('\x01', ModNone), "<U+0001>"},
		{NewEvent(Esc, ModNone), "<Esc>"},
		{NewEvent(Enter, ModNone), "<CR>"},
		{NewEvent(Backspace, ModNone), "<BS>"},
		{NewEvent(F(12), ModAlt), "<A-F12>"},
		{NewEvent(Null, ModNone), "<Null>"},
	}

	for _, tt := range tests {
		if got := tt.event.VimString(); got != tt.want {
			t.Errorf("Event.VimString() = %q, want %q", got, tt.want)
		}
	}
}

func TestEventMatches(t *testing.T) {
	e := NewRuneEvent('s', ModCtrl)
	if !e.Matches("<C-s>") {
		t.Error("should match <C-s>")
	}
	if !e.Matches("Ctrl+s") {
		t.Error("should match Ctrl+s")
	}
	if e.Matches("<C-S>") {
		t.Error("should not match <C-S>, characters are case-sensitive")
	}
	if e.Matches("") {
		t.Error("should not match an empty spec")
	}
}

func TestEventHelpers(t *testing.T) {
	if !NewEvent(Esc, ModNone).IsEscape() {
		t.Error("Esc should be escape")
	}
	if NewEvent(Esc, ModCtrl).IsEscape() {
		t.Error("C-Esc should not be plain escape")
	}
	if !NewEvent(Enter, ModNone).IsEnter() {
		t.Error("Enter should be enter")
	}

	e := NewRuneEvent('x', ModCtrl).WithModifier(ModShift)
	if e.Modifiers != ModCtrl|ModShift {
		t.Errorf("WithModifier = %v, want Ctrl+Shift", e.Modifiers)
	}
}

func TestEventTextRoundTrip(t *testing.T) {
	codes := append(unitCodes(),
		F(0), F(1), F(12), F(255),
		Char('a'), Char('Q'), Char(' '), Char('é'), Char('\x01'),
		Char('<'), Char('>'), Char('-'), Char('+'), Char('C'), Char('S'),
	)

	for _, c := range codes {
		for _, m := range AllModifiers() {
			e := NewEvent(c, m)
			text, err := e.MarshalText()
			if err != nil {
				t.Fatalf("%#v.MarshalText() error = %v", e, err)
			}
			var got Event
			if err := got.UnmarshalText(text); err != nil {
				t.Fatalf("UnmarshalText(%q) error = %v", text, err)
			}
			if got != e {
				t.Errorf("UnmarshalText(%q) = %#v, want %#v", text, got, e)
			}
		}
	}
}
