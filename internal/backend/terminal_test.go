package backend

import (
	"errors"
	"testing"

	"github.com/gdamore/tcell/v2"
)

func newSimTerminal(t *testing.T) (*Terminal, tcell.SimulationScreen) {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	term := NewTerminalWithScreen(screen)
	if err := term.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	t.Cleanup(term.Shutdown)
	return term, screen
}

// nextKey polls until a key event arrives, skipping resize and other events.
func nextKey(t *testing.T, term *Terminal) Event {
	t.Helper()
	for i := 0; i < 10; i++ {
		ev, ok := term.PollEvent()
		if !ok {
			t.Fatal("terminal closed")
		}
		if ev.Type == EventKey {
			return ev
		}
	}
	t.Fatal("no key event")
	return Event{}
}

func TestConvertKey(t *testing.T) {
	tests := []struct {
		name     string
		key      tcell.Key
		ch       rune
		mod      tcell.ModMask
		wantCode KeyCode
		wantMod  ModMask
	}{
		{"rune", tcell.KeyRune, 'a', tcell.ModNone, CharKey('a'), ModNone},
		{"rune ctrl shift", tcell.KeyRune, 'q', tcell.ModCtrl | tcell.ModShift, CharKey('q'), ModCtrl | ModShift},
		{"enter", tcell.KeyEnter, 0, tcell.ModNone, Key(KeyEnter), ModNone},
		{"backspace", tcell.KeyBackspace, 0, tcell.ModNone, Key(KeyBackspace), ModNone},
		{"backspace2", tcell.KeyBackspace2, 0, tcell.ModNone, Key(KeyBackspace), ModNone},
		{"tab", tcell.KeyTab, 0, tcell.ModNone, Key(KeyTab), ModNone},
		{"backtab", tcell.KeyBacktab, 0, tcell.ModNone, Key(KeyBacktab), ModNone},
		{"escape", tcell.KeyEscape, 0, tcell.ModNone, Key(KeyEsc), ModNone},
		{"nul", tcell.KeyNUL, 0, tcell.ModNone, Key(KeyNull), ModNone},
		{"f1", tcell.KeyF1, 0, tcell.ModNone, FKey(1), ModNone},
		{"f12 alt", tcell.KeyF12, 0, tcell.ModAlt, FKey(12), ModAlt},
		{"f64", tcell.KeyF64, 0, tcell.ModNone, FKey(64), ModNone},
		{"pgdn", tcell.KeyPgDn, 0, tcell.ModNone, Key(KeyPgDn), ModNone},
		{"left shift", tcell.KeyLeft, 0, tcell.ModShift, Key(KeyLeft), ModShift},
		{"ctrl a", tcell.KeyCtrlA, 'a', tcell.ModCtrl, CharKey('a'), ModCtrl},
		{"ctrl z", tcell.KeyCtrlZ, 'z', tcell.ModCtrl, CharKey('z'), ModCtrl},
		{"ctrl space", tcell.KeyCtrlSpace, 0, tcell.ModCtrl, CharKey(' '), ModCtrl},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := tcell.NewEventKey(tt.key, tt.ch, tt.mod)
			code, mod, ok := convertKey(ev)
			if !ok {
				t.Fatalf("convertKey(%s) not ok", ev.Name())
			}
			if code != tt.wantCode {
				t.Errorf("code = %v, want %v", code, tt.wantCode)
			}
			if mod != tt.wantMod {
				t.Errorf("mod = %v, want %v", mod, tt.wantMod)
			}
		})
	}
}

func TestConvertKeyUnmapped(t *testing.T) {
	for _, k := range []tcell.Key{tcell.KeyCenter, tcell.KeyHelp, tcell.KeyPrint} {
		if _, _, ok := convertKey(tcell.NewEventKey(k, 0, tcell.ModNone)); ok {
			t.Errorf("convertKey(%v) should not map", k)
		}
	}
}

func TestConvertToTcellKey(t *testing.T) {
	for kind := KeyKind(0); kind < KeyKindCount; kind++ {
		code := KeyCode{Kind: kind, Num: 3, Ch: 'x'}
		if _, _, err := convertToTcellKey(code); err != nil {
			t.Errorf("convertToTcellKey(%v) error = %v", code, err)
		}
	}

	for _, n := range []uint8{0, 65, 255} {
		_, _, err := convertToTcellKey(FKey(n))
		if !errors.Is(err, ErrUnsupportedKey) {
			t.Errorf("convertToTcellKey(F%d) error = %v, want ErrUnsupportedKey", n, err)
		}
	}
}

func TestModRoundTrip(t *testing.T) {
	for m := ModNone; m <= ModShift|ModCtrl|ModAlt|ModMeta; m++ {
		if got := convertMod(convertToTcellMod(m)); got != m {
			t.Errorf("convertMod(convertToTcellMod(%d)) = %d", m, got)
		}
	}
}

func TestTerminalPostPoll(t *testing.T) {
	term, _ := newSimTerminal(t)

	events := []Event{
		NewKeyEvent(Key(KeyEnter), ModNone),
		NewKeyEvent(CharKey('q'), ModCtrl|ModShift),
		NewKeyEvent(FKey(5), ModNone),
		NewKeyEvent(Key(KeyBacktab), ModNone),
		NewKeyEvent(Key(KeyEsc), ModNone),
		NewKeyEvent(Key(KeyNull), ModNone),
		NewKeyEvent(CharKey('é'), ModAlt),
	}

	for _, want := range events {
		if err := term.PostEvent(want); err != nil {
			t.Fatalf("PostEvent(%v) failed: %v", want.Code, err)
		}
		got := nextKey(t, term)
		if got != want {
			t.Errorf("round trip of %v+%d = %v+%d", want.Code, want.Mod, got.Code, got.Mod)
		}
	}
}

func TestTerminalInjectedKeys(t *testing.T) {
	term, screen := newSimTerminal(t)

	screen.InjectKey(tcell.KeyRune, 'q', tcell.ModCtrl|tcell.ModShift)
	got := nextKey(t, term)
	if got.Code != CharKey('q') || got.Mod != ModCtrl|ModShift {
		t.Errorf("injected C-S-q = %v+%d", got.Code, got.Mod)
	}

	screen.InjectKey(tcell.KeyEnter, 0, tcell.ModNone)
	got = nextKey(t, term)
	if got.Code != Key(KeyEnter) || got.Mod != ModNone {
		t.Errorf("injected Enter = %v+%d", got.Code, got.Mod)
	}
}

func TestTerminalShiftOnRunes(t *testing.T) {
	term, screen := newSimTerminal(t)

	// tcell drops Shift when it is the only modifier on a rune.
	tests := []struct {
		post Event
		want Event
	}{
		{NewKeyEvent(CharKey('A'), ModShift), NewKeyEvent(CharKey('A'), ModNone)},
		{NewKeyEvent(CharKey('!'), ModShift), NewKeyEvent(CharKey('!'), ModNone)},
		{NewKeyEvent(CharKey('q'), ModCtrl|ModShift), NewKeyEvent(CharKey('q'), ModCtrl|ModShift)},
		{NewKeyEvent(CharKey('a'), ModAlt|ModShift), NewKeyEvent(CharKey('a'), ModAlt|ModShift)},
		{NewKeyEvent(Key(KeyUp), ModShift), NewKeyEvent(Key(KeyUp), ModShift)},
	}
	for _, tt := range tests {
		if err := term.PostEvent(tt.post); err != nil {
			t.Fatalf("PostEvent(%v) failed: %v", tt.post.Code, err)
		}
		if got := nextKey(t, term); got != tt.want {
			t.Errorf("%v+%d came back as %v+%d, want %v+%d",
				tt.post.Code, tt.post.Mod, got.Code, got.Mod, tt.want.Code, tt.want.Mod)
		}
	}

	screen.InjectKey(tcell.KeyRune, 'A', tcell.ModShift)
	if got := nextKey(t, term); got.Code != CharKey('A') || got.Mod != ModNone {
		t.Errorf("injected S-A = %v+%d", got.Code, got.Mod)
	}
}

func TestTerminalPostUnsupported(t *testing.T) {
	term, _ := newSimTerminal(t)

	if err := term.PostEvent(NewKeyEvent(FKey(0), ModNone)); !errors.Is(err, ErrUnsupportedKey) {
		t.Errorf("PostEvent(F0) error = %v, want ErrUnsupportedKey", err)
	}
	if err := term.PostEvent(Event{Type: EventFocus}); err == nil {
		t.Error("posting focus events should fail")
	}
}

func TestTerminalShutdownEndsPolling(t *testing.T) {
	screen := tcell.NewSimulationScreen("UTF-8")
	term := NewTerminalWithScreen(screen)
	if err := term.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, ok := term.PollEvent(); !ok {
				return
			}
		}
	}()

	term.Shutdown()
	<-done
}

func TestTerminalDrawLines(t *testing.T) {
	term, screen := newSimTerminal(t)
	screen.SetSize(6, 2)

	term.DrawLines([]string{"key: q", "世界x\x01y", "hidden"})

	tests := []struct {
		x, y  int
		want  rune
		width int
	}{
		{0, 0, 'k', 1},
		{5, 0, 'q', 1},
		{0, 1, '世', 2},
		{2, 1, '界', 2},
		{4, 1, 'x', 1},
		{5, 1, 'y', 1},
	}

	for _, tt := range tests {
		r, _, _, width := screen.GetContent(tt.x, tt.y)
		if r != tt.want || width != tt.width {
			t.Errorf("cell (%d, %d) = %q width %d, want %q width %d", tt.x, tt.y, r, width, tt.want, tt.width)
		}
	}
}
