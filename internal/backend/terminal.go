package backend

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
	"unicode"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
)

// Terminal implements Backend using tcell for terminal input.
type Terminal struct {
	screen tcell.Screen
	logger *slog.Logger
	mu     sync.Mutex
}

// NewTerminal creates a new terminal backend on the controlling terminal.
func NewTerminal() (*Terminal, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("creating screen: %w", err)
	}
	return NewTerminalWithScreen(screen), nil
}

// NewTerminalWithScreen creates a terminal backend on an existing screen,
// such as a tcell.SimulationScreen.
func NewTerminalWithScreen(screen tcell.Screen) *Terminal {
	return &Terminal{
		screen: screen,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// SetLogger sets the logger used to report events that cannot be translated.
func (t *Terminal) SetLogger(logger *slog.Logger) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if logger != nil {
		t.logger = logger
	}
}

func (t *Terminal) Init() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.screen.Init(); err != nil {
		return fmt.Errorf("initializing screen: %w", err)
	}

	// Enable bracketed paste
	t.screen.EnablePaste()

	return nil
}

func (t *Terminal) Shutdown() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.screen.Fini()
}

func (t *Terminal) Size() (int, int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.screen.Size()
}

// PollEvent blocks until tcell delivers an event. Keys with no native
// equivalent are reported as EventNone.
func (t *Terminal) PollEvent() (Event, bool) {
	ev := t.screen.PollEvent()
	if ev == nil {
		return Event{}, false
	}

	converted := convertEvent(ev)
	if converted.Type == EventNone {
		t.log().Debug("unhandled terminal event", "type", fmt.Sprintf("%T", ev), "detail", describe(ev))
	}
	return converted, true
}

// PostEvent posts a key or resize event into tcell's queue. Keys tcell
// cannot express, such as F0 or F65 and above, return ErrUnsupportedKey.
func (t *Terminal) PostEvent(event Event) error {
	var tev tcell.Event
	switch event.Type {
	case EventKey:
		k, r, err := convertToTcellKey(event.Code)
		if err != nil {
			return err
		}
		tev = tcell.NewEventKey(k, r, convertToTcellMod(event.Mod))
	case EventResize:
		tev = tcell.NewEventResize(event.Width, event.Height)
	default:
		return fmt.Errorf("posting %s events is not supported", event.Type)
	}

	if err := t.screen.PostEvent(tev); err != nil {
		return fmt.Errorf("%w: %v", ErrQueueFull, err)
	}
	return nil
}

// DrawLines clears the screen and writes lines from the top left corner.
// Wide characters take two columns; zero-width runes are skipped. Text
// past the screen edge is cut off.
func (t *Terminal) DrawLines(lines []string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.screen.Clear()
	w, h := t.screen.Size()
	for y, line := range lines {
		if y >= h {
			break
		}
		x := 0
		for _, r := range line {
			rw := runewidth.RuneWidth(r)
			if rw == 0 {
				continue
			}
			if x+rw > w {
				break
			}
			t.screen.SetContent(x, y, r, nil, tcell.StyleDefault)
			x += rw
		}
	}
	t.screen.Show()
}

func (t *Terminal) log() *slog.Logger {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.logger
}

func describe(ev tcell.Event) string {
	if k, ok := ev.(*tcell.EventKey); ok {
		return k.Name()
	}
	return ""
}

// convertEvent converts tcell events to our Event type.
func convertEvent(ev tcell.Event) Event {
	switch e := ev.(type) {
	case *tcell.EventKey:
		code, mod, ok := convertKey(e)
		if !ok {
			return Event{Type: EventNone}
		}
		return Event{Type: EventKey, Code: code, Mod: mod}

	case *tcell.EventResize:
		w, h := e.Size()
		return Event{
			Type:   EventResize,
			Width:  w,
			Height: h,
		}

	case *tcell.EventPaste:
		return Event{
			Type:    EventPaste,
			Focused: e.Start(),
		}

	case *tcell.EventFocus:
		return Event{
			Type:    EventFocus,
			Focused: e.Focused,
		}

	default:
		return Event{Type: EventNone}
	}
}

// convertKey converts a tcell key event to a KeyCode and modifier mask.
// ASCII control codes are reported as Ctrl plus the matching character.
func convertKey(e *tcell.EventKey) (KeyCode, ModMask, bool) {
	mod := convertMod(e.Modifiers())
	k := e.Key()

	switch {
	case k == tcell.KeyRune:
		return CharKey(e.Rune()), mod, true
	case k >= tcell.KeyF1 && k <= tcell.KeyF64:
		return FKey(uint8(k-tcell.KeyF1) + 1), mod, true
	case k == tcell.KeyCtrlSpace:
		return CharKey(' '), mod | ModCtrl, true
	case k > tcell.KeyCtrlSpace && k <= tcell.KeyCtrlSpace+31:
		return CharKey(unicode.ToLower(rune(k))), mod | ModCtrl, true
	}

	switch k {
	case tcell.KeyNUL:
		return Key(KeyNull), mod, true
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		return Key(KeyBackspace), mod, true
	case tcell.KeyTab:
		return Key(KeyTab), mod, true
	case tcell.KeyBacktab:
		return Key(KeyBacktab), mod, true
	case tcell.KeyEnter:
		return Key(KeyEnter), mod, true
	case tcell.KeyEscape:
		return Key(KeyEsc), mod, true
	case tcell.KeyDelete:
		return Key(KeyDelete), mod, true
	case tcell.KeyInsert:
		return Key(KeyInsert), mod, true
	case tcell.KeyHome:
		return Key(KeyHome), mod, true
	case tcell.KeyEnd:
		return Key(KeyEnd), mod, true
	case tcell.KeyPgUp:
		return Key(KeyPgUp), mod, true
	case tcell.KeyPgDn:
		return Key(KeyPgDn), mod, true
	case tcell.KeyUp:
		return Key(KeyUp), mod, true
	case tcell.KeyDown:
		return Key(KeyDown), mod, true
	case tcell.KeyLeft:
		return Key(KeyLeft), mod, true
	case tcell.KeyRight:
		return Key(KeyRight), mod, true
	}

	// Remaining ASCII control codes.
	if k > tcell.KeyNUL && k < ' ' {
		return CharKey(unicode.ToLower(rune(k) + '@')), mod | ModCtrl, true
	}

	return KeyCode{}, ModNone, false
}

// convertToTcellKey converts a KeyCode to a tcell key and rune.
func convertToTcellKey(code KeyCode) (tcell.Key, rune, error) {
	switch code.Kind {
	case KeyChar:
		return tcell.KeyRune, code.Ch, nil
	case KeyF:
		if code.Num < 1 || code.Num > 64 {
			return 0, 0, fmt.Errorf("%w: %s", ErrUnsupportedKey, code)
		}
		return tcell.KeyF1 + tcell.Key(code.Num-1), 0, nil
	case KeyNull:
		return tcell.KeyNUL, 0, nil
	case KeyBackspace:
		return tcell.KeyBackspace, 0, nil
	case KeyTab:
		return tcell.KeyTab, 0, nil
	case KeyBacktab:
		return tcell.KeyBacktab, 0, nil
	case KeyEnter:
		return tcell.KeyEnter, 0, nil
	case KeyEsc:
		return tcell.KeyEscape, 0, nil
	case KeyDelete:
		return tcell.KeyDelete, 0, nil
	case KeyInsert:
		return tcell.KeyInsert, 0, nil
	case KeyHome:
		return tcell.KeyHome, 0, nil
	case KeyEnd:
		return tcell.KeyEnd, 0, nil
	case KeyPgUp:
		return tcell.KeyPgUp, 0, nil
	case KeyPgDn:
		return tcell.KeyPgDn, 0, nil
	case KeyUp:
		return tcell.KeyUp, 0, nil
	case KeyDown:
		return tcell.KeyDown, 0, nil
	case KeyLeft:
		return tcell.KeyLeft, 0, nil
	case KeyRight:
		return tcell.KeyRight, 0, nil
	default:
		return 0, 0, fmt.Errorf("%w: %s", ErrUnsupportedKey, code)
	}
}

// convertMod converts tcell modifier mask to our ModMask.
func convertMod(m tcell.ModMask) ModMask {
	var result ModMask
	if m&tcell.ModShift != 0 {
		result |= ModShift
	}
	if m&tcell.ModCtrl != 0 {
		result |= ModCtrl
	}
	if m&tcell.ModAlt != 0 {
		result |= ModAlt
	}
	if m&tcell.ModMeta != 0 {
		result |= ModMeta
	}
	return result
}

// convertToTcellMod converts our ModMask to tcell.ModMask.
func convertToTcellMod(m ModMask) tcell.ModMask {
	var result tcell.ModMask
	if m&ModShift != 0 {
		result |= tcell.ModShift
	}
	if m&ModCtrl != 0 {
		result |= tcell.ModCtrl
	}
	if m&ModAlt != 0 {
		result |= tcell.ModAlt
	}
	if m&ModMeta != 0 {
		result |= tcell.ModMeta
	}
	return result
}
