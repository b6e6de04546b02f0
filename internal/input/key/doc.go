// Package key provides terminal-agnostic key types for the input system.
//
// This package defines the fundamental types for representing keyboard input:
//
//   - Modifier: A set of modifier keys (Shift, Ctrl, Alt)
//   - Code: Identifies a key (named keys, function keys F(n), characters)
//   - Event: A key code together with its active modifiers
//
// None of these types refer to a terminal library. Conversion to and from
// a terminal backend lives in package termkey.
//
// # Key Specifications
//
// Key specifications can be written in multiple formats:
//
//   - Simple keys: "a", "A", "1", "Enter", "Escape"
//   - With modifiers: "Ctrl+S", "Alt+F4", "Ctrl+Shift+P"
//   - Vim-style: "<C-s>", "<A-f>", "<C-S-p>", "<CR>", "<Esc>"
//
// FormatSpec produces the canonical form, which Parse reads back to the
// same Event. Modifier, Code and Event implement encoding.TextMarshaler
// and encoding.TextUnmarshaler, so they can be stored in JSON, TOML or
// YAML documents.
package key
