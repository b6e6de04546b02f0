// Package config loads keytrace settings.
//
// Settings come from three sources, later ones winning:
//
//  1. Built-in defaults (Default)
//  2. A TOML file (Load)
//  3. KEYTRACE_* environment variables (ApplyEnv)
//
// Key settings such as record.quit_key are written in key spec notation
// and decoded through key.Event's text unmarshaler:
//
//	[record]
//	quit_key = "<C-c>"
//	format = "yaml"
//
//	[logging]
//	level = "debug"
//	file = "/tmp/keytrace.log"
//
// Watch reloads the file when it changes.
package config
