// Package config loads, normalizes, and validates dubforge's TOML
// configuration. Defaults are always usable: a missing config file yields a
// working configuration pointed at conventional XDG-style directories.
package config
