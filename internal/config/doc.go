// Package config loads and validates the listforge configuration file.
//
// Configuration lives in a TOML file (default
// ~/.config/listforge/config.toml). Load applies defaults, expands and
// normalizes every path field, and validates the result, so the rest of the
// program can rely on absolute paths and sane values. CreateSample writes
// the embedded annotated sample for `listforge config init`.
package config
