// Package config loads, normalizes, and validates cinefill configuration.
//
// Configuration is read from a TOML file (~/.config/cinefill/config.toml or
// ./cinefill.toml), after which credential fields may be overridden from the
// environment. Path fields are expanded and made absolute during load.
package config
