// Package config loads, validates, and normalizes slidecast configuration.
// Configuration is stored in TOML and resolved from an explicit path, then
// ~/.config/slidecast/config.toml, then ./slidecast.toml. Missing files are
// not an error; defaults apply and Load reports whether a file was found.
package config
