// Package config loads, normalizes, and validates the TOML configuration that
// drives every shoebox stage.
//
// Load resolves the config path (explicit flag, ~/.config/shoebox/config.toml,
// or a project-local shoebox.toml), applies defaults for anything unset,
// expands and absolutizes all paths, and rejects unusable archive definitions
// up front. The returned Config is the single injected source of settings;
// components never read files or environment variables themselves, with the
// one exception of the SHOEBOX_API_TOKEN fallback handled here.
package config
