// Package config loads and persists the user's settings file. The
// format is TOML, kept at the platform config dir by default
// (~/.config/qbz/config.toml on Linux). Missing files yield defaults;
// missing keys in an existing file keep their default values.
package config
