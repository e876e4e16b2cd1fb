// Package config loads and validates reelpipe configuration.
//
// Configuration lives in a TOML file (one file per publishing account) with
// sections for paths, account identity, publishing credentials, transcode
// styling, and scheduler timing. Load applies defaults, expands tilde paths,
// pulls credential overrides from the environment, and validates the result
// so later stages can assume a usable config.
package config
