// Package config loads and validates the emulator's YAML configuration.
//
// Configuration covers the HTTP listen address, gateway protocol knobs
// (heartbeat interval, re-identify policy), the seed guilds and channels
// loaded into the store at startup, and the logging/metrics/inspector
// settings. Values omitted from the file fall back to Default(), which
// reproduces the emulator's canonical single-guild seed.
//
// Environment variables referenced as ${VAR_NAME} are expanded before
// parsing, so secrets and per-host addresses can stay out of the file.
package config
