// Package inspector serves a read-only browser console over the emulator's
// in-memory state: seeded guilds and channels, plus the messages created
// through the REST surface. It is disabled by default and enabled via the
// inspector.enabled config flag.
package inspector
