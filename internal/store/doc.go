// Package store owns the emulator's entities: guilds, channels, and messages.
//
// # Data model
//
// Guilds and their channels are loaded once from seed configuration and are
// immutable for the life of the process. Messages are created, edited, and
// deleted through the REST surface; they are keyed by (channel id, message
// id) and reference seeded channels only.
//
// # Errors
//
// Lookups fail with one of three sentinels (ErrUnknownGuild,
// ErrUnknownChannel, ErrUnknownMessage), which HTTP handlers translate to
// 404 responses with the matching human-readable wire message.
//
// # Concurrency
//
// A single sync.RWMutex guards all message mutation. Every operation is a
// total replacement of a map entry, so the lock is held only briefly and no
// reader can observe a partially applied edit. Failed operations leave the
// store unchanged.
package store
