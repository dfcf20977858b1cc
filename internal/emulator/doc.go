// Package emulator wires the whole server together: the seeded in-memory
// store, the websocket gateway, the v10 REST surface, and the optional
// metrics and inspector endpoints, all on a single HTTP listener.
//
// The two protocol halves meet here: REST message creation fans out to every
// ready gateway session as a MESSAGE_CREATE dispatch, which is the only
// coupling between them. Edits and deletes are REST-only and never produce
// gateway traffic.
package emulator
