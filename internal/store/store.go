// ABOUTME: Entity types and error sentinels for the emulator's data model
// ABOUTME: Defines Guild, Channel, Message and the not-found error taxonomy

package store

import "errors"

// ErrUnknownGuild is returned when a requested guild does not exist
var ErrUnknownGuild = errors.New("unknown guild")

// ErrUnknownChannel is returned when a requested channel does not exist
var ErrUnknownChannel = errors.New("unknown channel")

// ErrUnknownMessage is returned when a requested message does not exist
var ErrUnknownMessage = errors.New("unknown message")

// Guild represents a server-side community holding an ordered set of channels.
// Guilds are created from seed data at process start and never mutated.
type Guild struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Channels []Channel `json:"channels"`
}

// Channel represents a text channel owned by exactly one guild.
// Type 0 is a text channel, matching the emulated wire format.
type Channel struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type int    `json:"type"`
}

// Message represents a message posted to a channel. Messages are the only
// mutable entities: content is replaced by edits and records are removed by
// deletes. There is no tombstone and no durability across restarts.
type Message struct {
	ID        string `json:"id"`
	ChannelID string `json:"channel_id"`
	Content   string `json:"content"`
}
