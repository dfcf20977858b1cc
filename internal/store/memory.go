// ABOUTME: In-memory entity store seeded with static guilds and channels
// ABOUTME: Single mutation lock; message maps keyed by (channel id, message id)

package store

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/mcburgertron/schrodinger-db/internal/config"
)

// MemoryStore holds all emulator entities in process memory. Guilds and
// channels are immutable after construction; messages are guarded by a
// single read-write lock so no reader ever observes a half-applied edit.
type MemoryStore struct {
	guilds   []Guild            // seed order, immutable
	channels map[string]Channel // channel id -> channel, immutable

	mu       sync.RWMutex
	messages map[string]map[string]Message // channel id -> message id -> message
	order    map[string][]string           // channel id -> message ids in insertion order
}

// NewMemoryStore builds a store from seed configuration. The seed is assumed
// to have passed config validation (unique guild and channel ids); a
// duplicate here is a programming error and is reported as one.
func NewMemoryStore(seed config.SeedConfig) (*MemoryStore, error) {
	s := &MemoryStore{
		guilds:   make([]Guild, 0, len(seed.Guilds)),
		channels: make(map[string]Channel),
		messages: make(map[string]map[string]Message),
		order:    make(map[string][]string),
	}

	for _, sg := range seed.Guilds {
		guild := Guild{
			ID:       sg.ID,
			Name:     sg.Name,
			Channels: make([]Channel, 0, len(sg.Channels)),
		}
		for _, sc := range sg.Channels {
			if _, exists := s.channels[sc.ID]; exists {
				return nil, fmt.Errorf("seed channel id %q used more than once", sc.ID)
			}
			ch := Channel{ID: sc.ID, Name: sc.Name, Type: sc.Type}
			s.channels[sc.ID] = ch
			guild.Channels = append(guild.Channels, ch)
		}
		s.guilds = append(s.guilds, guild)
	}

	return s, nil
}

// Guilds returns all seeded guilds in seed order.
func (s *MemoryStore) Guilds() []Guild {
	out := make([]Guild, len(s.guilds))
	copy(out, s.guilds)
	return out
}

// ListChannels returns the ordered channels of a guild.
// Returns ErrUnknownGuild if no guild has the given id.
func (s *MemoryStore) ListChannels(guildID string) ([]Channel, error) {
	for _, g := range s.guilds {
		if g.ID == guildID {
			out := make([]Channel, len(g.Channels))
			copy(out, g.Channels)
			return out, nil
		}
	}
	return nil, ErrUnknownGuild
}

// HasChannel reports whether a channel with the given id was seeded.
func (s *MemoryStore) HasChannel(channelID string) bool {
	_, ok := s.channels[channelID]
	return ok
}

// CreateMessage stores a new message in the given channel and returns the
// stored record. Returns ErrUnknownChannel if the channel was not seeded.
func (s *MemoryStore) CreateMessage(channelID, content string) (Message, error) {
	if !s.HasChannel(channelID) {
		return Message{}, ErrUnknownChannel
	}

	msg := Message{
		ID:        uuid.New().String(),
		ChannelID: channelID,
		Content:   content,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.messages[channelID] == nil {
		s.messages[channelID] = make(map[string]Message)
	}
	s.messages[channelID][msg.ID] = msg
	s.order[channelID] = append(s.order[channelID], msg.ID)

	return msg, nil
}

// EditMessage replaces a message's content in place and returns the updated
// record. Returns ErrUnknownMessage if the channel holds no such message.
func (s *MemoryStore) EditMessage(channelID, messageID, content string) (Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg, ok := s.messages[channelID][messageID]
	if !ok {
		return Message{}, ErrUnknownMessage
	}

	msg.Content = content
	s.messages[channelID][messageID] = msg
	return msg, nil
}

// DeleteMessage removes a message permanently.
// Returns ErrUnknownMessage if the channel holds no such message.
func (s *MemoryStore) DeleteMessage(channelID, messageID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.messages[channelID][messageID]; !ok {
		return ErrUnknownMessage
	}

	delete(s.messages[channelID], messageID)

	ids := s.order[channelID]
	for i, id := range ids {
		if id == messageID {
			s.order[channelID] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	return nil
}

// ListMessages returns a channel's messages in insertion order. An unknown
// or empty channel yields an empty slice; reads never fail.
func (s *MemoryStore) ListMessages(channelID string) []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.order[channelID]
	out := make([]Message, 0, len(ids))
	for _, id := range ids {
		if msg, ok := s.messages[channelID][id]; ok {
			out = append(out, msg)
		}
	}
	return out
}
