// ABOUTME: Tests for the HTML state console rendering
// ABOUTME: Asserts on rendered fragments rather than full page markup

package inspector

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcburgertron/schrodinger-db/internal/config"
	"github.com/mcburgertron/schrodinger-db/internal/store"
)

func seededStore(t *testing.T) *store.MemoryStore {
	t.Helper()
	s, err := store.NewMemoryStore(config.SeedConfig{
		Guilds: []config.SeedGuild{
			{
				ID:   "1",
				Name: "Test Guild",
				Channels: []config.SeedChannel{
					{ID: "10", Name: "general", Type: 0},
					{ID: "11", Name: "random", Type: 0},
				},
			},
		},
	})
	require.NoError(t, err)
	return s
}

func inspectorMux(t *testing.T, s *store.MemoryStore) *http.ServeMux {
	t.Helper()
	mux := http.NewServeMux()
	New(s, nil).RegisterRoutes(mux)
	return mux
}

func TestOverviewListsGuildsAndChannels(t *testing.T) {
	s := seededStore(t)
	_, err := s.CreateMessage("10", "hello")
	require.NoError(t, err)

	mux := inspectorMux(t, s)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/inspect", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))

	body := rec.Body.String()
	assert.Contains(t, body, "Test Guild")
	assert.Contains(t, body, "general")
	assert.Contains(t, body, "random")
	assert.Contains(t, body, `href="/inspect/channels/10"`)
}

func TestChannelViewShowsMessagesInOrder(t *testing.T) {
	s := seededStore(t)
	first, err := s.CreateMessage("10", "first message")
	require.NoError(t, err)
	second, err := s.CreateMessage("10", "second message")
	require.NoError(t, err)

	mux := inspectorMux(t, s)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/inspect/channels/10", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, first.ID)
	assert.Contains(t, body, second.ID)
	assert.Less(t, strings.Index(body, "first message"), strings.Index(body, "second message"))
}

func TestChannelViewUnknownChannelIs404(t *testing.T) {
	mux := inspectorMux(t, seededStore(t))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/inspect/channels/999", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestChannelViewEscapesTableBreakingContent(t *testing.T) {
	s := seededStore(t)
	_, err := s.CreateMessage("10", "a|b\nc")
	require.NoError(t, err)

	mux := inspectorMux(t, s)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/inspect/channels/10", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "a|b c")
}
