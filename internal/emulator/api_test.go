// ABOUTME: Tests for the v10 REST surface: routes, error bodies, rate headers
// ABOUTME: Drives the full mux through httptest recorders, no sockets involved

package emulator

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcburgertron/schrodinger-db/internal/config"
	"github.com/mcburgertron/schrodinger-db/internal/store"
)

func newTestEmulator(t *testing.T, mutate func(*config.Config)) *Emulator {
	t.Helper()
	cfg := config.Default()
	if mutate != nil {
		mutate(cfg)
	}
	emu, err := New(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return emu
}

func doRequest(t *testing.T, emu *Emulator, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	rec := httptest.NewRecorder()
	emu.Handler().ServeHTTP(rec, httptest.NewRequest(method, path, reader))
	return rec
}

func assertRateHeaders(t *testing.T, rec *httptest.ResponseRecorder) {
	t.Helper()
	assert.Equal(t, "emulator", rec.Header().Get("X-RateLimit-Bucket"))
	assert.Equal(t, "5", rec.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "5", rec.Header().Get("X-RateLimit-Remaining"))
}

func TestHealthEndpoint(t *testing.T) {
	emu := newTestEmulator(t, nil)
	rec := doRequest(t, emu, http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestListChannels(t *testing.T) {
	emu := newTestEmulator(t, nil)
	rec := doRequest(t, emu, http.MethodGet, "/api/v10/guilds/1/channels", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assertRateHeaders(t, rec)

	var channels []store.Channel
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &channels))
	require.Len(t, channels, 1)
	assert.Equal(t, store.Channel{ID: "10", Name: "general", Type: 0}, channels[0])
}

func TestListChannelsUnknownGuild(t *testing.T) {
	emu := newTestEmulator(t, nil)
	rec := doRequest(t, emu, http.MethodGet, "/api/v10/guilds/999/channels", "")

	require.Equal(t, http.StatusNotFound, rec.Code)
	assertRateHeaders(t, rec)
	assert.JSONEq(t, `{"message":"Unknown Guild"}`, rec.Body.String())
}

func TestCreateMessage(t *testing.T) {
	emu := newTestEmulator(t, nil)
	rec := doRequest(t, emu, http.MethodPost, "/api/v10/channels/10/messages", `{"content":"hello"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assertRateHeaders(t, rec)

	var msg store.Message
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &msg))
	assert.NotEmpty(t, msg.ID)
	assert.Equal(t, "10", msg.ChannelID)
	assert.Equal(t, "hello", msg.Content)
}

func TestCreateMessageWithoutContentDefaultsToEmpty(t *testing.T) {
	emu := newTestEmulator(t, nil)
	rec := doRequest(t, emu, http.MethodPost, "/api/v10/channels/10/messages", `{}`)

	require.Equal(t, http.StatusOK, rec.Code)

	var msg store.Message
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &msg))
	assert.Equal(t, "", msg.Content)
}

func TestCreateMessageUnknownChannel(t *testing.T) {
	emu := newTestEmulator(t, nil)
	rec := doRequest(t, emu, http.MethodPost, "/api/v10/channels/999/messages", `{"content":"lost"}`)

	require.Equal(t, http.StatusNotFound, rec.Code)
	assertRateHeaders(t, rec)
	assert.JSONEq(t, `{"message":"Unknown Channel"}`, rec.Body.String())
	assert.Empty(t, emu.store.ListMessages("999"))
}

func TestEditMessage(t *testing.T) {
	emu := newTestEmulator(t, nil)

	created, err := emu.store.CreateMessage("10", "before")
	require.NoError(t, err)

	rec := doRequest(t, emu, http.MethodPatch,
		"/api/v10/channels/10/messages/"+created.ID, `{"content":"after"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var msg store.Message
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &msg))
	assert.Equal(t, created.ID, msg.ID)
	assert.Equal(t, "after", msg.Content)
}

func TestEditMessageUnknownMessage(t *testing.T) {
	emu := newTestEmulator(t, nil)
	rec := doRequest(t, emu, http.MethodPatch, "/api/v10/channels/10/messages/nope", `{"content":"x"}`)

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"message":"Unknown Message"}`, rec.Body.String())
}

func TestDeleteMessage(t *testing.T) {
	emu := newTestEmulator(t, nil)

	created, err := emu.store.CreateMessage("10", "doomed")
	require.NoError(t, err)

	rec := doRequest(t, emu, http.MethodDelete, "/api/v10/channels/10/messages/"+created.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{}`, rec.Body.String())

	rec = doRequest(t, emu, http.MethodDelete, "/api/v10/channels/10/messages/"+created.ID, "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"message":"Unknown Message"}`, rec.Body.String())
}

func TestInteractionEchoesPayload(t *testing.T) {
	emu := newTestEmulator(t, nil)
	rec := doRequest(t, emu, http.MethodPost, "/api/v10/interactions",
		`{"name":"ping","options":[{"value":1}]}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assertRateHeaders(t, rec)
	assert.JSONEq(t, `{"type":4,"data":{"name":"ping","options":[{"value":1}]}}`, rec.Body.String())
}

func TestInteractionWithMalformedBody(t *testing.T) {
	emu := newTestEmulator(t, nil)
	rec := doRequest(t, emu, http.MethodPost, "/api/v10/interactions", `{not json`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"type":4,"data":null}`, rec.Body.String())
}

func TestWebhookCreatesMessage(t *testing.T) {
	emu := newTestEmulator(t, nil)
	rec := doRequest(t, emu, http.MethodPost, "/api/v10/webhooks/123/secret-token",
		`{"channel_id":"10","content":"via webhook"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assertRateHeaders(t, rec)

	var msg store.Message
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &msg))
	assert.Equal(t, "10", msg.ChannelID)
	assert.Equal(t, "via webhook", msg.Content)

	stored := emu.store.ListMessages("10")
	require.Len(t, stored, 1)
	assert.Equal(t, msg, stored[0])
}

func TestWebhookWithoutChannelIs404(t *testing.T) {
	emu := newTestEmulator(t, nil)
	rec := doRequest(t, emu, http.MethodPost, "/api/v10/webhooks/123/secret-token",
		`{"content":"nowhere"}`)

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"message":"Unknown Channel"}`, rec.Body.String())
}

func TestMetricsEndpointWhenEnabled(t *testing.T) {
	emu := newTestEmulator(t, func(cfg *config.Config) {
		cfg.Metrics.Enabled = true
	})

	doRequest(t, emu, http.MethodGet, "/api/v10/guilds/1/channels", "")

	rec := doRequest(t, emu, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "discordemu_http_requests_total")
}

func TestMetricsEndpointAbsentWhenDisabled(t *testing.T) {
	emu := newTestEmulator(t, nil)
	rec := doRequest(t, emu, http.MethodGet, "/metrics", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestInspectorRoutesWhenEnabled(t *testing.T) {
	emu := newTestEmulator(t, func(cfg *config.Config) {
		cfg.Inspector.Enabled = true
	})

	rec := doRequest(t, emu, http.MethodGet, "/inspect", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Test Guild")
}
