// ABOUTME: REST API handlers mirroring the chat platform's v10 HTTP surface
// ABOUTME: Message mutations fan out to gateway sessions as dispatch events

package emulator

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/mcburgertron/schrodinger-db/internal/gateway"
	"github.com/mcburgertron/schrodinger-db/internal/store"
)

// Route labels used for request metrics.
const (
	routeListChannels  = "list_channels"
	routeCreateMessage = "create_message"
	routeEditMessage   = "edit_message"
	routeDeleteMessage = "delete_message"
	routeInteraction   = "interaction"
	routeWebhook       = "webhook"
)

// Static rate-limit advertisement. Real platforms vary these per bucket; the
// emulator publishes fixed values and never enforces them, so clients can
// exercise their header parsing without ever being throttled.
const (
	rateLimitBucket = "emulator"
	rateLimitValue  = "5"
)

// MessageRequest is the JSON request body for message create and edit.
// A missing content field is treated as the empty string.
type MessageRequest struct {
	Content string `json:"content"`
}

// WebhookRequest is the JSON request body for webhook execution. The channel
// is carried in the body because the URL identifies only the webhook itself.
type WebhookRequest struct {
	ChannelID string `json:"channel_id"`
	Content   string `json:"content"`
}

// InteractionResponse is the JSON response for POST /api/v10/interactions:
// type 4 (channel message with source) echoing the submitted payload.
type InteractionResponse struct {
	Type int             `json:"type"`
	Data json.RawMessage `json:"data"`
}

// apiError is the JSON error body, matching the platform's wire shape.
type apiError struct {
	Message string `json:"message"`
}

// registerAPIRoutes registers the v10 REST surface on the mux.
func (e *Emulator) registerAPIRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v10/guilds/{guild_id}/channels", e.handleListChannels)
	mux.HandleFunc("POST /api/v10/channels/{channel_id}/messages", e.handleCreateMessage)
	mux.HandleFunc("PATCH /api/v10/channels/{channel_id}/messages/{message_id}", e.handleEditMessage)
	mux.HandleFunc("DELETE /api/v10/channels/{channel_id}/messages/{message_id}", e.handleDeleteMessage)
	mux.HandleFunc("POST /api/v10/interactions", e.handleInteraction)
	mux.HandleFunc("POST /api/v10/webhooks/{application_id}/{token}", e.handleWebhook)
}

// handleListChannels handles GET /api/v10/guilds/{guild_id}/channels.
func (e *Emulator) handleListChannels(w http.ResponseWriter, r *http.Request) {
	channels, err := e.store.ListChannels(r.PathValue("guild_id"))
	if err != nil {
		e.writeStoreError(w, routeListChannels, err)
		return
	}
	e.writeJSON(w, routeListChannels, http.StatusOK, channels)
}

// handleCreateMessage handles POST /api/v10/channels/{channel_id}/messages.
// A stored message is broadcast to every ready gateway session.
func (e *Emulator) handleCreateMessage(w http.ResponseWriter, r *http.Request) {
	var req MessageRequest
	decodeLenient(r, &req)
	e.createAndBroadcast(w, r, routeCreateMessage, r.PathValue("channel_id"), req.Content)
}

// handleWebhook handles POST /api/v10/webhooks/{application_id}/{token}.
// Webhooks are an alternate message-creation entry point: the application id
// and token are accepted but never checked, and the target channel comes from
// the body.
func (e *Emulator) handleWebhook(w http.ResponseWriter, r *http.Request) {
	var req WebhookRequest
	decodeLenient(r, &req)
	e.createAndBroadcast(w, r, routeWebhook, req.ChannelID, req.Content)
}

// createAndBroadcast stores a message, fans it out, and answers with the
// stored record. On an unknown channel nothing is stored or broadcast.
func (e *Emulator) createAndBroadcast(w http.ResponseWriter, r *http.Request, route, channelID, content string) {
	msg, err := e.store.CreateMessage(channelID, content)
	if err != nil {
		e.writeStoreError(w, route, err)
		return
	}
	e.dispatcher.Broadcast(r.Context(), gateway.EventMessageCreate, msg)
	e.writeJSON(w, route, http.StatusOK, msg)
}

// handleEditMessage handles PATCH /api/v10/channels/{channel_id}/messages/{message_id}.
// Edits answer with the updated record and are not broadcast.
func (e *Emulator) handleEditMessage(w http.ResponseWriter, r *http.Request) {
	var req MessageRequest
	decodeLenient(r, &req)

	msg, err := e.store.EditMessage(r.PathValue("channel_id"), r.PathValue("message_id"), req.Content)
	if err != nil {
		e.writeStoreError(w, routeEditMessage, err)
		return
	}
	e.writeJSON(w, routeEditMessage, http.StatusOK, msg)
}

// handleDeleteMessage handles DELETE /api/v10/channels/{channel_id}/messages/{message_id}.
func (e *Emulator) handleDeleteMessage(w http.ResponseWriter, r *http.Request) {
	err := e.store.DeleteMessage(r.PathValue("channel_id"), r.PathValue("message_id"))
	if err != nil {
		e.writeStoreError(w, routeDeleteMessage, err)
		return
	}
	e.writeJSON(w, routeDeleteMessage, http.StatusOK, struct{}{})
}

// handleInteraction handles POST /api/v10/interactions. The emulator
// acknowledges every interaction with type 4 and echoes the payload back, so
// bots can assert on exactly what they sent.
func (e *Emulator) handleInteraction(w http.ResponseWriter, r *http.Request) {
	data := json.RawMessage("null")
	if body, err := io.ReadAll(r.Body); err == nil && json.Valid(body) {
		data = body
	}
	e.writeJSON(w, routeInteraction, http.StatusOK, InteractionResponse{Type: 4, Data: data})
}

// writeStoreError maps store sentinels to the platform's 404 bodies.
func (e *Emulator) writeStoreError(w http.ResponseWriter, route string, err error) {
	switch {
	case errors.Is(err, store.ErrUnknownGuild):
		e.writeJSON(w, route, http.StatusNotFound, apiError{Message: "Unknown Guild"})
	case errors.Is(err, store.ErrUnknownChannel):
		e.writeJSON(w, route, http.StatusNotFound, apiError{Message: "Unknown Channel"})
	case errors.Is(err, store.ErrUnknownMessage):
		e.writeJSON(w, route, http.StatusNotFound, apiError{Message: "Unknown Message"})
	default:
		e.logger.Error("unexpected store error", "route", route, "error", err)
		e.writeJSON(w, route, http.StatusInternalServerError, apiError{Message: "Internal Server Error"})
	}
}

// writeJSON writes a JSON response with the static rate-limit headers and
// records the request metric. Every v10 response, success or error, goes
// through here.
func (e *Emulator) writeJSON(w http.ResponseWriter, route string, status int, v any) {
	h := w.Header()
	h.Set("Content-Type", "application/json")
	h.Set("X-RateLimit-Bucket", rateLimitBucket)
	h.Set("X-RateLimit-Limit", rateLimitValue)
	h.Set("X-RateLimit-Remaining", rateLimitValue)
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		e.logger.Debug("response write failed", "route", route, "error", err)
	}
	e.metrics.HTTPRequest(route, status)
}

// decodeLenient fills v from the request body, tolerating empty or malformed
// JSON. Absent fields keep their zero values.
func decodeLenient(r *http.Request, v any) {
	_ = json.NewDecoder(r.Body).Decode(v)
}
