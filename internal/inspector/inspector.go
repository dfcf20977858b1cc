// ABOUTME: Read-only HTML console over the emulator's in-memory state
// ABOUTME: Renders a markdown state report through goldmark into a page shell

package inspector

import (
	"bytes"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/mcburgertron/schrodinger-db/internal/store"
)

// markdown renders the state reports; tables need the GFM table extension.
var markdown = goldmark.New(goldmark.WithExtensions(extension.Table))

// StateReader is the slice of store behavior the inspector needs.
type StateReader interface {
	Guilds() []store.Guild
	ListMessages(channelID string) []store.Message
}

// Inspector serves a browser view of the seeded entities and stored
// messages. It holds no state of its own and never mutates the store.
type Inspector struct {
	state  StateReader
	logger *slog.Logger
}

// New creates an inspector over the given state. Pass nil for a default logger.
func New(state StateReader, logger *slog.Logger) *Inspector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Inspector{
		state:  state,
		logger: logger.With("component", "inspector"),
	}
}

// RegisterRoutes registers the inspector pages on the mux.
func (i *Inspector) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /inspect", i.handleOverview)
	mux.HandleFunc("GET /inspect/channels/{channel_id}", i.handleChannel)
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: monospace; max-width: 60rem; margin: 2rem auto; padding: 0 1rem; }
table { border-collapse: collapse; }
th, td { border: 1px solid #ccc; padding: 0.25rem 0.75rem; text-align: left; }
</style>
</head>
<body>
{{.Body}}
</body>
</html>
`))

type pageData struct {
	Title string
	Body  template.HTML
}

// handleOverview renders guilds, their channels, and per-channel message
// counts.
func (i *Inspector) handleOverview(w http.ResponseWriter, r *http.Request) {
	var md strings.Builder
	md.WriteString("# Emulator State\n\n")

	guilds := i.state.Guilds()
	if len(guilds) == 0 {
		md.WriteString("No guilds seeded.\n")
	}
	for _, g := range guilds {
		fmt.Fprintf(&md, "## Guild %s (%s)\n\n", g.Name, g.ID)
		md.WriteString("| Channel | ID | Type | Messages |\n")
		md.WriteString("| --- | --- | --- | --- |\n")
		for _, ch := range g.Channels {
			count := len(i.state.ListMessages(ch.ID))
			fmt.Fprintf(&md, "| [%s](/inspect/channels/%s) | %s | %d | %d |\n",
				ch.Name, ch.ID, ch.ID, ch.Type, count)
		}
		md.WriteString("\n")
	}

	i.render(w, "Emulator State", md.String())
}

// handleChannel renders one channel's messages in insertion order.
func (i *Inspector) handleChannel(w http.ResponseWriter, r *http.Request) {
	channelID := r.PathValue("channel_id")
	channel, ok := i.findChannel(channelID)
	if !ok {
		http.Error(w, "unknown channel", http.StatusNotFound)
		return
	}

	var md strings.Builder
	fmt.Fprintf(&md, "# Channel %s (%s)\n\n", channel.Name, channel.ID)
	md.WriteString("[Back to overview](/inspect)\n\n")

	messages := i.state.ListMessages(channelID)
	if len(messages) == 0 {
		md.WriteString("No messages.\n")
	} else {
		md.WriteString("| ID | Content |\n")
		md.WriteString("| --- | --- |\n")
		for _, msg := range messages {
			fmt.Fprintf(&md, "| %s | %s |\n", msg.ID, escapeCell(msg.Content))
		}
	}

	i.render(w, "Channel "+channel.Name, md.String())
}

// findChannel looks a channel up across all guilds.
func (i *Inspector) findChannel(channelID string) (store.Channel, bool) {
	for _, g := range i.state.Guilds() {
		for _, ch := range g.Channels {
			if ch.ID == channelID {
				return ch, true
			}
		}
	}
	return store.Channel{}, false
}

// escapeCell keeps user content from breaking the markdown table.
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	return strings.ReplaceAll(s, "\n", " ")
}

// render converts the markdown report to HTML and wraps it in the page shell.
func (i *Inspector) render(w http.ResponseWriter, title, report string) {
	var htmlBuf bytes.Buffer
	if err := markdown.Convert([]byte(report), &htmlBuf); err != nil {
		i.logger.Error("failed to convert markdown", "error", err)
		htmlBuf.Reset()
		htmlBuf.WriteString("<p>Failed to render state report.</p>")
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := pageTemplate.Execute(w, pageData{
		Title: title,
		Body:  template.HTML(htmlBuf.String()),
	})
	if err != nil {
		i.logger.Error("failed to render page", "error", err)
	}
}
