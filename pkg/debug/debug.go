// Package debug exposes a local, read-only inspection surface for the
// simulator: health, stats, conversation listings and prometheus metrics.
// It is not a chat transport; there are no write routes.
package debug

import (
	"encoding/json"
	"net/http"

	"github.com/dustin/go-humanize"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"chatsim/pkg/config"
	"chatsim/pkg/models"
	"chatsim/pkg/store"
)

// Sizer reports the on-disk size of the persistence backend.
type Sizer interface {
	DiskSize() uint64
}

// Handler returns the debug router over the given store. sizer may be nil
// when the store is purely in-memory.
func Handler(s *store.Store, sizer Sizer, cfg config.StorageConfig) http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		jsonWrite(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	r.HandleFunc("/stats", func(w http.ResponseWriter, _ *http.Request) {
		convs := s.Conversations()
		msgs := 0
		for _, c := range convs {
			msgs += len(c.Messages)
		}
		out := map[string]any{
			"contacts":      len(s.Contacts()),
			"conversations": len(convs),
			"messages":      msgs,
		}
		if sizer != nil {
			sz := sizer.DiskSize()
			out["disk_size"] = humanize.Bytes(sz)
			if warn := cfg.WarnSize.Int64(); warn > 0 && int64(sz) > warn {
				out["disk_warning"] = true
			}
		}
		jsonWrite(w, http.StatusOK, out)
	}).Methods(http.MethodGet)

	r.HandleFunc("/contacts", func(w http.ResponseWriter, _ *http.Request) {
		jsonWrite(w, http.StatusOK, s.Contacts())
	}).Methods(http.MethodGet)

	r.HandleFunc("/conversations", func(w http.ResponseWriter, _ *http.Request) {
		convs := s.Conversations()
		out := make([]map[string]any, 0, len(convs))
		for _, c := range convs {
			out = append(out, map[string]any{
				"id":       c.ID,
				"kind":     c.Kind,
				"name":     c.Name,
				"messages": len(c.Messages),
			})
		}
		jsonWrite(w, http.StatusOK, out)
	}).Methods(http.MethodGet)

	r.HandleFunc("/conversations/{id}/messages", func(w http.ResponseWriter, req *http.Request) {
		id := mux.Vars(req)["id"]
		conv, err := s.Conversation(id)
		if err != nil {
			jsonError(w, http.StatusNotFound, "conversation not found")
			return
		}
		jsonWrite(w, http.StatusOK, renderMessages(conv))
	}).Methods(http.MethodGet)

	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	return r
}

// renderMessages shapes the read model for display: per-message sender and
// sequence plus aggregated reaction totals, so an external renderer can
// group consecutive same-sender runs without reaching into the store.
func renderMessages(conv models.Conversation) []map[string]any {
	out := make([]map[string]any, 0, len(conv.Messages))
	for _, m := range conv.Messages {
		entry := map[string]any{
			"id":     m.ID,
			"sender": m.Sender,
			"text":   m.Text,
			"ts":     m.TS,
		}
		if m.Edited {
			entry["edited"] = true
		}
		if m.Attachment != nil {
			entry["attachment"] = m.Attachment
		}
		if m.ReplyTo != nil {
			entry["reply_to"] = m.ReplyTo
		}
		if len(m.SeenBy) > 0 {
			entry["seen_by"] = m.SeenBy
		}
		if len(m.Reactions) > 0 {
			entry["reaction_totals"] = models.ReactionTotals(m.Reactions)
		}
		out = append(out, entry)
	}
	return out
}

// jsonWrite writes the provided value as JSON with the given status code.
func jsonWrite(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		w.WriteHeader(status)
	}
	_ = json.NewEncoder(w).Encode(v)
}

// jsonError writes a JSON error response with the given status code.
func jsonError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
