package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	sberrors "git.home.luguber.info/inful/sitebuilder/internal/errors"
)

// siteEventView is the admin wire shape for one logged event.
type siteEventView struct {
	ID        int64           `json:"id"`
	SiteID    string          `json:"site_id"`
	Type      string          `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// Sites handles GET /sites: the event-log projection of every known site.
func (h *PipelineHandlers) Sites(w http.ResponseWriter, r *http.Request) {
	_ = writeJSONPretty(w, r, http.StatusOK, h.pipeline.Summaries())
}

// SiteEvents handles GET /sites/{id}/events.
func (h *PipelineHandlers) SiteEvents(w http.ResponseWriter, r *http.Request) {
	siteID := r.PathValue("id")
	events, err := h.pipeline.SiteEvents(r.Context(), siteID)
	if err != nil {
		h.adapter.WriteErrorResponse(w, r, err)
		return
	}

	views := make([]siteEventView, 0, len(events))
	for _, ev := range events {
		views = append(views, siteEventView{
			ID:        ev.ID(),
			SiteID:    ev.SiteID(),
			Type:      ev.Type(),
			Timestamp: ev.Timestamp(),
			Payload:   json.RawMessage(ev.Payload()),
		})
	}
	_ = writeJSONPretty(w, r, http.StatusOK, views)
}

// Audit handles GET /audit?site=<name>: link and placeholder audit of the
// stored pages.
func (h *PipelineHandlers) Audit(w http.ResponseWriter, r *http.Request) {
	report, err := h.pipeline.Audit(r.URL.Query().Get("site"))
	if err != nil {
		h.adapter.WriteErrorResponse(w, r, err)
		return
	}
	if report == nil {
		h.adapter.WriteErrorResponse(w, r, sberrors.PageNotFound("index.html"))
		return
	}
	_ = writeJSONPretty(w, r, http.StatusOK, report)
}
