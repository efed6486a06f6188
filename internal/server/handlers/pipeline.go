package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"git.home.luguber.info/inful/sitebuilder/internal/assembler"
	"git.home.luguber.info/inful/sitebuilder/internal/assets"
	sberrors "git.home.luguber.info/inful/sitebuilder/internal/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/eventstore"
	"git.home.luguber.info/inful/sitebuilder/internal/linkverify"
	"git.home.luguber.info/inful/sitebuilder/internal/server/responses"
	"git.home.luguber.info/inful/sitebuilder/internal/site"
)

const (
	maxJSONBody      = 16 << 20
	maxMultipartBody = 128 << 20
)

// Pipeline is the runtime surface the HTTP handlers drive. The serve-mode
// runtime implements it; tests substitute fakes.
type Pipeline interface {
	Generate(ctx context.Context, req assembler.Request) (*site.GenerationPackage, error)
	Bootstrap(ctx context.Context, siteName string, pkg *site.GenerationPackage) (int, error)
	SubmitAssets(ctx context.Context, siteName string, delivery site.Delivery) (*assets.Report, bool, error)
	Deploy(ctx context.Context, siteName string) (string, error)
	Audit(siteName string) (*linkverify.Report, error)
	Summaries() []eventstore.SiteSummary
	SiteEvents(ctx context.Context, siteID string) ([]eventstore.Event, error)
	StartTime() time.Time
	Version() string
}

// PipelineHandlers exposes the site pipeline over HTTP.
type PipelineHandlers struct {
	pipeline Pipeline
	adapter  *sberrors.HTTPErrorAdapter
	log      *slog.Logger
}

func NewPipelineHandlers(pipeline Pipeline, adapter *sberrors.HTTPErrorAdapter, logger *slog.Logger) *PipelineHandlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &PipelineHandlers{pipeline: pipeline, adapter: adapter, log: logger}
}

// GenerateWebsite handles POST /generate-website. The response body is the
// full generation package.
func (h *PipelineHandlers) GenerateWebsite(w http.ResponseWriter, r *http.Request) {
	var req assembler.Request
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		h.adapter.WriteErrorResponse(w, r, err)
		return
	}

	pkg, err := h.pipeline.Generate(r.Context(), req)
	if err != nil {
		h.adapter.WriteErrorResponse(w, r, err)
		return
	}
	_ = writeJSONPretty(w, r, http.StatusOK, pkg)
}

type bootstrapRequest struct {
	Site string `json:"site,omitempty"`
	site.GenerationPackage
}

// Bootstrap handles POST /bootstrap: write the package's pages to disk and
// echo the outstanding asset requests.
func (h *PipelineHandlers) Bootstrap(w http.ResponseWriter, r *http.Request) {
	var req bootstrapRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		h.adapter.WriteErrorResponse(w, r, err)
		return
	}
	if len(req.Pages) == 0 {
		h.adapter.WriteErrorResponse(w, r, sberrors.ValidationFailed("pages", "at least one page is required"))
		return
	}

	pages, err := h.pipeline.Bootstrap(r.Context(), req.Site, &req.GenerationPackage)
	if err != nil {
		h.adapter.WriteErrorResponse(w, r, err)
		return
	}
	_ = writeJSONPretty(w, r, http.StatusOK, responses.Bootstrap{
		Status:             "bootstrapped",
		Site:               req.Site,
		Pages:              pages,
		ImagesNeeded:       req.ImagesNeeded,
		VoiceScriptsNeeded: req.VoiceScriptsNeeded,
		CallbackURL:        req.CallbackURL,
	})
}

type submitAssetsRequest struct {
	Site   string           `json:"site,omitempty"`
	Images []site.AssetItem `json:"images"`
	Voices []site.AssetItem `json:"voices"`
}

// SubmitAssets handles POST /submit-assets. Two bodies are accepted: JSON
// with per-asset file URLs, or a multipart form with binary file fields
// named "image:<id>" and "voice:<id>".
func (h *PipelineHandlers) SubmitAssets(w http.ResponseWriter, r *http.Request) {
	siteName, delivery, err := h.parseDelivery(r)
	if err != nil {
		h.adapter.WriteErrorResponse(w, r, err)
		return
	}
	if len(delivery.Images) == 0 && len(delivery.Voices) == 0 {
		h.adapter.WriteErrorResponse(w, r, sberrors.ValidationFailed("assets", "delivery contains no assets"))
		return
	}

	report, deployed, err := h.pipeline.SubmitAssets(r.Context(), siteName, delivery)
	if err != nil {
		h.adapter.WriteErrorResponse(w, r, err)
		return
	}
	_ = writeJSONPretty(w, r, http.StatusOK, responses.SubmitAssets{
		Status:               "assets processed",
		Site:                 siteName,
		SavedImages:          report.SavedImages,
		SavedVoices:          report.SavedVoices,
		Failed:               report.Failed,
		PlaceholdersResolved: report.PlaceholdersResolved,
		PlaceholdersLeft:     report.PlaceholdersLeft,
		State:                report.State,
		Deployed:             deployed,
	})
}

func (h *PipelineHandlers) parseDelivery(r *http.Request) (string, site.Delivery, error) {
	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		return parseMultipartDelivery(r)
	}

	var req submitAssetsRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		return "", site.Delivery{}, err
	}
	return req.Site, site.Delivery{Images: req.Images, Voices: req.Voices}, nil
}

func parseMultipartDelivery(r *http.Request) (string, site.Delivery, error) {
	if err := r.ParseMultipartForm(maxMultipartBody); err != nil {
		return "", site.Delivery{}, sberrors.ValidationFailed("body", "invalid multipart form: "+err.Error())
	}

	var delivery site.Delivery
	for field, files := range r.MultipartForm.File {
		kind, id, ok := splitAssetField(field)
		if !ok || len(files) == 0 {
			continue
		}
		f, err := files[0].Open()
		if err != nil {
			return "", site.Delivery{}, sberrors.AssetSaveFailed(id, err)
		}
		data, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			return "", site.Delivery{}, sberrors.AssetSaveFailed(id, err)
		}
		item := site.AssetItem{ID: id, Data: data}
		switch kind {
		case assets.KindImage:
			delivery.Images = append(delivery.Images, item)
		case assets.KindVoice:
			delivery.Voices = append(delivery.Voices, item)
		}
	}
	return r.FormValue("site"), delivery, nil
}

// splitAssetField parses "image:<id>" / "voice:<id>" form field names.
func splitAssetField(field string) (kind, id string, ok bool) {
	kind, id, found := strings.Cut(field, ":")
	if !found || id == "" {
		return "", "", false
	}
	if kind != assets.KindImage && kind != assets.KindVoice {
		return "", "", false
	}
	return kind, id, true
}

type deployRequest struct {
	Site string `json:"site,omitempty"`
}

// Deploy handles POST /deploy. The body is optional; an empty body deploys
// the default site.
func (h *PipelineHandlers) Deploy(w http.ResponseWriter, r *http.Request) {
	var req deployRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		h.adapter.WriteErrorResponse(w, r, err)
		return
	}

	dir, err := h.pipeline.Deploy(r.Context(), req.Site)
	if err != nil {
		h.adapter.WriteErrorResponse(w, r, err)
		return
	}
	_ = writeJSONPretty(w, r, http.StatusOK, responses.Deploy{Status: "deployed", Dir: dir})
}

// Health handles GET /health.
func (h *PipelineHandlers) Health(w http.ResponseWriter, r *http.Request) {
	_ = writeJSON(w, http.StatusOK, responses.Health{
		Status:        "ok",
		Version:       h.pipeline.Version(),
		UptimeSeconds: int64(time.Since(h.pipeline.StartTime()).Seconds()),
	})
}

// decodeJSON reads a JSON request body into v. io.EOF is passed through so
// callers can treat an empty body as "all defaults".
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return err
		}
		return sberrors.ValidationFailed("body", "invalid JSON: "+err.Error())
	}
	return nil
}
