package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"git.home.luguber.info/inful/sitebuilder/internal/assembler"
	"git.home.luguber.info/inful/sitebuilder/internal/assets"
	"git.home.luguber.info/inful/sitebuilder/internal/config"
	sberrors "git.home.luguber.info/inful/sitebuilder/internal/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/eventstore"
	"git.home.luguber.info/inful/sitebuilder/internal/linkverify"
	"git.home.luguber.info/inful/sitebuilder/internal/site"
)

type fakePipeline struct {
	generateErr  error
	deployErr    error
	lastSite     string
	lastDelivery site.Delivery
	bootstrapped *site.GenerationPackage
}

func (f *fakePipeline) Generate(_ context.Context, req assembler.Request) (*site.GenerationPackage, error) {
	if f.generateErr != nil {
		return nil, f.generateErr
	}
	return &site.GenerationPackage{
		Pages:              []site.Page{{Filename: "index.html", Body: "<html></html>"}},
		ImagesNeeded:       []site.ImageRequest{{ID: site.HeroAssetID, Description: "hero"}},
		VoiceScriptsNeeded: []site.VoiceRequest{{ID: site.NarrationAssetID, Script: "hi"}},
		CallbackURL:        "http://localhost:9000/submit-assets",
	}, nil
}

func (f *fakePipeline) Bootstrap(_ context.Context, siteName string, pkg *site.GenerationPackage) (int, error) {
	f.lastSite = siteName
	f.bootstrapped = pkg
	return len(pkg.Pages), nil
}

func (f *fakePipeline) SubmitAssets(_ context.Context, siteName string, delivery site.Delivery) (*assets.Report, bool, error) {
	f.lastSite = siteName
	f.lastDelivery = delivery
	saved := make([]string, 0, len(delivery.Images))
	for _, it := range delivery.Images {
		saved = append(saved, it.ID)
	}
	return &assets.Report{
		SavedImages:          saved,
		PlaceholdersResolved: len(saved),
		State:                site.StatePartiallyResolved,
	}, false, nil
}

func (f *fakePipeline) Deploy(_ context.Context, siteName string) (string, error) {
	if f.deployErr != nil {
		return "", f.deployErr
	}
	f.lastSite = siteName
	return "/srv/site", nil
}

func (f *fakePipeline) Audit(string) (*linkverify.Report, error) {
	return &linkverify.Report{}, nil
}

func (f *fakePipeline) Summaries() []eventstore.SiteSummary {
	return []eventstore.SiteSummary{{SiteID: "acme", State: "published"}}
}

func (f *fakePipeline) SiteEvents(context.Context, string) ([]eventstore.Event, error) {
	return []eventstore.Event{&eventstore.BaseEvent{
		EventID: 1, EventSiteID: "acme", EventType: eventstore.TypeSiteGenerated,
		EventTimestamp: time.Now(), EventPayload: []byte(`{"pages":5}`),
	}}, nil
}

func (f *fakePipeline) StartTime() time.Time { return time.Now().Add(-time.Minute) }
func (f *fakePipeline) Version() string      { return "test" }

func newTestServer(fp *fakePipeline) *Server {
	cfg := config.Default()
	return New(cfg, fp, Options{})
}

func TestGenerateWebsiteEndpoint(t *testing.T) {
	fp := &fakePipeline{}
	srv := newTestServer(fp)

	body := `{"business_name":"Acme","website_type":"gym","sections_required":["About"]}`
	req := httptest.NewRequest(http.MethodPost, "/generate-website", strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.APIHandler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var pkg site.GenerationPackage
	if err := json.Unmarshal(rec.Body.Bytes(), &pkg); err != nil {
		t.Fatal(err)
	}
	if len(pkg.Pages) != 1 || pkg.CallbackURL == "" {
		t.Errorf("unexpected package: %+v", pkg)
	}
}

func TestGenerateWebsiteValidationError(t *testing.T) {
	fp := &fakePipeline{generateErr: sberrors.ValidationFailed("sections", "collision")}
	srv := newTestServer(fp)

	req := httptest.NewRequest(http.MethodPost, "/generate-website", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	srv.APIHandler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status %d, want 400", rec.Code)
	}
}

func TestBootstrapEndpoint(t *testing.T) {
	fp := &fakePipeline{}
	srv := newTestServer(fp)

	body := `{"site":"acme","pages":[{"filename":"index.html","html_file":"<html></html>"}],
		"images_needed":[{"id":"home_hero","description":"x"}],
		"voice_scripts_needed":[{"id":"site_intro","script":"x"}],
		"callback_url_for_assets":"http://cb/submit-assets"}`
	req := httptest.NewRequest(http.MethodPost, "/bootstrap", strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.APIHandler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	if fp.lastSite != "acme" {
		t.Errorf("site: %q", fp.lastSite)
	}
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp["status"] != "bootstrapped" {
		t.Errorf("status field: %v", resp["status"])
	}
	if resp["callback_url_for_assets"] != "http://cb/submit-assets" {
		t.Errorf("callback echo: %v", resp["callback_url_for_assets"])
	}
}

func TestBootstrapRequiresPages(t *testing.T) {
	srv := newTestServer(&fakePipeline{})
	req := httptest.NewRequest(http.MethodPost, "/bootstrap", strings.NewReader(`{"pages":[]}`))
	rec := httptest.NewRecorder()
	srv.APIHandler().ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status %d, want 400", rec.Code)
	}
}

func TestSubmitAssetsJSON(t *testing.T) {
	fp := &fakePipeline{}
	srv := newTestServer(fp)

	body := `{"site":"acme","images":[{"id":"home_hero","file_url":"http://cdn/hero.png"}],
		"voices":[{"id":"site_intro","file_url":"http://cdn/intro.mp3"}]}`
	req := httptest.NewRequest(http.MethodPost, "/submit-assets", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.APIHandler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	if len(fp.lastDelivery.Images) != 1 || fp.lastDelivery.Images[0].FileURL != "http://cdn/hero.png" {
		t.Errorf("delivery: %+v", fp.lastDelivery)
	}
	if len(fp.lastDelivery.Voices) != 1 {
		t.Errorf("voices: %+v", fp.lastDelivery.Voices)
	}
}

func TestSubmitAssetsMultipart(t *testing.T) {
	fp := &fakePipeline{}
	srv := newTestServer(fp)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("site", "acme"); err != nil {
		t.Fatal(err)
	}
	fw, err := mw.CreateFormFile("image:home_hero", "hero.png")
	if err != nil {
		t.Fatal(err)
	}
	_, _ = fw.Write([]byte{0x89, 'P', 'N', 'G'})
	vw, err := mw.CreateFormFile("voice:site_intro", "intro.mp3")
	if err != nil {
		t.Fatal(err)
	}
	_, _ = vw.Write([]byte("ID3"))
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/submit-assets", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	srv.APIHandler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	if fp.lastSite != "acme" {
		t.Errorf("site: %q", fp.lastSite)
	}
	if len(fp.lastDelivery.Images) != 1 || fp.lastDelivery.Images[0].ID != "home_hero" {
		t.Fatalf("images: %+v", fp.lastDelivery.Images)
	}
	if len(fp.lastDelivery.Images[0].Data) == 0 {
		t.Error("multipart image bytes missing")
	}
	if len(fp.lastDelivery.Voices) != 1 || fp.lastDelivery.Voices[0].ID != "site_intro" {
		t.Errorf("voices: %+v", fp.lastDelivery.Voices)
	}
}

func TestSubmitAssetsEmptyDeliveryRejected(t *testing.T) {
	srv := newTestServer(&fakePipeline{})
	req := httptest.NewRequest(http.MethodPost, "/submit-assets", strings.NewReader(`{"images":[],"voices":[]}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.APIHandler().ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status %d, want 400", rec.Code)
	}
}

func TestDeployEndpoint(t *testing.T) {
	fp := &fakePipeline{}
	srv := newTestServer(fp)

	req := httptest.NewRequest(http.MethodPost, "/deploy", nil)
	rec := httptest.NewRecorder()
	srv.APIHandler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp["status"] != "deployed" || resp["dir"] != "/srv/site" {
		t.Errorf("response: %v", resp)
	}
}

func TestDeployFailureMapsTo502(t *testing.T) {
	fp := &fakePipeline{deployErr: sberrors.PublishFailed("/srv/site", context.DeadlineExceeded)}
	srv := newTestServer(fp)

	req := httptest.NewRequest(http.MethodPost, "/deploy", nil)
	rec := httptest.NewRecorder()
	srv.APIHandler().ServeHTTP(rec, req)
	if rec.Code != http.StatusBadGateway {
		t.Errorf("status %d, want 502", rec.Code)
	}
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(&fakePipeline{})
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.APIHandler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp["status"] != "ok" {
		t.Errorf("health: %v", resp)
	}
}

func TestAdminSitesAndEvents(t *testing.T) {
	srv := newTestServer(&fakePipeline{})

	rec := httptest.NewRecorder()
	srv.AdminHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sites", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "acme") {
		t.Errorf("sites: %d %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	srv.AdminHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sites/acme/events", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), eventstore.TypeSiteGenerated) {
		t.Errorf("events: %d %s", rec.Code, rec.Body.String())
	}
}

func TestMethodNotAllowed(t *testing.T) {
	srv := newTestServer(&fakePipeline{})
	rec := httptest.NewRecorder()
	srv.APIHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/generate-website", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status %d, want 405", rec.Code)
	}
}
