// Package assets downloads delivered asset files into a site and replaces
// the matching placeholder tokens in its pages.
package assets

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	sberrors "git.home.luguber.info/inful/sitebuilder/internal/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/metrics"
	"git.home.luguber.info/inful/sitebuilder/internal/site"
	"git.home.luguber.info/inful/sitebuilder/internal/sitestore"
)

const (
	KindImage = "image"
	KindVoice = "voice"

	defaultConcurrency  = 4
	defaultFetchTimeout = 30 * time.Second
	maxAssetBytes       = 32 << 20
)

// Options configure an Injector.
type Options struct {
	Concurrency  int
	FetchTimeout time.Duration
	HTTPClient   *http.Client
	Recorder     metrics.Recorder
	Logger       *slog.Logger
}

// Injector saves delivered assets and resolves their placeholders. One
// delivery is processed under the site lock: all downloads settle first,
// then a single rewrite pass runs over the pages.
type Injector struct {
	store        *sitestore.Store
	client       *http.Client
	concurrency  int
	fetchTimeout time.Duration
	rec          metrics.Recorder
	log          *slog.Logger
}

// FailedAsset describes one asset that could not be saved.
type FailedAsset struct {
	ID     string `json:"id"`
	Kind   string `json:"kind"`
	Reason string `json:"reason"`
}

// Report summarizes a processed delivery.
type Report struct {
	SavedImages          []string      `json:"saved_images"`
	SavedVoices          []string      `json:"saved_voices"`
	Failed               []FailedAsset `json:"failed,omitempty"`
	PlaceholdersResolved int           `json:"placeholders_resolved"`
	PlaceholdersLeft     int           `json:"placeholders_left"`
	State                site.State    `json:"state"`
}

func NewInjector(store *sitestore.Store, opts Options) *Injector {
	inj := &Injector{
		store:        store,
		client:       opts.HTTPClient,
		concurrency:  opts.Concurrency,
		fetchTimeout: opts.FetchTimeout,
		rec:          opts.Recorder,
		log:          opts.Logger,
	}
	if inj.client == nil {
		inj.client = http.DefaultClient
	}
	if inj.concurrency < 1 {
		inj.concurrency = defaultConcurrency
	}
	if inj.fetchTimeout <= 0 {
		inj.fetchTimeout = defaultFetchTimeout
	}
	if inj.rec == nil {
		inj.rec = metrics.NoopRecorder{}
	}
	if inj.log == nil {
		inj.log = slog.Default()
	}
	inj.rec.SetFetchConcurrency(inj.concurrency)
	return inj
}

type job struct {
	item site.AssetItem
	kind string
	path string
}

// Submit processes one asset delivery for the named site. Individual asset
// failures are reported, never fatal; the rewrite pass resolves only the
// placeholders whose assets were saved.
func (inj *Injector) Submit(ctx context.Context, siteName string, delivery site.Delivery) (*Report, error) {
	unlock := inj.store.Lock(siteName)
	defer unlock()

	jobs := make([]job, 0, len(delivery.Images)+len(delivery.Voices))
	for _, item := range delivery.Images {
		jobs = append(jobs, job{item: item, kind: KindImage, path: site.ImageAssetPath(item.ID)})
	}
	for _, item := range delivery.Voices {
		jobs = append(jobs, job{item: item, kind: KindVoice, path: site.AudioAssetPath(item.ID)})
	}

	report := &Report{}
	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, inj.concurrency)

	for _, j := range jobs {
		wg.Add(1)
		go func(j job) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			err := inj.saveOne(ctx, siteName, j)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				inj.log.Warn("asset not saved",
					logfields.AssetID(j.item.ID), logfields.AssetKind(j.kind), logfields.Error(err))
				report.Failed = append(report.Failed, FailedAsset{ID: j.item.ID, Kind: j.kind, Reason: err.Error()})
				return
			}
			switch j.kind {
			case KindImage:
				report.SavedImages = append(report.SavedImages, j.item.ID)
			case KindVoice:
				report.SavedVoices = append(report.SavedVoices, j.item.ID)
			}
		}(j)
	}
	wg.Wait()

	imageHits, voiceHits, err := inj.resolve(siteName, report.SavedImages, report.SavedVoices)
	if err != nil {
		return report, err
	}
	inj.rec.AddPlaceholdersResolved(KindImage, imageHits)
	inj.rec.AddPlaceholdersResolved(KindVoice, voiceHits)
	report.PlaceholdersResolved = imageHits + voiceHits

	state, left, err := DeriveState(inj.store, siteName)
	if err != nil {
		return report, err
	}
	report.State = state
	report.PlaceholdersLeft = left

	inj.log.Info("asset delivery processed",
		logfields.Site(siteName),
		logfields.Count(report.PlaceholdersResolved),
		logfields.State(string(state)))
	return report, nil
}

// saveOne obtains the asset bytes (inline or by download) and writes them
// into the site directory.
func (inj *Injector) saveOne(ctx context.Context, siteName string, j job) error {
	data := j.item.Data
	if len(data) == 0 {
		var err error
		data, err = inj.fetch(ctx, j.kind, j.item)
		if err != nil {
			return err
		}
	}
	return inj.store.SaveAsset(siteName, j.path, data)
}

func (inj *Injector) fetch(ctx context.Context, kind string, item site.AssetItem) ([]byte, error) {
	if item.FileURL == "" {
		return nil, sberrors.AssetFetchFailed(item.ID, "", fmt.Errorf("no file_url and no inline data"))
	}

	fetchCtx, cancel := context.WithTimeout(ctx, inj.fetchTimeout)
	defer cancel()

	start := time.Now()
	data, err := inj.download(fetchCtx, item.FileURL)
	inj.rec.ObserveAssetFetch(kind, time.Since(start), err == nil)
	if err != nil {
		if fetchCtx.Err() == context.DeadlineExceeded {
			return nil, sberrors.NetworkTimeout(item.FileURL, err)
		}
		return nil, sberrors.AssetFetchFailed(item.ID, item.FileURL, err)
	}
	return data, nil
}

func (inj *Injector) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := inj.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, io.LimitReader(resp.Body, maxAssetBytes)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// resolve runs one rewrite pass replacing the placeholders of the saved
// assets. It returns the number of image and voice tokens replaced.
func (inj *Injector) resolve(siteName string, imageIDs, voiceIDs []string) (imageHits, voiceHits int, err error) {
	if len(imageIDs) == 0 && len(voiceIDs) == 0 {
		return 0, 0, nil
	}
	_, err = inj.store.RewritePages(siteName, func(_, body string) (string, error) {
		for _, id := range imageIDs {
			token := site.ImagePlaceholder(id)
			n := strings.Count(body, token)
			if n == 0 {
				continue
			}
			body = strings.ReplaceAll(body, token, imageMarkup(id))
			imageHits += n
		}
		for _, id := range voiceIDs {
			token := site.VoicePlaceholder(id)
			n := strings.Count(body, token)
			if n == 0 {
				continue
			}
			body = strings.ReplaceAll(body, token, voiceMarkup(id))
			voiceHits += n
		}
		return body, nil
	})
	return imageHits, voiceHits, err
}

// imageMarkup renders the replacement tag for an image placeholder. The
// home hero gets its banner wrapper; every other image is an inline
// section image.
func imageMarkup(id string) string {
	src := site.ImageAssetPath(id)
	if id == site.HeroAssetID {
		return fmt.Sprintf(`<div class="hero-media"><img src="%s" alt=""></div>`, src)
	}
	return fmt.Sprintf(`<img class="section-img" src="%s" alt="">`, src)
}

// voiceMarkup renders the playback control for a narration placeholder.
func voiceMarkup(id string) string {
	return fmt.Sprintf(
		`<button class="btn" onclick="document.getElementById('audio_%[1]s').play()">&#128266; Listen</button>`+"\n"+
			`<audio id="audio_%[1]s" src="%[2]s"></audio>`,
		id, site.AudioAssetPath(id))
}
