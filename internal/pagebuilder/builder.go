// Package pagebuilder constructs the HTML documents of a site. It is a pure
// function over its inputs: no I/O, no clock, no randomness.
package pagebuilder

import (
	"fmt"
	"html/template"

	sberrors "git.home.luguber.info/inful/sitebuilder/internal/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/site"
)

// Manifest lists every placeholder a build emitted, by asset id. The asset
// injector and the request generator both rely on this fixed cardinality:
// one hero image, two images per section, one narration slot.
type Manifest struct {
	ImageIDs    []string
	NarrationID string
}

// Result is the output of a build: named documents plus the placeholder
// manifest.
type Result struct {
	Pages    []site.Page
	Manifest Manifest
}

type homeData struct {
	Identity  string
	Sections  []site.Section
	HeroSlot  template.HTML
	VoiceSlot template.HTML
}

type sectionData struct {
	Identity       string
	Section        site.Section
	Content        template.HTML
	PrimarySlot    template.HTML
	SupportingSlot template.HTML
}

// Build renders the home page and one page per section. Section slugs are
// derived here; two distinct names slugging to the same value is a
// validation failure, never a silent overwrite. Section Content must already
// be safe HTML (rendered prose); all other text fields are escaped by the
// template engine.
func Build(identity string, sections []site.Section, category string) (*Result, error) {
	seen := make(map[string]string, len(sections))
	resolved := make([]site.Section, len(sections))
	for i, sec := range sections {
		slug := site.Slugify(sec.Name)
		if slug == "" {
			return nil, sberrors.ValidationFailed("sections", fmt.Sprintf("section name %q has no sluggable characters", sec.Name))
		}
		if prev, dup := seen[slug]; dup {
			return nil, sberrors.SlugCollision(slug, prev, sec.Name)
		}
		seen[slug] = sec.Name
		resolved[i] = site.Section{Name: sec.Name, Slug: slug, Content: sec.Content}
	}

	manifest := Manifest{
		ImageIDs:    []string{site.HeroAssetID},
		NarrationID: site.NarrationAssetID,
	}

	home, err := render(homeTpl, homeData{
		Identity:  identity,
		Sections:  resolved,
		HeroSlot:  template.HTML(site.ImagePlaceholder(site.HeroAssetID)),
		VoiceSlot: template.HTML(site.VoicePlaceholder(site.NarrationAssetID)),
	})
	if err != nil {
		return nil, err
	}

	pages := []site.Page{{Filename: "index.html", Body: home}}

	for _, sec := range resolved {
		primary, supporting := site.SectionImageIDs(sec.Slug)
		manifest.ImageIDs = append(manifest.ImageIDs, primary, supporting)

		body, err := render(sectionTpl, sectionData{
			Identity:       identity,
			Section:        sec,
			Content:        template.HTML(sec.Content),
			PrimarySlot:    template.HTML(site.ImagePlaceholder(primary)),
			SupportingSlot: template.HTML(site.ImagePlaceholder(supporting)),
		})
		if err != nil {
			return nil, err
		}
		pages = append(pages, site.Page{Filename: sec.Slug + ".html", Body: body})
	}

	return &Result{Pages: pages, Manifest: manifest}, nil
}

// Stylesheet renders the shared site stylesheet for a theme.
func Stylesheet(theme site.Theme) string {
	return fmt.Sprintf(stylesheetTemplate, theme.Accent)
}
