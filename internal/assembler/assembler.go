// Package assembler turns a raw generation request into a complete
// generation package: pages with placeholder tokens, the list of image
// prompts, the narration script, and the asset callback URL. Content
// generation is best effort; a failing generator degrades to fallback prose
// and never fails the request.
package assembler

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"git.home.luguber.info/inful/sitebuilder/internal/generator"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/pagebuilder"
	"git.home.luguber.info/inful/sitebuilder/internal/site"
)

// Request is a raw website generation request.
type Request struct {
	BusinessName string   `json:"business_name"`
	WebsiteType  string   `json:"website_type"`
	Sections     []string `json:"sections_required"`
	CallbackURL  string   `json:"callback_url_for_assets,omitempty"`
}

// Options configure an Assembler.
type Options struct {
	// DefaultCallbackURL is used when a request carries no callback URL.
	DefaultCallbackURL string

	// RefineInputs enables the pre-assembly input polish pass.
	RefineInputs bool

	Logger *slog.Logger
}

// Assembler builds generation packages. A nil TextGenerator is valid and
// means every section gets fallback prose; the service stays usable without
// generator credentials.
type Assembler struct {
	gen  generator.TextGenerator
	opts Options
	log  *slog.Logger
}

func New(gen generator.TextGenerator, opts Options) *Assembler {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Assembler{gen: gen, opts: opts, log: log}
}

// Assemble produces the full generation package for a request. The only
// error paths are structural (section names that collide or cannot be
// slugged); generator failures downgrade to fallback content.
func (a *Assembler) Assemble(ctx context.Context, req Request) (*site.GenerationPackage, error) {
	websiteType := strings.TrimSpace(req.WebsiteType)
	if websiteType == "" {
		websiteType = "business"
	}
	businessName := strings.TrimSpace(req.BusinessName)
	if businessName == "" {
		businessName = websiteType
	}
	names := normalizeSections(req.Sections)

	if a.opts.RefineInputs && a.gen != nil {
		refined, err := a.gen.Refine(ctx, generator.RefineRequest{
			BusinessName: businessName,
			WebsiteType:  websiteType,
			Sections:     names,
		})
		if err != nil {
			a.log.Warn("input refinement unavailable, keeping originals",
				logfields.Site(businessName), logfields.Error(err))
		} else {
			businessName = refined.BusinessName
			websiteType = refined.WebsiteType
			names = normalizeSections(refined.Sections)
		}
	}

	sections := make([]site.Section, len(names))
	for i, name := range names {
		sections[i] = site.Section{Name: name, Content: a.sectionContent(ctx, businessName, websiteType, name)}
	}

	built, err := pagebuilder.Build(businessName, sections, websiteType)
	if err != nil {
		return nil, err
	}

	theme := site.ThemeFor(websiteType)
	pages := append(built.Pages, site.Page{
		Filename: site.StylesheetPath,
		Body:     pagebuilder.Stylesheet(theme),
	})

	callback := req.CallbackURL
	if callback == "" {
		callback = a.opts.DefaultCallbackURL
	}

	pkg := &site.GenerationPackage{
		Pages:        pages,
		ImagesNeeded: imagePrompts(businessName, websiteType, names),
		VoiceScriptsNeeded: []site.VoiceRequest{{
			ID:     built.Manifest.NarrationID,
			Script: narrationScript(businessName, websiteType, names),
		}},
		CallbackURL: callback,
	}

	a.log.Info("generation package assembled",
		logfields.Site(businessName),
		logfields.Category(websiteType),
		logfields.Count(len(pkg.Pages)))
	return pkg, nil
}

// normalizeSections drops blank names and keeps the first MaxSections. An
// empty result falls back to the default section set.
func normalizeSections(raw []string) []string {
	out := make([]string, 0, site.MaxSections)
	for _, name := range raw {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		out = append(out, name)
		if len(out) == site.MaxSections {
			break
		}
	}
	if len(out) == 0 {
		return append(out, site.DefaultSections...)
	}
	return out
}

func (a *Assembler) sectionContent(ctx context.Context, businessName, websiteType, section string) string {
	markdown := ""
	if a.gen != nil {
		var err error
		markdown, err = a.gen.Section(ctx, businessName, websiteType, section)
		if err != nil {
			a.log.Warn("section content generation failed, using fallback",
				logfields.Site(businessName), logfields.Section(section), logfields.Error(err))
			markdown = ""
		}
	}
	if strings.TrimSpace(markdown) == "" {
		markdown = fallbackProse(businessName, section)
	}
	html, err := generator.RenderProse(markdown)
	if err != nil {
		a.log.Warn("prose rendering failed, using fallback",
			logfields.Site(businessName), logfields.Section(section), logfields.Error(err))
		html, _ = generator.RenderProse(fallbackProse(businessName, section))
	}
	return html
}

func fallbackProse(businessName, section string) string {
	return fmt.Sprintf("Information and highlights about %s at %s.", section, businessName)
}

// imagePrompts lists one hero prompt plus a primary and supporting prompt
// per section, in the same order the pages emit their placeholders.
func imagePrompts(businessName, websiteType string, names []string) []site.ImageRequest {
	prompts := []site.ImageRequest{{
		ID:          site.HeroAssetID,
		Description: fmt.Sprintf("Wide hero banner for a %s website named '%s'. Clean, modern, welcoming.", websiteType, businessName),
	}}
	for _, name := range names {
		primary, supporting := site.SectionImageIDs(site.Slugify(name))
		prompts = append(prompts,
			site.ImageRequest{
				ID:          primary,
				Description: fmt.Sprintf("Primary image for the '%s' section of a %s site. Professional, high-quality, relevant to %s.", name, websiteType, name),
			},
			site.ImageRequest{
				ID:          supporting,
				Description: fmt.Sprintf("Supporting image for the '%s' section. Complementary visual that reinforces %s context.", name, name),
			})
	}
	return prompts
}

func narrationScript(businessName, websiteType string, names []string) string {
	listed := ""
	switch len(names) {
	case 0:
	case 1:
		listed = names[0]
	default:
		listed = strings.Join(names[:len(names)-1], ", ") + ", and " + names[len(names)-1]
	}
	return fmt.Sprintf(
		"Welcome to %s, your trusted %s destination online.\n"+
			"On this website you can explore %s. Each page is designed to be clear, fast, and useful.\n"+
			"Use the navigation to jump into any section, or return to the home page at any time.\n"+
			"Thank you for visiting %s.",
		businessName, websiteType, listed, businessName)
}
