package assembler

import (
	"context"
	"errors"
	"strings"
	"testing"

	"git.home.luguber.info/inful/sitebuilder/internal/generator"
	"git.home.luguber.info/inful/sitebuilder/internal/site"
)

type stubGenerator struct {
	sectionFn func(ctx context.Context, identity, category, section string) (string, error)
	refineFn  func(ctx context.Context, req generator.RefineRequest) (*generator.RefineResult, error)
}

func (s *stubGenerator) Section(ctx context.Context, identity, category, section string) (string, error) {
	if s.sectionFn == nil {
		return "", errors.New("unavailable")
	}
	return s.sectionFn(ctx, identity, category, section)
}

func (s *stubGenerator) Refine(ctx context.Context, req generator.RefineRequest) (*generator.RefineResult, error) {
	if s.refineFn == nil {
		return nil, errors.New("unavailable")
	}
	return s.refineFn(ctx, req)
}

func allMarkup(pkg *site.GenerationPackage) string {
	var b strings.Builder
	for _, p := range pkg.Pages {
		b.WriteString(p.Body)
	}
	return b.String()
}

func TestAssemblePackageShape(t *testing.T) {
	a := New(nil, Options{DefaultCallbackURL: "http://localhost:9000/submit-assets"})
	pkg, err := a.Assemble(context.Background(), Request{
		BusinessName: "Sunshine General Hospital",
		WebsiteType:  "hospital",
		Sections:     []string{"Home", "Services", "Doctors", "Patient Information"},
	})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	// index + 4 sections + stylesheet
	if len(pkg.Pages) != 6 {
		t.Errorf("expected 6 pages, got %d", len(pkg.Pages))
	}
	if pkg.Pages[len(pkg.Pages)-1].Filename != "assets/styles.css" {
		t.Errorf("last page should be the stylesheet, got %q", pkg.Pages[len(pkg.Pages)-1].Filename)
	}
	if len(pkg.ImagesNeeded) != 9 {
		t.Errorf("expected 9 image prompts, got %d", len(pkg.ImagesNeeded))
	}
	if pkg.ImagesNeeded[0].ID != site.HeroAssetID {
		t.Errorf("first image prompt must be the hero, got %q", pkg.ImagesNeeded[0].ID)
	}
	if len(pkg.VoiceScriptsNeeded) != 1 || pkg.VoiceScriptsNeeded[0].ID != site.NarrationAssetID {
		t.Errorf("expected a single %s voice script, got %+v", site.NarrationAssetID, pkg.VoiceScriptsNeeded)
	}
	if pkg.CallbackURL != "http://localhost:9000/submit-assets" {
		t.Errorf("callback should fall back to the default, got %q", pkg.CallbackURL)
	}
}

func TestAssembleRequestCallbackWins(t *testing.T) {
	a := New(nil, Options{DefaultCallbackURL: "http://fallback/submit-assets"})
	pkg, err := a.Assemble(context.Background(), Request{
		BusinessName: "X",
		Sections:     []string{"About"},
		CallbackURL:  "http://caller/submit-assets",
	})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if pkg.CallbackURL != "http://caller/submit-assets" {
		t.Errorf("request callback must win, got %q", pkg.CallbackURL)
	}
}

func TestAssembleSectionNormalization(t *testing.T) {
	a := New(nil, Options{})

	t.Run("caps at first four non-blank", func(t *testing.T) {
		pkg, err := a.Assemble(context.Background(), Request{
			BusinessName: "X",
			Sections:     []string{" ", "One", "Two", "", "Three", "Four", "Five"},
		})
		if err != nil {
			t.Fatalf("Assemble: %v", err)
		}
		markup := allMarkup(pkg)
		if strings.Contains(markup, "Five") {
			t.Error("sections past the first four must be dropped")
		}
		if !strings.Contains(markup, "Four") {
			t.Error("fourth non-blank section must be kept")
		}
	})

	t.Run("empty list uses defaults", func(t *testing.T) {
		pkg, err := a.Assemble(context.Background(), Request{BusinessName: "X"})
		if err != nil {
			t.Fatalf("Assemble: %v", err)
		}
		markup := allMarkup(pkg)
		for _, name := range site.DefaultSections {
			if !strings.Contains(markup, name) {
				t.Errorf("default section %q missing", name)
			}
		}
	})
}

func TestAssembleGeneratorFailureFallsBack(t *testing.T) {
	gen := &stubGenerator{
		sectionFn: func(_ context.Context, _, _, _ string) (string, error) {
			return "", errors.New("model down")
		},
	}
	pkg, err := New(gen, Options{}).Assemble(context.Background(), Request{
		BusinessName: "Acme",
		Sections:     []string{"Team"},
	})
	if err != nil {
		t.Fatalf("generator failure must not fail assembly: %v", err)
	}
	if !strings.Contains(allMarkup(pkg), "Information and highlights about Team at Acme.") {
		t.Error("fallback prose missing from section page")
	}
}

func TestAssembleGeneratedProseIsRendered(t *testing.T) {
	gen := &stubGenerator{
		sectionFn: func(_ context.Context, _, _, _ string) (string, error) {
			return "We offer **great** care.", nil
		},
	}
	pkg, err := New(gen, Options{}).Assemble(context.Background(), Request{
		BusinessName: "Acme",
		Sections:     []string{"Services"},
	})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if !strings.Contains(allMarkup(pkg), "<strong>great</strong>") {
		t.Error("generated markdown was not rendered to HTML")
	}
}

func TestAssembleRefinementApplied(t *testing.T) {
	gen := &stubGenerator{
		refineFn: func(_ context.Context, req generator.RefineRequest) (*generator.RefineResult, error) {
			return &generator.RefineResult{
				BusinessName: "Acme Clinic",
				WebsiteType:  "clinic",
				Sections:     []string{"About Us"},
			}, nil
		},
	}
	pkg, err := New(gen, Options{RefineInputs: true}).Assemble(context.Background(), Request{
		BusinessName: "acme clnic",
		WebsiteType:  "clinik",
		Sections:     []string{"abut"},
	})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	markup := allMarkup(pkg)
	if !strings.Contains(markup, "Acme Clinic") {
		t.Error("refined business name not used")
	}
	if !strings.Contains(markup, "About Us") {
		t.Error("refined section name not used")
	}
}

func TestAssembleRefinementFailureKeepsOriginals(t *testing.T) {
	gen := &stubGenerator{} // Refine and Section both fail
	pkg, err := New(gen, Options{RefineInputs: true}).Assemble(context.Background(), Request{
		BusinessName: "Raw Name",
		Sections:     []string{"Contact"},
	})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if !strings.Contains(allMarkup(pkg), "Raw Name") {
		t.Error("original inputs must survive a failed refinement")
	}
}

func TestAssembleBlankNameDefaults(t *testing.T) {
	pkg, err := New(nil, Options{}).Assemble(context.Background(), Request{WebsiteType: "gym"})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if !strings.Contains(pkg.Pages[0].Body, "gym") {
		t.Error("blank business name should fall back to the website type")
	}
}

func TestNarrationScriptListing(t *testing.T) {
	script := narrationScript("Acme", "business", []string{"About", "Services", "Contact"})
	if !strings.Contains(script, "About, Services, and Contact") {
		t.Errorf("unexpected listing in script: %q", script)
	}
	single := narrationScript("Acme", "business", []string{"About"})
	if !strings.Contains(single, "explore About.") {
		t.Errorf("single-section listing wrong: %q", single)
	}
}
