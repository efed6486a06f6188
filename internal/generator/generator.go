// Package generator integrates the external text generator. The rest of the
// system treats it as a black box that either produces prose or fails;
// callers substitute fallback content on failure and never propagate
// generation errors to users.
package generator

import "context"

// TextGenerator produces prose for one section of a site.
type TextGenerator interface {
	// Section returns Markdown prose for the named section. An error means
	// "content unavailable"; the caller substitutes fallback text.
	Section(ctx context.Context, identity, category, section string) (string, error)

	// Refine polishes raw request inputs (business name, category, section
	// titles) before assembly. Best effort: any failure returns an error and
	// the caller keeps the originals.
	Refine(ctx context.Context, req RefineRequest) (*RefineResult, error)
}

// RefineRequest carries the raw inputs of a generation request.
type RefineRequest struct {
	BusinessName string   `json:"business_name"`
	WebsiteType  string   `json:"website_type"`
	Sections     []string `json:"sections"`
}

// RefineResult carries the polished inputs. The generator must return the
// same shape it was given; missing fields invalidate the result.
type RefineResult struct {
	BusinessName string   `json:"business_name"`
	WebsiteType  string   `json:"website_type"`
	Sections     []string `json:"sections"`
}
