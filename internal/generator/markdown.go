package generator

import (
	"bytes"

	"github.com/yuin/goldmark"
)

// prose is a deliberately strict renderer: raw HTML in generator output is
// escaped, so a misbehaving model cannot inject markup into pages.
var prose = goldmark.New()

// RenderProse converts generated Markdown into HTML suitable for embedding
// in a page body.
func RenderProse(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := prose.Convert([]byte(markdown), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
