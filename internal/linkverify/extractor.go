// Package linkverify audits generated sites: every internal reference must
// resolve to a file in the site directory, and unresolved placeholder
// tokens are counted so operators can see what a deploy would ship.
package linkverify

import (
	"io"
	"strings"

	"golang.org/x/net/html"

	sberrors "git.home.luguber.info/inful/sitebuilder/internal/errors"
)

// Ref is one outgoing reference extracted from a page.
type Ref struct {
	URL       string // raw attribute value
	Tag       string // a, img, audio, link
	Attribute string // href or src
	Internal  bool   // true when the reference targets a site file
}

// ExtractRefs parses HTML and collects the references a browser would
// resolve against the site directory.
func ExtractRefs(r io.Reader) ([]Ref, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, sberrors.ValidationFailed("html", err.Error())
	}

	var refs []Ref
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "a", "link":
				if href := getAttr(n, "href"); href != "" {
					refs = append(refs, Ref{URL: href, Tag: n.Data, Attribute: "href", Internal: isInternal(href)})
				}
			case "img", "audio", "script":
				if src := getAttr(n, "src"); src != "" {
					refs = append(refs, Ref{URL: src, Tag: n.Data, Attribute: "src", Internal: isInternal(src)})
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return refs, nil
}

func getAttr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

// isInternal reports whether a reference targets the site itself rather
// than an external origin or an in-page anchor.
func isInternal(ref string) bool {
	if ref == "" || strings.HasPrefix(ref, "#") {
		return false
	}
	if strings.HasPrefix(ref, "//") {
		return false
	}
	if i := strings.Index(ref, ":"); i >= 0 {
		scheme := ref[:i]
		if scheme == "http" || scheme == "https" || scheme == "mailto" || scheme == "tel" || scheme == "data" {
			return false
		}
	}
	return true
}
