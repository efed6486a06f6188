package linkverify

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"git.home.luguber.info/inful/sitebuilder/internal/sitestore"
)

var placeholderPattern = regexp.MustCompile(`<!-- (?:IMAGE|VOICE)_PLACEHOLDER:[A-Za-z0-9_-]+ -->`)

// PageReport is the audit result for one page.
type PageReport struct {
	Filename     string   `json:"filename"`
	Refs         int      `json:"refs"`
	Broken       []string `json:"broken,omitempty"`
	Placeholders int      `json:"placeholders"`
}

// Report is the audit result for a whole site.
type Report struct {
	Pages            []PageReport `json:"pages"`
	BrokenTotal      int          `json:"broken_total"`
	PlaceholdersLeft int          `json:"placeholders_left"`
}

// Clean reports whether the site is ready to publish as-is.
func (r *Report) Clean() bool {
	return r.BrokenTotal == 0 && r.PlaceholdersLeft == 0
}

// Auditor verifies the internal consistency of stored sites.
type Auditor struct {
	store *sitestore.Store
}

func NewAuditor(store *sitestore.Store) *Auditor {
	return &Auditor{store: store}
}

// Audit walks every page of a site, checking internal references against
// the files on disk and counting unresolved placeholder tokens.
func (a *Auditor) Audit(siteName string) (*Report, error) {
	dir := a.store.Dir(siteName)
	report := &Report{}

	err := a.store.WalkPages(siteName, func(filename, body string) error {
		page := PageReport{Filename: filename}
		page.Placeholders = len(placeholderPattern.FindAllString(body, -1))

		refs, err := ExtractRefs(strings.NewReader(body))
		if err != nil {
			return err
		}
		page.Refs = len(refs)
		for _, ref := range refs {
			if !ref.Internal {
				continue
			}
			if !targetExists(dir, ref.URL) {
				page.Broken = append(page.Broken, ref.URL)
			}
		}

		report.Pages = append(report.Pages, page)
		report.BrokenTotal += len(page.Broken)
		report.PlaceholdersLeft += page.Placeholders
		return nil
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

func targetExists(dir, ref string) bool {
	// strip query and fragment; the file part decides existence
	if i := strings.IndexAny(ref, "?#"); i >= 0 {
		ref = ref[:i]
	}
	if ref == "" {
		return true
	}
	path := filepath.Join(dir, filepath.FromSlash(strings.TrimPrefix(ref, "/")))
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
