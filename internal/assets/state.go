package assets

import (
	"regexp"
	"strings"

	"git.home.luguber.info/inful/sitebuilder/internal/site"
	"git.home.luguber.info/inful/sitebuilder/internal/sitestore"
)

var placeholderPattern = regexp.MustCompile(`<!-- (?:IMAGE|VOICE)_PLACEHOLDER:[A-Za-z0-9_-]+ -->`)

// injection markers that only appear once an asset has been resolved
var resolvedMarkers = []string{
	`class="section-img"`,
	`class="hero-media"`,
	`<audio id="audio_`,
}

// DeriveState inspects a site's pages and reports its resolution state plus
// the number of unresolved placeholder tokens. State is never stored; it is
// recomputed from the files on every call.
func DeriveState(store *sitestore.Store, siteName string) (site.State, int, error) {
	left := 0
	pages := 0
	resolvedAny := false
	err := store.WalkPages(siteName, func(_, body string) error {
		pages++
		left += len(placeholderPattern.FindAllString(body, -1))
		if !resolvedAny {
			for _, marker := range resolvedMarkers {
				if strings.Contains(body, marker) {
					resolvedAny = true
					break
				}
			}
		}
		return nil
	})
	if err != nil {
		return "", 0, err
	}
	switch {
	case pages == 0:
		return site.StateSkeleton, 0, nil
	case left == 0:
		return site.StateFullyResolved, 0, nil
	case resolvedAny:
		return site.StatePartiallyResolved, left, nil
	default:
		return site.StateSkeleton, left, nil
	}
}
