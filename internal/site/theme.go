package site

import "strings"

// Theme carries presentation hints derived from the site category.
type Theme struct {
	// Accent is a CSS color used for buttons and highlights.
	Accent string `json:"accent"`
	// Voice is a short tone descriptor fed into content prompts.
	Voice string `json:"voice"`
}

// themeRule maps category keywords to a theme. First match wins.
type themeRule struct {
	keywords []string
	theme    Theme
}

var themeRules = []themeRule{
	{[]string{"hospital", "health", "clinic", "care", "medical"}, Theme{Accent: "#0e7490", Voice: "calm and reassuring"}},
	{[]string{"gym", "fitness", "sport", "training"}, Theme{Accent: "#dc2626", Voice: "energetic and motivating"}},
	{[]string{"restaurant", "food", "cafe", "kitchen", "catering"}, Theme{Accent: "#b45309", Voice: "warm and inviting"}},
	{[]string{"school", "education", "academy", "university"}, Theme{Accent: "#1d4ed8", Voice: "clear and encouraging"}},
	{[]string{"tech", "software", "it ", "digital"}, Theme{Accent: "#7c3aed", Voice: "confident and modern"}},
}

// defaultTheme is the baseline when no keyword matches. ThemeFor is total:
// every category maps to exactly one theme.
var defaultTheme = Theme{Accent: "#111827", Voice: "friendly and professional"}

// ThemeFor selects a theme by case-insensitive keyword match against the
// category label.
func ThemeFor(category string) Theme {
	c := strings.ToLower(category)
	for _, rule := range themeRules {
		for _, kw := range rule.keywords {
			if strings.Contains(c, kw) {
				return rule.theme
			}
		}
	}
	return defaultTheme
}
