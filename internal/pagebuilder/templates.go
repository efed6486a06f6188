package pagebuilder

import (
	"bytes"
	"fmt"
	"html/template"
)

// Page templates. Placeholder tokens are injected as data values (template.HTML)
// rather than template text: html/template strips comments from template
// source, and the tokens must survive into the rendered markup verbatim.

const homeTemplate = `<!doctype html>
<html>
<head>
  <meta charset="utf-8" />
  <title>{{.Identity}}</title>
  <link rel="stylesheet" href="assets/styles.css" />
</head>
<body>

<nav class="navbar">
  <div class="brand">{{.Identity}}</div>
  <div class="links">{{range .Sections}}<a href="{{.Slug}}.html">{{.Name}}</a> {{end}}</div>
</nav>

<section class="hero">
  {{.HeroSlot}}
  <div>
    <h1>Welcome to {{.Identity}}</h1>
    <p>Explore our key sections below.</p>
    <div class="voice">
      {{.VoiceSlot}}
    </div>
  </div>
</section>

<section>
  <h2>Explore Sections</h2>
  <div class="grid">
{{range .Sections}}    <div class="card">
      <h3>{{.Name}}</h3>
      <p>Learn more about {{.Name}} at {{$.Identity}}.</p>
      <a class="btn" href="{{.Slug}}.html">Open {{.Name}}</a>
    </div>
{{end}}  </div>
</section>

<footer>
  <p>&copy; {{.Identity}}</p>
</footer>

</body>
</html>
`

const sectionTemplate = `<!doctype html>
<html>
<head>
  <meta charset="utf-8" />
  <title>{{.Section.Name}} &mdash; {{.Identity}}</title>
  <link rel="stylesheet" href="assets/styles.css" />
</head>
<body>

<nav class="navbar">
  <a class="btn" href="index.html">&larr; Home</a>
  <div class="brand">{{.Section.Name}}</div>
</nav>

<section>
  <h2>{{.Section.Name}}</h2>
  <div class="prose">{{.Content}}</div>

  {{.PrimarySlot}}
  {{.SupportingSlot}}
</section>

<footer>
  <p>&copy; {{.Identity}}</p>
</footer>

</body>
</html>
`

// stylesheetTemplate keeps layout rules static and takes the accent color
// from the site theme.
const stylesheetTemplate = `body { font-family: system-ui, Arial, sans-serif; margin: 0; color: #111; }
.navbar { display: flex; align-items: center; gap: 16px; padding: 14px 20px; background: %[1]s; color: #fff; }
.navbar .brand { font-weight: 700; letter-spacing: .3px; }
.navbar .links a { color: #fff; text-decoration: none; margin-right: 14px; opacity: .9; }
.navbar .links a:hover { opacity: 1; text-decoration: underline; }
.hero { display: grid; gap: 16px; padding: 40px 20px; background: #f7f7f9; }
.hero-media img { width: 100%%; height: auto; display: block; border-radius: 12px; }
.grid { display: grid; gap: 16px; grid-template-columns: repeat(auto-fit, minmax(240px, 1fr)); }
.card { border: 1px solid #e9e9ee; border-radius: 12px; padding: 18px; background: #fff; }
.btn { display: inline-block; padding: 10px 14px; border-radius: 10px; border: 1px solid #ddd; background: #fff; cursor: pointer; }
.btn:hover { background: #f3f3f7; }
section { padding: 28px 20px; }
footer { padding: 24px 20px; text-align: center; background: #fafafa; border-top: 1px solid #eee; color: #444; }
.section-img { width: 100%%; height: auto; display: block; border-radius: 12px; border: 1px solid #eee; margin-top: 12px; }
.voice { margin-top: 8px; }
`

var (
	homeTpl    = template.Must(template.New("home").Parse(homeTemplate))
	sectionTpl = template.Must(template.New("section").Parse(sectionTemplate))
)

func render(tpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s template: %w", tpl.Name(), err)
	}
	return buf.String(), nil
}
