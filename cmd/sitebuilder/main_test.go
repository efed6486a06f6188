package main

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/site"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadOrDefaultFallsBack(t *testing.T) {
	cfg := loadOrDefault(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NotNil(t, cfg)
	assert.Equal(t, config.Default().Server.Port, cfg.Server.Port)
}

func TestRunGenerateWritesPackageAndSkeleton(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "package.json")

	prev := CLI.Generate
	t.Cleanup(func() { CLI.Generate = prev })
	CLI.Generate.Name = "Acme Corp"
	CLI.Generate.Type = "business"
	CLI.Generate.Sections = []string{"About", "Contact"}
	CLI.Generate.Site = ""
	CLI.Generate.Output = out
	CLI.Generate.Skeleton = true

	cfg := config.Default()
	cfg.Site.Directory = filepath.Join(dir, "site")

	require.NoError(t, runGenerate(cfg, slog.Default()))

	raw, err := os.ReadFile(out)
	require.NoError(t, err)
	var pkg site.GenerationPackage
	require.NoError(t, json.Unmarshal(raw, &pkg))
	assert.NotEmpty(t, pkg.Pages)
	assert.NotEmpty(t, pkg.ImagesNeeded)

	_, err = os.Stat(filepath.Join(cfg.Site.Directory, "index.html"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(cfg.Site.Directory, "assets", "styles.css"))
	assert.NoError(t, err)
}

func TestSummarizeListsPageFilenames(t *testing.T) {
	pkg := &site.GenerationPackage{Pages: []site.Page{
		{Filename: "index.html"}, {Filename: "about.html"},
	}}
	assert.Equal(t, "index.html, about.html", summarize(pkg))
}
