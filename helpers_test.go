package main

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const templateName = "blog/affordable-loyalty-software.html"

// stubGenerator returns a canned reply and remembers the prompt it was given
type stubGenerator struct {
	reply  string
	err    error
	prompt string
	calls  int
}

func (s *stubGenerator) Generate(_ context.Context, prompt string) (string, error) {
	s.calls++
	s.prompt = prompt
	return s.reply, s.err
}

// wordsHTML returns a paragraph with exactly n word tokens
func wordsHTML(n int) string {
	return "<p>" + strings.TrimSpace(strings.Repeat("kape ", n)) + "</p>"
}

func validResult() *GenerationResult {
	return &GenerationResult{
		Title:            "5 Ways to Boost Sales",
		Description:      "Practical ideas for Philippine cafes. Try StampCircle today!",
		ContentHTML:      "<h2>Start with loyalty</h2>" + wordsHTML(397),
		Category:         CategoryBusinessStrategy,
		Excerpt:          "Five practical ways to grow repeat customers.",
		Slug:             "5-ways-boost-sales",
		SocialPosterText: "Boost your sales this ber months!",
		SocialCaption:    "Grow repeat customers #SMEPhilippines #StampCircle",
	}
}

func resultJSON(t *testing.T, r *GenerationResult) string {
	t.Helper()
	data, err := json.Marshal(r)
	require.NoError(t, err)
	return string(data)
}

func loadFixtureTemplate(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", "reference-article.html"))
	require.NoError(t, err)
	return string(data)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

const existingCatalog = `[
    {
        "title": "Digital Stamp Cards in the Philippines",
        "href": "blog/digital-stamp-cards-philippines.html",
        "category": "Loyalty Programs",
        "excerpt": "Why paper stamp cards are out.",
        "date": "2025-09-01"
    },
    {
        "title": "Ber Months Promo Ideas",
        "href": "blog/ber-months-promo-ideas.html",
        "category": "Seasonal Sales",
        "excerpt": "Get ready for Christmas rush."
    }
]
`

const existingSitemap = `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url>
    <loc>https://stampcircle.com/</loc>
    <lastmod>2025-01-01</lastmod>
    <priority>1.00</priority>
  </url>
</urlset>
`

// newTestSite lays out a site root with prompt, template, catalog and sitemap
func newTestSite(t *testing.T) *Config {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "prompt.txt"), "Write a helpful post about loyalty for local cafes.")
	writeFile(t, filepath.Join(dir, templateName), loadFixtureTemplate(t))
	writeFile(t, filepath.Join(dir, "blogs.json"), existingCatalog)
	writeFile(t, filepath.Join(dir, "sitemap.xml"), existingSitemap)

	return &Config{
		SiteDir:      dir,
		PromptFile:   "prompt.txt",
		TemplateFile: templateName,
		BlogDir:      "blog",
		CatalogFile:  "blogs.json",
		SitemapFile:  "sitemap.xml",
		TitleSuffix:  " | StampCircle",
		Generation:   GenerationConfig{Provider: ProviderGemini, Timeout: time.Minute},
		Sitemap:      SitemapPolicy{BaseURL: "https://stampcircle.com", Priority: "0.80"},
		Markers:      defaultMarkers,
	}
}

// snapshotTree maps every file under dir to its contents
func snapshotTree(t *testing.T, dir string) map[string]string {
	t.Helper()
	files := map[string]string{}
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		files[path] = string(data)
		return nil
	})
	require.NoError(t, err)
	return files
}
