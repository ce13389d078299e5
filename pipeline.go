package main

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Pipeline runs one generation end to end
type Pipeline struct {
	cfg        *Config
	gen        Generator
	directives Directives
	now        func() time.Time
	log        *slog.Logger
}

// RunResult describes what a run produced (or would have produced, for a dry run)
type RunResult struct {
	RunID       string
	Article     *RenderedArticle
	Entry       CatalogEntry
	SitemapURL  SitemapEntry
	CatalogSize int
	DryRun      bool
}

func NewPipeline(cfg *Config, gen Generator) *Pipeline {
	return &Pipeline{
		cfg:        cfg,
		gen:        gen,
		directives: defaultDirectives,
		now:        time.Now,
		log:        slog.Default(),
	}
}

// Run generates, validates and renders everything in memory first; files are only
// touched in the final commit, and not at all when dryRun is set.
func (p *Pipeline) Run(ctx context.Context, dryRun bool) (*RunResult, error) {
	runID := uuid.NewString()
	log := p.log.With("run_id", runID)

	if err := p.cfg.Validate(); err != nil {
		return nil, &PreconditionError{Message: "invalid config", Err: err}
	}

	instructions, err := LoadInstructions(p.cfg.SitePath(p.cfg.PromptFile))
	if err != nil {
		return nil, err
	}
	tpl, err := LoadTemplate(p.cfg.SitePath(p.cfg.TemplateFile), p.cfg.Markers)
	if err != nil {
		return nil, err
	}

	prompt := ComposePrompt(instructions, p.directives).String()
	log.Info("requesting article", "provider", p.cfg.Generation.Provider, "prompt_chars", len(prompt))

	raw, err := p.gen.Generate(ctx, prompt)
	if err != nil {
		if StageOf(err) == "" {
			err = &GenerationError{Provider: p.cfg.Generation.Provider, Err: err}
		}
		return nil, err
	}

	res, err := ParseResponse(raw)
	if err != nil {
		return nil, err
	}
	log.Info("parsed article", "title", res.Title, "slug", res.Slug, "category", res.Category)

	article, err := Render(tpl, res, RenderOptions{
		BlogDir:     p.cfg.SitePath(p.cfg.BlogDir),
		HrefPrefix:  filepath.ToSlash(filepath.Clean(p.cfg.BlogDir)),
		TitleSuffix: p.cfg.TitleSuffix,
	})
	if err != nil {
		return nil, err
	}

	entry := CatalogEntry{
		Title:    res.Title,
		Href:     article.Href,
		Category: res.Category,
		Excerpt:  res.Excerpt,
	}
	catalogPath := p.cfg.SitePath(p.cfg.CatalogFile)
	catalog, size, err := PlanCatalog(catalogPath, entry)
	if err != nil {
		return nil, err
	}

	urlEntry := NewSitemapEntry(p.cfg.Sitemap, article.Href, p.now())
	sitemapPath := p.cfg.SitePath(p.cfg.SitemapFile)
	sitemap, err := PlanSitemap(sitemapPath, urlEntry)
	if err != nil {
		return nil, err
	}

	result := &RunResult{
		RunID:       runID,
		Article:     article,
		Entry:       entry,
		SitemapURL:  urlEntry,
		CatalogSize: size,
		DryRun:      dryRun,
	}

	if dryRun {
		log.Info("dry run, nothing written", "path", article.Path, "read_minutes", article.ReadMinutes)
		return result, nil
	}

	err = Commit([]FileChange{
		{Path: article.Path, Data: []byte(article.HTML), Create: true},
		{Path: catalogPath, Data: catalog},
		{Path: sitemapPath, Data: sitemap},
	})
	if err != nil {
		return nil, err
	}

	log.Info("published article", "path", article.Path, "href", article.Href, "read_minutes", article.ReadMinutes, "catalog_entries", size)
	return result, nil
}
