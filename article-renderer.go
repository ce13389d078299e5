package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

const wordsPerMinute = 200

var (
	titleTagRe        = regexp.MustCompile(`(?is)<title>.*?</title>`)
	metaTitleRe       = regexp.MustCompile(`(?i)<meta\s+name="title"\s+content="[^"]*"\s*/?>`)
	metaDescriptionRe = regexp.MustCompile(`(?i)<meta\s+name="description"\s+content="[^"]*"\s*/?>`)
)

// RenderOptions says where pages go and how the <title> is branded
type RenderOptions struct {
	BlogDir     string // directory the page is written to
	HrefPrefix  string // site-relative prefix used in the catalog and sitemap
	TitleSuffix string
}

// Render composes the article page and fails if a page with the same slug exists
func Render(tpl *Template, res *GenerationResult, opts RenderOptions) (*RenderedArticle, error) {
	filename := res.Slug + ".html"
	target := filepath.Join(opts.BlogDir, filename)

	if _, err := os.Stat(target); err == nil {
		return nil, &OutputConflictError{Path: target}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, &PreconditionError{Message: "checking output path", Err: err}
	}

	minutes := ReadingMinutes(res.ContentHTML)
	return &RenderedArticle{
		Path:        target,
		Href:        path.Join(opts.HrefPrefix, filename),
		HTML:        renderPage(tpl, res, minutes, opts.TitleSuffix),
		ReadMinutes: minutes,
	}, nil
}

func renderPage(tpl *Template, res *GenerationResult, minutes int, titleSuffix string) string {
	header := tpl.Header
	header = replaceFirst(titleTagRe, header, "<title>"+res.Title+titleSuffix+"</title>")
	header = replaceFirst(metaTitleRe, header, `<meta name="title" content="`+attrValue(res.Title)+`">`)
	header = replaceFirst(metaDescriptionRe, header, `<meta name="description" content="`+attrValue(res.Description)+`">`)

	var b strings.Builder
	b.WriteString(header)
	fmt.Fprintf(&b, "\n            <h1 class=\"section-title\">%s</h1>", res.Title)
	fmt.Fprintf(&b, "\n            <p class=\"read-time\" style=\"opacity: 0.9; margin-bottom: 3rem; font-size: 1.1rem;\">⏱️ %d min read</p>", minutes)
	b.WriteString("\n            <div class=\"article-body\">\n")
	b.WriteString(res.ContentHTML)
	b.WriteString("\n")
	writeSocialFootnote(&b, res)
	b.WriteString("            </div>\n            ")
	b.WriteString(tpl.Footer)
	return b.String()
}

// writeSocialFootnote is a no-op when both social fields are empty
func writeSocialFootnote(b *strings.Builder, res *GenerationResult) {
	if res.SocialPosterText == "" && res.SocialCaption == "" {
		return
	}

	b.WriteString("                <hr style=\"margin: 3rem 0 2rem; border: 0; border-top: 1px solid rgba(255,255,255,0.2);\">\n")
	b.WriteString("                <div class=\"social-footnote\" style=\"font-size: 0.85rem; opacity: 0.8; line-height: 1.4;\">\n")
	if res.SocialPosterText != "" {
		fmt.Fprintf(b, "                    <p><strong>Social Media Poster Text:</strong><br>%s</p>\n", res.SocialPosterText)
	}
	if res.SocialCaption != "" {
		fmt.Fprintf(b, "                    <p style=\"margin-top: 1rem;\"><strong>Social Media Caption:</strong><br>%s</p>\n", res.SocialCaption)
	}
	b.WriteString("                </div>\n")
}

// ReadingMinutes rounds up at 200 words per minute, minimum 1
func ReadingMinutes(content string) int {
	minutes := (countWords(content) + wordsPerMinute - 1) / wordsPerMinute
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}

// countWords counts whitespace-separated tokens in text nodes; tags act as separators
func countWords(content string) int {
	words := 0
	z := html.NewTokenizer(strings.NewReader(content))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return words
		case html.TextToken:
			words += len(strings.Fields(string(z.Text())))
		}
	}
}

func replaceFirst(re *regexp.Regexp, s, replacement string) string {
	loc := re.FindStringIndex(s)
	if loc == nil {
		return s
	}
	return s[:loc[0]] + replacement + s[loc[1]:]
}

func attrValue(s string) string {
	return strings.ReplaceAll(s, `"`, "&quot;")
}
