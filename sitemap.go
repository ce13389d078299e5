package main

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"
)

const sitemapNamespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

// SitemapEntry is one <url> record
type SitemapEntry struct {
	XMLName    xml.Name `xml:"url"`
	Loc        string   `xml:"loc"`
	LastMod    string   `xml:"lastmod"`
	ChangeFreq string   `xml:"changefreq,omitempty"`
	Priority   string   `xml:"priority,omitempty"`
}

// SitemapPolicy holds the fixed values written for every new article
type SitemapPolicy struct {
	BaseURL    string `mapstructure:"base_url"`
	ChangeFreq string `mapstructure:"changefreq"`
	Priority   string `mapstructure:"priority"`
}

func NewSitemapEntry(p SitemapPolicy, href string, now time.Time) SitemapEntry {
	return SitemapEntry{
		Loc:        strings.TrimRight(p.BaseURL, "/") + "/" + strings.TrimLeft(href, "/"),
		LastMod:    now.Format("2006-01-02"),
		ChangeFreq: p.ChangeFreq,
		Priority:   p.Priority,
	}
}

// PlanSitemap returns the sitemap with entry appended as the last <url>.
// Existing bytes are kept as they are; only the closing tag moves.
func PlanSitemap(path string, entry SitemapEntry) ([]byte, error) {
	rendered, err := xml.MarshalIndent(entry, "  ", "  ")
	if err != nil {
		return nil, &SitemapError{Path: path, Err: fmt.Errorf("encoding entry: %w", err)}
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		var b bytes.Buffer
		b.WriteString(xml.Header)
		b.WriteString(`<urlset xmlns="` + sitemapNamespace + `">` + "\n")
		b.Write(rendered)
		b.WriteString("\n</urlset>\n")
		return b.Bytes(), nil
	}
	if err != nil {
		return nil, &SitemapError{Path: path, Err: err}
	}

	before, err := checkSitemap(data)
	if err != nil {
		return nil, &SitemapError{Path: path, Err: err}
	}
	idx := int(before.closeOffset)
	if !bytes.HasPrefix(data[idx:], []byte("</")) {
		return nil, &SitemapError{Path: path, Err: errors.New("urlset has no closing tag to insert before")}
	}

	var b bytes.Buffer
	b.Write(data[:idx])
	if idx > 0 && data[idx-1] != '\n' {
		b.WriteByte('\n')
	}
	b.Write(rendered)
	b.WriteByte('\n')
	b.Write(data[idx:])

	out := b.Bytes()
	after, err := checkSitemap(out)
	if err != nil {
		return nil, &SitemapError{Path: path, Err: fmt.Errorf("updated sitemap is not well-formed: %w", err)}
	}
	if after.urls != before.urls+1 {
		return nil, &SitemapError{Path: path, Err: fmt.Errorf("updated sitemap has %d urls, want %d", after.urls, before.urls+1)}
	}
	return out, nil
}

type sitemapShape struct {
	// closeOffset is where the root's end tag starts
	closeOffset int64
	urls        int
}

// checkSitemap verifies data is well-formed XML with a single <urlset> root
func checkSitemap(data []byte) (sitemapShape, error) {
	var shape sitemapShape
	dec := xml.NewDecoder(bytes.NewReader(data))
	depth, roots := 0, 0
	for {
		offset := dec.InputOffset()
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return shape, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if depth == 0 {
				roots++
				if t.Name.Local != "urlset" {
					return shape, fmt.Errorf("root element is <%s>, want <urlset>", t.Name.Local)
				}
			}
			if depth == 1 && t.Name.Local == "url" {
				shape.urls++
			}
			depth++
		case xml.EndElement:
			depth--
			if depth == 0 {
				shape.closeOffset = offset
			}
		}
	}
	if roots != 1 {
		return shape, fmt.Errorf("found %d root elements, want 1", roots)
	}
	return shape, nil
}
