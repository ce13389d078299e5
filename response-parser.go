package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// ParseResponse turns raw model output into a validated GenerationResult.
// Any failure is a *ParseError carrying raw.
func ParseResponse(raw string) (*GenerationResult, error) {
	cleaned := normalizeResponse(raw)
	if !strings.HasPrefix(cleaned, "{") {
		return nil, &ParseError{Raw: raw, Err: errors.New("no JSON object found")}
	}

	dec := json.NewDecoder(strings.NewReader(cleaned))
	var result GenerationResult
	if err := dec.Decode(&result); err != nil {
		return nil, &ParseError{Raw: raw, Err: fmt.Errorf("decoding JSON: %w", err)}
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, &ParseError{Raw: raw, Err: errors.New("unexpected data after JSON object")}
	}

	result.Title = strings.TrimSpace(result.Title)
	result.Description = strings.TrimSpace(result.Description)
	result.Excerpt = strings.TrimSpace(result.Excerpt)
	result.SocialPosterText = strings.TrimSpace(result.SocialPosterText)
	result.SocialCaption = strings.TrimSpace(result.SocialCaption)

	if err := result.Validate(); err != nil {
		return nil, &ParseError{Raw: raw, Err: err}
	}
	return &result, nil
}

// Validate checks required fields, the category set and the slug shape
func (r *GenerationResult) Validate() error {
	var missing []string
	for _, f := range []struct {
		name  string
		value string
	}{
		{"title", r.Title},
		{"description", r.Description},
		{"content_html", r.ContentHTML},
		{"category", string(r.Category)},
		{"excerpt", r.Excerpt},
		{"slug", r.Slug},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required fields: %s", strings.Join(missing, ", "))
	}

	if !r.Category.Valid() {
		return fmt.Errorf("unknown category %q", r.Category)
	}
	if !slugPattern.MatchString(r.Slug) {
		return fmt.Errorf("slug %q is not lowercase hyphen-delimited", r.Slug)
	}
	return nil
}

// normalizeResponse strips code fences and any prose around the JSON object
func normalizeResponse(raw string) string {
	cleaned := strings.TrimSpace(raw)

	if strings.HasPrefix(cleaned, "```") {
		if nl := strings.IndexByte(cleaned, '\n'); nl >= 0 {
			cleaned = cleaned[nl+1:]
		} else {
			cleaned = strings.TrimPrefix(strings.TrimPrefix(cleaned, "```"), "json")
		}
		cleaned = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(cleaned), "```"))
	}

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start >= 0 && end > start {
		cleaned = cleaned[start : end+1]
	}
	return cleaned
}
