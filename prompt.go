package main

import (
	"fmt"
	"os"
	"strings"
)

// Directives are the fixed audience and SEO instructions sent with every request
type Directives struct {
	Audience string
	Keywords []string
	Tone     string
	Hashtags []string
}

var defaultDirectives = Directives{
	Audience: "Philippine small business owners (SMEs), coffee shop owners, retail managers, and service providers (salons, spas) looking to improve sales and customer retention.",
	Keywords: []string{
		"how to increase sales for small business Philippines",
		"digital stamp cards Philippines",
		"customer loyalty program Philippines",
		"business promotion ideas Philippines",
		"improve repeat customers",
	},
	Tone:     "Practical, encouraging, and localized for the Philippine market (mentioning local business contexts like 'ber months', 'sari-sari stores', 'local cafes', etc., where appropriate).",
	Hashtags: []string{"#SMEPhilippines", "#StampCircle", "#CustomerLoyalty"},
}

// GenerationRequest is built once per run and never modified
type GenerationRequest struct {
	Instructions string
	Directives   string
	Schema       string
}

func (r GenerationRequest) String() string {
	var b strings.Builder
	b.WriteString("Use these instructions: ")
	b.WriteString(strings.TrimSpace(r.Instructions))
	b.WriteString("\n\n")
	b.WriteString(r.Directives)
	b.WriteString("\n")
	b.WriteString(r.Schema)
	return b.String()
}

// LoadInstructions reads the free-text instruction document
func LoadInstructions(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", &PreconditionError{Message: "reading prompt instructions", Err: err}
	}
	return string(data), nil
}

// ComposePrompt combines the instruction document with the directive block and output schema
func ComposePrompt(instructions string, d Directives) GenerationRequest {
	return GenerationRequest{
		Instructions: instructions,
		Directives:   formatDirectives(d),
		Schema:       formatSchema(d),
	}
}

func formatDirectives(d Directives) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Target Audience: %s\n\n", d.Audience)
	b.WriteString("SEO Goals:\n")
	quoted := make([]string, len(d.Keywords))
	for i, k := range d.Keywords {
		quoted[i] = "'" + k + "'"
	}
	fmt.Fprintf(&b, "- Primary Keywords: %s.\n", strings.Join(quoted, ", "))
	fmt.Fprintf(&b, "- Tone: %s\n", d.Tone)
	return b.String()
}

func formatSchema(d Directives) string {
	cats := make([]string, len(Categories))
	for i, c := range Categories {
		cats[i] = "'" + string(c) + "'"
	}

	var b strings.Builder
	b.WriteString("Format the output as a JSON object with these keys:\n")
	b.WriteString("- title: String (SEO-friendly title using high-volume keywords)\n")
	b.WriteString("- description: String (SEO meta description, max 160 chars, includes call to action)\n")
	b.WriteString("- content_html: String (The HTML content to go inside .article-body. Use <h2> for subheadings, <p> for paragraphs, and <ul>/<li> for lists. Naturally integrate keywords.)\n")
	fmt.Fprintf(&b, "- category: String (One of: %s)\n", strings.Join(cats, ", "))
	b.WriteString("- excerpt: String (A 1-2 sentence summary for the blog card, includes primary keywords)\n")
	b.WriteString("- slug: String (SEO-friendly URL slug: lowercase letters, digits and hyphens only)\n")
	b.WriteString("- social_poster_text: String (Text for social media poster)\n")
	if len(d.Hashtags) > 0 {
		fmt.Fprintf(&b, "- social_caption: String (Caption for social media including relevant hashtags like %s)\n", strings.Join(d.Hashtags, " "))
	} else {
		b.WriteString("- social_caption: String (Caption for social media)\n")
	}
	b.WriteString("\nReturn ONLY the JSON.\n")
	return b.String()
}
