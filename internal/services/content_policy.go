package services

import (
	"bytes"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// ContentPolicy cleans user supplied text before it is stored and renders
// prompt bodies for display.
type ContentPolicy struct {
	strict *bluemonday.Policy
	ugc    *bluemonday.Policy
	md     goldmark.Markdown
}

func NewContentPolicy() *ContentPolicy {
	ugc := bluemonday.UGCPolicy()
	ugc.AddTargetBlankToFullyQualifiedLinks(true)
	ugc.RequireNoReferrerOnLinks(true)

	return &ContentPolicy{
		strict: bluemonday.StrictPolicy(),
		ugc:    ugc,
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
			goldmark.WithRendererOptions(gmhtml.WithHardWraps()),
		),
	}
}

// PlainText strips all markup and surrounding whitespace.
func (p *ContentPolicy) PlainText(s string) string {
	return strings.TrimSpace(html.UnescapeString(p.strict.Sanitize(s)))
}

// RenderBody converts a markdown body to sanitized HTML.
func (p *ContentPolicy) RenderBody(body string) string {
	if strings.TrimSpace(body) == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := p.md.Convert([]byte(body), &buf); err != nil {
		return p.strict.Sanitize(body)
	}
	return string(p.ugc.SanitizeBytes(buf.Bytes()))
}
