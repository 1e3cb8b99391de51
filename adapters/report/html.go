package report

import (
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"bais/app"
)

// RenderHTML renders the Markdown report as a standalone HTML page
func RenderHTML(r *app.ComparisonReport) []byte {
	return MarkdownToHTML([]byte(RenderMarkdown(r)), "Anchoring Analysis")
}

// MarkdownToHTML converts Markdown with tables into a complete HTML page
func MarkdownToHTML(md []byte, title string) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	doc := p.Parse(md)

	renderer := html.NewRenderer(html.RendererOptions{
		Title: title,
		Flags: html.CommonFlags | html.CompletePage,
	})
	return markdown.Render(doc, renderer)
}
