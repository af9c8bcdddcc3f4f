package render

import (
	"bytes"
	"html/template"

	"github.com/keatontom/salesforce-opportunity-analysis/internal/analysis"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

var pageTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: system-ui, sans-serif; margin: 2rem auto; max-width: 72rem; color: #1f2933; }
table { border-collapse: collapse; margin-bottom: 1rem; }
th, td { border: 1px solid #cbd2d9; padding: 0.3rem 0.6rem; text-align: left; vertical-align: top; }
th { background: #f5f7fa; }
</style>
</head>
<body>
{{.Body}}
</body>
</html>
`))

// MarkdownToHTML converts a markdown fragment to HTML. Raw HTML in the
// source is dropped.
func MarkdownToHTML(md string) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.HrefTargetBlank | html.SkipHTML})
	return markdown.ToHTML([]byte(md), p, renderer)
}

// HTML renders the report as a standalone HTML page.
func HTML(r *analysis.Report) ([]byte, error) {
	body := MarkdownToHTML(Markdown(r))
	title := "Opportunity Analysis"
	if r.Source != "" {
		title += " - " + r.Source
	}

	var buf bytes.Buffer
	err := pageTemplate.Execute(&buf, struct {
		Title string
		Body  template.HTML
	}{Title: title, Body: template.HTML(body)})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
