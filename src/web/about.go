// This file is part of godchecker.

// godchecker is free software released under the MIT License.
// See LICENSE.md file for details.

package web

import (
	"bytes"
	"html/template"
	"net/http"

	"github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// markdownRenderer is the global markdown renderer with syntax highlighting
var markdownRenderer goldmark.Markdown

func init() {
	markdownRenderer = goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Typographer,
			highlighting.NewHighlighting(
				highlighting.WithStyle("dracula"),
				highlighting.WithFormatOptions(
					html.WithLineNumbers(true),
					html.WithClasses(true),
				),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			gmhtml.WithHardWraps(),
			gmhtml.WithXHTML(),
		),
	)
}

// renderMarkdown converts markdown text to HTML
func renderMarkdown(markdown string) template.HTML {
	var buf bytes.Buffer
	if err := markdownRenderer.Convert([]byte(markdown), &buf); err != nil {
		// On error, return escaped HTML
		return template.HTML("<pre>" + template.HTMLEscapeString(markdown) + "</pre>")
	}
	return template.HTML(buf.String())
}

var aboutPage = template.Must(template.New("about").Parse(`<!DOCTYPE html>
<html lang="ja">
<head>
<meta charset="utf-8">
<title>{{.Title}} - About</title>
<meta name="viewport" content="width=device-width, initial-scale=1">
</head>
<body>
{{.Body}}
</body>
</html>
`))

// Pattern: /about
func (data *Data) handleAbout(rw http.ResponseWriter, req *http.Request) error {
	md, err := embFS.ReadFile("data/ABOUT.md")
	if err != nil {
		return err
	}

	rw.Header().Set("Content-Type", "text/html; charset=utf-8")
	return aboutPage.Execute(rw, map[string]any{
		"Title": data.Title,
		"Body":  renderMarkdown(string(md)),
	})
}
