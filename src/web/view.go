// This file is part of godchecker.

// godchecker is free software released under the MIT License.
// See LICENSE.md file for details.

package web

import (
	"bytes"
	"html/template"
	"net/http"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"

	"github.com/godchecker/godchecker/src/feed"
)

func tryHighlight(source string, lexer string, theme string) template.HTML {
	l := lexers.Get(lexer)
	if l == nil {
		l = lexers.Analyse(source)
	}
	if l == nil {
		return template.HTML(template.HTMLEscapeString(source))
	}

	l = chroma.Coalesce(l)

	f := html.New(
		html.Standalone(false),
		html.WithClasses(false),
		html.TabWidth(4),
		html.WithLineNumbers(true),
		html.WrapLongLines(true),
	)

	s := styles.Get(theme)

	it, err := l.Tokenise(nil, source)
	if err != nil {
		return template.HTML(template.HTMLEscapeString(source))
	}

	var buf bytes.Buffer
	if err := f.Format(&buf, s, it); err != nil {
		return template.HTML(template.HTMLEscapeString(source))
	}

	return template.HTML(buf.String())
}

var viewPage = template.Must(template.New("view").Parse(`<!DOCTYPE html>
<html lang="ja">
<head>
<meta charset="utf-8">
<title>{{.Title}} - Feed</title>
<meta name="viewport" content="width=device-width, initial-scale=1">
<style>body{margin:0;background:#282a36}</style>
</head>
<body>
{{.Code}}
</body>
</html>
`))

// Pattern: /view
//
// Operator page: the current feed document rendered as highlighted JSON.
func (data *Data) handleView(rw http.ResponseWriter, req *http.Request) error {
	items, err := data.DB.LoadItems(req.Context())
	if err != nil {
		return err
	}

	doc, err := feed.Encode(items)
	if err != nil {
		return err
	}

	rw.Header().Set("Content-Type", "text/html; charset=utf-8")
	return viewPage.Execute(rw, map[string]any{
		"Title": data.Title,
		"Code":  tryHighlight(string(doc), "JSON", "dracula"),
	})
}
