package output

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"strings"
)

// markupRow is a document row flattened for the markup formats.
type markupRow struct {
	Label   string
	Depth   int
	Matched bool
	Cells   []string
}

func flatten(doc *Document) []markupRow {
	var out []markupRow

	var walk func(rows []Row)
	walk = func(rows []Row) {
		for _, r := range rows {
			cells := make([]string, len(doc.Columns))
			for i, c := range doc.Columns {
				if v, ok := r.Values[c.ID]; ok && v != nil {
					cells[i] = fmt.Sprint(v)
				}
			}

			out = append(out, markupRow{Label: r.ID, Depth: r.Depth, Matched: r.Matched, Cells: cells})
			walk(r.SubRows)
		}
	}

	walk(doc.Rows)

	return out
}

func headers(doc *Document) []string {
	hs := make([]string, len(doc.Columns))
	for i, c := range doc.Columns {
		hs[i] = c.Header
		if hs[i] == "" {
			hs[i] = c.ID
		}
	}

	return hs
}

func title(doc *Document) string {
	if doc.Query == "" {
		return "Rows"
	}

	return fmt.Sprintf("Rows matching %q", doc.Query)
}

// ---------------------------------------------------------------------------
// Markdown
// ---------------------------------------------------------------------------

// Markdown renders the document as a Markdown table. Nesting is shown by
// indenting the row id; matched rows are bold.
func Markdown(doc *Document) ([]byte, error) {
	var b bytes.Buffer

	fmt.Fprintf(&b, "# %s\n\n", title(doc))
	fmt.Fprintf(&b, "Showing %d of %d rows.\n\n", doc.Shown, doc.Total)

	hs := headers(doc)

	fmt.Fprintf(&b, "| Row | %s |\n", strings.Join(hs, " | "))
	fmt.Fprintf(&b, "|-----|%s\n", strings.Repeat("-----|", len(hs)))

	for _, r := range flatten(doc) {
		label := strings.Repeat("&nbsp;&nbsp;", r.Depth) + "`" + r.Label + "`"

		cells := make([]string, len(r.Cells))
		for i, c := range r.Cells {
			cells[i] = escapeMarkdown(c)
			if r.Matched && c != "" {
				cells[i] = "**" + cells[i] + "**"
			}
		}

		fmt.Fprintf(&b, "| %s | %s |\n", label, strings.Join(cells, " | "))
	}

	return b.Bytes(), nil
}

func escapeMarkdown(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// ---------------------------------------------------------------------------
// HTML
// ---------------------------------------------------------------------------

var htmlTpl = template.Must(template.New("rows").Funcs(template.FuncMap{
	"indent": func(depth int) int { return depth * 16 },
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body{font-family:sans-serif;margin:2em;line-height:1.6}
table{border-collapse:collapse;width:100%;margin-bottom:1em}
th,td{border:1px solid #ddd;padding:8px;text-align:left}
th{background:#f5f5f5}
tr.matched td{background:#fff8c5}
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<p>Showing {{.Shown}} of {{.Total}} rows.</p>
<table>
<tr><th>Row</th>{{range .Headers}}<th>{{.}}</th>{{end}}</tr>
{{range .Rows}}<tr{{if .Matched}} class="matched"{{end}}><td style="padding-left:{{indent .Depth}}px"><code>{{.Label}}</code></td>{{range .Cells}}<td>{{.}}</td>{{end}}</tr>
{{end}}</table>
</body>
</html>
`))

type htmlModel struct {
	Title   string
	Shown   int
	Total   int
	Headers []string
	Rows    []markupRow
}

// HTML renders the document as a standalone HTML page.
func HTML(doc *Document) ([]byte, error) {
	var b bytes.Buffer

	err := htmlTpl.Execute(&b, htmlModel{
		Title:   title(doc),
		Shown:   doc.Shown,
		Total:   doc.Total,
		Headers: headers(doc),
		Rows:    flatten(doc),
	})
	if err != nil {
		return nil, fmt.Errorf("rendering HTML: %w", err)
	}

	return b.Bytes(), nil
}

// ---------------------------------------------------------------------------
// AsciiDoc
// ---------------------------------------------------------------------------

// AsciiDoc renders the document as an AsciiDoc table.
func AsciiDoc(doc *Document) ([]byte, error) {
	var b bytes.Buffer

	writeAsciiDoc(&b, doc)

	return b.Bytes(), nil
}

func writeAsciiDoc(w io.Writer, doc *Document) {
	hs := headers(doc)

	fmt.Fprintf(w, "= %s\n\n", title(doc))
	fmt.Fprintf(w, "Showing %d of %d rows.\n\n", doc.Shown, doc.Total)
	fmt.Fprintf(w, "[cols=\"%s\", options=\"header\"]\n", strings.TrimSuffix(strings.Repeat("1,", len(hs)+1), ","))
	fmt.Fprintln(w, "|===")
	fmt.Fprintf(w, "| Row | %s\n", strings.Join(hs, " | "))

	for _, r := range flatten(doc) {
		fmt.Fprintf(w, "\n| %s`%s`\n", strings.Repeat("{nbsp}{nbsp}", r.Depth), r.Label)

		for _, c := range r.Cells {
			c = strings.ReplaceAll(c, "|", `\|`)
			if r.Matched && c != "" {
				c = "*" + c + "*"
			}

			fmt.Fprintf(w, "| %s\n", c)
		}
	}

	fmt.Fprintln(w, "|===")
}
