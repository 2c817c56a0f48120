package report

import (
	"bytes"
	"html/template"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Document is the viewmodel every report renders through the shared
// letterhead layout.
type Document struct {
	Title       string
	Subtitle    string
	GeneratedAt time.Time
	Columns     []string
	Rows        [][]string
	Footer      []string
}

// amounts prints money the way the office reads it: grouped thousands,
// two decimal places.
var amounts = message.NewPrinter(language.English)

// FormatAmount renders a decimal amount for the PDF tables.
func FormatAmount(d decimal.Decimal) string {
	f, _ := d.Float64()
	return amounts.Sprintf("%.2f", f)
}

const letterheadHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
  body { font-family: Helvetica, Arial, sans-serif; font-size: 11px; margin: 32px; color: #1a1a1a; }
  header { border-bottom: 2px solid #14532d; padding-bottom: 8px; margin-bottom: 16px; }
  header h1 { margin: 0; font-size: 18px; color: #14532d; }
  header p { margin: 2px 0 0; font-size: 10px; color: #555; }
  h2 { font-size: 14px; margin: 0 0 2px; }
  .subtitle { color: #555; margin: 0 0 12px; }
  table { width: 100%; border-collapse: collapse; }
  th { background: #14532d; color: #fff; text-align: left; padding: 5px 6px; font-size: 10px; }
  td { border-bottom: 1px solid #ddd; padding: 4px 6px; }
  tr:nth-child(even) td { background: #f6f8f6; }
  tfoot td { font-weight: bold; border-top: 2px solid #14532d; border-bottom: none; }
  .generated { margin-top: 16px; font-size: 9px; color: #777; }
</style>
</head>
<body>
<header>
  <h1>Justines Cargo Services</h1>
  <p>Cargo &amp; Logistics Back Office</p>
</header>
<h2>{{.Title}}</h2>
{{if .Subtitle}}<p class="subtitle">{{.Subtitle}}</p>{{end}}
<table>
  <thead>
    <tr>{{range .Columns}}<th>{{.}}</th>{{end}}</tr>
  </thead>
  <tbody>
    {{range .Rows}}<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>
    {{end}}
  </tbody>
  {{if .Footer}}<tfoot>
    <tr>{{range .Footer}}<td>{{.}}</td>{{end}}</tr>
  </tfoot>{{end}}
</table>
<p class="generated">Generated {{.GeneratedAt.Format "Jan 2, 2006 15:04"}}</p>
</body>
</html>`

var letterhead = template.Must(template.New("letterhead").Parse(letterheadHTML))

// RenderHTMLDocument produces the letterhead HTML for a document.
func RenderHTMLDocument(doc Document) (string, error) {
	if doc.GeneratedAt.IsZero() {
		doc.GeneratedAt = time.Now()
	}
	var buf bytes.Buffer
	if err := letterhead.Execute(&buf, doc); err != nil {
		return "", err
	}
	return buf.String(), nil
}
