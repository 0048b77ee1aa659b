package view

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/yuin/goldmark"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// Raw HTML in message text is dropped by goldmark unless WithUnsafe is set.
var markdown = goldmark.New(goldmark.WithRendererOptions(gmhtml.WithHardWraps()))

// Message text echoes user input, so markup characters are turned into entities before
// Markdown sees them and show up literally.
var entityEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// RenderText renders message prose. Only Markdown formatting such as **bold** is interpreted.
func RenderText(text string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(entityEscaper.Replace(text)), &buf); err != nil {
		return "", fmt.Errorf("render text: %w", err)
	}
	return template.HTML(buf.String()), nil //nolint:gosec // goldmark output with raw HTML disabled
}

var messageTemplate = template.Must(template.New("message").Parse(`
{{- define "bar" -}}
<div class="resource-row">
  <span class="resource-label">{{.Label}}</span>
  <div class="resource-bar-wrap"><div class="resource-bar-fill tier-{{.Tier}}" style="width: {{.Percent}}%"></div></div>
  <span class="resource-pct">{{.Caption}}</span>
</div>
{{- end -}}

{{- define "node" -}}
<div class="node-row{{if .Down}} node-down{{end}}">
  <div class="node-name"><span class="node-dot">{{if .Down}}🔴{{else}}🟢{{end}}</span> {{.Name}}</div>
  <div class="node-meta">
    <span class="node-role">{{.Roles}}</span>
    <span class="node-state{{if .Down}} tier-critical{{else}} tier-ok{{end}}">{{.State}}</span>
  </div>
  {{- range .Bars}}{{template "bar" .}}{{end}}
</div>
{{- end -}}

{{- define "card" -}}
<div class="result-card{{if .Warning}} card-warning{{end}}">
  <div class="result-card-header">
    <div class="result-card-title">{{.Icon}} {{.Title}}</div>
    {{- with .Badge}}
    <span class="result-card-badge tier-{{.Tier}}">{{.Icon}} {{.Label}}</span>
    {{- end}}
  </div>
  <div class="result-card-body">
    {{- range .Fields}}
    <div class="result-card-row">
      <span class="result-card-label">{{.Label}}:</span>
      <span class="result-card-value">{{.Value}}{{if .Note}} <span class="result-card-note tier-{{.NoteTier}}">{{.Note}}</span>{{end}}</span>
    </div>
    {{- end}}
    {{- range .Bars}}{{template "bar" .}}{{end}}
    {{- if .Nodes}}
    <div class="nodes-section">
      <div class="nodes-section-title">Nodes</div>
      {{- range .Nodes}}{{template "node" .}}{{end}}
    </div>
    {{- end}}
  </div>
</div>
{{- end -}}

<div class="message-text{{if .Error}} message-error{{end}}">{{.Text}}</div>
{{- if .Cards}}
<div class="results-grid">
  {{- range .Cards}}{{template "card" .}}{{end}}
</div>
{{- end}}
`))

type renderData struct {
	Text  template.HTML
	Error bool
	Cards []Card
}

// Render produces the HTML fragment for m. Every value except the Markdown-rendered text
// is escaped by html/template.
func Render(m Message) (template.HTML, error) {
	text, err := RenderText(m.Text)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := messageTemplate.Execute(&buf, renderData{Text: text, Error: m.Error, Cards: m.Cards}); err != nil {
		return "", fmt.Errorf("render message: %w", err)
	}
	return template.HTML(buf.String()), nil //nolint:gosec // produced by html/template
}
