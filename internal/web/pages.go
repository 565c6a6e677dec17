package web

import (
	"context"
	"io"
	"strings"

	"github.com/JonMunkholm/senioritydiff/internal/core"
	"github.com/a-h/templ"
)

const indexTitle = "Comparador de Listas de Senioridade"

const indexStyle = `body { font-family: Arial, sans-serif; margin: 20px; max-width: 760px; }
h1, h2 { color: #2c3e50; }
form { border: 1px solid #ddd; border-radius: 5px; padding: 15px; margin: 20px 0; }
label { display: block; margin: 8px 0 4px; }
button { margin-top: 12px; }
.sources { color: #666; font-size: 0.9em; }`

// uploadPage renders the landing page with the compare and lookup forms.
// Both forms post straight to the API; compare defaults to the HTML report.
func uploadPage(sources []core.SourceInfo) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &page{w: w}
		accept := acceptList(sources)

		p.raw("<!DOCTYPE html>\n<html lang=\"pt-BR\"><head><meta charset=\"utf-8\">")
		p.raw("<title>").text(indexTitle).raw("</title>")
		p.raw("<style>").raw(indexStyle).raw("</style></head><body>")
		p.raw("<h1>").text(indexTitle).raw("</h1>")

		p.raw(`<form id="compare" method="post" action="/api/compare" enctype="multipart/form-data">`)
		p.raw("<h2>Comparar listas</h2>")
		fileInput(p, "old", "Lista base", accept)
		fileInput(p, "new", "Lista de comparação", accept)
		p.raw(`<label for="format">Formato do relatório</label><select id="format" name="format">`)
		p.raw(`<option value="html" selected>HTML</option>`)
		p.raw(`<option value="csv">CSV</option>`)
		p.raw(`<option value="json">JSON</option>`)
		p.raw("</select>")
		p.raw(`<button type="submit">Comparar</button></form>`)

		p.raw(`<form id="lookup" method="post" action="/api/lookup" enctype="multipart/form-data">`)
		p.raw("<h2>Consultar RE</h2>")
		fileInput(p, "old", "Lista base", accept)
		fileInput(p, "new", "Lista de comparação", accept)
		p.raw(`<label for="re">RE</label><input type="text" id="re" name="re" inputmode="numeric" required>`)
		p.raw(`<button type="submit">Consultar</button></form>`)

		if len(sources) > 0 {
			p.raw(`<div class="sources"><p>Formatos aceitos:</p><ul>`)
			for _, src := range sources {
				p.raw(`<li data-source="`).text(src.Key).raw(`">`).text(src.Label)
				if len(src.Extensions) > 0 {
					p.text(" (" + strings.Join(src.Extensions, ", ") + ")")
				}
				p.raw("</li>")
			}
			p.raw("</ul></div>")
		}

		p.raw("</body></html>\n")
		return p.err
	})
}

func fileInput(p *page, name, label, accept string) {
	p.raw(`<label>`).text(label)
	p.raw(`<input type="file" name="`).text(name).raw(`" required`)
	if accept != "" {
		p.raw(` accept="`).text(accept).raw(`"`)
	}
	p.raw("></label>")
}

// acceptList builds the file input accept attribute from the registered extensions.
func acceptList(sources []core.SourceInfo) string {
	var exts []string
	for _, src := range sources {
		exts = append(exts, src.Extensions...)
	}
	return strings.Join(exts, ",")
}

// page writes HTML and keeps the first write error.
type page struct {
	w   io.Writer
	err error
}

func (p *page) raw(s string) *page {
	if p.err == nil {
		_, p.err = io.WriteString(p.w, s)
	}
	return p
}

func (p *page) text(s string) *page {
	return p.raw(templ.EscapeString(s))
}
