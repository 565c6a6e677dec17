package report

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/JonMunkholm/senioritydiff/internal/core"
	"github.com/a-h/templ"
)

const pageTitle = "Relatório de Comparação de Listas de Senioridade"

const pageStyle = `body { font-family: Arial, sans-serif; margin: 20px; }
h1, h2 { color: #2c3e50; }
table { border-collapse: collapse; width: 100%; margin: 20px 0; }
th, td { border: 1px solid #ddd; padding: 8px; text-align: left; }
th { background-color: #f2f2f2; }
tr:nth-child(even) { background-color: #f9f9f9; }
.summary { background-color: #e8f4f8; padding: 15px; border-radius: 5px; }
.timestamp { color: #666; font-size: 0.9em; }
.warning { color: #a94442; }`

// HTML renders a standalone report page for a comparison.
func HTML(cmp *core.Comparison) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &printer{w: w}
		r := cmp.Report

		p.raw("<!DOCTYPE html>\n<html lang=\"pt-BR\"><head><meta charset=\"utf-8\">")
		p.raw("<title>").text(pageTitle).raw("</title>")
		p.raw("<style>").raw(pageStyle).raw("</style></head><body>")
		p.raw("<h1>").text(pageTitle).raw("</h1>")
		p.raw(`<p class="timestamp">Gerado em: `).text(cmp.StartedAt.Format("02/01/2006 15:04:05")).raw("</p>")

		p.raw(`<div class="summary"><h2>Resumo</h2>`)
		p.raw(`<p>Lista base: `).text(cmp.Old.Name).raw(`</p>`)
		p.raw(`<p>Lista de comparação: `).text(cmp.New.Name).raw(`</p>`)
		p.raw(`<p>Total na Lista Base: <span id="total-old">`).text(strconv.Itoa(r.TotalOld)).raw("</span></p>")
		p.raw(`<p>Total na Lista de Comparação: <span id="total-new">`).text(strconv.Itoa(r.TotalNew)).raw("</span></p>")
		p.raw(`<p>Total de Diferenças Encontradas: <span id="total-changes">`).text(strconv.Itoa(len(r.Changes))).raw("</span></p>")

		if len(r.Changes) > 0 {
			p.raw(`<table class="counts"><thead><tr><th>Tipo de Mudança</th><th>Quantidade</th></tr></thead><tbody>`)
			for _, row := range Summarize(r) {
				p.raw("<tr><td>").text(row.Label).raw("</td><td>").text(strconv.Itoa(row.Count)).raw("</td></tr>")
			}
			p.raw("</tbody></table>")
		}
		ambiguous(p, "Lista base", r.AmbiguousOld)
		ambiguous(p, "Lista de comparação", r.AmbiguousNew)
		p.raw("</div>")

		p.raw("<h2>Diferenças Detalhadas</h2>")
		if len(r.Changes) == 0 {
			p.raw(`<p class="empty">Nenhuma diferença encontrada.</p>`)
		} else {
			p.raw(`<table class="changes"><thead><tr>`)
			for _, h := range CSVHeader {
				p.raw("<th>").text(h).raw("</th>")
			}
			p.raw("</tr></thead><tbody>")
			for _, c := range r.Changes {
				p.raw(`<tr data-kind="`).text(string(c.Kind)).raw(`">`)
				p.raw("<td>").text(c.Identifier).raw("</td>")
				p.raw("<td>").text(c.Name).raw("</td>")
				p.raw("<td>").text(ChangeLabel(c)).raw("</td>")
				p.raw("<td>").text(c.Detail).raw("</td>")
				p.raw("</tr>")
			}
			p.raw("</tbody></table>")
		}

		p.raw("</body></html>\n")
		return p.err
	})
}

func ambiguous(p *printer, side string, ids []string) {
	if len(ids) == 0 {
		return
	}
	p.raw(`<p class="warning">`).text(fmt.Sprintf("%s: RE repetido (%d): ", side, len(ids)))
	for i, id := range ids {
		if i > 0 {
			p.raw(", ")
		}
		p.text(id)
	}
	p.raw("</p>")
}

// printer writes HTML and remembers the first write error.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) raw(s string) *printer {
	if p.err == nil {
		_, p.err = io.WriteString(p.w, s)
	}
	return p
}

func (p *printer) text(s string) *printer {
	return p.raw(templ.EscapeString(s))
}
