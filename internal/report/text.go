package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/JonMunkholm/senioritydiff/internal/core"
)

// WriteText writes a terminal summary of a comparison followed by the
// change list as aligned columns.
func WriteText(w io.Writer, cmp *core.Comparison) error {
	r := cmp.Report
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "Lista base:\t%s\t(%d)\n", cmp.Old.Name, r.TotalOld)
	fmt.Fprintf(tw, "Lista de comparação:\t%s\t(%d)\n", cmp.New.Name, r.TotalNew)
	fmt.Fprintf(tw, "Diferenças:\t%d\t\n", len(r.Changes))
	for _, row := range Summarize(r) {
		fmt.Fprintf(tw, "  %s\t%d\t\n", row.Label, row.Count)
	}
	if len(r.AmbiguousOld) > 0 {
		fmt.Fprintf(tw, "RE repetido (base):\t%s\t\n", strings.Join(r.AmbiguousOld, ", "))
	}
	if len(r.AmbiguousNew) > 0 {
		fmt.Fprintf(tw, "RE repetido (comparação):\t%s\t\n", strings.Join(r.AmbiguousNew, ", "))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(r.Changes) == 0 {
		_, err := fmt.Fprintln(w, "\nNenhuma diferença encontrada.")
		return err
	}

	fmt.Fprintln(w)
	tw = tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(CSVHeader, "\t"))
	for _, c := range r.Changes {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", c.Identifier, c.Name, ChangeLabel(c), c.Detail)
	}
	return tw.Flush()
}

// lookupLabels names lookup outcomes the way the report names changes.
var lookupLabels = map[core.LookupStatus]string{
	core.LookupNotFound: "NÃO ENCONTRADO",
	core.LookupNewEntry: LabelEntry,
	core.LookupExit:     LabelExit,
	core.LookupChanged:  "PRESENTE NAS DUAS LISTAS",
}

// WriteLookup writes one person's status and, when listed in both rosters,
// the fields that changed.
func WriteLookup(w io.Writer, res *core.LookupResult) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "RE:\t%s\n", res.Identifier)
	fmt.Fprintf(tw, "Situação:\t%s\n", lookupLabels[res.Status])

	rec := res.New
	if rec == nil {
		rec = res.Old
	}
	if name := rec.Name(); name != "" {
		fmt.Fprintf(tw, "Nome:\t%s\n", name)
	}

	if res.Status == core.LookupChanged {
		if len(res.Changes) == 0 {
			fmt.Fprintln(tw, "Mudanças:\tnenhuma")
		}
		for _, c := range res.Changes {
			fmt.Fprintf(tw, "%s:\t%s\n", ChangeLabel(c), c.Detail)
		}
	}
	return tw.Flush()
}
