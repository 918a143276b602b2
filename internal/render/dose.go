package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/dshills/medscore/internal/dosing"
)

// MedicationsTable writes the formulary listing.
func MedicationsTable(w io.Writer, meds []*dosing.Medication) error {
	table := tablewriter.NewWriter(w)
	defer func() { _ = table.Close() }()

	table.Header([]string{"ID", "Name", "Standard Dose", "Renal Rules"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignLeft
	})

	var data [][]string
	for _, m := range meds {
		data = append(data, []string{m.ID, m.Name, m.StandardDose, strconv.Itoa(len(m.Renal))})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// DoseTable writes one regimen, one row per dose component.
func DoseTable(w io.Writer, r *dosing.Result) error {
	if _, err := fmt.Fprintf(w, "%s (%s kg)\n%s\n", r.Name, FormatScore(r.Weight), adjustmentLine(r)); err != nil {
		return err
	}

	table := tablewriter.NewWriter(w)
	defer func() { _ = table.Close() }()

	table.Header([]string{"Dose", "Standard", "Adjusted", "Unit"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, d := range r.Doses {
		name := d.Name
		if name == r.Primary.Name {
			name += " *"
		}
		data = append(data, []string{name, formatAmount(d.Amount), formatAmount(d.Adjusted), d.Unit})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	for _, warn := range r.Warnings {
		if _, err := fmt.Fprintf(w, "! %s\n", warn); err != nil {
			return err
		}
	}
	return nil
}

// DoseMarkdown renders one regimen as Markdown.
func DoseMarkdown(r *dosing.Result) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", r.Name)
	fmt.Fprintf(&b, "**Standard dose:** %s\n", r.StandardDose)
	fmt.Fprintf(&b, "**Weight:** %s kg\n", FormatScore(r.Weight))
	fmt.Fprintf(&b, "**Renal:** %s (x%s)\n", r.RenalNote, formatAmount(r.RenalFactor))
	if r.HepaticNote != "" {
		fmt.Fprintf(&b, "**Hepatic:** %s (x%s)\n", r.HepaticNote, formatAmount(r.HepaticFactor))
	}
	fmt.Fprintf(&b, "**Recommended:** %s %s %s\n\n", r.Primary.Name, formatAmount(r.Primary.Adjusted), r.Primary.Unit)

	b.WriteString("| Dose | Standard | Adjusted | Unit |\n")
	b.WriteString("|------|----------|----------|------|\n")
	for _, d := range r.Doses {
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", d.Name, formatAmount(d.Amount), formatAmount(d.Adjusted), d.Unit)
	}
	b.WriteString("\n")

	if len(r.Warnings) > 0 {
		b.WriteString("## Warnings\n\n")
		for _, warn := range r.Warnings {
			fmt.Fprintf(&b, "- %s\n", warn)
		}
		b.WriteString("\n")
	}
	if len(r.References) > 0 {
		b.WriteString("## References\n\n")
		for _, s := range r.References {
			fmt.Fprintf(&b, "- %s (updated %s)\n", s.Name, s.Updated)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func adjustmentLine(r *dosing.Result) string {
	s := r.RenalNote
	if r.HepaticNote != "" {
		s += "; " + r.HepaticNote
	}
	return s
}

// formatAmount prints f with the fewest digits that represent it exactly.
func formatAmount(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
