package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/dshills/medscore/internal/catalog"
	"github.com/dshills/medscore/internal/risk"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// Citation formats a reference as "Authors (Year). Title. Journal Volume:Pages."
func Citation(r catalog.Reference) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%d). %s. %s", r.Authors, r.Year, strings.TrimSuffix(r.Title, "."), r.Journal)
	if r.Volume != "" {
		fmt.Fprintf(&b, " %s", r.Volume)
	}
	if r.Pages != "" {
		fmt.Fprintf(&b, ":%s", r.Pages)
	}
	b.WriteString(".")
	return b.String()
}

// ScaleMarkdown renders a scale definition as Markdown.
func ScaleMarkdown(s *catalog.Scale) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", s.Name)
	fmt.Fprintf(&b, "%s\n\n", s.Description)
	fmt.Fprintf(&b, "**ID:** `%s`\n", s.ID)
	fmt.Fprintf(&b, "**Range:** %s to %s %s\n", FormatScore(s.Min), FormatScore(s.Max), s.Unit)
	if len(s.Categories) > 0 {
		fmt.Fprintf(&b, "**Categories:** %s\n", strings.Join(s.Categories, ", "))
	}
	b.WriteString("\n## Inputs\n\n")
	b.WriteString("| Field | Kind | Allowed | Description |\n|---|---|---|---|\n")
	for _, f := range s.Fields {
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", f.Name, f.Kind, allowed(f), f.Description)
	}
	b.WriteString("\n")

	if s.Tiered() {
		b.WriteString("## Tiers\n\n| Score | Tier | Interpretation |\n|---|---|---|\n")
		for _, band := range s.Tiers {
			fmt.Fprintf(&b, "| %s | %s | %s |\n", bandRange(band, s.Max), band.Tier, band.Interpretation)
		}
		b.WriteString("\n")
	} else if s.Interpretation != "" {
		fmt.Fprintf(&b, "## Interpretation\n\n%s\n\n", s.Interpretation)
	}

	if len(s.References) > 0 {
		b.WriteString("## References\n\n")
		for _, r := range s.References {
			fmt.Fprintf(&b, "- %s\n", Citation(r))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// FieldsTable writes the input schema of a scale.
func FieldsTable(w io.Writer, s *catalog.Scale) error {
	table := tablewriter.NewWriter(w)
	defer func() { _ = table.Close() }()

	table.Header([]string{"Field", "Kind", "Allowed", "Unit", "Description"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignLeft
	})

	var data [][]string
	for _, f := range s.Fields {
		data = append(data, []string{f.Name, string(f.Kind), allowed(f), f.Unit, f.Description})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// TiersTable writes the threshold table of a scale.
func TiersTable(w io.Writer, s *catalog.Scale, useColor bool) error {
	table := tablewriter.NewWriter(w)
	defer func() { _ = table.Close() }()

	table.Header([]string{"Score", "Tier", "Interpretation"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignLeft
	})

	var data [][]string
	for _, band := range s.Tiers {
		data = append(data, []string{bandRange(band, s.Max), TierLabel(band.Tier, useColor), band.Interpretation})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

func allowed(f catalog.Field) string {
	switch {
	case f.Kind == risk.KindBool:
		return "true, false"
	case f.Kind == risk.KindEnum:
		return strings.Join(f.Options, ", ")
	case f.Min != nil && f.Max != nil:
		return fmt.Sprintf("%g-%g", *f.Min, *f.Max)
	case f.Min != nil:
		return fmt.Sprintf(">= %g", *f.Min)
	case f.Max != nil:
		return fmt.Sprintf("<= %g", *f.Max)
	default:
		return "any"
	}
}

// bandRange prints a band as an inclusive range, assuming integral scores.
func bandRange(b risk.Band, max float64) string {
	hi := max
	if b.Below != nil && *b.Below-1 < max {
		hi = *b.Below - 1
	}
	if hi <= b.From {
		return FormatScore(b.From)
	}
	return fmt.Sprintf("%s-%s", FormatScore(b.From), FormatScore(hi))
}
