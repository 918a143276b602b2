// Package render produces Markdown, JSON, and table output from scored results.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/dshills/medscore/internal/cases"
	"github.com/dshills/medscore/internal/catalog"
	"github.com/dshills/medscore/internal/risk"
)

// Markdown renders results as a Markdown report grouped by tier.
// Scale names are looked up in cat when it is non-nil.
func Markdown(results []risk.Result, cat *catalog.Catalog) string {
	var b strings.Builder

	sum := risk.Summarize(results)
	b.WriteString("# Risk Assessment\n\n")
	fmt.Fprintf(&b, "**Results:** %d scored\n", sum.Total)
	fmt.Fprintf(&b, "**Tiers:** %d critical, %d high, %d medium, %d low, %d untiered\n\n",
		sum.Critical, sum.High, sum.Medium, sum.Low, sum.Untiered)

	if len(results) == 0 {
		b.WriteString("No results.\n\n")
		return b.String()
	}

	sections := []struct {
		title string
		tier  risk.Tier
	}{
		{"Critical", risk.TierCritical},
		{"High", risk.TierHigh},
		{"Medium", risk.TierMedium},
		{"Low", risk.TierLow},
		{"Untiered", risk.TierNone},
	}
	for _, sec := range sections {
		group := filterResults(results, sec.tier)
		if len(group) == 0 {
			continue
		}
		fmt.Fprintf(&b, "## %s\n\n", sec.title)
		for _, r := range group {
			renderResult(&b, r, cat)
		}
	}
	return b.String()
}

func filterResults(results []risk.Result, tier risk.Tier) []risk.Result {
	var out []risk.Result
	for _, r := range results {
		if r.Tier == tier {
			out = append(out, r)
		}
	}
	return out
}

func renderResult(b *strings.Builder, r risk.Result, cat *catalog.Catalog) {
	name := string(r.Scale)
	if cat != nil {
		if s, err := cat.Get(string(r.Scale)); err == nil {
			name = s.Name
		}
	}
	fmt.Fprintf(b, "### %s\n\n", name)
	fmt.Fprintf(b, "**Score:** %s", FormatScore(r.Score))
	if r.Unit != "" {
		fmt.Fprintf(b, " %s", r.Unit)
	}
	if float64(r.Rounded) != r.Score {
		fmt.Fprintf(b, " (reported %d)", r.Rounded)
	}
	b.WriteString("\n")
	if r.Tier != risk.TierNone {
		fmt.Fprintf(b, "**Tier:** %s\n", r.Tier)
	}
	b.WriteString("\n")
	if r.Interpretation != "" {
		fmt.Fprintf(b, "%s\n\n", r.Interpretation)
	}
	if r.RiskPercent != nil {
		fmt.Fprintf(b, "**Estimated %s:** %s%%\n\n", r.RiskOutcome, formatAmount(*r.RiskPercent))
	}

	b.WriteString("| Criterion | Points |\n|---|---:|\n")
	for _, c := range r.Explanation {
		fmt.Fprintf(b, "| %s | %s |\n", c.Criterion, formatPoints(c.Points))
	}
	b.WriteString("\n")

	if len(r.Recommendations) > 0 {
		b.WriteString("**Recommendations:**\n")
		for _, rec := range r.Recommendations {
			fmt.Fprintf(b, "- %s\n", rec)
		}
		b.WriteString("\n")
	}
	if len(r.Pathway) > 0 {
		b.WriteString("| Priority | Action | Rationale |\n|---|---|---|\n")
		for _, s := range r.Pathway {
			fmt.Fprintf(b, "| %s | %s | %s |\n", s.Priority, s.Action, s.Rationale)
		}
		b.WriteString("\n")
	}

	if keys := r.InputKeys(); len(keys) > 0 {
		b.WriteString("**Inputs:**\n")
		for _, k := range keys {
			fmt.Fprintf(b, "- %s: %v\n", k, r.Inputs[k])
		}
		b.WriteString("\n")
	}
}

// VerifyMarkdown renders a case-suite run as a Markdown report.
func VerifyMarkdown(rep *cases.Report) string {
	var b strings.Builder

	b.WriteString("# Verification Report\n\n")
	if rep.Suite != "" {
		fmt.Fprintf(&b, "**Suite:** %s\n", rep.Suite)
	}
	fmt.Fprintf(&b, "**Hash:** %s\n", rep.Hash)
	fmt.Fprintf(&b, "**Run:** %s\n", rep.RunID)
	fmt.Fprintf(&b, "**Cases:** %d passed, %d failed\n\n", rep.Passed, rep.Failed)

	if rep.OK() {
		b.WriteString("All cases passed.\n\n")
	} else {
		b.WriteString("## Failures\n\n")
		for _, o := range rep.Outcomes {
			if o.Passed {
				continue
			}
			fmt.Fprintf(&b, "### %s [%s]\n\n", o.Case.Name, o.Case.Scale)
			fmt.Fprintf(&b, "%s\n\n", o.Reason)
			if o.Case.Note != "" {
				fmt.Fprintf(&b, "> %s\n\n", o.Case.Note)
			}
		}
	}

	var notes []cases.Outcome
	for _, o := range rep.Outcomes {
		if o.Passed && o.Case.Note != "" {
			notes = append(notes, o)
		}
	}
	if len(notes) > 0 {
		b.WriteString("## Notes\n\n")
		for _, o := range notes {
			fmt.Fprintf(&b, "- %s: %s\n", o.Case.Name, o.Case.Note)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// JSON writes v as indented JSON followed by a newline.
func JSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("render.JSON: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// FormatScore prints integral scores without a fraction and others to two places.
func FormatScore(f float64) string {
	if f == math.Trunc(f) {
		return strconv.FormatFloat(f, 'f', 0, 64)
	}
	return strconv.FormatFloat(f, 'f', 2, 64)
}

func formatPoints(f float64) string {
	if f == math.Trunc(f) {
		return strconv.FormatFloat(f, 'f', 0, 64)
	}
	return strconv.FormatFloat(f, 'f', 3, 64)
}
