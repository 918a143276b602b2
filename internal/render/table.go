package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dshills/medscore/internal/cases"
	"github.com/dshills/medscore/internal/catalog"
	"github.com/dshills/medscore/internal/risk"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

var (
	criticalColor = color.New(color.FgRed, color.Bold)
	highColor     = color.New(color.FgMagenta, color.Bold)
	mediumColor   = color.New(color.FgYellow)
	lowColor      = color.New(color.FgCyan)
)

// TierLabel returns the tier name, coloured by severity when useColor is set.
func TierLabel(t risk.Tier, useColor bool) string {
	label := string(t)
	if t == risk.TierNone {
		label = "-"
	}
	if !useColor {
		return label
	}
	switch t {
	case risk.TierCritical:
		return criticalColor.Sprint(label)
	case risk.TierHigh:
		return highColor.Sprint(label)
	case risk.TierMedium:
		return mediumColor.Sprint(label)
	case risk.TierLow:
		return lowColor.Sprint(label)
	default:
		return label
	}
}

// Table writes results as a human-readable table.
func Table(w io.Writer, results []risk.Result, useColor bool) error {
	table := tablewriter.NewWriter(w)
	defer func() { _ = table.Close() }()

	table.Header([]string{"Scale", "Score", "Reported", "Unit", "Tier", "Interpretation"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, r := range results {
		data = append(data, []string{
			string(r.Scale),
			FormatScore(r.Score),
			strconv.Itoa(r.Rounded),
			r.Unit,
			TierLabel(r.Tier, useColor),
			r.Interpretation,
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// ExplanationTable writes the per-criterion breakdown of one result.
func ExplanationTable(w io.Writer, r *risk.Result) error {
	table := tablewriter.NewWriter(w)
	defer func() { _ = table.Close() }()

	table.Header([]string{"Criterion", "Points"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, c := range r.Explanation {
		data = append(data, []string{c.Criterion, formatPoints(c.Points)})
	}
	data = append(data, []string{"total", FormatScore(r.Score)})
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// GuidanceTable writes the outcome estimate, recommendations, and management
// pathway of one result. Nothing is written when the result carries no guidance.
func GuidanceTable(w io.Writer, r *risk.Result) error {
	if r.RiskPercent != nil {
		if _, err := fmt.Fprintf(w, "Estimated %s: %s%%\n", r.RiskOutcome, formatAmount(*r.RiskPercent)); err != nil {
			return err
		}
	}
	for _, rec := range r.Recommendations {
		if _, err := fmt.Fprintf(w, "- %s\n", rec); err != nil {
			return err
		}
	}
	if len(r.Pathway) == 0 {
		return nil
	}

	table := tablewriter.NewWriter(w)
	defer func() { _ = table.Close() }()

	table.Header([]string{"Priority", "Action", "Rationale"})
	var data [][]string
	for _, s := range r.Pathway {
		data = append(data, []string{string(s.Priority), s.Action, s.Rationale})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// ScalesTable writes the catalog listing.
func ScalesTable(w io.Writer, scales []*catalog.Scale) error {
	table := tablewriter.NewWriter(w)
	defer func() { _ = table.Close() }()

	table.Header([]string{"ID", "Name", "Range", "Unit", "Tiers", "Fields"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignLeft
	})

	var data [][]string
	for _, s := range scales {
		tiers := "-"
		if s.Tiered() {
			names := make([]string, 0, len(s.Tiers))
			for _, t := range s.Tiers.Tiers() {
				names = append(names, string(t))
			}
			tiers = strings.Join(names, ", ")
		}
		data = append(data, []string{
			string(s.ID),
			s.Name,
			fmt.Sprintf("%s-%s", FormatScore(s.Min), FormatScore(s.Max)),
			s.Unit,
			tiers,
			strconv.Itoa(len(s.Fields)),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// VerifyTable writes one row per case with its pass or fail status.
func VerifyTable(w io.Writer, rep *cases.Report, useColor bool) error {
	table := tablewriter.NewWriter(w)
	defer func() { _ = table.Close() }()

	table.Header([]string{"#", "Case", "Scale", "Expected", "Got", "Status"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	pass, fail := fmt.Sprint, fmt.Sprint
	if useColor {
		pass = color.New(color.FgGreen).SprintFunc()
		fail = color.New(color.FgRed, color.Bold).SprintFunc()
	}

	var data [][]string
	for i, o := range rep.Outcomes {
		status := pass("PASS")
		if !o.Passed {
			status = fail("FAIL")
		}
		data = append(data, []string{
			strconv.Itoa(i + 1),
			o.Case.Name,
			o.Case.Scale,
			expected(o.Case),
			got(o),
			status,
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

func expected(c cases.Case) string {
	if c.Error != "" {
		return c.Error + " error"
	}
	s := FormatScore(*c.Score)
	if c.Tier != risk.TierNone {
		s += " " + string(c.Tier)
	}
	return s
}

func got(o cases.Outcome) string {
	if o.Result == nil {
		if o.Passed {
			return o.Case.Error + " error"
		}
		return "error"
	}
	s := FormatScore(o.Result.Score)
	if o.Result.Tier != risk.TierNone {
		s += " " + string(o.Result.Tier)
	}
	return s
}
