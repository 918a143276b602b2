package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dshills/medscore/internal/catalog"
	"github.com/dshills/medscore/internal/config"
	"github.com/dshills/medscore/internal/render"
)

func newScalesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "scales [scale]",
		Short: "List the supported scales, or describe one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				return runDescribe(a, args[0])
			}
			return runList(a)
		},
	}
}

func runList(a *app) error {
	scales := a.engine.Catalog().List()
	switch a.cfg.Output {
	case config.OutputJSON:
		return render.JSON(a.stdout, scales)
	case config.OutputMarkdown:
		for _, s := range scales {
			fmt.Fprintf(a.stdout, "- **%s** (`%s`): %s\n", s.Name, s.ID, s.Description)
		}
		return nil
	default:
		return render.ScalesTable(a.stdout, scales)
	}
}

func runDescribe(a *app, name string) error {
	s, err := a.engine.Catalog().Get(name)
	if err != nil {
		return engineExit(err)
	}
	switch a.cfg.Output {
	case config.OutputJSON:
		return render.JSON(a.stdout, s)
	case config.OutputMarkdown:
		_, err := io.WriteString(a.stdout, render.ScaleMarkdown(s))
		return err
	default:
		fmt.Fprintf(a.stdout, "%s (%s)\n%s\n\n", s.Name, s.ID, s.Description)
		if err := render.FieldsTable(a.stdout, s); err != nil {
			return err
		}
		if s.Tiered() {
			fmt.Fprintln(a.stdout)
			if err := render.TiersTable(a.stdout, s, a.useColor()); err != nil {
				return err
			}
		} else if s.Interpretation != "" {
			fmt.Fprintf(a.stdout, "\n%s\n", s.Interpretation)
		}
		if len(s.References) > 0 {
			fmt.Fprintf(a.stdout, "\nReferences:\n%s", references(s))
		}
		return nil
	}
}

func references(s *catalog.Scale) string {
	var b strings.Builder
	for _, r := range s.References {
		fmt.Fprintf(&b, "  %s\n", render.Citation(r))
	}
	return b.String()
}
