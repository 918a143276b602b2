package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/dshills/medscore/internal/config"
	"github.com/dshills/medscore/internal/render"
	"github.com/dshills/medscore/internal/risk"
)

func newCheckCmd(a *app) *cobra.Command {
	f := &inputFlags{}

	cmd := &cobra.Command{
		Use:   "check <scale>",
		Short: "Validate input for a scale and list every problem without scoring",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(a, cmd.InOrStdin(), args[0], f)
		},
	}
	f.register(cmd)
	return cmd
}

func runCheck(a *app, stdin io.Reader, scale string, f *inputFlags) error {
	in, err := readInputs(f.input, f.sets, stdin)
	if err != nil {
		return exitError(3, "failed to read input: %v", err)
	}

	errs, err := a.engine.Check(scale, in)
	if err != nil {
		return engineExit(err)
	}

	if a.cfg.Output == config.OutputJSON {
		if errs == nil {
			errs = []risk.ValidationError{}
		}
		if err := render.JSON(a.stdout, map[string]any{"valid": len(errs) == 0, "errors": errs}); err != nil {
			return err
		}
	} else if len(errs) == 0 {
		fmt.Fprintln(a.stdout, "ok")
	} else {
		for _, e := range errs {
			fmt.Fprintf(a.stdout, "%s: %s\n", e.Field, e.Constraint)
		}
	}

	if len(errs) > 0 {
		return exitError(5, "%d invalid field(s) for %s", len(errs), scale)
	}
	return nil
}
