package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dshills/medscore/internal/cases"
	"github.com/dshills/medscore/internal/catalog"
	"github.com/dshills/medscore/internal/config"
	"github.com/dshills/medscore/internal/redact"
	"github.com/dshills/medscore/internal/render"
)

type verifyFlags struct {
	failOn string
	out    string
}

func newVerifyCmd(a *app) *cobra.Command {
	f := &verifyFlags{}

	cmd := &cobra.Command{
		Use:   "verify <cases-file>",
		Short: "Run a suite of worked examples through the engine and report mismatches",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(a, args[0], f)
		},
	}
	cmd.Flags().StringVar(&f.failOn, "fail-on", "", "Exit 2 when the run meets this condition: mismatch")
	cmd.Flags().StringVar(&f.out, "out", "", "Output file path (default: stdout)")
	return cmd
}

func runVerify(a *app, path string, f *verifyFlags) error {
	failOn := strings.ToLower(strings.TrimSpace(f.failOn))
	if failOn != "" && failOn != "mismatch" {
		return exitError(3, "unknown --fail-on value %q: want mismatch", f.failOn)
	}

	suite, err := cases.Load(path)
	if err != nil {
		return exitError(3, "failed to load cases: %v", err)
	}
	a.logger.Debug("loaded cases", "path", path, "hash", suite.Hash, "cases", len(suite.Cases))

	rep := cases.Run(a.engine, suite)
	if a.cfg.Redact {
		redactReport(rep, a.engine.Catalog())
	}
	a.logger.Info("verification complete", "run_id", rep.RunID, "passed", rep.Passed, "failed", rep.Failed)

	err = emit(a.stdout, f.out, func(w io.Writer) error {
		switch a.cfg.Output {
		case config.OutputJSON:
			return render.JSON(w, rep)
		case config.OutputMarkdown:
			_, err := io.WriteString(w, render.VerifyMarkdown(rep))
			return err
		default:
			if err := render.VerifyTable(w, rep, a.useColor()); err != nil {
				return err
			}
			_, err := fmt.Fprintf(w, "%d passed, %d failed\n", rep.Passed, rep.Failed)
			return err
		}
	})
	if err != nil {
		return err
	}

	if failOn == "mismatch" && !rep.OK() {
		return exitError(2, "%d of %d cases did not match", rep.Failed, rep.Passed+rep.Failed)
	}
	return nil
}

// redactReport scrubs free text that may carry patient identifiers.
// Echoed case inputs keep only the fields the scale declares.
func redactReport(rep *cases.Report, cat *catalog.Catalog) {
	rep.Suite = redact.Redact(rep.Suite)
	for i := range rep.Outcomes {
		o := &rep.Outcomes[i]
		o.Case.Name = redact.Redact(o.Case.Name)
		o.Case.Note = redact.Redact(o.Case.Note)
		o.Case.Inputs = redactInputs(o.Case.Inputs, cat, o.Case.Scale)
		o.Reason = redact.Redact(o.Reason)
	}
}

func redactInputs(in map[string]any, cat *catalog.Catalog, scale string) map[string]any {
	s, err := cat.Get(scale)
	out := make(map[string]any, len(in))
	for k, v := range in {
		if err == nil {
			if _, ok := s.Field(k); !ok {
				continue
			}
		}
		if str, ok := v.(string); ok {
			v = redact.Redact(str)
		}
		out[k] = v
	}
	return out
}
