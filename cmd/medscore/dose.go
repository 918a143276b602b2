package main

import (
	"errors"
	"io"

	"github.com/spf13/cobra"

	"github.com/dshills/medscore/internal/config"
	"github.com/dshills/medscore/internal/dosing"
	"github.com/dshills/medscore/internal/render"
)

func newDoseCmd(a *app) *cobra.Command {
	f := &scoreFlags{}

	cmd := &cobra.Command{
		Use:   "dose [medication]",
		Short: "Calculate a renally adjusted dose, or list the formulary",
		Example: `  medscore dose
  medscore dose gentamicin --set age=65 --set weight=80 --set creatinine=2 --set sex=male
  medscore dose vancomycin --input patient.yaml --set child_pugh=B --output json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return runMedications(a, f.out)
			}
			return runDose(a, cmd.InOrStdin(), args[0], f)
		},
	}
	f.register(cmd)
	cmd.Flags().StringVar(&f.out, "out", "", "Output file path (default: stdout)")
	return cmd
}

func runMedications(a *app, out string) error {
	meds := a.dosing.Formulary().List()
	return emit(a.stdout, out, func(w io.Writer) error {
		if a.cfg.Output == config.OutputJSON {
			return render.JSON(w, meds)
		}
		return render.MedicationsTable(w, meds)
	})
}

func runDose(a *app, stdin io.Reader, medication string, f *scoreFlags) error {
	in, err := readInputs(f.input, f.sets, stdin)
	if err != nil {
		return exitError(3, "failed to read input: %v", err)
	}

	res, err := a.dosing.Dose(medication, in)
	if err != nil {
		return doseExit(err)
	}
	a.logger.Debug("dosed", "medication", res.Medication, "renal_factor", res.RenalFactor, "hepatic_factor", res.HepaticFactor)

	return emit(a.stdout, f.out, func(w io.Writer) error {
		switch a.cfg.Output {
		case config.OutputJSON:
			return render.JSON(w, res)
		case config.OutputMarkdown:
			_, err := io.WriteString(w, render.DoseMarkdown(res))
			return err
		default:
			return render.DoseTable(w, res)
		}
	})
}

// doseExit maps calculator errors to exit codes.
func doseExit(err error) error {
	var ie *dosing.InputError
	switch {
	case errors.Is(err, dosing.ErrUnknownMedication):
		return exitError(3, "%v", err)
	case errors.As(err, &ie):
		return exitError(5, "invalid input: %v", err)
	default:
		return engineExit(err)
	}
}
