package main

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/dshills/medscore/internal/config"
	"github.com/dshills/medscore/internal/render"
	"github.com/dshills/medscore/internal/risk"
)

type inputFlags struct {
	input string
	sets  []string
}

func (f *inputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.input, "input", "i", "", "YAML or JSON input file (- for stdin)")
	cmd.Flags().StringArrayVar(&f.sets, "set", nil, "Input field as key=value (may be repeated)")
}

type scoreFlags struct {
	inputFlags
	out string
}

func newScoreCmd(a *app) *cobra.Command {
	f := &scoreFlags{}

	cmd := &cobra.Command{
		Use:   "score <scale>",
		Short: "Score one scale and classify the result",
		Example: `  medscore score gcs --set eye_response=3 --set verbal_response=4 --set motor_response=5
  medscore score meld --input labs.yaml --output json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScore(a, cmd.InOrStdin(), args[0], f)
		},
	}
	f.register(cmd)
	cmd.Flags().StringVar(&f.out, "out", "", "Output file path (default: stdout)")
	return cmd
}

func runScore(a *app, stdin io.Reader, scale string, f *scoreFlags) error {
	in, err := readInputs(f.input, f.sets, stdin)
	if err != nil {
		return exitError(3, "failed to read input: %v", err)
	}

	res, err := a.engine.Evaluate(scale, in)
	if err != nil {
		return engineExit(err)
	}
	a.logger.Debug("scored", "scale", res.Scale, "tier", res.Tier)

	return emit(a.stdout, f.out, func(w io.Writer) error {
		switch a.cfg.Output {
		case config.OutputJSON:
			return render.JSON(w, res)
		case config.OutputMarkdown:
			_, err := io.WriteString(w, render.Markdown([]risk.Result{*res}, a.engine.Catalog()))
			return err
		default:
			if err := render.Table(w, []risk.Result{*res}, a.useColor()); err != nil {
				return err
			}
			if err := render.ExplanationTable(w, res); err != nil {
				return err
			}
			return render.GuidanceTable(w, res)
		}
	})
}
