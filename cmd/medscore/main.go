package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/dshills/medscore/internal/config"
	"github.com/dshills/medscore/internal/dosing"
	"github.com/dshills/medscore/internal/engine"
	"github.com/dshills/medscore/internal/logging"
)

var version = "0.1.0"

// app carries state shared by every subcommand once config has loaded.
type app struct {
	v          *viper.Viper
	configFile string
	cfg        *config.Config
	logger     *slog.Logger
	engine     *engine.Engine
	dosing     *dosing.Calculator
	stdout     io.Writer
	stderr     io.Writer
	isTerminal func() bool
}

func (a *app) useColor() bool {
	return a.cfg.UseColor(a.isTerminal())
}

func main() {
	a := &app{
		v:      viper.New(),
		stdout: os.Stdout,
		stderr: os.Stderr,
		isTerminal: func() bool {
			return term.IsTerminal(int(os.Stdout.Fd()))
		},
	}

	if err := newRootCmd(a).Execute(); err != nil {
		var ee *exitErr
		if errors.As(err, &ee) {
			fmt.Fprintln(os.Stderr, ee.msg)
			os.Exit(ee.code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "medscore",
		Short:         "Score clinical risk scales and classify the result into risk tiers",
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "Config file (default: .medscore.yaml in . or $HOME)")
	flags.String("output", config.OutputTable, "Output format: table, json, or md")
	flags.String("color", config.ColorAuto, "Colorize tiers: auto, yes, or no")
	flags.String("log-level", config.DefaultLogLevel, "Log level: debug, info, warn, or error")
	flags.String("log-format", config.DefaultLogFormat, "Log format: text or json")
	flags.Bool("redact", true, "Redact patient identifiers in case names and notes")
	for _, name := range []string{"output", "color", "log-level", "log-format", "redact"} {
		_ = a.v.BindPFlag(name, flags.Lookup(name))
	}

	root.AddCommand(
		newScoreCmd(a),
		newCheckCmd(a),
		newScalesCmd(a),
		newVerifyCmd(a),
		newDoseCmd(a),
		newServeCmd(a),
	)
	return root
}

// setup resolves config, then builds the logger, engine, and dose calculator.
func (a *app) setup() error {
	config.Init(a.v, a.configFile)
	cfg, err := config.Load(a.v)
	if err != nil {
		return exitError(3, "invalid configuration: %v", err)
	}
	a.cfg = cfg
	a.logger = logging.New(a.stderr, cfg.Logging)
	color.NoColor = !a.useColor()

	eng, err := engine.Default(engine.WithLogger(a.logger))
	if err != nil {
		return exitError(3, "failed to load scale catalog: %v", err)
	}
	a.engine = eng

	formulary, err := dosing.Load()
	if err != nil {
		return exitError(3, "failed to load formulary: %v", err)
	}
	a.dosing = dosing.New(formulary, eng)
	return nil
}

type exitErr struct {
	code int
	msg  string
}

func (e *exitErr) Error() string { return e.msg }

func exitError(code int, format string, args ...any) error {
	return &exitErr{code: code, msg: fmt.Sprintf(format, args...)}
}
