// Package cli implements the dplace2cldf command line.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"dplace2cldf/internal/config"
	"dplace2cldf/internal/logging"
)

// Execute runs the root command and exits non-zero on error. An interrupt
// cancels the run between datasets.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// app carries state shared by all subcommands.
type app struct {
	configPath string
	debug      bool
	cfg        config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:           "dplace2cldf",
		Short:         "Convert D-PLACE datasets into CLDF StructureDatasets",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd)
		},
	}
	cmd.PersistentFlags().StringVar(&a.configPath, "config", "", "YAML configuration file (optional)")
	cmd.PersistentFlags().BoolVar(&a.debug, "debug", false, "enable debug logging")

	cmd.AddCommand(convertCmd(a), validateCmd(a), exportCmd(a))
	return cmd
}

// load assembles the configuration (defaults, file, environment) and
// installs the logger.
func (a *app) load(cmd *cobra.Command) error {
	a.cfg = config.Default()
	if a.configPath != "" {
		cfg, err := config.Load(a.configPath)
		if err != nil {
			return err
		}
		a.cfg = cfg
	}
	config.ApplyEnv(&a.cfg, os.Getenv)

	_, err := logging.Setup(logging.Config{
		Level:  a.cfg.Log.Level,
		Format: a.cfg.Log.Format,
		Output: cmd.ErrOrStderr(),
		Debug:  a.debug,
	})
	if err != nil {
		return err
	}
	return nil
}

// checkConfig prints every issue and fails on error-severity ones.
func (a *app) checkConfig(cmd *cobra.Command) error {
	issues := config.Validate(a.cfg)
	for _, is := range issues {
		fmt.Fprintln(cmd.ErrOrStderr(), is.Error())
	}
	return config.Errors(issues)
}
