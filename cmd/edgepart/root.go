package main

import (
	"github.com/spf13/cobra"

	"github.com/arloliu/edgepart"
	"github.com/arloliu/edgepart/internal/logging"
	"github.com/arloliu/edgepart/types"
)

// app carries state shared by all subcommands, filled in before each runs.
type app struct {
	configPath string
	logLevel   string

	cfg    *edgepart.Config
	logger types.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "edgepart",
		Short:         "Grid-based edge partitioning",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd)
		},
	}

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "YAML config file (EDGEPART_* environment variables override it)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level override: debug, info, warn, error")

	root.AddCommand(
		newAssignCmd(),
		newGridCmd(),
		newSampleCmd(a),
		newServeCmd(a),
	)

	return root
}

// load reads the config and builds the logger. Logs go to stderr so command
// output on stdout stays machine readable.
func (a *app) load(cmd *cobra.Command) error {
	cfg, err := edgepart.LoadConfig(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}

	logger, err := logging.New(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	cfg.ValidateWithWarnings(logger)

	a.cfg = cfg
	a.logger = logger

	return nil
}
