package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/arnavshah/storeplan-api/pkg/config"
	"github.com/arnavshah/storeplan-api/pkg/logger"
)

// app carries state shared by every subcommand
type app struct {
	cfgPath string
	cfg     *config.Config
	log     logger.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "storeplan",
		Short:         "Spreadsheet tools for store route planning",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			config.LoadDotEnv()
			cfg, err := config.Load(a.cfgPath)
			if err != nil {
				return err
			}
			logger.SetLevel(cfg.Logging.Level)
			a.cfg = cfg
			a.log = logger.New("cli")
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&a.cfgPath, "config", "c", os.Getenv("STOREPLAN_CONFIG"), "config file (.yaml, .json or .toml)")

	root.AddCommand(
		newServeCmd(a),
		newConcatCmd(a),
		newPJPCmd(a),
		newFloaterCmd(a),
		newLookupCmd(a),
		newKeygenCmd(a),
	)
	return root
}
