package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/okian/drunkyet/internal/config"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "drunkyet",
		Short: "Blood alcohol estimator built on the Widmark formula",
		Long: `drunkyet estimates how many more standard drinks reach a 0.10% BAC
and how long until BAC returns to zero.

Examples:
  drunkyet                                   # Serve the web UI and API
  drunkyet serve --config config.yaml        # Serve with a config file
  drunkyet estimate --weight 70 --sex female --drinks 2
  drunkyet loadtest --url http://localhost:5000 --requests 500`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), configPath)
		},
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", os.Getenv(config.EnvConfigFile),
		"YAML config file (env "+config.EnvConfigFile+")")

	root.AddCommand(
		newServeCmd(&configPath),
		newEstimateCmd(),
		newLoadTestCmd(),
	)
	return root
}
