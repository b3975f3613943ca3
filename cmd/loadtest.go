package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/drunkyet/internal/loadtest"
	"github.com/okian/drunkyet/pkg/logger"
)

func newLoadTestCmd() *cobra.Command {
	cfg := &loadtest.Config{}

	cmd := &cobra.Command{
		Use:   "loadtest",
		Short: "Submit random calculations to a running server and verify the answers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := logger.InitWithWriter(os.Stdout, logger.FormatConsole); err != nil {
				return err
			}
			report, err := loadtest.Run(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			return report.Err()
		},
	}

	f := cmd.Flags()
	f.StringVar(&cfg.BaseURL, "url", "http://localhost:5000", "Base URL of the service")
	f.IntVarP(&cfg.Requests, "requests", "n", 100, "Number of calculations to submit")
	f.IntVarP(&cfg.Workers, "workers", "w", 10, "Number of concurrent workers")
	f.DurationVar(&cfg.Timeout, "timeout", 10*time.Second, "HTTP request timeout")
	f.StringVarP(&cfg.OutputFile, "output", "o", "", "Write a JSON report of every sample to this file")

	return cmd
}
