package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/okian/drunkyet/internal/app"
	"github.com/okian/drunkyet/internal/domain/bac"
	"github.com/okian/drunkyet/pkg/logger"
)

// Output formats for the estimate command.
const (
	outputText = "text"
	outputJSON = "json"
	outputYAML = "yaml"
)

type estimateOptions struct {
	weight float64
	unit   string
	sex    string
	drinks float64
	output string
}

func newEstimateCmd() *cobra.Command {
	opts := &estimateOptions{}

	cmd := &cobra.Command{
		Use:   "estimate",
		Short: "Print an estimate without starting the server",
		Long: `Run one calculation through the same validation and estimator the API uses.

Examples:
  drunkyet estimate --weight 70
  drunkyet estimate --weight 154 --unit lbs --sex female --drinks 2 --output json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runEstimate(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.Float64VarP(&opts.weight, "weight", "w", 0, "Body weight (required)")
	f.StringVarP(&opts.unit, "unit", "u", app.UnitKilograms, "Weight unit: kg or lbs")
	f.StringVarP(&opts.sex, "sex", "s", "", "Sex: male, female, or anything else for the averaged factor")
	f.Float64VarP(&opts.drinks, "drinks", "d", 0, "Standard drinks already consumed")
	f.StringVarP(&opts.output, "output", "o", outputText, "Output format: text, json, yaml")
	_ = cmd.MarkFlagRequired("weight")

	return cmd
}

func runEstimate(cmd *cobra.Command, opts *estimateOptions) error {
	format := strings.ToLower(opts.output)
	switch format {
	case outputText, outputJSON, outputYAML:
	default:
		return fmt.Errorf("unknown output format %q", opts.output)
	}

	// Only warnings reach stderr so stdout stays machine readable.
	if err := logger.InitWithWriter(os.Stderr, logger.FormatConsole); err != nil {
		return err
	}
	_ = logger.SetLevelString("warn")

	svc := app.New(app.WithLogger(logger.Named("estimate")))
	res, err := svc.Calculate(cmd.Context(), app.Calculation{
		Weight:        opts.weight,
		WeightUnit:    opts.unit,
		Sex:           opts.sex,
		CurrentDrinks: opts.drinks,
	})
	if err != nil {
		return err
	}

	return writeResult(cmd.OutOrStdout(), format, res)
}

func writeResult(w io.Writer, format string, res app.Result) error {
	switch format {
	case outputJSON:
		data, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case outputYAML:
		enc := yaml.NewEncoder(w)
		defer func() { _ = enc.Close() }()
		return enc.Encode(res)
	default:
		_, err := fmt.Fprintf(w, "Drinks to reach %.2f%% BAC: %.1f\nHours until sober:         %.1f\nCurrent BAC:               %.3f%%\n",
			bac.TargetBAC, res.DrinksToTarget, res.HoursToSober, res.CurrentBAC)
		return err
	}
}
