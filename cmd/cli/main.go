package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"statbook/internal/config"
	"statbook/internal/dataset"
	"statbook/internal/errors"
	"statbook/internal/logging"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logging.Setup(cfg.Log, os.Stderr, "statbook-cli")

	if err := newRootCmd(cfg, os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app carries what every subcommand needs
type app struct {
	cfg    *config.Config
	out    io.Writer
	asJSON bool
}

func newRootCmd(cfg *config.Config, out io.Writer) *cobra.Command {
	a := &app{cfg: cfg, out: out}

	rootCmd := &cobra.Command{
		Use:           "statbook",
		Short:         "Textbook statistics from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetOut(out)
	rootCmd.PersistentFlags().BoolVar(&a.asJSON, "json", false, "Print results as JSON")

	rootCmd.AddCommand(
		a.newDescribeCmd(),
		a.newIntervalCmd(),
		a.newSampleSizeCmd(),
		a.newTTestCmd(),
		a.newRegressCmd(),
		a.newSimulateCmd(),
		a.newCriticalCmd(),
		a.newChartCmd(),
	)
	return rootCmd
}

// print writes v as JSON when --json is set, otherwise calls text
func (a *app) print(v any, text func(w io.Writer)) error {
	if a.asJSON {
		enc := json.NewEncoder(a.out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	text(a.out)
	return nil
}

func (a *app) level(flag float64) float64 {
	if flag == 0 {
		return a.cfg.Stats.DefaultConfidence
	}
	return flag
}

func (a *app) alpha(flag float64) float64 {
	if flag == 0 {
		return a.cfg.Stats.DefaultAlpha
	}
	return flag
}

// sampleFlags selects a sample either inline or from a data file
type sampleFlags struct {
	values string
	file   string
	column string
}

func (f *sampleFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.values, "values", "", "Comma-separated sample values")
	cmd.Flags().StringVar(&f.file, "file", "", "CSV, XLSX or JSON data file")
	cmd.Flags().StringVar(&f.column, "column", "", "Column to read from --file")
}

func (f *sampleFlags) provided() bool {
	return f.values != "" || f.file != ""
}

func (f *sampleFlags) load() ([]float64, error) {
	switch {
	case f.values != "":
		return parseValues(f.values)
	case f.file != "":
		if f.column == "" {
			return nil, errors.InvalidInput("--column is required with --file")
		}
		return dataset.LoadColumn(f.file, f.column)
	default:
		return nil, errors.InvalidInput("provide --values or --file")
	}
}

func parseValues(raw string) ([]float64, error) {
	fields := strings.FieldsFunc(raw, func(r rune) bool { return r == ',' || r == ' ' })
	values := make([]float64, 0, len(fields))
	for _, field := range fields {
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, errors.InvalidInput("%q is not a number", field)
		}
		values = append(values, v)
	}
	return values, nil
}
