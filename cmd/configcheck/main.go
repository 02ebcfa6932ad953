// Command configcheck validates an engine settings file without starting the engine.
//
// Usage:
//
//	configcheck [-env path] [-json]
//
// It prints every failing field and exits 1, or prints the non-sensitive
// summary and exits 0. Values of credential fields are never printed.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/aristath/evolution-engine/internal/config"
	"github.com/aristath/evolution-engine/pkg/logger"
	"github.com/rs/zerolog"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("configcheck", flag.ContinueOnError)
	fs.SetOutput(stderr)
	envFile := fs.String("env", config.DefaultEnvFile, "settings file to validate")
	asJSON := fs.Bool("json", false, "print the summary as JSON")
	verbose := fs.Bool("v", false, "log the load attempt")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	log := zerolog.Nop()
	if *verbose {
		log = logger.New(logger.Config{Level: "debug", Pretty: true, Output: stderr})
	}

	settings, err := config.NewManager(
		config.WithEnvFile(*envFile),
		config.WithLogger(log),
	).Load()
	if err != nil {
		report(stderr, err)
		return 1
	}

	summary := settings.Summary()
	if *asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(summary); err != nil {
			fmt.Fprintf(stderr, "failed to encode summary: %v\n", err)
			return 1
		}
		return 0
	}

	fmt.Fprintf(stdout, "%s: OK\n", *envFile)
	fmt.Fprintf(stdout, "  project id:            %s\n", summary.ProjectID)
	fmt.Fprintf(stdout, "  tournament schedule:   %s UTC (%s)\n", summary.TournamentSchedule, summary.CronSpec)
	fmt.Fprintf(stdout, "  max concurrent agents: %d\n", summary.MaxConcurrentAgents)
	fmt.Fprintf(stdout, "  min survival score:    %g\n", summary.MinSurvivalScore)
	fmt.Fprintf(stdout, "  data sources:          %v\n", summary.DataSources)
	fmt.Fprintf(stdout, "  max drawdown percent:  %g\n", summary.MaxDrawdownPercent)
	fmt.Fprintf(stdout, "  complexity tax rate:   %g\n", summary.ComplexityTaxRate)
	for _, metric := range settings.Metrics() {
		fmt.Fprintf(stdout, "  weight %-14s %g\n", metric+":", summary.ScoreWeights[metric])
	}
	return 0
}

func report(w io.Writer, err error) {
	var missing *config.MissingSettingsSourceError
	if errors.As(err, &missing) {
		fmt.Fprintln(w, missing.Error())
		return
	}

	var verrs config.ValidationErrors
	if errors.As(err, &verrs) {
		fmt.Fprintf(w, "%d invalid setting(s):\n", len(verrs))
		for _, v := range verrs {
			fmt.Fprintf(w, "  - %s\n", v.Error())
		}
	} else {
		fmt.Fprintln(w, err.Error())
	}

	var initErr *config.InitializationError
	if errors.As(err, &initErr) && initErr.Guidance != "" {
		fmt.Fprintln(w, initErr.Guidance)
	}
}
