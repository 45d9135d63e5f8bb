package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/iwvelando/rental-projection/internal/config"
	"github.com/iwvelando/rental-projection/internal/logging"
	"github.com/iwvelando/rental-projection/internal/portfolio"
	"github.com/iwvelando/rental-projection/internal/projection"
	"github.com/iwvelando/rental-projection/internal/store"
	"github.com/iwvelando/rental-projection/pkg/client"
	"github.com/iwvelando/rental-projection/pkg/constants"
	"github.com/iwvelando/rental-projection/pkg/output"
	"github.com/iwvelando/rental-projection/pkg/validation"
	"go.uber.org/zap"
)

func main() {
	// Process command line flags first to get config location
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to portfolio file")
	outputFormatFlag := flag.String("output-format", "", "type of output override: pretty, csv, json")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	printSchedule := flag.Bool("schedule", false, "print the amortization schedule of every property")
	dbPath := flag.String("db", "", "record the projections in this SQLite database")
	remoteURL := flag.String("remote", "", "compute through the rental-projection server at this URL")
	flag.Parse()

	// Load the config file to get logging configuration
	conf, err := config.LoadConfiguration(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		os.Exit(1)
	}

	// Initialize logging based on config and CLI override
	logger, err := logging.New(conf.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	// Determine output format (CLI override takes precedence over config)
	outputFormat := conf.Output.Format
	if *outputFormatFlag != "" {
		outputFormat = *outputFormatFlag
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty
	}
	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		logger.Fatal(err.Error(),
			zap.String("op", "main"),
		)
	}

	currency := conf.Output.Currency
	if currency == "" {
		currency = constants.DefaultCurrencySymbol
	}
	if err := validation.ValidateCurrencySymbol(currency); err != nil {
		logger.Fatal(err.Error(),
			zap.String("op", "main"),
		)
	}

	// Validate configuration and display any warnings
	for _, warning := range conf.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	var projector portfolio.Projector
	if *remoteURL != "" {
		projector = portfolio.RemoteProjector{Client: client.New(*remoteURL), WithSchedule: *printSchedule}
	} else {
		policy, err := conf.EnginePolicy()
		if err != nil {
			logger.Fatal("invalid engine policy",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
		engine, err := projection.NewEngine(logger, policy)
		if err != nil {
			logger.Fatal("failed to create projection engine",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
		projector = portfolio.LocalProjector{Engine: engine, WithSchedule: *printSchedule}
	}

	ctx := context.Background()
	projections := portfolio.GetProjections(ctx, logger, *conf, projector)
	for _, p := range projections {
		if p.Err != nil {
			logger.Error("failed to compute projection",
				zap.String("op", "main"),
				zap.String("property", p.Property.Name),
				zap.Error(p.Err),
			)
		}
	}

	if *dbPath != "" {
		st, err := store.Open(*dbPath, logger)
		if err != nil {
			logger.Fatal("failed to open database",
				zap.String("op", "main"),
				zap.String("path", *dbPath),
				zap.Error(err),
			)
		}
		if _, err := portfolio.Save(ctx, logger, st, projections); err != nil {
			logger.Error("failed to save projections",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
		if err := st.Close(); err != nil {
			logger.Warn("failed to close database",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
	}

	// Handle output.
	if err := output.Format(os.Stdout, outputFormat, portfolio.Results(projections), currency); err != nil {
		logger.Fatal("failed to write output",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	if *printSchedule {
		for _, p := range projections {
			if p.Output == nil {
				continue
			}
			if err := output.ScheduleFormat(os.Stdout, outputFormat, p.Property.Name, p.Output.Schedule, currency); err != nil {
				logger.Fatal("failed to write schedule",
					zap.String("op", "main"),
					zap.Error(err),
				)
			}
		}
	}
}
