package main

import (
	"flag"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/tensorplex-labs/errmag/internal/config"
	"github.com/tensorplex-labs/errmag/internal/dataset"
	"github.com/tensorplex-labs/errmag/internal/errmag"
	"github.com/tensorplex-labs/errmag/internal/utils/logger"
)

var (
	inputPath  = flag.String("input", "", "dataset file (.json or .json.zst), overrides ERRMAG_INPUT")
	outputPath = flag.String("output", "", "write per-sample distances here, overrides ERRMAG_OUTPUT")
)

func main() {
	logger.Init()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading config")
	}
	if *inputPath != "" {
		cfg.InputPath = *inputPath
	}
	if *outputPath != "" {
		cfg.OutputPath = *outputPath
	}
	if cfg.InputPath == "" {
		log.Fatal().Msg("No input dataset, set -input or ERRMAG_INPUT")
	}

	ds, err := dataset.Load(cfg.InputPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading dataset")
	}

	computer := errmag.NewComputer(errmag.WithParallelism(cfg.Parallelism))
	magnitudes, err := computer.Compute(ds.Results, ds.Reference)
	if err != nil {
		log.Fatal().Err(err).Msg("Error computing error magnitudes")
	}

	rows := errmag.Summarize(magnitudes)
	for _, row := range rows {
		log.Info().
			Str("scale", string(row.Scale)).
			Str("method", string(row.Method)).
			Int("samples", row.Samples).
			Float64("mean", row.Mean).
			Float64("median", row.Median).
			Float64("rmse", row.RMSE).
			Float64("max", row.Max).
			Msgf("scale %s method %s mean error %f", row.Scale, row.Method, row.Mean)
	}

	if cfg.Plot {
		errmag.PlotSummaryTerminal(os.Stdout, rows, cfg.InputPath)
	}

	if cfg.OutputPath != "" {
		if err := dataset.WriteMagnitudes(cfg.OutputPath, magnitudes); err != nil {
			log.Fatal().Err(err).Msg("Error writing magnitudes")
		}
		log.Info().Str("path", cfg.OutputPath).Msg("Wrote error magnitudes")
	}
}
