// Bookrec - Cluster-Constrained Booking Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

// Command cluster groups users or bookings into constrained clusters and
// writes a cluster descriptor file.
//
//	cluster -kind users -out users.txt
//	cluster -kind bookings -in bookings.csv -k 400 -min-objects 5 -out bookings.txt
//
// Booking clusters must each hold at least -min-objects distinct
// properties. Defaults come from the clustering section of the
// configuration.
package main

import (
	"context"
	"flag"
	"os/signal"
	"syscall"

	"github.com/tomtom215/bookrec/internal/cli"
	"github.com/tomtom215/bookrec/internal/config"
	"github.com/tomtom215/bookrec/internal/database"
	"github.com/tomtom215/bookrec/internal/descriptor"
	"github.com/tomtom215/bookrec/internal/logging"
	"github.com/tomtom215/bookrec/internal/pipeline"
)

func main() {
	var (
		configPath string
		kindName   string
		in         string
		out        string
		k          int
		minObjects int
		seed       int64
		tfidf      string
		quiet      bool
	)
	flag.StringVar(&configPath, "config", "", "config file (default: CONFIG_PATH or config.yaml)")
	flag.StringVar(&kindName, "kind", "users", "what to cluster: users or bookings")
	flag.StringVar(&in, "in", "", "feature CSV (default: configured users or bookings CSV)")
	flag.StringVar(&out, "out", "", "descriptor file to write (required)")
	flag.IntVar(&k, "k", 0, "initial number of clusters (default: clustering.k)")
	flag.IntVar(&minObjects, "min-objects", -1, "minimum distinct objects per cluster (default: clustering.min_objects_per_cluster)")
	flag.Int64Var(&seed, "seed", 0, "random seed (default: clustering.seed)")
	flag.StringVar(&tfidf, "tfidf", "", "TF-IDF weighting: auto (users only), on or off (default: clustering.tfidf)")
	flag.BoolVar(&quiet, "quiet", false, "disable progress bars")
	flag.Parse()

	cfg, err := cli.LoadConfig(configPath)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logger := logging.WithComponent("cluster")

	kind, err := pipeline.ParseKind(kindName)
	if err != nil {
		logger.Fatal().Err(err).Msg("Invalid -kind")
	}
	if out == "" {
		logger.Fatal().Msg("-out is required")
	}

	table, defaultIn := database.TableUsers, cfg.Data.UsersCSV
	if kind == pipeline.KindBookings {
		table, defaultIn = database.TableBookings, cfg.Data.BookingsCSV
	}
	if in == "" {
		in = defaultIn
	}

	ccfg := cfg.Clustering
	if k > 0 {
		ccfg.K = k
	}
	if minObjects >= 0 {
		ccfg.MinObjectsPerCluster = minObjects
	}
	if seed != 0 {
		ccfg.Seed = seed
	}
	switch tfidf {
	case "":
	case config.TFIDFAuto, config.TFIDFOn, config.TFIDFOff:
		ccfg.TFIDF = tfidf
	default:
		logger.Fatal().Str("tfidf", tfidf).Msg("-tfidf must be auto, on or off")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := cli.OpenDatabase(ctx, &cfg.Database, logging.WithComponent("database"), cli.Import{Table: table, Path: in})
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load features")
	}

	bar := cli.Progress(quiet)
	result, err := pipeline.Cluster(ctx, db, kind, ccfg, bar.Update, logger)
	bar.Finish()
	_ = db.Close()
	if err != nil {
		logger.Fatal().Err(err).Msg("Clustering failed")
	}

	if err := descriptor.WriteFile(out, result.Descriptor); err != nil {
		logger.Fatal().Err(err).Msg("Failed to write descriptor")
	}
	for _, line := range result.Descriptor.Preamble {
		logger.Info().Msg(line)
	}
	logger.Info().
		Str("kind", string(kind)).
		Str("out", out).
		Int("clusters", result.Descriptor.Len()).
		Int("fallback_rows", result.Stats.FallbackRows).
		Dur("duration", result.Stats.Duration).
		Msg("Descriptor written")
}

