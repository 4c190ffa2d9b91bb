// Bookrec - Cluster-Constrained Booking Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

// Command buildrecs builds the user-cluster × booking-cluster
// recommendation matrix from the bookings CSV and both cluster
// descriptors, and writes it in Matrix Market format.
//
//	buildrecs -users users.txt -bookings bookings.txt -out recs.mtx -exclude-seen
//
// The similarity column norm must match the one the server expects.
package main

import (
	"context"
	"flag"
	"os/signal"
	"syscall"

	"github.com/tomtom215/bookrec/internal/cli"
	"github.com/tomtom215/bookrec/internal/database"
	"github.com/tomtom215/bookrec/internal/descriptor"
	"github.com/tomtom215/bookrec/internal/ibcf"
	"github.com/tomtom215/bookrec/internal/logging"
	"github.com/tomtom215/bookrec/internal/pipeline"
	"github.com/tomtom215/bookrec/internal/sparse"
)

func main() {
	var (
		configPath   string
		bookingsCSV  string
		usersPath    string
		bookingsPath string
		out          string
		simTopK      int
		topK         int
		excludeSeen  bool
		quiet        bool
	)
	flag.StringVar(&configPath, "config", "", "config file (default: CONFIG_PATH or config.yaml)")
	flag.StringVar(&bookingsCSV, "bookings-csv", "", "bookings CSV (default: data.bookings_csv)")
	flag.StringVar(&usersPath, "users", "", "user cluster descriptor (default: data.user_clusters)")
	flag.StringVar(&bookingsPath, "bookings", "", "booking cluster descriptor (default: data.booking_clusters)")
	flag.StringVar(&out, "out", "", "Matrix Market file to write (default: data.recs_matrix)")
	flag.IntVar(&simTopK, "sim-top-k", -1, "neighbours kept per similarity column (default: similarity.top_k)")
	flag.IntVar(&topK, "top-k", 0, "booking clusters kept per user cluster, 0 keeps all")
	flag.BoolVar(&excludeSeen, "exclude-seen", false, "drop booking clusters a user cluster already booked")
	flag.BoolVar(&quiet, "quiet", false, "disable progress bars")
	flag.Parse()

	cfg, err := cli.LoadConfig(configPath)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logger := logging.WithComponent("buildrecs")

	bookingsCSV = orDefault(bookingsCSV, cfg.Data.BookingsCSV)
	usersPath = orDefault(usersPath, cfg.Data.UserClusters)
	bookingsPath = orDefault(bookingsPath, cfg.Data.BookingClusters)
	out = orDefault(out, cfg.Data.RecsMatrix)
	if out == "" {
		logger.Fatal().Msg("-out is required")
	}

	users, err := descriptor.ParseFile(usersPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to read user clusters")
	}
	bookings, err := descriptor.ParseFile(bookingsPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to read booking clusters")
	}

	opts := pipeline.RecsOptions{
		Similarity: ibcf.SimilarityOptions{
			TopK:       cfg.Similarity.TopK,
			ColumnNorm: cfg.Similarity.Norm(),
		},
		TopK:        topK,
		ExcludeSeen: excludeSeen,
	}
	if simTopK >= 0 {
		opts.Similarity.TopK = simTopK
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := cli.OpenDatabase(ctx, &cfg.Database, logging.WithComponent("database"),
		cli.Import{Table: database.TableBookings, Path: bookingsCSV})
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load bookings")
	}

	bar := cli.Progress(quiet)
	result, err := pipeline.BuildRecs(ctx, db, users, bookings, opts, bar.Update, logger)
	bar.Finish()
	_ = db.Close()
	if err != nil {
		logger.Fatal().Err(err).Msg("Building recommendations failed")
	}

	if err := sparse.SaveMatrixMarket(out, result.Recs); err != nil {
		logger.Fatal().Err(err).Msg("Failed to write recommendation matrix")
	}
	logger.Info().
		Str("out", out).
		Object("recs", result.Recs.Info()).
		Int("unknown_users", result.Stats.UnknownActors).
		Int("unknown_bookings", result.Stats.UnknownObjects).
		Msg("Recommendation matrix written")
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
