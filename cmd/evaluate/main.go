// Bookrec - Cluster-Constrained Booking Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

// Command evaluate scores a cluster recommendation matrix against held-out
// bookings. The test CSV needs the user (code) and property (propcode)
// columns.
//
//	evaluate -test test_bookings.csv -top 3 -report report.json
//
// The hit ratio counts a test booking as a hit when its property belongs
// to one of the top booking clusters recommended to the user's cluster.
//
// With -level items the clusters are ignored: a user×item matrix is built
// from the training bookings and plain item-based recommendations are
// scored instead, which gives the baseline the cluster model is compared
// against.
//
//	evaluate -level items -test test_bookings.csv -bookings-csv bookings.csv -k 20
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/bookrec/internal/cli"
	"github.com/tomtom215/bookrec/internal/config"
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
		testCSV      string
		usersPath    string
		bookingsPath string
		recsPath     string
		top          int
		reportPath   string
		details      bool
		level        string
		bookingsCSV  string
		topItems     int
	)
	flag.StringVar(&configPath, "config", "", "config file (default: CONFIG_PATH or config.yaml)")
	flag.StringVar(&testCSV, "test", "", "held-out bookings CSV (required)")
	flag.StringVar(&usersPath, "users", "", "user cluster descriptor (default: data.user_clusters)")
	flag.StringVar(&bookingsPath, "bookings", "", "booking cluster descriptor (default: data.booking_clusters)")
	flag.StringVar(&recsPath, "recs", "", "recommendation matrix (default: data.recs_matrix)")
	flag.IntVar(&top, "top", 0, "booking clusters considered per user (default: recommend.default_top_clusters)")
	flag.StringVar(&reportPath, "report", "", "write the JSON report here instead of stdout")
	flag.BoolVar(&details, "details", false, "include per-booking items-to-hit records in the report")
	flag.StringVar(&level, "level", "clusters", "evaluation level: clusters or items")
	flag.StringVar(&bookingsCSV, "bookings-csv", "", "training bookings CSV for -level items (default: data.bookings_csv)")
	flag.IntVar(&topItems, "k", 20, "items recommended per user for -level items")
	flag.Parse()

	cfg, err := cli.LoadConfig(configPath)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logger := logging.WithComponent("evaluate")

	if testCSV == "" {
		logger.Fatal().Msg("-test is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var report any
	switch level {
	case "clusters":
		report = evaluateClusters(ctx, cfg, testCSV, usersPath, bookingsPath, recsPath, top, details, logger)
	case "items":
		report = evaluateItems(ctx, cfg, testCSV, bookingsCSV, topItems, logger)
	default:
		logger.Fatal().Str("level", level).Msg("-level must be clusters or items")
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to encode report")
	}
	data = append(data, '\n')

	if reportPath == "" {
		_, err = os.Stdout.Write(data)
	} else {
		err = os.WriteFile(reportPath, data, 0o600)
	}
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to write report")
	}
}

//nolint:gocritic // zerolog.Logger is designed to be passed by value
func evaluateClusters(ctx context.Context, cfg *config.Config, testCSV, usersPath, bookingsPath, recsPath string, top int, details bool, logger zerolog.Logger) *pipeline.Report {
	if usersPath == "" {
		usersPath = cfg.Data.UserClusters
	}
	if bookingsPath == "" {
		bookingsPath = cfg.Data.BookingClusters
	}
	if recsPath == "" {
		recsPath = cfg.Data.RecsMatrix
	}
	if top <= 0 {
		top = cfg.Recommend.DefaultTopClusters
	}

	users, err := descriptor.ParseFile(usersPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to read user clusters")
	}
	bookings, err := descriptor.ParseFile(bookingsPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to read booking clusters")
	}
	recs, err := sparse.LoadMatrixMarket(recsPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to read recommendation matrix")
	}

	db, err := cli.OpenDatabase(ctx, &cfg.Database, logging.WithComponent("database"),
		cli.Import{Table: database.TableTestBookings, Path: testCSV})
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load test bookings")
	}

	report, err := pipeline.Evaluate(ctx, db, users, bookings, recs, top, logger)
	_ = db.Close()
	if err != nil {
		logger.Fatal().Err(err).Msg("Evaluation failed")
	}
	if !details {
		report.ItemsToHit = nil
	}
	return report
}

//nolint:gocritic // zerolog.Logger is designed to be passed by value
func evaluateItems(ctx context.Context, cfg *config.Config, testCSV, bookingsCSV string, topK int, logger zerolog.Logger) *pipeline.ItemReport {
	if bookingsCSV == "" {
		bookingsCSV = cfg.Data.BookingsCSV
	}

	db, err := cli.OpenDatabase(ctx, &cfg.Database, logging.WithComponent("database"),
		cli.Import{Table: database.TableBookings, Path: bookingsCSV},
		cli.Import{Table: database.TableTestBookings, Path: testCSV})
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load bookings")
	}

	opts := ibcf.SimilarityOptions{
		TopK:       cfg.Similarity.TopK,
		ColumnNorm: cfg.Similarity.Norm(),
	}
	report, err := pipeline.EvaluateItems(ctx, db, opts, topK, logger)
	_ = db.Close()
	if err != nil {
		logger.Fatal().Err(err).Msg("Item evaluation failed")
	}
	return report
}
