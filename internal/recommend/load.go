// Bookrec - Cluster-Constrained Booking Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

package recommend

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/bookrec/internal/config"
	"github.com/tomtom215/bookrec/internal/database"
	"github.com/tomtom215/bookrec/internal/descriptor"
	"github.com/tomtom215/bookrec/internal/featurestore"
	"github.com/tomtom215/bookrec/internal/metrics"
	"github.com/tomtom215/bookrec/internal/sparse"
)

// Dataset bundles the immutable serving data.
type Dataset struct {
	Users    *UserData
	Bookings *BookingData
	Items    *ItemData
	// ItemFeatures is nil when no property feature file is configured.
	ItemFeatures *ItemFeatureData
	Recs         *sparse.Matrix
}

// Load reads the cluster descriptors and the recommendation matrix from
// disk, imports the feature CSVs into db and builds the providers. Any
// failure is fatal for serving.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func Load(ctx context.Context, db *database.DB, cfg *config.Config, logger zerolog.Logger) (*Dataset, error) {
	logger = logger.With().Str("component", "loader").Logger()
	started := time.Now()

	userClusters, err := timed("user_clusters", func() (*descriptor.File, error) {
		return descriptor.ParseFile(cfg.Data.UserClusters)
	})
	if err != nil {
		return nil, fmt.Errorf("load user clusters: %w", err)
	}
	bookingClusters, err := timed("booking_clusters", func() (*descriptor.File, error) {
		return descriptor.ParseFile(cfg.Data.BookingClusters)
	})
	if err != nil {
		return nil, fmt.Errorf("load booking clusters: %w", err)
	}
	recs, err := timed("recs_matrix", func() (*sparse.Matrix, error) {
		return sparse.LoadMatrixMarket(cfg.Data.RecsMatrix)
	})
	if err != nil {
		return nil, fmt.Errorf("load recs matrix: %w", err)
	}
	logger.Info().
		Int("user_clusters", userClusters.Len()).
		Int("booking_clusters", bookingClusters.Len()).
		Object("recs", recs.Info()).
		Msg("Cluster recs matrix loaded")

	imports := []struct{ table, path string }{
		{database.TableBookings, cfg.Data.BookingsCSV},
		{database.TableUsers, cfg.Data.UsersCSV},
		{database.TableProperties, cfg.Data.PropertiesCSV},
	}
	withContent := cfg.Data.PropertyFeaturesCSV != ""
	if withContent {
		imports = append(imports, struct{ table, path string }{database.TablePropertyFeatures, cfg.Data.PropertyFeaturesCSV})
	}
	dbStart := time.Now()
	for _, im := range imports {
		if err := db.ImportCSV(ctx, im.table, im.path); err != nil {
			return nil, err
		}
	}

	userFeatures, err := frameFeatures(db.UserFeatures(ctx))
	if err != nil {
		return nil, fmt.Errorf("user features: %w", err)
	}
	summaries, err := frameFeatures(db.BookingSummaries(ctx))
	if err != nil {
		return nil, fmt.Errorf("booking summaries: %w", err)
	}
	observations, err := db.ItemObservations(ctx)
	if err != nil {
		return nil, err
	}
	userItems, err := db.UserItems(ctx)
	if err != nil {
		return nil, err
	}
	active, err := db.ActiveItems(ctx, cfg.Recommend.ActiveFlag)
	if err != nil {
		return nil, err
	}

	ds := &Dataset{
		Users:    NewUserData(userClusters, userFeatures, cfg.Recommend.FeatureThreshold),
		Bookings: NewBookingData(bookingClusters, userItems, observations, summaries, cfg.Recommend.FeatureThreshold),
		Recs:     recs,
	}
	if ds.Items, err = NewItemData(bookingClusters, active); err != nil {
		return nil, err
	}

	if withContent {
		items, err := frameFeatures(db.ItemFeatures(ctx))
		if err != nil {
			return nil, fmt.Errorf("item features: %w", err)
		}
		users, err := frameFeatures(db.UserItemFeatures(ctx))
		if err != nil {
			return nil, fmt.Errorf("user item features: %w", err)
		}
		if ds.ItemFeatures, err = NewItemFeatureData(items, users); err != nil {
			return nil, err
		}
		logger.Info().
			Object("items", items.Info()).
			Object("users", users.Info()).
			Msg("Item feature data loaded")
	}
	metrics.RecordDataLoad("duckdb", time.Since(dbStart))

	metrics.SetDataObjects("users", ds.Users.NUsers())
	metrics.SetDataObjects("user_clusters", ds.Users.NClusters())
	metrics.SetDataObjects("booking_clusters", ds.Items.NClusters())
	metrics.SetDataObjects("items", ds.Items.NItems())
	metrics.SetDataObjects("active_items", len(ds.Items.Active()))

	logger.Info().
		Int("users", ds.Users.NUsers()).
		Int("items", ds.Items.NItems()).
		Int("active_items", len(ds.Items.Active())).
		Bool("content", withContent).
		Dur("duration", time.Since(started)).
		Msg("Dataset loaded")
	return ds, nil
}

func timed[T any](source string, load func() (T, error)) (T, error) {
	start := time.Now()
	v, err := load()
	metrics.RecordDataLoad(source, time.Since(start))
	return v, err
}

func frameFeatures(frame *database.Frame, err error) (*featurestore.FeatureMatrix, error) {
	if err != nil {
		return nil, err
	}
	return featurestore.FromDense(frame.IDs, frame.Features, frame.Values)
}
