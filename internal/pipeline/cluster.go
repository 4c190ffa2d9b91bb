// Bookrec - Cluster-Constrained Booking Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/floats"

	"github.com/tomtom215/bookrec/internal/cluster"
	"github.com/tomtom215/bookrec/internal/config"
	"github.com/tomtom215/bookrec/internal/database"
	"github.com/tomtom215/bookrec/internal/descriptor"
)

// ErrEmptyInput is returned when a stage finds no rows to work on.
var ErrEmptyInput = errors.New("pipeline: empty input")

// Kind selects the objects being clustered.
type Kind string

const (
	// KindUsers clusters users.csv rows, features divided by booking_cnt.
	KindUsers Kind = "users"
	// KindBookings clusters bookings.csv rows. A cluster must hold enough
	// distinct properties, not just enough bookings.
	KindBookings Kind = "bookings"
)

// ParseKind validates a kind name.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindUsers, KindBookings:
		return Kind(s), nil
	default:
		return "", fmt.Errorf("unknown cluster kind %q (want users or bookings)", s)
	}
}

// ClusterOutput is the result of Cluster.
type ClusterOutput struct {
	Descriptor *descriptor.File
	Stats      cluster.Stats
}

// Cluster loads the feature table of kind from db, runs the constrained
// clusterer and renders the clusters as a descriptor file. progress may
// be nil.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func Cluster(ctx context.Context, db *database.DB, kind Kind, cfg config.ClusteringConfig, progress cluster.ProgressFunc, logger zerolog.Logger) (*ClusterOutput, error) {
	frame, labels, err := loadClusterInput(ctx, db, kind)
	if err != nil {
		return nil, err
	}
	if frame.Len() == 0 {
		return nil, fmt.Errorf("%w: no %s rows", ErrEmptyInput, kind)
	}

	x := frame.Values
	if useTFIDF(kind, cfg.TFIDF) {
		x = cluster.TFIDF(x)
	}

	c := cluster.New(cluster.Config{
		K:                    cfg.K,
		MinObjectsPerCluster: cfg.MinObjectsPerCluster,
		SearchWidth:          cfg.SearchWidth,
		MaxIterations:        cfg.MaxIterations,
		Tolerance:            cfg.Tolerance,
		Seed:                 cfg.Seed,
		Workers:              cfg.Workers,
	}, logger, cluster.WithProgress(progress))

	res, err := c.Cluster(ctx, x, labels)
	if err != nil {
		return nil, fmt.Errorf("cluster %s: %w", kind, err)
	}

	return &ClusterOutput{
		Descriptor: buildDescriptor(kind, frame, labels, res, cfg.ExplainThreshold),
		Stats:      res.Stats,
	}, nil
}

// loadClusterInput returns the feature frame and the label of every row.
func loadClusterInput(ctx context.Context, db *database.DB, kind Kind) (*database.Frame, []string, error) {
	switch kind {
	case KindUsers:
		frame, err := db.UserFeatures(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("load user features: %w", err)
		}
		return frame, frame.IDs, nil

	case KindBookings:
		frame, err := db.Table(ctx, database.TableBookings, database.ColumnBooking,
			database.ColumnUser, database.ColumnItem, database.ColumnYear)
		if err != nil {
			return nil, nil, fmt.Errorf("load booking features: %w", err)
		}
		pairs, err := db.Pairs(ctx, database.TableBookings, database.ColumnBooking, database.ColumnItem, true)
		if err != nil {
			return nil, nil, fmt.Errorf("load booking properties: %w", err)
		}
		item := make(map[string]string, len(pairs))
		for _, p := range pairs {
			if _, ok := item[p.A]; !ok {
				item[p.A] = p.B
			}
		}
		labels := make([]string, frame.Len())
		for i, id := range frame.IDs {
			// A booking without a property counts as its own object.
			if labels[i] = item[id]; labels[i] == "" {
				labels[i] = id
			}
		}
		return frame, labels, nil

	default:
		return nil, nil, fmt.Errorf("unknown cluster kind %q", kind)
	}
}

func buildDescriptor(kind Kind, frame *database.Frame, labels []string, res *cluster.Result, threshold float64) *descriptor.File {
	n := res.Stats.FinalClusters
	members := make([][]int, n)
	for row, cl := range res.Assignments {
		members[cl] = append(members[cl], row)
	}

	f := &descriptor.File{Clusters: make([]descriptor.Cluster, n)}
	sizes := make([]float64, n)
	objects := make([]float64, n)

	for id, rows := range members {
		c := descriptor.Cluster{
			ID:    id,
			Label: strconv.Itoa(id),
			Explanation: descriptor.SortedFeatures(
				descriptor.Explain(frame.Features, columnMeans(frame.Values, rows, len(frame.Features)), threshold)),
		}

		ids := make([]string, len(rows))
		for i, row := range rows {
			ids[i] = frame.IDs[row]
		}
		sizes[id] = float64(len(ids))

		switch kind {
		case KindUsers:
			c.Users = ids
			c.Counts = []int{len(ids)}
			objects[id] = float64(len(ids))
		case KindBookings:
			items := distinctInOrder(labels, rows)
			c.Bookings = ids
			c.Items = items
			c.Counts = []int{len(ids), len(items)}
			objects[id] = float64(len(items))
		}
		f.Clusters[id] = c
	}

	f.Preamble = descriptor.Describe(string(kind)+" per cluster", sizes)
	if kind == KindBookings {
		f.Preamble = append(f.Preamble, descriptor.Describe("items per cluster", objects)...)
	}
	return f
}

// columnMeans averages the given rows of values.
func columnMeans(values [][]float64, rows []int, dim int) []float64 {
	sum := make([]float64, dim)
	if len(rows) == 0 {
		return sum
	}
	for _, row := range rows {
		floats.Add(sum, values[row])
	}
	floats.Scale(1/float64(len(rows)), sum)
	return sum
}

func distinctInOrder(labels []string, rows []int) []string {
	seen := make(map[string]bool, len(rows))
	var out []string
	for _, row := range rows {
		if l := labels[row]; !seen[l] {
			seen[l] = true
			out = append(out, l)
		}
	}
	return out
}

// useTFIDF resolves a clustering.tfidf mode. Empty means auto, which
// reweights user features only.
func useTFIDF(kind Kind, mode string) bool {
	switch mode {
	case config.TFIDFOn:
		return true
	case config.TFIDFOff:
		return false
	default:
		return kind == KindUsers
	}
}
