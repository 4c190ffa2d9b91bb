// Bookrec - Cluster-Constrained Booking Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

// Package cluster implements constrained K-Means clustering of feature rows.
//
// Every row carries a label naming the underlying object (a property for
// booking rows, a user code for user rows). After an ordinary K-Means
// partition, a repair pass walks thresholds 1..MinObjectsPerCluster-1 and
// dissolves every cluster whose number of distinct labels equals the current
// threshold, moving its rows to the nearest cluster that is still acceptable.
// Dissolved clusters accumulate in a bad set that only grows. Finally the
// surviving cluster ids are renumbered densely in first-seen row order.
//
// # Fallback
//
// A row first looks at its SearchWidth nearest centroids. When none of them
// is acceptable the search widens to every centroid. When no acceptable
// cluster exists at all the row joins its nearest populated cluster, is
// flagged in Result.Fallback and counted in Stats.FallbackRows.
//
// # Usage
//
//	c := cluster.New(cluster.DefaultConfig(), logger)
//	res, err := c.Cluster(ctx, rows, labels)
//	if err != nil {
//	    return err
//	}
//	for i, id := range res.Assignments {
//	    fmt.Println(labels[i], id, res.Distances[i])
//	}
package cluster
