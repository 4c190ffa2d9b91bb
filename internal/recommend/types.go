// Bookrec - Cluster-Constrained Booking Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

package recommend

// ItemRec is one recommended property.
type ItemRec struct {
	Propcode string  `json:"propcode"`
	Score    float64 `json:"score"`
}

// ClusterRec is one recommended booking cluster with its best candidate
// properties and its explanation.
type ClusterRec struct {
	ClusterID  int                `json:"bg_id"`
	Score      float64            `json:"score"`
	Properties []ItemRec          `json:"properties"`
	Features   map[string]float64 `json:"features"`
}

// ClusterResult is the response body of a cluster recommendation.
type ClusterResult struct {
	User                map[string]float64            `json:"user"`
	UserCluster         map[string]map[string]float64 `json:"user_cluster"`
	Recs                []ClusterRec                  `json:"recs"`
	PrevBookingsSummary map[string]float64            `json:"prev_bookings_summary"`
}

// ItemResult is the response body of an item recommendation.
type ItemResult struct {
	User                map[string]float64 `json:"user"`
	Recs                []ItemRec          `json:"recs"`
	PrevBookingsSummary map[string]float64 `json:"prev_bookings_summary"`
}

// Stats describes the loaded dataset.
type Stats struct {
	Users           int  `json:"users"`
	UserClusters    int  `json:"user_clusters"`
	BookingClusters int  `json:"booking_clusters"`
	Items           int  `json:"items"`
	ActiveItems     int  `json:"active_items"`
	RecsNNZ         int  `json:"recs_nnz"`
	ContentEnabled  bool `json:"content_enabled"`
}
