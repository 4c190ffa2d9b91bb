// Bookrec - Cluster-Constrained Booking Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
)

// sampleCount reads the observation count of one histogram series.
func sampleCount(t *testing.T, o prometheus.Observer) uint64 {
	t.Helper()
	m, ok := o.(prometheus.Metric)
	if !ok {
		t.Fatalf("%T is not a prometheus.Metric", o)
	}
	var out dto.Metric
	if err := m.Write(&out); err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	return out.GetHistogram().GetSampleCount()
}

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/cluster/recs", "200"))

	RecordAPIRequest("GET", "/cluster/recs", "200", 5*time.Millisecond)
	RecordAPIRequest("GET", "/cluster/recs", "200", 7*time.Millisecond)

	got := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/cluster/recs", "200"))
	if got-before != 2 {
		t.Errorf("APIRequestsTotal delta = %v, want 2", got-before)
	}
}

func TestTrackActiveRequest(t *testing.T) {
	before := testutil.ToFloat64(APIActiveRequests)

	TrackActiveRequest(true)
	if got := testutil.ToFloat64(APIActiveRequests); got != before+1 {
		t.Errorf("APIActiveRequests = %v, want %v", got, before+1)
	}
	TrackActiveRequest(false)
	if got := testutil.ToFloat64(APIActiveRequests); got != before {
		t.Errorf("APIActiveRequests = %v, want %v", got, before)
	}
}

func TestRecordCacheLookup(t *testing.T) {
	hits := testutil.ToFloat64(CacheHits.WithLabelValues("item"))
	misses := testutil.ToFloat64(CacheMisses.WithLabelValues("item"))

	RecordCacheLookup("item", true)
	RecordCacheLookup("item", false)
	RecordCacheLookup("item", false)

	if got := testutil.ToFloat64(CacheHits.WithLabelValues("item")) - hits; got != 1 {
		t.Errorf("hits delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(CacheMisses.WithLabelValues("item")) - misses; got != 2 {
		t.Errorf("misses delta = %v, want 2", got)
	}
}

func TestRecordUnknownUserAndObjects(t *testing.T) {
	before := testutil.ToFloat64(UnknownUsers.WithLabelValues("cluster"))
	RecordUnknownUser("cluster")
	if got := testutil.ToFloat64(UnknownUsers.WithLabelValues("cluster")) - before; got != 1 {
		t.Errorf("UnknownUsers delta = %v, want 1", got)
	}

	SetDataObjects("users", 42)
	if got := testutil.ToFloat64(DataObjects.WithLabelValues("users")); got != 42 {
		t.Errorf("DataObjects[users] = %v, want 42", got)
	}
}

func TestRecordDBQuery(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantErr float64
	}{
		{"success", nil, 0},
		{"failure", errors.New("binder error"), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := "bookings_" + tt.name
			RecordDBQuery("SELECT", table, time.Millisecond, tt.err)
			if got := testutil.ToFloat64(DBQueryErrors.WithLabelValues("SELECT", table)); got != tt.wantErr {
				t.Errorf("DBQueryErrors = %v, want %v", got, tt.wantErr)
			}
		})
	}
}

func TestDurationsObserved(t *testing.T) {
	before := sampleCount(t, DataLoadDuration.WithLabelValues("recs_matrix"))

	RecordRecommendation("cluster", time.Millisecond)
	RecordDataLoad("recs_matrix", time.Second)

	if got := sampleCount(t, DataLoadDuration.WithLabelValues("recs_matrix")); got != before+1 {
		t.Errorf("DataLoadDuration samples = %d, want %d", got, before+1)
	}

	if n := testutil.CollectAndCount(RecommendationDuration); n == 0 {
		t.Error("RecommendationDuration has no series")
	}
	if n := testutil.CollectAndCount(DataLoadDuration); n == 0 {
		t.Error("DataLoadDuration has no series")
	}
}

func TestMetricGathering(t *testing.T) {
	RecordAPIRequest("GET", "/ping", "200", time.Millisecond)

	problems, err := testutil.GatherAndLint(prometheus.DefaultGatherer)
	if err != nil {
		t.Fatalf("GatherAndLint() error: %v", err)
	}
	for _, p := range problems {
		t.Logf("Metric lint problem: %s: %s", p.Metric, p.Text)
	}
}
