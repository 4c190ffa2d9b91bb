// Bookrec - Cluster-Constrained Booking Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

// Package progress renders staged progress of the offline tools as
// terminal progress bars.
//
//	rep := progress.New(os.Stderr)
//	defer rep.Finish()
//	clusterer := cluster.New(cfg, logger, cluster.WithProgress(rep.Update))
package progress

import (
	"io"
	"sync"

	"github.com/cheggaaa/pb/v3"
)

// Reporter shows one bar per stage. A new stage name finishes the
// previous bar. A nil writer disables output.
type Reporter struct {
	mu    sync.Mutex
	out   io.Writer
	bar   *pb.ProgressBar
	stage string
}

// New creates a Reporter writing to out.
func New(out io.Writer) *Reporter {
	return &Reporter{out: out}
}

// Update reports done of total units for stage. Its signature matches
// cluster.ProgressFunc.
func (r *Reporter) Update(stage string, done, total int) {
	if r == nil || r.out == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.bar == nil || stage != r.stage {
		r.finishLocked()
		r.bar = pb.New(total).SetWriter(r.out).Set("prefix", stage+" ").Start()
		r.stage = stage
	}
	r.bar.SetTotal(int64(total))
	r.bar.SetCurrent(int64(done))
}

// Stage returns the current stage name.
func (r *Reporter) Stage() string {
	if r == nil {
		return ""
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stage
}

// Finish completes the current bar.
func (r *Reporter) Finish() {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finishLocked()
}

func (r *Reporter) finishLocked() {
	if r.bar != nil {
		r.bar.Finish()
		r.bar = nil
	}
}
