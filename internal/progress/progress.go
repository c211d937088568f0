// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package progress reports how far a conversion run has advanced.
package progress

import (
	"fmt"
	"io"
)

// Reporter counts processed jobs against a known total and prints a progress
// line after each one.
type Reporter struct {
	w         io.Writer
	total     int
	processed int
}

// New returns a Reporter expecting total jobs.
func New(w io.Writer, total int) *Reporter {
	return &Reporter{w: w, total: total}
}

// Step records one processed job and prints the running count.
func (r *Reporter) Step() {
	r.processed++
	fmt.Fprintf(r.w, "progress: %d/%d (%.1f%%)\n", r.processed, r.total, r.Fraction()*100)
}

// Processed returns the number of jobs recorded so far.
func (r *Reporter) Processed() int { return r.processed }

// Total returns the expected number of jobs.
func (r *Reporter) Total() int { return r.total }

// Fraction returns processed/total, or 0 when total is 0.
func (r *Reporter) Fraction() float64 {
	if r.total <= 0 {
		return 0
	}
	return float64(r.processed) / float64(r.total)
}
