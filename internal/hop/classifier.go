// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package hop

import (
	"math"
	"slices"
)

// Category is the semantic classification of a hop.
type Category string

// Category constants.
const (
	// CategoryNormal is a hop that replied without anomalies.
	CategoryNormal Category = "normal"
	// CategoryHostile is a hop whose mean latency jumped by more than
	// [HostileThreshold] compared to the previous hop.
	CategoryHostile Category = "hostile"
	// CategoryGhost is a hop that did not reply to any probe attempt.
	CategoryGhost Category = "ghost"
	// CategoryLossy is a hop where some probe attempts timed out.
	CategoryLossy Category = "lossy"
)

// Categories returns all categories in priority order.
func Categories() []Category {
	return []Category{CategoryGhost, CategoryLossy, CategoryNormal, CategoryHostile}
}

// IsValid reports whether c is one of the known categories.
func (c Category) IsValid() bool {
	return slices.Contains(Categories(), c)
}

// HostileThreshold is the latency increase in milliseconds a hop may show
// over its predecessor before it is classified as hostile. Equality is normal.
const HostileThreshold = 100

// Classified is a [Record] enriched with its classification.
type Classified struct {
	Record `yaml:",inline"`
	// Category is the semantic category of the hop.
	Category Category `json:"category" yaml:"category"`
	// LatencyDelta is the rounded difference of the mean latency to the
	// previous hop in milliseconds. It is nil when no baseline exists.
	LatencyDelta *float64 `json:"latencyDelta" yaml:"latencyDelta"`
	// LossRate is the share of lost probe attempts, rounded to two decimals.
	// It is only set for lossy hops.
	LossRate *float64 `json:"lossRate" yaml:"lossRate"`
}

// Classify assigns a category to cur given the previous classified hop of the
// same trace, or nil for the first hop. The first matching rule wins:
//
//  1. ghost when all attempts timed out
//  2. lossy when some attempts timed out
//  3. normal when there is no usable baseline
//  4. hostile when the mean latency grew by more than [HostileThreshold], else normal
//
// Classify does not modify its arguments; the result shares no memory with them.
func Classify(cur Record, prev *Classified) Classified {
	out := Classified{Record: cur.clone()}

	switch {
	case cur.TimedOut:
		out.Category = CategoryGhost
	case cur.PartialLoss:
		out.Category = CategoryLossy
		lost := float64(ProbesPerHop-len(cur.Latencies)) / ProbesPerHop
		out.LossRate = ptr(roundTo(lost, 2))
	case prev == nil || prev.TimedOut:
		out.Category = CategoryNormal
	default:
		curMean, okCur := cur.MeanLatency()
		prevMean, okPrev := prev.MeanLatency()
		if !okCur || !okPrev {
			out.Category = CategoryNormal
			break
		}
		delta := math.Round(curMean - prevMean)
		out.LatencyDelta = ptr(delta)
		out.Category = CategoryNormal
		if delta > HostileThreshold {
			out.Category = CategoryHostile
		}
	}
	return out
}

// Classifier classifies the hops of one trace in arrival order.
// It keeps the previously classified hop as baseline for the next one.
// The zero value is ready to use. A Classifier is not safe for concurrent use.
type Classifier struct {
	prev *Classified
}

// Next classifies rec against the previous hop and remembers the result.
func (c *Classifier) Next(rec Record) Classified {
	res := Classify(rec, c.prev)
	c.prev = &res
	return res
}

// Reset drops the baseline, e.g. at the start of a new trace.
func (c *Classifier) Reset() {
	c.prev = nil
}

func roundTo(v float64, decimals int) float64 {
	p := math.Pow10(decimals)
	return math.Round(v*p) / p
}

func ptr[T any](v T) *T {
	return &v
}
