// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package hop

import (
	"fmt"
	"slices"
	"strings"
)

// ProbesPerHop is the number of probe attempts the tracing probe sends per hop.
const ProbesPerHop = 3

// Record is a single parsed hop line.
// A Record is a value: it is never modified after the parser produced it.
type Record struct {
	// Number is the ordinal hop number (TTL), starting at 1.
	Number int `json:"hop" yaml:"hop"`
	// Address is the replying address. It is empty exactly when
	// no probe attempt got a reply.
	Address string `json:"address,omitempty" yaml:"address,omitempty"`
	// Latencies are the round-trip samples in milliseconds in the order
	// the probe printed them.
	Latencies []float64 `json:"latencies" yaml:"latencies"`
	// TimedOut is set when all probe attempts timed out.
	TimedOut bool `json:"timedOut" yaml:"timedOut"`
	// PartialLoss is set when some, but not all, probe attempts timed out.
	PartialLoss bool `json:"partialLoss" yaml:"partialLoss"`
}

// HasAddress reports whether the hop replied with an address.
func (r Record) HasAddress() bool {
	return r.Address != ""
}

// MeanLatency returns the arithmetic mean of the latency samples.
// The second return value is false if the record has no samples.
func (r Record) MeanLatency() (float64, bool) {
	if len(r.Latencies) == 0 {
		return 0, false
	}
	var sum float64
	for _, l := range r.Latencies {
		sum += l
	}
	return sum / float64(len(r.Latencies)), true
}

// clone returns a copy of the record that shares no memory with r.
func (r Record) clone() Record {
	c := r
	c.Latencies = slices.Clone(r.Latencies)
	if c.Latencies == nil {
		c.Latencies = []float64{}
	}
	return c
}

func (r Record) String() string {
	if r.TimedOut {
		return fmt.Sprintf("%-2d  *", r.Number)
	}
	samples := make([]string, 0, len(r.Latencies))
	for _, l := range r.Latencies {
		samples = append(samples, fmt.Sprintf("%.3f ms", l))
	}
	return fmt.Sprintf("%-2d  %-39.39s  %s", r.Number, r.Address, strings.Join(samples, "  "))
}
