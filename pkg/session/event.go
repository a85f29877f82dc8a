// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"errors"
	"slices"

	"github.com/telekom/pathscope/internal/hop"
	"github.com/telekom/pathscope/internal/intel"
	"github.com/telekom/pathscope/internal/probe"
)

// EventType is the kind of a trace [Event].
type EventType string

const (
	// EventRaw carries an unparsed output line of the probe.
	EventRaw EventType = "raw"
	// EventHop carries a classified hop.
	EventHop EventType = "hop"
	// EventIntel carries the intelligence gathered for a hop address.
	EventIntel EventType = "intel"
	// EventError carries a probe failure.
	EventError EventType = "error"
	// EventComplete marks the end of the probe run. Intel events may still follow.
	EventComplete EventType = "complete"
)

// EventTypes returns all event types.
func EventTypes() []EventType {
	return []EventType{EventRaw, EventHop, EventIntel, EventError, EventComplete}
}

// IsValid reports whether e is one of the known event types.
func (e EventType) IsValid() bool {
	return slices.Contains(EventTypes(), e)
}

// ErrorCode tells consumers what kind of failure an error event reports.
type ErrorCode string

const (
	// ErrorCodeNotFound means the probe executable is not installed.
	ErrorCodeNotFound ErrorCode = "probe_not_found"
	// ErrorCodeTimeout means the probe did not finish in time.
	ErrorCodeTimeout ErrorCode = "timeout"
	// ErrorCodeFailed means the probe exited with an error.
	ErrorCodeFailed ErrorCode = "probe_failed"
	// ErrorCodeInvalidTarget means the target was rejected before the probe started.
	ErrorCodeInvalidTarget ErrorCode = "invalid_target"
	// ErrorCodeInternal is any other failure.
	ErrorCodeInternal ErrorCode = "internal"
)

// Event is a single message of a trace. Which fields are set depends on Type.
type Event struct {
	// Type is the kind of the event.
	Type EventType `json:"type" yaml:"type"`
	// Line is the raw probe output of a raw event.
	Line string `json:"line,omitempty" yaml:"line,omitempty"`
	// Hop is the classified hop of a hop event.
	Hop *hop.Classified `json:"hop,omitempty" yaml:"hop,omitempty"`
	// HopNumber correlates an intel event with the hop it was gathered for.
	HopNumber int `json:"hopNumber,omitempty" yaml:"hopNumber,omitempty"`
	// Intel is the record of an intel event.
	Intel *intel.Record `json:"intel,omitempty" yaml:"intel,omitempty"`
	// Error is the message of an error event.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
	// Code classifies the error of an error event.
	Code ErrorCode `json:"code,omitempty" yaml:"code,omitempty"`
}

func rawEvent(line string) Event {
	return Event{Type: EventRaw, Line: line}
}

func hopEvent(c hop.Classified) Event {
	return Event{Type: EventHop, Hop: &c}
}

func intelEvent(number int, rec intel.Record) Event {
	return Event{Type: EventIntel, HopNumber: number, Intel: &rec}
}

func errorEvent(err error) Event {
	return Event{Type: EventError, Error: err.Error(), Code: errorCode(err)}
}

func completeEvent() Event {
	return Event{Type: EventComplete}
}

func errorCode(err error) ErrorCode {
	var (
		notFound probe.ErrProbeNotFound
		timeout  probe.ErrProbeTimeout
		failed   probe.ErrProbeFailed
	)
	switch {
	case errors.As(err, &notFound):
		return ErrorCodeNotFound
	case errors.As(err, &timeout):
		return ErrorCodeTimeout
	case errors.As(err, &failed):
		return ErrorCodeFailed
	case errors.Is(err, probe.ErrInvalidTarget):
		return ErrorCodeInvalidTarget
	default:
		return ErrorCodeInternal
	}
}
