// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package probe

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidTarget is returned when the target could be mistaken for a probe option.
var ErrInvalidTarget = errors.New("invalid probe target")

// ErrProbeNotFound is reported when the probe executable is not installed.
type ErrProbeNotFound struct {
	Command     string
	Remediation string
}

func (e ErrProbeNotFound) Error() string {
	if e.Remediation == "" {
		return fmt.Sprintf("%s command not found", e.Command)
	}
	return fmt.Sprintf("%s command not found: %s", e.Command, e.Remediation)
}

// ErrProbeTimeout is reported when the probe did not finish in time and was killed.
type ErrProbeTimeout struct {
	After time.Duration
}

func (e ErrProbeTimeout) Error() string {
	return fmt.Sprintf("trace timed out after %v and was terminated", e.After)
}

// ErrProbeFailed is reported when the probe exited unsuccessfully.
type ErrProbeFailed struct {
	ExitCode int
	Stderr   string
}

func (e ErrProbeFailed) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("probe exited with code %d", e.ExitCode)
	}
	return fmt.Sprintf("probe exited with code %d: %s", e.ExitCode, e.Stderr)
}
