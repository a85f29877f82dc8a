// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package probe

import (
	"runtime"
	"slices"

	"github.com/telekom/pathscope/internal/hop"
)

// Command describes how to invoke a route-tracing probe.
type Command struct {
	// Name is the executable, resolved through PATH.
	Name string `json:"name" yaml:"name"`
	// Args are the arguments passed before the target.
	Args []string `json:"args" yaml:"args"`
	// Dialect is the output format the probe prints.
	Dialect hop.Dialect `json:"dialect" yaml:"dialect"`
	// Remediation tells the user how to install the probe.
	Remediation string `json:"-" yaml:"-"`
}

// DefaultCommand returns the probe command for the running platform.
func DefaultCommand() Command {
	return CommandFor(runtime.GOOS)
}

// CommandFor returns the probe command for the given GOOS value.
func CommandFor(goos string) Command {
	switch goos {
	case "windows":
		return Command{
			Name:        "tracert",
			Args:        []string{"-d", "-h", "30", "-w", "2000"},
			Dialect:     hop.DialectWindows,
			Remediation: `tracert ships with Windows; make sure %SystemRoot%\System32 is on the PATH`,
		}
	case "darwin", "freebsd", "openbsd", "netbsd":
		return Command{
			Name:        "traceroute",
			Args:        []string{"-n", "-q", "3", "-w", "2", "-m", "30"},
			Dialect:     hop.DialectUnix,
			Remediation: "traceroute is part of the base system; make sure /usr/sbin is on the PATH",
		}
	default:
		return Command{
			Name:        "traceroute",
			Args:        []string{"-n", "-q", "3", "-w", "2", "-m", "30"},
			Dialect:     hop.DialectUnix,
			Remediation: "install it with your package manager, e.g. 'apt-get install traceroute' or 'apk add traceroute'",
		}
	}
}

// argv returns the full argument vector for the given target.
func (c Command) argv(target string) []string {
	return append(slices.Clone(c.Args), target)
}
