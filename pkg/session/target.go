// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"net/netip"
	"regexp"
)

// maxHostnameLength is the longest domain name in presentation format.
const maxHostnameLength = 253

var hostnamePattern = regexp.MustCompile(`^(?:[A-Za-z0-9](?:[A-Za-z0-9-]{0,61}[A-Za-z0-9])?\.)*[A-Za-z0-9](?:[A-Za-z0-9-]{0,61}[A-Za-z0-9])?\.?$`)

// ValidTarget reports whether target is a hostname or an IP address that
// can be handed to the probe.
func ValidTarget(target string) bool {
	if target == "" || len(target) > maxHostnameLength {
		return false
	}
	if addr, err := netip.ParseAddr(target); err == nil {
		return addr.Zone() == ""
	}
	return hostnamePattern.MatchString(target)
}
