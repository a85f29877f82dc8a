// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package intel

import (
	"encoding/json"
	"fmt"
	"net/netip"
	"regexp"
)

// maxAddressLength is the longest textual IPv6 form including an embedded IPv4 tail.
const maxAddressLength = 45

// addressCharset is the only alphabet an address may be written in.
var addressCharset = regexp.MustCompile(`^[0-9A-Fa-f.:]+$`)

// Fields are the registration details extracted from a registry response.
// An empty string means the field is absent.
type Fields struct {
	// Organization is the name of the holder of the address block.
	Organization string `json:"organization" yaml:"organization,omitempty"`
	// CountryCode is the ISO 3166 alpha-2 country of the holder.
	CountryCode string `json:"countryCode" yaml:"countryCode,omitempty"`
	// ASN is the originating autonomous system, always written as "AS<number>".
	ASN string `json:"asn" yaml:"asn,omitempty"`
	// AddressRange is the registered block, in the notation of the registry.
	AddressRange string `json:"addressRange" yaml:"addressRange,omitempty"`
}

// Record is the assembled intelligence for one address.
type Record struct {
	// Address is the canonical form of the looked up address.
	Address string `json:"address" yaml:"address"`
	// Hostname is the first name returned by the reverse lookup.
	Hostname string `json:"hostname" yaml:"hostname,omitempty"`
	Fields   `yaml:",inline"`
}

// IsEmpty reports whether nothing at all is known about the address.
func (r Record) IsEmpty() bool {
	return r.Hostname == "" && r.Fields == Fields{}
}

// MarshalJSON writes absent fields as null.
func (r Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Address      string  `json:"address"`
		Hostname     *string `json:"hostname"`
		Organization *string `json:"organization"`
		CountryCode  *string `json:"countryCode"`
		ASN          *string `json:"asn"`
		AddressRange *string `json:"addressRange"`
	}{
		Address:      r.Address,
		Hostname:     optional(r.Hostname),
		Organization: optional(r.Organization),
		CountryCode:  optional(r.CountryCode),
		ASN:          optional(r.ASN),
		AddressRange: optional(r.AddressRange),
	})
}

func (r Record) String() string {
	return fmt.Sprintf("%s host=%q org=%q country=%q asn=%q range=%q",
		r.Address, r.Hostname, r.Organization, r.CountryCode, r.ASN, r.AddressRange)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// NormalizeAddress checks that s is a syntactically valid IPv4 or IPv6
// address and returns its canonical form. Anything else, including zoned
// addresses, is rejected before it can reach a network call.
func NormalizeAddress(s string) (string, bool) {
	if s == "" || len(s) > maxAddressLength || !addressCharset.MatchString(s) {
		return "", false
	}
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return "", false
	}
	return addr.Unmap().String(), true
}
