// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package intel

import (
	"bytes"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// The registries name the same facts differently. The patterns of each field
// are tried in order and the first one that matches wins.
var (
	organizationPatterns = fieldPatterns("OrgName", "org-name", "Organization", "organisation", "owner", "descr", "netname")
	countryPatterns      = fieldPatterns("Country")
	asnPatterns          = fieldPatterns("OriginAS", "origin", "aut-num", "ASNumber")
	rangePatterns        = fieldPatterns("CIDR", "NetRange", "inetnum", "inet6num", "route", "route6")
)

var (
	asnValue     = regexp.MustCompile(`(?i)^(?:AS)?\s*(\d+)\b`)
	countryValue = regexp.MustCompile(`^[A-Za-z]{2}$`)
)

// fieldPatterns compiles a line matcher for every key. Keys are matched case
// insensitively at the start of a line and capture the trimmed value.
func fieldPatterns(keys ...string) []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, 0, len(keys))
	for _, key := range keys {
		patterns = append(patterns, regexp.MustCompile(`(?im)^[ \t]*`+regexp.QuoteMeta(key)+`[ \t]*:[ \t]*(\S[^\r\n]*?)[ \t]*\r?$`))
	}
	return patterns
}

// ParseRegistryResponse extracts the registration fields from a raw registry
// response. It never fails: fields that are missing or cannot be read stay
// empty. Input that is not text at all yields no fields.
func ParseRegistryResponse(raw []byte) Fields {
	text, ok := decodeText(raw)
	if !ok {
		return Fields{}
	}

	return Fields{
		Organization: firstMatch(text, organizationPatterns),
		CountryCode:  normalizeCountry(firstMatch(text, countryPatterns)),
		ASN:          normalizeASN(firstMatch(text, asnPatterns)),
		AddressRange: firstMatch(text, rangePatterns),
	}
}

// decodeText returns raw as a string. Responses that are not valid UTF-8 come
// from registries still serving Latin-1 and are decoded as ISO-8859-1.
func decodeText(raw []byte) (string, bool) {
	if len(raw) == 0 || bytes.IndexByte(raw, 0) >= 0 {
		return "", false
	}
	if utf8.Valid(raw) {
		return string(raw), true
	}
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
	if err != nil {
		return "", false
	}
	return string(decoded), true
}

func firstMatch(text string, patterns []*regexp.Regexp) string {
	for _, p := range patterns {
		if m := p.FindStringSubmatch(text); m != nil {
			return m[1]
		}
	}
	return ""
}

// normalizeASN turns "15169", "AS15169" or "AS15169, AS36040" into "AS15169".
func normalizeASN(v string) string {
	m := asnValue.FindStringSubmatch(strings.TrimSpace(v))
	if m == nil {
		return ""
	}
	return "AS" + m[1]
}

// normalizeCountry keeps the leading two letter code and drops trailing remarks.
func normalizeCountry(v string) string {
	fields := strings.Fields(v)
	if len(fields) == 0 || !countryValue.MatchString(fields[0]) {
		return ""
	}
	return strings.ToUpper(fields[0])
}
