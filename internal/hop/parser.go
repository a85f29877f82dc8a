// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package hop

import (
	"math"
	"net/netip"
	"slices"
	"strconv"
	"strings"
)

// Dialect is the output format of a route-tracing probe.
type Dialect string

// Dialect constants for the supported probes.
const (
	// DialectUnix is the output of traceroute(8) run with -n:
	// the hop number leads, the address follows and then one
	// token per probe attempt (latency or "*").
	DialectUnix Dialect = "unix"
	// DialectWindows is the output of tracert run with -d:
	// the hop number leads, the per-attempt latencies follow
	// and the address or a timeout phrase trails.
	DialectWindows Dialect = "windows"
)

func (d Dialect) String() string {
	switch d {
	case DialectUnix, DialectWindows:
		return string(d)
	default:
		return "unknown"
	}
}

// IsValid reports whether d is a supported dialect.
func (d Dialect) IsValid() bool {
	return slices.Contains([]Dialect{DialectUnix, DialectWindows}, d)
}

const (
	timeoutMarker   = "*"
	latencyUnit     = "ms"
	timeoutSentinel = "request timed out."
)

// Parser turns single lines of probe output into hop records.
// It holds no state between calls and is safe for concurrent use.
type Parser struct {
	dialect Dialect
}

// NewParser returns a parser for the given dialect.
func NewParser(d Dialect) Parser {
	return Parser{dialect: d}
}

// Dialect returns the dialect the parser understands.
func (p Parser) Dialect() Dialect {
	return p.dialect
}

// ParseLine parses one line of probe output.
// The second return value is false for lines that do not describe a hop
// (banners, headers, blank lines). Callers skip those lines.
func (p Parser) ParseLine(line string) (Record, bool) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return Record{}, false
	}

	number, err := strconv.Atoi(fields[0])
	if err != nil || number < 1 {
		return Record{}, false
	}

	var (
		a  attempts
		ok bool
	)
	switch p.dialect {
	case DialectWindows:
		a, ok = parseWindows(fields[1:])
	default:
		a, ok = parseUnix(fields[1:])
	}
	if !ok {
		return Record{}, false
	}
	return a.record(number)
}

// attempts collects what a hop line says about its probe attempts.
type attempts struct {
	address   string
	latencies []float64
	timeouts  int
}

func (a attempts) record(number int) (Record, bool) {
	if len(a.latencies)+a.timeouts != ProbesPerHop {
		return Record{}, false
	}

	switch {
	case a.timeouts == ProbesPerHop:
		if a.address != "" {
			return Record{}, false
		}
		return Record{Number: number, Latencies: []float64{}, TimedOut: true}, true
	case a.address == "":
		// Samples without a replying address cannot be attributed.
		return Record{}, false
	default:
		return Record{
			Number:      number,
			Address:     a.address,
			Latencies:   a.latencies,
			PartialLoss: a.timeouts > 0,
		}, true
	}
}

// parseUnix parses the tokens after the hop number of a traceroute line, e.g.
//
//	203.0.113.1  1.234 ms  1.456 ms  1.789 ms
//	192.168.1.1  * 2.345 ms *
//	router.example (10.0.0.1)  0.512 ms  0.498 ms 10.0.0.2  0.611 ms
//	* * *
func parseUnix(tokens []string) (attempts, bool) {
	var a attempts
	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		switch {
		case tok == timeoutMarker:
			a.timeouts++
		case tok == latencyUnit, strings.HasPrefix(tok, "!"):
			// unit already consumed or ICMP annotation like !H, !N, !X
		case isAddress(tok):
			if a.address == "" {
				a.address = tok
			}
		case isParenthesizedAddress(tok):
			if a.address == "" {
				a.address = strings.Trim(tok, "()")
			}
		default:
			v, consumed, ok := readLatency(tokens[i:])
			if !ok {
				// reverse names printed without -n
				continue
			}
			a.latencies = append(a.latencies, v)
			i += consumed - 1
		}
	}
	return a, true
}

// parseWindows parses the tokens after the hop number of a tracert line, e.g.
//
//	<1 ms    <1 ms    <1 ms  192.168.1.1
//	*        *        *     Request timed out.
//	12 ms     *       11 ms  host.example [10.0.0.1]
func parseWindows(tokens []string) (attempts, bool) {
	var a attempts
	i := 0
	for n := 0; n < ProbesPerHop; n++ {
		if i >= len(tokens) {
			return a, false
		}
		if tokens[i] == timeoutMarker {
			a.timeouts++
			i++
			continue
		}
		v, consumed, ok := readLatency(tokens[i:])
		if !ok {
			return a, false
		}
		a.latencies = append(a.latencies, v)
		i += consumed
	}

	rest := tokens[i:]
	if len(rest) == 0 {
		return a, a.timeouts == ProbesPerHop
	}
	if strings.EqualFold(strings.Join(rest, " "), timeoutSentinel) {
		return a, true
	}

	last := strings.Trim(rest[len(rest)-1], "[]")
	if isAddress(last) {
		a.address = last
	}
	return a, true
}

// readLatency reads one latency sample from the start of tokens.
// It accepts "1.234 ms", "1.234ms", "<1 ms" and "<1ms".
// It returns the value in milliseconds and the number of tokens consumed.
// Samples must be finite and non-negative.
func readLatency(tokens []string) (float64, int, bool) {
	if len(tokens) == 0 {
		return 0, 0, false
	}
	tok, consumed := tokens[0], 1
	switch {
	case strings.HasSuffix(tok, latencyUnit) && len(tok) > len(latencyUnit):
		tok = strings.TrimSuffix(tok, latencyUnit)
	case len(tokens) > 1 && tokens[1] == latencyUnit:
		consumed = 2
	default:
		return 0, 0, false
	}

	// tracert reports sub-millisecond replies as "<1"
	tok = strings.TrimPrefix(tok, "<")
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil || v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, 0, false
	}
	return v, consumed, true
}

func isAddress(s string) bool {
	_, err := netip.ParseAddr(s)
	return err == nil
}

func isParenthesizedAddress(s string) bool {
	if len(s) < 3 || s[0] != '(' || s[len(s)-1] != ')' {
		return false
	}
	return isAddress(s[1 : len(s)-1])
}
