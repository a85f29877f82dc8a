// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package intel

import (
	"context"
	"fmt"
	"io"
	"net"
	"regexp"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/net/idna"

	"github.com/telekom/pathscope/internal/helper"
	"github.com/telekom/pathscope/internal/logger"
)

const (
	// Coordinator is the registry every query starts at.
	Coordinator = "whois.iana.org"
	// registryPort is the only port registry connections are made to.
	registryPort = "43"
	// MaxResponseSize caps how much of a single response is read.
	MaxResponseSize = 64 << 10
	// QueryTimeout bounds a single registry query including the dial.
	QueryTimeout = 5 * time.Second
)

// TrustedRegistries are the only hosts a referral is followed to.
var TrustedRegistries = []string{
	"whois.arin.net",
	"whois.ripe.net",
	"whois.apnic.net",
	"whois.lacnic.net",
	"whois.afrinic.net",
}

var referPattern = regexp.MustCompile(`(?im)^[ \t]*refer[ \t]*:[ \t]*(\S+)`)

var _ Registry = (*RegistryClient)(nil)

// Registry returns the raw registration data for an address.
//
//go:generate go tool moq -out registry_moq.go . Registry
type Registry interface {
	// Lookup queries the registries for address. It never fails: an empty
	// response means nothing could be retrieved.
	Lookup(ctx context.Context, address string) []byte
}

// Dialer opens the TCP connections to the registries.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// RegistryClient speaks the WHOIS protocol: it writes the address followed by
// CRLF and reads the response until the server closes the connection.
type RegistryClient struct {
	dialer      Dialer
	coordinator string
	trusted     map[string]struct{}
	timeout     time.Duration
	maxSize     int64
	retry       helper.RetryConfig
	metrics     registryMetrics
}

// NewRegistryClient creates a client that starts every query at the
// [Coordinator] and retries failed dials as configured.
func NewRegistryClient(retry helper.RetryConfig) *RegistryClient {
	trusted := make(map[string]struct{}, len(TrustedRegistries))
	for _, host := range TrustedRegistries {
		trusted[host] = struct{}{}
	}
	return &RegistryClient{
		dialer:      &net.Dialer{},
		coordinator: Coordinator,
		trusted:     trusted,
		timeout:     QueryTimeout,
		maxSize:     MaxResponseSize,
		retry:       retry,
		metrics:     newRegistryMetrics(),
	}
}

// Lookup asks the coordinator about the address and follows a trusted
// referral once. Any failure along the way yields an empty response.
func (c *RegistryClient) Lookup(ctx context.Context, address string) []byte {
	log := logger.FromContext(ctx).With("address", address)

	resp, err := c.query(ctx, c.coordinator, address)
	if err != nil {
		return nil
	}

	referral, ok := Referral(resp)
	if !ok {
		return resp
	}

	host, ok := c.trustedHost(referral)
	if !ok {
		log.WarnContext(ctx, "Ignoring referral to untrusted registry", "referral", referral)
		c.metrics.referrals.WithLabelValues("rejected").Inc()
		return resp
	}
	c.metrics.referrals.WithLabelValues("followed").Inc()

	resp, err = c.query(ctx, host, address)
	if err != nil {
		return nil
	}
	return resp
}

// query sends a single request to host and returns the possibly truncated response.
func (c *RegistryClient) query(ctx context.Context, host, address string) (resp []byte, err error) {
	tracer := trace.SpanFromContext(ctx).TracerProvider().Tracer("intel.registryClient")
	ctx, span := tracer.Start(ctx, "registry.query", trace.WithAttributes(
		attribute.String("registry.host", host),
	))
	defer span.End()
	defer func() { c.metrics.observe(host, err) }()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var conn net.Conn
	dial := helper.Retry(func(ctx context.Context) error {
		var dErr error
		conn, dErr = c.dialer.DialContext(ctx, "tcp", net.JoinHostPort(host, registryPort))
		return dErr
	}, c.retry)
	if err = dial(ctx); err != nil {
		return nil, wrapError(ctx, err, "failed to connect to registry", "host", host)
	}
	defer func() { _ = conn.Close() }()

	// The deadline unblocks reads and writes once the query timed out or the
	// caller went away.
	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetDeadline(time.Now())
	})
	defer stop()
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	if _, err = io.WriteString(conn, address+"\r\n"); err != nil {
		return nil, wrapError(ctx, err, "failed to send registry query", "host", host)
	}

	resp, err = io.ReadAll(io.LimitReader(conn, c.maxSize))
	if err != nil {
		return nil, wrapError(ctx, err, "failed to read registry response", "host", host)
	}
	span.SetAttributes(attribute.Int("registry.response.bytes", len(resp)))
	return resp, nil
}

// trustedHost normalizes a referral target and reports whether it is one of
// the trusted registries. Schemes, ports and paths in the referral are
// dropped: the port is never taken from a response.
func (c *RegistryClient) trustedHost(referral string) (string, bool) {
	host := strings.ToLower(referral)
	if i := strings.Index(host, "://"); i >= 0 {
		host = host[i+3:]
	}
	if i := strings.IndexAny(host, "/?#"); i >= 0 {
		host = host[:i]
	}
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.TrimSuffix(host, ".")

	host, err := idna.Lookup.ToASCII(host)
	if err != nil || host == "" {
		return "", false
	}
	_, ok := c.trusted[host]
	return host, ok
}

// Referral returns the host named by the first "refer:" line of a response.
func Referral(resp []byte) (string, bool) {
	m := referPattern.FindSubmatch(resp)
	if m == nil {
		return "", false
	}
	return string(m[1]), true
}

func (c *RegistryClient) String() string {
	return fmt.Sprintf("registry client (coordinator %s, timeout %v)", c.coordinator, c.timeout)
}
