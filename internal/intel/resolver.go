// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package intel

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/miekg/dns"
)

// ReverseLookupTimeout bounds a single reverse DNS lookup.
const ReverseLookupTimeout = 5 * time.Second

var (
	_ Resolver = (*net.Resolver)(nil)
	_ Resolver = (*dnsResolver)(nil)
)

// errNoPTR is returned when the name server answered without a PTR record.
var errNoPTR = errors.New("no PTR record")

// Resolver performs reverse DNS lookups.
//
//go:generate go tool moq -out resolver_moq.go . Resolver
type Resolver interface {
	// LookupAddr returns the names mapping to the given address.
	LookupAddr(ctx context.Context, addr string) ([]string, error)
}

// NewResolver returns the system resolver, or a resolver querying the given
// name server ("host:port") directly when one is set.
func NewResolver(nameserver string) Resolver {
	if nameserver == "" {
		return net.DefaultResolver
	}
	return &dnsResolver{
		client: &dns.Client{Net: "udp", Timeout: ReverseLookupTimeout},
		server: nameserver,
	}
}

// dnsResolver sends PTR queries to a single name server.
type dnsResolver struct {
	client *dns.Client
	server string
}

func (r *dnsResolver) LookupAddr(ctx context.Context, addr string) ([]string, error) {
	arpa, err := dns.ReverseAddr(addr)
	if err != nil {
		return nil, fmt.Errorf("invalid address %q: %w", addr, err)
	}

	msg := new(dns.Msg)
	msg.SetQuestion(arpa, dns.TypePTR)
	msg.RecursionDesired = true

	resp, _, err := r.client.ExchangeContext(ctx, msg, r.server)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", r.server, err)
	}
	if resp.Rcode != dns.RcodeSuccess {
		return nil, fmt.Errorf("name server %s answered %s", r.server, dns.RcodeToString[resp.Rcode])
	}

	var names []string
	for _, rr := range resp.Answer {
		if ptr, ok := rr.(*dns.PTR); ok {
			names = append(names, ptr.Ptr)
		}
	}
	if len(names) == 0 {
		return nil, errNoPTR
	}
	return names, nil
}

// hostname returns the first name without the trailing root dot.
func hostname(names []string) string {
	for _, name := range names {
		if name = strings.TrimSuffix(strings.TrimSpace(name), "."); name != "" {
			return name
		}
	}
	return ""
}
