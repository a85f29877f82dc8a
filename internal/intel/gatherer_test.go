// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package intel

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGatherer_Gather(t *testing.T) {
	tests := []struct {
		name     string
		address  string
		names    []string
		dnsErr   error
		registry string
		want     Record
	}{
		{
			name:     "full record",
			address:  "192.0.2.1",
			names:    []string{"core1.example.net.", "alias.example.net."},
			registry: "OrgName: Example Org\nCountry: de\nOriginAS: 64500\nCIDR: 192.0.2.0/24\n",
			want: Record{
				Address:  "192.0.2.1",
				Hostname: "core1.example.net",
				Fields: Fields{
					Organization: "Example Org",
					CountryCode:  "DE",
					ASN:          "AS64500",
					AddressRange: "192.0.2.0/24",
				},
			},
		},
		{
			name:     "reverse lookup fails",
			address:  "192.0.2.1",
			dnsErr:   errors.New("NXDOMAIN"),
			registry: "country: NL\n",
			want:     Record{Address: "192.0.2.1", Fields: Fields{CountryCode: "NL"}},
		},
		{
			name:    "everything fails",
			address: "2001:DB8::1",
			dnsErr:  errors.New("timeout"),
			want:    Record{Address: "2001:db8::1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolver := &ResolverMock{
				LookupAddrFunc: func(ctx context.Context, addr string) ([]string, error) {
					return tt.names, tt.dnsErr
				},
			}
			registry := &RegistryMock{
				LookupFunc: func(ctx context.Context, address string) []byte {
					return []byte(tt.registry)
				},
			}
			g := NewGatherer(NewCache(10), resolver, registry)

			got, ok := g.Gather(t.Context(), tt.address)

			require.True(t, ok)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Gather() mismatch (-want +got):\n%s", diff)
			}
			assert.Equal(t, 1, g.CacheLen())
		})
	}
}

func TestGatherer_RejectsMalformedAddress(t *testing.T) {
	resolver := &ResolverMock{}
	registry := &RegistryMock{}
	g := NewGatherer(NewCache(10), resolver, registry)

	for _, address := range []string{"", "example.com", "1.2.3.4\r\nhelp", "-a", "fe80::1%lo"} {
		_, ok := g.Gather(t.Context(), address)
		assert.False(t, ok, address)
	}

	assert.Empty(t, resolver.LookupAddrCalls())
	assert.Empty(t, registry.LookupCalls())
	assert.Zero(t, g.CacheLen())
}

func TestGatherer_UsesCache(t *testing.T) {
	resolver := &ResolverMock{
		LookupAddrFunc: func(ctx context.Context, addr string) ([]string, error) {
			return []string{"a.example."}, nil
		},
	}
	registry := &RegistryMock{
		LookupFunc: func(ctx context.Context, address string) []byte { return nil },
	}
	g := NewGatherer(NewCache(10), resolver, registry)

	first, ok := g.Gather(t.Context(), "192.0.2.1")
	require.True(t, ok)
	second, ok := g.Gather(t.Context(), "192.0.2.1")
	require.True(t, ok)

	assert.Equal(t, first, second)
	assert.Len(t, resolver.LookupAddrCalls(), 1)
	assert.Len(t, registry.LookupCalls(), 1)

	g.ClearCache()
	_, _ = g.Gather(t.Context(), "192.0.2.1")
	assert.Len(t, resolver.LookupAddrCalls(), 2)
}

func TestGatherer_LooksUpConcurrently(t *testing.T) {
	var started sync.WaitGroup
	started.Add(2)
	both := make(chan struct{})
	go func() {
		started.Wait()
		close(both)
	}()

	wait := func() bool {
		started.Done()
		select {
		case <-both:
			return true
		case <-time.After(2 * time.Second):
			return false
		}
	}

	resolver := &ResolverMock{
		LookupAddrFunc: func(ctx context.Context, addr string) ([]string, error) {
			if !wait() {
				return nil, errors.New("registry lookup did not run concurrently")
			}
			return []string{"host.example."}, nil
		},
	}
	registry := &RegistryMock{
		LookupFunc: func(ctx context.Context, address string) []byte {
			if !wait() {
				return nil
			}
			return []byte("country: DE\n")
		},
	}
	g := NewGatherer(NewCache(10), resolver, registry)

	got, ok := g.Gather(t.Context(), "192.0.2.1")

	require.True(t, ok)
	assert.Equal(t, "host.example", got.Hostname)
	assert.Equal(t, "DE", got.CountryCode)
}

func TestGatherer_BoundsReverseLookup(t *testing.T) {
	resolver := &ResolverMock{
		LookupAddrFunc: func(ctx context.Context, addr string) ([]string, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
	}
	registry := &RegistryMock{
		LookupFunc: func(ctx context.Context, address string) []byte { return []byte("country: FR\n") },
	}
	g := NewGatherer(NewCache(10), resolver, registry)
	g.dnsTimeout = 20 * time.Millisecond

	got, ok := g.Gather(t.Context(), "192.0.2.1")

	require.True(t, ok)
	assert.Empty(t, got.Hostname)
	assert.Equal(t, "FR", got.CountryCode)
}

func TestGatherer_AbandonedLookupIsNotCached(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	resolver := &ResolverMock{
		LookupAddrFunc: func(ctx context.Context, addr string) ([]string, error) {
			cancel()
			return nil, context.Canceled
		},
	}
	registry := &RegistryMock{
		LookupFunc: func(ctx context.Context, address string) []byte {
			<-ctx.Done()
			return nil
		},
	}
	g := NewGatherer(NewCache(10), resolver, registry)

	_, ok := g.Gather(ctx, "192.0.2.1")

	assert.True(t, ok)
	assert.Zero(t, g.CacheLen())
}
