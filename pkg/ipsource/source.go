package ipsource

import (
	"context"
	"fmt"
	"time"

	"github.com/texmexwithplex/unifi-dual-ip-update-route53/pkg/config"
	appmetrics "github.com/texmexwithplex/unifi-dual-ip-update-route53/pkg/metrics"
)

// Timeout for each outbound request, to bound the worst-case run duration
const requestTimeout = 10 * time.Second

// Addresses holds the discovered public addresses of the gateway.
// An empty string means the address family is absent.
type Addresses struct {
	IPv4 string
	IPv6 string
}

// Empty returns true if both address families are absent
func (a Addresses) Empty() bool {
	return a.IPv4 == "" && a.IPv6 == ""
}

// Source defines the interface for obtaining the current public address(es)
type Source interface {
	// Name returns the source's name
	Name() string
	// Fetch obtains the current public address(es)
	Fetch(ctx context.Context) (Addresses, error)
}

// New creates a new IP source based on the configuration
func New(cfg *config.Config, metrics *appmetrics.AppMetrics) (Source, error) {
	switch cfg.Source {
	case config.SourceEcho:
		return NewEchoSource(metrics), nil
	case config.SourceUnifi:
		source, err := NewUnifiSource(&cfg.Unifi, metrics)
		if err != nil {
			return nil, fmt.Errorf("error initializing UniFi source: %w", err)
		}
		return source, nil
	default:
		return nil, fmt.Errorf("unsupported IP source: %s", cfg.Source)
	}
}
