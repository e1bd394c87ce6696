package dns

import (
	"context"
	"fmt"
	"time"

	"github.com/texmexwithplex/unifi-dual-ip-update-route53/pkg/config"
	appmetrics "github.com/texmexwithplex/unifi-dual-ip-update-route53/pkg/metrics"
)

// Timeout for each outbound request, to bound the worst-case run duration
const requestTimeout = 10 * time.Second

// Outcome is the result of a submitted (or skipped) upsert
type Outcome struct {
	// True if there was nothing to update, so no call was made
	Skipped bool
	// Change-tracking identifier returned by the provider
	ChangeID string
	// Provider-side status of the change (propagation is asynchronous and not polled)
	Status string
}

// Updater defines the interface for DNS updaters
type Updater interface {
	// Upsert submits one UPSERT directive per present address family, in a single batch.
	// If both addresses are empty, no call is made and the outcome is reported as skipped.
	Upsert(ctx context.Context, recordName string, ipv4 string, ipv6 string) (Outcome, error)
}

// NewUpdater creates a new DNS updater based on the configuration
func NewUpdater(ctx context.Context, cfg *config.Config, metrics *appmetrics.AppMetrics) (Updater, error) {
	updater, err := NewRoute53Updater(ctx, &cfg.Route53, metrics)
	if err != nil {
		return nil, fmt.Errorf("error initializing Route 53 updater: %w", err)
	}
	return updater, nil
}
