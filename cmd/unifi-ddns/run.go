package main

import (
	"context"
	"fmt"

	"github.com/texmexwithplex/unifi-dual-ip-update-route53/pkg/dns"
	"github.com/texmexwithplex/unifi-dual-ip-update-route53/pkg/ipsource"
	appmetrics "github.com/texmexwithplex/unifi-dual-ip-update-route53/pkg/metrics"
	"github.com/texmexwithplex/unifi-dual-ip-update-route53/pkg/utils"
)

// runOnce performs a single discover-then-update run.
// Steps are strictly sequential and the run terminates on the first error.
// Returning nil means the run completed: either an update was submitted or it was correctly skipped.
func runOnce(ctx context.Context, source ipsource.Source, updater dns.Updater, recordName string, metrics *appmetrics.AppMetrics) error {
	log := utils.LogFromContext(ctx)

	addrs, err := source.Fetch(ctx)
	metrics.RecordSourceFetch(source.Name(), err == nil)
	if err != nil {
		return fmt.Errorf("error fetching the current address: %w", err)
	}

	if addrs.Empty() {
		log.InfoContext(ctx, "No public address discovered, skipping DNS update")
		return nil
	}

	log.InfoContext(ctx, "Discovered public addresses", "ipv4", addrs.IPv4, "ipv6", addrs.IPv6)

	outcome, err := updater.Upsert(ctx, recordName, addrs.IPv4, addrs.IPv6)
	if err != nil {
		return fmt.Errorf("error updating DNS records: %w", err)
	}

	if outcome.Skipped {
		log.InfoContext(ctx, "Nothing to update, skipped DNS update")
		return nil
	}

	log.InfoContext(ctx, "DNS update submitted", "record", recordName, "changeId", outcome.ChangeID, "status", outcome.Status)
	return nil
}
