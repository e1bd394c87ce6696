package dns

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/route53"
	"github.com/aws/aws-sdk-go-v2/service/route53/types"
	"github.com/aws/smithy-go"

	"github.com/texmexwithplex/unifi-dual-ip-update-route53/pkg/config"
	appmetrics "github.com/texmexwithplex/unifi-dual-ip-update-route53/pkg/metrics"
)

// TTL for the upserted records, in seconds
const recordTTL = 300

// Comment attached to every change batch, for audit trails
const changeComment = "Automated DDNS update"

// route53API is the subset of the Route 53 client used by the updater
type route53API interface {
	ChangeResourceRecordSets(ctx context.Context, params *route53.ChangeResourceRecordSetsInput, optFns ...func(*route53.Options)) (*route53.ChangeResourceRecordSetsOutput, error)
}

// Compile time interface check
var _ Updater = (*Route53Updater)(nil)

// Route53Updater implements the Updater interface for AWS Route 53
type Route53Updater struct {
	zoneID  string
	metrics *appmetrics.AppMetrics
	client  route53API
}

// NewRoute53Updater creates a new Route 53 DNS updater.
// AWS credentials are resolved from the default chain (environment, shared config, instance metadata).
func NewRoute53Updater(ctx context.Context, cfg *config.ConfigRoute53, metrics *appmetrics.AppMetrics) (*Route53Updater, error) {
	if cfg.ZoneID == "" {
		return nil, errors.New("zone ID is required")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithHTTPClient(&http.Client{Timeout: requestTimeout}),
	)
	if err != nil {
		return nil, fmt.Errorf("error loading AWS configuration: %w", err)
	}

	return &Route53Updater{
		zoneID:  cfg.ZoneID,
		metrics: metrics,
		client:  route53.NewFromConfig(awsCfg),
	}, nil
}

// Upsert submits a single change batch with one UPSERT directive per present address family.
// The operation relies on the provider's upsert semantics, so no prior record state is read.
func (r *Route53Updater) Upsert(ctx context.Context, recordName string, ipv4 string, ipv6 string) (Outcome, error) {
	if ipv4 == "" && ipv6 == "" {
		return Outcome{Skipped: true}, nil
	}

	changes := make([]types.Change, 0, 2)
	if ipv4 != "" {
		changes = append(changes, upsertChange(recordName, types.RRTypeA, ipv4))
	}
	if ipv6 != "" {
		changes = append(changes, upsertChange(recordName, types.RRTypeAaaa, ipv6))
	}

	start := time.Now()
	var success bool
	if r.metrics != nil {
		defer func() {
			r.metrics.RecordAPICall("route53", http.MethodPost, "/2013-04-01/hostedzone/"+r.zoneID+"/rrset", success, time.Since(start))
		}()
	}

	reqCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	out, err := r.client.ChangeResourceRecordSets(reqCtx, &route53.ChangeResourceRecordSetsInput{
		HostedZoneId: aws.String(r.zoneID),
		ChangeBatch: &types.ChangeBatch{
			Comment: aws.String(changeComment),
			Changes: changes,
		},
	})
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) {
			return Outcome{}, fmt.Errorf("Route 53 rejected the change: %s: %s", apiErr.ErrorCode(), apiErr.ErrorMessage())
		}
		return Outcome{}, fmt.Errorf("error submitting the change, check that AWS credentials are configured (e.g. AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY): %w", err)
	}

	success = true

	outcome := Outcome{}
	if out.ChangeInfo != nil {
		outcome.ChangeID = aws.ToString(out.ChangeInfo.Id)
		outcome.Status = string(out.ChangeInfo.Status)
	}
	return outcome, nil
}

func upsertChange(recordName string, recordType types.RRType, value string) types.Change {
	return types.Change{
		Action: types.ChangeActionUpsert,
		ResourceRecordSet: &types.ResourceRecordSet{
			Name: aws.String(recordName),
			Type: recordType,
			TTL:  aws.Int64(recordTTL),
			ResourceRecords: []types.ResourceRecord{
				{Value: aws.String(value)},
			},
		},
	}
}
