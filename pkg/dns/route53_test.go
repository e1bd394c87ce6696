package dns

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/route53"
	"github.com/aws/aws-sdk-go-v2/service/route53/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/texmexwithplex/unifi-dual-ip-update-route53/pkg/config"
)

// mockRoute53Client is a mock implementation of the route53API interface
type mockRoute53Client struct {
	inputs []*route53.ChangeResourceRecordSetsInput
	err    error
}

func (m *mockRoute53Client) ChangeResourceRecordSets(_ context.Context, params *route53.ChangeResourceRecordSetsInput, _ ...func(*route53.Options)) (*route53.ChangeResourceRecordSetsOutput, error) {
	m.inputs = append(m.inputs, params)
	if m.err != nil {
		return nil, m.err
	}
	return &route53.ChangeResourceRecordSetsOutput{
		ChangeInfo: &types.ChangeInfo{
			Id:     aws.String("/change/C2682N5HXP0BZ4"),
			Status: types.ChangeStatusPending,
		},
	}, nil
}

func newRoute53TestUpdaterWithMock() (*Route53Updater, *mockRoute53Client) {
	mockClient := &mockRoute53Client{}

	updater := &Route53Updater{
		zoneID: "Z123456ABCDEFG",
		client: mockClient,
	}

	return updater, mockClient
}

func TestRoute53Updater(t *testing.T) {
	t.Run("Upserts A and AAAA in one batch", func(t *testing.T) {
		updater, mockClient := newRoute53TestUpdaterWithMock()

		outcome, err := updater.Upsert(context.Background(), "home.example.com", "198.51.100.4", "2001:db8::1")
		require.NoError(t, err)
		assert.False(t, outcome.Skipped)
		assert.Equal(t, "/change/C2682N5HXP0BZ4", outcome.ChangeID)
		assert.Equal(t, "PENDING", outcome.Status)

		require.Len(t, mockClient.inputs, 1)
		input := mockClient.inputs[0]
		assert.Equal(t, "Z123456ABCDEFG", aws.ToString(input.HostedZoneId))
		require.NotNil(t, input.ChangeBatch)
		assert.Equal(t, "Automated DDNS update", aws.ToString(input.ChangeBatch.Comment))

		changes := input.ChangeBatch.Changes
		require.Len(t, changes, 2)
		for _, change := range changes {
			assert.Equal(t, types.ChangeActionUpsert, change.Action)
			assert.Equal(t, "home.example.com", aws.ToString(change.ResourceRecordSet.Name))
			assert.EqualValues(t, 300, aws.ToInt64(change.ResourceRecordSet.TTL))
			require.Len(t, change.ResourceRecordSet.ResourceRecords, 1)
		}
		assert.Equal(t, types.RRTypeA, changes[0].ResourceRecordSet.Type)
		assert.Equal(t, "198.51.100.4", aws.ToString(changes[0].ResourceRecordSet.ResourceRecords[0].Value))
		assert.Equal(t, types.RRTypeAaaa, changes[1].ResourceRecordSet.Type)
		assert.Equal(t, "2001:db8::1", aws.ToString(changes[1].ResourceRecordSet.ResourceRecords[0].Value))
	})

	t.Run("Only A when IPv6 is absent", func(t *testing.T) {
		updater, mockClient := newRoute53TestUpdaterWithMock()

		_, err := updater.Upsert(context.Background(), "home.example.com", "198.51.100.4", "")
		require.NoError(t, err)

		require.Len(t, mockClient.inputs, 1)
		changes := mockClient.inputs[0].ChangeBatch.Changes
		require.Len(t, changes, 1)
		assert.Equal(t, types.RRTypeA, changes[0].ResourceRecordSet.Type)
	})

	t.Run("Only AAAA when IPv4 is absent", func(t *testing.T) {
		updater, mockClient := newRoute53TestUpdaterWithMock()

		_, err := updater.Upsert(context.Background(), "home.example.com", "", "2001:db8::1")
		require.NoError(t, err)

		require.Len(t, mockClient.inputs, 1)
		changes := mockClient.inputs[0].ChangeBatch.Changes
		require.Len(t, changes, 1)
		assert.Equal(t, types.RRTypeAaaa, changes[0].ResourceRecordSet.Type)
	})

	t.Run("Skips when both addresses are absent", func(t *testing.T) {
		updater, mockClient := newRoute53TestUpdaterWithMock()

		outcome, err := updater.Upsert(context.Background(), "home.example.com", "", "")
		require.NoError(t, err)
		assert.True(t, outcome.Skipped)
		assert.Empty(t, mockClient.inputs)
	})

	t.Run("Repeated upserts submit identical independent calls", func(t *testing.T) {
		updater, mockClient := newRoute53TestUpdaterWithMock()

		_, err := updater.Upsert(context.Background(), "home.example.com", "198.51.100.4", "2001:db8::1")
		require.NoError(t, err)
		_, err = updater.Upsert(context.Background(), "home.example.com", "198.51.100.4", "2001:db8::1")
		require.NoError(t, err)

		require.Len(t, mockClient.inputs, 2)
		assert.Equal(t, mockClient.inputs[0], mockClient.inputs[1])
	})

	t.Run("Provider error text is surfaced", func(t *testing.T) {
		updater, mockClient := newRoute53TestUpdaterWithMock()
		mockClient.err = &smithy.GenericAPIError{
			Code:    "AccessDenied",
			Message: "User is not authorized to perform: route53:ChangeResourceRecordSets",
		}

		_, err := updater.Upsert(context.Background(), "home.example.com", "198.51.100.4", "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Route 53 rejected the change")
		assert.Contains(t, err.Error(), "AccessDenied")
		assert.Contains(t, err.Error(), "not authorized")
	})

	t.Run("Transport error points at credential configuration", func(t *testing.T) {
		updater, mockClient := newRoute53TestUpdaterWithMock()
		mockClient.err = errors.New("failed to retrieve credentials")

		_, err := updater.Upsert(context.Background(), "home.example.com", "198.51.100.4", "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "AWS_ACCESS_KEY_ID")
	})

	t.Run("Zone ID is required", func(t *testing.T) {
		updater, err := NewRoute53Updater(context.Background(), &config.ConfigRoute53{
			RecordName: "home.example.com",
			Region:     "us-east-1",
		}, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "zone ID is required")
		assert.Nil(t, updater)
	})
}
