package ipsource

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	appmetrics "github.com/texmexwithplex/unifi-dual-ip-update-route53/pkg/metrics"
	"github.com/texmexwithplex/unifi-dual-ip-update-route53/pkg/utils"
)

// Public IP-echo endpoint returning the caller's IPv4 address in the response body
const echoEndpoint = "https://checkip.amazonaws.com"

// Compile time interface check
var _ Source = (*EchoSource)(nil)

// EchoSource implements the Source interface using a public IP-echo endpoint
type EchoSource struct {
	endpoint   string
	metrics    *appmetrics.AppMetrics
	httpClient *http.Client
}

// NewEchoSource creates a new echo-service IP source
func NewEchoSource(metrics *appmetrics.AppMetrics) *EchoSource {
	return &EchoSource{
		endpoint:   echoEndpoint,
		metrics:    metrics,
		httpClient: &http.Client{},
	}
}

// Name returns the source's name
func (e *EchoSource) Name() string {
	return "echo"
}

// Fetch obtains the current public IPv4 address from the echo endpoint.
// Failures are not fatal: the source reports "no address", which makes the run skip the DNS update.
func (e *EchoSource) Fetch(ctx context.Context) (Addresses, error) {
	ip, err := e.lookup(ctx)
	if err != nil {
		utils.LogFromContext(ctx).WarnContext(ctx, "Error getting public IP from echo service", slog.Any("error", err))
		return Addresses{}, nil
	}

	return Addresses{IPv4: ip}, nil
}

func (e *EchoSource) lookup(ctx context.Context) (ip string, err error) {
	start := time.Now()
	var success bool

	if e.metrics != nil {
		defer func() {
			e.metrics.RecordAPICall("echo", http.MethodGet, e.endpoint, success, time.Since(start))
		}()
	}

	reqCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, e.endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("error creating request: %w", err)
	}

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request error: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("invalid response status code HTTP %d; response: %s", resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<10))
	if err != nil {
		return "", fmt.Errorf("error reading response body: %w", err)
	}

	ip = strings.TrimSpace(string(body))
	if ip == "" {
		return "", errors.New("response body is empty")
	}

	success = true
	return ip, nil
}
