package ipsource

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"time"

	"github.com/texmexwithplex/unifi-dual-ip-update-route53/pkg/config"
	appmetrics "github.com/texmexwithplex/unifi-dual-ip-update-route53/pkg/metrics"
	"github.com/texmexwithplex/unifi-dual-ip-update-route53/pkg/utils"
)

// Type tags that classify a device as a gateway in the UniFi device inventory
var gatewayTypes = map[string]struct{}{
	"ugw": {},
	"udm": {},
	"ucg": {},
}

var (
	// ErrAuthRejected is returned when the UniFi controller rejects the credentials
	ErrAuthRejected = errors.New("authentication rejected by the UniFi controller")
	// ErrNoGateway is returned when the device list contains no gateway device
	ErrNoGateway = errors.New("no gateway device found in the device list")
)

// Compile time interface check
var _ Source = (*UnifiSource)(nil)

// UnifiSource implements the Source interface by querying a UniFi controller's device inventory
type UnifiSource struct {
	baseURL    string
	username   string
	password   string
	site       string
	metrics    *appmetrics.AppMetrics
	httpClient *http.Client
}

// NewUnifiSource creates a new gateway-introspection IP source
func NewUnifiSource(cfg *config.ConfigUnifi, metrics *appmetrics.AppMetrics) (*UnifiSource, error) {
	if cfg.Host == "" {
		return nil, errors.New("host is required")
	}
	if cfg.Username == "" {
		return nil, errors.New("username is required")
	}
	if cfg.Password == "" {
		return nil, errors.New("password is required")
	}

	// Default site to "default" if not specified
	site := cfg.Site
	if site == "" {
		site = "default"
	}

	// Create HTTP client with a cookie jar, so the session cookie from the login is used for subsequent requests
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("error creating cookie jar: %w", err)
	}

	httpClient := &http.Client{
		Jar:       jar,
		Transport: http.DefaultTransport,
	}

	// Configure TLS verification
	if cfg.SkipTLSVerify {
		ct, ok := httpClient.Transport.(*http.Transport)
		if !ok {
			// Should never happen...
			return nil, fmt.Errorf("HTTP client's transport is not *http.Transport, but %T", httpClient.Transport)
		}
		transport := ct.Clone()

		if transport.TLSClientConfig == nil {
			//gosec:disable G402 - TLS MinVersion too low can be accepted here
			transport.TLSClientConfig = &tls.Config{}
		}
		transport.TLSClientConfig.InsecureSkipVerify = true //nolint:gosec

		httpClient.Transport = transport
	}

	return &UnifiSource{
		baseURL:    cfg.BaseURL(),
		username:   cfg.Username,
		password:   cfg.Password,
		site:       site,
		metrics:    metrics,
		httpClient: httpClient,
	}, nil
}

// Name returns the source's name
func (u *UnifiSource) Name() string {
	return "unifi"
}

// Fetch logs into the controller, retrieves the device inventory, and extracts the gateway's WAN addresses.
// The authenticated session is scoped to this call and released on every exit path.
func (u *UnifiSource) Fetch(ctx context.Context) (Addresses, error) {
	defer u.httpClient.CloseIdleConnections()

	err := u.login(ctx)
	if err != nil {
		return Addresses{}, fmt.Errorf("error logging into the UniFi controller: %w", err)
	}

	gw, err := u.findGateway(ctx)
	if err != nil {
		return Addresses{}, fmt.Errorf("error retrieving the gateway device: %w", err)
	}

	utils.LogFromContext(ctx).InfoContext(ctx, "Found gateway device", "name", gw.Name, "model", gw.Model)

	addrs := Addresses{
		IPv4: gw.WAN1.IP,
	}
	// The ipv6 field holds a list; only the first entry is used
	if len(gw.WAN1.IPv6) > 0 {
		addrs.IPv6 = gw.WAN1.IPv6[0]
	}

	return addrs, nil
}

// unifiLoginRequest is the payload for the login request
type unifiLoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// unifiWAN represents a device's WAN descriptor from the UniFi API
type unifiWAN struct {
	IP   string   `json:"ip"`
	IPv6 []string `json:"ipv6"`
}

// unifiDevice represents a device from the UniFi API
type unifiDevice struct {
	Name  string   `json:"name"`
	Model string   `json:"model"`
	Type  string   `json:"type"`
	WAN1  unifiWAN `json:"wan1"`
}

// unifiDeviceListResponse represents the device inventory response from the UniFi API
type unifiDeviceListResponse struct {
	Data []unifiDevice `json:"data"`
}

func (u *UnifiSource) login(ctx context.Context) (err error) {
	start := time.Now()
	var success bool
	const path = "/api/auth/login"

	if u.metrics != nil {
		defer func() {
			u.metrics.RecordAPICall("unifi", http.MethodPost, path, success, time.Since(start))
		}()
	}

	payload, err := json.Marshal(unifiLoginRequest{
		Username: u.username,
		Password: u.password,
	})
	if err != nil {
		return fmt.Errorf("error marshalling request body: %w", err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, u.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := u.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request error: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("%w: verify the account is local-only with the correct permissions", ErrAuthRejected)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("invalid response status code HTTP %d; response: %s", resp.StatusCode, string(body))
	}

	success = true
	return nil
}

func (u *UnifiSource) findGateway(ctx context.Context) (gw *unifiDevice, err error) {
	start := time.Now()
	var success bool
	path := "/proxy/network/api/s/" + u.site + "/stat/device"

	if u.metrics != nil {
		defer func() {
			u.metrics.RecordAPICall("unifi", http.MethodGet, path, success, time.Since(start))
		}()
	}

	reqCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, u.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	resp, err := u.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request error: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("invalid response status code HTTP %d; response: %s", resp.StatusCode, string(body))
	}

	var list unifiDeviceListResponse
	err = json.NewDecoder(resp.Body).Decode(&list)
	if err != nil {
		return nil, fmt.Errorf("error decoding device list response: %w", err)
	}

	success = true

	// Select the first device in listed order whose type tag is a gateway type
	for i := range list.Data {
		_, ok := gatewayTypes[list.Data[i].Type]
		if ok {
			return &list.Data[i], nil
		}
	}

	return nil, ErrNoGateway
}
