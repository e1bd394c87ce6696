package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/texmexwithplex/unifi-dual-ip-update-route53/pkg/utils"
)

// Source identifies the IP source used to discover the current public address
type Source string

const (
	// SourceEcho queries a public IP-echo endpoint
	SourceEcho Source = "echo"
	// SourceUnifi queries a UniFi controller's device inventory
	SourceUnifi Source = "unifi"
)

// Config represents the application configuration
type Config struct {
	// IP source to use: "echo" (default) or "unifi"
	Source Source

	Route53 ConfigRoute53
	Unifi   ConfigUnifi
	Logs    ConfigLogs

	// If true, emits OpenTelemetry metrics at the end of the run
	Metrics bool
}

// ConfigRoute53 represents the Route 53 updater configuration
type ConfigRoute53 struct {
	// Hosted zone ID
	ZoneID string
	// Name of the record to upsert
	RecordName string
	// AWS region
	// Defaults to "us-east-1"
	Region string
}

// ConfigUnifi represents the UniFi controller configuration
type ConfigUnifi struct {
	// Host name or IP of the controller
	Host string
	// Port the controller listens on
	// Defaults to "443"
	Port string
	// Credentials for a local-only controller account
	Username string
	Password string
	// Site identifier
	// Defaults to "default"
	Site string
	// If true, skips TLS certificate validation, for controllers with self-signed certificates
	SkipTLSVerify bool
}

// ConfigLogs represents logging configuration
type ConfigLogs struct {
	// Controls log level and verbosity. Supported values: `debug`, `info` (default), `warn`, `error`.
	Level string
	// If true, emits logs formatted as JSON, otherwise uses a text-based structured log format.
	JSON bool
}

var cfgInstance *Config

// Get returns the loaded configuration
func Get() *Config {
	return cfgInstance
}

// LoadConfig reads the configuration from the process environment.
// A .env file in the working directory is loaded first if present.
func LoadConfig() error {
	// The .env file is optional
	_ = godotenv.Load()

	c := &Config{
		Source: Source(strings.ToLower(os.Getenv("DDNS_SOURCE"))),
		Unifi: ConfigUnifi{
			Host:          os.Getenv("UNIFI_IP"),
			Port:          os.Getenv("UNIFI_PORT"),
			Username:      os.Getenv("UNIFI_USER"),
			Password:      os.Getenv("UNIFI_PASS"),
			Site:          os.Getenv("UNIFI_SITE_ID"),
			SkipTLSVerify: !utils.IsTruthy(os.Getenv("UNIFI_VERIFY_SSL")),
		},
		Logs: ConfigLogs{
			Level: os.Getenv("LOG_LEVEL"),
			JSON:  utils.IsTruthy(os.Getenv("LOG_JSON")),
		},
		Metrics: utils.IsTruthy(os.Getenv("METRICS")),
	}

	// Set the default values
	if c.Source == "" {
		c.Source = SourceEcho
	}
	if c.Unifi.Port == "" {
		c.Unifi.Port = "443"
	}
	if c.Unifi.Site == "" {
		c.Unifi.Site = "default"
	}

	// The zone/record pair is named differently depending on the source
	switch c.Source {
	case SourceEcho:
		c.Route53.ZoneID = os.Getenv("HOSTED_ZONE_ID")
		c.Route53.RecordName = os.Getenv("RECORD_NAME")
	case SourceUnifi:
		c.Route53.ZoneID = os.Getenv("ROUTE53_ZONE_ID")
		c.Route53.RecordName = os.Getenv("ROUTE53_RECORD_NAME")
	default:
		return NewConfigError(
			fmt.Sprintf("invalid value for 'DDNS_SOURCE': '%s' (supported values: 'echo', 'unifi')", c.Source),
			"Invalid configuration",
		)
	}

	c.Route53.Region = os.Getenv("AWS_REGION")
	if c.Route53.Region == "" {
		c.Route53.Region = "us-east-1"
	}

	cfgInstance = c
	return nil
}

// String implements fmt.Stringer and prints out the config for debugging
func (c *Config) String() string {
	enc, _ := json.Marshal(c)
	return string(enc)
}

// Validates the configuration
// All settings required by the selected source and the updater must be present before any network call is made
func (c *Config) Validate(logger *slog.Logger) error {
	missing := make([]string, 0)

	switch c.Source {
	case SourceEcho:
		if c.Route53.ZoneID == "" {
			missing = append(missing, "HOSTED_ZONE_ID")
		}
		if c.Route53.RecordName == "" {
			missing = append(missing, "RECORD_NAME")
		}
	case SourceUnifi:
		if c.Unifi.Host == "" {
			missing = append(missing, "UNIFI_IP")
		}
		if c.Unifi.Username == "" {
			missing = append(missing, "UNIFI_USER")
		}
		if c.Unifi.Password == "" {
			missing = append(missing, "UNIFI_PASS")
		}
		if c.Route53.ZoneID == "" {
			missing = append(missing, "ROUTE53_ZONE_ID")
		}
		if c.Route53.RecordName == "" {
			missing = append(missing, "ROUTE53_RECORD_NAME")
		}
	default:
		return fmt.Errorf("invalid IP source: '%s'", c.Source)
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	if c.Source == SourceUnifi && c.Unifi.SkipTLSVerify {
		// Warn loudly so operators are not misled into thinking verification is still happening
		logger.Warn("TLS certificate verification for the UniFi controller is DISABLED; set UNIFI_VERIFY_SSL=true unless the controller uses a self-signed certificate")
	}

	return nil
}

// BaseURL returns the base URL of the UniFi controller
func (u ConfigUnifi) BaseURL() string {
	return "https://" + u.Host + ":" + u.Port
}
