package config

import (
	"fmt"
	"net/url"
	"time"
)

// Config holds export job configuration.
type Config struct {
	ActBaseURL      string
	ActEmail        string
	ActPassword     string
	ExportFrequency string

	CdxBaseURL string
	CacheSize  int

	PublicWaybackPrefix     string
	RestrictedWaybackPrefix string
	EmbargoDays             int

	Timeout      time.Duration
	OutputFile   string
	OutputFormat string // xml, json, or dual
	MetricsAddr  string
	UserAgent    string
	Verbose      bool
}

// DefaultConfig returns conservative defaults for a local W3ACT and CDX
// server deployment.
func DefaultConfig() *Config {
	return &Config{
		ActBaseURL:              "http://localhost:9000/act",
		ExportFrequency:         "all",
		CdxBaseURL:              "http://localhost:8080/cdx",
		CacheSize:               1024,
		PublicWaybackPrefix:     "https://www.webarchive.org.uk/wayback/archive/",
		RestrictedWaybackPrefix: "https://bl.ldls.org.uk/welcome.html?",
		EmbargoDays:             7,
		Timeout:                 30 * time.Second,
		OutputFile:              "output/title-level-metadata.xml",
		OutputFormat:            "xml",
		UserAgent:               "title-export/1.0",
		Verbose:                 false,
	}
}

// Validate ensures all configuration values are coherent.
func (c *Config) Validate() error {
	if c.ActBaseURL == "" {
		return fmt.Errorf("w3act base URL cannot be empty")
	}
	parsedURL, err := url.Parse(c.ActBaseURL)
	if err != nil {
		return fmt.Errorf("invalid w3act base URL: %w", err)
	}
	if parsedURL.Host == "" {
		return fmt.Errorf("w3act base URL must include a host")
	}

	if c.ExportFrequency == "" {
		return fmt.Errorf("export frequency cannot be empty")
	}

	if c.CdxBaseURL == "" {
		return fmt.Errorf("cdx base URL cannot be empty")
	}
	parsedURL, err = url.Parse(c.CdxBaseURL)
	if err != nil {
		return fmt.Errorf("invalid cdx base URL: %w", err)
	}
	if parsedURL.Host == "" {
		return fmt.Errorf("cdx base URL must include a host")
	}
	if c.CacheSize <= 0 {
		return fmt.Errorf("cache size must be positive")
	}

	if c.PublicWaybackPrefix == "" {
		return fmt.Errorf("public wayback prefix cannot be empty")
	}
	if c.RestrictedWaybackPrefix == "" {
		return fmt.Errorf("restricted wayback prefix cannot be empty")
	}
	if c.EmbargoDays < 0 {
		return fmt.Errorf("embargo days cannot be negative")
	}

	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.OutputFile == "" {
		return fmt.Errorf("output file cannot be empty")
	}
	if c.OutputFormat != "xml" && c.OutputFormat != "json" && c.OutputFormat != "dual" {
		return fmt.Errorf("output format must be xml, json, or dual")
	}
	if c.UserAgent == "" {
		return fmt.Errorf("user agent cannot be empty")
	}

	return nil
}

// Embargo returns the embargo window as a duration.
func (c *Config) Embargo() time.Duration {
	return time.Duration(c.EmbargoDays) * 24 * time.Hour
}
