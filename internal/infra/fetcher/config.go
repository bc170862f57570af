package fetcher

import (
	"errors"
	"fmt"
	"time"
)

// DefaultUserAgent is sent with every page request. Several news sites refuse
// requests without a browser-like agent.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"

// Config controls how article pages are downloaded.
type Config struct {
	// Timeout bounds a single page request.
	Timeout time.Duration

	// MaxBodySize is the largest response body read, in bytes. It is enforced
	// while reading, independent of Content-Length.
	MaxBodySize int64

	// MaxRedirects is the number of redirects followed; each target is validated.
	MaxRedirects int

	// DenyPrivateIPs rejects URLs resolving to loopback, private or link-local addresses.
	DenyPrivateIPs bool

	// UserAgent overrides DefaultUserAgent when non-empty.
	UserAgent string
}

// DefaultConfig returns the production defaults: 10s timeout, 10MB bodies,
// five redirects and SSRF protection on.
func DefaultConfig() Config {
	return Config{
		Timeout:        10 * time.Second,
		MaxBodySize:    10 * 1024 * 1024,
		MaxRedirects:   5,
		DenyPrivateIPs: true,
		UserAgent:      DefaultUserAgent,
	}
}

// Validate checks the configuration values.
func (c Config) Validate() error {
	var errs []error
	if c.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("timeout must be positive, got %v", c.Timeout))
	}

	minBodySize := int64(1024)
	maxBodySize := int64(100 * 1024 * 1024)
	if c.MaxBodySize < minBodySize || c.MaxBodySize > maxBodySize {
		errs = append(errs, fmt.Errorf("max body size must be between %d and %d bytes, got %d", minBodySize, maxBodySize, c.MaxBodySize))
	}

	if c.MaxRedirects < 0 || c.MaxRedirects > 10 {
		errs = append(errs, fmt.Errorf("max redirects must be between 0 and 10, got %d", c.MaxRedirects))
	}
	return errors.Join(errs...)
}

func (c Config) userAgent() string {
	if c.UserAgent == "" {
		return DefaultUserAgent
	}
	return c.UserAgent
}
