package entity

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

// maxURLLength defines the maximum allowed length for article URLs.
const maxURLLength = 2048

// ValidateHeadline checks that a headline can be turned into an article:
// it needs a title and an absolute http(s) URL. Whether the host may be
// reached is decided by the fetcher.
func ValidateHeadline(h Headline) error {
	if strings.TrimSpace(h.Title) == "" {
		return &ValidationError{Field: "title", Message: "title is required"}
	}
	if h.URL == "" {
		return &ValidationError{Field: "url", Message: "URL is required"}
	}
	u, err := url.Parse(h.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return &ValidationError{Field: "url", Message: "URL must be an absolute http or https URL"}
	}
	return nil
}

// ValidateURL validates the format and safety of a URL.
// It checks that the URL is well-formed, uses HTTP/HTTPS scheme, and has a valid host.
// Hosts resolving to private addresses are rejected.
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return &ValidationError{Field: "url", Message: "URL is required"}
	}

	if len(rawURL) > maxURLLength {
		return &ValidationError{
			Field:   "url",
			Message: fmt.Sprintf("url must not exceed %d characters", maxURLLength),
		}
	}

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("parse URL: %w", err)
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return &ValidationError{Field: "url", Message: "URL must use http or https scheme"}
	}

	if parsedURL.Host == "" {
		return &ValidationError{Field: "url", Message: "URL must have a valid host"}
	}

	host := parsedURL.Hostname()
	if ip := net.ParseIP(host); ip != nil {
		if IsPrivateIP(ip) {
			return &ValidationError{Field: "url", Message: "url cannot point to private network"}
		}
		return nil
	}

	ips, err := net.LookupIP(host)
	if err == nil {
		for _, ip := range ips {
			if IsPrivateIP(ip) {
				return &ValidationError{Field: "url", Message: "url cannot point to private network"}
			}
		}
	}

	return nil
}

var privateIPv4Ranges = mustParseCIDRs(
	"10.0.0.0/8",
	"172.16.0.0/12",
	"192.168.0.0/16",
	"169.254.0.0/16",
)

// IsPrivateIP checks if an IP address is loopback, link-local or in a private range.
func IsPrivateIP(ip net.IP) bool {
	if ip.IsLoopback() || ip.IsLinkLocalUnicast() || ip.IsUnspecified() {
		return true
	}
	for _, subnet := range privateIPv4Ranges {
		if subnet.Contains(ip) {
			return true
		}
	}
	return false
}

func mustParseCIDRs(cidrs ...string) []*net.IPNet {
	nets := make([]*net.IPNet, 0, len(cidrs))
	for _, cidr := range cidrs {
		_, subnet, err := net.ParseCIDR(cidr)
		if err != nil {
			panic(err)
		}
		nets = append(nets, subnet)
	}
	return nets
}
