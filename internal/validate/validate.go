package validate

import (
	"fmt"
	"net"
	"net/url"
	"strings"
	"unicode"
)

// MaxScanIDLength bounds identifiers taken from the command line.
const MaxScanIDLength = 256

// ScanID checks an identifier before it is put into a request path.
// Identifiers are otherwise opaque: any printable text is accepted.
func ScanID(id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("scan ID cannot be empty")
	}
	if len(id) > MaxScanIDLength {
		return fmt.Errorf("scan ID is longer than %d bytes", MaxScanIDLength)
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return fmt.Errorf("scan ID contains control characters")
		}
	}
	// escaped, these still resolve to the parent collection
	if id == "." || id == ".." {
		return fmt.Errorf("invalid scan ID %q", id)
	}
	return nil
}

// BaseURL validates the scan API base URL. Loopback hosts are allowed: the
// API usually runs next to the pipeline.
func BaseURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("URL cannot be empty")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL format: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid URL scheme: %s (allowed: http, https)", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("URL %q has no host", raw)
	}
	if u.RawQuery != "" || u.Fragment != "" {
		return fmt.Errorf("URL %q must not carry a query or fragment", raw)
	}
	return nil
}

// Endpoint validates an object storage endpoint, host[:port] without scheme.
func Endpoint(endpoint string) error {
	if endpoint == "" {
		return fmt.Errorf("endpoint cannot be empty")
	}
	if strings.Contains(endpoint, "://") || strings.Contains(endpoint, "/") {
		return fmt.Errorf("endpoint %q must be host[:port] without scheme or path", endpoint)
	}
	host := endpoint
	if h, _, err := net.SplitHostPort(endpoint); err == nil {
		host = h
	}
	if host == "" {
		return fmt.Errorf("endpoint %q has no host", endpoint)
	}
	return nil
}

// SanitizeString removes dangerous characters from strings
func SanitizeString(input string) string {
	// Remove null bytes
	input = strings.ReplaceAll(input, "\x00", "")

	// Remove control characters
	var result strings.Builder
	for _, r := range input {
		if r >= 32 || r == '\t' || r == '\n' {
			result.WriteRune(r)
		}
	}

	return strings.TrimSpace(result.String())
}
