package validation

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

// URLValidator checks endpoint and link URLs before they are fetched or
// handed to an external opener.
type URLValidator struct {
	// AllowPrivate permits localhost, loopback and private network hosts.
	AllowPrivate bool
	// MaxLength is the maximum allowed URL length
	MaxLength int
}

// NewURLValidator creates a validator that rejects local and private hosts.
func NewURLValidator() *URLValidator {
	return &URLValidator{MaxLength: 2048}
}

// NewPermissiveURLValidator allows local development endpoints.
func NewPermissiveURLValidator() *URLValidator {
	return &URLValidator{AllowPrivate: true, MaxLength: 2048}
}

// ValidateAndNormalize validates input and returns it in canonical form.
// A missing scheme defaults to https.
func (v *URLValidator) ValidateAndNormalize(input string) (string, error) {
	input = strings.TrimSpace(input)

	if input == "" {
		return "", fmt.Errorf("URL cannot be empty")
	}
	if v.MaxLength > 0 && len(input) > v.MaxLength {
		return "", fmt.Errorf("URL too long (max %d characters)", v.MaxLength)
	}
	if strings.ContainsAny(input, "<>\"'` ") {
		return "", fmt.Errorf("URL contains invalid characters")
	}

	if !strings.Contains(input, "://") {
		input = "https://" + input
	}

	parsedURL, err := url.Parse(input)
	if err != nil {
		return "", fmt.Errorf("invalid URL format: %w", err)
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return "", fmt.Errorf("URL must use http or https protocol")
	}
	if parsedURL.Hostname() == "" {
		return "", fmt.Errorf("URL must have a valid hostname")
	}
	if parsedURL.User != nil {
		return "", fmt.Errorf("credentials in URLs are not permitted")
	}

	if !v.AllowPrivate {
		if err := checkPublicHost(parsedURL.Hostname()); err != nil {
			return "", err
		}
	}

	return parsedURL.String(), nil
}

func checkPublicHost(hostname string) error {
	hostname = strings.ToLower(hostname)
	if hostname == "localhost" || strings.HasSuffix(hostname, ".localhost") {
		return fmt.Errorf("localhost URLs are not permitted")
	}

	ip := net.ParseIP(hostname)
	if ip == nil {
		return nil
	}
	if ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() || ip.IsUnspecified() {
		return fmt.Errorf("private IP addresses are not permitted")
	}
	return nil
}
