package insight

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

const domainPropertyPrefix = "sc-domain:"

// NormalizeSiteURL canonicalizes a search property identifier. Domain
// properties ("sc-domain:example.com") are cleaned in place; plain URLs
// are reduced to their host and rewritten to domain-property form.
// Malformed identifiers indicate a caller bug and fail fast.
func NormalizeSiteURL(value string) (string, error) {
	raw := strings.TrimSpace(value)
	if raw == "" {
		return "", errors.New("site url cannot be empty")
	}

	if strings.HasPrefix(raw, domainPropertyPrefix) {
		domain := strings.Trim(strings.TrimSpace(raw[len(domainPropertyPrefix):]), ".")
		domain = strings.TrimPrefix(domain, "www.")
		if domain == "" {
			return "", fmt.Errorf("invalid domain property %q", value)
		}
		return domainPropertyPrefix + strings.ToLower(domain), nil
	}

	text := raw
	if !strings.Contains(text, "://") {
		text = "https://" + text
	}
	parsed, err := url.Parse(text)
	if err != nil || parsed.Host == "" {
		return "", fmt.Errorf("site url %q has no host", value)
	}

	host := strings.ToLower(parsed.Hostname())
	host = strings.TrimPrefix(host, "www.")
	if host == "" {
		return "", fmt.Errorf("site url %q has no host", value)
	}
	return domainPropertyPrefix + host, nil
}
