package insight

import (
	"net/url"
	"strings"
)

// NormalizeOptions controls URL canonicalization. The zero value matches
// the default policy: query and fragment dropped, www kept.
type NormalizeOptions struct {
	BaseURL      string
	KeepQuery    bool
	KeepFragment bool
	RemoveWWW    bool
}

// NormalizeURL canonicalizes a raw URL string into the stable join key
// used across both sources. Relative values resolve against BaseURL when
// one is configured. When no host can be determined the bare path is
// returned as-is; incomplete source URLs are expected and must not fail.
func NormalizeURL(raw string, opts NormalizeOptions) string {
	text := strings.TrimSpace(raw)
	if text == "" {
		return ""
	}

	if opts.BaseURL != "" {
		if parsed, err := url.Parse(text); err == nil && parsed.Scheme == "" {
			text = strings.TrimRight(opts.BaseURL, "/") + "/" + strings.TrimLeft(text, "/")
		}
	}

	parts, err := url.Parse(text)
	if err != nil {
		return text
	}

	scheme := strings.ToLower(parts.Scheme)
	if scheme == "" {
		scheme = "https"
	}
	host := strings.ToLower(parts.Host)
	if opts.RemoveWWW && strings.HasPrefix(host, "www.") {
		host = host[4:]
	}

	path := parts.EscapedPath()
	if path == "" {
		path = "/"
	}
	if len(path) > 1 && strings.HasSuffix(path, "/") {
		path = path[:len(path)-1]
	}

	if host == "" {
		return path
	}

	var b strings.Builder
	b.WriteString(scheme)
	b.WriteString("://")
	b.WriteString(host)
	b.WriteString(path)
	if opts.KeepQuery && parts.RawQuery != "" {
		b.WriteString("?")
		b.WriteString(parts.RawQuery)
	}
	if opts.KeepFragment && parts.Fragment != "" {
		b.WriteString("#")
		b.WriteString(parts.Fragment)
	}
	return b.String()
}
