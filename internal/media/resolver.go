package media

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Resolver maps stored image references to absolute URLs on the
// external media host. Files never pass through this service; only
// their URLs are kept.
type Resolver interface {
	Resolve(ref string) (string, error)
}

// HostedResolver serves references from a single external host.
// Absolute http(s) URLs pass through untouched; relative paths are
// joined onto the host's base URL.
type HostedResolver struct {
	base *url.URL
}

// NewHostedResolver constructs a resolver for the given base URL. An
// empty base is allowed and restricts the resolver to absolute URLs.
func NewHostedResolver(baseURL string) (*HostedResolver, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return &HostedResolver{}, nil
	}

	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("media: parse base url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, errors.New("media: base url must use http or https")
	}
	return &HostedResolver{base: parsed}, nil
}

// Resolve validates a reference and returns its absolute URL.
func (r *HostedResolver) Resolve(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", errors.New("media: empty image reference")
	}

	parsed, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("media: parse image reference: %w", err)
	}

	if parsed.IsAbs() {
		if parsed.Scheme != "http" && parsed.Scheme != "https" {
			return "", fmt.Errorf("media: unsupported scheme %q", parsed.Scheme)
		}
		return parsed.String(), nil
	}

	if r.base == nil {
		return "", errors.New("media: relative reference requires a configured media host")
	}
	return r.base.ResolveReference(parsed).String(), nil
}
