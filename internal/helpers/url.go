package helpers

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var (
	ErrEmptyURL       = errors.New("empty url")
	ErrUnsupportedURL = errors.New("unsupported url scheme")
)

// ImageURL validates a lead image URL from a news provider and returns it ready to fetch.
// Schemeless URLs (//cdn.example.com/a.jpg) default to https; only http and https are
// accepted and a host is required. Fragments are dropped.
func ImageURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrEmptyURL
	}
	if strings.HasPrefix(raw, "//") {
		raw = "https:" + raw
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse image url: %w", err)
	}
	parsed.Scheme = strings.ToLower(parsed.Scheme)
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedURL, parsed.Scheme)
	}
	if parsed.Host == "" {
		return "", errors.New("url missing host")
	}
	parsed.Host = strings.ToLower(parsed.Host)
	parsed.Fragment = ""
	return parsed.String(), nil
}
