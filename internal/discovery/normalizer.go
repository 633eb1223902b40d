package discovery

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"

	"golang.org/x/net/idna"
)

var ErrEmptyDomain = errors.New("domain is empty")

var idnaProfile = idna.New(idna.ValidateForRegistration())

// BaseURL turns a user supplied domain into the scheme://host root that
// well-known paths are appended to.
func BaseURL(domain string) (string, error) {
	domain = strings.TrimSpace(domain)
	if domain == "" {
		return "", ErrEmptyDomain
	}
	normalized, err := NormalizeURL(domain)
	if err != nil {
		return "", err
	}
	u, _ := url.Parse(normalized)
	return u.Scheme + "://" + u.Host, nil
}

// ResolveURL makes raw absolute against base when it is not already an
// http(s) URL, then normalizes it.
func ResolveURL(base, raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", errors.New("empty url")
	}
	if !strings.HasPrefix(strings.ToLower(raw), "http") {
		b, err := url.Parse(base)
		if err != nil {
			return "", fmt.Errorf("error parsing base URL: %w", err)
		}
		ref, err := url.Parse(raw)
		if err != nil {
			return "", fmt.Errorf("error parsing URL: %w", err)
		}
		raw = b.ResolveReference(ref).String()
	}
	return NormalizeURL(raw)
}

// NormalizeURL lower-cases scheme and host, converts the host to its ASCII
// form, drops the fragment and gives an empty path the root "/". The "www."
// label is kept: it is a distinct host for search engines.
func NormalizeURL(rawUrl string) (string, error) {
	rawUrl = strings.TrimSpace(rawUrl)
	if !strings.Contains(rawUrl, "://") {
		rawUrl = "https://" + rawUrl
	}
	u, err := url.Parse(rawUrl)
	if err != nil {
		return "", fmt.Errorf("error parsing URL: %w", err)
	}
	u.Scheme = strings.ToLower(u.Scheme)
	if u.Scheme == "" {
		u.Scheme = "https"
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return "", fmt.Errorf("url %q has no host", rawUrl)
	}
	ip := net.ParseIP(host)
	if ip == nil {
		host, err = idnaProfile.ToASCII(host)
		if err != nil {
			return "", fmt.Errorf("could not convert host to ASCII: %w", err)
		}
	}
	switch {
	case u.Port() != "":
		host = net.JoinHostPort(host, u.Port())
	case ip != nil && ip.To4() == nil:
		host = "[" + host + "]"
	}
	u.Host = host
	if u.Path == "" {
		u.Path = "/"
	}
	u.Fragment = ""
	u.RawFragment = ""
	return u.String(), nil
}
