package httpapi

import (
	"context"
	"net"
	"net/http"
	"strings"
)

func resolveClientIP(ctx context.Context, r *http.Request) string {
	_ = ctx

	candidates := []string{
		r.Header.Get("Fly-Client-IP"),
		r.Header.Get("X-Forwarded-For"),
		r.Header.Get("X-Real-IP"),
		r.RemoteAddr,
	}

	for _, candidate := range candidates {
		if ip := normalizeIP(candidate); ip != "" {
			return ip
		}
	}

	return ""
}

// resolveCountryCode reads the edge proxy geo headers. The calendar handlers
// use it as a last-ditch disambiguation hint for team resolution.
func resolveCountryCode(ctx context.Context, r *http.Request) string {
	_ = ctx

	candidates := []string{
		r.Header.Get("Fly-Client-Country"),
		r.Header.Get("CF-IPCountry"),
		r.Header.Get("X-Vercel-IP-Country"),
		r.Header.Get("CloudFront-Viewer-Country"),
	}

	for _, candidate := range candidates {
		if code := normalizeCountry(candidate); code != "" {
			return code
		}
	}

	return ""
}

func normalizeIP(raw string) string {
	value := strings.TrimSpace(raw)
	if value == "" {
		return ""
	}
	if strings.Contains(value, ",") {
		value = strings.TrimSpace(strings.Split(value, ",")[0])
	}

	if host, _, err := net.SplitHostPort(value); err == nil {
		value = strings.TrimSpace(host)
	}
	if net.ParseIP(value) == nil {
		return ""
	}
	return value
}

func normalizeCountry(raw string) string {
	value := strings.ToUpper(strings.TrimSpace(raw))
	if len(value) != 2 || value == "XX" || value == "ZZ" {
		return ""
	}
	for _, r := range value {
		if r < 'A' || r > 'Z' {
			return ""
		}
	}
	return value
}
