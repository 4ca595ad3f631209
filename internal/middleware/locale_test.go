package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func runLocale(t *testing.T, lookup CountryLookup, mutate func(*http.Request)) (string, string) {
	t.Helper()
	var locale, country string
	handler := Locale("vi", lookup)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		locale = LocaleFromContext(r.Context())
		country = CountryFromContext(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/v1/state", nil)
	if mutate != nil {
		mutate(req)
	}
	handler.ServeHTTP(httptest.NewRecorder(), req)
	return locale, country
}

func TestLocaleExplicitHeaderWins(t *testing.T) {
	locale, _ := runLocale(t, nil, func(r *http.Request) {
		r.Header.Set("X-Locale", "en")
		r.Header.Set("Accept-Language", "vi-VN,vi;q=0.9")
	})
	if locale != "en" {
		t.Fatalf("locale = %q, want explicit header to win", locale)
	}
}

func TestLocaleAcceptLanguageVietnamese(t *testing.T) {
	locale, country := runLocale(t, nil, func(r *http.Request) {
		r.Header.Set("Accept-Language", "vi-VN,vi;q=0.9,en;q=0.8")
	})
	if locale != "vi" {
		t.Fatalf("locale = %q, want vi", locale)
	}
	if country != "VN" {
		t.Fatalf("country = %q, want region subtag VN", country)
	}
}

func TestLocaleGeoIPFallback(t *testing.T) {
	lookup := func(ip string) (string, error) { return "vn", nil }
	locale, country := runLocale(t, lookup, func(r *http.Request) {
		r.Header.Set("X-Forwarded-For", "203.113.131.1")
	})
	if locale != "vi" || country != "VN" {
		t.Fatalf("locale, country = %q, %q, want vi, VN from geoip", locale, country)
	}
}

func TestLocaleLookupFailureFallsBackToDefault(t *testing.T) {
	lookup := func(ip string) (string, error) { return "", errors.New("db unavailable") }
	locale, country := runLocale(t, lookup, nil)
	if locale != "vi" {
		t.Fatalf("locale = %q, want configured default", locale)
	}
	if country != "" {
		t.Fatalf("country = %q, want empty when lookup fails", country)
	}
}

func TestClientIPPrefersForwardedFor(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:4321"
	req.Header.Set("X-Forwarded-For", "198.51.100.7, 10.0.0.1")
	if got := ClientIP(req); got != "198.51.100.7" {
		t.Fatalf("ClientIP = %q, want first forwarded address", got)
	}
}
