package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func requestWith(headers map[string]string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/v1/projects", nil)
	req.RemoteAddr = "203.0.113.4:80"
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return req
}

func TestDetectLocale(t *testing.T) {
	tests := []struct {
		name     string
		headers  map[string]string
		fallback string
		country  string
		want     string
	}{
		{name: "x-locale beats country", headers: map[string]string{"X-Locale": "ID"}, country: "US", want: "id"},
		{name: "x-locale beats accept-language", headers: map[string]string{"X-Locale": "en", "Accept-Language": "id-ID"}, want: "en"},
		{name: "accept-language english", headers: map[string]string{"Accept-Language": "en-US,en;q=0.9"}, want: "en"},
		{name: "accept-language indonesian", headers: map[string]string{"Accept-Language": "id-ID,en;q=0.8"}, want: "id"},
		{name: "unsupported language", headers: map[string]string{"Accept-Language": "fr-FR"}, want: "en"},
		{name: "country ID", country: "ID", want: "id"},
		{name: "other country", country: "US", fallback: "id", want: "en"},
		{name: "configured fallback", fallback: "id", want: "id"},
		{name: "default", want: "en"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := detectLocale(requestWith(tc.headers), tc.fallback, tc.country); got != tc.want {
				t.Fatalf("detectLocale() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestResolveCountry(t *testing.T) {
	malaysia := func(ip string) (string, error) {
		if ip != "203.0.113.4" {
			return "", errors.New("unexpected ip " + ip)
		}
		return "my", nil
	}
	tests := []struct {
		name    string
		headers map[string]string
		lookup  CountryLookup
		want    string
	}{
		{
			name:    "first proxy header wins",
			headers: map[string]string{"X-Country-Code": "us", "CF-IPCountry": "id"},
			lookup:  malaysia,
			want:    "US",
		},
		{name: "x-locale region", headers: map[string]string{"X-Locale": "en-AU"}, want: "AU"},
		{name: "accept-language region", headers: map[string]string{"Accept-Language": "en-GB,en;q=0.9"}, want: "GB"},
		{name: "bare indonesian", headers: map[string]string{"Accept-Language": "id;q=0.8"}, want: "ID"},
		{name: "bare english has no region", headers: map[string]string{"Accept-Language": "en"}, want: ""},
		{name: "geoip", lookup: malaysia, want: "MY"},
		{
			name:   "geoip error",
			lookup: func(string) (string, error) { return "", errors.New("boom") },
			want:   "",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ResolveCountry(requestWith(tc.headers), tc.lookup); got != tc.want {
				t.Fatalf("ResolveCountry() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestNormalizeLocale(t *testing.T) {
	tests := map[string]string{
		"id":      "id",
		"id-ID":   "id",
		"en-GB":   "en",
		"fr-FR":   "en",
		"garbage": "en",
		"":        "en",
	}
	for in, want := range tests {
		if got := normalizeLocale(in); got != want {
			t.Fatalf("normalizeLocale(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestI18NMiddleware(t *testing.T) {
	var locale, country string
	h := I18N("en", nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		locale = LocaleFromContext(r.Context())
		country = CountryFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, requestWith(map[string]string{"Accept-Language": "id-ID"}))

	if locale != "id" || country != "ID" {
		t.Fatalf("context locale=%q country=%q", locale, country)
	}
	if got := rec.Header().Get("Content-Language"); got != "id" {
		t.Fatalf("Content-Language = %q, want id", got)
	}
}

func TestContextDefaults(t *testing.T) {
	ctx := context.Background()
	if got := LocaleFromContext(ctx); got != "en" {
		t.Fatalf("LocaleFromContext() = %q, want en", got)
	}
	if got := CountryFromContext(ctx); got != "" {
		t.Fatalf("CountryFromContext() = %q, want empty", got)
	}
}
