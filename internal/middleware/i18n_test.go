package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func requestWith(headers map[string]string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/v1/generation", nil)
	req.RemoteAddr = "203.0.113.4:80"
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return req
}

func TestDetectLocale(t *testing.T) {
	cases := []struct {
		name     string
		headers  map[string]string
		fallback string
		country  string
		want     string
	}{
		{"x-locale wins over country", map[string]string{"X-Locale": "ID"}, "", "US", "id"},
		{"x-locale wins over accept-language", map[string]string{"X-Locale": "en", "Accept-Language": "id"}, "", "", "en"},
		{"accept-language english", map[string]string{"Accept-Language": "en-US,en;q=0.9"}, "", "", "en"},
		{"accept-language indonesian", map[string]string{"Accept-Language": "id-ID,en;q=0.8"}, "", "", "id"},
		{"indonesian country", nil, "", "ID", "id"},
		{"other country", nil, "id", "US", "en"},
		{"configured fallback", nil, "id-ID", "", "id"},
		{"no hints", nil, "", "", "en"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := detectLocale(requestWith(tc.headers), tc.fallback, tc.country); got != tc.want {
				t.Fatalf("detectLocale() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestResolveCountry(t *testing.T) {
	var lookedUp string
	lookup := func(ip string) (string, error) {
		lookedUp = ip
		return "my", nil
	}
	failing := func(string) (string, error) { return "", errors.New("no database") }

	cases := []struct {
		name    string
		headers map[string]string
		lookup  CountryLookup
		want    string
	}{
		{"proxy header order", map[string]string{"X-Country-Code": "us", "CF-IPCountry": "id"}, lookup, "US"},
		{"cdn header", map[string]string{"CF-IPCountry": "sg"}, nil, "SG"},
		{"x-locale region", map[string]string{"X-Locale": "en-AU"}, lookup, "AU"},
		{"accept-language region", map[string]string{"Accept-Language": "en-GB,en;q=0.9"}, lookup, "GB"},
		{"indonesian without region", map[string]string{"Accept-Language": "id;q=0.8"}, lookup, "ID"},
		{"ip lookup", nil, lookup, "MY"},
		{"lookup failure", nil, failing, ""},
		{"no lookup", nil, nil, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ResolveCountry(requestWith(tc.headers), tc.lookup); got != tc.want {
				t.Fatalf("ResolveCountry() = %q, want %q", got, tc.want)
			}
		})
	}
	if lookedUp != "203.0.113.4" {
		t.Fatalf("lookup saw ip %q", lookedUp)
	}
}

func TestLocaleContext(t *testing.T) {
	ctx := context.Background()
	if got := LocaleFromContext(ctx); got != "en" {
		t.Fatalf("default locale = %q, want en", got)
	}
	if got := LocaleFromContext(WithLocale(ctx, "id")); got != "id" {
		t.Fatalf("stored locale = %q, want id", got)
	}
	if got := CountryFromContext(ctx); got != "" {
		t.Fatalf("default country = %q, want empty", got)
	}
}

func TestNormalizeLocale(t *testing.T) {
	for in, want := range map[string]string{
		"id":    "id",
		"ID":    "id",
		"id-ID": "id",
		"en-GB": "en",
		"fr":    "en",
		"!!":    "en",
		"":      "en",
	} {
		if got := NormalizeLocale(in); got != want {
			t.Errorf("NormalizeLocale(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestMatchAcceptLanguageHonoursQuality(t *testing.T) {
	if got := matchAcceptLanguage("en;q=0.2, id;q=0.9"); got != "id" {
		t.Fatalf("matchAcceptLanguage = %q, want id", got)
	}
	if got := matchAcceptLanguage(""); got != "" {
		t.Fatalf("matchAcceptLanguage(empty) = %q, want empty", got)
	}
}

func TestI18NStoresLocaleAndCountry(t *testing.T) {
	var gotLocale, gotCountry string
	handler := I18N("en", nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotLocale = LocaleFromContext(r.Context())
		gotCountry = CountryFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, requestWith(map[string]string{"Accept-Language": "id-ID"}))

	if gotLocale != "id" || gotCountry != "ID" {
		t.Fatalf("locale=%q country=%q, want id/ID", gotLocale, gotCountry)
	}
	if rec.Header().Get("Content-Language") != "id" {
		t.Fatalf("Content-Language = %q", rec.Header().Get("Content-Language"))
	}
}
