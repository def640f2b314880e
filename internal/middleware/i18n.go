package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"

	"golang.org/x/text/language"
)

type ctxKey int

const (
	localeKey ctxKey = iota
	countryKey
	requestIDKey
)

// SupportedLocales lists the locales user-facing messages are translated into.
// The first entry is the default.
var SupportedLocales = []language.Tag{language.English, language.Indonesian}

var localeMatcher = language.NewMatcher(SupportedLocales)

// countryHeaders are set by CDNs and proxies in front of the API, most
// specific first.
var countryHeaders = []string{"X-Country-Code", "X-IP-Country", "CF-IPCountry", "X-Appengine-Country"}

// CountryLookup resolves ISO country codes for an IP address.
type CountryLookup func(ip string) (string, error)

// I18N stores the resolved locale ("en" or "id") and, when known, the client
// country in the request context.
func I18N(defaultLocale string, lookup CountryLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			country := ResolveCountry(r, lookup)
			locale := detectLocale(r, defaultLocale, country)
			ctx := WithLocale(r.Context(), locale)
			if country != "" {
				ctx = context.WithValue(ctx, countryKey, country)
			}
			w.Header().Set("Content-Language", locale)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// detectLocale picks the message locale: explicit X-Locale, then
// Accept-Language, then the client country, then the configured default.
func detectLocale(r *http.Request, fallback, country string) string {
	if v := strings.TrimSpace(r.Header.Get("X-Locale")); v != "" {
		return NormalizeLocale(v)
	}
	if v := matchAcceptLanguage(r.Header.Get("Accept-Language")); v != "" {
		return v
	}
	switch {
	case strings.EqualFold(country, "ID"):
		return "id"
	case country != "" || fallback == "":
		return "en"
	default:
		return NormalizeLocale(fallback)
	}
}

// matchAcceptLanguage matches the header against SupportedLocales, honouring
// q-values. It returns "" when the header is absent or unparsable.
func matchAcceptLanguage(header string) string {
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return ""
	}
	return matchCode(tags...)
}

// NormalizeLocale maps any locale string onto a supported locale code.
func NormalizeLocale(locale string) string {
	tag, err := language.Parse(strings.TrimSpace(locale))
	if err != nil {
		return "en"
	}
	return matchCode(tag)
}

func matchCode(tags ...language.Tag) string {
	_, idx, _ := localeMatcher.Match(tags...)
	base, _ := SupportedLocales[idx].Base()
	return base.String()
}

// WithLocale returns ctx carrying locale, as I18N stores it.
func WithLocale(ctx context.Context, locale string) context.Context {
	return context.WithValue(ctx, localeKey, locale)
}

func LocaleFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(localeKey).(string); ok {
		return v
	}
	return "en"
}

func CountryFromContext(ctx context.Context) string {
	v, _ := ctx.Value(countryKey).(string)
	return v
}

// ResolveCountry returns a best-effort upper-case ISO country code for r:
// proxy headers first, then an explicit locale region, then an Indonesian
// locale preference, then lookup on the client IP.
func ResolveCountry(r *http.Request, lookup CountryLookup) string {
	if r == nil {
		return ""
	}
	for _, key := range countryHeaders {
		if v := strings.TrimSpace(r.Header.Get(key)); v != "" {
			return strings.ToUpper(v)
		}
	}

	xLocale, accept := r.Header.Get("X-Locale"), r.Header.Get("Accept-Language")
	for _, list := range []string{xLocale, accept} {
		if region := firstRegion(list); region != "" {
			return region
		}
	}
	if (strings.TrimSpace(xLocale) != "" && NormalizeLocale(xLocale) == "id") || matchAcceptLanguage(accept) == "id" {
		return "ID"
	}

	if lookup == nil {
		return ""
	}
	ip := ClientIP(r)
	if net.ParseIP(ip) == nil {
		return ""
	}
	country, err := lookup(ip)
	if err != nil {
		return ""
	}
	return strings.ToUpper(country)
}

// firstRegion returns the explicit region subtag of the first tag in a
// locale list, e.g. "GB" for "en-GB,en;q=0.9".
func firstRegion(list string) string {
	for _, part := range strings.Split(list, ",") {
		token, _, _ := strings.Cut(part, ";")
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		tag, err := language.Parse(token)
		if err != nil {
			return ""
		}
		if region, conf := tag.Region(); conf == language.Exact {
			return region.String()
		}
		return ""
	}
	return ""
}
