// Package geoip maps client addresses to ISO country codes for locale
// detection.
package geoip

import (
	"errors"
	"fmt"
	"net/netip"
	"strings"
	"sync"

	"github.com/oschwald/geoip2-golang"
)

var (
	// ErrUnavailable is returned when no database is loaded.
	ErrUnavailable = errors.New("geoip: no database loaded")
	// ErrInvalidIP is returned for addresses that do not parse.
	ErrInvalidIP = errors.New("geoip: invalid ip")
)

const cacheLimit = 4096

// Resolver looks up countries in a MaxMind GeoIP2/GeoLite2 country database
// and remembers recent answers. A nil *Resolver is usable and reports
// ErrUnavailable.
type Resolver struct {
	reader *geoip2.Reader

	mu    sync.Mutex
	cache map[netip.Addr]string
}

// Open loads the database at path. An empty path disables lookups and
// returns a nil resolver without error.
func Open(path string) (*Resolver, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, nil
	}
	reader, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("geoip: open %s: %w", path, err)
	}
	return &Resolver{reader: reader, cache: make(map[netip.Addr]string)}, nil
}

// CountryCode returns the ISO country code for ip. Addresses that cannot be
// routed on the public internet resolve to "".
func (r *Resolver) CountryCode(ip string) (string, error) {
	if r == nil || r.reader == nil {
		return "", ErrUnavailable
	}
	addr, err := netip.ParseAddr(strings.TrimSpace(ip))
	if err != nil {
		return "", fmt.Errorf("%w %q", ErrInvalidIP, ip)
	}
	addr = addr.Unmap()
	if !addr.IsGlobalUnicast() || addr.IsPrivate() {
		return "", nil
	}

	r.mu.Lock()
	code, ok := r.cache[addr]
	r.mu.Unlock()
	if ok {
		return code, nil
	}

	record, err := r.reader.Country(addr.AsSlice())
	if err != nil {
		return "", fmt.Errorf("geoip: lookup %s: %w", addr, err)
	}
	if record != nil {
		code = record.Country.IsoCode
	}

	r.mu.Lock()
	if len(r.cache) >= cacheLimit {
		clear(r.cache)
	}
	r.cache[addr] = code
	r.mu.Unlock()
	return code, nil
}

// Lookup returns CountryCode as a middleware lookup, or nil when no database
// is loaded so callers skip IP lookups entirely.
func (r *Resolver) Lookup() func(ip string) (string, error) {
	if r == nil || r.reader == nil {
		return nil
	}
	return r.CountryCode
}

func (r *Resolver) Close() error {
	if r == nil || r.reader == nil {
		return nil
	}
	return r.reader.Close()
}
