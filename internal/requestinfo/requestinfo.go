// internal/requestinfo/requestinfo.go
//
// Per-request metadata for lead attribution.
//
// Context
// -------
// Marketing wants to know what kind of visitor filled in a form: browser,
// device class, bot flag, and a coarse location.  This package collects that
// once per request (UA parse plus optional GeoLite2 lookup) and stashes it in
// the request context, so the registration handler can log it next to the new
// lead without reparsing headers.
//
// The Enricher owns its GeoIP handle explicitly; construct it at boot and
// pass it into the middleware chain.  A nil reader simply disables
// geolocation, keeping dev setups free of the MaxMind database file.
package requestinfo

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/oschwald/geoip2-golang"

	"github.com/SummitVoyage/summit-site/internal/ua"
)

// Geo holds IP-based geolocation hints.  Best-effort; empty when the
// database has no match or geolocation is disabled.
type Geo struct {
	IP         net.IP
	CountryISO string
	City       string
}

// Info is the per-request bundle stored in the context.
type Info struct {
	UA        ua.Info
	Geo       Geo
	Timestamp time.Time
}

type ctxKey struct{}

// FromContext returns the Info attached by Enrich, or nil.
func FromContext(ctx context.Context) *Info {
	info, _ := ctx.Value(ctxKey{}).(*Info)
	return info
}

// Enricher builds per-request Info.  Zero value works with geolocation off.
type Enricher struct {
	geo *geoip2.Reader
}

// NewEnricher opens the GeoLite2 database at dbPath.  An empty path returns
// an Enricher with geolocation disabled rather than an error.
func NewEnricher(dbPath string) (*Enricher, error) {
	if dbPath == "" {
		return &Enricher{}, nil
	}
	r, err := geoip2.Open(dbPath)
	if err != nil {
		return nil, err
	}
	return &Enricher{geo: r}, nil
}

// Close releases the GeoIP handle, if any.
func (e *Enricher) Close() error {
	if e.geo == nil {
		return nil
	}
	return e.geo.Close()
}

// Middleware attaches *Info to every request.
func (e *Enricher) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		info := &Info{
			UA:        ua.Parse(r.UserAgent()),
			Geo:       e.lookupGeo(clientIP(r)),
			Timestamp: time.Now().UTC(),
		}
		ctx := context.WithValue(r.Context(), ctxKey{}, info)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// lookupGeo is read-only and pool-based, safe under heavy concurrency.
func (e *Enricher) lookupGeo(ip net.IP) Geo {
	g := Geo{IP: ip}
	if e.geo == nil || ip == nil {
		return g
	}
	city, err := e.geo.City(ip)
	if err != nil || city == nil {
		return g
	}
	g.CountryISO = city.Country.IsoCode
	g.City = city.City.Names["en"]
	return g
}
