// internal/emailcheck/emailcheck.go
//
// Email address validation: format first, then DNS.
//
// Context
// -------
// Registration and contact both refuse obviously malformed addresses before
// any network work.  For addresses that pass the format gate, the domain is
// probed for MX records, falling back to A and then AAAA; a domain counts as
// deliverable when any of the three resolves to at least one record.  A
// failed lookup for one record type is treated as "no records of that type",
// not as a hard error, so the fallback chain always runs to the end.
//
// The Resolver interface exists for tests; production code uses the process
// resolver with a per-lookup timeout.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.
package emailcheck

import (
	"context"
	"net"
	"regexp"
	"strings"
	"time"
)

// lookupTimeout bounds each individual DNS query.
const lookupTimeout = 5 * time.Second

// formatRe mirrors the classic single-@ check: non-space local part, then a
// domain containing at least one dot.
var formatRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Resolver is the subset of net.Resolver the checker needs.
type Resolver interface {
	LookupMX(ctx context.Context, domain string) ([]*net.MX, error)
	LookupIP(ctx context.Context, network, domain string) ([]net.IP, error)
}

// Details reports what the DNS probe found, for diagnostics and tests.
type Details struct {
	HasRecords bool     `json:"hasRecords"`
	MXRecords  []string `json:"mxRecords"`
	ARecords   []string `json:"aRecords"`
	AAAAProbed bool     `json:"aaaaProbed"`
}

// Result is the outcome of Validate.
type Result struct {
	IsValid bool    `json:"isValid"`
	Error   string  `json:"error,omitempty"`
	Details Details `json:"details"`
}

// Checker validates addresses.  Zero value is not usable; call New.
type Checker struct {
	resolver Resolver
}

// New returns a Checker.  Pass nil to use net.DefaultResolver.
func New(r Resolver) *Checker {
	if r == nil {
		r = net.DefaultResolver
	}
	return &Checker{resolver: r}
}

// ValidateFormat reports whether email passes the single-@ pattern.
func ValidateFormat(email string) bool {
	return formatRe.MatchString(strings.TrimSpace(email))
}

// ExtractDomain returns the part after the single @.  Zero or multiple @
// characters yield the empty string.
func ExtractDomain(email string) string {
	parts := strings.Split(strings.TrimSpace(email), "@")
	if len(parts) != 2 {
		return ""
	}
	return parts[1]
}

// ValidateDomainRecords probes domain for MX, then A, then AAAA records.
func (c *Checker) ValidateDomainRecords(ctx context.Context, domain string) Result {
	res := Result{Details: Details{MXRecords: []string{}, ARecords: []string{}}}

	// MX first.
	lctx, cancel := context.WithTimeout(ctx, lookupTimeout)
	mxs, err := c.resolver.LookupMX(lctx, domain)
	cancel()
	if err == nil && len(mxs) > 0 {
		for _, mx := range mxs {
			res.Details.MXRecords = append(res.Details.MXRecords, mx.Host)
		}
		res.Details.HasRecords = true
		res.IsValid = true
		return res
	}

	// Fall back to A.
	lctx, cancel = context.WithTimeout(ctx, lookupTimeout)
	ips, err := c.resolver.LookupIP(lctx, "ip4", domain)
	cancel()
	if err == nil && len(ips) > 0 {
		for _, ip := range ips {
			res.Details.ARecords = append(res.Details.ARecords, ip.String())
		}
		res.Details.HasRecords = true
		res.IsValid = true
		return res
	}

	// Last resort: AAAA.
	res.Details.AAAAProbed = true
	lctx, cancel = context.WithTimeout(ctx, lookupTimeout)
	ips, err = c.resolver.LookupIP(lctx, "ip6", domain)
	cancel()
	if err == nil && len(ips) > 0 {
		res.Details.HasRecords = true
		res.IsValid = true
		return res
	}

	res.Error = "Domain " + domain + " has no MX, A, or AAAA records"
	return res
}

// Validate runs the format gate, then the DNS probe.  A format failure
// short-circuits without touching the resolver.
func (c *Checker) Validate(ctx context.Context, email string) Result {
	if !ValidateFormat(email) {
		return Result{
			Error:   "Invalid email format",
			Details: Details{MXRecords: []string{}, ARecords: []string{}},
		}
	}
	return c.ValidateDomainRecords(ctx, ExtractDomain(email))
}
