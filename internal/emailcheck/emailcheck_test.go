// internal/emailcheck/emailcheck_test.go
//
// Unit-tests for format and DNS-fallback validation with a stub resolver.
//
// Run: go test ./internal/emailcheck -v

package emailcheck

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubResolver returns canned answers and counts calls.
type stubResolver struct {
	mx     []*net.MX
	mxErr  error
	ip4    []net.IP
	ip4Err error
	ip6    []net.IP
	ip6Err error
	calls  int
}

func (s *stubResolver) LookupMX(ctx context.Context, domain string) ([]*net.MX, error) {
	s.calls++
	return s.mx, s.mxErr
}

func (s *stubResolver) LookupIP(ctx context.Context, network, domain string) ([]net.IP, error) {
	s.calls++
	if network == "ip4" {
		return s.ip4, s.ip4Err
	}
	return s.ip6, s.ip6Err
}

func TestValidateFormat(t *testing.T) {
	valid := []string{"a@b.co", "john.doe@example.org", "x+tag@sub.domain.io"}
	invalid := []string{"not-an-email", "a@b", "@b.co", "a@", "a b@c.de", "a@@b.co"}

	for _, e := range valid {
		assert.True(t, ValidateFormat(e), "%q should be valid", e)
	}
	for _, e := range invalid {
		assert.False(t, ValidateFormat(e), "%q should be invalid", e)
	}
}

func TestExtractDomain(t *testing.T) {
	assert.Equal(t, "ex.com", ExtractDomain("john@ex.com"))
	assert.Equal(t, "", ExtractDomain("no-at-sign"))
	assert.Equal(t, "", ExtractDomain("two@@ats.com"))
}

func TestInvalidFormatShortCircuits(t *testing.T) {
	stub := &stubResolver{}
	c := New(stub)

	res := c.Validate(context.Background(), "not-an-email")
	require.False(t, res.IsValid)
	assert.Equal(t, "Invalid email format", res.Error)
	assert.Zero(t, stub.calls, "no DNS lookup may happen on a format failure")
}

func TestMXRecordsValidate(t *testing.T) {
	stub := &stubResolver{mx: []*net.MX{{Host: "mx1.ex.com."}}}
	c := New(stub)

	res := c.Validate(context.Background(), "john@ex.com")
	require.True(t, res.IsValid)
	assert.Equal(t, []string{"mx1.ex.com."}, res.Details.MXRecords)
	assert.True(t, res.Details.HasRecords)
}

func TestFallbackToARecords(t *testing.T) {
	stub := &stubResolver{
		mxErr: errors.New("no MX"),
		ip4:   []net.IP{net.ParseIP("192.0.2.1")},
	}
	c := New(stub)

	res := c.Validate(context.Background(), "john@ex.com")
	require.True(t, res.IsValid)
	assert.Empty(t, res.Details.MXRecords, "MX list stays empty on fallback")
	assert.Equal(t, []string{"192.0.2.1"}, res.Details.ARecords)
	assert.True(t, res.Details.HasRecords)
}

func TestFallbackToAAAA(t *testing.T) {
	stub := &stubResolver{
		mxErr:  errors.New("no MX"),
		ip4Err: errors.New("no A"),
		ip6:    []net.IP{net.ParseIP("2001:db8::1")},
	}
	c := New(stub)

	res := c.Validate(context.Background(), "john@ex.com")
	require.True(t, res.IsValid)
	assert.True(t, res.Details.AAAAProbed)
}

func TestAllLookupsFail(t *testing.T) {
	stub := &stubResolver{
		mxErr:  errors.New("servfail"),
		ip4Err: errors.New("servfail"),
		ip6Err: errors.New("servfail"),
	}
	c := New(stub)

	res := c.Validate(context.Background(), "john@dead.example")
	require.False(t, res.IsValid)
	assert.Contains(t, res.Error, "dead.example")
}
