package email

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// stubResolver returns canned MX answers per domain.
type stubResolver struct {
	records map[string][]*net.MX
	err     error
	delay   time.Duration
}

func (s *stubResolver) LookupMX(ctx context.Context, domain string) ([]*net.MX, error) {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.records[domain], nil
}

func okResolver(domains ...string) *stubResolver {
	records := make(map[string][]*net.MX)
	for _, d := range domains {
		records[d] = []*net.MX{{Host: "mx1." + d, Pref: 10}}
	}
	return &stubResolver{records: records}
}

func testOptions(r MXResolver) Options {
	return Options{CheckMX: true, MXTimeout: time.Second, Resolver: r}
}

func TestValidate_ValidAddress(t *testing.T) {
	res := Validate(context.Background(), "user@example.com", testOptions(okResolver("example.com")))

	assert.True(t, res.Valid)
	assert.Empty(t, res.Errors)
	assert.Equal(t, "user@example.com", res.Normalized)
	assert.Equal(t, RiskLow, res.Risk)
}

func TestValidate_SyntaxFailureShortCircuits(t *testing.T) {
	for _, addr := range []string{"", "nope", "@example.com", "a@b", "a..b@example.com", ".a@example.com"} {
		res := Validate(context.Background(), addr, testOptions(okResolver()))

		assert.False(t, res.Valid, "expected %q to be invalid", addr)
		assert.False(t, res.Checks.Syntax)
		assert.Equal(t, 100, res.RiskScore)
		assert.Equal(t, RiskHigh, res.Risk)
	}
}

func TestValidate_GmailNormalization(t *testing.T) {
	res := Validate(context.Background(), "USER+tag@Gmail.com", testOptions(okResolver("gmail.com")))

	assert.True(t, res.Valid)
	assert.Equal(t, "user@gmail.com", res.Normalized)
}

func TestValidate_GmailDotsStripped(t *testing.T) {
	res := Validate(context.Background(), "f.i.r.s.t.last@gmail.com", testOptions(okResolver("gmail.com")))

	assert.Equal(t, "firstlast@gmail.com", res.Normalized)
}

func TestValidate_PlusSuffixOnlyForOtherDomains(t *testing.T) {
	res := Validate(context.Background(), "first.last+tag@example.com", testOptions(okResolver("example.com")))

	assert.Equal(t, "first.last@example.com", res.Normalized, "dots are preserved outside gmail")
}

func TestValidate_DisposableDomainRejected(t *testing.T) {
	res := Validate(context.Background(), "a@mailinator.com", testOptions(okResolver("mailinator.com")))

	assert.False(t, res.Valid)
	assert.False(t, res.Checks.Disposable)
	assert.NotEmpty(t, res.Errors)
	assert.Equal(t, RiskHigh, res.Risk)
}

func TestValidate_RoleAccountWarnsOnly(t *testing.T) {
	res := Validate(context.Background(), "admin@example.com", testOptions(okResolver("example.com")))

	assert.True(t, res.Valid, "role accounts warn, never block")
	assert.False(t, res.Checks.RoleAccount)
	assert.NotEmpty(t, res.Warnings)
	assert.Equal(t, RiskMedium, res.Risk)
}

func TestValidate_TypoSuggestion(t *testing.T) {
	res := Validate(context.Background(), "a@gmial.com", testOptions(okResolver("gmial.com")))

	assert.True(t, res.Valid, "typos warn, never block")
	assert.Equal(t, "a@gmail.com", res.Suggestion)
	assert.NotEmpty(t, res.Warnings)
}

func TestValidate_NoMXRecordsFailsClosed(t *testing.T) {
	res := Validate(context.Background(), "user@example.com", testOptions(okResolver("other.com")))

	assert.False(t, res.Valid)
	assert.False(t, res.Checks.MX)
}

func TestValidate_MXLookupErrorFailsClosed(t *testing.T) {
	res := Validate(context.Background(), "user@example.com",
		testOptions(&stubResolver{err: errors.New("dns failure")}))

	assert.False(t, res.Valid)
	assert.False(t, res.Checks.MX)
}

func TestValidate_MXTimeoutBounded(t *testing.T) {
	opts := Options{
		CheckMX:   true,
		MXTimeout: 50 * time.Millisecond,
		Resolver:  &stubResolver{delay: 5 * time.Second, records: map[string][]*net.MX{}},
	}

	start := time.Now()
	res := Validate(context.Background(), "user@example.com", opts)
	elapsed := time.Since(start)

	assert.False(t, res.Valid)
	assert.Less(t, elapsed, time.Second, "lookup must not block past the timeout")
}

func TestValidate_MXDisabled(t *testing.T) {
	res := Validate(context.Background(), "user@example.com", Options{CheckMX: false})

	assert.True(t, res.Valid)
	assert.True(t, res.Checks.MX)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "user@gmail.com", Normalize("USER+tag@Gmail.com"))
	assert.Equal(t, "ab@googlemail.com", Normalize("a.b+x@googlemail.com"))
	assert.Equal(t, "a.b@example.com", Normalize("A.B+x@Example.COM"))
}
