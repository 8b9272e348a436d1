// Package email validates addresses at registration time: syntax, domain
// shape, disposable/role/typo detection against static tables, and MX
// resolution with a bounded timeout. Normalization produces the canonical
// form used for deduplication; it never affects the validity verdict.
package email

import (
	"context"
	"net"
	"regexp"
	"strings"
	"time"
)

// RFC 5322 approximation. Full grammar support (quoted locals, comments) is
// deliberately not attempted.
var emailPattern = regexp.MustCompile(
	`^[a-zA-Z0-9.!#$%&'*+/=?^_` + "`" + `{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)+$`)

const (
	maxLocalLength  = 64
	maxDomainLength = 253
	minTotalLength  = 5
	maxTotalLength  = 254
)

// MXResolver is the DNS dependency; tests substitute a stub.
type MXResolver interface {
	LookupMX(ctx context.Context, domain string) ([]*net.MX, error)
}

type netResolver struct{}

func (netResolver) LookupMX(ctx context.Context, domain string) ([]*net.MX, error) {
	return net.DefaultResolver.LookupMX(ctx, domain)
}

// Options controls the validation pipeline.
type Options struct {
	// CheckMX enables DNS MX resolution for the domain.
	CheckMX bool
	// MXTimeout bounds the lookup; the calling request never waits longer.
	MXTimeout time.Duration
	// Resolver overrides DNS resolution, primarily for tests.
	Resolver MXResolver
}

// DefaultOptions returns the standard registration policy.
func DefaultOptions() Options {
	return Options{
		CheckMX:   true,
		MXTimeout: 5 * time.Second,
	}
}

// Checks records the outcome of each pipeline stage. True means passed.
type Checks struct {
	Syntax      bool `json:"syntax"`
	Domain      bool `json:"domain"`
	MX          bool `json:"mx"`
	Disposable  bool `json:"disposable"`
	RoleAccount bool `json:"role_account"`
	Typo        bool `json:"typo"`
}

// Risk buckets
const (
	RiskLow    = "low"
	RiskMedium = "medium"
	RiskHigh   = "high"
)

// Risk score contributions per failed check
const (
	riskSyntax     = 100
	riskDisposable = 80
	riskDomain     = 50
	riskMX         = 30
	riskRole       = 20
	riskTypo       = 10
)

// Result is the outcome of an email validation.
type Result struct {
	Valid      bool     `json:"valid"`
	Normalized string   `json:"normalized"`
	Checks     Checks   `json:"checks"`
	Risk       string   `json:"risk"`
	RiskScore  int      `json:"risk_score"`
	Suggestion string   `json:"suggestion,omitempty"`
	Errors     []string `json:"errors"`
	Warnings   []string `json:"warnings"`
}

// Validate runs the pipeline: syntax, normalization, disposable, role
// account, typo, MX. Syntax failure short-circuits; disposable and MX
// failures are hard errors; role and typo are warnings only.
func Validate(ctx context.Context, address string, opts Options) Result {
	if opts.MXTimeout == 0 {
		opts.MXTimeout = 5 * time.Second
	}
	if opts.Resolver == nil {
		opts.Resolver = netResolver{}
	}

	res := Result{
		Errors:   []string{},
		Warnings: []string{},
	}

	address = strings.TrimSpace(address)

	if !checkSyntax(address) {
		res.Errors = append(res.Errors, "invalid email address")
		res.RiskScore = riskSyntax
		res.Risk = bucketRisk(res.RiskScore)
		return res
	}
	res.Checks.Syntax = true
	res.Checks.Domain = true

	local, domain := splitAddress(address)
	res.Normalized = Normalize(address)

	if _, ok := disposableDomains[domain]; ok {
		res.Errors = append(res.Errors, "disposable email addresses are not allowed")
		res.RiskScore += riskDisposable
	} else {
		res.Checks.Disposable = true
	}

	if _, ok := roleAccounts[strings.ToLower(local)]; ok {
		res.Warnings = append(res.Warnings, "address appears to be a role account")
		res.RiskScore += riskRole
	} else {
		res.Checks.RoleAccount = true
	}

	if intended, ok := domainTypos[domain]; ok {
		res.Warnings = append(res.Warnings, "domain looks like a typo of "+intended)
		res.Suggestion = strings.ToLower(local) + "@" + intended
		res.RiskScore += riskTypo
	} else {
		res.Checks.Typo = true
	}

	if opts.CheckMX {
		if lookupMX(ctx, opts, domain) {
			res.Checks.MX = true
		} else {
			res.Errors = append(res.Errors, "domain cannot receive mail")
			res.RiskScore += riskMX
		}
	} else {
		res.Checks.MX = true
	}

	res.Valid = len(res.Errors) == 0
	res.Risk = bucketRisk(res.RiskScore)
	return res
}

// Normalize lowercases and canonicalizes an address for deduplication.
// Gmail locals drop dots and plus-suffixes; other providers drop the
// plus-suffix only. The input must already have passed syntax checks.
func Normalize(address string) string {
	local, domain := splitAddress(strings.ToLower(address))

	if idx := strings.Index(local, "+"); idx >= 0 {
		local = local[:idx]
	}
	if domain == "gmail.com" || domain == "googlemail.com" {
		local = strings.ReplaceAll(local, ".", "")
	}

	return local + "@" + domain
}

func checkSyntax(address string) bool {
	if len(address) < minTotalLength || len(address) > maxTotalLength {
		return false
	}
	if !emailPattern.MatchString(address) {
		return false
	}

	local, domain := splitAddress(address)
	if len(local) > maxLocalLength || len(domain) > maxDomainLength {
		return false
	}
	// Dot placement rules the regex is too loose for.
	if strings.HasPrefix(local, ".") || strings.HasSuffix(local, ".") || strings.Contains(local, "..") {
		return false
	}
	return true
}

func splitAddress(address string) (local, domain string) {
	at := strings.LastIndex(address, "@")
	if at < 0 {
		return address, ""
	}
	return address[:at], strings.ToLower(address[at+1:])
}

// lookupMX races the DNS query against the configured timeout so a slow
// resolver cannot hang the calling request. A lookup error or an empty MX
// set both count as undeliverable (fail-closed).
func lookupMX(ctx context.Context, opts Options, domain string) bool {
	ctx, cancel := context.WithTimeout(ctx, opts.MXTimeout)
	defer cancel()

	type mxResult struct {
		records []*net.MX
		err     error
	}

	ch := make(chan mxResult, 1)
	go func() {
		records, err := opts.Resolver.LookupMX(ctx, domain)
		ch <- mxResult{records, err}
	}()

	select {
	case r := <-ch:
		return r.err == nil && len(r.records) > 0
	case <-ctx.Done():
		return false
	}
}

func bucketRisk(score int) string {
	switch {
	case score < 20:
		return RiskLow
	case score < 50:
		return RiskMedium
	default:
		return RiskHigh
	}
}
