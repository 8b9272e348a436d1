// Package breach wraps a k-anonymity password-breach range endpoint. Only
// the first five characters of the SHA-1 hash leave the process; suffixes
// are compared locally. The check is advisory: any transport or protocol
// failure reports not-breached rather than blocking a credential change.
package breach

import (
	"bufio"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const prefixLength = 5

// Result reports breach exposure for a password.
type Result struct {
	Breached bool `json:"breached"`
	Count    int  `json:"count"`
}

// Client queries a range endpoint shaped like the HIBP Pwned Passwords API:
// GET {base}/range/{prefix} returning newline-separated SUFFIX:COUNT lines.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a breach client. timeout bounds each lookup.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Check reports whether the password appears in the breach corpus and how
// many times. Fail-open: network or HTTP errors return {false, 0}, never an
// error, so oracle unavailability cannot block a legitimate credential change.
func (c *Client) Check(ctx context.Context, pw string) Result {
	sum := sha1.Sum([]byte(pw))
	hash := strings.ToUpper(hex.EncodeToString(sum[:]))
	prefix, suffix := hash[:prefixLength], hash[prefixLength:]

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/range/%s", c.baseURL, prefix), nil)
	if err != nil {
		c.logger.Warn("breach check skipped", slog.Any("error", err))
		return Result{}
	}
	req.Header.Set("Add-Padding", "true")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("breach oracle unreachable, failing open", slog.Any("error", err))
		return Result{}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("breach oracle returned non-200, failing open", slog.Int("status", resp.StatusCode))
		return Result{}
	}

	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		candidate, countStr, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		if strings.EqualFold(candidate, suffix) {
			count, err := strconv.Atoi(strings.TrimSpace(countStr))
			if err != nil {
				count = 1
			}
			return Result{Breached: true, Count: count}
		}
	}
	if err := scanner.Err(); err != nil {
		c.logger.Warn("breach response truncated, failing open", slog.Any("error", err))
	}

	return Result{}
}
