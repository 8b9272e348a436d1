package breach

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, nil))
}

func hashParts(pw string) (prefix, suffix string) {
	sum := sha1.Sum([]byte(pw))
	hash := strings.ToUpper(hex.EncodeToString(sum[:]))
	return hash[:5], hash[5:]
}

func TestCheck_BreachedPassword(t *testing.T) {
	prefix, suffix := hashParts("password")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/range/"+prefix, r.URL.Path)
		fmt.Fprintf(w, "0018A45C4D1DEF81644B54AB7F969B88D65:5\r\n%s:9545824\r\nFFABC123456789ABCDEF0123456789ABCDEF:2\r\n", suffix)
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second, testLogger())
	res := client.Check(context.Background(), "password")

	assert.True(t, res.Breached)
	assert.Equal(t, 9545824, res.Count)
}

func TestCheck_CleanPassword(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "0018A45C4D1DEF81644B54AB7F969B88D65:5\r\n")
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second, testLogger())
	res := client.Check(context.Background(), "certainly-not-in-the-range-response")

	assert.False(t, res.Breached)
	assert.Zero(t, res.Count)
}

func TestCheck_Non200FailsOpen(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second, testLogger())
	res := client.Check(context.Background(), "password")

	assert.False(t, res.Breached)
	assert.Zero(t, res.Count)
}

func TestCheck_NetworkErrorFailsOpen(t *testing.T) {
	// Closed server: connection refused.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := NewClient(server.URL, time.Second, testLogger())
	res := client.Check(context.Background(), "password")

	assert.False(t, res.Breached)
	assert.Zero(t, res.Count)
}

func TestCheck_OnlyPrefixLeavesProcess(t *testing.T) {
	var requestedPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestedPath = r.URL.Path
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second, testLogger())
	client.Check(context.Background(), "hunter2")

	prefix, suffix := hashParts("hunter2")
	assert.Equal(t, "/range/"+prefix, requestedPath)
	assert.NotContains(t, requestedPath, suffix)
}
