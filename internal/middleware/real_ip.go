package middleware

import (
	"net/http"

	pkghttp "github.com/BradenHooton/vigil/pkg/http"
)

// ClientIP rewrites RemoteAddr to the real client address before anything
// downstream keys on it, honoring forwarding headers only from trusted
// proxies. Rate limiting and request logs both depend on this running first.
func ClientIP(trustedProxies []string) func(http.Handler) http.Handler {
	cfg := &pkghttp.IPConfig{TrustedProxies: trustedProxies}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if ip := pkghttp.ExtractClientIP(r, cfg); ip != "" && ip != "unknown" {
				r.RemoteAddr = ip
			}
			next.ServeHTTP(w, r)
		})
	}
}
