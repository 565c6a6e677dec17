package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"net/netip"
	"strings"

	"github.com/JonMunkholm/senioritydiff/internal/core"
)

// TrustedRealIP resolves the client address and stores it, with the user
// agent, in the request context for the run history.
//
// X-Real-IP and X-Forwarded-For are honoured ONLY when the connection comes
// from a trusted proxy CIDR; otherwise RemoteAddr is used, so untrusted
// clients cannot spoof their address past the rate limiter.
func TrustedRealIP(trustedCIDRs []string, logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}

	// Parse trusted CIDRs once at startup
	var trusted []netip.Prefix
	for _, cidr := range trustedCIDRs {
		cidr = strings.TrimSpace(cidr)
		if cidr == "" {
			continue
		}

		prefix, err := netip.ParsePrefix(cidr)
		if err != nil {
			// Accept a single IP, e.g. "127.0.0.1" instead of "127.0.0.1/32"
			addr, aerr := netip.ParseAddr(cidr)
			if aerr != nil {
				logger.Warn("realip: invalid trusted proxy CIDR, skipping", "cidr", cidr, "error", err)
				continue
			}
			prefix = netip.PrefixFrom(addr, addr.BitLen())
		}
		trusted = append(trusted, prefix.Masked())
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			client := ClientIP(r.RemoteAddr)

			if ip, ok := parseAddr(client); ok && isTrusted(ip, trusted) {
				if fwd, ok := forwardedFor(r); ok {
					client = fwd
					r.RemoteAddr = fwd
				}
			}

			ctx := core.ContextWithIPAddress(r.Context(), client)
			ctx = core.ContextWithUserAgent(ctx, r.UserAgent())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// forwardedFor returns the client address announced by a proxy: X-Real-IP
// first, then the first X-Forwarded-For entry. Invalid addresses are ignored.
func forwardedFor(r *http.Request) (string, bool) {
	if rip := strings.TrimSpace(r.Header.Get("X-Real-IP")); rip != "" {
		if ip, ok := parseAddr(rip); ok {
			return ip.String(), true
		}
		return "", false
	}
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip, ok := parseAddr(strings.TrimSpace(first)); ok {
			return ip.String(), true
		}
	}
	return "", false
}

// ClientIP strips the port from a host:port address.
func ClientIP(addr string) string {
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}

func parseAddr(s string) (netip.Addr, bool) {
	ip, err := netip.ParseAddr(s)
	if err != nil {
		return netip.Addr{}, false
	}
	return ip.Unmap(), true
}

// isTrusted checks if an IP is within any of the trusted networks.
func isTrusted(ip netip.Addr, trusted []netip.Prefix) bool {
	for _, p := range trusted {
		if p.Contains(ip) {
			return true
		}
	}
	return false
}
