package middleware

import (
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"strings"

	"github.com/diagnosis/shelter-loyalty/pkg/logger"
	"github.com/diagnosis/shelter-loyalty/pkg/metrics"
	"github.com/diagnosis/shelter-loyalty/pkg/ratelimit"
	"github.com/diagnosis/shelter-loyalty/pkg/response"
)

// RateLimitConfig defines rate limiting parameters
type RateLimitConfig struct {
	Scope   string                          // Key namespace, e.g. "login"
	KeyFunc func(r *http.Request) []string // Defaults to the peer address
}

// RateLimit rejects requests over budget for any of their keys. Limiter errors
// fail open.
func RateLimit(limiter ratelimit.Limiter, cfg RateLimitConfig) func(http.Handler) http.Handler {
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = PeerIPKeyFunc
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, key := range cfg.KeyFunc(r) {
				allowed, err := limiter.Allow(r.Context(), cfg.Scope+":"+key)
				if err != nil {
					logger.WarnContext(r.Context(), "Rate limiter unavailable, allowing request", "error", err)
					continue
				}
				if !allowed {
					metrics.RateLimited.Inc()
					response.RateLimit(w, "Too many requests. Try again later.")
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// PeerIPKeyFunc keys requests by the connecting peer, ignoring forwarding headers.
func PeerIPKeyFunc(r *http.Request) []string {
	if ip := peerIP(r); ip != "" {
		return []string{"ip:" + ip}
	}
	return nil
}

// ClientIPKeyFunc keys requests by client IP. Forwarding headers are only read when
// the peer matches one of trustedProxies (IPs or CIDRs).
func ClientIPKeyFunc(trustedProxies []string) (func(r *http.Request) []string, error) {
	trusted, err := parseTrustedProxies(trustedProxies)
	if err != nil {
		return nil, err
	}
	if len(trusted) == 0 {
		return PeerIPKeyFunc, nil
	}
	return func(r *http.Request) []string {
		if ip := getClientIP(r, trusted); ip != "" {
			return []string{"ip:" + ip}
		}
		return nil
	}, nil
}

func parseTrustedProxies(entries []string) ([]netip.Prefix, error) {
	out := make([]netip.Prefix, 0, len(entries))
	for _, e := range entries {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		if strings.Contains(e, "/") {
			p, err := netip.ParsePrefix(e)
			if err != nil {
				return nil, fmt.Errorf("trusted proxy %q: %w", e, err)
			}
			out = append(out, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(e)
		if err != nil {
			return nil, fmt.Errorf("trusted proxy %q: %w", e, err)
		}
		addr = addr.Unmap()
		out = append(out, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return out, nil
}

func isTrusted(ip string, trusted []netip.Prefix) bool {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, p := range trusted {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// getClientIP extracts the real client IP from the request
func getClientIP(r *http.Request, trusted []netip.Prefix) string {
	peer := peerIP(r)
	if !isTrusted(peer, trusted) {
		return peer
	}

	// Walk X-Forwarded-For from the nearest hop; the first untrusted address is the client.
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		hops := strings.Split(xff, ",")
		for i := len(hops) - 1; i >= 0; i-- {
			hop := strings.TrimSpace(hops[i])
			if _, err := netip.ParseAddr(hop); err != nil {
				break
			}
			if !isTrusted(hop, trusted) || i == 0 {
				return hop
			}
		}
	}

	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		if _, err := netip.ParseAddr(xri); err == nil {
			return xri
		}
	}

	return peer
}

func peerIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
