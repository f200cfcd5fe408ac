package security

import (
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"strings"
	"sync/atomic"

	"costmanager/internal/log"
)

// ClientIPResolver trusts forwarding headers only from known proxy networks.
type ClientIPResolver struct {
	trusted []netip.Prefix
	logger  *log.Logger
	probes  int64
}

// NewClientIPResolver trusts loopback and private networks.
func NewClientIPResolver(logger *log.Logger) *ClientIPResolver {
	if logger == nil {
		logger = log.Discard()
	}
	return &ClientIPResolver{
		trusted: []netip.Prefix{
			netip.MustParsePrefix("127.0.0.0/8"),
			netip.MustParsePrefix("::1/128"),
			netip.MustParsePrefix("10.0.0.0/8"),
			netip.MustParsePrefix("172.16.0.0/12"),
			netip.MustParsePrefix("192.168.0.0/16"),
		},
		logger: logger.WithComponent(log.ComponentSecurity),
	}
}

// AddTrustedProxy trusts one more CIDR.
func (c *ClientIPResolver) AddTrustedProxy(cidr string) error {
	p, err := netip.ParsePrefix(cidr)
	if err != nil {
		return fmt.Errorf("invalid CIDR %s: %w", cidr, err)
	}
	c.trusted = append(c.trusted, p)
	return nil
}

// ClientIP returns the first X-Forwarded-For hop or X-Real-IP when the
// direct peer is a trusted proxy, and the peer address otherwise.
func (c *ClientIPResolver) ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	peer, err := netip.ParseAddr(host)
	if err != nil || !c.isTrusted(peer.Unmap()) {
		return host
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if a, err := netip.ParseAddr(strings.TrimSpace(first)); err == nil {
			return a.String()
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		if a, err := netip.ParseAddr(strings.TrimSpace(xri)); err == nil {
			return a.String()
		}
	}
	return host
}

func (c *ClientIPResolver) isTrusted(a netip.Addr) bool {
	for _, p := range c.trusted {
		if p.Contains(a) {
			return true
		}
	}
	return false
}

var probePatterns = []string{"../", "..\\", ".env", ".git", "wp-admin", "phpmyadmin", "etc/passwd"}

// ProbeLogger logs requests for well-known scanner paths. It never blocks.
func (c *ClientIPResolver) ProbeLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		target := strings.ToLower(r.URL.Path + "?" + r.URL.RawQuery)
		for _, p := range probePatterns {
			if strings.Contains(target, p) {
				atomic.AddInt64(&c.probes, 1)
				c.logger.WarnContext(r.Context(), "Suspicious request",
					log.FieldClientIP, c.ClientIP(r), log.FieldPath, r.URL.Path)
				break
			}
		}
		next.ServeHTTP(w, r)
	})
}

// Probes returns how many suspicious requests were seen.
func (c *ClientIPResolver) Probes() int64 {
	return atomic.LoadInt64(&c.probes)
}
