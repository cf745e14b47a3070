package security

import (
	"fmt"
	"net"
	"net/http"
	"strings"
)

// DefaultTrustedProxies are the loopback and private networks allowed to set
// forwarding headers.
var DefaultTrustedProxies = []*net.IPNet{
	mustParseCIDR("127.0.0.0/8"),
	mustParseCIDR("::1/128"),
	mustParseCIDR("10.0.0.0/8"),
	mustParseCIDR("172.16.0.0/12"),
	mustParseCIDR("192.168.0.0/16"),
}

func mustParseCIDR(cidr string) *net.IPNet {
	_, network, err := net.ParseCIDR(cidr)
	if err != nil {
		panic(fmt.Sprintf("failed to parse trusted proxy CIDR %s: %v", cidr, err))
	}
	return network
}

// IPExtractor resolves the client address of a request. Forwarding headers
// are honoured only when the direct peer is a trusted proxy.
type IPExtractor struct {
	trusted []*net.IPNet
}

// NewIPExtractor uses DefaultTrustedProxies when trusted is empty.
func NewIPExtractor(trusted ...*net.IPNet) *IPExtractor {
	if len(trusted) == 0 {
		trusted = DefaultTrustedProxies
	}
	return &IPExtractor{trusted: trusted}
}

func (e *IPExtractor) isTrusted(ip net.IP) bool {
	for _, network := range e.trusted {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}

// ClientIP returns the client address for r.
func (e *IPExtractor) ClientIP(r *http.Request) string {
	directIP, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		directIP = r.RemoteAddr
	}

	parsed := net.ParseIP(directIP)
	if parsed == nil || !e.isTrusted(parsed) {
		return directIP
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		first = strings.TrimSpace(first)
		if net.ParseIP(first) != nil {
			return first
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" && net.ParseIP(xri) != nil {
		return xri
	}
	return directIP
}
