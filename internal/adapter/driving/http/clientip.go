package httphandler

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// clientIPHeaders are consulted in order before the socket address.
var clientIPHeaders = []string{"X-Forwarded-For", "X-Real-IP", "Client-IP"}

var reservedPrefixes = []netip.Prefix{
	netip.MustParsePrefix("0.0.0.0/8"),
	netip.MustParsePrefix("100.64.0.0/10"),
	netip.MustParsePrefix("240.0.0.0/4"),
	netip.MustParsePrefix("2001:db8::/32"),
}

// TrustedProxies lists the peers whose forwarding headers are believed.
type TrustedProxies []netip.Prefix

// Contains reports whether host is a trusted proxy address.
func (p TrustedProxies) Contains(host string) bool {
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, prefix := range p {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

// ClientIP returns the first public, non-reserved address found in the proxy
// headers or the socket address. Headers are read only when the socket peer
// is a trusted proxy. When nothing qualifies the raw socket address is
// returned, or "Unknown" if even that is missing.
func ClientIP(r *http.Request, proxies TrustedProxies) string {
	remote := remoteHost(r.RemoteAddr)

	candidates := make([]string, 0, len(clientIPHeaders)+1)
	if proxies.Contains(remote) {
		for _, h := range clientIPHeaders {
			if v := r.Header.Get(h); v != "" {
				first, _, _ := strings.Cut(v, ",")
				candidates = append(candidates, strings.TrimSpace(first))
			}
		}
	}
	candidates = append(candidates, remote)

	for _, c := range candidates {
		addr, err := netip.ParseAddr(c)
		if err == nil && isPublic(addr.Unmap()) {
			return addr.Unmap().String()
		}
	}

	if remote == "" {
		return "Unknown"
	}
	return remote
}

func remoteHost(remoteAddr string) string {
	if host, _, err := net.SplitHostPort(remoteAddr); err == nil {
		return host
	}
	return remoteAddr
}

func isPublic(addr netip.Addr) bool {
	if addr.IsPrivate() || addr.IsLoopback() || addr.IsUnspecified() ||
		addr.IsLinkLocalUnicast() || addr.IsLinkLocalMulticast() || addr.IsMulticast() {
		return false
	}
	for _, p := range reservedPrefixes {
		if p.Contains(addr) {
			return false
		}
	}
	return true
}
