package middleware

import (
	"hostel/shared/constant"
	"net/http"
	"net/netip"
	"slices"
	"strings"
)

// RealIP replaces RemoteAddr with the forwarded client address, but only when
// the peer is a trusted proxy. X-Forwarded-For is walked right to left and the
// first hop outside the trusted set is the client.
func (a *appMiddleware) RealIP(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if client, ok := a.forwardedClient(r); ok {
			r.RemoteAddr = client.String()
		}

		next.ServeHTTP(w, r)
	})
}

func (a *appMiddleware) forwardedClient(r *http.Request) (netip.Addr, bool) {
	peer, ok := parseAddr(r.RemoteAddr)
	if !ok || !a.trusted(peer) {
		return netip.Addr{}, false
	}

	if xff := r.Header.Get(constant.RequestHeaderForwardedFor); xff != constant.Empty {
		hops := strings.Split(xff, ",")

		var client netip.Addr

		for _, hop := range slices.Backward(hops) {
			addr, ok := parseAddr(strings.TrimSpace(hop))
			if !ok {
				break
			}

			client = addr

			if !a.trusted(addr) {
				break
			}
		}

		return client, client.IsValid()
	}

	return parseAddr(strings.TrimSpace(r.Header.Get(constant.RequestHeaderRealIP)))
}

func (a *appMiddleware) trusted(addr netip.Addr) bool {
	for _, prefix := range a.proxies {
		if prefix.Contains(addr) {
			return true
		}
	}

	return false
}

// parseAddr accepts "ip" or "ip:port" and unmaps IPv4-in-IPv6.
func parseAddr(raw string) (netip.Addr, bool) {
	if addrPort, err := netip.ParseAddrPort(raw); err == nil {
		return addrPort.Addr().Unmap(), true
	}

	addr, err := netip.ParseAddr(raw)
	if err != nil {
		return netip.Addr{}, false
	}

	return addr.Unmap(), true
}
