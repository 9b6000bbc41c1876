package http

import (
	"net"
	"net/http"
	"strings"
)

// clientIP returns the caller address without its port, or "" when it is not an IP.
// With a trusted proxy, RealIP middleware has already replaced RemoteAddr with the forwarded address.
func clientIP(r *http.Request) string {
	host := strings.TrimSpace(r.RemoteAddr)
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}

	ip := net.ParseIP(host)
	if ip == nil {
		return ""
	}

	return ip.String()
}
