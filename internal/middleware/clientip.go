package middleware

import (
	"net"
	"net/http"
)

// ClientIP returns the host part of r.RemoteAddr. The router installs chi's
// RealIP ahead of everything else, so proxy headers are already applied.
func ClientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if net.ParseIP(host) == nil {
		return ""
	}
	return host
}
