package auth

import "net/http"

// GetIPAddress extracts the client IP address from the request, preferring
// proxy-provided headers over the raw remote address.
func GetIPAddress(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return xff
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}
