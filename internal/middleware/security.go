// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import "net/http"

// contentSecurityPolicy allows post media from any https origin (the
// object store's public URL is deployment specific) and inline data URIs
// for shapes. Scripts and styles are served from the site itself. Without
// TLS, plain http media is allowed too so a local object store works.
func contentSecurityPolicy(secure bool) string {
	media := "'self' https:"
	if !secure {
		media += " http:"
	}
	return "default-src 'self'; " +
		"img-src " + media + " data:; " +
		"media-src " + media + "; " +
		"style-src 'self' 'unsafe-inline'; " +
		"script-src 'self'; " +
		"frame-ancestors 'self'; " +
		"base-uri 'self'; " +
		"form-action 'self'"
}

// SecureHeaders sets browser hardening headers on every response. When
// secure is true the site is assumed to be served over TLS and HSTS is sent.
func SecureHeaders(secure bool) func(http.Handler) http.Handler {
	csp := contentSecurityPolicy(secure)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "SAMEORIGIN")
			h.Set("X-XSS-Protection", "0")
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			h.Set("Permissions-Policy", "camera=(), microphone=(), geolocation=()")
			h.Set("Content-Security-Policy", csp)
			if secure {
				h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			}
			next.ServeHTTP(w, r)
		})
	}
}
