// Package clientip extracts real client IP addresses from HTTP requests.
//
// This package handles various proxy headers in priority order to determine the
// actual client IP address, which is essential for rate limiting, geolocation,
// and security logging in web applications behind proxies, load balancers, or CDNs.
//
// # Header Priority
//
// The package checks headers in this specific order:
//  1. CF-Connecting-IP (Cloudflare)
//  2. DO-Connecting-IP (DigitalOcean)
//  3. X-Forwarded-For (most common proxy header)
//  4. X-Real-IP (nginx and other proxies)
//  5. RemoteAddr (direct connection)
//
// This priority order ensures that the most reliable sources are checked first.
//
// # Usage
//
// Basic IP extraction:
//
//	func handleRequest(w http.ResponseWriter, r *http.Request) {
//		clientIP := clientip.GetIP(r)
//		log.Printf("Request from IP: %s", clientIP)
//
//	}
//
// # Validation
//
// Addresses are parsed with net/netip. Invalid values and the unspecified
// addresses 0.0.0.0 and :: are skipped, IPv4-mapped IPv6 addresses are
// unmapped, and zones are dropped. X-Forwarded-For may list several hops
// ("client, proxy1, proxy2"); only the leftmost one is considered.
//
// If no valid IP can be determined, GetIP returns the raw RemoteAddr.
//
// The headers are trusted as sent. Deploy behind a proxy that overwrites them,
// otherwise clients can pick their own rate limit key.
package clientip
