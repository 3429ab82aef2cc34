// Package weburl classifies reference cells as links and validates link
// targets before they are fetched.
//
// # Link Detection
//
// IsLink reports whether a raw reference cell should be enriched. Any cell
// starting with the "http" scheme prefix counts, covering both http:// and
// https:// links. Everything else is plain text.
//
// # URL Validation
//
// ValidateURL guards fetches when private networks are blocked:
//
//   - Requires the http or https scheme
//   - Blocks localhost variants (localhost, 127.0.0.1, ::1)
//   - Blocks local domains (.local, .internal)
//   - Blocks private IP ranges (RFC 1918, CGNAT, link-local)
//
// # IP Address Handling
//
// IsPrivateIP detects private/reserved IP addresses including:
//
//   - IPv4 private ranges (10.0.0.0/8, 172.16.0.0/12, 192.168.0.0/16)
//   - IPv4 loopback (127.0.0.0/8)
//   - IPv4 link-local (169.254.0.0/16)
//   - CGNAT range (100.64.0.0/10)
//   - IPv6 loopback (::1)
//   - IPv6 unique local (fc00::/7)
//   - IPv6 link-local (fe80::/10)
//   - IPv6-mapped IPv4 addresses (::ffff:x.x.x.x)
//
// SafeDialContext applies the same check to resolved addresses, which closes
// the DNS rebinding gap left by validating host names alone.
//
// # Usage
//
//	if weburl.IsLink(cell) {
//	    if err := weburl.ValidateURL(cell); err != nil {
//	        return err
//	    }
//	}
package weburl
