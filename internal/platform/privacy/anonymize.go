// Package privacy keeps personally identifiable information out of logs and
// derived data. Client addresses are truncated before they are recorded
// anywhere.
package privacy

import "net/netip"

// Network prefixes retained after truncation. /24 leaves up to 256 IPv4
// hosts indistinguishable; /48 is the common IPv6 site allocation.
const (
	v4PrefixBits = 24
	v6PrefixBits = 48
)

// AnonymizeIP truncates an IP address to its network prefix so the result no
// longer identifies a single client. Returns "unknown" for empty input and
// "invalid" for anything that does not parse as an IP.
func AnonymizeIP(ip string) string {
	if ip == "" || ip == "unknown" {
		return "unknown"
	}
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return "invalid"
	}

	bits := v6PrefixBits
	if addr.Is4() || addr.Is4In6() {
		addr = addr.Unmap()
		bits = v4PrefixBits
	}
	prefix, err := addr.Prefix(bits)
	if err != nil {
		return "invalid"
	}
	return prefix.Addr().String()
}
