// Package address implements the IP/CIDR helpers used by ACL matching;
// IsValid, IsIPv4 and IsIPv6 are not registered as VCL built-ins. Built on
// net/netip: no example
// repo in the retrieval pack wires a third-party CIDR library, and net/netip
// is the idiomatic standard choice for this even in dependency-heavy Go
// services (e.g. the reverse proxy / rate-limiter repos in this pack all fall
// back to net/netip or net for address parsing rather than importing one).
package address

import "net/netip"

// CIDRContains reports whether ip falls within entryIP/subnet. subnet < 0
// means a bare host route (entryIP must equal ip exactly). Invalid
// addresses never match.
func CIDRContains(entryIP string, subnet int, ip string) bool {
	target, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	base, err := netip.ParseAddr(entryIP)
	if err != nil {
		return false
	}
	if subnet < 0 {
		return base == target
	}
	prefix, err := base.Prefix(subnet)
	if err != nil {
		return false
	}
	return prefix.Contains(target)
}

// IsValid reports whether s parses as an IPv4 or IPv6 address.
func IsValid(s string) bool {
	_, err := netip.ParseAddr(s)
	return err == nil
}

// IsIPv4 reports whether s parses as an IPv4 address.
func IsIPv4(s string) bool {
	a, err := netip.ParseAddr(s)
	return err == nil && a.Is4()
}

// IsIPv6 reports whether s parses as an IPv6 address.
func IsIPv6(s string) bool {
	a, err := netip.ParseAddr(s)
	return err == nil && a.Is6()
}
