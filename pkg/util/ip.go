package util

import (
	"fmt"
	"net"
	"strings"
)

// IsValidIPv4 checks if a string is an IPv4 dotted quad. IPv6 addresses
// and IPv4-mapped IPv6 forms are rejected: the lab address plan is
// IPv4-only.
func IsValidIPv4(ipStr string) bool {
	if strings.Count(ipStr, ".") != 3 {
		return false
	}
	ip := net.ParseIP(ipStr)
	return ip != nil && ip.To4() != nil
}

// Network24 returns the /24 network containing ip in CIDR notation,
// e.g. "1.2.3.4" -> "1.2.3.0/24". Returns error for non-IPv4 input.
func Network24(ipStr string) (string, error) {
	if !IsValidIPv4(ipStr) {
		return "", fmt.Errorf("not an IPv4 address: %s", ipStr)
	}
	ip := net.ParseIP(ipStr).To4()
	network := ip.Mask(net.CIDRMask(24, 32))
	return network.String() + "/24", nil
}

// NetworkAddr returns the network address for a given IPv4 address and
// mask length, or "" for invalid input.
func NetworkAddr(ipStr string, maskLen int) string {
	ip := net.ParseIP(ipStr)
	if ip == nil {
		return ""
	}
	ip = ip.To4()
	if ip == nil {
		return ""
	}
	return ip.Mask(net.CIDRMask(maskLen, 32)).String()
}

// CIDRContains reports whether addr falls inside the cidr block.
// Returns false for unparseable input.
func CIDRContains(cidr, addr string) bool {
	_, ipNet, err := net.ParseCIDR(cidr)
	if err != nil {
		return false
	}
	ip := net.ParseIP(addr)
	if ip == nil {
		return false
	}
	return ipNet.Contains(ip)
}

// SplitIPMask splits CIDR notation into address and mask length.
// Input without a mask is returned as-is with mask 0.
func SplitIPMask(cidr string) (string, int) {
	ip, ipNet, err := net.ParseCIDR(cidr)
	if err != nil {
		return cidr, 0
	}
	ones, _ := ipNet.Mask.Size()
	return ip.String(), ones
}
