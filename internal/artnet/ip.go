package artnet

import (
	"fmt"
	"net"
	"strings"
)

// FindArtNetIP finds the matching interface with an IP address inside addressRange.
func FindArtNetIP(addressRange string) (net.IP, error) {
	_, cidrNet, err := net.ParseCIDR(addressRange)
	if err != nil {
		return nil, fmt.Errorf("network %q: %w", addressRange, err)
	}
	address, err := net.InterfaceAddrs()
	if err != nil {
		return nil, fmt.Errorf("error getting ips: %w", err)
	}

	return matchIP(cidrNet, address), nil
}

func matchIP(cidrNet *net.IPNet, address []net.Addr) net.IP {
	for _, addr := range address {
		ipNet, ok := addr.(*net.IPNet)
		if !ok {
			continue
		}
		ip := ipNet.IP

		if strings.Contains(ip.String(), ":") {
			continue
		}

		if cidrNet.Contains(ip) {
			return ip
		}
	}

	return nil
}
