package privacy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnonymizeIP(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "ipv4 standard address", input: "192.168.1.47", expected: "192.168.1.0"},
		{name: "ipv4 already on boundary", input: "10.0.0.0", expected: "10.0.0.0"},
		{name: "ipv4 high last octet", input: "172.16.50.255", expected: "172.16.50.0"},
		{name: "ipv4 localhost", input: "127.0.0.1", expected: "127.0.0.0"},
		{name: "ipv4-mapped ipv6", input: "::ffff:192.168.1.47", expected: "192.168.1.0"},
		{name: "ipv6 full address", input: "2001:db8:85a3:0000:0000:8a2e:0370:7334", expected: "2001:db8:85a3::"},
		{name: "ipv6 compressed", input: "2001:db8:1::1", expected: "2001:db8:1::"},
		{name: "ipv6 loopback", input: "::1", expected: "::"},
		{name: "empty input", input: "", expected: "unknown"},
		{name: "unknown passthrough", input: "unknown", expected: "unknown"},
		{name: "garbage input", input: "not-an-ip", expected: "invalid"},
		{name: "host with port is not an ip", input: "192.168.1.47:443", expected: "invalid"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, AnonymizeIP(tt.input))
		})
	}
}
