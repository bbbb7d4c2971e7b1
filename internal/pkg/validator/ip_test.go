package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClientKey(t *testing.T) {
	tests := []struct {
		name string
		ip   string
		want string
	}{
		{name: "ipv4", ip: "203.0.113.7", want: "203.0.113.7"},
		{name: "ipv4 mapped", ip: "::ffff:203.0.113.7", want: "203.0.113.7"},
		{name: "ipv6 host", ip: "2001:db8:1:2:3:4:5:6", want: "2001:db8:1:2::/64"},
		{name: "ipv6 same network", ip: "2001:db8:1:2:ffff::1", want: "2001:db8:1:2::/64"},
		{name: "zone stripped", ip: "fe80::1%eth0", want: "fe80::/64"},
		{name: "empty", ip: "", want: UnknownClient},
		{name: "garbage", ip: "not-an-ip", want: UnknownClient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClientKey(tt.ip))
		})
	}
}
