package validator

import (
	"net"
	"strings"
)

// UnknownClient 无法识别客户端地址时使用的限流 key
const UnknownClient = "unknown"

// ipv6PrefixBits IPv6 客户端按 /64 聚合，同一网段共享计数
const ipv6PrefixBits = 64

// NormalizeIP 去掉 IPv6 zone（fe80::1%eth0 -> fe80::1），无法解析时返回 nil
func NormalizeIP(ip string) net.IP {
	ip = strings.TrimSpace(ip)
	if idx := strings.IndexByte(ip, '%'); idx != -1 {
		ip = ip[:idx]
	}
	return net.ParseIP(ip)
}

// ClientKey 限流使用的客户端标识
// IPv4 原样返回；IPv6 取 /64 网段
func ClientKey(ip string) string {
	parsed := NormalizeIP(ip)
	if parsed == nil {
		return UnknownClient
	}
	if v4 := parsed.To4(); v4 != nil {
		return v4.String()
	}
	network := parsed.Mask(net.CIDRMask(ipv6PrefixBits, 128))
	return network.String() + "/64"
}
