package httputil

import (
	"errors"
	"fmt"
	"net"
)

// ErrBlockedAddress is wrapped into every error ValidateIP returns, so a
// caller can tell an SSRF block apart from an ordinary DNS or connection
// failure with errors.Is. avm uses this to classify a blocked mirror or
// redirect target as a configuration problem (tool.ErrKindInvalidInput)
// rather than a transient network outage (tool.ErrKindNetwork).
var ErrBlockedAddress = errors.New("blocked address")

// ValidateIP checks whether ip is a safe target for a request avm is about
// to make — to a release server's redirect, or to a user-configured
// mirror's rewritten URL. Both are effectively untrusted destinations: a
// compromised or misconfigured upstream could point avm at the machine's
// own loopback interface or an internal network service. Returns an error
// wrapping ErrBlockedAddress if the IP is:
//   - Private (RFC 1918: 10.0.0.0/8, 172.16.0.0/12, 192.168.0.0/16)
//   - Loopback (127.0.0.0/8, ::1)
//   - Link-local unicast (169.254.0.0/16, fe80::/10) — includes the cloud
//     instance metadata endpoint at 169.254.169.254
//   - Link-local or general multicast
//   - Unspecified (0.0.0.0, ::)
//
// host is included in the error for operator-facing diagnostics; it is the
// hostname avm resolved ip from, which may differ from ip.String() itself.
func ValidateIP(ip net.IP, host string) error {
	if ip.IsPrivate() {
		return fmt.Errorf("%w: private IP %s (%s)", ErrBlockedAddress, host, ip)
	}
	if ip.IsLoopback() {
		return fmt.Errorf("%w: loopback IP %s (%s)", ErrBlockedAddress, host, ip)
	}
	if ip.IsLinkLocalUnicast() {
		return fmt.Errorf("%w: link-local IP %s (%s)", ErrBlockedAddress, host, ip)
	}
	if ip.IsLinkLocalMulticast() {
		return fmt.Errorf("%w: link-local multicast %s (%s)", ErrBlockedAddress, host, ip)
	}
	if ip.IsMulticast() {
		return fmt.Errorf("%w: multicast IP %s (%s)", ErrBlockedAddress, host, ip)
	}
	if ip.IsUnspecified() {
		return fmt.Errorf("%w: unspecified IP %s (%s)", ErrBlockedAddress, host, ip)
	}
	return nil
}
