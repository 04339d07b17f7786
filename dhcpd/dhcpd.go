package dhcpd

import "context"

// DHCPd is the interface for pyxis to provide the proxy DHCP daemon.
type DHCPd interface {
	Serve(ctx context.Context) error
}
