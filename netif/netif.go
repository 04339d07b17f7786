package netif

import (
	"fmt"
	"net"
	"time"

	"github.com/safchain/ethtool"
	"github.com/vishvananda/netlink"
	"go.uber.org/zap"
)

// InterfaceAddress returns the first IPv4 address of the named interface
// and its network.
func InterfaceAddress(name string) (net.IP, *net.IPNet, error) {
	iface, err := net.InterfaceByName(name)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to find interface %s: %w", name, err)
	}
	addrs, err := iface.Addrs()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get interface addresses %s: %w", name, err)
	}
	for _, addr := range addrs {
		ip, inet, err := net.ParseCIDR(addr.String())
		if err != nil {
			continue
		}
		if ip.To4() != nil {
			return ip, inet, nil
		}
	}

	return nil, nil, fmt.Errorf("failed to find interface address %s", name)
}

// EnsureUp brings the named link up when needed and waits for carrier.
func EnsureUp(name string, timeout time.Duration, logger *zap.Logger) error {
	link, err := netlink.LinkByName(name)
	if err != nil {
		return fmt.Errorf("failed to find link %s: %w", name, err)
	}
	if link.Attrs().Flags&net.FlagUp == 0 {
		logger.Info("bringing link up", zap.String("iface", name))
		if err := netlink.LinkSetUp(link); err != nil {
			return fmt.Errorf("failed to bring up link %s: %w", name, err)
		}
	}

	if et, err := ethtool.NewEthtool(); err == nil {
		if driver, err := et.DriverName(name); err == nil {
			logger.Info("boot interface", zap.String("iface", name), zap.String("driver", driver))
		}
		et.Close()
	}

	deadline := time.Now().Add(timeout)
	for {
		link, err := netlink.LinkByName(name)
		if err != nil {
			return fmt.Errorf("failed to find link %s: %w", name, err)
		}
		state := link.Attrs().OperState
		if state == netlink.OperUp || state == netlink.OperUnknown {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("link %s has no carrier", name)
		}
		time.Sleep(time.Second)
	}
}
