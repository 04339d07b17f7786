package godhcpd

import (
	"context"
	"fmt"
	"net"
	"strings"

	"go.uber.org/zap"
	"go.universe.tf/netboot/dhcp4"

	"github.com/hollis-cloud/pyxis/datastore"
	"github.com/hollis-cloud/pyxis/dhcpd"
	"github.com/hollis-cloud/pyxis/metrics"
	"github.com/hollis-cloud/pyxis/types"
)

// GoDHCPd is a proxy DHCP daemon for PXE firmware. It hands out no
// addresses; it only points clients at a boot file alongside the offer
// of the real DHCP server.
type GoDHCPd struct {
	responders []dhcpd.Responder
	iface      string
	port       int
	serverAddr net.IP
	ds         datastore.Datastore
	logger     *zap.Logger
}

// New is
func New(responders []dhcpd.Responder, iface string, port int, serverAddr types.IP, ds datastore.Datastore, logger *zap.Logger) (dhcpd.DHCPd, error) {
	addr := net.IP(serverAddr).To4()
	if addr == nil {
		return nil, fmt.Errorf("server address %s is not IPv4", serverAddr)
	}
	return &GoDHCPd{
		responders: responders,
		iface:      iface,
		port:       port,
		serverAddr: addr,
		ds:         ds,
		logger:     logger,
	}, nil
}

// Serve serve the proxy DHCP daemon.
func (n *GoDHCPd) Serve(ctx context.Context) error {
	conn, err := dhcp4.NewConn(fmt.Sprintf("0.0.0.0:%d", n.port))
	if err != nil {
		return fmt.Errorf("failed to create new connection: %w", err)
	}
	defer conn.Close()

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	for {
		req, riface, err := conn.RecvDHCP()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			n.logger.Error("failed to receive dhcp request", zap.Error(err))
			continue
		}
		if riface.Name != n.iface {
			continue
		}

		pxe, err := parsePXERequest(req)
		if err != nil {
			n.logger.Debug("ignoring dhcp packet", zap.String("mac", req.HardwareAddr.String()), zap.Error(err))
			continue
		}
		metrics.DHCPRequests.Inc()
		n.logger.Info("received PXE request",
			zap.String("mac", req.HardwareAddr.String()),
			zap.String("arch", pxe.arch.String()),
			zap.String("user_class", pxe.userClass),
		)

		if _, err := n.ds.EnsureMachine(ctx, types.HardwareAddr(req.HardwareAddr), datastore.ViaDHCP); err != nil {
			n.logger.Error("failed to record machine", zap.Error(err))
		}

		responder := dhcpd.Select(n.responders, pxe.arch, pxe.userClass)
		if responder == nil {
			n.logger.Info("no responder for client",
				zap.String("mac", req.HardwareAddr.String()),
				zap.String("arch", pxe.arch.String()),
			)
			continue
		}

		resp, err := n.makeResponse(*req, *responder)
		if err != nil {
			n.logger.Error("failed to make response", zap.Error(err))
			continue
		}
		if err := conn.SendDHCP(resp, riface); err != nil {
			n.logger.Error("failed to send dhcp response", zap.Error(err))
			continue
		}
		metrics.DHCPResponses.Inc()
		n.logger.Info("sent boot response",
			zap.String("mac", req.HardwareAddr.String()),
			zap.String("bootfile", responder.Bootfile),
			zap.String("next_server", resp.ServerAddr.String()),
		)
	}
}

// pxeRequest is the part of a DHCP packet a responder is selected on.
type pxeRequest struct {
	arch      dhcpd.Architecture
	userClass string
}

// parsePXERequest rejects everything that is not a PXE boot request: the
// packet must be a Discover or Request carrying a parameter request list,
// a PXEClient vendor class and the client architecture options.
func parsePXERequest(req *dhcp4.Packet) (*pxeRequest, error) {
	if req.Type != dhcp4.MsgDiscover && req.Type != dhcp4.MsgRequest {
		return nil, fmt.Errorf("message type %d is not a boot request", req.Type)
	}
	if req.Options[55] == nil {
		return nil, fmt.Errorf("no parameter request list")
	}
	vendorClass, err := req.Options.String(60)
	if err != nil {
		return nil, fmt.Errorf("no vendor class: %w", err)
	}
	if !strings.HasPrefix(vendorClass, "PXEClient") {
		return nil, fmt.Errorf("vendor class %q is not PXEClient", vendorClass)
	}
	arch, err := req.Options.Uint16(93)
	if err != nil {
		return nil, fmt.Errorf("no client architecture: %w", err)
	}
	if req.Options[94] == nil {
		return nil, fmt.Errorf("no network interface identifier")
	}

	userClass, err := req.Options.String(77)
	if err != nil {
		userClass = ""
	}

	return &pxeRequest{
		arch:      dhcpd.Architecture(arch),
		userClass: userClass,
	}, nil
}

func (n *GoDHCPd) makeResponse(req dhcp4.Packet, responder dhcpd.Responder) (*dhcp4.Packet, error) {
	serverAddr := n.serverAddr
	if responder.NextServer != nil {
		serverAddr = net.IP(responder.NextServer).To4()
		if serverAddr == nil {
			return nil, fmt.Errorf("next server %s is not IPv4", responder.NextServer)
		}
	}

	resp := &dhcp4.Packet{
		TransactionID:  req.TransactionID,
		Broadcast:      true,
		HardwareAddr:   req.HardwareAddr,
		ServerAddr:     serverAddr,
		RelayAddr:      req.RelayAddr,
		BootServerName: serverAddr.String(),
	}
	options := make(dhcp4.Options)
	options[dhcp4.OptServerIdentifier] = serverAddr
	options[60] = []byte("PXEClient")
	options[43] = pxeVendorOptions()
	options[dhcp4.OptBootFile] = []byte(responder.Bootfile)
	resp.Options = options

	switch req.Type {
	case dhcp4.MsgDiscover:
		resp.Type = dhcp4.MsgOffer
	case dhcp4.MsgRequest:
		resp.Type = dhcp4.MsgAck
	default:
		return nil, fmt.Errorf("no response for message type %d", req.Type)
	}

	return resp, nil
}

// pxeVendorOptions encodes option 43 the way PXE firmware expects it from
// a proxy: a discovery control block followed by the end marker.
func pxeVendorOptions() []byte {
	opts := []byte{6, 8}
	opts = append(opts, make([]byte, 8)...)
	return append(opts, 255)
}

var _ dhcpd.DHCPd = &GoDHCPd{}
