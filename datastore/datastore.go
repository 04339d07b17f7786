package datastore

import (
	"context"

	"github.com/hollis-cloud/pyxis/httpd"
	"github.com/hollis-cloud/pyxis/types"
)

// Via values recorded when a machine is first seen.
const (
	ViaDHCP = "dhcp"
	ViaHTTP = "http"
)

// Boot event kinds.
const (
	EventScript = "script"
	EventBoot   = "boot"
)

// Datastore is an interface for pyxis to record machines and boot events.
type Datastore interface {
	EnsureMachine(ctx context.Context, mac types.HardwareAddr, via string) (*httpd.Machine, error)
	GetMachine(ctx context.Context, mac types.HardwareAddr) (*httpd.Machine, error)
	ListMachines(ctx context.Context) ([]httpd.Machine, error)

	RecordBootEvent(ctx context.Context, mac types.HardwareAddr, target, kind string) (*httpd.BootEvent, error)
	RecentBootEvents(ctx context.Context, limit int) ([]httpd.BootEvent, error)

	Close() error
}
