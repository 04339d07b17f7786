package httpd

import (
	"time"

	uuid "github.com/satori/go.uuid"

	"github.com/hollis-cloud/pyxis/types"
)

// Machine is a firmware client that has talked to one of the pyxis daemons.
type Machine struct {
	ID        int                `db:"id" json:"id"`
	UUID      uuid.UUID          `db:"uuid" json:"uuid"`
	MAC       types.HardwareAddr `db:"mac_address" json:"mac_address"`
	Via       string             `db:"via" json:"via"`
	FirstSeen time.Time          `db:"first_seen" json:"first_seen"`
	LastSeen  time.Time          `db:"last_seen" json:"last_seen"`
}

// BootEvent is one recorded step of a machine's boot.
type BootEvent struct {
	ID        int                `db:"id" json:"id"`
	MAC       types.HardwareAddr `db:"mac_address" json:"mac_address"`
	Target    string             `db:"target" json:"target"`
	Kind      string             `db:"kind" json:"kind"`
	CreatedAt time.Time          `db:"created_at" json:"created_at"`
}
