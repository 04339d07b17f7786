package dhcpd

import (
	"fmt"

	"github.com/hollis-cloud/pyxis/types"
)

// UserClassIPXE is the user class (option 77) reported by iPXE firmware.
const UserClassIPXE = "iPXE"

// Architecture is the client system architecture a PXE firmware reports
// in DHCP option 93 (RFC 4578).
type Architecture uint16

// Architectures pyxis can steer.
const (
	ArchX86PC    Architecture = 0
	ArchEFIIA32  Architecture = 6
	ArchEFIBC    Architecture = 7
	ArchEFIX8664 Architecture = 9
)

var archNames = map[Architecture]string{
	ArchX86PC:    "x86-pc",
	ArchEFIIA32:  "efi-ia32",
	ArchEFIBC:    "efi-bc",
	ArchEFIX8664: "efi-x86-64",
}

func (a Architecture) String() string {
	if name, ok := archNames[a]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", uint16(a))
}

// ParseArchitecture is
func ParseArchitecture(s string) (Architecture, error) {
	for arch, name := range archNames {
		if name == s {
			return arch, nil
		}
	}
	return 0, fmt.Errorf("failed to parse architecture: input=\"%s\" (valid: x86-pc, efi-ia32, efi-bc, efi-x86-64)", s)
}

// MarshalYAML is
func (a Architecture) MarshalYAML() (interface{}, error) {
	return a.String(), nil
}

// UnmarshalYAML is
func (a *Architecture) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var buff string
	if err := unmarshal(&buff); err != nil {
		return err
	}
	arch, err := ParseArchitecture(buff)
	if err != nil {
		return err
	}
	*a = arch
	return nil
}

// Responder steers one class of PXE clients to a boot file. A nil Arch or
// UserClass matches any value. NextServer falls back to the daemon address
// when unset.
type Responder struct {
	Arch       *Architecture `yaml:"arch"`
	UserClass  *string       `yaml:"user_class"`
	NextServer types.IP      `yaml:"next_server"`
	Bootfile   string        `yaml:"bootfile"`
}

// Validate is
func (r *Responder) Validate() error {
	if r.Bootfile == "" {
		return fmt.Errorf("responder has no bootfile")
	}
	return nil
}

// Select returns the responder for the given client, or nil when no
// responder matches. Responders are evaluated in order and the last
// match wins, so catch-all entries go first.
func Select(responders []Responder, arch Architecture, userClass string) *Responder {
	var hit *Responder
	for i := range responders {
		r := &responders[i]
		if r.Arch != nil && *r.Arch != arch {
			continue
		}
		if r.UserClass != nil && *r.UserClass != userClass {
			continue
		}
		hit = r
	}
	return hit
}
