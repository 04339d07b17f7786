package config

import (
	"fmt"
	"net"
	"os"

	yaml "gopkg.in/yaml.v2"

	"github.com/hollis-cloud/pyxis/assets"
	"github.com/hollis-cloud/pyxis/dhcpd"
	"github.com/hollis-cloud/pyxis/menu"
)

// Config is pyxis config struct. Address overrides the advertised
// address derived from the interface.
type Config struct {
	Interface  string            `yaml:"interface"`
	Address    string            `yaml:"address"`
	BaseURL    string            `yaml:"base_url"`
	HTTPRoot   string            `yaml:"http_root"`
	TFTPRoot   string            `yaml:"tftp_root"`
	HTTPPort   int               `yaml:"http_port"`
	TFTPPort   int               `yaml:"tftp_port"`
	DHCPPort   int               `yaml:"dhcp_port"`
	Strict     bool              `yaml:"strict"`
	Menu       menu.Menu         `yaml:"menu"`
	Responders []dhcpd.Responder `yaml:"responders"`
	Sources    []assets.Source   `yaml:"sources"`
}

// LoadConfig is
func LoadConfig(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	d := yaml.NewDecoder(f)

	var c Config
	err = d.Decode(&c)
	if err != nil {
		return nil, err
	}

	return &c, nil
}

// SetDefaults fills everything the file left out. addr is the address
// the daemons listen on; it seeds the base URL and the default
// responders, so call SetDefaults before Validate.
func (c *Config) SetDefaults(addr net.IP) {
	if c.Interface == "" {
		c.Interface = "eth0"
	}
	if c.HTTPRoot == "" {
		c.HTTPRoot = "./http_root"
	}
	if c.TFTPRoot == "" {
		c.TFTPRoot = "./tftp_root"
	}
	if c.HTTPPort == 0 {
		c.HTTPPort = 80
	}
	if c.TFTPPort == 0 {
		c.TFTPPort = 69
	}
	if c.DHCPPort == 0 {
		c.DHCPPort = 67
	}
	if c.BaseURL == "" {
		if c.HTTPPort == 80 {
			c.BaseURL = fmt.Sprintf("http://%s", addr)
		} else {
			c.BaseURL = fmt.Sprintf("http://%s:%d", addr, c.HTTPPort)
		}
	}
	if len(c.Responders) == 0 {
		c.Responders = defaultResponders(c.BaseURL)
	}
}

// defaultResponders steer BIOS firmware to the undionly loader, EFI
// firmware to the EFI loader, and clients already running iPXE straight
// to the boot script.
func defaultResponders(baseURL string) []dhcpd.Responder {
	bios := dhcpd.ArchX86PC
	efi32 := dhcpd.ArchEFIIA32
	efibc := dhcpd.ArchEFIBC
	efi64 := dhcpd.ArchEFIX8664
	ipxe := dhcpd.UserClassIPXE

	return []dhcpd.Responder{
		{Arch: &bios, Bootfile: "undionly.kpxe"},
		{Arch: &efi32, Bootfile: "ipxe.efi"},
		{Arch: &efibc, Bootfile: "ipxe.efi"},
		{Arch: &efi64, Bootfile: "ipxe.efi"},
		{UserClass: &ipxe, Bootfile: fmt.Sprintf("%s/boot.ipxe?mac=${mac:hexhyp}", baseURL)},
	}
}

// Validate is
func (c *Config) Validate() error {
	for _, port := range []int{c.HTTPPort, c.TFTPPort, c.DHCPPort} {
		if port < 1 || port > 65535 {
			return fmt.Errorf("invalid port %d", port)
		}
	}
	if err := c.Menu.Validate(); err != nil {
		return fmt.Errorf("invalid menu: %w", err)
	}
	for i := range c.Responders {
		if err := c.Responders[i].Validate(); err != nil {
			return fmt.Errorf("invalid responder: %w", err)
		}
	}
	for i := range c.Sources {
		if err := c.Sources[i].Validate(); err != nil {
			return fmt.Errorf("invalid source: %w", err)
		}
	}
	return nil
}
