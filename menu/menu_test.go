package menu

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func validMenu() *Menu {
	return &Menu{
		Title:      "Select an operating system",
		Background: "background.png",
		Entries: []Entry{
			{
				Name:        "win10-x64",
				Description: "Windows 10 Setup (64-bit)",
				Arch:        "amd64",
				Kernel:      "wimboot",
				Initrds: []string{
					"winpe/amd64/Boot/BCD",
					"winpe/amd64/Boot/boot.sdi",
					"winpe/install.bat",
					"winpe/winpeshl.ini",
					"winpe/amd64/sources/boot.wim",
				},
			},
			{
				Name:        "ubuntu-2004",
				Description: "Ubuntu 20.04 Live",
				Kernel:      "linux/ubuntu/vmlinuz",
				Initrds:     []string{"linux/ubuntu/initrd"},
				Cmdline:     "boot=casper netboot=url url=${base-url}/isos/ubuntu-20.04.iso",
			},
		},
	}
}

func TestValidate(t *testing.T) {
	require.NoError(t, validMenu().Validate())

	tests := []struct {
		name   string
		mutate func(*Menu)
	}{
		{
			name:   "no entries",
			mutate: func(m *Menu) { m.Entries = nil },
		},
		{
			name:   "duplicate entry name",
			mutate: func(m *Menu) { m.Entries[1].Name = m.Entries[0].Name },
		},
		{
			name:   "empty entry name",
			mutate: func(m *Menu) { m.Entries[0].Name = "" },
		},
		{
			name:   "entry name with spaces",
			mutate: func(m *Menu) { m.Entries[0].Name = "win 10" },
		},
		{
			name:   "entry name with shell metachars",
			mutate: func(m *Menu) { m.Entries[0].Name = "win&&reboot" },
		},
		{
			name:   "missing description",
			mutate: func(m *Menu) { m.Entries[0].Description = "" },
		},
		{
			name:   "missing kernel",
			mutate: func(m *Menu) { m.Entries[0].Kernel = "" },
		},
		{
			name:   "empty initrd path",
			mutate: func(m *Menu) { m.Entries[0].Initrds[2] = "" },
		},
		{
			name:   "default names unknown entry",
			mutate: func(m *Menu) { m.Default = "freebsd" },
		},
		{
			name:   "negative timeout",
			mutate: func(m *Menu) { m.TimeoutMS = -1 },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := validMenu()
			tt.mutate(m)
			require.Error(t, m.Validate())
		})
	}
}

func TestValidateDefault(t *testing.T) {
	m := validMenu()
	m.Default = "ubuntu-2004"
	m.TimeoutMS = 5000
	require.NoError(t, m.Validate())
}

func TestFiles(t *testing.T) {
	m := validMenu()
	require.Equal(t, []string{
		"background.png",
		"wimboot",
		"winpe/amd64/Boot/BCD",
		"winpe/amd64/Boot/boot.sdi",
		"winpe/install.bat",
		"winpe/winpeshl.ini",
		"winpe/amd64/sources/boot.wim",
		"linux/ubuntu/vmlinuz",
		"linux/ubuntu/initrd",
	}, m.Files())
}

func TestFilesDeduplicatesSharedPaths(t *testing.T) {
	m := validMenu()
	m.Entries[1].Kernel = "wimboot"
	files := m.Files()
	count := 0
	for _, f := range files {
		if f == "wimboot" {
			count++
		}
	}
	require.Equal(t, 1, count)
}

func TestFilesSkipsAbsoluteURLs(t *testing.T) {
	m := validMenu()
	m.Entries[1].Kernel = "https://mirror.example.com/vmlinuz"
	require.NotContains(t, m.Files(), "https://mirror.example.com/vmlinuz")
}

func TestFilesTrimsLeadingSlash(t *testing.T) {
	m := validMenu()
	m.Entries[1].Kernel = "/linux/ubuntu/vmlinuz"
	require.Contains(t, m.Files(), "linux/ubuntu/vmlinuz")
}
