package dhcpd

import (
	"testing"

	"github.com/stretchr/testify/require"
	yaml "gopkg.in/yaml.v2"
)

func archPtr(a Architecture) *Architecture { return &a }
func strPtr(s string) *string              { return &s }

func testResponders() []Responder {
	return []Responder{
		{Arch: archPtr(ArchX86PC), Bootfile: "undionly.kpxe"},
		{Arch: archPtr(ArchEFIBC), Bootfile: "ipxe.efi"},
		{Arch: archPtr(ArchEFIX8664), Bootfile: "ipxe.efi"},
		{UserClass: strPtr(UserClassIPXE), Bootfile: "http://10.0.0.5/boot.ipxe"},
	}
}

func TestSelect(t *testing.T) {
	responders := testResponders()

	tests := []struct {
		name      string
		arch      Architecture
		userClass string
		want      string
	}{
		{
			name: "bios firmware",
			arch: ArchX86PC,
			want: "undionly.kpxe",
		},
		{
			name: "efi byte code firmware",
			arch: ArchEFIBC,
			want: "ipxe.efi",
		},
		{
			name: "efi x86-64 firmware",
			arch: ArchEFIX8664,
			want: "ipxe.efi",
		},
		{
			name:      "ipxe user class wins over architecture",
			arch:      ArchX86PC,
			userClass: UserClassIPXE,
			want:      "http://10.0.0.5/boot.ipxe",
		},
		{
			name:      "ipxe user class on efi",
			arch:      ArchEFIX8664,
			userClass: UserClassIPXE,
			want:      "http://10.0.0.5/boot.ipxe",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := Select(responders, test.arch, test.userClass)
			require.NotNil(t, got)
			require.Equal(t, test.want, got.Bootfile)
		})
	}
}

func TestSelectNoMatch(t *testing.T) {
	got := Select(testResponders(), Architecture(2), "")
	require.Nil(t, got)

	got = Select(nil, ArchX86PC, "")
	require.Nil(t, got)
}

func TestSelectLastMatchWins(t *testing.T) {
	responders := []Responder{
		{Bootfile: "first"},
		{Bootfile: "second"},
	}
	got := Select(responders, ArchEFIBC, "")
	require.NotNil(t, got)
	require.Equal(t, "second", got.Bootfile)
}

func TestParseArchitecture(t *testing.T) {
	for _, arch := range []Architecture{ArchX86PC, ArchEFIIA32, ArchEFIBC, ArchEFIX8664} {
		parsed, err := ParseArchitecture(arch.String())
		require.NoError(t, err)
		require.Equal(t, arch, parsed)
	}

	_, err := ParseArchitecture("pdp-11")
	require.Error(t, err)
}

func TestResponderYAML(t *testing.T) {
	input := `
- arch: efi-bc
  next_server: 10.0.0.5
  bootfile: ipxe.efi
- user_class: iPXE
  bootfile: http://10.0.0.5/boot.ipxe
`

	var responders []Responder
	err := yaml.Unmarshal([]byte(input), &responders)
	require.NoError(t, err)
	require.Len(t, responders, 2)

	require.NotNil(t, responders[0].Arch)
	require.Equal(t, ArchEFIBC, *responders[0].Arch)
	require.Nil(t, responders[0].UserClass)
	require.Equal(t, "10.0.0.5", responders[0].NextServer.String())
	require.NoError(t, responders[0].Validate())

	require.Nil(t, responders[1].Arch)
	require.NotNil(t, responders[1].UserClass)
	require.Equal(t, UserClassIPXE, *responders[1].UserClass)

	bad := Responder{Arch: archPtr(ArchX86PC)}
	require.Error(t, bad.Validate())
}
