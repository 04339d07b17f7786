package netif

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestInterfaceAddress(t *testing.T) {
	ip, inet, err := InterfaceAddress("lo")
	require.NoError(t, err)
	require.NotNil(t, ip.To4())
	require.NotNil(t, inet)
	require.Equal(t, "127.0.0.1", ip.String())
}

func TestInterfaceAddressMissing(t *testing.T) {
	_, _, err := InterfaceAddress("missing99")
	require.Error(t, err)
}

func TestEnsureUpLoopback(t *testing.T) {
	require.NoError(t, EnsureUp("lo", time.Second, zap.NewNop()))
}

func TestEnsureUpMissing(t *testing.T) {
	require.Error(t, EnsureUp("missing99", time.Second, zap.NewNop()))
}
