package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hollis-cloud/pyxis/datastore"
	"github.com/hollis-cloud/pyxis/types"
)

func testDatastore(t *testing.T) datastore.Datastore {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	ds, err := New(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(func() { ds.Close() })
	return ds
}

func testMAC(t *testing.T, s string) types.HardwareAddr {
	t.Helper()

	mac, err := types.ParseMAC(s)
	require.NoError(t, err)
	return *mac
}

func TestEnsureMachine(t *testing.T) {
	ctx := context.Background()
	ds := testDatastore(t)
	mac := testMAC(t, "52:54:00:aa:bb:cc")

	first, err := ds.EnsureMachine(ctx, mac, datastore.ViaDHCP)
	require.NoError(t, err)
	require.NotZero(t, first.ID)
	require.Equal(t, datastore.ViaDHCP, first.Via)
	require.Equal(t, "52:54:00:aa:bb:cc", first.MAC.String())

	second, err := ds.EnsureMachine(ctx, mac, datastore.ViaHTTP)
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
	require.Equal(t, first.UUID, second.UUID)
	require.Equal(t, datastore.ViaDHCP, second.Via)
	require.WithinDuration(t, first.FirstSeen, second.FirstSeen, time.Second)
	require.False(t, second.LastSeen.Before(second.FirstSeen))
}

func TestGetMachineNotFound(t *testing.T) {
	ds := testDatastore(t)

	_, err := ds.GetMachine(context.Background(), testMAC(t, "52:54:00:00:00:01"))
	require.Error(t, err)
	require.True(t, errors.Is(err, sql.ErrNoRows))
}

func TestListMachines(t *testing.T) {
	ctx := context.Background()
	ds := testDatastore(t)

	_, err := ds.EnsureMachine(ctx, testMAC(t, "52:54:00:00:00:01"), datastore.ViaDHCP)
	require.NoError(t, err)
	_, err = ds.EnsureMachine(ctx, testMAC(t, "52:54:00:00:00:02"), datastore.ViaHTTP)
	require.NoError(t, err)

	machines, err := ds.ListMachines(ctx)
	require.NoError(t, err)
	require.Len(t, machines, 2)
	require.Equal(t, "52:54:00:00:00:01", machines[0].MAC.String())
	require.Equal(t, "52:54:00:00:00:02", machines[1].MAC.String())
}

func TestBootEvents(t *testing.T) {
	ctx := context.Background()
	ds := testDatastore(t)
	mac := testMAC(t, "52:54:00:aa:bb:cc")

	_, err := ds.RecordBootEvent(ctx, mac, "", datastore.EventScript)
	require.NoError(t, err)
	_, err = ds.RecordBootEvent(ctx, mac, "win10-x64", datastore.EventBoot)
	require.NoError(t, err)
	third, err := ds.RecordBootEvent(ctx, mac, "ubuntu-2004", datastore.EventBoot)
	require.NoError(t, err)
	require.NotZero(t, third.ID)

	events, err := ds.RecentBootEvents(ctx, 2)
	require.NoError(t, err)
	require.Len(t, events, 2)
	require.Equal(t, "ubuntu-2004", events[0].Target)
	require.Equal(t, "win10-x64", events[1].Target)
	require.Equal(t, datastore.EventBoot, events[0].Kind)
	require.Equal(t, "52:54:00:aa:bb:cc", events[0].MAC.String())
}
