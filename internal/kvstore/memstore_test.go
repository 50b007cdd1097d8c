package kvstore

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSetNotVisibleUntilCommit(t *testing.T) {
	store := NewMemStore()
	ns, err := store.Open(NamespaceConfig)
	require.NoError(t, err)

	require.NoError(t, ns.SetU8(KeyBrightness, 200))
	v, err := ns.GetU8(KeyBrightness)
	require.NoError(t, err)
	require.Equal(t, uint8(200), v)

	ns2, err := store.Open(NamespaceConfig)
	require.NoError(t, err)
	_, err = ns2.GetU8(KeyBrightness)
	require.ErrorIs(t, err, ErrKeyNotFound)

	require.NoError(t, ns.Commit())
	v2, err := ns2.GetU8(KeyBrightness)
	require.NoError(t, err)
	require.Equal(t, uint8(200), v2)
}

func TestEraseKeyAndEraseAll(t *testing.T) {
	store := NewMemStore()
	ns, _ := store.Open(NamespaceStats)
	require.NoError(t, ns.SetU32(KeyBootCount, 4))
	require.NoError(t, ns.Commit())

	require.NoError(t, ns.EraseKey(KeyBootCount))
	_, err := ns.GetU32(KeyBootCount)
	require.ErrorIs(t, err, ErrKeyNotFound)

	require.NoError(t, ns.SetU32(KeyTouchEvents, 9))
	require.NoError(t, ns.Commit())
	require.NoError(t, ns.EraseAll())
	_, err = ns.GetU32(KeyTouchEvents)
	require.ErrorIs(t, err, ErrKeyNotFound)
}

func TestNamespacesAreIsolated(t *testing.T) {
	store := NewMemStore()
	cfg, _ := store.Open(NamespaceConfig)
	wifi, _ := store.Open(NamespaceWifi)

	require.NoError(t, cfg.SetU8(KeyPodID, 7))
	require.NoError(t, cfg.Commit())
	require.NoError(t, wifi.SetBlob(KeySSID, []byte("pod-net")))
	require.NoError(t, wifi.Commit())

	_, err := wifi.GetU8(KeyPodID)
	require.ErrorIs(t, err, ErrKeyNotFound)
	ssid, err := wifi.GetBlob(KeySSID)
	require.NoError(t, err)
	require.Equal(t, "pod-net", string(ssid))
}
