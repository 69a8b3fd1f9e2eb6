package kvstore

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, config BadgerConfig) *BadgerKVStore {
	t.Helper()
	store, err := NewBadgerKVStore(config)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestBadgerKVStore_PutGetDelete(t *testing.T) {
	store := newTestStore(t, BadgerConfig{})

	require.NoError(t, store.Put("abi:sepolia:0x01", []byte("[]")))

	v, err := store.Get("abi:sepolia:0x01")
	require.NoError(t, err)
	assert.Equal(t, []byte("[]"), v)

	require.NoError(t, store.Delete("abi:sepolia:0x01"))
	_, err = store.Get("abi:sepolia:0x01")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestBadgerKVStore_GetMissing(t *testing.T) {
	store := newTestStore(t, BadgerConfig{})
	_, err := store.Get("nope")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestBadgerKVStore_Keys(t *testing.T) {
	store := newTestStore(t, BadgerConfig{})

	for _, k := range []string{"abi:ethereum:0x01", "abi:sepolia:0x01", "abi:sepolia:0x02", "other"} {
		require.NoError(t, store.Put(k, []byte("x")))
	}

	keys, err := store.Keys("abi:sepolia:")
	require.NoError(t, err)
	assert.Equal(t, []string{"abi:sepolia:0x01", "abi:sepolia:0x02"}, keys)

	all, err := store.Keys("")
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestBadgerKVStore_TTL(t *testing.T) {
	store := newTestStore(t, BadgerConfig{TTL: time.Second})

	require.NoError(t, store.Put("short", []byte("lived")))
	_, err := store.Get("short")
	require.NoError(t, err)

	// badger TTLs have one-second resolution
	time.Sleep(2100 * time.Millisecond)
	_, err = store.Get("short")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestBadgerKVStore_Persistent(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cache")

	store, err := NewBadgerKVStore(BadgerConfig{DBPath: dir})
	require.NoError(t, err)
	require.NoError(t, store.Put("k", []byte("v")))
	require.NoError(t, store.Close())

	reopened := newTestStore(t, BadgerConfig{DBPath: dir})
	v, err := reopened.Get("k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), v)
}

func TestBadgerKVStore_Backup(t *testing.T) {
	store := newTestStore(t, BadgerConfig{})
	require.NoError(t, store.Put("k", []byte("v")))

	var buf bytes.Buffer
	require.NoError(t, store.Backup(&buf))
	assert.NotZero(t, buf.Len())
}

func TestObjects(t *testing.T) {
	type entry struct {
		ABI            string
		Implementation string
	}
	store := newTestStore(t, BadgerConfig{})

	in := entry{ABI: `[{"type":"function"}]`, Implementation: "0x02"}
	require.NoError(t, PutObject(store, "abi:sepolia:0x01", in))

	var out entry
	require.NoError(t, GetObject(store, "abi:sepolia:0x01", &out))
	assert.Equal(t, in, out)

	assert.True(t, errors.Is(GetObject(store, "missing", &out), ErrNotFound))

	require.NoError(t, store.Put("garbage", []byte{0xff, 0x00}))
	assert.Error(t, GetObject(store, "garbage", &out))
}
