package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/cvtopo/pkg/topology"
)

func sampleTopology(reservedRoot string) *topology.Topology {
	t := topology.NewTopology(reservedRoot)
	t.Set("DC1", topology.Container{Parent: t.ReservedRoot()})
	t.Set("DC1_SPINES", topology.Container{Parent: "DC1", Devices: []string{"spine1", "spine2"}, Leaf: true})
	t.Set("DC1_SERVERS", topology.Container{Parent: "DC1", Leaf: true})
	t.Set("DC2", topology.Container{})
	return t
}

func TestNew(t *testing.T) {
	snap := New("DC1", "abc", sampleTopology(""), []string{"w"})
	assert.NotEmpty(t, snap.ID)
	assert.False(t, snap.CreatedAt.IsZero())
	assert.Equal(t, "Tenant", snap.ReservedRoot)
	assert.Equal(t, "DC1", snap.Root)
	assert.Equal(t, []string{"w"}, snap.Warnings)
}

func TestSnapshotJSONKeepsReservedRoot(t *testing.T) {
	snap := New("DC1", "abc", sampleTopology("Fabric"), nil)
	data, err := json.Marshal(snap)
	require.NoError(t, err)

	var got Snapshot
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "Fabric", got.Topology.ReservedRoot())
	assert.Equal(t, []string{"DC1", "DC1_SPINES", "DC1_SERVERS", "DC2"}, got.Topology.Names())

	spines, ok := got.Topology.Get("DC1_SPINES")
	require.True(t, ok)
	assert.Equal(t, []string{"spine1", "spine2"}, spines.Devices)

	servers, _ := got.Topology.Get("DC1_SERVERS")
	assert.True(t, servers.Leaf)
	assert.Empty(t, servers.Devices)
}

func TestFileStoreSaveGet(t *testing.T) {
	ctx := context.Background()
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	defer s.Close()

	snap := New("DC1", "abc", sampleTopology(""), nil)
	require.NoError(t, s.Save(ctx, snap))

	got, err := s.Get(ctx, snap.ID)
	require.NoError(t, err)
	assert.Equal(t, snap.ID, got.ID)
	assert.Equal(t, snap.InventoryHash, got.InventoryHash)
	assert.True(t, snap.CreatedAt.Equal(got.CreatedAt))
	assert.Equal(t, snap.Topology.Names(), got.Topology.Names())

	_, err = os.Stat(filepath.Join(s.Path(), snap.ID+".json"))
	assert.NoError(t, err)
}

func TestFileStoreSaveAssignsID(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	snap := &Snapshot{Root: "DC1"}
	require.NoError(t, s.Save(context.Background(), snap))
	assert.NotEmpty(t, snap.ID)
	assert.False(t, snap.CreatedAt.IsZero())
	assert.Equal(t, "Tenant", snap.ReservedRoot)
}

func TestFileStoreRejectsBadID(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	err = s.Save(context.Background(), &Snapshot{ID: "../escape"})
	assert.Error(t, err)
}

func TestFileStoreGetMissing(t *testing.T) {
	ctx := context.Background()
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	_, err = s.Get(ctx, "6f1c1f44-5d0e-4d2a-9a53-0d5b0c7e1b11")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.Get(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileStoreList(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	require.NoError(t, err)

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	var ids []string
	for i := 0; i < 3; i++ {
		snap := New("DC1", "abc", sampleTopology(""), nil)
		snap.CreatedAt = base.Add(time.Duration(i) * time.Hour)
		require.NoError(t, s.Save(ctx, snap))
		ids = append(ids, snap.ID)
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "junk.json"), []byte("{"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	all, err := s.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, ids[2], all[0].ID)
	assert.Equal(t, ids[0], all[2].ID)

	limited, err := s.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, ids[2], limited[0].ID)
}

func TestFileStoreDelete(t *testing.T) {
	ctx := context.Background()
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	snap := New("DC1", "abc", sampleTopology(""), nil)
	require.NoError(t, s.Save(ctx, snap))
	require.NoError(t, s.Delete(ctx, snap.ID))

	_, err = s.Get(ctx, snap.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, s.Delete(ctx, snap.ID))
}

func TestMongoDocRoundTrip(t *testing.T) {
	snap := New("DC1", "abc", sampleTopology("Fabric"), []string{"w"})
	got := fromDoc(toDoc(snap))

	assert.Equal(t, snap.ID, got.ID)
	assert.Equal(t, "Fabric", got.Topology.ReservedRoot())
	assert.Equal(t, snap.Topology.Names(), got.Topology.Names())
	for name, want := range snap.Topology.All() {
		c, ok := got.Topology.Get(name)
		require.True(t, ok, name)
		assert.Equal(t, want.Parent, c.Parent, name)
		assert.Equal(t, want.Leaf, c.Leaf, name)
		assert.ElementsMatch(t, want.Devices, c.Devices, name)
	}
	assert.Equal(t, []string{"w"}, got.Warnings)
}

func TestDatabaseName(t *testing.T) {
	tests := []struct {
		uri  string
		want string
	}{
		{"mongodb://localhost:27017", DefaultDatabase},
		{"mongodb://localhost:27017/", DefaultDatabase},
		{"mongodb://localhost:27017/fabric?retryWrites=true", "fabric"},
		{"mongodb+srv://user:pw@cluster.example.net/prod", "prod"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, databaseName(tt.uri), tt.uri)
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, t.TempDir())
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, s)
	require.NoError(t, s.Close())

	m, err := Open(ctx, "mongodb://127.0.0.1:1/cvtopo")
	require.NoError(t, err)
	assert.IsType(t, &MongoStore{}, m)
	require.NoError(t, m.Close())
}
