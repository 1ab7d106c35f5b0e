package vault

import (
	"context"
	"io"
	"testing"

	"docvault/pkg/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTakeSnapshot(t *testing.T) {
	v := newTestVault(t)
	ctx := context.Background()
	alice := v.mustUser(t, "alice@example.com")
	bob := v.mustUser(t, "bob@example.com")

	rec, err := v.engine.PutVersion(ctx, alice.ID, "docs/a.txt", []byte("one"))
	require.NoError(t, err)
	_, err = v.engine.PutVersion(ctx, alice.ID, "docs/a.txt", []byte("two"))
	require.NoError(t, err)
	_, err = v.engine.PutVersion(ctx, bob.ID, "docs/b.txt", []byte("three"))
	require.NoError(t, err)

	readers := []string{"bob@example.com"}
	_, err = v.perms.Update(ctx, rec.ID, PermissionUpdate{ReadEmails: &readers})
	require.NoError(t, err)

	snap, err := v.engine.TakeSnapshot(ctx)
	require.NoError(t, err)
	require.Len(t, snap.Entries, 3)

	// 稳定排序：(file_url, owner, version) 升序
	assert.Equal(t, "docs/a.txt", snap.Entries[0].FileURL)
	assert.Equal(t, 0, snap.Entries[0].VersionNumber)
	assert.Equal(t, []uint64{bob.ID}, snap.Entries[0].Readers)
	assert.Equal(t, 1, snap.Entries[1].VersionNumber)
	assert.Equal(t, "docs/b.txt", snap.Entries[2].FileURL)

	// 快照本身进了内容库，且能按哈希取回解码
	reader, err := v.engine.store.Get(ctx, snap.ID())
	require.NoError(t, err)
	raw, err := io.ReadAll(reader)
	reader.Close()
	require.NoError(t, err)

	var restored core.Snapshot
	require.NoError(t, core.DecodeObject(raw, &restored))
	assert.Equal(t, core.TypeSnapshot, restored.TypeVal)
	assert.Len(t, restored.Entries, 3)
	assert.Equal(t, snap.Entries, restored.Entries)
}
