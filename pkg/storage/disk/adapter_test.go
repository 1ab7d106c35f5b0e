package disk

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"docvault/pkg/core"
	"docvault/pkg/storage"
	"docvault/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiskAdapter_PutGetHas(t *testing.T) {
	// 1. 创建临时测试目录
	tmpDir := t.TempDir()
	store, err := NewAdapter(tmpDir)
	require.NoError(t, err)

	ctx := context.Background()
	blob := core.NewBlob([]byte("hello world"))

	// 2. 测试 Put
	require.NoError(t, store.Put(ctx, blob))

	// 验证文件真的落在 Sharding 目录里
	h := blob.ID().String()
	expectedPath := filepath.Join(tmpDir, h[:2], h[2:])
	_, err = os.Stat(expectedPath)
	assert.NoError(t, err, "对象应该存在于 Sharding 目录中")

	// 3. 测试 Put 的幂等性 (重复写同一个 Hash 是空操作)
	require.NoError(t, store.Put(ctx, blob))

	// 4. 测试 Has
	exists, err := store.Has(ctx, blob.ID())
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = store.Has(ctx, types.Hash("ffffffff"))
	require.NoError(t, err)
	assert.False(t, exists)

	// 5. 测试 Get (Round-Trip)
	reader, err := store.Get(ctx, blob.ID())
	require.NoError(t, err)
	defer reader.Close()

	content, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello world"), content)

	// 6. Get 不存在的对象
	_, err = store.Get(ctx, types.Hash("ffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff"))
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestDiskAdapter_NoTempLeftovers(t *testing.T) {
	// 写入成功之后，shard 目录里不应残留任何临时文件
	tmpDir := t.TempDir()
	store, err := NewAdapter(tmpDir)
	require.NoError(t, err)

	blob := core.NewBlob([]byte("cleanup check"))
	require.NoError(t, store.Put(context.Background(), blob))

	shard := filepath.Join(tmpDir, blob.ID().String()[:2])
	entries, err := os.ReadDir(shard)
	require.NoError(t, err)
	assert.Equal(t, 1, len(entries), "shard 目录里应该只有对象本体")
}

func TestDiskAdapter_ExpandHash(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewAdapter(tmpDir)
	require.NoError(t, err)
	ctx := context.Background()

	// 准备数据: 构造前缀相似的对象
	put := func(hash, data string) {
		obj := mockObject{id: types.Hash(hash), data: []byte(data)}
		require.NoError(t, store.Put(ctx, obj))
	}
	hashA := "1111aaaa00000000000000000000000000000000000000000000000000000000"
	hashB := "1111bbbb00000000000000000000000000000000000000000000000000000000"
	hashC := "2222cccc00000000000000000000000000000000000000000000000000000000"
	put(hashA, "A")
	put(hashB, "B")
	put(hashC, "C")

	tests := []struct {
		name      string
		input     string
		wantHash  types.Hash
		wantErr   bool
		errString string
	}{
		{"Exact match", hashC, types.Hash(hashC), false, ""},
		{"Unique prefix (4 chars)", "2222", types.Hash(hashC), false, ""},
		{"Unique prefix (long)", "2222cccc", types.Hash(hashC), false, ""},
		{"Ambiguous prefix", "1111", "", true, "ambiguous"}, // 1111 同时匹配 A 和 B
		{"Not found", "ffff", "", true, "not found"},
		{"Too short", "123", "", true, "too short"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.ExpandHash(ctx, types.HashPrefix(tt.input))
			if tt.wantErr {
				assert.Error(t, err)
				if tt.errString != "" {
					assert.Contains(t, err.Error(), tt.errString)
				}
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.wantHash, got)
			}
		})
	}
}

// mockObject 允许伪造任意 Hash，用于构造前缀冲突
type mockObject struct {
	id   types.Hash
	data []byte
}

func (m mockObject) ID() types.Hash        { return m.id }
func (m mockObject) Bytes() []byte         { return m.data }
func (m mockObject) Type() core.ObjectType { return core.TypeBlob }
