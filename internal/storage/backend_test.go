package storage_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gmllt/kanboard/internal/storage"
)

func backends(t *testing.T) map[string]storage.Backend {
	t.Helper()

	file, err := storage.NewFileBackend(t.TempDir())
	require.NoError(t, err)

	sqlite, err := storage.NewSQLiteBackend(filepath.Join(t.TempDir(), "board.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlite.Close() })

	return map[string]storage.Backend{
		storage.BackendMemory: storage.NewMemoryBackend(),
		storage.BackendFile:   file,
		storage.BackendSQLite: sqlite,
	}
}

func TestBackendContract(t *testing.T) {
	t.Parallel()

	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			ctx := context.Background()
			assert.Equal(t, name, backend.Name())

			_, err := backend.Get(ctx, "absent")
			require.ErrorIs(t, err, storage.ErrNotFound)

			require.NoError(t, backend.Put(ctx, "k", []byte(`first`)))
			got, err := backend.Get(ctx, "k")
			require.NoError(t, err)
			assert.Equal(t, "first", string(got))

			require.NoError(t, backend.Put(ctx, "k", []byte(`second`)))
			got, err = backend.Get(ctx, "k")
			require.NoError(t, err)
			assert.Equal(t, "second", string(got))
		})
	}
}

func TestMemoryBackendCopiesData(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m := storage.NewMemoryBackend()
	data := []byte("abc")
	require.NoError(t, m.Put(ctx, "k", data))
	data[0] = 'x'

	got, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
}

func TestFileBackendLayout(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "nested", "data")
	f, err := storage.NewFileBackend(dir)
	require.NoError(t, err)

	require.NoError(t, f.Put(context.Background(), storage.DefaultKey, []byte(`[]`)))
	data, err := os.ReadFile(filepath.Join(dir, storage.DefaultKey+".json"))
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not be left behind")
}

func TestSQLiteBackendInMemory(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	b, err := storage.NewSQLiteBackend(":memory:")
	require.NoError(t, err)
	defer b.Close()

	require.NoError(t, b.Put(ctx, "k", []byte("v")))
	got, err := b.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", string(got))
}

func TestSQLiteBackendCreatesParentDirs(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "data", "board.db")
	b, err := storage.NewSQLiteBackend(path)
	require.NoError(t, err)
	defer b.Close()

	require.NoError(t, b.Put(ctx, storage.DefaultKey, []byte("[]")))
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestKeyHelpers(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "kanban-board-data", storage.RedisKey("", storage.DefaultKey))
	assert.Equal(t, "kanboard:kanban-board-data", storage.RedisKey("kanboard", storage.DefaultKey))
	assert.Equal(t, "kanban-board-data.json", storage.S3ObjectKey(storage.DefaultKey))
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     storage.Config
		wantErr string
	}{
		{name: "memory", cfg: storage.Config{Backend: storage.BackendMemory}},
		{name: "file", cfg: storage.Config{Backend: storage.BackendFile}},
		{name: "sqlite", cfg: storage.Config{Backend: storage.BackendSQLite}},
		{name: "redis without addr", cfg: storage.Config{Backend: storage.BackendRedis}, wantErr: "redis addr"},
		{name: "redis", cfg: storage.Config{Backend: storage.BackendRedis, Redis: storage.RedisConfig{Addr: "localhost:6379"}}},
		{name: "s3 without endpoint", cfg: storage.Config{Backend: storage.BackendS3}, wantErr: "endpoint"},
		{name: "s3 without bucket", cfg: storage.Config{Backend: storage.BackendS3, S3: storage.S3Config{Endpoint: "http://minio:9000"}}, wantErr: "bucket"},
		{name: "unknown", cfg: storage.Config{Backend: "etcd"}, wantErr: "unknown storage backend"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestOpen(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	b, err := storage.Open(ctx, storage.Config{Backend: storage.BackendFile, Dir: t.TempDir()})
	require.NoError(t, err)
	assert.Equal(t, storage.BackendFile, b.Name())

	b, err = storage.Open(ctx, storage.Config{Backend: storage.BackendSQLite, SQLite: storage.SQLiteConfig{Path: ":memory:"}})
	require.NoError(t, err)
	assert.Equal(t, storage.BackendSQLite, b.Name())
	require.NoError(t, b.Close())

	_, err = storage.Open(ctx, storage.Config{Backend: "etcd"})
	require.Error(t, err)
}
