package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/mnemo/internal/adapters/file"
	"github.com/aretw0/mnemo/pkg/domain"
	"github.com/aretw0/mnemo/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ ports.ModelStore = (*file.Store)(nil)

func TestFileStore_Contract(t *testing.T) {
	ports.RunModelStoreContract(t, file.New(t.TempDir()))
}

func TestFileStore_Layout(t *testing.T) {
	dir := t.TempDir()
	store := file.New(dir)
	ctx := context.Background()

	model := &domain.BaseModel{Corpus: "book.txt", Order: 2, Transitions: domain.TransitionModel{}}
	require.NoError(t, store.Save(ctx, model.Key(), model))

	_, err := os.Stat(filepath.Join(dir, "book.txt@2.json"))
	assert.NoError(t, err)

	// Stray temp files never show up as keys.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tmp-123.json"), []byte("{}"), 0644))
	keys, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"book.txt@2"}, keys)
}

func TestFileStore_RejectsBadKeys(t *testing.T) {
	store := file.New(t.TempDir())
	ctx := context.Background()

	assert.Error(t, store.Save(ctx, "", &domain.BaseModel{}))
	assert.Error(t, store.Save(ctx, "../escape", &domain.BaseModel{}))
	_, err := store.Load(ctx, "a/b")
	assert.Error(t, err)
}

func TestFileStore_ListMissingDir(t *testing.T) {
	store := file.New(filepath.Join(t.TempDir(), "nope"))
	keys, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestFileStore_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad@1.json"), []byte("{not json"), 0644))

	_, err := file.New(dir).Load(context.Background(), "bad@1")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrModelNotFound)
}
