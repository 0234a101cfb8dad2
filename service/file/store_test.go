package file

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/okboard/board-server/cmd/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "uploads"))
	require.NoError(t, err)
	return store
}

func TestSaveAndOpenRoundtrip(t *testing.T) {
	store := newTestStore(t)

	name, err := store.Save([]byte("hello attachment"), "notes.txt")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(name, ".txt"))
	assert.NotEqual(t, "notes.txt", name)

	f, info, err := store.Open(name)
	require.NoError(t, err)
	defer f.Close()

	data, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, "hello attachment", string(data))
	assert.Equal(t, int64(len("hello attachment")), info.Size())
}

func TestSaveRejectsEmptyPayload(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Save(nil, "empty.bin")
	var validationErr *utils.ValidationError
	require.ErrorAs(t, err, &validationErr)
}

func TestSaveIgnoresDirectoryInOriginalName(t *testing.T) {
	store := newTestStore(t)

	name, err := store.Save([]byte("x"), "../../escape.png")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(name, ".png"))
	assert.NotContains(t, name, "..")

	entries, err := os.ReadDir(store.Root())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, name, entries[0].Name())
}

func TestSaveGeneratesUniqueNames(t *testing.T) {
	store := newTestStore(t)

	a, err := store.Save([]byte("one"), "same.txt")
	require.NoError(t, err)
	b, err := store.Save([]byte("two"), "same.txt")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestOpenRejectsTraversal(t *testing.T) {
	store := newTestStore(t)

	_, _, err := store.Open("../../etc/passwd")
	var deniedErr *utils.AccessDeniedError
	require.ErrorAs(t, err, &deniedErr)
}

func TestOpenRejectsAbsolutePath(t *testing.T) {
	store := newTestStore(t)

	_, _, err := store.Open("/etc/passwd")
	var deniedErr *utils.AccessDeniedError
	require.ErrorAs(t, err, &deniedErr)
}

func TestOpenMissingFile(t *testing.T) {
	store := newTestStore(t)

	_, _, err := store.Open("nope.txt")
	var notFoundErr *utils.NotFoundError
	require.ErrorAs(t, err, &notFoundErr)
}

func TestRemove(t *testing.T) {
	store := newTestStore(t)

	name, err := store.Save([]byte("bye"), "bye.txt")
	require.NoError(t, err)

	require.NoError(t, store.Remove(name))
	_, _, err = store.Open(name)
	var notFoundErr *utils.NotFoundError
	require.ErrorAs(t, err, &notFoundErr)

	// Removing again is not an error.
	require.NoError(t, store.Remove(name))
}
