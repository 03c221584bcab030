package images

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	pngHeader  = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	jpegHeader = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}
)

func TestPrepare_AcceptsPNGAndJPEG(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		data     []byte
		wantType string
		wantExt  string
	}{
		{"png", "coat.PNG", pngHeader, "image/png", ".png"},
		{"jpg", "book.jpg", jpegHeader, "image/jpeg", ".jpg"},
		{"jpeg", "calc.jpeg", jpegHeader, "image/jpeg", ".jpg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := Prepare(tt.filename, bytes.NewReader(tt.data))
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, u.ContentType)
			assert.True(t, strings.HasSuffix(u.Key, tt.wantExt))
			assert.Equal(t, tt.data, u.Data)
		})
	}
}

func TestPrepare_RejectsOtherTypes(t *testing.T) {
	_, err := Prepare("notes.gif", bytes.NewReader([]byte("GIF89a")))
	assert.ErrorIs(t, err, ErrUnsupportedType)

	// right extension, wrong content
	_, err = Prepare("fake.png", strings.NewReader("just some text"))
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestPrepare_TooLarge(t *testing.T) {
	data := make([]byte, MaxImageSize+1)
	copy(data, pngHeader)

	_, err := Prepare("huge.png", bytes.NewReader(data))
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestDiskStore_Save(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	store, err := NewDiskStore(dir, "/uploads")
	require.NoError(t, err)

	loc, err := store.Save(context.Background(), "abc.png", "image/png", pngHeader)
	require.NoError(t, err)
	assert.Equal(t, "/uploads/abc.png", loc)

	written, err := os.ReadFile(filepath.Join(dir, "abc.png"))
	require.NoError(t, err)
	assert.Equal(t, pngHeader, written)
}

func TestSaveAll_PreservesOrder(t *testing.T) {
	store, err := NewDiskStore(t.TempDir(), "/uploads")
	require.NoError(t, err)

	first, err := Prepare("a.png", bytes.NewReader(pngHeader))
	require.NoError(t, err)
	second, err := Prepare("b.jpg", bytes.NewReader(jpegHeader))
	require.NoError(t, err)

	locs, err := SaveAll(context.Background(), store, []*Upload{first, second})
	require.NoError(t, err)
	assert.Equal(t, []string{"/uploads/" + first.Key, "/uploads/" + second.Key}, locs)
}

func TestDiskStore_Delete(t *testing.T) {
	dir := t.TempDir()
	store, err := NewDiskStore(dir, "/uploads")
	require.NoError(t, err)

	_, err = store.Save(context.Background(), "abc.png", "image/png", pngHeader)
	require.NoError(t, err)

	require.NoError(t, store.Delete(context.Background(), "abc.png"))
	_, err = os.Stat(filepath.Join(dir, "abc.png"))
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, store.Delete(context.Background(), "abc.png"), "missing files are not an error")
}

// failAfter saves n images and then refuses.
type failAfter struct {
	*DiskStore
	n int
}

func (f *failAfter) Save(ctx context.Context, key, contentType string, data []byte) (string, error) {
	if f.n == 0 {
		return "", errors.New("bucket unavailable")
	}
	f.n--
	return f.DiskStore.Save(ctx, key, contentType, data)
}

func TestSaveAll_RemovesEarlierImagesOnFailure(t *testing.T) {
	dir := t.TempDir()
	disk, err := NewDiskStore(dir, "/uploads")
	require.NoError(t, err)

	first, err := Prepare("a.png", bytes.NewReader(pngHeader))
	require.NoError(t, err)
	second, err := Prepare("b.png", bytes.NewReader(pngHeader))
	require.NoError(t, err)

	_, err = SaveAll(context.Background(), &failAfter{DiskStore: disk, n: 1}, []*Upload{first, second})
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
