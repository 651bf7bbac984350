package local

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ilumina/storefront-backend/pkg/config"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(config.MediaConfig{UploadDir: filepath.Join(t.TempDir(), "uploads"), PublicPrefix: "/uploads/"}, nil)
	require.NoError(t, err)
	s.now = func() time.Time { return time.UnixMilli(1700000000123) }
	return s
}

func TestSaveAndRemove(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	name, url, err := s.Save(ctx, "Foto Salada.PNG", strings.NewReader("png-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "1700000000123-Foto_Salada.PNG", name)
	assert.Equal(t, "/uploads/1700000000123-Foto_Salada.PNG", url)

	b, err := os.ReadFile(filepath.Join(s.Dir(), name))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(b))

	require.NoError(t, s.Remove(ctx, name))
	_, err = os.Stat(filepath.Join(s.Dir(), name))
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, s.Remove(ctx, name), "missing file is ignored")
	assert.ErrorIs(t, s.Remove(ctx, ".."), ErrInvalidName)
}

func TestSaveRefusesOverwrite(t *testing.T) {
	s := newTestStore(t)
	_, _, err := s.Save(context.Background(), "a.png", strings.NewReader("1"))
	require.NoError(t, err)
	_, _, err = s.Save(context.Background(), "a.png", strings.NewReader("2"))
	assert.ErrorIs(t, err, fs.ErrExist)
}

func TestNameFromURL(t *testing.T) {
	s := newTestStore(t)
	assert.Equal(t, "1-a.png", s.NameFromURL("/uploads/1-a.png"))
	assert.Empty(t, s.NameFromURL("/other/1-a.png"))
	assert.Empty(t, s.NameFromURL("/uploads/nested/a.png"))
	assert.Empty(t, s.NameFromURL("/uploads/"))
}

func TestSanitizeName(t *testing.T) {
	cases := map[string]string{
		"photo.jpg":             "photo.jpg",
		"../../etc/passwd":      "passwd",
		`C:\fakepath\img 1.png`: "img_1.png",
		"açaí bowl.webp":        "a_a_bowl.webp",
		"...":                   "upload",
		"":                      "upload",
	}
	for in, want := range cases {
		assert.Equal(t, want, SanitizeName(in), in)
	}
}

func TestPing(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Ping(context.Background()))
	require.NoError(t, os.RemoveAll(s.Dir()))
	assert.Error(t, s.Ping(context.Background()))
}
