package images

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ilumina/storefront-backend/pkg/config"
	"github.com/ilumina/storefront-backend/pkg/db/dbtest"
	"github.com/ilumina/storefront-backend/pkg/db/models"
	pkgerrors "github.com/ilumina/storefront-backend/pkg/errors"
	"github.com/ilumina/storefront-backend/pkg/logger"
	"github.com/ilumina/storefront-backend/pkg/storage/local"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

// fixedStore always hands out the same name, so a second upload collides on url.
type fixedStore struct {
	saved   []string
	removed []string
}

func (f *fixedStore) Save(_ context.Context, name string, r io.Reader) (string, string, error) {
	if _, err := io.Copy(io.Discard, r); err != nil {
		return "", "", err
	}
	f.saved = append(f.saved, name)
	return name, "/uploads/" + name, nil
}

func (f *fixedStore) Remove(_ context.Context, name string) error {
	f.removed = append(f.removed, name)
	return nil
}

func (f *fixedStore) NameFromURL(url string) string {
	return strings.TrimPrefix(url, "/uploads/")
}

// collidingStore reports every save as a name that is already on disk.
type collidingStore struct{ fixedStore }

func (c *collidingStore) Save(_ context.Context, name string, _ io.Reader) (string, string, error) {
	return "", "", fmt.Errorf("create %q: %w", name, fs.ErrExist)
}

func newService(t *testing.T, store fileStore, maxBytes int64) (Service, *gorm.DB) {
	t.Helper()
	conn := dbtest.Open(t).DB()
	svc, err := NewService(ServiceParams{
		Repo:     NewRepository(conn),
		Store:    store,
		Logger:   logger.Nop(),
		MaxBytes: maxBytes,
	})
	require.NoError(t, err)
	return svc, conn
}

func TestUploadListDeleteOnDisk(t *testing.T) {
	dir := t.TempDir()
	store, err := local.New(config.MediaConfig{UploadDir: dir, PublicPrefix: "/uploads"}, logger.Nop())
	require.NoError(t, err)
	svc, _ := newService(t, store, 1<<20)
	ctx := context.Background()

	alt := " Salada verde "
	img, err := svc.Upload(ctx, UploadInput{Filename: "salada verde.png", Body: bytes.NewReader(pngHeader), AltText: &alt})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(img.URL, "/uploads/"))
	assert.True(t, strings.HasSuffix(img.URL, "-salada_verde.png"))
	require.NotNil(t, img.AltText)
	assert.Equal(t, "Salada verde", *img.AltText)

	name := store.NameFromURL(img.URL)
	stored, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	assert.Equal(t, pngHeader, stored)

	rows, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	require.NoError(t, svc.Delete(ctx, img.ID))
	_, err = os.Stat(filepath.Join(dir, name))
	assert.True(t, os.IsNotExist(err))

	assert.True(t, pkgerrors.IsCode(svc.Delete(ctx, img.ID), pkgerrors.CodeNotFound))
}

func TestUploadRejectsNonImages(t *testing.T) {
	store := &fixedStore{}
	svc, _ := newService(t, store, 1<<20)
	ctx := context.Background()

	_, err := svc.Upload(ctx, UploadInput{Filename: "notes.txt", Body: strings.NewReader("just some text")})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = svc.Upload(ctx, UploadInput{Filename: "empty.png", Body: bytes.NewReader(nil)})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = svc.Upload(ctx, UploadInput{Filename: "none.png"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	assert.Empty(t, store.saved)
}

func TestUploadTooLargeRemovesFile(t *testing.T) {
	store := &fixedStore{}
	svc, conn := newService(t, store, 64)

	body := append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{0}, 128)...)
	_, err := svc.Upload(context.Background(), UploadInput{Filename: "big.png", Body: bytes.NewReader(body)})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	assert.Equal(t, []string{"big.png"}, store.removed)

	var count int64
	require.NoError(t, conn.Model(&models.Image{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestDuplicateURLConflictsAndRemovesFile(t *testing.T) {
	store := &fixedStore{}
	svc, conn := newService(t, store, 1<<20)
	ctx := context.Background()

	_, err := svc.Upload(ctx, UploadInput{Filename: "banner.png", Body: bytes.NewReader(pngHeader)})
	require.NoError(t, err)

	_, err = svc.Upload(ctx, UploadInput{Filename: "banner.png", Body: bytes.NewReader(pngHeader)})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))
	assert.Equal(t, []string{"banner.png"}, store.removed)

	var count int64
	require.NoError(t, conn.Model(&models.Image{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	assert.True(t, pkgerrors.IsCode(svc.Delete(ctx, uuid.New()), pkgerrors.CodeNotFound))
}

func TestUploadNameCollisionConflicts(t *testing.T) {
	store := &collidingStore{}
	svc, conn := newService(t, store, 1<<20)

	_, err := svc.Upload(context.Background(), UploadInput{Filename: "banner.png", Body: bytes.NewReader(pngHeader)})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))
	assert.Empty(t, store.removed)

	var count int64
	require.NoError(t, conn.Model(&models.Image{}).Count(&count).Error)
	assert.Zero(t, count)
}
