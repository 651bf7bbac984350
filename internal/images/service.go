package images

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/ilumina/storefront-backend/pkg/db"
	"github.com/ilumina/storefront-backend/pkg/db/models"
	pkgerrors "github.com/ilumina/storefront-backend/pkg/errors"
	"github.com/ilumina/storefront-backend/pkg/logger"
)

// sniffLen is how much of an upload is read to detect its content type.
const sniffLen = 3072

// fileStore is the filesystem side of the image bank.
type fileStore interface {
	Save(ctx context.Context, originalName string, r io.Reader) (name string, url string, err error)
	Remove(ctx context.Context, name string) error
	NameFromURL(url string) string
}

// UploadInput is one multipart file part.
type UploadInput struct {
	Filename string
	Body     io.Reader
	AltText  *string
}

// Service keeps image rows and stored files in step.
type Service interface {
	Upload(ctx context.Context, input UploadInput) (*models.Image, error)
	List(ctx context.Context) ([]models.Image, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type ServiceParams struct {
	Repo     *Repository
	Store    fileStore
	Logger   *logger.Logger
	MaxBytes int64
}

type service struct {
	repo     *Repository
	store    fileStore
	logg     *logger.Logger
	maxBytes int64
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("image repository required")
	}
	if params.Store == nil {
		return nil, fmt.Errorf("file store required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.MaxBytes <= 0 {
		params.MaxBytes = 5 << 20
	}
	return &service{repo: params.Repo, store: params.Store, logg: params.Logger, maxBytes: params.MaxBytes}, nil
}

// Upload sniffs the payload, stores the file and records it. The stored file
// is removed again when the row cannot be written.
func (s *service) Upload(ctx context.Context, input UploadInput) (*models.Image, error) {
	if input.Body == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no file uploaded")
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(input.Body, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read upload")
	}
	head = head[:n]
	if n == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "uploaded file is empty")
	}
	detected := mimetype.Detect(head)
	if !strings.HasPrefix(detected.String(), "image/") {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "only image files are allowed").
			WithDetails(map[string]any{"detected": detected.String()})
	}

	limited := &io.LimitedReader{R: io.MultiReader(bytes.NewReader(head), input.Body), N: s.maxBytes + 1}
	name, url, err := s.store.Save(ctx, input.Filename, limited)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "a file with this name is already stored")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store upload")
	}
	if limited.N <= 0 {
		s.discard(ctx, name)
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "file exceeds %d bytes", s.maxBytes)
	}

	img := &models.Image{URL: url, AltText: trimmedOrNil(input.AltText)}
	if err := s.repo.Create(ctx, img); err != nil {
		s.discard(ctx, name)
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "image url already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record image")
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"image_id":  img.ID.String(),
		"mime_type": detected.String(),
	}), "image uploaded")
	return img, nil
}

func (s *service) List(ctx context.Context) ([]models.Image, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list images")
	}
	return rows, nil
}

// Delete drops the row first; a missing file on disk is not an error.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	img, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "image not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load image")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if db.IsNotFound(err) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "image not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete image")
	}
	if name := s.store.NameFromURL(img.URL); name != "" {
		s.discard(ctx, name)
	}
	return nil
}

func (s *service) discard(ctx context.Context, name string) {
	if err := s.store.Remove(ctx, name); err != nil {
		s.logg.Error(s.logg.WithField(ctx, "file", name), "remove stored image", err)
	}
}

func trimmedOrNil(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		return nil
	}
	return &t
}
