package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ilumina/storefront-backend/api/responses"
	"github.com/ilumina/storefront-backend/internal/images"
	pkgerrors "github.com/ilumina/storefront-backend/pkg/errors"
	"github.com/ilumina/storefront-backend/pkg/logger"
)

// multipartMemory is how much of a form is buffered before spilling to temp files.
const multipartMemory = 1 << 20

// AdminImageUpload stores the multipart "image" part in the image bank.
func AdminImageUpload(svc images.Service, maxBytes int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "image")
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxBytes+multipartMemory)
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "file exceeds the upload limit").
					WithDetails(map[string]any{"max_bytes": maxBytes}))
				return
			}
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart form"))
			return
		}
		defer func() {
			if r.MultipartForm != nil {
				_ = r.MultipartForm.RemoveAll()
			}
		}()

		file, header, err := r.FormFile("image")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "no image file provided"))
			return
		}
		defer file.Close()

		input := images.UploadInput{Filename: header.Filename, Body: file}
		if alt := strings.TrimSpace(r.FormValue("alt_text")); alt != "" {
			input.AltText = &alt
		}

		img, err := svc.Upload(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, img)
	}
}

func AdminImageList(svc images.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "image")
			return
		}

		rows, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

func AdminImageDelete(svc images.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "image")
			return
		}
		id, ok := pathID(w, r, logg, "id")
		if !ok {
			return
		}

		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"message": "image deleted"})
	}
}
