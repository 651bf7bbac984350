package controllers

import (
	"net/http"

	"github.com/ilumina/storefront-backend/api/responses"
	"github.com/ilumina/storefront-backend/api/validators"
	"github.com/ilumina/storefront-backend/internal/tags"
	"github.com/ilumina/storefront-backend/pkg/logger"
)

type tagRequest struct {
	Name string `json:"name" validate:"required,max=120"`
}

// TagList lists one vocabulary, optionally filtered by a name substring.
func TagList(svc tags.Service, kind tags.Kind, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "tag")
			return
		}

		rows, err := svc.List(r.Context(), kind, validators.ParseQueryString(r, "search", 120))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// TagCreate answers 201 for a new tag and 200 when the name already existed.
func TagCreate(svc tags.Service, kind tags.Kind, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "tag")
			return
		}

		var body tagRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		tag, created, err := svc.Create(r.Context(), kind, body.Name)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status := http.StatusOK
		if created {
			status = http.StatusCreated
		}
		responses.WriteSuccessStatus(w, status, tag)
	}
}
