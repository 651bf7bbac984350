package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/ilumina/storefront-backend/api/middleware"
	"github.com/ilumina/storefront-backend/api/responses"
	"github.com/ilumina/storefront-backend/api/validators"
	pkgerrors "github.com/ilumina/storefront-backend/pkg/errors"
	"github.com/ilumina/storefront-backend/pkg/logger"
)

// requireUser writes a 401 and returns false when the request carries no user.
func requireUser(w http.ResponseWriter, r *http.Request, logg *logger.Logger) (uuid.UUID, bool) {
	userID := middleware.UserUUIDFromContext(r.Context())
	if userID == uuid.Nil {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
		return uuid.Nil, false
	}
	return userID, true
}

func pathID(w http.ResponseWriter, r *http.Request, logg *logger.Logger, key string) (uuid.UUID, bool) {
	id, err := validators.URLParamUUID(r, key)
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return uuid.Nil, false
	}
	return id, true
}

func unavailable(w http.ResponseWriter, r *http.Request, logg *logger.Logger, name string) {
	responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, name+" service unavailable"))
}
