package controllers

import (
	"net/http"

	"github.com/ilumina/storefront-backend/api/middleware"
	"github.com/ilumina/storefront-backend/api/responses"
	"github.com/ilumina/storefront-backend/api/validators"
	"github.com/ilumina/storefront-backend/internal/auth"
	"github.com/ilumina/storefront-backend/pkg/enums"
	"github.com/ilumina/storefront-backend/pkg/logger"
)

// AuthRegister creates a customer account and returns its first token.
func AuthRegister(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "auth")
			return
		}

		var body auth.RegisterRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Register(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// AuthLogin wires the login endpoint into the HTTP layer.
func AuthLogin(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "auth")
			return
		}

		var body auth.LoginRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Login(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// AuthMe echoes the identity carried by the bearer token.
func AuthMe(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r, logg)
		if !ok {
			return
		}
		responses.WriteSuccess(w, auth.Identity{
			UserID:   userID,
			Username: middleware.UsernameFromContext(r.Context()),
			Role:     enums.UserRole(middleware.RoleFromContext(r.Context())),
		})
	}
}
