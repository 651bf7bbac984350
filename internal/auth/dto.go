package auth

import (
	"github.com/google/uuid"

	"github.com/ilumina/storefront-backend/internal/users"
	"github.com/ilumina/storefront-backend/pkg/enums"
)

// Credentials is the body of both register and login.
type Credentials struct {
	Username string `json:"username" validate:"required,max=255"`
	Password string `json:"password" validate:"required"`
}

type (
	RegisterRequest = Credentials
	LoginRequest    = Credentials
)

// TokenResponse carries a freshly minted access token and the account it identifies.
type TokenResponse struct {
	AccessToken string         `json:"access_token"`
	TokenType   string         `json:"token_type"`
	ExpiresIn   int            `json:"expires_in"`
	User        *users.UserDTO `json:"user"`
}

// Identity is the caller resolved from a bearer token.
type Identity struct {
	UserID   uuid.UUID      `json:"user_id"`
	Username string         `json:"username"`
	Role     enums.UserRole `json:"role"`
}
