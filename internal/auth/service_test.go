package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ilumina/storefront-backend/internal/users"
	pkgAuth "github.com/ilumina/storefront-backend/pkg/auth"
	"github.com/ilumina/storefront-backend/pkg/config"
	"github.com/ilumina/storefront-backend/pkg/db/dbtest"
	"github.com/ilumina/storefront-backend/pkg/enums"
	pkgerrors "github.com/ilumina/storefront-backend/pkg/errors"
	"github.com/ilumina/storefront-backend/pkg/security"
)

var (
	testJWT      = config.JWTConfig{Secret: "secret", Issuer: "storefront", ExpirationMinutes: 60}
	testPassword = config.PasswordConfig{ArgonMemoryKB: 1024, ArgonTime: 1, ArgonParallelism: 1, ArgonSaltLen: 16, ArgonKeyLen: 32}
)

func newTestService(t *testing.T) (Service, *users.Repository) {
	t.Helper()
	repo := users.NewRepository(dbtest.Open(t).DB())
	svc, err := NewService(ServiceParams{UserRepo: repo, JWTConfig: testJWT, Password: testPassword})
	require.NoError(t, err)
	return svc, repo
}

func TestRegisterIssuesUserToken(t *testing.T) {
	svc, _ := newTestService(t)

	resp, err := svc.Register(context.Background(), RegisterRequest{Username: " maria@example.com ", Password: "segredo"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, 3600, resp.ExpiresIn)
	assert.Equal(t, "maria@example.com", resp.User.Username)
	assert.Equal(t, enums.UserRoleUser, resp.User.Role)

	claims, err := pkgAuth.ParseAccessToken(testJWT, resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)
	assert.Equal(t, enums.UserRoleUser, claims.Role)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{Username: "dup@example.com", Password: "a"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterRequest{Username: "dup@example.com", Password: "b"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict), "got %v", err)
}

func TestRegisterMissingFields(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Register(context.Background(), RegisterRequest{Username: "   ", Password: "x"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestLogin(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{Username: "joao@example.com", Password: "senha"})
	require.NoError(t, err)

	resp, err := svc.Login(ctx, LoginRequest{Username: "joao@example.com", Password: "senha"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)

	for _, req := range []LoginRequest{
		{Username: "joao@example.com", Password: "errada"},
		{Username: "ninguem@example.com", Password: "senha"},
		{Username: "", Password: ""},
	} {
		_, err := svc.Login(ctx, req)
		typed := pkgerrors.As(err)
		require.NotNil(t, typed, "%+v", req)
		assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
		assert.Equal(t, invalidCredentialsMessage, typed.Message())
	}
}

func TestLoginRehashesWeakerHash(t *testing.T) {
	repo := users.NewRepository(dbtest.Open(t).DB())
	ctx := context.Background()

	weaker := testPassword
	weaker.ArgonTime = 2
	oldHash, err := security.HashPassword("senha", weaker)
	require.NoError(t, err)
	user, err := repo.Create(ctx, users.CreateUserDTO{Username: "legacy@example.com", PasswordHash: oldHash})
	require.NoError(t, err)

	svc, err := NewService(ServiceParams{UserRepo: repo, JWTConfig: testJWT, Password: testPassword})
	require.NoError(t, err)

	_, err = svc.Login(ctx, LoginRequest{Username: "legacy@example.com", Password: "senha"})
	require.NoError(t, err)

	stored, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.NotEqual(t, oldHash, stored.PasswordHash)
	assert.False(t, security.NeedsRehash(stored.PasswordHash, testPassword))
}

func TestIdentityFromClaims(t *testing.T) {
	assert.Equal(t, Identity{}, IdentityFromClaims(nil))
}
