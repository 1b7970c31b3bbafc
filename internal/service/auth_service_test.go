package service

import (
	"alcyxob/fitcoach/internal/config"
	"alcyxob/fitcoach/internal/domain"
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var testJWTConfig = config.JWTConfig{
	Secret:     "test-secret",
	Algorithm:  "HS256",
	Expiration: time.Hour,
	Issuer:     "fitcoach",
}

func newAuthFixture() (AuthService, *fakeUserRepo) {
	users := newFakeUserRepo()
	return NewAuthService(users, testJWTConfig), users
}

func signClaims(t *testing.T, secret string, method jwt.SigningMethod, claims *jwtClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestNewAuthService_RequiresSecret(t *testing.T) {
	assert.Panics(t, func() { NewAuthService(newFakeUserRepo(), config.JWTConfig{}) })
}

func TestRegister(t *testing.T) {
	svc, users := newAuthFixture()
	ctx := context.Background()

	user, err := svc.Register(ctx, " Tomas ", " Tomas@Example.COM ", "correct-horse", domain.RoleTrainer)
	require.NoError(t, err)
	assert.Equal(t, "Tomas", user.Name)
	assert.Equal(t, "tomas@example.com", user.Email)
	assert.Empty(t, user.PasswordHash)

	stored, err := users.GetByEmail(ctx, "tomas@example.com")
	require.NoError(t, err)
	assert.NotEmpty(t, stored.PasswordHash)
	assert.NotEqual(t, "correct-horse", stored.PasswordHash)

	_, err = svc.Register(ctx, "Other", "TOMAS@example.com", "another-pass", domain.RoleClient)
	assert.ErrorIs(t, err, ErrUserAlreadyExists)
}

func TestRegister_Validation(t *testing.T) {
	svc, _ := newAuthFixture()
	ctx := context.Background()

	tests := []struct {
		name     string
		userName string
		email    string
		password string
		role     domain.Role
		wantErr  error
	}{
		{"missing name", "", "a@example.com", "password1", domain.RoleClient, ErrValidationFailed},
		{"bad email", "A", "not-an-email", "password1", domain.RoleClient, ErrInvalidEmail},
		{"short password", "A", "a@example.com", "short", domain.RoleClient, ErrPasswordTooShort},
		{"unknown role", "A", "a@example.com", "password1", domain.Role("admin"), ErrInvalidRole},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tt.userName, tt.email, tt.password, tt.role)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, ErrValidationFailed)
		})
	}
}

func TestLoginAndParseToken(t *testing.T) {
	svc, _ := newAuthFixture()
	ctx := context.Background()

	registered, err := svc.Register(ctx, "Carla", "carla@example.com", "s3cret-pass", domain.RoleClient)
	require.NoError(t, err)

	token, user, err := svc.Login(ctx, "CARLA@example.com", "s3cret-pass")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, registered.ID, user.ID)
	assert.Empty(t, user.PasswordHash)

	identity, err := svc.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, identity.UserID)
	assert.Equal(t, domain.RoleClient, identity.Role)

	_, _, err = svc.Login(ctx, "carla@example.com", "wrong-pass")
	assert.ErrorIs(t, err, ErrAuthenticationFailed)

	_, _, err = svc.Login(ctx, "nobody@example.com", "s3cret-pass")
	assert.ErrorIs(t, err, ErrAuthenticationFailed)

	_, _, err = svc.Login(ctx, "", "")
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
}

func TestParseToken_Rejects(t *testing.T) {
	svc, _ := newAuthFixture()
	userID := primitive.NewObjectID()
	now := time.Now()

	valid := func() *jwtClaims {
		return &jwtClaims{
			UserID: userID.Hex(),
			Role:   domain.RoleTrainer,
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
				IssuedAt:  jwt.NewNumericDate(now),
				Issuer:    testJWTConfig.Issuer,
			},
		}
	}

	identity, err := svc.ParseToken(signClaims(t, testJWTConfig.Secret, jwt.SigningMethodHS256, valid()))
	require.NoError(t, err)
	assert.Equal(t, userID, identity.UserID)

	expired := valid()
	expired.ExpiresAt = jwt.NewNumericDate(now.Add(-time.Minute))

	wrongIssuer := valid()
	wrongIssuer.Issuer = "someone-else"

	badRole := valid()
	badRole.Role = "admin"

	badID := valid()
	badID.UserID = "not-an-object-id"

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not.a.token"},
		{"wrong secret", signClaims(t, "other-secret", jwt.SigningMethodHS256, valid())},
		{"wrong algorithm", signClaims(t, testJWTConfig.Secret, jwt.SigningMethodHS512, valid())},
		{"expired", signClaims(t, testJWTConfig.Secret, jwt.SigningMethodHS256, expired)},
		{"wrong issuer", signClaims(t, testJWTConfig.Secret, jwt.SigningMethodHS256, wrongIssuer)},
		{"unknown role", signClaims(t, testJWTConfig.Secret, jwt.SigningMethodHS256, badRole)},
		{"malformed user id", signClaims(t, testJWTConfig.Secret, jwt.SigningMethodHS256, badID)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ParseToken(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestResolveUser(t *testing.T) {
	svc, users := newAuthFixture()
	trainer := users.add("Tomas", "tomas@example.com", domain.RoleTrainer)

	identity, err := svc.ResolveUser(context.Background(), trainer.ID)
	require.NoError(t, err)
	assert.Equal(t, trainer.ID, identity.UserID)
	assert.Equal(t, domain.RoleTrainer, identity.Role)

	_, err = svc.ResolveUser(context.Background(), primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrInvalidToken)
}
