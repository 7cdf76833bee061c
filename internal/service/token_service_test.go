package service

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/VlasovDmitriy/ParentHelperPro-backend/internal/config"
	"github.com/VlasovDmitriy/ParentHelperPro-backend/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:             "test-secret-for-token-service-tests",
		AccessTokenTTLMinutes: 60,
		RefreshTokenTTLHours:  168,
	}
}

func TestTokenService_IssuePairAndParse(t *testing.T) {
	svc := NewTokenService(testConfig(), noopUserRepo())
	user := &models.User{ID: 42, Username: "maria_p"}

	pair, err := svc.IssuePair(user)
	require.NoError(t, err)
	require.NotEmpty(t, pair.Access)
	require.NotEmpty(t, pair.Refresh)
	assert.NotEqual(t, pair.Access, pair.Refresh)

	access, err := svc.Parse(pair.Access)
	require.NoError(t, err)
	assert.Equal(t, uint(42), access.UserID)
	assert.Equal(t, "maria_p", access.Username)
	assert.Equal(t, TokenTypeAccess, access.TokenType)

	refresh, err := svc.Parse(pair.Refresh)
	require.NoError(t, err)
	assert.Equal(t, TokenTypeRefresh, refresh.TokenType)
}

func signTestToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestTokenService_Parse_Expired(t *testing.T) {
	cfg := testConfig()
	svc := NewTokenService(cfg, noopUserRepo())

	now := time.Now()
	expired := signTestToken(t, cfg.JWTSecret, jwt.MapClaims{
		"sub": "42",
		"typ": TokenTypeAccess,
		"iss": tokenIssuer,
		"aud": tokenAudience,
		"exp": now.Add(-time.Hour).Unix(),
		"iat": now.Add(-2 * time.Hour).Unix(),
	})

	_, err := svc.Parse(expired)
	require.Error(t, err)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "EXPIRED_CREDENTIAL", appErr.Code, "expiry is distinguishable from other failures")
}

func TestTokenService_Parse_Invalid(t *testing.T) {
	cfg := testConfig()
	svc := NewTokenService(cfg, noopUserRepo())
	now := time.Now()

	tests := []struct {
		name  string
		token string
	}{
		{name: "Garbage", token: "not.a.token"},
		{
			name: "Wrong Secret",
			token: signTestToken(t, "a-completely-different-secret", jwt.MapClaims{
				"sub": "42", "iss": tokenIssuer, "aud": tokenAudience,
				"exp": now.Add(time.Hour).Unix(),
			}),
		},
		{
			name: "Wrong Issuer",
			token: signTestToken(t, cfg.JWTSecret, jwt.MapClaims{
				"sub": "42", "iss": "someone-else", "aud": tokenAudience,
				"exp": now.Add(time.Hour).Unix(),
			}),
		},
		{
			name: "Non Numeric Subject",
			token: signTestToken(t, cfg.JWTSecret, jwt.MapClaims{
				"sub": "maria", "iss": tokenIssuer, "aud": tokenAudience,
				"exp": now.Add(time.Hour).Unix(),
			}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Parse(tt.token)
			require.Error(t, err)
			var appErr *models.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, "UNAUTHORIZED", appErr.Code)
		})
	}
}

func TestTokenService_Refresh(t *testing.T) {
	cfg := testConfig()
	user := &models.User{ID: 7, Username: "maria_p"}

	repo := noopUserRepo()
	repo.getByIDFn = func(_ context.Context, id uint) (*models.User, error) {
		require.Equal(t, uint(7), id)
		return user, nil
	}
	svc := NewTokenService(cfg, repo)

	pair, err := svc.IssuePair(user)
	require.NoError(t, err)

	t.Run("Refresh Token Yields New Access", func(t *testing.T) {
		access, err := svc.Refresh(context.Background(), pair.Refresh)
		require.NoError(t, err)

		claims, err := svc.Parse(access)
		require.NoError(t, err)
		assert.Equal(t, uint(7), claims.UserID)
		assert.Equal(t, TokenTypeAccess, claims.TokenType)
	})

	t.Run("Access Token Is Rejected", func(t *testing.T) {
		_, err := svc.Refresh(context.Background(), pair.Access)
		require.Error(t, err)
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "UNAUTHORIZED", appErr.Code)
	})
}

func TestTokenService_Authenticate(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("password1"), bcrypt.MinCost)
	require.NoError(t, err)

	repo := noopUserRepo()
	repo.getByUsernameFn = func(_ context.Context, username string) (*models.User, error) {
		if username == "maria_p" {
			return &models.User{ID: 1, Username: "maria_p", Password: string(hash)}, nil
		}
		return nil, nil
	}
	svc := NewTokenService(testConfig(), repo)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		user, err := svc.Authenticate(ctx, "maria_p", "password1")
		require.NoError(t, err)
		assert.Equal(t, uint(1), user.ID)
	})

	t.Run("Wrong Password And Unknown User Are Indistinguishable", func(t *testing.T) {
		_, errWrong := svc.Authenticate(ctx, "maria_p", "wrong")
		_, errGhost := svc.Authenticate(ctx, "ghost", "password1")
		require.Error(t, errWrong)
		require.Error(t, errGhost)
		assert.Equal(t, errWrong.Error(), errGhost.Error())
	})
}

func TestTokenService_SubjectIsStringUserID(t *testing.T) {
	svc := NewTokenService(testConfig(), noopUserRepo())
	user := &models.User{ID: 12345, Username: "maria_p"}

	pair, err := svc.IssuePair(user)
	require.NoError(t, err)

	parsed, _, err := jwt.NewParser().ParseUnverified(pair.Access, jwt.MapClaims{})
	require.NoError(t, err)
	claims := parsed.Claims.(jwt.MapClaims)
	assert.Equal(t, strconv.Itoa(12345), claims["sub"])
	assert.NotEmpty(t, claims["jti"])
}
