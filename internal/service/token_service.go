// Package service holds the application's business logic between the HTTP
// handlers and the repositories.
package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/VlasovDmitriy/ParentHelperPro-backend/internal/config"
	"github.com/VlasovDmitriy/ParentHelperPro-backend/internal/models"
	"github.com/VlasovDmitriy/ParentHelperPro-backend/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"

	tokenIssuer   = "parenthelper-api"
	tokenAudience = "parenthelper-client"
)

// TokenPair is the response body of the token obtain endpoint.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// TokenClaims is the decoded, validated view of one of our JWTs.
type TokenClaims struct {
	UserID    uint
	Username  string
	TokenType string
}

// TokenService issues and validates the JWT pairs used for authentication.
type TokenService struct {
	cfg      *config.Config
	userRepo repository.UserRepository
}

func NewTokenService(cfg *config.Config, userRepo repository.UserRepository) *TokenService {
	return &TokenService{cfg: cfg, userRepo: userRepo}
}

// Authenticate checks the username/password pair and returns the user.
// Unknown usernames and wrong passwords are indistinguishable to the caller.
func (s *TokenService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}
	if cmpErr := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); cmpErr != nil {
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}
	return user, nil
}

// IssuePair creates an access/refresh token pair for the user.
func (s *TokenService) IssuePair(user *models.User) (*TokenPair, error) {
	access, err := s.sign(user, TokenTypeAccess, s.cfg.AccessTokenTTL())
	if err != nil {
		return nil, err
	}
	refresh, err := s.sign(user, TokenTypeRefresh, s.cfg.RefreshTokenTTL())
	if err != nil {
		return nil, err
	}
	return &TokenPair{Access: access, Refresh: refresh}, nil
}

// Refresh exchanges a valid refresh token for a fresh access token.
func (s *TokenService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.Parse(refreshToken)
	if err != nil {
		return "", err
	}
	if claims.TokenType != TokenTypeRefresh {
		return "", models.NewUnauthorizedError("Token is not a refresh token")
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return "", models.NewUnauthorizedError("User no longer exists")
	}
	return s.sign(user, TokenTypeAccess, s.cfg.AccessTokenTTL())
}

// Parse validates the token signature and registered claims and returns the
// decoded claims. Expiry is reported distinctly from every other failure so
// clients know to refresh instead of re-login.
func (s *TokenService) Parse(tokenString string) (*TokenClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	}, jwt.WithIssuer(tokenIssuer), jwt.WithAudience(tokenAudience))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, models.NewExpiredCredentialError()
		}
		return nil, models.NewUnauthorizedError("Invalid token")
	}
	if !token.Valid {
		return nil, models.NewUnauthorizedError("Invalid token")
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, models.NewUnauthorizedError("Invalid token claims")
	}

	subStr, ok := mapClaims["sub"].(string)
	if !ok {
		return nil, models.NewUnauthorizedError("Invalid token subject")
	}
	userID, parseErr := strconv.ParseUint(subStr, 10, 32)
	if parseErr != nil {
		return nil, models.NewUnauthorizedError("Invalid user ID in token")
	}

	claims := &TokenClaims{UserID: uint(userID)}
	if username, ok := mapClaims["username"].(string); ok {
		claims.Username = username
	}
	if typ, ok := mapClaims["typ"].(string); ok {
		claims.TokenType = typ
	}
	return claims, nil
}

func (s *TokenService) sign(user *models.User, tokenType string, ttl time.Duration) (string, error) {
	if s.cfg.JWTSecret == "" {
		return "", models.NewInternalError(fmt.Errorf("JWT secret not configured"))
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":      strconv.FormatUint(uint64(user.ID), 10),
		"username": user.Username,
		"typ":      tokenType,
		"iss":      tokenIssuer,
		"aud":      tokenAudience,
		"exp":      now.Add(ttl).Unix(),
		"iat":      now.Unix(),
		"nbf":      now.Unix(),
		"jti":      generateJTI(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", models.NewInternalError(err)
	}
	return signed, nil
}

// generateJTI creates a unique JWT ID to prevent replay attacks.
func generateJTI() string {
	return fmt.Sprintf("%d-%s", time.Now().Unix(), uuid.New().String()[:8])
}
