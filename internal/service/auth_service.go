package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/bakery_storefront/internal/models"
	"github.com/GTDGit/bakery_storefront/internal/utils"
	"github.com/GTDGit/bakery_storefront/pkg/bakeryapi"
)

// LoginAPI exchanges admin credentials upstream.
type LoginAPI interface {
	Login(ctx context.Context, email, password string) (*bakeryapi.LoginResult, error)
}

// LoginRequest is the admin login form.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the service token of an admin session.
type LoginResponse struct {
	Token     string              `json:"token"`
	ExpiresAt time.Time           `json:"expiresAt"`
	Admin     models.AdminSession `json:"admin"`
}

// AuthService logs admins in against the bakery API and issues service JWTs
// that carry the upstream bearer token.
type AuthService struct {
	api    LoginAPI
	secret string
	ttl    time.Duration
}

func NewAuthService(api LoginAPI, secret string, ttl time.Duration) *AuthService {
	return &AuthService{api: api, secret: secret, ttl: ttl}
}

func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	log.Debug().Str("email", email).Msg("Login attempt")

	res, err := s.api.Login(ctx, email, req.Password)
	if err != nil {
		if bakeryapi.IsUnauthorized(err) || bakeryapi.IsNotFound(err) {
			log.Warn().Str("email", email).Msg("Login rejected by bakery API")
			return nil, utils.ErrInvalidCredentials
		}
		return nil, upstreamErr(err)
	}

	if res.User.Role != "" && !strings.EqualFold(res.User.Role, "admin") {
		log.Warn().Str("email", email).Str("role", res.User.Role).Msg("Non-admin login attempt")
		return nil, utils.ErrInvalidCredentials
	}

	session := models.AdminSession{
		Email:         email,
		Name:          res.User.Name,
		UpstreamToken: res.Token,
	}
	token, err := utils.GenerateJWT(s.secret, s.ttl, session)
	if err != nil {
		return nil, err
	}

	log.Info().Str("email", email).Msg("Login successful")
	return &LoginResponse{Token: token, ExpiresAt: time.Now().Add(s.ttl), Admin: session}, nil
}
