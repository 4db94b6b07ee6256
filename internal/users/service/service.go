package service

import (
	"context"
	"strings"
	"time"

	"cityreport_backend/internal/users/password"
	"cityreport_backend/internal/users/repository"
	"cityreport_backend/internal/users/token"
	"cityreport_backend/internal/users/transport"
	"cityreport_backend/platform/apperr"
	"cityreport_backend/platform/config"
	"cityreport_backend/platform/phone"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// User types. Every account has exactly one.
const (
	TypeCitizen            = "citizen"
	TypeTechnicalStaff     = "technical_staff"
	TypeExternalMaintainer = "external_maintainer"
	TypePRO                = "pro"
	TypeAdmin              = "admin"
)

const accessTokenType = "access"

// Service provides account management and credential authentication.
type Service struct {
	repo *repository.Repository
	cfg  config.AuthConfig
}

// New creates a new users service.
func New(repo *repository.Repository, cfg config.AuthConfig) *Service {
	return &Service{repo: repo, cfg: cfg}
}

// Register creates a citizen account from a self-service signup.
func (s *Service) Register(ctx context.Context, req transport.RegisterRequest) (*transport.UserResponse, error) {
	user, err := s.createUser(ctx, req.Email, req.Password, req.FullName, req.Phone, TypeCitizen, nil)
	if err != nil {
		return nil, err
	}
	return toUserResponse(user), nil
}

// CreateAccount creates a staff, PRO, maintainer, or admin account. Admin
// only. Maintainer accounts must carry the company they represent.
func (s *Service) CreateAccount(ctx context.Context, req transport.CreateAccountRequest) (*transport.UserResponse, error) {
	if req.UserType == TypeExternalMaintainer && req.CompanyID == nil {
		return nil, apperr.Validation("maintainer accounts require a company")
	}
	if req.UserType != TypeExternalMaintainer && req.CompanyID != nil {
		return nil, apperr.Validation("only maintainer accounts belong to a company")
	}

	user, err := s.createUser(ctx, req.Email, req.Password, req.FullName, req.Phone, req.UserType, req.CompanyID)
	if err != nil {
		return nil, err
	}
	return toUserResponse(user), nil
}

func (s *Service) createUser(ctx context.Context, email, plainPassword, fullName string, rawPhone *string, userType string, companyID *uuid.UUID) (*repository.User, error) {
	hash, err := password.Hash(plainPassword)
	if err != nil {
		return nil, apperr.Internal("password hashing failed")
	}

	var normalizedPhone *string
	if rawPhone != nil && strings.TrimSpace(*rawPhone) != "" {
		normalized := phone.NormalizeE164(*rawPhone)
		normalizedPhone = &normalized
	}

	user := &repository.User{
		ID:           uuid.New(),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: hash,
		FullName:     strings.TrimSpace(fullName),
		Phone:        normalizedPhone,
		UserType:     userType,
		CompanyID:    companyID,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login verifies credentials and issues a token pair.
func (s *Service) Login(ctx context.Context, req transport.LoginRequest) (*transport.TokenResponse, error) {
	user, err := s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		return nil, apperr.Unauthorized("invalid credentials")
	}
	if err := password.Compare(user.PasswordHash, req.Password); err != nil {
		return nil, apperr.Unauthorized("invalid credentials")
	}

	return s.issueTokens(ctx, user)
}

// Refresh rotates a refresh token and issues a new pair.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*transport.TokenResponse, error) {
	hash := token.HashSHA256(refreshToken)
	userID, expiresAt, err := s.repo.GetRefreshToken(ctx, hash)
	if err != nil {
		return nil, apperr.Unauthorized("invalid refresh token")
	}
	if time.Now().After(expiresAt) {
		_ = s.repo.RevokeRefreshToken(ctx, hash)
		return nil, apperr.Unauthorized("refresh token expired")
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, apperr.Unauthorized("invalid refresh token")
	}

	_ = s.repo.RevokeRefreshToken(ctx, hash)
	return s.issueTokens(ctx, user)
}

// Logout revokes a refresh token.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	return s.repo.RevokeRefreshToken(ctx, token.HashSHA256(refreshToken))
}

// Me returns the profile of the authenticated user.
func (s *Service) Me(ctx context.Context, userID uuid.UUID) (*transport.UserResponse, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toUserResponse(user), nil
}

// ListByType lists accounts of a given type, e.g. the maintainers a staff
// member can hand a report to.
func (s *Service) ListByType(ctx context.Context, userType string) ([]transport.UserResponse, error) {
	switch userType {
	case TypeCitizen, TypeTechnicalStaff, TypeExternalMaintainer, TypePRO, TypeAdmin:
	default:
		return nil, apperr.Validation("unknown user type")
	}

	users, err := s.repo.ListByType(ctx, userType)
	if err != nil {
		return nil, err
	}

	out := make([]transport.UserResponse, len(users))
	for i := range users {
		out[i] = *toUserResponse(&users[i])
	}
	return out, nil
}

// GetUser returns the stored user record for in-process collaborators.
func (s *Service) GetUser(ctx context.Context, userID uuid.UUID) (*repository.User, error) {
	return s.repo.GetByID(ctx, userID)
}

func (s *Service) issueTokens(ctx context.Context, user *repository.User) (*transport.TokenResponse, error) {
	accessToken, err := s.signJWT(user)
	if err != nil {
		return nil, apperr.Internal("token signing failed")
	}

	refreshToken, err := token.GenerateRandomToken(48)
	if err != nil {
		return nil, apperr.Internal("token generation failed")
	}

	hash := token.HashSHA256(refreshToken)
	expiresAt := time.Now().Add(s.cfg.GetRefreshTokenTTL())
	if err := s.repo.CreateRefreshToken(ctx, user.ID, hash, expiresAt); err != nil {
		return nil, err
	}

	return &transport.TokenResponse{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

func (s *Service) signJWT(user *repository.User) (string, error) {
	claims := jwt.MapClaims{
		"sub":   user.ID.String(),
		"type":  accessTokenType,
		"roles": []string{user.UserType},
		"exp":   time.Now().Add(s.cfg.GetAccessTokenTTL()).Unix(),
		"iat":   time.Now().Unix(),
	}

	tokenObj := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tokenObj.SignedString([]byte(s.cfg.GetJWTAccessSecret()))
}

func toUserResponse(u *repository.User) *transport.UserResponse {
	return &transport.UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		FullName:  u.FullName,
		Phone:     u.Phone,
		UserType:  u.UserType,
		CompanyID: u.CompanyID,
		CreatedAt: u.CreatedAt,
	}
}
