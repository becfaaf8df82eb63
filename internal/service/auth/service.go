package auth

import (
	"context"
	"crypto/subtle"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/aztecwarehouse123/attendance-mgt-sys-sub001/internal/domain/auth"
	"github.com/aztecwarehouse123/attendance-mgt-sys-sub001/internal/pkg/jwt"
)

// AdminAuthService authenticates the single dashboard admin configured
// through the environment. There is no user table behind this login; the
// admin is deployment configuration.
type AdminAuthService struct {
	adminEmail        string
	adminPasswordHash string
	jwtService        jwt.Service
}

func NewAdminAuthService(adminEmail, adminPasswordHash string, jwtService jwt.Service) *AdminAuthService {
	return &AdminAuthService{
		adminEmail:        adminEmail,
		adminPasswordHash: adminPasswordHash,
		jwtService:        jwtService,
	}
}

func (s *AdminAuthService) Login(_ context.Context, req auth.LoginRequest) (auth.LoginResponse, error) {
	if err := req.Validate(); err != nil {
		return auth.LoginResponse{}, err
	}

	emailMatch := subtle.ConstantTimeCompare([]byte(req.Email), []byte(s.adminEmail)) == 1
	passwordErr := bcrypt.CompareHashAndPassword([]byte(s.adminPasswordHash), []byte(req.Password))
	if !emailMatch || passwordErr != nil {
		return auth.LoginResponse{}, auth.ErrInvalidCredentials
	}

	token, expiresAt, err := s.jwtService.GenerateAdminToken(req.Email)
	if err != nil {
		return auth.LoginResponse{}, fmt.Errorf("generate admin token: %w", err)
	}

	return auth.LoginResponse{
		AccessToken: token,
		ExpiresAt:   expiresAt,
	}, nil
}
