package auth

import (
	"context"
)

// Service authenticates the dashboard admin.
type Service interface {
	Login(ctx context.Context, req LoginRequest) (LoginResponse, error)
}
