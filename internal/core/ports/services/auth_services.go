package services

import (
	"context"

	"github.com/splitstack/splitledger/internal/dto"
)

// AuthSvcFacade issues session tokens for authenticated users. The signed
// token is the session value the original design kept in process-wide state;
// here it travels with each request instead.
type AuthSvcFacade interface {
	// Login verifies the credentials and returns a signed session token.
	Login(ctx context.Context, email, password string) (*dto.LoginResponse, error)
}
