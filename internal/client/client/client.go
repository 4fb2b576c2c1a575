package client

import (
	"context"

	"github.com/dmitrijs2005/quizera/internal/client/models"
)

// AuthResponse is what a successful login, OTP verification or signup returns.
type AuthResponse struct {
	Token   string
	User    *models.User
	Message string
}

// Client is the transport contract with the backend. Authenticated calls take
// the bearer token explicitly; the client keeps no session of its own.
type Client interface {
	Ping(ctx context.Context) error

	Login(ctx context.Context, email, password string) (*AuthResponse, error)
	SendOTP(ctx context.Context, name, email, password string) (string, error)
	VerifyOTP(ctx context.Context, email, otp string) (*AuthResponse, error)
	Signup(ctx context.Context, name, email, password, otp string) (*AuthResponse, error)

	Profile(ctx context.Context, token string) (*models.User, error)
	UpdateProfile(ctx context.Context, token string, patch models.ProfilePatch) (*models.User, error)
	DeleteAccount(ctx context.Context, token string) error
	UpdateCredits(ctx context.Context, token string, credits int) (int, error)

	GenerateFromFile(ctx context.Context, token string, req models.GenerateRequest) (*models.GenerateResult, error)
	GenerateFromText(ctx context.Context, token string, req models.GenerateRequest) (*models.GenerateResult, error)
}
