package repositories

import (
	"context"
	"errors"

	"github.com/eklavya-edu/assessment-service/internal/models"
)

var ErrInvalidToken = errors.New("invalid token")

// UserRepository resolves callers against the identity provider; the service does not own user data
type UserRepository interface {
	// Authenticate validates a bearer token and returns the caller it was issued to
	Authenticate(ctx context.Context, token string) (*models.Principal, error)
	GetByID(ctx context.Context, id string) (*models.Principal, error)
}
