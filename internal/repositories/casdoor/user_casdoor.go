package casdoor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/redis/go-redis/v9"

	"github.com/eklavya-edu/assessment-service/internal/cache"
	"github.com/eklavya-edu/assessment-service/internal/models"
	"github.com/eklavya-edu/assessment-service/internal/repositories"
)

// CasdoorConfig holds the configuration for Casdoor connection
type CasdoorConfig struct {
	Endpoint         string
	ClientID         string
	ClientSecret     string
	Certificate      string
	OrganizationName string
	ApplicationName  string
}

// casdoorClient is the part of the SDK client this repository needs
type casdoorClient interface {
	ParseJwtToken(token string) (*casdoorsdk.Claims, error)
	GetUserByUserId(userId string) (*casdoorsdk.User, error)
}

type UserCasdoor struct {
	client   casdoorClient
	cache    *cache.CacheHelper
	cacheTTL time.Duration
}

func NewUserCasdoor(config CasdoorConfig, redisClient *redis.Client) repositories.UserRepository {
	client := casdoorsdk.NewClient(
		config.Endpoint,
		config.ClientID,
		config.ClientSecret,
		config.Certificate,
		config.OrganizationName,
		config.ApplicationName,
	)
	return newUserCasdoor(client, redisClient)
}

func newUserCasdoor(client casdoorClient, redisClient *redis.Client) *UserCasdoor {
	return &UserCasdoor{
		client:   client,
		cache:    cache.NewCacheHelper(redisClient, cache.UserCacheConfig.Prefix),
		cacheTTL: cache.UserCacheConfig.TTL,
	}
}

// Authenticate validates the JWT signature against the configured certificate
func (u *UserCasdoor) Authenticate(ctx context.Context, token string) (*models.Principal, error) {
	claims, err := u.client.ParseJwtToken(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", repositories.ErrInvalidToken, err)
	}
	if claims.Id == "" {
		return nil, fmt.Errorf("%w: missing user id", repositories.ErrInvalidToken)
	}

	return principalFromUser(&claims.User), nil
}

// GetByID retrieves a user profile by ID
func (u *UserCasdoor) GetByID(ctx context.Context, id string) (*models.Principal, error) {
	cacheKey := "id:" + id

	var principal models.Principal
	err := u.cache.Get(ctx, cacheKey, &principal)
	if err == nil {
		return &principal, nil
	}

	casdoorUser, err := u.client.GetUserByUserId(id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user from Casdoor: %w", err)
	}
	if casdoorUser == nil {
		return nil, repositories.ErrNotFound
	}

	p := principalFromUser(casdoorUser)
	cache.SafeSet(ctx, u.cache, cacheKey, p, u.cacheTTL)
	return p, nil
}

func principalFromUser(user *casdoorsdk.User) *models.Principal {
	return &models.Principal{
		UserID:      user.Id,
		Role:        resolveRole(user),
		Email:       user.Email,
		DisplayName: user.DisplayName,
	}
}

// resolveRole checks the "role" profile property first, then assigned roles, then the user type
func resolveRole(user *casdoorsdk.User) models.UserRole {
	if role, ok := user.Properties["role"]; ok {
		return mapRole(role)
	}
	for _, r := range user.Roles {
		if r != nil && mapRole(r.Name) == models.RoleInstructor {
			return models.RoleInstructor
		}
	}
	return mapRole(user.Type)
}

func mapRole(name string) models.UserRole {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "instructor", "teacher":
		return models.RoleInstructor
	default:
		return models.RoleStudent
	}
}

// IsInvalidToken reports whether err came from a rejected token
func IsInvalidToken(err error) bool {
	return errors.Is(err, repositories.ErrInvalidToken)
}
