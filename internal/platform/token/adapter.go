package token

import (
	"github.com/profullstack/food-delivery-multivendor/internal/platform/middleware"
)

// MiddlewareAdapter bridges the token Service to the middleware's
// TokenValidator interface.
type MiddlewareAdapter struct {
	service *Service
}

// NewMiddlewareAdapter wraps a token Service for use in RequireAuth.
func NewMiddlewareAdapter(service *Service) *MiddlewareAdapter {
	return &MiddlewareAdapter{service: service}
}

func (a *MiddlewareAdapter) ValidateToken(tokenString string) (*middleware.Claims, error) {
	claims, err := a.service.Validate(tokenString)
	if err != nil {
		return nil, err
	}
	return &middleware.Claims{
		UserID: claims.UserID,
		Role:   claims.Role,
	}, nil
}
