package contracts

import (
	"context"
	"telehealth-service/internal/app/models"
	"telehealth-service/internal/pkg/dto/requests"
	"telehealth-service/internal/pkg/dto/responses"
)

type AuthUsecase interface {
	Authenticate(ctx context.Context, rawToken string) (*models.UserContext, error)
	RefreshToken(ctx context.Context, request *requests.RefreshToken) (*responses.TokenPair, error)
	Logout(ctx context.Context, user *models.UserContext) error
}

type AccessPolicy interface {
	Allowed(role, object, action string) (bool, error)
	RequiredRoles(object, action string) ([]string, error)
	Grant(object, action string, roles ...string) error
	Rules() ([]responses.AccessRule, error)
}
