package middlewares

import (
	"telehealth-service/internal/app/config"
	"telehealth-service/internal/app/contracts"

	"go.uber.org/zap"
)

type Middlewares struct {
	Log            *zap.Logger
	AuthUsecase    contracts.AuthUsecase
	Policy         contracts.AccessPolicy
	InternalConfig *config.InternalConfig
}

func NewMiddlewares(logger *zap.Logger, authUsecase contracts.AuthUsecase, policy contracts.AccessPolicy, internalConfig *config.InternalConfig) *Middlewares {
	return &Middlewares{
		Log:            logger,
		AuthUsecase:    authUsecase,
		Policy:         policy,
		InternalConfig: internalConfig,
	}
}
