package auth

import (
	"context"
	"errors"
	"telehealth-service/internal/app/contracts"
	"telehealth-service/internal/app/models"
	"telehealth-service/internal/app/services/shared/jwtmanager"
	"telehealth-service/internal/pkg/constvars"
	"telehealth-service/internal/pkg/dto/requests"
	"telehealth-service/internal/pkg/dto/responses"
	"telehealth-service/internal/pkg/exceptions"
	"telehealth-service/internal/pkg/utils"
	"time"

	"go.uber.org/zap"
)

type authUsecase struct {
	JWTManager  *jwtmanager.JWTManager
	Revocations contracts.TokenRevocationList
	Log         *zap.Logger
}

func NewAuthUsecase(jwtManager *jwtmanager.JWTManager, revocations contracts.TokenRevocationList, logger *zap.Logger) contracts.AuthUsecase {
	return &authUsecase{
		JWTManager:  jwtManager,
		Revocations: revocations,
		Log:         logger,
	}
}

func (uc *authUsecase) Authenticate(ctx context.Context, rawToken string) (*models.UserContext, error) {
	requestID := utils.GetRequestID(ctx)

	if rawToken == "" {
		return nil, exceptions.ErrTokenMissing(nil)
	}

	claims, err := uc.JWTManager.VerifyAccessToken(ctx, rawToken)
	if err != nil {
		if errors.Is(err, jwtmanager.ErrWrongTokenType) {
			return nil, exceptions.ErrTokenWrongType(err, constvars.TokenTypeRefresh)
		}
		return nil, exceptions.ErrTokenInvalidOrExpired(err)
	}

	if err := uc.ensureNotRevoked(ctx, claims.ID); err != nil {
		return nil, err
	}

	user := claims.User()
	uc.Log.Debug("authUsecase.Authenticate succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingUserIDKey, user.ID),
		zap.String(constvars.LoggingRoleKey, user.Role),
	)
	return user, nil
}

func (uc *authUsecase) RefreshToken(ctx context.Context, request *requests.RefreshToken) (*responses.TokenPair, error) {
	requestID := utils.GetRequestID(ctx)
	uc.Log.Info("authUsecase.RefreshToken called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
	)

	claims, err := uc.JWTManager.VerifyRefreshToken(ctx, request.RefreshToken)
	if err != nil {
		if errors.Is(err, jwtmanager.ErrWrongTokenType) {
			return nil, exceptions.ErrTokenWrongType(err, constvars.TokenTypeAccess)
		}
		return nil, exceptions.ErrTokenInvalidOrExpired(err)
	}

	if claims.ID == "" {
		return nil, exceptions.ErrTokenInvalidOrExpired(nil)
	}

	// Refresh tokens are single use: only the call that revokes the old one gets a new pair.
	revoked, err := uc.Revocations.Revoke(ctx, claims.ID, claims.ExpiresAt.Time)
	if err != nil {
		uc.Log.Error("authUsecase.RefreshToken error revoking previous refresh token",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}
	if !revoked {
		return nil, exceptions.ErrTokenRevoked(nil)
	}

	user := claims.User()
	access, err := uc.JWTManager.IssueAccessToken(ctx, user)
	if err != nil {
		return nil, exceptions.ErrTokenGenerate(err)
	}
	refresh, err := uc.JWTManager.IssueRefreshToken(ctx, user)
	if err != nil {
		return nil, exceptions.ErrTokenGenerate(err)
	}

	uc.Log.Info("authUsecase.RefreshToken succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingUserIDKey, user.ID),
	)
	return &responses.TokenPair{
		AccessToken:  access.Token,
		RefreshToken: refresh.Token,
		TokenType:    "Bearer",
		ExpiresIn:    int64(time.Until(access.ExpiresAt).Seconds()),
	}, nil
}

func (uc *authUsecase) Logout(ctx context.Context, user *models.UserContext) error {
	requestID := utils.GetRequestID(ctx)
	uc.Log.Info("authUsecase.Logout called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingUserIDKey, user.ID),
	)

	// Identity provider tokens may carry no jti; nothing to revoke then.
	if user.TokenID == "" {
		return nil
	}

	until := user.ExpiresAt
	if until.IsZero() {
		until = time.Now().Add(24 * time.Hour)
	}
	if _, err := uc.Revocations.Revoke(ctx, user.TokenID, until); err != nil {
		uc.Log.Error("authUsecase.Logout error revoking token",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (uc *authUsecase) ensureNotRevoked(ctx context.Context, tokenID string) error {
	if tokenID == "" {
		return nil
	}
	revoked, err := uc.Revocations.IsRevoked(ctx, tokenID)
	if err != nil {
		return err
	}
	if revoked {
		return exceptions.ErrTokenRevoked(nil)
	}
	return nil
}
