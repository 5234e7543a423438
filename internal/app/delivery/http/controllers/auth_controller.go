package controllers

import (
	"context"
	"errors"
	"net/http"
	"telehealth-service/internal/app/contracts"
	"telehealth-service/internal/app/models"
	"telehealth-service/internal/pkg/constvars"
	"telehealth-service/internal/pkg/dto/requests"
	"telehealth-service/internal/pkg/dto/responses"
	"telehealth-service/internal/pkg/exceptions"
	"telehealth-service/internal/pkg/utils"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

type AuthController struct {
	Log         *zap.Logger
	AuthUsecase contracts.AuthUsecase
	Policy      contracts.AccessPolicy
}

func NewAuthController(logger *zap.Logger, authUsecase contracts.AuthUsecase, policy contracts.AccessPolicy) *AuthController {
	return &AuthController{
		Log:         logger,
		AuthUsecase: authUsecase,
		Policy:      policy,
	}
}

func (ctrl *AuthController) RefreshToken(w http.ResponseWriter, r *http.Request) {
	requestID := utils.GetRequestID(r.Context())
	ctrl.Log.Info("AuthController.RefreshToken called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
	)

	// Bind body to request
	request := new(requests.RefreshToken)
	if err := json.NewDecoder(r.Body).Decode(request); err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrCannotParseJSON(err))
		return
	}

	if err := utils.ValidateStruct(request); err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrInputValidation(err))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	response, err := ctrl.AuthUsecase.RefreshToken(ctx, request)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrServerDeadlineExceeded(err))
			return
		}
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}

	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.RefreshTokenSuccessMessage, response)
}

func (ctrl *AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	requestID := utils.GetRequestID(r.Context())
	ctrl.Log.Info("AuthController.Logout called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
	)

	user, ok := models.UserFromContext(r.Context())
	if !ok {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrMissingUserContext(nil))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if err := ctrl.AuthUsecase.Logout(ctx, user); err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrServerProcess(err))
		return
	}

	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.LogoutSuccessMessage, nil)
}

func (ctrl *AuthController) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := models.UserFromContext(r.Context())
	if !ok {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrMissingUserContext(nil))
		return
	}

	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.GetCurrentUserSuccess, responses.CurrentUser{
		ID:         user.ID,
		Email:      user.Email,
		Name:       user.Name,
		Role:       user.Role,
		ResourceID: user.ResourceID,
	})
}

// AccessRules lists the role rules currently loaded in the access policy.
func (ctrl *AuthController) AccessRules(w http.ResponseWriter, r *http.Request) {
	ctrl.Log.Info("AuthController.AccessRules called",
		zap.String(constvars.LoggingRequestIDKey, utils.GetRequestID(r.Context())),
	)

	rules, err := ctrl.Policy.Rules()
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrServerProcess(err))
		return
	}
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.GetAccessRulesSuccess, rules)
}
