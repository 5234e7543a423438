package controllers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"telehealth-service/internal/app/config"
	"telehealth-service/internal/app/contracts"
	"telehealth-service/internal/app/models"
	"telehealth-service/internal/pkg/constvars"
	"telehealth-service/internal/pkg/exceptions"
	"telehealth-service/internal/pkg/fhir_dto"
	"telehealth-service/internal/pkg/utils"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type resourceTypeKey struct{}

// FhirResourceController serves CRUD routes for one resource type at a time,
// either pinned by ForResource or taken from the {resourceType} URL parameter.
type FhirResourceController struct {
	Log            *zap.Logger
	GatewayUsecase contracts.GatewayUsecase
	InternalConfig *config.InternalConfig
}

func NewFhirResourceController(logger *zap.Logger, gatewayUsecase contracts.GatewayUsecase, internalConfig *config.InternalConfig) *FhirResourceController {
	return &FhirResourceController{
		Log:            logger,
		GatewayUsecase: gatewayUsecase,
		InternalConfig: internalConfig,
	}
}

func (ctrl *FhirResourceController) ForResource(resourceType string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), resourceTypeKey{}, resourceType)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func (ctrl *FhirResourceController) Search(w http.ResponseWriter, r *http.Request) {
	requestID := utils.GetRequestID(r.Context())
	resourceType, err := ctrl.resourceType(r)
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}
	ctrl.Log.Info("FhirResourceController.Search called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingResourceTypeKey, resourceType),
		zap.String(constvars.LoggingQueryParamsKey, r.URL.RawQuery),
	)

	query := utils.BuildSearchQuery(r.URL.Query())
	if err := utils.ValidateStruct(query); err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrInputValidation(err))
		return
	}
	// Named routes accept only the documented filters.
	if pinned(r) {
		query.Extra = nil
	}

	ctx, cancel := ctrl.withTimeout(r)
	defer cancel()

	result, err := ctrl.GatewayUsecase.Search(ctx, resourceType, query)
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, readError(err, resourceType))
		return
	}

	ctrl.Log.Info("FhirResourceController.Search succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int(constvars.LoggingTotalKey, result.Total),
	)
	utils.BuildSuccessResponseWithPagination(w, constvars.StatusOK, fmt.Sprintf(constvars.GetResourceListSuccessMessage, resourceType), &result.Pagination, result.Resources)
}

func (ctrl *FhirResourceController) Get(w http.ResponseWriter, r *http.Request) {
	resourceType, id, err := ctrl.resourceTypeAndID(r)
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}
	ctrl.Log.Info("FhirResourceController.Get called",
		zap.String(constvars.LoggingRequestIDKey, utils.GetRequestID(r.Context())),
		zap.String(constvars.LoggingResourceTypeKey, resourceType),
		zap.String(constvars.LoggingResourceIDKey, id),
	)

	ctx, cancel := ctrl.withTimeout(r)
	defer cancel()

	resource, err := ctrl.GatewayUsecase.Get(ctx, resourceType, id)
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, readError(err, resourceType))
		return
	}
	utils.BuildSuccessResponse(w, constvars.StatusOK, fmt.Sprintf(constvars.GetResourceSuccessMessage, resourceType), resource)
}

// GetOwn returns the FHIR resource linked to the caller's account.
func (ctrl *FhirResourceController) GetOwn(w http.ResponseWriter, r *http.Request) {
	resourceType, err := ctrl.resourceType(r)
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}
	user, ok := models.UserFromContext(r.Context())
	if !ok {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrMissingUserContext(nil))
		return
	}
	ctrl.Log.Info("FhirResourceController.GetOwn called",
		zap.String(constvars.LoggingRequestIDKey, utils.GetRequestID(r.Context())),
		zap.String(constvars.LoggingResourceTypeKey, resourceType),
		zap.String(constvars.LoggingUserIDKey, user.ID),
	)
	if user.ResourceID == "" {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrResourceNotFound(nil, resourceType))
		return
	}

	ctx, cancel := ctrl.withTimeout(r)
	defer cancel()

	resource, err := ctrl.GatewayUsecase.Get(ctx, resourceType, user.ResourceID)
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, readError(err, resourceType))
		return
	}
	utils.BuildSuccessResponse(w, constvars.StatusOK, fmt.Sprintf(constvars.GetResourceSuccessMessage, resourceType), resource)
}

func (ctrl *FhirResourceController) Create(w http.ResponseWriter, r *http.Request) {
	resourceType, err := ctrl.resourceType(r)
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}
	ctrl.Log.Info("FhirResourceController.Create called",
		zap.String(constvars.LoggingRequestIDKey, utils.GetRequestID(r.Context())),
		zap.String(constvars.LoggingResourceTypeKey, resourceType),
	)

	resource, err := ctrl.parseBody(r, resourceType)
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}

	ctx, cancel := ctrl.withTimeout(r)
	defer cancel()

	created, err := ctrl.GatewayUsecase.Create(ctx, resourceType, resource)
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, writeError(err, resourceType, exceptions.ErrCreateResource))
		return
	}
	utils.BuildSuccessResponse(w, constvars.StatusCreated, fmt.Sprintf(constvars.CreateResourceSuccessMessage, resourceType), created)
}

func (ctrl *FhirResourceController) Update(w http.ResponseWriter, r *http.Request) {
	resourceType, id, err := ctrl.resourceTypeAndID(r)
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}
	ctrl.Log.Info("FhirResourceController.Update called",
		zap.String(constvars.LoggingRequestIDKey, utils.GetRequestID(r.Context())),
		zap.String(constvars.LoggingResourceTypeKey, resourceType),
		zap.String(constvars.LoggingResourceIDKey, id),
	)

	resource, err := ctrl.parseBody(r, resourceType)
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}

	ctx, cancel := ctrl.withTimeout(r)
	defer cancel()

	updated, err := ctrl.GatewayUsecase.Update(ctx, resourceType, id, resource)
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, writeError(err, resourceType, exceptions.ErrUpdateResource))
		return
	}
	utils.BuildSuccessResponse(w, constvars.StatusOK, fmt.Sprintf(constvars.UpdateResourceSuccessMessage, resourceType), updated)
}

func (ctrl *FhirResourceController) Delete(w http.ResponseWriter, r *http.Request) {
	resourceType, id, err := ctrl.resourceTypeAndID(r)
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}
	ctrl.Log.Info("FhirResourceController.Delete called",
		zap.String(constvars.LoggingRequestIDKey, utils.GetRequestID(r.Context())),
		zap.String(constvars.LoggingResourceTypeKey, resourceType),
		zap.String(constvars.LoggingResourceIDKey, id),
	)

	ctx, cancel := ctrl.withTimeout(r)
	defer cancel()

	if err := ctrl.GatewayUsecase.Delete(ctx, resourceType, id); err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, writeError(err, resourceType, exceptions.ErrDeleteResource))
		return
	}
	utils.BuildSuccessResponse(w, constvars.StatusOK, fmt.Sprintf(constvars.DeleteResourceSuccessMessage, resourceType), nil)
}

func (ctrl *FhirResourceController) resourceType(r *http.Request) (string, error) {
	if resourceType, ok := r.Context().Value(resourceTypeKey{}).(string); ok {
		return resourceType, nil
	}
	resourceType := chi.URLParam(r, "resourceType")
	if !utils.IsResourceTypeName(resourceType) {
		return "", exceptions.ErrUnsupportedResourceType(nil, resourceType)
	}
	return resourceType, nil
}

func pinned(r *http.Request) bool {
	_, ok := r.Context().Value(resourceTypeKey{}).(string)
	return ok
}

func (ctrl *FhirResourceController) resourceTypeAndID(r *http.Request) (string, string, error) {
	resourceType, err := ctrl.resourceType(r)
	if err != nil {
		return "", "", err
	}
	id := chi.URLParam(r, "id")
	if id == "" {
		return "", "", exceptions.ErrURLParamIDValidation(nil, "id")
	}
	return resourceType, id, nil
}

func (ctrl *FhirResourceController) parseBody(r *http.Request, resourceType string) (fhir_dto.Resource, error) {
	limit := int64(ctrl.InternalConfig.App.RequestBodyLimitInMegabyte) << 20
	if limit <= 0 {
		limit = 10 << 20
	}
	resource, err := utils.ParseResourceBody(r, limit)
	if err != nil {
		return nil, err
	}
	if bodyType := resource.ResourceType(); bodyType != "" && bodyType != resourceType {
		return nil, exceptions.ErrResourceTypeMismatch(nil, bodyType, resourceType)
	}
	return resource, nil
}

func (ctrl *FhirResourceController) withTimeout(r *http.Request) (context.Context, context.CancelFunc) {
	timeout := time.Duration(ctrl.InternalConfig.App.RequestTimeoutInSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return context.WithTimeout(r.Context(), timeout)
}

// readError: 404 when the FHIR server said not found, otherwise 500.
// Errors that already carry a status keep it.
func readError(err error, resourceType string) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return exceptions.ErrServerDeadlineExceeded(err)
	}
	if fhirErr, ok := exceptions.AsFHIRServerError(err); ok {
		if fhirErr.NotFound() {
			return exceptions.ErrResourceNotFound(err, resourceType)
		}
		return exceptions.ErrFetchResource(err, resourceType)
	}
	if _, ok := exceptions.AsCustomError(err); ok {
		return err
	}
	return exceptions.ErrFetchResource(err, resourceType)
}

// writeError: every unclassified write failure becomes a 400.
func writeError(err error, resourceType string, build func(error, string) *exceptions.CustomError) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return exceptions.ErrServerDeadlineExceeded(err)
	}
	if _, ok := exceptions.AsFHIRServerError(err); ok {
		return build(err, resourceType)
	}
	if _, ok := exceptions.AsCustomError(err); ok {
		return err
	}
	return build(err, resourceType)
}
