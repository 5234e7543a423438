package gateway

import (
	"context"
	"net/http"
	"telehealth-service/internal/app/config"
	"telehealth-service/internal/app/contracts"
	"telehealth-service/internal/app/models"
	"telehealth-service/internal/pkg/constvars"
	"telehealth-service/internal/pkg/dto/requests"
	"telehealth-service/internal/pkg/dto/responses"
	"telehealth-service/internal/pkg/fhir_dto"
	"telehealth-service/internal/pkg/utils"
	"time"

	"go.uber.org/zap"
)

type gatewayUsecase struct {
	Repository contracts.ResourceRepository
	Notifier   contracts.ResourceChangeNotifier
	Log        *zap.Logger
	mode       string
	now        func() time.Time
}

// NewGatewayUsecase wires the gateway to a repository chosen once by the caller.
// Errors from the repository are returned unchanged.
func NewGatewayUsecase(repository contracts.ResourceRepository, notifier contracts.ResourceChangeNotifier, mode string, logger *zap.Logger) contracts.GatewayUsecase {
	if notifier == nil {
		notifier = NewChangeNotifiers()
	}
	return &gatewayUsecase{
		Repository: repository,
		Notifier:   notifier,
		Log:        logger,
		mode:       mode,
		now:        time.Now,
	}
}

// NewResourceRepository picks the mock or live strategy from the Medplum
// settings. In mock mode the token store is never touched.
func NewResourceRepository(cfg config.Medplum, tokenStore contracts.TokenStore, logger *zap.Logger) (contracts.ResourceRepository, string) {
	if cfg.UseMock() {
		logger.Info("Gateway running with mock FHIR data", zap.String(constvars.LoggingModeKey, constvars.GatewayModeMock))
		return NewMockRepository(logger), constvars.GatewayModeMock
	}

	client := &http.Client{Timeout: cfg.RequestTimeout}
	credentials := NewCredentialHolder(cfg.BaseUrl, cfg.ClientID, cfg.ClientSecret, client, tokenStore, logger)
	logger.Info("Gateway running against Medplum",
		zap.String(constvars.LoggingModeKey, constvars.GatewayModeLive),
		zap.String(constvars.LoggingURLKey, cfg.BaseUrl),
	)
	return NewLiveFhirRepository(cfg.BaseUrl, client, credentials, logger), constvars.GatewayModeLive
}

func (uc *gatewayUsecase) Mode() string {
	return uc.mode
}

func (uc *gatewayUsecase) Search(ctx context.Context, resourceType string, query *requests.SearchQuery) (*responses.SearchResult, error) {
	requestID := utils.GetRequestID(ctx)
	uc.Log.Info("gatewayUsecase.Search called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingResourceTypeKey, resourceType),
	)

	page, err := uc.Repository.Search(ctx, resourceType, query)
	if err != nil {
		uc.Log.Error("gatewayUsecase.Search error from repository",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}

	pageNumber, limit := normalizePaging(query.Page, query.Limit)
	result := &responses.SearchResult{
		Resources:  page.Resources,
		Total:      page.Total,
		Pagination: utils.BuildPagination(pageNumber, limit, page.Total),
	}
	if result.Resources == nil {
		result.Resources = []fhir_dto.Resource{}
	}

	uc.Log.Info("gatewayUsecase.Search succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int(constvars.LoggingTotalKey, result.Total),
	)
	return result, nil
}

func (uc *gatewayUsecase) Get(ctx context.Context, resourceType, id string) (fhir_dto.Resource, error) {
	uc.Log.Info("gatewayUsecase.Get called",
		zap.String(constvars.LoggingRequestIDKey, utils.GetRequestID(ctx)),
		zap.String(constvars.LoggingResourceTypeKey, resourceType),
		zap.String(constvars.LoggingResourceIDKey, id),
	)
	return uc.Repository.Read(ctx, resourceType, id)
}

func (uc *gatewayUsecase) Create(ctx context.Context, resourceType string, resource fhir_dto.Resource) (fhir_dto.Resource, error) {
	uc.Log.Info("gatewayUsecase.Create called",
		zap.String(constvars.LoggingRequestIDKey, utils.GetRequestID(ctx)),
		zap.String(constvars.LoggingResourceTypeKey, resourceType),
	)

	created, err := uc.Repository.Create(ctx, resourceType, resource.WithIdentity(resourceType, ""))
	if err != nil {
		return nil, err
	}
	uc.notify(ctx, resourceType, created.ID(), constvars.AuditActionCreate)
	return created, nil
}

// Update replaces the stored resource with the caller's object. Only id and
// resourceType are merged in; fields the caller leaves out are dropped.
func (uc *gatewayUsecase) Update(ctx context.Context, resourceType, id string, resource fhir_dto.Resource) (fhir_dto.Resource, error) {
	uc.Log.Info("gatewayUsecase.Update called",
		zap.String(constvars.LoggingRequestIDKey, utils.GetRequestID(ctx)),
		zap.String(constvars.LoggingResourceTypeKey, resourceType),
		zap.String(constvars.LoggingResourceIDKey, id),
	)

	updated, err := uc.Repository.Update(ctx, resourceType, id, resource.WithIdentity(resourceType, id))
	if err != nil {
		return nil, err
	}
	uc.notify(ctx, resourceType, id, constvars.AuditActionUpdate)
	return updated, nil
}

func (uc *gatewayUsecase) Delete(ctx context.Context, resourceType, id string) error {
	uc.Log.Info("gatewayUsecase.Delete called",
		zap.String(constvars.LoggingRequestIDKey, utils.GetRequestID(ctx)),
		zap.String(constvars.LoggingResourceTypeKey, resourceType),
		zap.String(constvars.LoggingResourceIDKey, id),
	)

	if err := uc.Repository.Delete(ctx, resourceType, id); err != nil {
		return err
	}
	uc.notify(ctx, resourceType, id, constvars.AuditActionDelete)
	return nil
}

func (uc *gatewayUsecase) notify(ctx context.Context, resourceType, id, action string) {
	change := &models.ResourceChange{
		ResourceType: resourceType,
		ResourceID:   id,
		Action:       action,
		RequestID:    utils.GetRequestID(ctx),
		OccurredAt:   uc.now().UTC(),
	}
	if user, ok := models.UserFromContext(ctx); ok {
		change.UserID = user.ID
		change.Role = user.Role
	}

	if err := uc.Notifier.ResourceChanged(ctx, change); err != nil {
		uc.Log.Warn("gatewayUsecase.notify failed",
			zap.String(constvars.LoggingRequestIDKey, change.RequestID),
			zap.String(constvars.LoggingResourceTypeKey, resourceType),
			zap.String(constvars.LoggingResourceIDKey, id),
			zap.Error(err),
		)
	}
}
