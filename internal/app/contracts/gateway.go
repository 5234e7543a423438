package contracts

import (
	"context"
	"telehealth-service/internal/app/models"
	"telehealth-service/internal/pkg/dto/requests"
	"telehealth-service/internal/pkg/dto/responses"
	"telehealth-service/internal/pkg/fhir_dto"
)

type GatewayUsecase interface {
	Search(ctx context.Context, resourceType string, query *requests.SearchQuery) (*responses.SearchResult, error)
	Get(ctx context.Context, resourceType, id string) (fhir_dto.Resource, error)
	Create(ctx context.Context, resourceType string, resource fhir_dto.Resource) (fhir_dto.Resource, error)
	Update(ctx context.Context, resourceType, id string, resource fhir_dto.Resource) (fhir_dto.Resource, error)
	Delete(ctx context.Context, resourceType, id string) error
	Mode() string
}

// ResourceRepository is the storage strategy behind the gateway: either the
// live FHIR server or the in-memory mock datasets.
type ResourceRepository interface {
	Search(ctx context.Context, resourceType string, query *requests.SearchQuery) (*models.ResourcePage, error)
	Read(ctx context.Context, resourceType, id string) (fhir_dto.Resource, error)
	Create(ctx context.Context, resourceType string, resource fhir_dto.Resource) (fhir_dto.Resource, error)
	Update(ctx context.Context, resourceType, id string, resource fhir_dto.Resource) (fhir_dto.Resource, error)
	Delete(ctx context.Context, resourceType, id string) error
}

type UpstreamChecker interface {
	CheckUpstream(ctx context.Context) error
}

type CredentialProvider interface {
	Token(ctx context.Context) (string, error)
}

type ResourceChangeNotifier interface {
	ResourceChanged(ctx context.Context, change *models.ResourceChange) error
}
