package gateway

import (
	"context"
	"strings"
	"sync"
	"telehealth-service/internal/app/contracts"
	"telehealth-service/internal/app/models"
	"telehealth-service/internal/pkg/constvars"
	"telehealth-service/internal/pkg/dto/requests"
	"telehealth-service/internal/pkg/exceptions"
	"telehealth-service/internal/pkg/fhir_dto"
	"telehealth-service/internal/pkg/utils"

	"go.uber.org/zap"
)

var _ contracts.ResourceRepository = (*MockRepository)(nil)

// MockRepository serves fixed in-memory datasets. It filters on name substring
// and status only, keeps insertion order and assigns ids from a per type counter.
type MockRepository struct {
	Log       *zap.Logger
	mu        sync.RWMutex
	resources map[string][]fhir_dto.Resource
	counters  map[string]int
}

func NewMockRepository(logger *zap.Logger) *MockRepository {
	resources := newMockDatasets()
	counters := make(map[string]int, len(resources))
	for resourceType, items := range resources {
		counters[resourceType] = len(items)
	}
	return &MockRepository{
		Log:       logger,
		resources: resources,
		counters:  counters,
	}
}

func (r *MockRepository) Search(ctx context.Context, resourceType string, query *requests.SearchQuery) (*models.ResourcePage, error) {
	requestID := utils.GetRequestID(ctx)
	r.Log.Info("mockRepository.Search called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingResourceTypeKey, resourceType),
	)

	r.mu.RLock()
	defer r.mu.RUnlock()

	search := strings.ToLower(strings.TrimSpace(query.Search))
	filtered := make([]fhir_dto.Resource, 0, len(r.resources[resourceType]))
	for _, resource := range r.resources[resourceType] {
		if search != "" && !strings.Contains(strings.ToLower(searchableText(resource)), search) {
			continue
		}
		if query.Status != "" {
			status, _ := resource["status"].(string)
			if status != query.Status {
				continue
			}
		}
		filtered = append(filtered, resource)
	}

	_, limit := normalizePaging(query.Page, query.Limit)
	start := pageOffset(query.Page, query.Limit)
	if start < 0 || start > len(filtered) {
		start = len(filtered)
	}
	end := start + limit
	if end > len(filtered) {
		end = len(filtered)
	}

	pageItems := make([]fhir_dto.Resource, 0, end-start)
	for _, resource := range filtered[start:end] {
		pageItems = append(pageItems, resource.Clone())
	}

	r.Log.Info("mockRepository.Search succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int(constvars.LoggingTotalKey, len(filtered)),
	)
	return &models.ResourcePage{Resources: pageItems, Total: len(filtered)}, nil
}

func (r *MockRepository) Read(ctx context.Context, resourceType, id string) (fhir_dto.Resource, error) {
	r.Log.Info("mockRepository.Read called",
		zap.String(constvars.LoggingRequestIDKey, utils.GetRequestID(ctx)),
		zap.String(constvars.LoggingResourceTypeKey, resourceType),
		zap.String(constvars.LoggingResourceIDKey, id),
	)

	r.mu.RLock()
	defer r.mu.RUnlock()

	index := r.indexOf(resourceType, id)
	if index < 0 {
		return nil, mockNotFound(resourceType, "read", id)
	}
	return r.resources[resourceType][index].Clone(), nil
}

func (r *MockRepository) Create(ctx context.Context, resourceType string, resource fhir_dto.Resource) (fhir_dto.Resource, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.counters[resourceType]++
	created := resource.WithIdentity(resourceType, mockID(resourceType, r.counters[resourceType]))
	r.resources[resourceType] = append(r.resources[resourceType], created)

	r.Log.Info("mockRepository.Create succeeded",
		zap.String(constvars.LoggingRequestIDKey, utils.GetRequestID(ctx)),
		zap.String(constvars.LoggingResourceTypeKey, resourceType),
		zap.String(constvars.LoggingResourceIDKey, created.ID()),
	)
	return created.Clone(), nil
}

func (r *MockRepository) Update(ctx context.Context, resourceType, id string, resource fhir_dto.Resource) (fhir_dto.Resource, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	index := r.indexOf(resourceType, id)
	if index < 0 {
		return nil, mockNotFound(resourceType, "update", id)
	}
	updated := resource.WithIdentity(resourceType, id)
	r.resources[resourceType][index] = updated

	r.Log.Info("mockRepository.Update succeeded",
		zap.String(constvars.LoggingRequestIDKey, utils.GetRequestID(ctx)),
		zap.String(constvars.LoggingResourceTypeKey, resourceType),
		zap.String(constvars.LoggingResourceIDKey, id),
	)
	return updated.Clone(), nil
}

func (r *MockRepository) Delete(ctx context.Context, resourceType, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	index := r.indexOf(resourceType, id)
	if index < 0 {
		return mockNotFound(resourceType, "delete", id)
	}
	items := r.resources[resourceType]
	r.resources[resourceType] = append(items[:index:index], items[index+1:]...)

	r.Log.Info("mockRepository.Delete succeeded",
		zap.String(constvars.LoggingRequestIDKey, utils.GetRequestID(ctx)),
		zap.String(constvars.LoggingResourceTypeKey, resourceType),
		zap.String(constvars.LoggingResourceIDKey, id),
	)
	return nil
}

// indexOf must be called with the lock held.
func (r *MockRepository) indexOf(resourceType, id string) int {
	for i, resource := range r.resources[resourceType] {
		if resource.ID() == id {
			return i
		}
	}
	return -1
}

func mockNotFound(resourceType, operation, id string) error {
	return &exceptions.FHIRServerError{
		StatusCode:   constvars.StatusNotFound,
		ResourceType: resourceType,
		Operation:    operation,
		Diagnostics:  "Not found: " + resourceType + "/" + id,
	}
}

// searchableText gathers the text a mock name search matches against.
func searchableText(resource fhir_dto.Resource) string {
	var parts []string
	switch name := resource["name"].(type) {
	case string:
		parts = append(parts, name)
	case []interface{}:
		for _, item := range name {
			humanName, ok := item.(map[string]interface{})
			if !ok {
				continue
			}
			parts = appendStrings(parts, humanName["prefix"])
			parts = appendStrings(parts, humanName["given"])
			parts = appendStrings(parts, humanName["family"])
			parts = appendStrings(parts, humanName["text"])
		}
	}
	for _, key := range []string{"code", "medicationCodeableConcept"} {
		if concept, ok := resource[key].(map[string]interface{}); ok {
			parts = appendStrings(parts, concept["text"])
		}
	}
	parts = appendStrings(parts, resource["description"])
	return strings.Join(parts, " ")
}

func appendStrings(parts []string, value interface{}) []string {
	switch v := value.(type) {
	case string:
		return append(parts, v)
	case []interface{}:
		for _, item := range v {
			if s, ok := item.(string); ok {
				parts = append(parts, s)
			}
		}
	}
	return parts
}
