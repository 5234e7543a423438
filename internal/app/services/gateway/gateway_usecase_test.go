package gateway

import (
	"context"
	"errors"
	"testing"

	"telehealth-service/internal/app/config"
	"telehealth-service/internal/app/models"
	"telehealth-service/internal/pkg/constvars"
	"telehealth-service/internal/pkg/dto/requests"
	"telehealth-service/internal/pkg/fhir_dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// untouchableTokenStore fails the test when the gateway tries to authenticate.
type untouchableTokenStore struct {
	t *testing.T
}

func (s untouchableTokenStore) Load(ctx context.Context) (*models.AccessToken, error) {
	s.t.Fatal("token store must not be used in mock mode")
	return nil, nil
}

func (s untouchableTokenStore) Save(ctx context.Context, token *models.AccessToken) error {
	s.t.Fatal("token store must not be used in mock mode")
	return nil
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) ResourceChanged(ctx context.Context, change *models.ResourceChange) error {
	args := m.Called(ctx, change)
	return args.Error(0)
}

type mockResourceRepository struct {
	mock.Mock
}

func (m *mockResourceRepository) Search(ctx context.Context, resourceType string, query *requests.SearchQuery) (*models.ResourcePage, error) {
	args := m.Called(ctx, resourceType, query)
	page, _ := args.Get(0).(*models.ResourcePage)
	return page, args.Error(1)
}

func (m *mockResourceRepository) Read(ctx context.Context, resourceType, id string) (fhir_dto.Resource, error) {
	args := m.Called(ctx, resourceType, id)
	resource, _ := args.Get(0).(fhir_dto.Resource)
	return resource, args.Error(1)
}

func (m *mockResourceRepository) Create(ctx context.Context, resourceType string, resource fhir_dto.Resource) (fhir_dto.Resource, error) {
	args := m.Called(ctx, resourceType, resource)
	created, _ := args.Get(0).(fhir_dto.Resource)
	return created, args.Error(1)
}

func (m *mockResourceRepository) Update(ctx context.Context, resourceType, id string, resource fhir_dto.Resource) (fhir_dto.Resource, error) {
	args := m.Called(ctx, resourceType, id, resource)
	updated, _ := args.Get(0).(fhir_dto.Resource)
	return updated, args.Error(1)
}

func (m *mockResourceRepository) Delete(ctx context.Context, resourceType, id string) error {
	args := m.Called(ctx, resourceType, id)
	return args.Error(0)
}

func TestEmptyCredentialsSelectMockData(t *testing.T) {
	repo, mode := NewResourceRepository(config.Medplum{BaseUrl: "http://127.0.0.1:1"}, untouchableTokenStore{t: t}, zap.NewNop())
	assert.Equal(t, constvars.GatewayModeMock, mode)

	uc := NewGatewayUsecase(repo, nil, mode, zap.NewNop())
	assert.Equal(t, "mock", uc.Mode())

	for _, resourceType := range []string{"Patient", "Practitioner", "Appointment", "Observation", "MedicationRequest"} {
		result, err := uc.Search(context.Background(), resourceType, &requests.SearchQuery{Page: 1, Limit: 10})
		require.NoError(t, err, resourceType)
		assert.NotEmpty(t, result.Resources, resourceType)
		for _, resource := range result.Resources {
			assert.Contains(t, resource.ID(), "mock-", resourceType)
		}
	}
}

func TestCredentialsSelectLiveRepository(t *testing.T) {
	repo, mode := NewResourceRepository(config.Medplum{BaseUrl: "http://127.0.0.1:1", ClientID: "id", ClientSecret: "secret"}, nil, zap.NewNop())
	assert.Equal(t, constvars.GatewayModeLive, mode)
	assert.IsType(t, &LiveFhirRepository{}, repo)

	_, mode = NewResourceRepository(config.Medplum{ClientID: "id", ClientSecret: "secret", ForceMock: true}, nil, zap.NewNop())
	assert.Equal(t, constvars.GatewayModeMock, mode)
}

func TestGatewaySearchBuildsPagination(t *testing.T) {
	repo := new(mockResourceRepository)
	query := &requests.SearchQuery{Page: 2, Limit: 10}
	repo.On("Search", mock.Anything, "Patient", query).Return(&models.ResourcePage{
		Resources: []fhir_dto.Resource{{"id": "p11"}},
		Total:     25,
	}, nil)

	uc := NewGatewayUsecase(repo, nil, constvars.GatewayModeLive, zap.NewNop())
	result, err := uc.Search(context.Background(), "Patient", query)
	require.NoError(t, err)

	assert.Equal(t, 25, result.Total)
	assert.Equal(t, 3, result.Pagination.TotalPages)
	assert.True(t, result.Pagination.HasNext)
	assert.True(t, result.Pagination.HasPrev)
}

func TestGatewayPassesRepositoryErrorsThrough(t *testing.T) {
	repo := new(mockResourceRepository)
	upstreamErr := errors.New("upstream exploded")
	repo.On("Read", mock.Anything, "Patient", "p1").Return(nil, upstreamErr)

	uc := NewGatewayUsecase(repo, nil, constvars.GatewayModeLive, zap.NewNop())
	_, err := uc.Get(context.Background(), "Patient", "p1")
	assert.Same(t, upstreamErr, err)
}

func TestGatewayUpdateMergesIdentity(t *testing.T) {
	repo := new(mockResourceRepository)
	notifier := new(mockNotifier)
	expected := fhir_dto.Resource{"resourceType": "Appointment", "id": "a1", "status": "cancelled"}
	repo.On("Update", mock.Anything, "Appointment", "a1", expected).Return(expected, nil)
	notifier.On("ResourceChanged", mock.Anything, mock.MatchedBy(func(change *models.ResourceChange) bool {
		return change.Action == "update" && change.ResourceID == "a1" && change.UserID == "u1"
	})).Return(nil)

	uc := NewGatewayUsecase(repo, notifier, constvars.GatewayModeLive, zap.NewNop())
	ctx := models.ContextWithUser(context.Background(), &models.UserContext{ID: "u1", Role: "provider"})

	updated, err := uc.Update(ctx, "Appointment", "a1", fhir_dto.Resource{"status": "cancelled", "id": "other"})
	require.NoError(t, err)
	assert.Equal(t, "a1", updated.ID())
	repo.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestGatewayNotifierFailureDoesNotFailWrite(t *testing.T) {
	repo := new(mockResourceRepository)
	notifier := new(mockNotifier)
	repo.On("Delete", mock.Anything, "Patient", "p1").Return(nil)
	notifier.On("ResourceChanged", mock.Anything, mock.Anything).Return(errors.New("broker down"))

	uc := NewGatewayUsecase(repo, notifier, constvars.GatewayModeLive, zap.NewNop())
	assert.NoError(t, uc.Delete(context.Background(), "Patient", "p1"))
	notifier.AssertNumberOfCalls(t, "ResourceChanged", 1)
}

func TestGatewayCreateDoesNotNotifyOnFailure(t *testing.T) {
	repo := new(mockResourceRepository)
	notifier := new(mockNotifier)
	repo.On("Create", mock.Anything, "Patient", fhir_dto.Resource{"resourceType": "Patient"}).Return(nil, errors.New("rejected"))

	uc := NewGatewayUsecase(repo, notifier, constvars.GatewayModeLive, zap.NewNop())
	_, err := uc.Create(context.Background(), "Patient", fhir_dto.Resource{})
	assert.Error(t, err)
	notifier.AssertNotCalled(t, "ResourceChanged", mock.Anything, mock.Anything)
}
