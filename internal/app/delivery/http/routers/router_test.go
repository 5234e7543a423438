package routers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"telehealth-service/internal/app/config"
	"telehealth-service/internal/app/contracts"
	"telehealth-service/internal/app/delivery/http/controllers"
	"telehealth-service/internal/app/delivery/http/middlewares"
	"telehealth-service/internal/app/models"
	"telehealth-service/internal/app/services/auth"
	"telehealth-service/internal/app/services/gateway"
	"telehealth-service/internal/app/services/shared/jwtmanager"
	"telehealth-service/internal/app/services/shared/rbac"
	"telehealth-service/internal/app/services/shared/tokenstore"
	"telehealth-service/internal/pkg/constvars"
	"telehealth-service/internal/pkg/dto/requests"
	"telehealth-service/internal/pkg/dto/responses"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testServer struct {
	router *chi.Mux
	jwt    *jwtmanager.JWTManager
}

type envelope struct {
	Success    bool            `json:"success"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
	Pagination *struct {
		Page       int  `json:"page"`
		Limit      int  `json:"limit"`
		Total      int  `json:"total"`
		TotalPages int  `json:"totalPages"`
		HasNext    bool `json:"hasNext"`
		HasPrev    bool `json:"hasPrev"`
	} `json:"pagination"`
}

func newTestServer(t *testing.T) *testServer {
	return newTestServerWithGateway(t, nil)
}

// newTestServerWithGateway lets a test wrap the mock-mode gateway usecase.
func newTestServerWithGateway(t *testing.T, wrap func(contracts.GatewayUsecase) contracts.GatewayUsecase) *testServer {
	logger := zap.NewNop()

	cfg := &config.InternalConfig{}
	cfg.App.Env = "test"
	cfg.App.Version = "1.2.3"
	cfg.App.MaxRequests = 1000
	cfg.App.MaxTimeRequestsPerSeconds = 1
	cfg.App.RequestBodyLimitInMegabyte = 1
	cfg.App.RequestTimeoutInSeconds = 5
	cfg.CORS.AllowedOrigins = []string{"http://localhost:3000"}
	cfg.JWT.Secret = "access-secret"
	cfg.JWT.RefreshSecret = "refresh-secret"
	cfg.JWT.AccessTokenTTL = 15 * time.Minute
	cfg.JWT.RefreshTokenTTL = time.Hour
	cfg.Medplum.ForceMock = true

	jm, err := jwtmanager.NewJWTManager(cfg, logger)
	require.NoError(t, err)
	authUsecase := auth.NewAuthUsecase(jm, tokenstore.NewMemoryRevocationList(), logger)

	repository, mode := gateway.NewResourceRepository(cfg.Medplum, tokenstore.NewMemoryTokenStore(), logger)
	var gatewayUsecase contracts.GatewayUsecase = gateway.NewGatewayUsecase(repository, nil, mode, logger)
	if wrap != nil {
		gatewayUsecase = wrap(gatewayUsecase)
	}
	policy, err := rbac.NewPolicy()
	require.NoError(t, err)

	router := chi.NewRouter()
	SetupRoutes(
		router,
		cfg,
		middlewares.NewMiddlewares(logger, authUsecase, policy, cfg),
		controllers.NewFhirResourceController(logger, gatewayUsecase, cfg),
		controllers.NewAuthController(logger, authUsecase, policy),
		controllers.NewHealthController(logger, cfg, gatewayUsecase, nil),
	)
	return &testServer{router: router, jwt: jm}
}

func (s *testServer) token(t *testing.T, role, resourceID string) string {
	issued, err := s.jwt.IssueAccessToken(context.Background(), &models.UserContext{ID: role + "-user", Role: role, ResourceID: resourceID})
	require.NoError(t, err)
	return issued.Token
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set(constvars.HeaderAuthorization, constvars.BearerPrefix+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	var env envelope
	_ = json.Unmarshal(rec.Body.Bytes(), &env)
	return rec, env
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec, _ := s.do(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var health map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, "OK", health["status"])
	assert.Equal(t, "test", health["environment"])
	assert.Equal(t, "1.2.3", health["version"])
	assert.Equal(t, map[string]interface{}{"mode": "mock"}, health["fhir"])
	assert.NotEmpty(t, rec.Header().Get(constvars.HeaderXRequestID))
}

func TestFhirRoutesRequireBearerToken(t *testing.T) {
	s := newTestServer(t)
	for _, path := range []string{"/api/fhir/patients", "/api/fhir/medications/mock-medicationrequest-1", "/api/fhir/Encounter"} {
		rec, env := s.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
		assert.False(t, env.Success)
	}
}

func TestPatientListRoleGate(t *testing.T) {
	s := newTestServer(t)

	rec, env := s.do(t, http.MethodGet, "/api/fhir/patients", s.token(t, constvars.RolePatient, "mock-patient-1"), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Access denied. Required roles: provider, admin", env.Message)

	rec, _ = s.do(t, http.MethodGet, "/api/fhir/patients/mock-patient-1", s.token(t, constvars.RolePatient, "mock-patient-1"), nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = s.do(t, http.MethodGet, "/api/fhir/patients/mock-patient-2", s.token(t, constvars.RolePatient, "mock-patient-1"), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestOwnResourceRoutes(t *testing.T) {
	s := newTestServer(t)

	rec, env := s.do(t, http.MethodGet, "/api/fhir/patients/me", s.token(t, constvars.RolePatient, "mock-patient-2"), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var patient map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &patient))
	assert.Equal(t, "mock-patient-2", patient["id"])

	rec, env = s.do(t, http.MethodGet, "/api/fhir/patients/me", s.token(t, constvars.RoleProvider, "mock-practitioner-1"), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Access denied. Required roles: patient, admin", env.Message)

	rec, env = s.do(t, http.MethodGet, "/api/fhir/practitioners/me", s.token(t, constvars.RoleProvider, "mock-practitioner-1"), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var practitioner map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &practitioner))
	assert.Equal(t, "mock-practitioner-1", practitioner["id"])

	rec, _ = s.do(t, http.MethodGet, "/api/fhir/practitioners/me", s.token(t, constvars.RolePatient, "mock-patient-1"), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = s.do(t, http.MethodGet, "/api/fhir/practitioners/me", s.token(t, constvars.RoleAdmin, ""), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code, "accounts without a linked resource have nothing to return")
}

func TestAccessRulesRoute(t *testing.T) {
	s := newTestServer(t)

	rec, _ := s.do(t, http.MethodGet, "/api/auth/policy", s.token(t, constvars.RoleProvider, ""), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, env := s.do(t, http.MethodGet, "/api/auth/policy", s.token(t, constvars.RoleAdmin, ""), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var rules []responses.AccessRule
	require.NoError(t, json.Unmarshal(env.Data, &rules))
	assert.Contains(t, rules, responses.AccessRule{Role: constvars.RoleProvider, Object: rbac.ObjectPatients, Action: rbac.ActionList})
}

type recordingGateway struct {
	contracts.GatewayUsecase
	queries []*requests.SearchQuery
}

func (g *recordingGateway) Search(ctx context.Context, resourceType string, query *requests.SearchQuery) (*responses.SearchResult, error) {
	g.queries = append(g.queries, query)
	return g.GatewayUsecase.Search(ctx, resourceType, query)
}

func TestUnknownQueryKeysOnlyReachGenericRoute(t *testing.T) {
	recorder := &recordingGateway{}
	s := newTestServerWithGateway(t, func(inner contracts.GatewayUsecase) contracts.GatewayUsecase {
		recorder.GatewayUsecase = inner
		return recorder
	})
	token := s.token(t, constvars.RoleProvider, "")

	rec, _ := s.do(t, http.MethodGet, "/api/fhir/appointments?status=booked&_has=Patient:link:name=x", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec, _ = s.do(t, http.MethodGet, "/api/fhir/Encounter?class=VR", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	require.Len(t, recorder.queries, 2)
	assert.Equal(t, "booked", recorder.queries[0].Status)
	assert.Nil(t, recorder.queries[0].Extra, "named routes drop unrecognised keys")
	assert.Equal(t, []string{"VR"}, recorder.queries[1].Extra["class"])
}

func TestSearchPaginationEnvelope(t *testing.T) {
	s := newTestServer(t)

	rec, env := s.do(t, http.MethodGet, "/api/fhir/patients?page=2&limit=2", s.token(t, constvars.RoleProvider, ""), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)
	require.NotNil(t, env.Pagination)
	assert.Equal(t, 2, env.Pagination.Page)
	assert.Equal(t, 2, env.Pagination.Limit)
	assert.Equal(t, 5, env.Pagination.Total)
	assert.Equal(t, 3, env.Pagination.TotalPages)
	assert.True(t, env.Pagination.HasNext)
	assert.True(t, env.Pagination.HasPrev)

	var patients []map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &patients))
	assert.Len(t, patients, 2)
	assert.Equal(t, "mock-patient-3", patients[0]["id"])
}

func TestSearchRejectsInvalidQuery(t *testing.T) {
	s := newTestServer(t)
	token := s.token(t, constvars.RoleAdmin, "")

	for _, query := range []string{"limit=500", "page=0", "sortOrder=sideways", "page=abc", "dateFrom=yesterday", "page=100000000000000000"} {
		rec, _ := s.do(t, http.MethodGet, "/api/fhir/appointments?"+query, token, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, query)
	}
}

func TestGetMissingResourceIs404(t *testing.T) {
	s := newTestServer(t)
	rec, env := s.do(t, http.MethodGet, "/api/fhir/practitioners/nope", s.token(t, constvars.RolePatient, ""), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Practitioner not found", env.Message)
}

func TestCreateThenRead(t *testing.T) {
	s := newTestServer(t)
	token := s.token(t, constvars.RoleProvider, "mock-practitioner-1")

	observation := map[string]interface{}{
		"resourceType": "Observation",
		"status":       "final",
		"code":         map[string]interface{}{"text": "Heart rate"},
	}
	rec, env := s.do(t, http.MethodPost, "/api/fhir/observations", token, observation)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, "mock-observation-5", created["id"])

	rec, env = s.do(t, http.MethodGet, "/api/fhir/observations/mock-observation-5", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var read map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &read))
	assert.Equal(t, "Observation", read["resourceType"])
	assert.Equal(t, "final", read["status"])
}

func TestCreateRejectsWrongResourceType(t *testing.T) {
	s := newTestServer(t)
	rec, _ := s.do(t, http.MethodPost, "/api/fhir/observations", s.token(t, constvars.RoleAdmin, ""), map[string]interface{}{"resourceType": "Patient"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWriteFailureIs400(t *testing.T) {
	s := newTestServer(t)
	token := s.token(t, constvars.RoleAdmin, "")

	rec, _ := s.do(t, http.MethodPut, "/api/fhir/medications/missing", token, map[string]interface{}{"status": "stopped"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = s.do(t, http.MethodDelete, "/api/fhir/medications/missing", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = s.do(t, http.MethodDelete, "/api/fhir/medications/mock-medicationrequest-1", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGenericResourceRoute(t *testing.T) {
	s := newTestServer(t)
	token := s.token(t, constvars.RoleProvider, "")

	rec, env := s.do(t, http.MethodGet, "/api/fhir/Organization", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, env.Pagination.Total)

	rec, _ = s.do(t, http.MethodGet, "/api/fhir/not-a-type", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = s.do(t, http.MethodDelete, "/api/fhir/Organization/mock-organization-1", token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAuthRoutes(t *testing.T) {
	s := newTestServer(t)
	token := s.token(t, constvars.RolePatient, "mock-patient-2")

	rec, env := s.do(t, http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var me map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &me))
	assert.Equal(t, "patient-user", me["id"])
	assert.Equal(t, "mock-patient-2", me["resourceId"])

	rec, _ = s.do(t, http.MethodPost, "/api/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = s.do(t, http.MethodGet, "/api/auth/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = s.do(t, http.MethodPost, "/api/auth/refresh", "", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	refresh, err := s.jwt.IssueRefreshToken(context.Background(), &models.UserContext{ID: "u1", Role: constvars.RoleAdmin})
	require.NoError(t, err)
	rec, env = s.do(t, http.MethodPost, "/api/auth/refresh", "", map[string]string{"refresh_token": refresh.Token})
	require.Equal(t, http.StatusOK, rec.Code)
	var pair map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &pair))
	assert.NotEmpty(t, pair["access_token"])
}

func TestUnknownRoute(t *testing.T) {
	s := newTestServer(t)
	rec, env := s.do(t, http.MethodGet, "/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, env.Success)
}
