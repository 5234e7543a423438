package gateway

import (
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"telehealth-service/internal/app/contracts"
	"telehealth-service/internal/app/models"
	"telehealth-service/internal/pkg/constvars"
	"telehealth-service/internal/pkg/dto/requests"
	"telehealth-service/internal/pkg/exceptions"
	"telehealth-service/internal/pkg/fhir_dto"
	"telehealth-service/internal/pkg/utils"

	"github.com/andybalholm/brotli"
	"github.com/goccy/go-json"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

const maxUpstreamBodyBytes = 32 << 20

var (
	_ contracts.ResourceRepository = (*LiveFhirRepository)(nil)
	_ contracts.UpstreamChecker    = (*LiveFhirRepository)(nil)
)

type LiveFhirRepository struct {
	BaseUrl     string
	Log         *zap.Logger
	Client      *http.Client
	Credentials contracts.CredentialProvider
}

// NewLiveFhirRepository talks to {baseUrl}/fhir/R4/ with a bearer token from credentials.
func NewLiveFhirRepository(baseUrl string, client *http.Client, credentials contracts.CredentialProvider, logger *zap.Logger) *LiveFhirRepository {
	if client == nil {
		client = &http.Client{}
	}
	return &LiveFhirRepository{
		BaseUrl:     strings.TrimRight(baseUrl, "/") + "/" + constvars.FhirPathPrefix,
		Log:         logger,
		Client:      client,
		Credentials: credentials,
	}
}

func (r *LiveFhirRepository) Search(ctx context.Context, resourceType string, query *requests.SearchQuery) (*models.ResourcePage, error) {
	requestID := utils.GetRequestID(ctx)
	params := BuildSearchParams(resourceType, query)
	r.Log.Info("liveFhirRepository.Search called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingResourceTypeKey, resourceType),
		zap.String(constvars.LoggingQueryParamsKey, params.Encode()),
	)

	body, err := r.do(ctx, constvars.MethodGet, resourceType+"?"+params.Encode(), nil, resourceType, "search")
	if err != nil {
		return nil, err
	}

	var bundle fhir_dto.Bundle
	if err := json.Unmarshal(body, &bundle); err != nil {
		r.Log.Error("liveFhirRepository.Search error decoding bundle",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, exceptions.ErrDecodeResponse(err, resourceType)
	}

	resources := make([]fhir_dto.Resource, 0, len(bundle.Entry))
	for _, entry := range bundle.Entry {
		if entry.Resource == nil {
			continue
		}
		resources = append(resources, entry.Resource)
	}

	// The server may omit total; the page length is then the best figure available.
	total := len(resources)
	if reported := gjson.GetBytes(body, "total"); reported.Exists() {
		total = int(reported.Int())
	}

	r.Log.Info("liveFhirRepository.Search succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int(constvars.LoggingTotalKey, total),
		zap.Int(constvars.LoggingResponseLengthKey, len(resources)),
	)
	return &models.ResourcePage{Resources: resources, Total: total}, nil
}

func (r *LiveFhirRepository) Read(ctx context.Context, resourceType, id string) (fhir_dto.Resource, error) {
	r.Log.Info("liveFhirRepository.Read called",
		zap.String(constvars.LoggingRequestIDKey, utils.GetRequestID(ctx)),
		zap.String(constvars.LoggingResourceTypeKey, resourceType),
		zap.String(constvars.LoggingResourceIDKey, id),
	)
	body, err := r.do(ctx, constvars.MethodGet, resourceType+"/"+id, nil, resourceType, "read")
	if err != nil {
		return nil, err
	}
	return decodeResource(body, resourceType)
}

func (r *LiveFhirRepository) Create(ctx context.Context, resourceType string, resource fhir_dto.Resource) (fhir_dto.Resource, error) {
	r.Log.Info("liveFhirRepository.Create called",
		zap.String(constvars.LoggingRequestIDKey, utils.GetRequestID(ctx)),
		zap.String(constvars.LoggingResourceTypeKey, resourceType),
	)
	body, err := r.do(ctx, constvars.MethodPost, resourceType, resource, resourceType, "create")
	if err != nil {
		return nil, err
	}
	return decodeResource(body, resourceType)
}

func (r *LiveFhirRepository) Update(ctx context.Context, resourceType, id string, resource fhir_dto.Resource) (fhir_dto.Resource, error) {
	r.Log.Info("liveFhirRepository.Update called",
		zap.String(constvars.LoggingRequestIDKey, utils.GetRequestID(ctx)),
		zap.String(constvars.LoggingResourceTypeKey, resourceType),
		zap.String(constvars.LoggingResourceIDKey, id),
	)
	body, err := r.do(ctx, constvars.MethodPut, resourceType+"/"+id, resource, resourceType, "update")
	if err != nil {
		return nil, err
	}
	return decodeResource(body, resourceType)
}

func (r *LiveFhirRepository) Delete(ctx context.Context, resourceType, id string) error {
	r.Log.Info("liveFhirRepository.Delete called",
		zap.String(constvars.LoggingRequestIDKey, utils.GetRequestID(ctx)),
		zap.String(constvars.LoggingResourceTypeKey, resourceType),
		zap.String(constvars.LoggingResourceIDKey, id),
	)
	_, err := r.do(ctx, constvars.MethodDelete, resourceType+"/"+id, nil, resourceType, "delete")
	return err
}

// CheckUpstream fetches the capability statement.
func (r *LiveFhirRepository) CheckUpstream(ctx context.Context) error {
	_, err := r.do(ctx, constvars.MethodGet, constvars.FhirPathMetadata, nil, "CapabilityStatement", "read")
	return err
}

func (r *LiveFhirRepository) do(ctx context.Context, method, path string, payload fhir_dto.Resource, resourceType, operation string) ([]byte, error) {
	requestID := utils.GetRequestID(ctx)

	token, err := r.Credentials.Token(ctx)
	if err != nil {
		return nil, err
	}

	var reader io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, exceptions.ErrCannotMarshalJSON(err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, r.BaseUrl+path, reader)
	if err != nil {
		r.Log.Error("liveFhirRepository error creating HTTP request",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, exceptions.ErrCreateHTTPRequest(err)
	}
	req.Header.Set(constvars.HeaderAuthorization, constvars.BearerPrefix+token)
	req.Header.Set(constvars.HeaderAccept, constvars.MIMEApplicationFHIRJSON)
	req.Header.Set(constvars.HeaderAcceptEncoding, constvars.StrGzip+", "+constvars.StrBr)
	if payload != nil {
		req.Header.Set(constvars.HeaderContentType, constvars.MIMEApplicationFHIRJSON)
	}

	resp, err := r.Client.Do(req)
	if err != nil {
		r.Log.Error("liveFhirRepository error sending HTTP request",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingMethodKey, method),
			zap.Error(err),
		)
		return nil, exceptions.ErrSendHTTPRequest(err)
	}
	defer resp.Body.Close()

	body, err := readBody(resp)
	if err != nil {
		r.Log.Error("liveFhirRepository error reading response body",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, exceptions.ErrReadHTTPResponse(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		fhirErr := &exceptions.FHIRServerError{
			StatusCode:   resp.StatusCode,
			ResourceType: resourceType,
			Operation:    operation,
			Diagnostics:  outcomeDiagnostics(body),
		}
		r.Log.Error("liveFhirRepository FHIR error",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Int(constvars.LoggingStatusCodeKey, resp.StatusCode),
			zap.Error(fhirErr),
		)
		return nil, fhirErr
	}
	return body, nil
}

func readBody(resp *http.Response) ([]byte, error) {
	var reader io.Reader = resp.Body
	switch strings.ToLower(strings.TrimSpace(resp.Header.Get(constvars.HeaderContentEncoding))) {
	case constvars.StrGzip:
		gzipReader, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer gzipReader.Close()
		reader = gzipReader
	case constvars.StrBr:
		reader = brotli.NewReader(resp.Body)
	}
	return io.ReadAll(io.LimitReader(reader, maxUpstreamBodyBytes))
}

// outcomeDiagnostics pulls a readable message out of an OperationOutcome body.
func outcomeDiagnostics(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	for _, path := range []string{"issue.0.diagnostics", "issue.0.details.text", "issue.0.code"} {
		if value := gjson.GetBytes(body, path); value.Exists() && value.String() != "" {
			return value.String()
		}
	}
	text := strings.TrimSpace(string(body))
	if len(text) > 256 {
		text = text[:256]
	}
	return text
}

func decodeResource(body []byte, resourceType string) (fhir_dto.Resource, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return fhir_dto.Resource{"resourceType": resourceType}, nil
	}
	var resource fhir_dto.Resource
	if err := json.Unmarshal(body, &resource); err != nil {
		return nil, exceptions.ErrDecodeResponse(fmt.Errorf("%s: %w", resourceType, err), resourceType)
	}
	return resource, nil
}
