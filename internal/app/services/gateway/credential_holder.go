package gateway

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"telehealth-service/internal/app/contracts"
	"telehealth-service/internal/app/models"
	"telehealth-service/internal/pkg/constvars"
	"telehealth-service/internal/pkg/exceptions"
	"telehealth-service/internal/pkg/utils"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

const (
	tokenExpirySkew       = 30 * time.Second
	defaultTokenLifetime  = time.Hour
	maxTokenResponseBytes = 1 << 20
)

// CredentialHolder owns the Medplum access token. Token checks the stored
// token and, when it is missing or about to expire, performs exactly one
// client_credentials login under a lock. Login failures are returned as is.
type CredentialHolder struct {
	tokenURL     string
	clientID     string
	clientSecret string
	client       *http.Client
	store        contracts.TokenStore
	log          *zap.Logger
	now          func() time.Time

	mu sync.Mutex
}

var _ contracts.CredentialProvider = (*CredentialHolder)(nil)

type medplumTokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

func NewCredentialHolder(baseUrl, clientID, clientSecret string, client *http.Client, store contracts.TokenStore, logger *zap.Logger) *CredentialHolder {
	if client == nil {
		client = &http.Client{}
	}
	return &CredentialHolder{
		tokenURL:     strings.TrimRight(baseUrl, "/") + "/" + constvars.OAuthTokenPath,
		clientID:     clientID,
		clientSecret: clientSecret,
		client:       client,
		store:        store,
		log:          logger,
		now:          time.Now,
	}
}

func (h *CredentialHolder) Token(ctx context.Context) (string, error) {
	if token := h.cached(ctx); token != nil {
		return token.Value, nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	// Another caller may have logged in while this one waited.
	if token := h.cached(ctx); token != nil {
		return token.Value, nil
	}

	token, err := h.login(ctx)
	if err != nil {
		return "", err
	}
	if err := h.store.Save(ctx, token); err != nil {
		h.log.Warn("CredentialHolder.Token failed to store access token",
			zap.String(constvars.LoggingRequestIDKey, utils.GetRequestID(ctx)),
			zap.Error(err),
		)
	}
	return token.Value, nil
}

func (h *CredentialHolder) cached(ctx context.Context) *models.AccessToken {
	token, err := h.store.Load(ctx)
	if err != nil {
		h.log.Warn("CredentialHolder.cached failed to load access token",
			zap.String(constvars.LoggingRequestIDKey, utils.GetRequestID(ctx)),
			zap.Error(err),
		)
		return nil
	}
	if !token.ValidAt(h.now(), tokenExpirySkew) {
		return nil
	}
	return token
}

func (h *CredentialHolder) login(ctx context.Context) (*models.AccessToken, error) {
	requestID := utils.GetRequestID(ctx)
	h.log.Info("CredentialHolder.login called", zap.String(constvars.LoggingRequestIDKey, requestID))

	form := url.Values{}
	form.Set("grant_type", constvars.OAuthGrantClientCredentials)
	form.Set("client_id", h.clientID)
	form.Set("client_secret", h.clientSecret)

	req, err := http.NewRequestWithContext(ctx, constvars.MethodPost, h.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, exceptions.ErrMedplumLogin(err)
	}
	req.Header.Set(constvars.HeaderContentType, constvars.MIMEApplicationForm)
	req.Header.Set(constvars.HeaderAccept, constvars.MIMEApplicationJSON)

	resp, err := h.client.Do(req)
	if err != nil {
		h.log.Error("CredentialHolder.login error sending HTTP request",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, exceptions.ErrMedplumLogin(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxTokenResponseBytes))
	if err != nil {
		return nil, exceptions.ErrMedplumLogin(err)
	}
	if resp.StatusCode != constvars.StatusOK {
		loginErr := fmt.Errorf("token endpoint returned status %d: %s", resp.StatusCode, outcomeDiagnostics(body))
		h.log.Error("CredentialHolder.login rejected",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Int(constvars.LoggingStatusCodeKey, resp.StatusCode),
		)
		return nil, exceptions.ErrMedplumLogin(loginErr)
	}

	var tokenResponse medplumTokenResponse
	if err := json.Unmarshal(body, &tokenResponse); err != nil {
		return nil, exceptions.ErrMedplumLogin(err)
	}
	if tokenResponse.AccessToken == "" {
		return nil, exceptions.ErrMedplumLogin(fmt.Errorf("token endpoint returned no access_token"))
	}

	lifetime := time.Duration(tokenResponse.ExpiresIn) * time.Second
	if lifetime <= 0 {
		lifetime = defaultTokenLifetime
	}

	h.log.Info("CredentialHolder.login succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Duration("expires_in", lifetime),
	)
	return &models.AccessToken{Value: tokenResponse.AccessToken, ExpiresAt: h.now().Add(lifetime)}, nil
}
