package controllers

import (
	"net/http"
	"telehealth-service/internal/app/config"
	"telehealth-service/internal/app/contracts"
	"telehealth-service/internal/pkg/constvars"
	"telehealth-service/internal/pkg/dto/responses"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

type HealthController struct {
	Log            *zap.Logger
	InternalConfig *config.InternalConfig
	GatewayUsecase contracts.GatewayUsecase
	// Upstream is nil in mock mode.
	Upstream  contracts.UpstreamStatusReader
	startedAt time.Time
	now       func() time.Time
}

func NewHealthController(logger *zap.Logger, internalConfig *config.InternalConfig, gatewayUsecase contracts.GatewayUsecase, upstream contracts.UpstreamStatusReader) *HealthController {
	return &HealthController{
		Log:            logger,
		InternalConfig: internalConfig,
		GatewayUsecase: gatewayUsecase,
		Upstream:       upstream,
		startedAt:      time.Now(),
		now:            time.Now,
	}
}

// Check writes the health document without the usual response envelope.
func (ctrl *HealthController) Check(w http.ResponseWriter, r *http.Request) {
	now := ctrl.now()
	health := responses.Health{
		Status:      constvars.HealthStatusOK,
		Timestamp:   now.UTC().Format(time.RFC3339),
		Uptime:      now.Sub(ctrl.startedAt).Seconds(),
		Environment: ctrl.InternalConfig.App.Env,
		Version:     ctrl.InternalConfig.App.Version,
		FHIR: responses.HealthFHIR{
			Mode: ctrl.GatewayUsecase.Mode(),
		},
	}

	if ctrl.Upstream != nil {
		if last := ctrl.Upstream.LastStatus(); last != nil {
			upstream := &responses.UpstreamStatus{
				Status:    last.Status,
				LatencyMs: last.Latency.Milliseconds(),
				Error:     last.Error,
			}
			if !last.CheckedAt.IsZero() {
				upstream.CheckedAt = last.CheckedAt.UTC().Format(time.RFC3339)
			}
			health.FHIR.Upstream = upstream
		}
	}

	w.Header().Set(constvars.HeaderContentType, constvars.MIMEApplicationJSON)
	w.WriteHeader(constvars.StatusOK)
	if err := json.NewEncoder(w).Encode(health); err != nil {
		ctrl.Log.Error("HealthController.Check error encoding response", zap.Error(err))
	}
}
