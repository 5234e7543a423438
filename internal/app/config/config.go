package config

import (
	"errors"
	"fmt"
	"strings"
	"telehealth-service/internal/pkg/utils"
	"time"

	"github.com/joho/godotenv"
)

func init() {
	godotenv.Load()
}

func NewInternalConfig() *InternalConfig {
	return &InternalConfig{
		App: App{
			Env:                        utils.GetEnvString("APP_ENV", "development"),
			Port:                       utils.GetEnvString("PORT", "3001"),
			Version:                    utils.GetEnvString("APP_VERSION", "1.0.0"),
			ShutdownTimeoutInSeconds:   utils.GetEnvInt("APP_SHUTDOWN_TIMEOUT", 10),
			RequestTimeoutInSeconds:    utils.GetEnvInt("APP_REQUEST_TIMEOUT", 30),
			MaxRequests:                utils.GetEnvInt("APP_MAX_REQUEST", 100),
			MaxTimeRequestsPerSeconds:  utils.GetEnvInt("APP_MAX_TIME_REQUESTS_PER_SECONDS", 60),
			RequestBodyLimitInMegabyte: utils.GetEnvInt("APP_REQUEST_BODY_LIMIT_IN_MEGABYTE", 10),
		},
		Medplum: Medplum{
			BaseUrl:        utils.GetEnvString("MEDPLUM_BASE_URL", "https://api.medplum.com/"),
			ClientID:       utils.GetEnvString("MEDPLUM_CLIENT_ID", ""),
			ClientSecret:   utils.GetEnvString("MEDPLUM_CLIENT_SECRET", ""),
			ForceMock:      utils.GetEnvBool("MEDPLUM_USE_MOCK", false),
			RequestTimeout: utils.GetEnvDuration("MEDPLUM_REQUEST_TIMEOUT", 0),
		},
		JWT: JWT{
			Secret:          utils.GetEnvString("JWT_SECRET", ""),
			RefreshSecret:   utils.GetEnvString("JWT_REFRESH_SECRET", ""),
			AccessTokenTTL:  utils.GetEnvDuration("JWT_EXPIRES_IN", 15*time.Minute),
			RefreshTokenTTL: utils.GetEnvDuration("JWT_REFRESH_EXPIRES_IN", 7*24*time.Hour),
		},
		Auth: Auth{
			PublicKey: utils.GetEnvString("AUTH_JWT_PUBLIC_KEY", ""),
			Issuer:    utils.GetEnvString("AUTH_JWT_ISSUER", ""),
			Audience:  utils.GetEnvString("AUTH_JWT_AUDIENCE", ""),
		},
		CORS: CORS{
			AllowedOrigins: utils.GetEnvStringSlice("CORS_ORIGIN", []string{"http://localhost:3000"}),
		},
		Audit: Audit{
			Enabled:    utils.GetEnvBool("AUDIT_ENABLED", false),
			Collection: utils.GetEnvString("AUDIT_COLLECTION", "fhir_audit"),
		},
		Events: Events{
			Enabled:  utils.GetEnvBool("EVENTS_ENABLED", false),
			Exchange: utils.GetEnvString("EVENTS_EXCHANGE", "telehealth.fhir"),
		},
		Probe: Probe{
			CronSpec: utils.GetEnvString("UPSTREAM_PROBE_CRON", "@every 1m"),
		},
		Mailer: Mailer{
			Host:     utils.GetEnvString("EMAIL_HOST", ""),
			Port:     utils.GetEnvInt("EMAIL_PORT", 587),
			Username: utils.GetEnvString("EMAIL_USER", ""),
			Password: utils.GetEnvString("EMAIL_PASSWORD", ""),
			Sender:   utils.GetEnvString("EMAIL_FROM", ""),
		},
		Upload: Upload{
			Directory:     utils.GetEnvString("UPLOAD_DIR", "uploads"),
			MaxFileSizeMB: utils.GetEnvInt("UPLOAD_MAX_FILE_SIZE_MB", 10),
		},
		Stripe: Stripe{
			SecretKey:     utils.GetEnvString("STRIPE_SECRET_KEY", ""),
			WebhookSecret: utils.GetEnvString("STRIPE_WEBHOOK_SECRET", ""),
		},
	}
}

func NewDriverConfig() *DriverConfig {
	return &DriverConfig{
		Redis: Redis{
			Enabled:  utils.GetEnvBool("REDIS_ENABLED", false),
			Host:     utils.GetEnvString("REDIS_HOST", "localhost"),
			Port:     utils.GetEnvString("REDIS_PORT", "6379"),
			Password: utils.GetEnvString("REDIS_PASSWORD", ""),
			DB:       utils.GetEnvInt("REDIS_DB", 0),
		},
		MongoDB: MongoDB{
			Enabled: utils.GetEnvBool("AUDIT_ENABLED", false),
			URI:     utils.GetEnvString("MONGODB_URI", "mongodb://localhost:27017"),
			DbName:  utils.GetEnvString("MONGODB_DB_NAME", "telehealth"),
		},
		RabbitMQ: RabbitMQ{
			Enabled:  utils.GetEnvBool("EVENTS_ENABLED", false),
			Host:     utils.GetEnvString("RABBITMQ_HOST", "localhost"),
			Port:     utils.GetEnvString("RABBITMQ_PORT", "5672"),
			Username: utils.GetEnvString("RABBITMQ_USERNAME", "guest"),
			Password: utils.GetEnvString("RABBITMQ_PASSWORD", "guest"),
		},
		Logger: Logger{
			Level:               utils.GetEnvString("LOGGER_LEVEL", "debug"),
			OutputFileName:      utils.GetEnvString("LOGGER_OUTPUT_FILENAME", "logger.log"),
			OutputErrorFileName: utils.GetEnvString("LOGGER_OUTPUT_ERROR_FILENAME", "logger_error.log"),
		},
	}
}

// Validate reports every missing required secret at once.
func (c *InternalConfig) Validate() error {
	var missing []string
	if c.JWT.Secret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if c.JWT.RefreshSecret == "" {
		missing = append(missing, "JWT_REFRESH_SECRET")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	if c.JWT.AccessTokenTTL <= 0 || c.JWT.RefreshTokenTTL <= 0 {
		return errors.New("JWT_EXPIRES_IN and JWT_REFRESH_EXPIRES_IN must be positive durations")
	}
	return nil
}

// UseMock is fixed for the process lifetime: the explicit flag wins, and
// missing client credentials also force mock data.
func (m Medplum) UseMock() bool {
	return m.ForceMock || m.ClientID == "" || m.ClientSecret == ""
}

func (a App) IsProduction() bool {
	return a.Env == "production"
}
