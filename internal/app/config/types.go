package config

import "time"

type (
	InternalConfig struct {
		App     App
		Medplum Medplum
		JWT     JWT
		Auth    Auth
		CORS    CORS
		Audit   Audit
		Events  Events
		Probe   Probe
		Mailer  Mailer
		Upload  Upload
		Stripe  Stripe
	}
	App struct {
		Env                        string
		Port                       string
		Version                    string
		ShutdownTimeoutInSeconds   int
		RequestTimeoutInSeconds    int
		MaxRequests                int
		MaxTimeRequestsPerSeconds  int
		RequestBodyLimitInMegabyte int
	}
	Medplum struct {
		BaseUrl      string
		ClientID     string
		ClientSecret string
		ForceMock    bool
		// Upstream calls have no timeout when zero.
		RequestTimeout time.Duration
	}
	JWT struct {
		Secret          string
		RefreshSecret   string
		AccessTokenTTL  time.Duration
		RefreshTokenTTL time.Duration
	}
	Auth struct {
		// PEM encoded RSA or EC key of the identity provider.
		PublicKey string
		Issuer    string
		Audience  string
	}
	CORS struct {
		AllowedOrigins []string
	}
	Audit struct {
		Enabled    bool
		Collection string
	}
	Events struct {
		Enabled  bool
		Exchange string
	}
	Probe struct {
		CronSpec string
	}
	Mailer struct {
		Host     string
		Port     int
		Username string
		Password string
		Sender   string
	}
	Upload struct {
		Directory     string
		MaxFileSizeMB int
	}
	Stripe struct {
		SecretKey     string
		WebhookSecret string
	}
)

type (
	DriverConfig struct {
		Redis    Redis
		MongoDB  MongoDB
		RabbitMQ RabbitMQ
		Logger   Logger
	}
	Redis struct {
		Enabled  bool
		Host     string
		Port     string
		Password string
		DB       int
	}
	MongoDB struct {
		Enabled bool
		URI     string
		DbName  string
	}
	RabbitMQ struct {
		Enabled  bool
		Host     string
		Port     string
		Username string
		Password string
	}
	Logger struct {
		Level               string
		OutputFileName      string
		OutputErrorFileName string
	}
)
