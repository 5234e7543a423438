package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"telehealth-service/internal/app/config"
	"telehealth-service/internal/app/contracts"
	"telehealth-service/internal/app/delivery/http/controllers"
	"telehealth-service/internal/app/delivery/http/middlewares"
	"telehealth-service/internal/app/delivery/http/routers"
	"telehealth-service/internal/app/drivers/database"
	"telehealth-service/internal/app/drivers/logger"
	"telehealth-service/internal/app/drivers/messaging"
	"telehealth-service/internal/app/services/auth"
	"telehealth-service/internal/app/services/gateway"
	"telehealth-service/internal/app/services/shared/audit"
	"telehealth-service/internal/app/services/shared/events"
	"telehealth-service/internal/app/services/shared/jwtmanager"
	"telehealth-service/internal/app/services/shared/rbac"
	"telehealth-service/internal/app/services/shared/redis"
	"telehealth-service/internal/app/services/shared/tokenstore"
	"telehealth-service/internal/app/services/shared/upstream"
	"telehealth-service/internal/pkg/constvars"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func main() {
	driverConfig := config.NewDriverConfig()
	internalConfig := config.NewInternalConfig()

	log := logger.NewZapLogger(driverConfig, internalConfig)

	if err := internalConfig.Validate(); err != nil {
		log.Fatal("Invalid configuration", zap.Error(err))
	}

	bootstrap := &config.Bootstrap{
		Router:         chi.NewRouter(),
		Logger:         log,
		InternalConfig: internalConfig,
		DriverConfig:   driverConfig,
	}

	connectCtx, cancelConnect := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelConnect()
	if err := connectDrivers(connectCtx, bootstrap); err != nil {
		log.Fatal("Failed to connect drivers", zap.Error(err))
	}

	if err := bootstrapingTheApp(bootstrap); err != nil {
		log.Fatal("Failed to bootstrap the app", zap.Error(err))
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", internalConfig.App.Port),
		Handler:           bootstrap.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("Server started", zap.String("addr", server.Addr), zap.String(constvars.LoggingModeKey, modeName(internalConfig)))
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	<-c

	log.Info("Waiting for pending requests that already received by server to be processed..")

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Second*time.Duration(internalConfig.App.ShutdownTimeoutInSeconds),
	)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := bootstrap.Shutdown(shutdownCtx); err != nil {
		log.Error("Failed to release resources", zap.Error(err))
	}
}

func modeName(internalConfig *config.InternalConfig) string {
	if internalConfig.Medplum.UseMock() {
		return constvars.GatewayModeMock
	}
	return constvars.GatewayModeLive
}

// connectDrivers dials only the backends that are switched on.
func connectDrivers(ctx context.Context, bootstrap *config.Bootstrap) error {
	var err error
	if bootstrap.DriverConfig.Redis.Enabled {
		if bootstrap.Redis, err = database.NewRedisClient(ctx, bootstrap.DriverConfig); err != nil {
			return err
		}
	}
	if bootstrap.InternalConfig.Audit.Enabled {
		if bootstrap.Mongo, err = database.NewMongoDB(ctx, bootstrap.DriverConfig); err != nil {
			return err
		}
	}
	if bootstrap.InternalConfig.Events.Enabled {
		if bootstrap.RabbitMQ, err = messaging.NewRabbitMQ(bootstrap.DriverConfig); err != nil {
			return err
		}
	}
	return nil
}

func bootstrapingTheApp(bootstrap *config.Bootstrap) error {
	log := bootstrap.Logger
	internalConfig := bootstrap.InternalConfig

	// Token stores
	var tokenStore contracts.TokenStore = tokenstore.NewMemoryTokenStore()
	var revocations contracts.TokenRevocationList = tokenstore.NewMemoryRevocationList()
	if bootstrap.Redis != nil {
		redisRepository := redis.NewRedisRepository(bootstrap.Redis)
		tokenStore = tokenstore.NewRedisTokenStore(redisRepository)
		revocations = tokenstore.NewRedisRevocationList(redisRepository)
	}

	// Change notifiers
	var notifiers []contracts.ResourceChangeNotifier
	if bootstrap.Mongo != nil {
		auditRepository := audit.NewAuditMongoRepository(bootstrap.Mongo, bootstrap.DriverConfig.MongoDB.DbName, internalConfig.Audit.Collection)
		notifiers = append(notifiers, audit.NewNotifier(auditRepository, log))
	}
	if bootstrap.RabbitMQ != nil {
		publisher, err := events.NewRabbitMQPublisher(bootstrap.RabbitMQ, internalConfig.Events.Exchange)
		if err != nil {
			return err
		}
		notifiers = append(notifiers, events.NewNotifier(publisher, log))
	}

	// Gateway
	repository, mode := gateway.NewResourceRepository(internalConfig.Medplum, tokenStore, log)
	gatewayUsecase := gateway.NewGatewayUsecase(repository, gateway.NewChangeNotifiers(notifiers...), mode, log)

	// Upstream probe, live mode only
	var upstreamStatus contracts.UpstreamStatusReader
	if checker, ok := repository.(contracts.UpstreamChecker); ok && mode == constvars.GatewayModeLive {
		worker := upstream.NewWorker(log, checker, internalConfig.Probe.CronSpec)
		worker.Start(context.Background())
		bootstrap.WorkerStop = worker.Stop
		upstreamStatus = worker
	}

	// Auth
	jwtManager, err := jwtmanager.NewJWTManager(internalConfig, log)
	if err != nil {
		return err
	}
	authUsecase := auth.NewAuthUsecase(jwtManager, revocations, log)
	policy, err := rbac.NewPolicy()
	if err != nil {
		return err
	}

	routers.SetupRoutes(
		bootstrap.Router,
		internalConfig,
		middlewares.NewMiddlewares(log, authUsecase, policy, internalConfig),
		controllers.NewFhirResourceController(log, gatewayUsecase, internalConfig),
		controllers.NewAuthController(log, authUsecase, policy),
		controllers.NewHealthController(log, internalConfig, gatewayUsecase, upstreamStatus),
	)
	return nil
}
