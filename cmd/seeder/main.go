package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"telehealth-service/internal/app/config"
	"telehealth-service/internal/app/contracts"
	"telehealth-service/internal/app/drivers/logger"
	"telehealth-service/internal/app/services/gateway"
	"telehealth-service/internal/app/services/seeder"
	"telehealth-service/internal/app/services/shared/tokenstore"
	"telehealth-service/internal/pkg/constvars"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "seeder",
		Short:        "Seed a Medplum project with synthetic telehealth data",
		SilenceUsage: true,
	}
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(demoUsersCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func seedCmd() *cobra.Command {
	var (
		opts       seeder.Options
		seed       int64
		ratePerSec float64
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create organizations, practitioners, patients and their clinical data",
		RunE: func(cmd *cobra.Command, args []string) error {
			log, repository, err := setup()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			log.WithFields(logrus.Fields{
				"organizations": opts.Organizations,
				"practitioners": opts.Practitioners,
				"patients":      opts.Patients,
				"seed":          seed,
			}).Info("Seeding started")

			runner := seeder.NewRunner(repository, seeder.NewGenerator(seed), ratePerSec, log)
			summary, err := runner.Run(ctx, opts)
			if err != nil {
				log.WithError(err).Error("Seeding stopped")
				return err
			}
			for resourceType, n := range summary.Created {
				fmt.Printf("%-18s created %d\n", resourceType, n)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&opts.Organizations, "organizations", 2, "number of organizations")
	cmd.Flags().IntVar(&opts.Practitioners, "practitioners", 5, "number of practitioners")
	cmd.Flags().IntVar(&opts.Patients, "patients", 20, "number of patients")
	cmd.Flags().Int64Var(&seed, "seed", time.Now().UnixNano(), "random seed for reproducible data")
	cmd.Flags().Float64Var(&ratePerSec, "rate", 10, "maximum FHIR requests per second, 0 for unlimited")
	return cmd
}

func demoUsersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "demo-users",
		Short: "Create one demo practitioner and one demo patient",
		RunE: func(cmd *cobra.Command, args []string) error {
			log, repository, err := setup()
			if err != nil {
				return err
			}
			runner := seeder.NewRunner(repository, seeder.NewGenerator(1), 0, log)
			practitioner, patient, err := runner.DemoUsers(cmd.Context())
			if err != nil {
				log.WithError(err).Error("Failed to create demo users")
				return err
			}
			log.WithFields(logrus.Fields{
				"practitioner": practitioner.Reference,
				"patient":      patient.Reference,
			}).Info("Demo users ready")
			return nil
		},
	}
}

// setup refuses to run against mock data: seeding only makes sense upstream.
func setup() (*logrus.Logger, contracts.ResourceRepository, error) {
	internalConfig := config.NewInternalConfig()
	driverConfig := config.NewDriverConfig()
	log := logger.NewLogrusLogger(internalConfig.App.Env, driverConfig.Logger.Level)

	if internalConfig.Medplum.UseMock() {
		return nil, nil, errors.New("MEDPLUM_CLIENT_ID and MEDPLUM_CLIENT_SECRET are required and MEDPLUM_USE_MOCK must be false")
	}

	repository, mode := gateway.NewResourceRepository(internalConfig.Medplum, tokenstore.NewMemoryTokenStore(), zap.NewNop())
	if mode != constvars.GatewayModeLive {
		return nil, nil, fmt.Errorf("unexpected gateway mode %s", mode)
	}
	return log, repository, nil
}
