package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/martijn/homedash/internal/core/repository"
	"github.com/martijn/homedash/internal/core/service"
	"github.com/martijn/homedash/internal/core/telemetry"
	"github.com/martijn/homedash/internal/infrastructure/database"
	"github.com/martijn/homedash/internal/infrastructure/filestore"
	"github.com/martijn/homedash/internal/logging"
	"github.com/martijn/homedash/pkg/config"
	"github.com/spf13/cobra"
)

// Version is overridden at build time with -ldflags "-X".
var Version = "dev"

var (
	cfgFile string
	cfg     *config.Config
	logger  *slog.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "homedash",
	Short: "HomeDash - smart home dashboard backend",
	Long: `HomeDash serves the API behind the smart home dashboard.

It provides:
- Account registration and bearer token login
- Profile, settings, avatar and background management
- Simulated device telemetry for the dashboard widgets`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		logger = logging.New(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat}, Version)
		slog.SetDefault(logger)
		database.SetMigrationLogger(logger)

		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), Version)
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./"+config.DefaultConfigPath+")")
	rootCmd.AddCommand(versionCmd)
}

func openDatabase() (*database.DB, error) {
	db, err := database.New(cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return db, nil
}

// initServices opens the database, brings the schema up to date and wires
// every service.
func initServices(ctx context.Context) (*Services, error) {
	db, err := openDatabase()
	if err != nil {
		return nil, err
	}

	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}

	userRepo := database.NewUserRepository(db)

	tokens, err := service.NewTokenService(cfg.JWTSecretKey, cfg.JWTAlgorithm, cfg.TokenTTL)
	if err != nil {
		db.Close()
		return nil, err
	}

	avatars, err := filestore.NewLocal(cfg.AvatarsDir)
	if err != nil {
		db.Close()
		return nil, err
	}
	backgrounds, err := filestore.NewLocal(cfg.BackgroundsDir)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Services{
		DB:            db,
		UserRepo:      userRepo,
		AuthService:   service.NewAuthService(userRepo, service.NewCredentialStore(cfg.BcryptCost), tokens),
		UserService:   service.NewUserService(userRepo),
		UploadService: service.NewUploadService(userRepo, avatars, backgrounds, cfg.MaxUploadBytes, logger),
		Telemetry:     telemetry.NewGenerator(nil),
	}, nil
}

// Services holds all initialized services
type Services struct {
	DB            *database.DB
	UserRepo      repository.UserRepository
	AuthService   *service.AuthService
	UserService   *service.UserService
	UploadService *service.UploadService
	Telemetry     *telemetry.Generator
}

// Close closes all resources
func (s *Services) Close() {
	if s.DB != nil {
		if err := s.DB.Close(); err != nil {
			logger.Warn("failed to close database", "error", err)
		}
	}
}
