package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"notes-service/internal/handler"
	"notes-service/internal/model"
	"notes-service/internal/repository"
	"notes-service/internal/seed"
	"notes-service/internal/service"
	"notes-service/pkg/config"
	"notes-service/pkg/database"
	"notes-service/pkg/jwtutil"
	"notes-service/pkg/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var rootCmd = &cobra.Command{
	Use:           "notes-service",
	Short:         "Multi-tenant notes API",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, db, err := bootstrap()
		if err != nil {
			return err
		}
		defer database.Close(db)

		if err := database.MigrateModels(db, model.All()...); err != nil {
			return err
		}
		logger.GetLogger().Info("Database migrated", zap.String("driver", cfg.DB.Driver))
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Replace all data with the demo tenants acme and globex",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, db, err := bootstrap()
		if err != nil {
			return err
		}
		defer database.Close(db)

		if err := database.MigrateModels(db, model.All()...); err != nil {
			return err
		}
		res, err := seed.Run(cmd.Context(), db, service.NewPasswordHasher(cfg.Plan.BcryptCost), cfg.Plan.FreeNoteLimit)
		if err != nil {
			return err
		}
		for email := range res.Users {
			logger.GetLogger().Info("Seeded account", zap.String("email", email))
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().Bool("migrate", true, "run schema migrations before serving")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
}

// bootstrap loads configuration, the logger and the database connection
func bootstrap() (*config.Config, *gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if err := logger.InitLogger(cfg); err != nil {
		return nil, nil, err
	}
	log := logger.GetLogger()
	log.Info("Configuration loaded", cfg.LogConfig()...)

	db, err := database.InitDB(&cfg.DB)
	if err != nil {
		return nil, nil, err
	}
	log.Info("Database connection established")
	return cfg, db, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, db, err := bootstrap()
	if err != nil {
		return err
	}
	defer database.Close(db)
	log := logger.GetLogger()

	if migrate, _ := cmd.Flags().GetBool("migrate"); migrate {
		if err := database.MigrateModels(db, model.All()...); err != nil {
			return err
		}
	}

	tenants := repository.NewTenantStore(db)
	users := repository.NewUserStore(db)
	notes := repository.NewNoteStore(db)
	hasher := service.NewPasswordHasher(cfg.Plan.BcryptCost)
	tokens := jwtutil.NewJWTUtil(&cfg.JWT)

	h := handler.New(
		service.NewAuthService(users, tenants, hasher, tokens),
		service.NewNoteService(notes, service.NewQuotaEngine(db, tenants, notes, cfg.Plan.FreeNoteLimit)),
		service.NewAdminService(tenants, users, hasher, cfg.Plan.FreeNoteLimit),
		db,
	)
	e := handler.NewEcho(h, &cfg.Server)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("Starting server", zap.String("port", cfg.Server.Port))
		errCh <- e.Start(":" + cfg.Server.Port)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		logger.GetLogger().Error("Command failed", zap.Error(err))
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}
