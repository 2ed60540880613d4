package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"go.uber.org/zap"

	auth "github.com/hauslet/go-auth"
)

func main() {
	cfg, err := auth.LoadConfig()
	if err != nil {
		zap.NewExample().Fatal("config load failed", zap.Error(err))
	}

	logger, err := newLogger(cfg)
	if err != nil {
		zap.NewExample().Fatal("logger init failed", zap.Error(err))
	}
	defer logger.Sync()

	db, err := openDatabase(cfg)
	if err != nil {
		logger.Fatal("database open failed", zap.Error(err))
	}
	defer db.Close()

	if err := createSchema(context.Background(), db); err != nil {
		logger.Fatal("schema init failed", zap.Error(err))
	}

	authLogger := &zapLogger{log: logger.Sugar()}

	repo := auth.NewRepositoryManager(db)
	repo.MustValidate()

	auther := auth.NewAuthenticator(repo, cfg).WithLogger(authLogger)
	ledger := auth.NewResetLedger(repo,
		auth.WithResetTTL(cfg.ResetTokenTTL),
		auth.WithResetLogger(authLogger),
	)

	app := fiber.New(fiber.Config{
		AppName:               "authd",
		DisableStartupMessage: cfg.Environment != "development",
	})

	auth.RegisterAuthRoutes(app,
		auth.WithRepositoryManager(repo),
		auth.WithAuthenticator(auther),
		auth.WithResetLedger(ledger),
		auth.WithControllerLogger(authLogger),
		auth.WithControllerDebug(cfg.Debug),
	)

	go func() {
		if err := app.Listen(":" + cfg.HTTPPort); err != nil {
			logger.Error("http server stopped", zap.Error(err))
		}
	}()

	logger.Info("authd listening", zap.String("port", cfg.HTTPPort), zap.String("env", cfg.Environment))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	if err := app.Shutdown(); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}
}

func newLogger(cfg *auth.AppConfig) (*zap.Logger, error) {
	if cfg.Environment == "development" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func openDatabase(cfg *auth.AppConfig) (*bun.DB, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}

	db := bun.NewDB(sqldb, sqlitedialect.New())
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func createSchema(ctx context.Context, db *bun.DB) error {
	models := []any{
		(*auth.User)(nil),
		(*auth.PasswordResetToken)(nil),
	}

	for _, model := range models {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return err
		}
	}

	// unique index on lower(email) backs the case-insensitive lookup,
	// (user_id, used) supports the invalidate-prior-tokens step
	indexes := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email_lower ON users (lower(email))`,
		`CREATE INDEX IF NOT EXISTS idx_reset_tokens_account ON password_reset_tokens (user_id, used)`,
	}

	for _, stmt := range indexes {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}

	return nil
}

// zapLogger adapts zap's sugared logger to the auth.Logger interface
type zapLogger struct {
	log *zap.SugaredLogger
}

func (z *zapLogger) Debug(format string, args ...any) { z.log.Debugf(format, args...) }
func (z *zapLogger) Info(format string, args ...any)  { z.log.Infof(format, args...) }
func (z *zapLogger) Warn(format string, args ...any)  { z.log.Warnf(format, args...) }
func (z *zapLogger) Error(format string, args ...any) { z.log.Errorf(format, args...) }
