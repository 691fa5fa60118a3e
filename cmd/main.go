package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"inkwell/cms/db"
	"inkwell/cms/internal/api"
	"inkwell/cms/internal/audit"
	"inkwell/cms/internal/config"
	"inkwell/cms/internal/ratelimit"
	"inkwell/cms/internal/service"
	"inkwell/cms/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	dbinit "inkwell/cms/db/init"
)

var (
	configPath = flag.String("config", "./config.yaml", "Path to config file")
	port       = flag.Int("port", 0, "Override server port")
)

func main() {
	flag.Parse()

	if err := logger.Init(&logger.Config{
		Level:  "info",
		Format: "console",
	}); err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync()

	cfg := config.LoadConfigOrDefault(*configPath)
	if *port > 0 {
		cfg.Server.Port = *port
	}

	// Reload the logger with the configured sink and rotation.
	if err := logger.Init(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		OutputPath: cfg.Log.OutputPath,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
		Compress:   cfg.Log.Compress,
	}); err != nil {
		logger.Fatal("failed to reinit logger", zap.Error(err))
	}

	dbManager, err := db.NewManager(&db.Config{
		SQLitePath:    cfg.Database.SQLitePath,
		RedisAddr:     cfg.Database.RedisAddr,
		RedisPassword: cfg.Database.RedisPassword,
		RedisDB:       cfg.Database.RedisDB,
	})
	if err != nil {
		logger.Fatal("failed to init database", zap.Error(err))
	}
	defer dbManager.Close()

	if err := bootstrapAdmin(dbManager, cfg); err != nil {
		logger.Fatal("failed to bootstrap admin account", zap.Error(err))
	}

	limiter := ratelimit.New()
	limiter.Start()
	defer limiter.Stop()

	auditWriter := audit.NewWriter(dbManager.DB.SQLite)
	auditWriter.Start()
	defer auditWriter.Stop()

	publisher := service.NewPublisherService(dbManager, auditWriter)
	publisher.Start()
	defer publisher.Stop()

	app := api.NewApp(cfg, dbManager, limiter, auditWriter)
	router := api.SetupRouter(app)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening",
			zap.String("addr", srv.Addr),
			zap.String("mode", cfg.Server.Mode))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("forced shutdown", zap.Error(err))
	}
}

// bootstrapAdmin seeds the first admin account on an empty database so
// a fresh install can be logged into.
func bootstrapAdmin(dbManager *db.Manager, cfg *config.Config) error {
	count, err := dbManager.DB.SQLite.CountUsers()
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	password := cfg.Auth.AdminPassword
	generated := false
	if password == "" {
		password = uuid.New().String()[:16]
		generated = true
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := &dbinit.User{
		ID:           uuid.New().String(),
		Username:     "admin",
		PasswordHash: string(hash),
		Email:        "admin@localhost",
		Role:         "admin",
		Enabled:      true,
	}
	if err := dbManager.DB.SQLite.CreateUser(admin); err != nil {
		return err
	}

	if generated {
		// Shown once; rotate it after first login.
		fmt.Printf("\n  initial admin account: admin / %s\n\n", password)
	}
	logger.Info("seeded admin account", zap.String("username", admin.Username))
	return nil
}
