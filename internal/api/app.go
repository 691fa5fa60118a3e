package api

import (
	"inkwell/cms/db"
	"inkwell/cms/internal/audit"
	"inkwell/cms/internal/config"
	"inkwell/cms/internal/ratelimit"
)

// App carries the shared dependencies every handler needs. Handlers
// hold an *App instead of reaching for globals.
type App struct {
	Config  *config.Config
	DB      *db.Manager
	Limiter *ratelimit.Limiter
	Audit   *audit.Writer
}

// NewApp bundles the application dependencies.
func NewApp(cfg *config.Config, dbManager *db.Manager, limiter *ratelimit.Limiter, auditWriter *audit.Writer) *App {
	return &App{
		Config:  cfg,
		DB:      dbManager,
		Limiter: limiter,
		Audit:   auditWriter,
	}
}
