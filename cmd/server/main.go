package main

import (
	"os"

	"github.com/gin-gonic/gin"

	"github.com/AlonLivne007/smart-scheduling-sub000/internal/config"
	"github.com/AlonLivne007/smart-scheduling-sub000/internal/logger"
	"github.com/AlonLivne007/smart-scheduling-sub000/internal/schedrepo"
	"github.com/AlonLivne007/smart-scheduling-sub000/internal/solver"
	"github.com/AlonLivne007/smart-scheduling-sub000/pkg/auth"
	"github.com/AlonLivne007/smart-scheduling-sub000/pkg/database"
	"github.com/AlonLivne007/smart-scheduling-sub000/pkg/handlers"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		os.Exit(1)
	}
	defer log.Sync()

	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Init(cfg.DatabaseURL, cfg.DataPath)
	if err != nil {
		log.Fatal("database init failed", "error", err)
	}

	authSvc := auth.NewService(cfg.JWTSecret, cfg.APIMasterSecret)
	if err := auth.EnsureAdminExists(db, cfg.AdminUsername, cfg.AdminPassword); err != nil {
		log.Warn("could not ensure admin user", "error", err)
	}

	h := handlers.New(
		db,
		authSvc,
		log,
		solver.NewClient(cfg.SolverBaseURL, log),
		schedrepo.NewClient(cfg.ScheduleBaseURL),
		cfg.PollInterval,
	)
	defer h.Close()

	r := handlers.NewRouter(h)

	log.Info("server starting", "port", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("could not run server", "error", err)
	}
}
