package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/AlonLivne007/smart-scheduling-sub000/internal/logger"
	"github.com/AlonLivne007/smart-scheduling-sub000/internal/metrics"
	"github.com/AlonLivne007/smart-scheduling-sub000/internal/models"
	"github.com/AlonLivne007/smart-scheduling-sub000/internal/runs"
	"github.com/AlonLivne007/smart-scheduling-sub000/pkg/auth"
	"github.com/AlonLivne007/smart-scheduling-sub000/pkg/database"
)

// ScheduleSource is the scheduling data backend as the handlers see it.
type ScheduleSource = metrics.DataSource

// SolverAPI is the solver backend surface the handlers use: everything the
// lifecycle controller needs plus single-run fetch.
type SolverAPI interface {
	runs.SolverClient
	GetRun(ctx context.Context, runID string) (*models.OptimizationRun, error)
}

// Handler contains dependencies for the route handlers
type Handler struct {
	DB           *gorm.DB
	Auth         *auth.Service
	Log          *logger.Logger
	Solver       SolverAPI
	Schedules    ScheduleSource
	Metrics      *metrics.Aggregator
	Applier      *runs.Applier
	PollInterval time.Duration

	mu          sync.Mutex
	controllers map[string]*runs.Controller
}

// New wires a handler around its collaborators.
func New(db *gorm.DB, authSvc *auth.Service, log *logger.Logger, solverClient SolverAPI, schedules ScheduleSource, pollInterval time.Duration) *Handler {
	return &Handler{
		DB:           db,
		Auth:         authSvc,
		Log:          log,
		Solver:       solverClient,
		Schedules:    schedules,
		Metrics:      metrics.NewAggregator(schedules),
		Applier:      runs.NewApplier(solverClient, log),
		PollInterval: pollInterval,
		controllers:  map[string]*runs.Controller{},
	}
}

// Controller returns the lifecycle controller for a schedule, creating it on
// first use. One controller per schedule: it is the single writer of that
// schedule's run state, and a second poller against the same schedule must
// never exist.
func (h *Handler) Controller(scheduleID string) *runs.Controller {
	h.mu.Lock()
	defer h.mu.Unlock()
	ctl, ok := h.controllers[scheduleID]
	if !ok {
		ctl = runs.NewController(h.Solver, h.Log, scheduleID, h.PollInterval)
		h.controllers[scheduleID] = ctl
	}
	return ctl
}

// Close tears down all controllers. In-flight requests are abandoned, not
// aborted; their late results are ignored.
func (h *Handler) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ctl := range h.controllers {
		ctl.Close()
	}
	h.controllers = map[string]*runs.Controller{}
}

// RequestLogger tags each request with an id and logs it on completion.
func (h *Handler) RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := uuid.NewString()
		c.Set("requestID", id)
		start := time.Now()
		c.Next()
		h.Log.Info("request",
			"request_id", id,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds())
	}
}

// AuthMiddleware verifies the JWT token for admin routes
func (h *Handler) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader("Authorization")
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}

		// Strip "Bearer " if present
		if len(token) > 7 && token[:7] == "Bearer " {
			token = token[7:]
		}

		claims, err := h.Auth.VerifyToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			c.Abort()
			return
		}

		c.Set("username", claims.Username)
		c.Next()
	}
}

// APIKeyMiddleware verifies the API key for gateway routes using HMAC
func (h *Handler) APIKeyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader("Authorization")
		if key == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "API Key required"})
			c.Abort()
			return
		}

		if len(key) > 7 && key[:7] == "Bearer " {
			key = key[7:]
		}

		userID, err := h.Auth.VerifyHMACKey(key)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid API Key signature"})
			c.Abort()
			return
		}

		// Fetch or create API key record to track usage
		var apiKey database.APIKey
		h.DB.Where(database.APIKey{Key: key}).FirstOrCreate(&apiKey, database.APIKey{
			Key:       key,
			Name:      userID,
			RateLimit: 10000,
		})

		c.Set("apiKey", &apiKey)
		c.Set("userID", userID)
		c.Next()
	}
}

// RecordUsage upserts today's per-key counters in a single query
func (h *Handler) RecordUsage(c *gin.Context, runsSubmitted, runsApplied int) {
	apiKeyRaw, exists := c.Get("apiKey")
	if !exists {
		return
	}
	apiKey := apiKeyRaw.(*database.APIKey)

	today := time.Now().Format("2006-01-02")

	h.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "key_id"}, {Name: "date"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"request_count":  gorm.Expr("request_count + ?", 1),
			"runs_submitted": gorm.Expr("runs_submitted + ?", runsSubmitted),
			"runs_applied":   gorm.Expr("runs_applied + ?", runsApplied),
		}),
	}).Create(&database.APIUsage{
		KeyID:         apiKey.ID,
		Date:          today,
		RequestCount:  1,
		RunsSubmitted: runsSubmitted,
		RunsApplied:   runsApplied,
	})
}
