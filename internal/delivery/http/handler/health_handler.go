package handler

import (
	"context"
	"net/http"
	"time"

	"repairdesk/pkg/response"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type HealthHandler struct {
	log         *logrus.Logger
	db          *gorm.DB
	redisClient *redis.Client
}

func NewHealthHandler(log *logrus.Logger, db *gorm.DB, redisClient *redis.Client) *HealthHandler {
	return &HealthHandler{
		log:         log,
		db:          db,
		redisClient: redisClient,
	}
}

// Health reports liveness
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready reports whether postgres and redis answer a ping
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	checks := map[string]string{"postgres": "ok", "redis": "ok"}
	ready := true

	sqlDB, err := h.db.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		h.log.Warnf("Failed to ping database: %+v", err)
		checks["postgres"] = "unavailable"
		ready = false
	}

	if err := h.redisClient.Ping(ctx).Err(); err != nil {
		h.log.Warnf("Failed to ping redis: %+v", err)
		checks["redis"] = "unavailable"
		ready = false
	}

	if !ready {
		response.Error(w, http.StatusServiceUnavailable, "Service not ready", checks)
		return
	}
	response.Success(w, http.StatusOK, "Service ready", checks)
}
