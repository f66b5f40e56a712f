package handler

import (
	"net/http"
	"time"

	"landedcost/internal/infra"
	"landedcost/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// HealthHandler reports liveness of the service and its dependencies.
type HealthHandler struct {
	db  *gorm.DB
	rdb *redis.Client
	cb  *infra.CircuitBreaker
}

func NewHealthHandler(db *gorm.DB, rdb *redis.Client, cb *infra.CircuitBreaker) *HealthHandler {
	return &HealthHandler{db: db, rdb: rdb, cb: cb}
}

// Check godoc
// @Summary  Health check
// @Tags     health
// @Success  200 {object} map[string]interface{}
// @Failure  503 {object} map[string]interface{}
// @Router   /health [get]
func (h *HealthHandler) Check(c *gin.Context) {
	ctx := c.Request.Context()
	status := http.StatusOK

	dbStatus := "up"
	if sqlDB, err := h.db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
		dbStatus = "down"
		status = http.StatusServiceUnavailable
	}

	redisStatus := "up"
	if err := h.rdb.Ping(ctx).Err(); err != nil {
		redisStatus = "down"
		status = http.StatusServiceUnavailable
	}

	// -1 when Redis is unreachable; a growing depth means stuck documents
	extractDLQ, err := worker.DLQLength(ctx, h.rdb, worker.QueueExtract)
	if err != nil {
		extractDLQ = -1
	}

	overall := "ok"
	if status != http.StatusOK {
		overall = "degraded"
	}

	c.JSON(status, gin.H{
		"status":    overall,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"checks": gin.H{
			"database": dbStatus,
			"redis":    redisStatus,
			"extractor": gin.H{
				"circuit_breaker": h.cb.State().String(),
				"dlq_depth":       extractDLQ,
			},
		},
	})
}
