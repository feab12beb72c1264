package handler

import (
	"context"
	"net/http"
	"time"

	"kecdesk/internal/dto"
	"kecdesk/internal/infra"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Version is stamped at build time with -ldflags.
var Version = "dev"

// BreakerReporter exposes the state of an outbound circuit breaker.
type BreakerReporter interface {
	BreakerState() infra.BreakerState
}

// Health checks DB and Redis connectivity; never exposes credentials or
// internals. Redis is optional and only reported when a client is wired.
func Health(db *gorm.DB, rdb *redis.Client, mail BreakerReporter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		resp := dto.HealthResponse{Status: "ok", Version: Version, MailBreaker: "n/a"}

		if db != nil {
			if sqlDB, err := db.DB(); err == nil && sqlDB.PingContext(ctx) == nil {
				resp.DB = true
			}
		}
		redisOK := true
		if rdb != nil {
			resp.Redis = rdb.Ping(ctx).Err() == nil
			redisOK = resp.Redis
		}
		if mail != nil {
			resp.MailBreaker = mail.BreakerState().String()
		}

		status := http.StatusOK
		if !resp.DB || !redisOK {
			status = http.StatusServiceUnavailable
			resp.Status = "degraded"
		}
		c.JSON(status, resp)
	}
}
