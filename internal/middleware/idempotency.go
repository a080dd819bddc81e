package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const (
	idempotencyCacheKeyCtx = "idempotency_cache_key"
	idempotencyLockKeyCtx  = "idempotency_lock_key"
)

// Idempotency replays the cached response for a repeated Idempotency-Key and
// rejects a duplicate that arrives while the first attempt is still running.
// Only POSTs carrying the header are affected.
func Idempotency(rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		idempKey := c.GetHeader("Idempotency-Key")
		employeeID := c.GetString("employee_id")

		if idempKey == "" || c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		cacheKey := fmt.Sprintf("idemp:%s:%s:%s", c.FullPath(), employeeID, idempKey)
		lockKey := cacheKey + ":lock"

		val, err := rdb.Get(c.Request.Context(), cacheKey).Result()
		if err == nil {
			var cachedRes any
			json.Unmarshal([]byte(val), &cachedRes)
			c.AbortWithStatusJSON(http.StatusOK, gin.H{"status": "success", "data": cachedRes})
			return
		}

		// SetNX lock with a short expiry so a crashed attempt cannot wedge
		// the key forever.
		isNew, _ := rdb.SetNX(c.Request.Context(), lockKey, "locked", 30*time.Second).Result()

		if !isNew {
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{
				"code":    "PROCESSING",
				"message": "Your request is still being processed, please wait",
			})
			return
		}

		// Handler removes the lock and fills the cache once it finishes.
		c.Set(idempotencyCacheKeyCtx, cacheKey)
		c.Set(idempotencyLockKeyCtx, lockKey)

		c.Next()
	}
}
