package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// PaymentCORS opens the payment endpoint to any storefront origin and
// answers the OPTIONS preflight with 200, matching the function's public
// contract.
func PaymentCORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, Idempotency-Key")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}

		c.Next()
	}
}
