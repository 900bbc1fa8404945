package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const maxDeviceIDLength = 128

// DeviceKeyMiddleware identifies the calling client for per-client state such as
// phone verification.
func DeviceKeyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("clientKey", ClientKey(c))
		c.Next()
	}
}

// ClientKey returns "device:<id>@<addr>" for a usable X-Device-ID header, else "ip:<addr>".
// The address comes from gin's ClientIP, so forwarding headers only count when the
// peer is a configured trusted proxy.
func ClientKey(c *gin.Context) string {
	ip := c.ClientIP()
	if id := strings.TrimSpace(c.GetHeader("X-Device-ID")); id != "" && len(id) <= maxDeviceIDLength {
		return "device:" + id + "@" + ip
	}
	return "ip:" + ip
}
