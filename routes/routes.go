package routes

import (
	"net/http"
	"time"

	"fashionstudio/handlers"
	"fashionstudio/middleware"
	"fashionstudio/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterAuthRoutes registers phone, email and Firebase sign-in endpoints.
func RegisterAuthRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/auth")
	{
		phone := api.Group("/phone")
		phone.Use(middleware.DeviceKeyMiddleware())
		phone.POST("/request", hb.RequestPhoneCodeHandler)
		phone.POST("/verify", hb.VerifyPhoneCodeHandler)
		phone.POST("/session", hb.CompletePhoneSession)
		phone.POST("/cancel", hb.CancelPhoneHandler)
		phone.GET("/status", hb.PhoneStatusHandler)

		api.POST("/email/signup", hb.SignupHandler)
		api.POST("/email/login", hb.LoginHandler)
		api.POST("/firebase", hb.FirebaseExchangeHandler)
	}
}

// RegisterStudioRoutes registers the authenticated profile and studio endpoints.
func RegisterStudioRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api")
	{
		// Protected routes (Require Authentication)
		api.Use(middleware.JWTAuthMiddleware())
		api.GET("/profile", hb.GetProfileHandler)
		api.PATCH("/profile", hb.UpdateProfileHandler)

		api.POST("/uploads/:kind", hb.UploadFileHandler)
		api.POST("/studio/generate", hb.GenerateHandler)
		api.GET("/lookbook", hb.LookbookHandler)
		api.GET("/lookbook/:id", hb.LookbookImageHandler)
		api.GET("/catalog/models", hb.CatalogHandler)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		status := utils.GetHealthStatus()
		code := http.StatusOK
		for _, up := range status.Services {
			if !up {
				code = http.StatusServiceUnavailable
				break
			}
		}
		c.JSON(code, gin.H{"status": http.StatusText(code), "services": status.Services, "checkedAt": status.CheckedAt})
	})
}

// RegisterMetricsRoute exposes Prometheus metrics.
func RegisterMetricsRoute(r *gin.Engine) {
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", "X-Device-ID", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "Retry-After", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	RegisterHealthRoute(r)
	RegisterMetricsRoute(r)
	RegisterAuthRoutes(r, hb)
	RegisterStudioRoutes(r, hb)
}
