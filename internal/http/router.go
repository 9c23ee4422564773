package http

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/unrolled/secure"
	"go.uber.org/zap"

	"travel-planner/internal/service"
)

// RouterConfig agrupa la configuración transversal del router.
type RouterConfig struct {
	AllowedOrigins []string
	CookieName     string
	// ForceHTTPS redirige a https y activa HSTS.
	ForceHTTPS bool
}

// NewRouter configura el router de Gin con middlewares y rutas.
func NewRouter(
	logger *zap.Logger,
	cfg RouterConfig,
	authServ *service.AuthService,
	userH *UserHandler,
	passwordH *PasswordHandler,
	spotH *SpotHandler,
	healthH *HealthHandler,
) *gin.Engine {
	registerValidators()

	r := gin.New()
	r.Use(requestIDMiddleware(), zapLoggerMiddleware(logger), gin.Recovery(), secureHeadersMiddleware(cfg.ForceHTTPS))
	if len(cfg.AllowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.AllowedOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "X-Request-ID"},
			ExposeHeaders:    []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}
	r.Use(jsonContentTypeMiddleware())

	r.GET("/healthz", healthH.Health)

	api := r.Group("/api")
	api.POST("/register", userH.Register)
	api.POST("/login", userH.Login)
	api.POST("/logout", userH.Logout)
	api.POST("/forgot-password", passwordH.ForgotPassword)
	api.POST("/verify-reset-token", passwordH.VerifyResetToken)
	api.POST("/reset-password", passwordH.ResetPassword)

	api.GET("/spots", spotH.Catalog)
	api.GET("/categories", spotH.Categories)
	api.GET("/overpass-spots", spotH.Curated)
	api.GET("/search-spots", spotH.Search)
	api.GET("/search-by-category", spotH.SearchByCategory)

	guarded := api.Group("")
	guarded.Use(SessionAuthMiddleware(logger, authServ, cfg.CookieName))
	guarded.GET("/user", userH.Me)
	guarded.GET("/users/:id", userH.GetUser)
	guarded.PUT("/users/:id", userH.UpdateUser)

	r.NoRoute(func(c *gin.Context) {
		respondMessage(c, http.StatusNotFound, "not found")
	})

	return r
}

const requestIDHeader = "X-Request-ID"

// requestIDMiddleware propaga el X-Request-ID del cliente o genera uno nuevo.
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}
		c.Set(requestIDHeader, id)
		c.Writer.Header().Set(requestIDHeader, id)
		c.Next()
	}
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("request_id", c.GetString(requestIDHeader)),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// secureHeadersMiddleware añade cabeceras de seguridad con unrolled/secure.
func secureHeadersMiddleware(forceHTTPS bool) gin.HandlerFunc {
	opts := secure.Options{
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		BrowserXssFilter:      true,
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		ContentSecurityPolicy: "default-src 'none'; frame-ancestors 'none'",
		SSLRedirect:           forceHTTPS,
		SSLProxyHeaders:       map[string]string{"X-Forwarded-Proto": "https"},
	}
	if forceHTTPS {
		opts.STSSeconds = 31536000
		opts.STSIncludeSubdomains = true
	}
	sm := secure.New(opts)
	return func(c *gin.Context) {
		if err := sm.Process(c.Writer, c.Request); err != nil {
			// Process ya respondió: redirección a https o host no permitido.
			c.Abort()
			return
		}
		if status := c.Writer.Status(); status > 300 && status < 399 {
			c.Abort()
			return
		}
		c.Next()
	}
}

// jsonContentTypeMiddleware fuerza Content-Type: application/json en responses.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}
