// Package router assembles the gin engine.
package router

import (
	"log/slog"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	authhandler "taskandtime_backend/internal/feature/auth/transport/handler"
	jwtmw "taskandtime_backend/internal/platform/jwt"
	"taskandtime_backend/internal/platform/http/handler"
	"taskandtime_backend/internal/platform/observability"
	"taskandtime_backend/internal/shared/ratelimiter"
)

// Deps are the components the router wires together.
// Prom, Gatherer and Limiter are optional.
type Deps struct {
	Logger      *slog.Logger
	ServiceName string

	Auth  *authhandler.AuthHandler
	Users *authhandler.UserHandler

	Verifier    jwtmw.TokenVerifier
	TokenStatus jwtmw.TokenStatusFunc

	Prom     *observability.Prom
	Gatherer prometheus.Gatherer
	Limiter  *ratelimiter.RateLimiter

	CORSAllowedOrigins []string
	ReadyChecks        []handler.Check
}

func NewRouter(d Deps) *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(RequestID())
	if d.Logger != nil {
		r.Use(RequestLogger(d.Logger))
	}
	if d.ServiceName != "" {
		r.Use(otelgin.Middleware(d.ServiceName))
	}
	if d.Prom != nil {
		r.Use(d.Prom.GinHandleMiddleware())
	}
	r.Use(cors.New(corsConfig(d.CORSAllowedOrigins)))

	// Health and metrics
	r.GET("/healthz", handler.Health)
	r.HEAD("/healthz", handler.Health)
	r.GET("/readyz", handler.Ready(2*time.Second, d.ReadyChecks...))
	if d.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	users := r.Group("/users/auth")

	// Public
	public := users.Group("")
	if d.Limiter != nil {
		public.Use(d.Limiter.Middleware(ratelimiter.KeyByIP))
	}
	public.POST("/register", d.Auth.Register)
	public.POST("/register/pm", d.Auth.RegisterManager)
	public.POST("/login", d.Auth.Login)

	// Bearer token required
	secured := users.Group("")
	secured.Use(jwtmw.AuthRequired(d.Verifier, d.TokenStatus))
	{
		secured.POST("/logout", d.Auth.Logout)
		secured.GET("/current-id", d.Auth.CurrentID)

		secured.GET("/findAll", d.Users.FindAll)
		secured.GET("/mail", d.Users.FindIDByEmail)
		secured.GET("/findById/:id", d.Users.FindByID)
		secured.PUT("/update/:id", d.Users.Update)
		secured.PATCH("/updateSpecific/:id", d.Users.Patch)
		secured.PUT("/:id", d.Users.Replace)
		secured.DELETE("/delete/:id", d.Users.Delete)
	}

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	cfg.AllowHeaders = append(cfg.AllowHeaders, "Authorization", requestIDHeader)
	cfg.ExposeHeaders = []string{requestIDHeader, "Retry-After"}
	return cfg
}
