package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/fatflowers/agrobill/docs"
	"github.com/fatflowers/agrobill/internal/app/api/handlers"
	"github.com/fatflowers/agrobill/internal/app/service/checkout"
	"github.com/fatflowers/agrobill/internal/app/service/ledger"
	"github.com/fatflowers/agrobill/internal/app/service/statistics"
	subsvc "github.com/fatflowers/agrobill/internal/app/service/subscription"
	"github.com/fatflowers/agrobill/internal/app/service/webhook"
	cfgpkg "github.com/fatflowers/agrobill/pkg/config"

	mw "github.com/fatflowers/agrobill/internal/app/api/middleware"

	metrics "github.com/fatflowers/agrobill/pkg/metrics"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func newEngine(cfg *cfgpkg.Config) *gin.Engine {
	if cfg.Env == cfgpkg.EnvProd {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	// Add request tracing middleware only; request logger & access log are attached per group in registerRoutes
	r.Use(mw.TraceMiddleware())
	return r
}

type routeParams struct {
	fx.In

	Engine        *gin.Engine
	Log           *zap.SugaredLogger
	Config        *cfgpkg.Config
	Subscriptions *subsvc.Service
	Ledger        *ledger.Service
	Checkout      *checkout.Service
	Webhooks      *webhook.Router
	Stats         *statistics.Service
}

func registerRoutes(p routeParams) {
	r, log, cfg := p.Engine, p.Log, p.Config

	// Prometheus metrics
	if cfg.MetricsAddr != "" {
		prom := metrics.NewPrometheus(metrics.NewPrometheusOptions{
			ReqCntURLLabelMappingFn: func(c *gin.Context) string {
				if fp := c.FullPath(); fp != "" {
					return fp
				}
				return "unmatched"
			},
			Logger: log,
		})
		prom.SetListenAddress(cfg.MetricsAddr)
		prom.Use(r)

		log.Infow("metrics started", "addr", cfg.MetricsAddr)
	}

	// Public group: request logger + access log
	pub := r.Group("/")
	pub.Use(mw.RequestLoggerMiddleware(log), mw.AccessLogMiddleware())
	handlers.RegisterHealthRoutes(pub)
	// Swagger UI
	docs.SwaggerInfo.BasePath = "/"
	pub.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	apiV1 := r.Group("/api/v1")
	apiV1.Use(mw.RequestLoggerMiddleware(log), mw.AccessLogMiddleware())

	// Gateway callbacks authenticate by payload signature, not bearer token
	handlers.RegisterWebhookRoutes(apiV1, p.Webhooks, log)

	user := apiV1.Group("/")
	user.Use(mw.AuthMiddleware(cfg.Auth.JWTSecret))
	handlers.RegisterSubscriptionRoutes(user, p.Subscriptions, p.Ledger, log)
	handlers.RegisterCheckoutRoutes(user, p.Checkout, log)

	admin := apiV1.Group("/admin")
	admin.Use(mw.AuthMiddleware(cfg.Auth.JWTSecret), mw.RequireRole(mw.RoleAdmin))
	handlers.RegisterAdminRoutes(admin, p.Subscriptions, p.Ledger, p.Stats, log)
}

func runServer(lc fx.Lifecycle, log *zap.SugaredLogger, cfg *cfgpkg.Config, r *gin.Engine) {
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 5 * time.Second}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("starting HTTP server", "addr", addr)
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Errorf("server error: %v", err)
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Infow("stopping HTTP server")
			shutdownCtx, cancel := context.WithTimeout(ctx, 120*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

var Module = fx.Options(
	fx.Provide(newEngine),
	fx.Invoke(registerRoutes),
	fx.Invoke(runServer),
)
