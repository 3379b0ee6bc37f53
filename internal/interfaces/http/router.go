// Package http wires the gin route tree and the HTTP server.
package http

import (
	"github.com/gin-gonic/gin"

	"github.com/turtacn/fulfill-billing/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/fulfill-billing/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/fulfill-billing/internal/interfaces/http/handlers"
	"github.com/turtacn/fulfill-billing/internal/interfaces/http/middleware"
)

// RouterConfig aggregates the handler and middleware dependencies of the
// route tree.
type RouterConfig struct {
	Mode string // gin mode: "debug" | "release" | "test"

	VendorHandler  *handlers.VendorHandler
	InvoiceHandler *handlers.InvoiceHandler
	HealthHandler  *handlers.HealthHandler

	Logger  logging.Logger
	Metrics *prometheus.BillingMetrics

	MetricsPath string
}

// NewRouter builds the complete route tree.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.Logger != nil {
		r.Use(middleware.RequestLogger(cfg.Logger))
	}
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))

		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.GET(path, gin.WrapH(cfg.Metrics.Handler()))
	}

	if cfg.HealthHandler != nil {
		r.GET("/healthz", cfg.HealthHandler.Liveness)
		r.GET("/readyz", cfg.HealthHandler.Readiness)
	}

	api := r.Group("/api/v1")
	{
		if h := cfg.VendorHandler; h != nil {
			vendors := api.Group("/vendors")
			vendors.POST("", h.Create)
			vendors.GET("", h.List)
			vendors.GET("/:name", h.Get)
			vendors.DELETE("/:name", h.Delete)
			vendors.POST("/:name/aliases", h.AddAlias)
			vendors.DELETE("/:name/aliases", h.RemoveAlias)
			vendors.GET("/:name/names", h.ResolveNames)
		}
		if h := cfg.InvoiceHandler; h != nil {
			invoices := api.Group("/invoices")
			invoices.POST("/compute", h.Compute)
			invoices.POST("/finalize", h.Finalize)
			invoices.GET("/:id", h.Get)
			if cfg.VendorHandler != nil {
				api.GET("/vendors/:name/invoices", h.History)
			}
		}
	}

	return r
}
