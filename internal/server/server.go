// Package server exposes the HTTP API: catalog and order endpoints, the
// payment-intent lifecycle, and the webhook intake that feeds the
// reconciliation engine.
package server

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/settleio/settle/internal/payments"
	"github.com/settleio/settle/internal/reconcile"
	"github.com/settleio/settle/internal/store"
)

// Server wires the HTTP routes to the services behind them. All
// dependencies are injected at construction; the server owns none of
// their lifecycles.
type Server struct {
	store         *store.Store
	payments      *payments.Service
	reconciler    *reconcile.Reconciler
	webhookSecret string
	logger        *slog.Logger
	router        *gin.Engine
}

// New creates a Server with all routes registered.
// A nil logger defaults to slog.Default().
func New(st *store.Store, pay *payments.Service, rec *reconcile.Reconciler, webhookSecret string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	router := gin.New()
	router.Use(gin.Recovery(), metricsMiddleware())

	s := &Server{
		store:         st,
		payments:      pay,
		reconciler:    rec,
		webhookSecret: webhookSecret,
		logger:        logger,
		router:        router,
	}

	router.GET("/health", s.handleHealth)

	router.POST("/products", s.handleCreateProduct)
	router.GET("/products", s.handleListProducts)

	router.POST("/orders", s.handleCreateOrder)
	router.GET("/orders", s.handleListOrders)
	router.GET("/orders/:id/events", s.handleOrderEvents)

	router.POST("/pay", s.handlePay)
	router.POST("/confirm", s.handleConfirm)

	router.POST("/webhook", s.handleWebhook)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return s
}

// Handler returns the router as an http.Handler, for mounting in an
// http.Server and in tests.
func (s *Server) Handler() *gin.Engine {
	return s.router
}
