package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/akylbek/payment-system/payment-api/internal/apierror"
	"github.com/akylbek/payment-system/payment-api/internal/events"
	"github.com/akylbek/payment-system/payment-api/internal/handlers"
	"github.com/akylbek/payment-system/payment-api/internal/interfaces"
	"github.com/akylbek/payment-system/payment-api/internal/middleware"
	"github.com/akylbek/payment-system/payment-api/internal/telemetry"
)

const serviceName = "payment-api"

func NewRouter(paymentRepo interfaces.PaymentRepository, publisher events.Publisher) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(telemetry.TracingMiddleware())
	r.Use(telemetry.MetricsMiddleware())
	r.Use(middleware.AccessLog())
	r.Use(apierror.Handler())

	// Prometheus metrics
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := paymentRepo.Ping(ctx); err != nil {
			telemetry.Logger.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "service": serviceName})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": serviceName})
	})

	// Payment routes
	paymentHandler := handlers.NewPaymentHandler(paymentRepo, publisher)
	payments := r.Group("/payment")
	{
		payments.POST("", paymentHandler.CreatePayment)
		payments.GET("", paymentHandler.ListPayments)
		payments.GET("/:transaction_id", paymentHandler.GetPayment)
		payments.PATCH("/:transaction_id", paymentHandler.UpdatePayment)
		payments.DELETE("/:transaction_id", paymentHandler.DeletePayment)
	}

	return r
}
