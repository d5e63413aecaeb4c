package api

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/stocklens/backend/internal/api/handlers"
	"github.com/stocklens/backend/internal/api/middleware"
	"github.com/stocklens/backend/internal/service"
)

type Services struct {
	PurchaseOrders *service.PurchaseOrderService
	Orders         *service.OrderService
	Returns        *service.ReturnService
	Reports        *service.ReportService
}

func NewRouter(services *Services, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())

	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	apiGroup := router.Group("/api/v1")

	if services != nil {
		if services.PurchaseOrders != nil {
			poHandler := handlers.NewPurchaseOrderHandler(services.PurchaseOrders)
			poGroup := apiGroup.Group("/purchase-orders")
			{
				poGroup.POST("", poHandler.Create)
				poGroup.GET("", poHandler.List)
				poGroup.GET("/:id", poHandler.Get)
				poGroup.PUT("/:id/status", poHandler.UpdateStatus)
			}
		}

		if services.Orders != nil {
			orderHandler := handlers.NewOrderHandler(services.Orders)
			orderGroup := apiGroup.Group("/orders")
			{
				orderGroup.POST("", orderHandler.Create)
				orderGroup.GET("", orderHandler.List)
				orderGroup.GET("/:id", orderHandler.Get)
				orderGroup.POST("/:id/fulfill", orderHandler.Fulfill)
			}
		}

		if services.Returns != nil {
			returnHandler := handlers.NewReturnHandler(services.Returns)
			returnGroup := apiGroup.Group("/returns")
			{
				returnGroup.POST("", returnHandler.Create)
				returnGroup.GET("", returnHandler.List)
				returnGroup.GET("/:id", returnHandler.Get)
				returnGroup.PUT("/:id/status", returnHandler.UpdateStatus)
			}
		}

		if services.Reports != nil {
			reportHandler := handlers.NewReportHandler(services.Reports)
			reportGroup := apiGroup.Group("/reports")
			{
				reportGroup.GET("/valuation", reportHandler.GetValuation)
				reportGroup.GET("/valuation/:sku", reportHandler.GetSKUValuation)
				reportGroup.GET("/valuation/export", reportHandler.ExportValuation)
				reportGroup.GET("/orders/:id/profit", reportHandler.GetOrderProfit)
				reportGroup.GET("/top-products", reportHandler.GetTopProducts)
			}
		}
	}

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
