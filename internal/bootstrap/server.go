package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kazwonder/tourbooking/api"
	"github.com/kazwonder/tourbooking/config"
	"github.com/kazwonder/tourbooking/internal/service/auth"
	"github.com/kazwonder/tourbooking/internal/service/crm"
	"github.com/kazwonder/tourbooking/internal/service/orders"
	"github.com/kazwonder/tourbooking/internal/service/reviews"
	"github.com/kazwonder/tourbooking/internal/service/tours"
)

type Services struct {
	Tours   tours.TourUseCase
	Reviews reviews.ReviewUseCase
	Orders  orders.OrderUseCase
	Auth    auth.AuthUseCase
	CRM     crm.CRMUseCase
}

// Run поднимает HTTP-сервер и блокируется до отмены контекста
// или падения сервера.
func Run(ctx context.Context, cfg *config.Config, svc Services) error {
	httpServer := &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: newRouter(cfg, svc),
	}

	errCh := make(chan error, 1)
	go func() { errCh <- httpServer.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}

func newRouter(cfg *config.Config, svc Services) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery(), corsMiddleware(cfg.App.FrontendURL))

	root := router.Group("/api")

	api.NewTourHandler(svc.Tours).Register(root.Group("/tours"))
	api.NewReviewHandler(svc.Reviews).Register(root.Group("/reviews"))
	api.NewAuthHandler(svc.Auth).Register(root)
	api.NewCRMHandler(svc.CRM).Register(root)

	authorized := root.Group("/", api.AuthRequired(svc.Auth))
	api.NewOrderHandler(svc.Orders, svc.Auth).Register(authorized.Group("/orders"))
	api.NewUserHandler(svc.Auth).Register(authorized.Group("/users"))

	return router
}

func corsMiddleware(origin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if origin != "" {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type")
			c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
