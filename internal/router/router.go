package router

import (
	"storefront-service/internal/handlers"
	"storefront-service/internal/middleware"
	"storefront-service/internal/service"

	"github.com/gin-contrib/cors"
	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
)

type Deps struct {
	Auth    service.AuthService
	Catalog service.CatalogService
	Orders  service.OrderService
	Tokens  service.TokenProvider
	Cache   service.CacheClient
	Log     *zap.Logger
}

func Router(d Deps) *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	authHandler := handlers.NewAuthHandler(d.Auth, d.Log)
	userHandler := handlers.NewUserHandler(d.Auth, d.Log)
	productHandler := handlers.NewProductHandler(d.Catalog, d.Log)
	categoryHandler := handlers.NewCategoryHandler(d.Catalog, d.Log)
	orderHandler := handlers.NewOrderHandler(d.Orders, d.Log)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	api := r.Group("/api")

	// публичные маршруты
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)

	api.GET("/products", productHandler.List)
	api.GET("/products/:id", productHandler.Get)
	api.GET("/categories", categoryHandler.List)
	api.GET("/categories/:id", categoryHandler.Get)
	api.GET("/categories/:id/products", categoryHandler.Products)

	// всё остальное только с токеном; права проверяет сервисный слой
	authed := api.Group("", middleware.AuthRequired(d.Tokens, d.Cache, d.Log))
	{
		authed.POST("/auth/logout", authHandler.Logout)
		authed.GET("/auth/me", authHandler.Me)

		authed.GET("/users", userHandler.List)
		authed.GET("/users/:id", userHandler.Get)
		authed.PATCH("/users/:id/role", userHandler.ChangeRole)

		authed.POST("/products", productHandler.Create)
		authed.PATCH("/products/:id", productHandler.Update)
		authed.DELETE("/products/:id", productHandler.Delete)
		authed.PATCH("/products/:id/stock", productHandler.PatchStock)

		authed.POST("/categories", categoryHandler.Create)
		authed.PATCH("/categories/:id", categoryHandler.Update)
		authed.DELETE("/categories/:id", categoryHandler.Delete)

		authed.POST("/orders", orderHandler.Create)
		authed.GET("/orders", orderHandler.List)
		authed.GET("/orders/:id", orderHandler.Get)
		authed.PATCH("/orders/:id/status", orderHandler.PatchStatus)
		authed.POST("/orders/:id/cancel", orderHandler.Cancel)
	}

	return r
}
