package httpserver

import (
	"github.com/labstack/echo/v4"

	"github.com/glintmarket/storefront/internal/handlers"
	"github.com/glintmarket/storefront/internal/middleware/auth"
)

type Deps struct {
	Auth                *auth.Middleware
	AuthHandler         *handlers.AuthHandler
	CatalogHandler      *handlers.CatalogHandler
	ProductHandler      *handlers.ProductHandler
	ReviewHandler       *handlers.ReviewHandler
	AddressHandler      *handlers.AddressHandler
	UserHandler         *handlers.UserHandler
	OrderHandler        *handlers.OrderHandler
	NotificationHandler *handlers.NotificationHandler
	SearchHandler       *handlers.SearchHandler
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })

	api := e.Group("/api")

	api.POST("/auth/register", d.AuthHandler.Register)
	api.POST("/auth/login", d.AuthHandler.Login)
	api.GET("/user/me", d.AuthHandler.Me, d.Auth.RequireUser)
	api.PUT("/user/update", d.AuthHandler.UpdateProfile, d.Auth.RequireUser)

	// Static catalog segments have to be registered alongside the slug
	// route; echo matches them before the :slug parameter.
	products := api.Group("/products")
	products.GET("", d.ProductHandler.ListProducts)
	products.GET("/search", d.SearchHandler.SearchProducts)
	products.GET("/categories", d.CatalogHandler.ListCategories)
	products.GET("/categories/:id", d.CatalogHandler.GetCategory)
	products.GET("/brands", d.CatalogHandler.ListBrands)
	products.GET("/:slug", d.ProductHandler.GetProductBySlug)
	products.POST("/:slug/reviews", d.ReviewHandler.CreateReview, d.Auth.RequireUser)

	addresses := api.Group("/addresses", d.Auth.RequireUser)
	addresses.POST("", d.AddressHandler.CreateAddress)
	addresses.PUT("/:id", d.AddressHandler.UpdateAddress)
	addresses.DELETE("/:id", d.AddressHandler.DeleteAddress)

	api.POST("/orders", d.OrderHandler.CreateOrder, d.Auth.RequireUser)
	api.GET("/orders", d.OrderHandler.ListOrders, d.Auth.RequireAdmin)
	api.GET("/orders/user/:user_id", d.OrderHandler.ListUserOrders, d.Auth.RequireUser)

	api.GET("/notifications/:user_id", d.NotificationHandler.ListUserNotifications, d.Auth.RequireUser)
	api.PATCH("/notifications/:id/read", d.NotificationHandler.MarkRead, d.Auth.RequireUser)

	api.GET("/users", d.UserHandler.ListUsers, d.Auth.RequireAdmin)
	api.GET("/users/:id", d.UserHandler.GetUser, d.Auth.RequireAdmin)

	admin := api.Group("/admin", d.Auth.RequireAdmin)
	admin.POST("/products", d.ProductHandler.CreateProduct)
	admin.PATCH("/products/:id", d.ProductHandler.PatchProduct)
	admin.DELETE("/products/:id", d.ProductHandler.DeleteProduct)
	admin.POST("/categories", d.CatalogHandler.CreateCategory)
	admin.DELETE("/categories/:id", d.CatalogHandler.DeleteCategory)
	admin.POST("/brands", d.CatalogHandler.CreateBrand)
	admin.DELETE("/brands/:id", d.CatalogHandler.DeleteBrand)
	admin.PATCH("/orders/:id", d.OrderHandler.UpdateOrder)
}
