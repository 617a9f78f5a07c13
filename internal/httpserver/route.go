package httpserver

import (
	"net/http"

	middleware "github.com/Skotchmaster/bigbrew_pos/pkg/middleware/auth"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

type Deps struct {
	DB               *gorm.DB
	CartHandler      *CartHTTP
	CheckoutHandler  *CheckoutHTTP
	SalesHandler     *SalesHTTP
	InventoryHandler *InventoryHTTP
	SchemaHandler    *SchemaHTTP
	JWTSecret        []byte
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", d.ready)

	authMW := middleware.NewStaffAuth(d.JWTSecret)

	v1 := e.Group("/api/v1", authMW.Optional)

	cart := v1.Group("/cart")
	cart.GET("", d.CartHandler.GetCart)
	cart.DELETE("", d.CartHandler.Clear)
	cart.POST("/items", d.CartHandler.AddItem)
	cart.PATCH("/items/:index", d.CartHandler.ChangeQuantity)
	cart.POST("/reset", d.CartHandler.Reset)
	cart.POST("/reload", d.CartHandler.Reload)
	cart.GET("/export", d.CartHandler.Export)
	cart.GET("/customer", d.CartHandler.GetCustomer)
	cart.PUT("/customer", d.CartHandler.SetCustomer)

	v1.POST("/checkout", d.CheckoutHandler.Checkout)

	sales := v1.Group("/sales")
	sales.GET("", d.SalesHandler.List)
	sales.GET("/search", d.SalesHandler.SearchSales)
	sales.GET("/:id", d.SalesHandler.Details)

	admin := sales.Group("", authMW.RequireAdmin)
	admin.DELETE("/:id", d.SalesHandler.Delete)
	admin.PATCH("/:id/status", d.SalesHandler.UpdateStatus)

	v1.GET("/inventory", d.InventoryHandler.List)
	v1.GET("/schema", d.SchemaHandler.Get)
}

func (d *Deps) ready(c echo.Context) error {
	if d.DB == nil {
		return c.NoContent(http.StatusOK)
	}
	sqlDB, err := d.DB.DB()
	if err != nil {
		return c.NoContent(http.StatusServiceUnavailable)
	}
	if err := sqlDB.PingContext(c.Request().Context()); err != nil {
		return c.NoContent(http.StatusServiceUnavailable)
	}
	return c.NoContent(http.StatusOK)
}
