package httpserver

import (
	"github.com/labstack/echo/v4"
	ecM "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/eventcard/terminal/internal/catalog"
	"github.com/eventcard/terminal/internal/middleware/auth"
	"github.com/eventcard/terminal/internal/middleware/csrf"
	loggingmw "github.com/eventcard/terminal/internal/middleware/logging"
	"github.com/eventcard/terminal/internal/reports"
	"github.com/eventcard/terminal/internal/terminal"
)

type Deps struct {
	Registry *terminal.Registry
	Catalog  *catalog.Service
	Reports  *reports.Service
	Profile  ProfileBackend
	Backend  Pinger
	// BackendURL enables proxying of uploaded files when set.
	BackendURL string

	JWTSecret []byte
	// CSRF is applied to cookie authenticated requests when set.
	CSRF *csrf.Config

	Logger *zap.Logger
}

func Common(l *zap.Logger) []echo.MiddlewareFunc {
	return []echo.MiddlewareFunc{
		ecM.Recover(),
		ecM.RequestID(),
		loggingmw.RequestLogger(l),
		ecM.Secure(),
	}
}

func Register(e *echo.Echo, d *Deps) error {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	e.HTTPErrorHandler = ErrorHandler

	e.GET("/health/live", live)
	e.GET("/health/ready", ready(d.Backend))

	for _, m := range Common(d.Logger) {
		e.Use(m)
	}
	if d.CSRF != nil {
		e.Use(csrf.Middleware(*d.CSRF))
	}

	if d.BackendURL != "" {
		uploads, err := newProxy(d.BackendURL)
		if err != nil {
			return err
		}
		e.GET(UploadsPath+"/*", uploads)
	}

	api := e.Group("/api/v1", auth.Middleware(d.JWTSecret))

	p := &POSHTTP{Registry: d.Registry}
	posGroup := api.Group("/pos")
	posGroup.GET("", p.GetView)
	posGroup.GET("/events", p.Events)
	posGroup.POST("/card", p.LookupCard)
	posGroup.GET("/points-of-sale", p.PointsOfSale)
	posGroup.PUT("/point-of-sale", p.SelectPointOfSale)
	posGroup.DELETE("/point-of-sale", p.ClearPointOfSale)
	posGroup.GET("/catalog", p.Catalog)
	posGroup.POST("/cart/lines", p.AddLine)
	posGroup.PATCH("/cart/lines/:index", p.ChangeQuantity)
	posGroup.DELETE("/cart/lines/:index", p.RemoveLine)
	posGroup.DELETE("/cart", p.ClearCart)
	posGroup.POST("/confirmation", p.Confirm)
	posGroup.POST("/checkout", p.Checkout)
	posGroup.POST("/reset", p.Reset)
	api.DELETE("/terminal", p.EndSession)

	cards := &CardsHTTP{Registry: d.Registry}
	cardGroup := api.Group("/cards")
	cardGroup.GET("/:number", cards.Balance)
	cardGroup.GET("/:number/history", cards.History)
	cardGroup.POST("/:number/recharge", cards.Recharge)

	a := &AssignmentHTTP{Registry: d.Registry}
	asg := api.Group("/assignment")
	asg.GET("", a.GetView)
	asg.POST("/reload", a.Reload)
	asg.GET("/candidates", a.Search)
	asg.PUT("/selection", a.Select)
	asg.DELETE("/selection", a.ClearSelection)
	asg.POST("/verify", a.Verify)
	asg.POST("/submit", a.Submit)
	asg.POST("/attendees", a.Register)

	if d.Profile != nil {
		prof := &ProfileHTTP{Backend: d.Profile}
		api.GET("/profile", prof.Get)
		api.PUT("/profile", prof.Update)
	}

	adm := &AdminHTTP{Catalog: d.Catalog, Reports: d.Reports}
	admin := api.Group("/admin", auth.RequireRole(auth.RoleAdmin))
	if d.Catalog != nil {
		admin.GET("/products", adm.Products)
		admin.GET("/product-types", adm.ProductTypes)
		admin.GET("/products/:id", adm.Product)
		admin.POST("/products", adm.CreateProduct)
		admin.PUT("/products/:id", adm.UpdateProduct)
		admin.DELETE("/products/:id", adm.DeleteProduct)
		admin.GET("/points-of-sale", adm.PointsOfSale)
		admin.POST("/points-of-sale", adm.CreatePointOfSale)
		admin.PUT("/points-of-sale/:id", adm.UpdatePointOfSale)
		admin.DELETE("/points-of-sale/:id", adm.DeletePointOfSale)
	}
	if d.Reports != nil {
		admin.GET("/reports/sales", adm.SalesReport)
		admin.GET("/reports/transactions", adm.TransactionsReport)
	}
	return nil
}
