// Package api assembles the HTTP server: middleware, route policies and handlers.
package api

import (
	"net/http"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/d60-Lab/ibp/config"
	_ "github.com/d60-Lab/ibp/docs"
	"github.com/d60-Lab/ibp/internal/api/handler"
	"github.com/d60-Lab/ibp/internal/api/middleware"
	"github.com/d60-Lab/ibp/internal/session"
	"github.com/d60-Lab/ibp/internal/view"
	"github.com/d60-Lab/ibp/pkg/response"
)

// Deps everything NewServer wires together.
type Deps struct {
	Config   *config.Config
	DB       *gorm.DB
	Handler  *handler.Handler
	Views    *view.Renderer
	Sessions *session.Manager
	Users    middleware.UserLookup
	Metrics  *middleware.HTTPMetrics
}

// NewServer builds the gin engine with every route and its policy.
func NewServer(d Deps) *gin.Engine {
	cfg := d.Config
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	if d.Metrics == nil {
		d.Metrics = middleware.NewHTTPMetrics()
	}

	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Logger(),
		d.Metrics.Middleware(),
		middleware.Recovery(),
		gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/debug/prometheus"})),
	)
	if cfg.Tracing.Enabled {
		r.Use(otelgin.Middleware(cfg.Tracing.ServiceName))
	}
	r.Use(d.Sessions.Middleware())
	r.SetHTMLTemplate(d.Views.Templates())
	r.NoRoute(response.NotFound)

	g := middleware.Guards{
		Login: middleware.RequireLogin(d.Users),
		AppKey: []gin.HandlerFunc{
			middleware.RateLimit(cfg.Security.AppKeyRate, cfg.Security.AppKeyBurst),
			middleware.RequireAppKey(cfg.Security.AppKeyHash),
		},
		CSRF: middleware.CSRF(),
	}
	h := d.Handler

	// operational
	r.GET("/healthz", health(d.DB))
	r.GET("/debug/prometheus", d.Metrics.Handler())
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// pages and fragments
	r.GET("/", g.Chain(middleware.Public, h.Index)...)
	r.GET("/inmates", g.Chain(middleware.Session, h.SearchForm)...)
	r.POST("/inmates", g.Chain(middleware.Session, h.SearchInmates)...)
	r.GET("/view_inmate/:autoid", g.Chain(middleware.Session, h.ViewInmate)...)
	r.POST("/add_request/:autoid", g.Chain(middleware.Session, h.AddRequest)...)
	r.GET("/inmate_alerts/:autoid", g.Chain(middleware.Session, h.InmateAlerts)...)
	r.POST("/add_alert/:autoid", g.Chain(middleware.Session, h.AddAlert)...)
	r.DELETE("/delete_alert/:autoid", g.Chain(middleware.Session, h.DeleteAlert)...)
	r.POST("/request_warnings/:autoid", g.Chain(middleware.Session, h.RequestWarnings)...)
	r.GET("/request_label/:autoid", g.Chain(middleware.Session, h.RequestLabel)...)
	r.GET("/request_info/:autoid", g.Chain(middleware.Session, h.RequestInfo)...)
	r.DELETE("/delete_request/:autoid", g.Chain(middleware.Session, h.DeleteRequest)...)
	r.POST("/add_comment/:autoid", g.Chain(middleware.Session, h.AddComment)...)
	r.DELETE("/delete_comment/:autoid", g.Chain(middleware.Session, h.DeleteComment)...)
	r.GET("/list_units", g.Chain(middleware.Session, h.ListUnits)...)
	r.GET("/view_unit/:autoid", g.Chain(middleware.Session, h.ViewUnit)...)
	r.POST("/view_unit/:autoid", g.Chain(middleware.Session, h.ViewUnit)...)

	// shipping integration, gated by the application key
	keyed := map[string]gin.HandlerFunc{
		"/return_address":              h.ReturnAddress,
		"/request_address/:autoid":     h.RequestAddress,
		"/unit_autoids":                h.UnitAutoIDs,
		"/unit_address/:autoid":        h.UnitAddress,
		"/request_destination/:autoid": h.RequestDestination,
	}
	for path, fn := range keyed {
		r.GET(path, g.Chain(middleware.AppKey, fn)...)
		r.POST(path, g.Chain(middleware.AppKey, fn)...)
	}
	r.POST("/ship_requests", g.Chain(middleware.AppKey, h.ShipRequests)...)

	// auth
	r.GET("/login", g.Chain(middleware.Public, h.Login)...)
	r.GET("/login/google", g.Chain(middleware.Public, h.LoginCallback)...)
	r.GET("/logout", g.Chain(middleware.Public, h.Logout)...)

	// metrics
	r.GET("/metrics", g.Chain(middleware.Public, h.MetricsPage)...)
	r.GET("/metrics/request_counts", g.Chain(middleware.Public, h.RequestCounts)...)
	r.GET("/metrics/new_request_counts", g.Chain(middleware.Public, h.NewRequestCounts)...)
	r.GET("/metrics/shipping_volume", g.Chain(middleware.Public, h.ShippingVolume)...)

	api := r.Group("/api", g.Chain(middleware.Session)...)
	{
		api.GET("/inmate", h.SearchAPI)
		api.GET("/inmate/:jurisdiction/:id", h.InmateAPI)
		api.POST("/request/:jurisdiction/:id", h.CreateRequestAPI)
		api.PUT("/request/:jurisdiction/:id/:index", h.UpdateRequestAPI)
		api.DELETE("/request/:jurisdiction/:id/:index", h.DeleteRequestAPI)
		api.POST("/comment/:jurisdiction/:id", h.CreateCommentAPI)
		api.PUT("/comment/:jurisdiction/:id/:index", h.UpdateCommentAPI)
		api.DELETE("/comment/:jurisdiction/:id/:index", h.DeleteCommentAPI)
		api.GET("/units", h.UnitsAPI)
		api.GET("/shipment/:autoid", h.ShipmentAPI)
		api.PUT("/shipment/:autoid", h.UpdateShipmentAPI)
	}

	return r
}

func health(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
