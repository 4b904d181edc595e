package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/schedcu/surgical-scheduler/internal/engine"
)

// Router wires the engine facade up to HTTP routes.
type Router struct {
	echo     *echo.Echo
	handlers *Handlers
}

// NewRouter builds an Echo router backed by e.
func NewRouter(e *engine.Engine) *Router {
	echoInstance := echo.New()

	echoInstance.Use(middleware.RequestID())
	echoInstance.Use(middleware.Logger())
	echoInstance.Use(middleware.Recover())
	echoInstance.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{echo.GET, echo.POST},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization},
	}))

	r := &Router{
		echo:     echoInstance,
		handlers: &Handlers{engine: e},
	}
	r.registerRoutes()
	return r
}

func (r *Router) registerRoutes() {
	r.echo.GET("/api/health", r.handlers.Health)

	scheduleGroup := r.echo.Group("/api/schedule")
	scheduleGroup.POST("/optimize", r.handlers.Optimize)
	scheduleGroup.POST("/emergency", r.handlers.InsertEmergency)
	scheduleGroup.POST("/feasibility", r.handlers.CheckFeasibility)
	scheduleGroup.GET("/validate", r.handlers.ValidateSchedule)
}

// RegisterMetrics mounts h (typically a metrics.Registry's Handler)
// at /metrics.
func (r *Router) RegisterMetrics(h http.Handler) {
	r.echo.GET("/metrics", echo.WrapHandler(h))
}

// ServeHTTP lets Router be exercised directly with httptest, without
// binding a real listener.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.echo.ServeHTTP(w, req)
}

// Start starts the HTTP server on addr.
func (r *Router) Start(addr string) error {
	return r.echo.Start(addr)
}

// Shutdown gracefully shuts down the server.
func (r *Router) Shutdown() error {
	return r.echo.Close()
}
