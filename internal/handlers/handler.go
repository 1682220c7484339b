package handlers

import (
	"timeguard/internal/logger"
	"timeguard/internal/notify"
	"timeguard/internal/service"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	hub      *notify.Hub
	log      *logger.Logger
}

// NewHandler constructs a new HTTP handler with dependencies. hub serves the
// method channel; a nil hub gets a private one with no notification source.
func NewHandler(services *service.Service, hub *notify.Hub, log *logger.Logger) *Handler {
	if hub == nil {
		hub = notify.NewHub(log)
	}
	return &Handler{services: services, hub: hub, log: log}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health endpoint
	router.GET("/health", h.health)

	// Operator registration and sign-in
	h.registerAuthRoutes(router)

	// Versioned API endpoints (protected)
	h.registerAPIRoutes(router)

	// Method channel (HTTP upgrade) on the same port
	router.GET(notify.ChannelPath, h.wsConnect)

	return router
}

func (h *Handler) registerAuthRoutes(r *gin.Engine) {
	auth := r.Group("/auth")
	{
		auth.POST("/sign-up", h.signUp)
		auth.POST("/sign-in", h.signIn)
	}
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1", h.requireSession)
	{
		h.registerGuardRoutes(api)
		h.registerCommandRoutes(api)
		h.registerLogRoutes(api)
	}
}

func (h *Handler) registerGuardRoutes(api *gin.RouterGroup) {
	g := api.Group("/guard")
	{
		g.GET("/state", h.getState)
		g.GET("/stats", h.getStats)
		// Body example: {"state":"background"}
		g.POST("/visibility", h.requireControl, h.setVisibility)
		g.POST("/screen", h.requireControl, h.setScreenPower)
		// Body example: {"kind":"timezone"}
		g.POST("/signal", h.requireControl, h.injectSignal)
	}
}

func (h *Handler) registerCommandRoutes(api *gin.RouterGroup) {
	api.POST("/commands/:method", h.requireControl, h.invokeCommand)
}

func (h *Handler) registerLogRoutes(api *gin.RouterGroup) {
	logs := api.Group("/logs")
	{
		logs.GET("/", h.getLogs)
	}
}
