package handlers

import (
	"github.com/desta-elias/smart-bed-u/internal/logger"
	"github.com/desta-elias/smart-bed-u/internal/service"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	log      *logger.Logger
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, log *logger.Logger) *Handler {
	return &Handler{services: services, log: log}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health endpoint
	router.GET("/health", h.health)

	// Auth endpoints
	h.registerAuthRoutes(router)

	// Unauthenticated bed endpoints: the position snapshot and the stop
	// status are readable by ward hardware, and the stop itself can be
	// triggered without a token.
	h.registerPublicBedRoutes(router)

	// Versioned API endpoints (protected)
	h.registerAPIRoutes(router)

	// Minimal WebSocket connection (HTTP upgrade) — same port
	router.GET("/ws", h.wsConnect)

	return router
}

func (h *Handler) registerAuthRoutes(r *gin.Engine) {
	auth := r.Group("/auth")
	{
		auth.POST("/sign-up", h.signUp)
		auth.POST("/sign-in", h.signIn)
	}
}

func (h *Handler) registerPublicBedRoutes(r *gin.Engine) {
	beds := r.Group("/api/v1/beds")
	{
		beds.GET("/:id/positions", h.getPositions)
		beds.GET("/:id/emergency-stop", h.getEmergencyStopStatus)
		beds.POST("/:id/emergency-stop", h.optionalUserIdMiddleware, h.emergencyStop)
	}
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1", h.userIdMiddleware)
	{
		h.registerBedRoutes(api)
		h.registerMovementRoutes(api)
		h.registerPatientRoutes(api)
	}
}

func (h *Handler) registerBedRoutes(api *gin.RouterGroup) {
	beds := api.Group("/beds")
	{
		beds.POST("", h.createBed)
		beds.GET("", h.listBeds)
		beds.GET("/available", h.listAvailableBeds)
		beds.GET("/number/:bedNumber", h.getBedByNumber)
		beds.GET("/:id", h.getBed)
		beds.PUT("/:id", h.updateBed)
		beds.DELETE("/:id", h.deleteBed)
		beds.PUT("/:id/sensors", h.updateSensors)
		beds.POST("/assign", h.assignPatient)
		beds.POST("/unassign", h.unassignBed)
	}
}

func (h *Handler) registerMovementRoutes(api *gin.RouterGroup) {
	beds := api.Group("/beds")
	{
		beds.POST("/:id/manual-control", h.manualControl)
		// Body example: {"head_position":30,"leg_position":0}
		beds.PUT("/:id/positions", h.updatePositions)
		beds.DELETE("/:id/emergency-stop", h.resetEmergencyStop)
		beds.POST("/:id/schedule-movement", h.scheduleMovement)
		beds.GET("/:id/history", h.movementHistory)
		beds.GET("/:id/scheduled-movements", h.scheduledForBed)
	}
	api.GET("/scheduled-movements", h.scheduledMovements)
}

func (h *Handler) registerPatientRoutes(api *gin.RouterGroup) {
	patients := api.Group("/patients")
	{
		patients.POST("", h.createPatient)
		patients.GET("/:id", h.getPatient)
		patients.POST("/:id/unassign", h.unassignByPatient)
	}
}
