package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"vet-clinic-service/internal/adapter/gin/handler"
	"vet-clinic-service/internal/adapter/gin/middleware"
	"vet-clinic-service/internal/domain/user"
	"vet-clinic-service/pkg/security"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Auth         *handler.AuthHandler
	Users        *handler.UserHandler
	Owners       *handler.OwnerHandler
	PetTypes     *handler.PetTypeHandler
	Pets         *handler.PetHandler
	Appointments *handler.AppointmentHandler
	Records      *handler.RecordHandler
}

// New builds the gin engine with all middleware and routes mounted.
// rateLimiter may be nil when rate limiting is disabled.
func New(h Handlers, tokens *security.TokenManager, rateLimiter *middleware.RateLimiter, log *zap.Logger) *gin.Engine {
	engine := gin.New()

	engine.Use(
		middleware.RequestID(),
		middleware.RequestLogger(log),
		middleware.Recovery(log),
	)
	if rateLimiter != nil {
		engine.Use(rateLimiter.Middleware())
	}

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := engine.Group("/v1")

	v1.POST("/auth/login", h.Auth.Login)

	authed := v1.Group("", middleware.Auth(tokens))

	// User management is admin-only. Password change stays open to any
	// authenticated user; knowing the current password is the gate.
	users := authed.Group("/users")
	{
		admin := users.Group("", middleware.RequireRole(string(user.RoleAdmin)))
		admin.POST("", h.Users.Create)
		admin.GET("", h.Users.List)
		admin.GET("/:id", h.Users.Get)
		admin.PUT("/:id", h.Users.Update)
		admin.DELETE("/:id", h.Users.Delete)

		users.PUT("/:id/password", h.Users.ChangePassword)
	}

	owners := authed.Group("/owners")
	{
		owners.POST("", h.Owners.Create)
		owners.GET("", h.Owners.List)
		owners.GET("/:id", h.Owners.Get)
		owners.PUT("/:id", h.Owners.Update)
		owners.DELETE("/:id", h.Owners.Delete)
	}

	petTypes := authed.Group("/pet-types")
	{
		petTypes.POST("", h.PetTypes.Create)
		petTypes.GET("", h.PetTypes.List)
		petTypes.GET("/:id", h.PetTypes.Get)
		petTypes.PUT("/:id", h.PetTypes.Update)
		petTypes.DELETE("/:id", h.PetTypes.Delete)
	}

	pets := authed.Group("/pets")
	{
		pets.POST("", h.Pets.Create)
		pets.GET("", h.Pets.List)
		pets.GET("/:id", h.Pets.Get)
		pets.PUT("/:id", h.Pets.Update)
		pets.DELETE("/:id", h.Pets.Delete)
	}

	appointments := authed.Group("/appointments")
	{
		appointments.POST("", h.Appointments.Create)
		appointments.GET("", h.Appointments.List)
		appointments.GET("/:id", h.Appointments.Get)
		appointments.PUT("/:id", h.Appointments.Update)
		appointments.DELETE("/:id", h.Appointments.Delete)
	}

	records := authed.Group("/records")
	{
		// Only veterinarians write medical records.
		records.POST("", middleware.RequireRole(string(user.RoleVeterinarian)), h.Records.Create)
		records.GET("", h.Records.List)
		records.GET("/:id", h.Records.Get)
		records.PUT("/:id", h.Records.Update)
		records.DELETE("/:id", h.Records.Delete)
	}

	return engine
}
