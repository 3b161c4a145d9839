package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Routes groups everything RegisterRoutes mounts. Nil middlewares are skipped.
type Routes struct {
	Auth     *AuthHandlers
	Users    *UserHandlers
	Projects *ProjectHandlers
	Circuits *CircuitHandlers
	Storage  *StorageHandlers
	Health   *HealthHandlers
	Metrics  http.Handler

	// Identity resolves the caller on the project, circuit and storage groups.
	Identity    echo.MiddlewareFunc
	UploadLimit echo.MiddlewareFunc
}

// RegisterRoutes mounts the HTTP API on e.
func RegisterRoutes(e *echo.Echo, r Routes) {
	if r.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(r.Metrics))
	}

	api := e.Group("/api")

	// Health endpoints
	api.GET("/health", r.Health.HealthCheck)
	api.GET("/health/ready", r.Health.ReadinessCheck)

	// Authentication routes carry their token in the body
	auth := api.Group("/auth")
	auth.POST("/verify", r.Auth.VerifyToken)
	auth.POST("/signup", r.Auth.SignUp)
	auth.POST("/create-user", r.Auth.CreateUser)
	auth.GET("/get-user", r.Auth.GetUser)
	auth.PUT("/update-user", r.Auth.UpdateUser)
	auth.PUT("/update-profile", r.Auth.UpdateProfile)
	auth.DELETE("/delete-user", r.Auth.DeleteUser)
	auth.POST("/set-custom-claims", r.Auth.SetCustomClaims)

	api.GET("/users", r.Users.ListUsers)

	// Project routes
	projects := api.Group("/projects", middlewares(r.Identity)...)
	projects.GET("", r.Projects.ListProjects)
	projects.POST("/create", r.Projects.CreateProject)
	projects.GET("/get", r.Projects.GetProject)
	projects.PUT("/update", r.Projects.UpdateProject)
	projects.DELETE("/delete", r.Projects.DeleteProject)
	projects.POST("/duplicate", r.Projects.DuplicateProject)

	// Circuit routes
	circuits := api.Group("/circuits", middlewares(r.Identity)...)
	circuits.GET("", r.Circuits.ListCircuits)
	circuits.POST("/create", r.Circuits.CreateCircuit)
	circuits.GET("/get", r.Circuits.GetCircuit)
	circuits.PUT("/update", r.Circuits.UpdateCircuit)
	circuits.DELETE("/delete", r.Circuits.DeleteCircuit)
	circuits.GET("/templates", r.Circuits.ListTemplates)
	circuits.POST("/create-from-template", r.Circuits.CreateFromTemplate)

	// Storage routes; the size cap runs before the caller is resolved
	storage := api.Group("/storage", middlewares(r.UploadLimit, r.Identity)...)
	storage.POST("/upload", r.Storage.UploadFile)
	storage.GET("/url", r.Storage.GetFileURL)
	storage.DELETE("/delete", r.Storage.DeleteFile)
	storage.GET("/list", r.Storage.ListFiles)
	storage.POST("/upload-circuit-image", r.Storage.UploadCircuitImage)
}

func middlewares(mws ...echo.MiddlewareFunc) []echo.MiddlewareFunc {
	out := make([]echo.MiddlewareFunc, 0, len(mws))
	for _, mw := range mws {
		if mw != nil {
			out = append(out, mw)
		}
	}
	return out
}
