package server

import (
	"fmt"
	"os"

	"github.com/gin-contrib/cors"
	ginlogger "github.com/gin-contrib/logger"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"

	"github.com/arintala/wanderplan/config"
	"github.com/arintala/wanderplan/internal/handlers"
	"github.com/arintala/wanderplan/internal/middleware"
	"github.com/arintala/wanderplan/internal/validation"
)

func Start() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %v", err)
	}

	db, err := config.InitDatabase(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %v", err)
	}

	r := NewRouter(db)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	return r.Run(":" + port)
}

// NewRouter assembles the engine, middleware chain and route table.
func NewRouter(db *gorm.DB) *gin.Engine {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		validation.RegisterTagNames(v)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(ginlogger.SetLogger())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	r.Use(cors.New(corsConfig))

	setupRoutes(r, db)

	return r
}

func setupRoutes(r *gin.Engine, db *gorm.DB) {
	r.Use(middleware.DatabaseMiddleware(db))

	public := r.Group("/v1")
	{
		public.POST("/login", handlers.Login)
		public.POST("/users", handlers.CreateUser)
	}

	// Reads that are open to everyone but scope results by identity when a
	// credential is presented.
	open := r.Group("/v1")
	open.Use(middleware.OptionalAuth())
	{
		open.GET("/destinations", handlers.ListDestinations)
		open.GET("/destinations/:id", handlers.GetDestination)
		open.GET("/travelplans", handlers.ListTravelPlans)
		open.GET("/travelplans/:id", handlers.GetTravelPlan)
		open.GET("/travelplandestinations", handlers.ListItineraryEntries)
		open.GET("/activities", handlers.ListActivities)
		open.GET("/comments", handlers.ListComments)
		open.GET("/comments/:id", handlers.GetComment)
	}

	protected := r.Group("/v1")
	protected.Use(middleware.RequireAuth())
	{
		protected.POST("/logout", handlers.Logout)

		protected.GET("/users", handlers.ListUsers)
		protected.GET("/users/:id", handlers.GetUser)
		protected.PATCH("/users/:id", handlers.UpdateUser)
		protected.DELETE("/users/:id", handlers.DeleteUser)

		protected.POST("/destinations", handlers.CreateDestination)
		protected.PATCH("/destinations/:id", handlers.UpdateDestination)
		protected.DELETE("/destinations/:id", handlers.DeleteDestination)

		protected.POST("/travelplans", handlers.CreateTravelPlan)
		protected.PATCH("/travelplans/:id", handlers.UpdateTravelPlan)
		protected.DELETE("/travelplans/:id", handlers.DeleteTravelPlan)

		protected.POST("/travelplandestinations", handlers.CreateItineraryEntry)
		protected.GET("/travelplandestinations/:id", handlers.GetItineraryEntry)
		protected.PATCH("/travelplandestinations/:id", handlers.UpdateItineraryEntry)
		protected.DELETE("/travelplandestinations/:id", handlers.DeleteItineraryEntry)

		protected.POST("/activities", handlers.CreateActivity)
		protected.GET("/activities/:id", handlers.GetActivity)
		protected.PATCH("/activities/:id", handlers.UpdateActivity)
		protected.DELETE("/activities/:id", handlers.DeleteActivity)

		protected.POST("/comments", handlers.CreateComment)
		protected.PATCH("/comments/:id", handlers.UpdateComment)
		protected.DELETE("/comments/:id", handlers.DeleteComment)
	}
}
