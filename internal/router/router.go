package router

import (
	"log/slog"
	"net/http"
	"time"

	"menuwise/internal/app"
	"menuwise/internal/auth"
	"menuwise/internal/dish"
	"menuwise/internal/menu"
	"menuwise/internal/middleware"
	"menuwise/internal/user"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func NewRouter(a *app.App) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(a.Logger))
	r.Use(corsMiddleware(a.Config.CORSOrigins))

	// Health check route
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})

	requireAuth := middleware.AuthMiddleware(a.Tokens)

	// ───────────────────────── AUTH ─────────────────────────
	authHandler := auth.NewHandler(a.Auth)
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.GET("/verify", authHandler.Verify)
	}

	// ───────────────────────── USERS ─────────────────────────
	userHandler := user.NewHandler(a.Users)
	users := r.Group("/users/:id", requireAuth)
	{
		users.GET("", userHandler.Get)
		users.GET("/bmi", userHandler.BMI)

		self := users.Group("", middleware.RequireSelf("id"))
		self.PUT("", userHandler.Update)
		self.POST("/update-health", userHandler.UpdateHealth)
		self.POST("/consume", userHandler.Consume)
	}

	// ───────────────────────── DISHES ─────────────────────────
	dishHandler := dish.NewHandler(a.Dishes)
	dishes := r.Group("/dishes")
	{
		dishes.GET("", dishHandler.List)
		dishes.GET("/:id", dishHandler.Get)
		dishes.GET("/:id/taste-profile", dishHandler.TasteProfile)

		dishes.POST("", requireAuth, dishHandler.Create)
		dishes.PUT("/:id", requireAuth, dishHandler.Update)
		dishes.DELETE("/:id", requireAuth, dishHandler.Delete)
		dishes.POST("/:id/rate", requireAuth, dishHandler.Rate)
		dishes.GET("/:id/suitability", requireAuth, dishHandler.Suitability)
	}

	// ───────────────────────── MENUS ─────────────────────────
	menuHandler := menu.NewHandler(a.Menus)
	menus := r.Group("/menus")
	{
		menus.GET("", menuHandler.List)
		menus.GET("/nearby/search", menuHandler.Nearby)
		menus.GET("/:id", menuHandler.Get)
		menus.GET("/:id/summary", menuHandler.Summary)

		menus.POST("", requireAuth, menuHandler.Create)
		menus.POST("/upload", requireAuth, menuHandler.Upload)
		menus.PUT("/:id", requireAuth, menuHandler.Update)
		menus.POST("/:id/dishes", requireAuth, menuHandler.AttachDish)
		menus.POST("/:id/recalculate-health-score", requireAuth, menuHandler.Recalculate)
	}

	// ───────────────────────── REALTIME ─────────────────────────
	r.GET("/ws", requireAuth, a.Hub.ServeWS)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Route not found"})
	})

	a.Logger.Debug("routes registered", slog.Int("count", len(r.Routes())))
	return r
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
		cfg.AllowCredentials = false
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}
