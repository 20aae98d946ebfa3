package router

import (
	"github.com/gin-gonic/gin"
	"github.com/stickerverse/sticker-catalog/config"
	"github.com/stickerverse/sticker-catalog/internal/app/controller"
	"github.com/stickerverse/sticker-catalog/internal/app/model"
	"github.com/stickerverse/sticker-catalog/internal/middleware"
)

type Router struct {
	authController     *controller.AuthController
	catalogController  *controller.CatalogController
	taxonomyController *controller.TaxonomyController
	uploadController   *controller.UploadController
	authMiddleware     *middleware.AuthMiddleware
	config             *config.Config
}

func NewRouter(
	authController *controller.AuthController,
	catalogController *controller.CatalogController,
	taxonomyController *controller.TaxonomyController,
	uploadController *controller.UploadController,
	authMiddleware *middleware.AuthMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		authController:     authController,
		catalogController:  catalogController,
		taxonomyController: taxonomyController,
		uploadController:   uploadController,
		authMiddleware:     authMiddleware,
		config:             cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"message": "Sticker catalog API is running",
		})
	})

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", r.authController.Register)
			auth.POST("/login", r.authController.Login)
			auth.GET("/me/role", r.authMiddleware.Authenticate(), r.authController.GetMyRole)
			auth.POST("/bootstrap-admin", r.authMiddleware.Authenticate(), r.authController.BootstrapAdmin)
		}

		categories := v1.Group("/categories")
		{
			categories.GET("", r.catalogController.ListCategories)
			categories.GET("/:code/subcategories", r.catalogController.ListSubcategoriesByCategory)
		}

		subcategories := v1.Group("/subcategories")
		{
			subcategories.GET("", r.catalogController.ListSubcategories)
			subcategories.GET("/:code/groups", r.catalogController.ListGroups)
		}

		groups := v1.Group("/groups")
		{
			groups.GET("/sticker-counts", r.catalogController.GetStickerCounts)
			groups.GET("/:code/stickers", r.catalogController.GetStickersByGroup)
		}

		stickers := v1.Group("/stickers")
		{
			stickers.GET("", r.catalogController.ListStickers)
			stickers.GET("/recent", r.catalogController.ListRecentStickers)
		}

		admin := v1.Group("/admin")
		admin.Use(r.authMiddleware.Authenticate(), r.authMiddleware.RequireRole(string(model.RoleAdmin)))
		{
			taxonomy := admin.Group("/taxonomy")
			{
				taxonomy.POST("/seed", r.taxonomyController.Seed)
				taxonomy.POST("/categories", r.taxonomyController.UpsertCategory)
				taxonomy.POST("/subcategories", r.taxonomyController.UpsertSubcategory)
				taxonomy.POST("/groups", r.taxonomyController.UpsertGroup)

				cleanup := taxonomy.Group("/cleanup")
				{
					cleanup.POST("/dedupe-categories", r.taxonomyController.DedupeCategories)
					cleanup.POST("/dedupe-subcategories", r.taxonomyController.DedupeSubcategories)
					cleanup.POST("/dedupe-groups", r.taxonomyController.DedupeGroups)
					cleanup.POST("/purge", r.taxonomyController.Purge)
					cleanup.POST("/migrate-links", r.taxonomyController.MigrateLinks)
				}

				taxonomy.GET("/audit", r.taxonomyController.Audit)
				taxonomy.GET("/audit.xlsx", r.taxonomyController.AuditWorkbook)
			}

			uploads := admin.Group("/uploads")
			{
				uploads.POST("/url", r.uploadController.GenerateUploadURL)
				uploads.POST("/finalize", r.uploadController.FinalizeUpload)
				uploads.GET("/prefixes", r.uploadController.ListPrefixes)
				uploads.GET("/prefixes/:prefix", r.uploadController.ResolvePrefix)
			}
		}
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Authorization, Accept, Origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
