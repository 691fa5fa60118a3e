package api

import (
	"inkwell/cms/internal/api/middleware"
	"inkwell/cms/internal/authz"
	"inkwell/cms/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRouter wires every route. Published content is served without
// authentication; everything that mutates state sits behind JWT auth
// and the per-handler authorization checks.
func SetupRouter(app *App) *gin.Engine {
	if app.Config.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(logger.GinRecovery())
	router.Use(logger.GinLogger())
	router.Use(middleware.CORS())
	router.Use(middleware.Metrics())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
			"cache":  app.DB.HasCache(),
		})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		authHandler := NewAuthHandler(app)
		userHandler := NewUserHandler(app)
		postHandler := NewPostHandler(app)
		categoryHandler := NewCategoryHandler(app)
		tagHandler := NewTagHandler(app)
		mediaHandler := NewMediaHandler(app)
		commentHandler := NewCommentHandler(app)
		auditHandler := NewAuditHandler(app)

		// Public reads: published posts, taxonomy, visible comments.
		v1.GET("/posts", postHandler.ListPublished)
		v1.GET("/posts/:slug", postHandler.GetPublishedBySlug)
		v1.GET("/posts/:slug/comments", commentHandler.ListForPost)
		v1.GET("/categories", categoryHandler.List)
		v1.GET("/tags", tagHandler.List)

		auth := v1.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
		}

		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(app.Config.Auth.JWTSecret, app.DB))
		{
			authorized.POST("/auth/logout", authHandler.Logout)

			me := authorized.Group("/me")
			{
				me.GET("", userHandler.GetProfile)
				me.PUT("/password", userHandler.UpdatePassword)
			}

			users := authorized.Group("/users")
			users.Use(middleware.RequireRole(authz.RoleEditor))
			{
				users.GET("", userHandler.List)
				users.GET("/:id", userHandler.Get)
				users.PUT("/:id", userHandler.Update)
				users.DELETE("/:id", userHandler.Delete)
			}

			// Admin workspace over posts: drafts, scheduling, actions.
			posts := authorized.Group("/admin/posts")
			{
				posts.GET("", postHandler.List)
				posts.GET("/:id", postHandler.Get)
				posts.GET("/:id/actions", postHandler.Actions)
				posts.POST("", postHandler.Create)
				posts.PUT("/:id", postHandler.Update)
				posts.POST("/:id/publish", postHandler.Publish)
				posts.DELETE("/:id", postHandler.Delete)
			}

			categories := authorized.Group("/categories")
			{
				categories.POST("", categoryHandler.Create)
				categories.PUT("/:id", categoryHandler.Update)
				categories.DELETE("/:id", categoryHandler.Delete)
			}

			tags := authorized.Group("/tags")
			{
				tags.POST("", tagHandler.Create)
				tags.PUT("/:id", tagHandler.Update)
				tags.DELETE("/:id", tagHandler.Delete)
			}

			media := authorized.Group("/media")
			{
				media.GET("", mediaHandler.List)
				media.POST("", mediaHandler.Create)
				media.PUT("/:id", mediaHandler.Update)
				media.DELETE("/:id", mediaHandler.Delete)
			}

			comments := authorized.Group("/comments")
			{
				comments.GET("", commentHandler.List)
				comments.POST("", commentHandler.Create)
				comments.PUT("/:id", commentHandler.Update)
				comments.DELETE("/:id", commentHandler.Delete)
			}

			auditGroup := authorized.Group("/audit")
			auditGroup.Use(middleware.AdminAuth())
			{
				auditGroup.GET("", auditHandler.Recent)
				auditGroup.GET("/users/:id", auditHandler.ForUser)
				auditGroup.GET("/resources/:type/:id", auditHandler.ForResource)
			}
		}
	}

	return router
}
