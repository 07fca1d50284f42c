package transport

import (
	"embed"
	"html/template"
	"net/http"
	"time"

	"github.com/ds124wfegd/autotagger/internal/pkg/storage"
	"github.com/ds124wfegd/autotagger/internal/transport/middleware"
	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html
var templatesFS embed.FS

// InitRoutes wires the page, API and asset routes. sessions is the
// middleware resolving the caller's session for the page routes.
func InitRoutes(h *Handler, sessions gin.HandlerFunc, assets *storage.Assets, requestTimeout time.Duration) *gin.Engine {
	router := gin.New()

	router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	router.Use(gin.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.Timeout(requestTimeout))

	router.SetHTMLTemplate(template.Must(template.New("").ParseFS(templatesFS, "templates/*.html")))

	router.GET("/assets/logo.png", serveAsset(assets.Logo))
	router.GET("/favicon.ico", serveAsset(assets.Icon))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "autotagger",
		})
	})

	web := router.Group("/", sessions)
	{
		web.GET("/", h.Index)
		web.POST("/projects/:project", h.SelectProject)
		web.POST("/autotagging/upload", h.Upload)
		web.POST("/autotagging/language", h.ToggleLanguage)
	}

	api := router.Group("/api/v1")
	{
		api.POST("/tags", h.TagImage)
	}

	return router
}

func serveAsset(asset storage.Asset) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "public, max-age=86400")
		c.Data(http.StatusOK, asset.ContentType, asset.Data)
	}
}
