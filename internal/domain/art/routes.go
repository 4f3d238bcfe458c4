package art

import (
	"github.com/gin-gonic/gin"

	"atelier/internal/domain/auth"
)

// RegisterRoutes mounts the /arts endpoints on rg. limit guards the like and
// download endpoints.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, gate *auth.Gate, limit gin.HandlerFunc) {
	if limit == nil {
		limit = func(c *gin.Context) { c.Next() }
	}

	arts := rg.Group("/arts")

	// Public
	arts.GET("/all", h.ListAll)
	arts.GET("/new", h.ListNew)
	arts.GET("/popular", h.ListPopular)
	arts.GET("/trend", h.ListTrending)
	arts.GET("/categories", h.ListCategories)
	arts.GET("/category/:categoryId", h.ListByCategory)
	arts.GET("/download/:artId", limit, h.DownloadArt)

	// The token is validated by the service.
	arts.DELETE("/delete", h.DeleteArt)

	authed := arts.Group("")
	authed.Use(gate.Authenticate())
	{
		authed.POST("", h.UploadArt)
		authed.GET("/detail/:artId", h.GetArtDetail)
		authed.GET("/:userId", h.ListByOwner)
		authed.GET("/:userId/like", h.ListLikedBy)
		authed.GET("/:userId/masterpiece", h.GetMasterpieces)
		authed.POST("/like", limit, h.AddLike)
		authed.DELETE("/like", limit, h.RemoveLike)

		authed.PUT("", gate.RequireRole(auth.RoleArtist), h.UpdateArt)
		authed.PUT("/masterpiece", gate.RequireRole(auth.RoleArtist), h.SetMasterpieces)
	}
}
