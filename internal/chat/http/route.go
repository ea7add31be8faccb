package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *Handler, rateLimit gin.HandlerFunc) {
	group := g.Group("/chat")
	group.Use(rateLimit)
	{
		group.POST("", h.Chat)
	}
}
