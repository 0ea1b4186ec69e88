package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type Health struct{}

func NewHealthHandler() *Health {
	return &Health{}
}

func (h *Health) EnrichRoutes(router *gin.Engine) {
	router.GET("/health", h.healthAction)
	router.GET("/", h.rootAction)
}

func (h *Health) healthAction(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func (h *Health) rootAction(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Todo API with AI Agent",
		"docs":    "/health",
	})
}
