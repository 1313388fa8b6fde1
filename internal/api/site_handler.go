package api

import (
	"alcyxob/trainer-app/internal/web"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// SiteHandler serves the marketing pages and health checks.
type SiteHandler struct{}

func NewSiteHandler() *SiteHandler {
	return &SiteHandler{}
}

func (h *SiteHandler) Landing(c *gin.Context) {
	c.HTML(http.StatusOK, web.LandingPage, gin.H{"Title": "Plans your students actually follow"})
}

func (h *SiteHandler) Pricing(c *gin.Context) {
	c.HTML(http.StatusOK, web.PricingPage, gin.H{"Title": "Pricing", "Tiers": web.PricingTiers})
}

func (h *SiteHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *SiteHandler) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}

// NotFound answers JSON under /api and an HTML page elsewhere.
func (h *SiteHandler) NotFound(c *gin.Context) {
	if strings.HasPrefix(c.Request.URL.Path, "/api/") {
		abortWithError(c, http.StatusNotFound, "Route not found")
		return
	}
	c.HTML(http.StatusNotFound, web.NotFoundPage, gin.H{
		"Title":   "Page not found",
		"Message": "The page you are looking for does not exist.",
	})
}
