package fleet

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"domes/pkg/domespb"
)

// NewRouter builds the gateway's HTTP surface, mirroring the teacher's
// cmd/driver/hasher-host Orchestrator.handleHealth/handleMetrics style:
// gin.New() + gin.Recovery(), one method per route, gin.H JSON bodies.
func NewRouter(g *Gateway) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/healthz", g.handleHealthz)
	router.GET("/pods", g.handlePods)
	router.GET("/trace/dump", g.handleTraceDump)

	return router
}

func (g *Gateway) handleHealthz(c *gin.Context) {
	stats, err := sampleHostStats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	stats.PodCount = uint32(len(g.allPods()))

	c.JSON(http.StatusOK, gin.H{
		"status":         "healthy",
		"podCount":       stats.PodCount,
		"uptimeSeconds":  stats.UptimeSeconds,
		"loadAverage1m":  stats.LoadAverage1M,
		"memUsedPercent": stats.MemUsedPercent,
	})
}

func (g *Gateway) handlePods(c *gin.Context) {
	resp, err := g.ListPods(c.Request.Context(), nil)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"pods": resp.Pods})
}

func (g *Gateway) handleTraceDump(c *gin.Context) {
	podIDStr := c.Query("podId")
	podID, err := strconv.ParseUint(podIDStr, 10, 8)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid or missing podId"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout*3)
	defer cancel()

	resp, err := g.TraceDump(ctx, &domespb.TraceDumpRequest{PodID: uint8(podID)})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"podId":        resp.PodID,
		"eventCount":   len(resp.Events) / 16,
		"droppedCount": resp.DroppedCount,
	})
}
