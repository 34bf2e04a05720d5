package router

import (
	"github.com/gin-gonic/gin"

	"viralcut/internal/handler"
)

func SetupRouter(r *gin.Engine, hdl *handler.Handler) {
	api := r.Group("/api")
	{
		api.POST("/job", hdl.CreateJob)
		api.GET("/job/:jobId/status", hdl.GetJobStatus)
		api.GET("/job/:jobId/analysis", hdl.GetAnalysis)
		api.GET("/job/:jobId/segments", hdl.GetSegments)
		api.GET("/job/:jobId/clip/:segmentNumber", hdl.DownloadClip)
		api.GET("/job/:jobId/progress/ws", hdl.ProgressWS)
		api.POST("/job/:jobId/cancel", hdl.CancelJob)
		api.DELETE("/job/:jobId", hdl.DeleteJob)
		api.GET("/jobs", hdl.GetJobHistory)
	}
}
