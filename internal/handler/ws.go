package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"viralcut/internal/response"
	"viralcut/log"
	apperrors "viralcut/pkg/errors"
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

const progressPushInterval = 500 * time.Millisecond

// ProgressWS streams job progress snapshots over a websocket until the job
// reaches a terminal stage or the client disconnects. Snapshots are pushed
// only when they change.
func (h Handler) ProgressWS(c *gin.Context) {
	jobId := c.Param("jobId")
	if jobId == "" {
		response.ErrorResponse(c, apperrors.ErrInvalidParams)
		return
	}

	if _, err := h.Service.Snapshot(jobId); err != nil {
		response.ErrorResponse(c, err)
		return
	}

	conn, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.GetLogger().Error("ProgressWS upgrade err", zap.String("jobId", jobId), zap.Error(err))
		return
	}
	defer conn.Close()

	// Drain client messages so pongs and close frames are processed.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(progressPushInterval)
	defer ticker.Stop()

	var lastStage string
	var lastProgress int = -1
	for range ticker.C {
		snap, err := h.Service.Snapshot(jobId)
		if err != nil {
			return
		}
		if string(snap.Stage) != lastStage || snap.Progress != lastProgress {
			if err := conn.WriteJSON(snap); err != nil {
				return
			}
			lastStage = string(snap.Stage)
			lastProgress = snap.Progress
		}
		if snap.Stage.Terminal() {
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second))
			return
		}
	}
}
