package handler

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"viralcut/internal/dto"
	"viralcut/internal/response"
	"viralcut/log"
	apperrors "viralcut/pkg/errors"
	"viralcut/pkg/util"
)

const uploadDir = "./uploads"

// CreateJob accepts either a multipart upload (field "file") or a JSON body
// with a "local:" url referencing an already uploaded file. Admission runs
// synchronously: a rejected video gets the error here and no job is created.
func (h Handler) CreateJob(c *gin.Context) {
	var req dto.CreateJobReq

	if file, err := c.FormFile("file"); err == nil {
		if err := os.MkdirAll(uploadDir, 0755); err != nil {
			response.ErrorResponse(c, apperrors.Wrap(apperrors.ErrFileWriteError, err))
			return
		}
		savePath := filepath.Join(uploadDir,
			fmt.Sprintf("%s_%s", util.GenerateRandStringWithUpperLowerNum(8), filepath.Base(file.Filename)))
		if err := c.SaveUploadedFile(file, savePath); err != nil {
			log.GetLogger().Error("CreateJob save upload err", zap.Error(err))
			response.ErrorResponse(c, apperrors.Wrap(apperrors.ErrFileWriteError, err))
			return
		}
		req.Url = "local:" + savePath
		req.AccountRef = c.PostForm("account_ref")
	} else {
		if err := c.ShouldBindJSON(&req); err != nil {
			log.GetLogger().Error("CreateJob ShouldBindJSON err", zap.Error(err))
			response.ErrorResponse(c, apperrors.Wrap(apperrors.ErrInvalidParams, err))
			return
		}
	}
	log.GetLogger().Info("CreateJob received request", zap.String("url", req.Url))

	data, err := h.Service.CreateJob(c.Request.Context(), req)
	if err != nil {
		response.ErrorResponse(c, err)
		return
	}
	response.Success(c, data)
}

func (h Handler) GetJobStatus(c *gin.Context) {
	jobId := c.Param("jobId")
	if jobId == "" {
		response.ErrorResponse(c, apperrors.ErrInvalidParams)
		return
	}

	data, err := h.Service.GetStatus(jobId)
	if err != nil {
		response.ErrorResponse(c, err)
		return
	}
	response.Success(c, data)
}

func (h Handler) GetAnalysis(c *gin.Context) {
	jobId := c.Param("jobId")
	if jobId == "" {
		response.ErrorResponse(c, apperrors.ErrInvalidParams)
		return
	}

	data, err := h.Service.GetAnalysis(jobId)
	if err != nil {
		response.ErrorResponse(c, err)
		return
	}
	response.Success(c, data)
}

func (h Handler) GetSegments(c *gin.Context) {
	jobId := c.Param("jobId")
	if jobId == "" {
		response.ErrorResponse(c, apperrors.ErrInvalidParams)
		return
	}

	data, err := h.Service.GetSegments(jobId)
	if err != nil {
		response.ErrorResponse(c, err)
		return
	}
	response.Success(c, data)
}

func (h Handler) DownloadClip(c *gin.Context) {
	jobId := c.Param("jobId")
	segmentNumber, err := strconv.Atoi(c.Param("segmentNumber"))
	if jobId == "" || err != nil {
		response.ErrorResponse(c, apperrors.ErrInvalidParams)
		return
	}

	clipPath, err := h.Service.ClipArtifactPath(jobId, segmentNumber)
	if err != nil {
		response.ErrorResponse(c, err)
		return
	}
	c.FileAttachment(clipPath, filepath.Base(clipPath))
}

func (h Handler) DeleteJob(c *gin.Context) {
	jobId := c.Param("jobId")
	if jobId == "" {
		response.ErrorResponse(c, apperrors.ErrInvalidParams)
		return
	}

	if err := h.Service.DeleteJob(jobId); err != nil {
		response.ErrorResponse(c, err)
		return
	}
	response.Success(c, nil)
}

func (h Handler) CancelJob(c *gin.Context) {
	jobId := c.Param("jobId")
	if jobId == "" {
		response.ErrorResponse(c, apperrors.ErrInvalidParams)
		return
	}

	if err := h.Service.CancelJob(jobId); err != nil {
		response.ErrorResponse(c, err)
		return
	}
	response.Success(c, nil)
}

func (h Handler) GetJobHistory(c *gin.Context) {
	data, err := h.Service.JobHistory(200)
	if err != nil {
		response.ErrorResponse(c, err)
		return
	}
	response.Success(c, data)
}
