// Package errors provides structured error handling for the application.
// It defines AppError type with error codes for consistent API responses.
package errors

import (
	"errors"
	"fmt"
)

// Error codes organized by category
const (
	// General errors (1000-1099)
	CodeSuccess       = 0
	CodeUnknown       = 1000
	CodeInvalidParams = 1001
	CodeNotFound      = 1002
	CodeUnauthorized  = 1003

	// Media admission errors (1100-1199)
	CodeUnreadableMedia  = 1100
	CodeDurationExceeded = 1101
	CodeFileTooLarge     = 1102

	// Analysis errors (1200-1299)
	CodeAnalysisUnavailable = 1200
	CodeAnalysisParseFailed = 1201
	CodeAnalysisTimeout     = 1202

	// Caption/Script synthesis errors (1300-1399)
	CodeSynthesisFailed = 1300

	// Clip rendering errors (1400-1499)
	CodeRenderFailure = 1400
	CodeRenderTimeout = 1401

	// Storage errors (1500-1599)
	CodeDBError          = 1500
	CodeArtifactNotFound = 1501
	CodeFileWriteError   = 1502

	// Job lifecycle errors (1600-1699)
	CodeNotReady         = 1600
	CodeJobNotFound      = 1601
	CodeJobNotCancelable = 1602
	CodeJobCancelled     = 1603
)

// AppError represents a structured application error
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
	Cause   error  `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap attaches a cause to a predefined error. The base is copied, never
// mutated, so the predefined vars stay shared.
func Wrap(base *AppError, cause error) *AppError {
	return &AppError{
		Code:    base.Code,
		Message: base.Message,
		Cause:   cause,
	}
}

// WrapWithDetail wraps a predefined error with a cause and extra detail
func WrapWithDetail(base *AppError, cause error, detail string) *AppError {
	return &AppError{
		Code:    base.Code,
		Message: base.Message,
		Detail:  detail,
		Cause:   cause,
	}
}

// Is checks if the target error is an AppError with the specified code
func Is(err error, code int) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// GetCode extracts error code from error, returns CodeUnknown if not AppError
func GetCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeUnknown
}

// GetMessage extracts message from error
func GetMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}

// Predefined common errors
var (
	ErrInvalidParams = New(CodeInvalidParams, "参数错误 Invalid parameters")
	ErrNotFound      = New(CodeNotFound, "资源不存在 Resource not found")
	ErrUnauthorized  = New(CodeUnauthorized, "未授权 Unauthorized")

	// Media admission
	ErrUnreadableMedia  = New(CodeUnreadableMedia, "无法解析媒体文件 Unreadable media file")
	ErrDurationExceeded = New(CodeDurationExceeded, "视频时长超出限制 Video duration exceeded")
	ErrFileTooLarge     = New(CodeFileTooLarge, "文件过大 File too large")

	// Analysis
	ErrAnalysisUnavailable = New(CodeAnalysisUnavailable, "AI分析服务不可用 Analysis unavailable")
	ErrAnalysisParseFailed = New(CodeAnalysisParseFailed, "AI分析结果解析失败 Analysis parse failed")

	// Rendering
	ErrRenderFailure = New(CodeRenderFailure, "切片渲染失败 Clip render failed")
	ErrRenderTimeout = New(CodeRenderTimeout, "切片渲染超时 Clip render timed out")

	// Storage
	ErrDBError          = New(CodeDBError, "数据库错误 Database error")
	ErrArtifactNotFound = New(CodeArtifactNotFound, "切片文件不存在 Clip artifact not found")
	ErrFileWriteError   = New(CodeFileWriteError, "文件写入失败 File write failed")

	// Job lifecycle
	ErrNotReady         = New(CodeNotReady, "任务尚未完成 Job not ready")
	ErrJobNotFound      = New(CodeJobNotFound, "任务不存在 Job not found")
	ErrJobNotCancelable = New(CodeJobNotCancelable, "任务已进入渲染，无法立即取消 Job already rendering")
	ErrJobCancelled     = New(CodeJobCancelled, "任务已取消 Job cancelled")
)
