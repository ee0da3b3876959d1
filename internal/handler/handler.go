package handler

import (
	"errors"
	"strconv"

	"github.com/Sujalarora-18/Assignment-Portal/internal/config"
	"github.com/Sujalarora-18/Assignment-Portal/internal/model/entity"
	"github.com/Sujalarora-18/Assignment-Portal/internal/repository"
	"github.com/Sujalarora-18/Assignment-Portal/internal/service"
	"github.com/Sujalarora-18/Assignment-Portal/internal/workflow"
	"github.com/gin-gonic/gin"
)

// Handlers 处理器集合
type Handlers struct {
	Auth       *AuthHandler
	User       *UserHandler
	Department *DepartmentHandler
	Assignment *AssignmentHandler
}

// NewHandlers 创建处理器集合
func NewHandlers(svc *service.Services, cfg *config.Config) *Handlers {
	return &Handlers{
		Auth:       NewAuthHandler(svc.Auth, cfg),
		User:       NewUserHandler(svc.User),
		Department: NewDepartmentHandler(svc.Department),
		Assignment: NewAssignmentHandler(svc.Assignment, svc.Workflow),
	}
}

// Response 通用响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ListResponse 列表响应结构
type ListResponse struct {
	Items      interface{} `json:"items"`
	Pagination *Pagination `json:"pagination"`
}

// Pagination 分页信息
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(200, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Created 创建成功响应
func Created(c *gin.Context, data interface{}) {
	c.JSON(201, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Error 错误响应
func Error(c *gin.Context, code int, message string) {
	statusCode := code / 100
	if statusCode < 100 || statusCode > 599 {
		statusCode = 500
	}
	c.JSON(statusCode, Response{
		Code:    code,
		Message: message,
	})
}

// BadRequest 参数错误响应
func BadRequest(c *gin.Context, message string) {
	Error(c, 40000, message)
}

// Unauthorized 未授权响应
func Unauthorized(c *gin.Context, message string) {
	Error(c, 40100, message)
}

// Forbidden 禁止访问响应
func Forbidden(c *gin.Context, message string) {
	Error(c, 40300, message)
}

// NotFound 资源不存在响应
func NotFound(c *gin.Context, message string) {
	Error(c, 40400, message)
}

// Conflict 状态冲突响应
func Conflict(c *gin.Context, message string) {
	Error(c, 40900, message)
}

// InternalError 服务器错误响应
func InternalError(c *gin.Context, message string) {
	Error(c, 50000, message)
}

// ServiceUnavailable 依赖不可用响应
func ServiceUnavailable(c *gin.Context, message string) {
	Error(c, 50300, message)
}

// HandleError 按错误分类写出响应
func HandleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		NotFound(c, "Resource not found")
	case errors.Is(err, workflow.ErrForbidden):
		Forbidden(c, err.Error())
	case errors.Is(err, workflow.ErrInvalidTransition):
		Conflict(c, err.Error())
	case errors.Is(err, workflow.ErrValidation):
		BadRequest(c, err.Error())
	case errors.Is(err, workflow.ErrStorageUnavailable):
		ServiceUnavailable(c, "Storage temporarily unavailable")
	default:
		InternalError(c, err.Error())
	}
}

// GetUserID 从上下文获取用户ID
func GetUserID(c *gin.Context) string {
	userID, _ := c.Get("user_id")
	if id, ok := userID.(string); ok {
		return id
	}
	return ""
}

// GetRole 从上下文获取用户角色
func GetRole(c *gin.Context) entity.Role {
	v, _ := c.Get("role")
	if role, ok := v.(entity.Role); ok {
		return role
	}
	return ""
}

// GetPagination 从请求获取分页参数
func GetPagination(c *gin.Context) (page, pageSize int) {
	page = 1
	pageSize = 20

	if p := c.Query("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v
		}
	}

	if ps := c.Query("page_size"); ps != "" {
		if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= 100 {
			pageSize = v
		}
	}

	return page, pageSize
}
