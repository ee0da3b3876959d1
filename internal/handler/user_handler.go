package handler

import (
	"errors"

	"github.com/Sujalarora-18/Assignment-Portal/internal/repository"
	"github.com/Sujalarora-18/Assignment-Portal/internal/service"
	"github.com/gin-gonic/gin"
)

// UserHandler 用户管理处理器
type UserHandler struct {
	svc *service.UserService
}

// NewUserHandler 创建用户管理处理器
func NewUserHandler(svc *service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// List 获取用户列表
func (h *UserHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)

	filters := map[string]interface{}{
		"keyword":       c.Query("keyword"),
		"role":          c.Query("role"),
		"department_id": c.Query("department_id"),
	}

	result, err := h.svc.List(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		InternalError(c, err.Error())
		return
	}

	Success(c, ListResponse{
		Items: result.Items,
		Pagination: &Pagination{
			Page:       result.Page,
			PageSize:   result.PageSize,
			Total:      result.Total,
			TotalPages: result.TotalPages,
		},
	})
}

// ListReviewers 获取可选评审人列表
func (h *UserHandler) ListReviewers(c *gin.Context) {
	reviewers, err := h.svc.ListReviewers(c.Request.Context(), c.Query("department_id"))
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, reviewers)
}

// Get 获取用户详情
func (h *UserHandler) Get(c *gin.Context) {
	user, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "User not found")
			return
		}
		InternalError(c, err.Error())
		return
	}
	Success(c, user)
}

// Update 更新用户（管理员）
func (h *UserHandler) Update(c *gin.Context) {
	var req service.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	user, err := h.svc.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		HandleError(c, err)
		return
	}

	Success(c, user)
}

// Delete 删除用户（管理员）
func (h *UserHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		HandleError(c, err)
		return
	}
	Success(c, gin.H{"message": "User deleted"})
}

// Overview 系统概览统计（管理员）
func (h *UserHandler) Overview(c *gin.Context) {
	overview, err := h.svc.GetOverview(c.Request.Context())
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, overview)
}
