package handler

import (
	"github.com/Sujalarora-18/Assignment-Portal/internal/service"
	"github.com/gin-gonic/gin"
)

// DepartmentHandler 院系管理处理器
type DepartmentHandler struct {
	svc *service.DepartmentService
}

// NewDepartmentHandler 创建院系管理处理器
func NewDepartmentHandler(svc *service.DepartmentService) *DepartmentHandler {
	return &DepartmentHandler{svc: svc}
}

// Create 创建院系（管理员）
func (h *DepartmentHandler) Create(c *gin.Context) {
	var req service.CreateDepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	dept, err := h.svc.Create(c.Request.Context(), &req)
	if err != nil {
		HandleError(c, err)
		return
	}

	Created(c, dept)
}

// List 获取院系列表
func (h *DepartmentHandler) List(c *gin.Context) {
	depts, err := h.svc.List(c.Request.Context())
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, depts)
}

// Get 获取院系详情
func (h *DepartmentHandler) Get(c *gin.Context) {
	dept, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, dept)
}

// Update 更新院系（管理员）
func (h *DepartmentHandler) Update(c *gin.Context) {
	var req service.UpdateDepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	dept, err := h.svc.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		HandleError(c, err)
		return
	}

	Success(c, dept)
}

// AssignHOD 指派系主任（管理员）
func (h *DepartmentHandler) AssignHOD(c *gin.Context) {
	var req struct {
		UserID string `json:"user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	dept, err := h.svc.AssignHOD(c.Request.Context(), c.Param("id"), req.UserID)
	if err != nil {
		HandleError(c, err)
		return
	}

	Success(c, dept)
}

// Delete 删除院系（管理员）
func (h *DepartmentHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		HandleError(c, err)
		return
	}
	Success(c, gin.H{"message": "Department deleted"})
}
