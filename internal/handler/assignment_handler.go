package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/Sujalarora-18/Assignment-Portal/internal/service"
	"github.com/gin-gonic/gin"
)

// AssignmentHandler 作业处理器
type AssignmentHandler struct {
	svc      *service.AssignmentService
	workflow *service.WorkflowService
}

// NewAssignmentHandler 创建作业处理器
func NewAssignmentHandler(svc *service.AssignmentService, workflow *service.WorkflowService) *AssignmentHandler {
	return &AssignmentHandler{svc: svc, workflow: workflow}
}

// Create 创建草稿作业（学生）
func (h *AssignmentHandler) Create(c *gin.Context) {
	var req service.CreateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	a, err := h.svc.Create(c.Request.Context(), GetUserID(c), &req)
	if err != nil {
		HandleError(c, err)
		return
	}

	Created(c, a)
}

// List 获取作业列表，可见范围由角色决定
func (h *AssignmentHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)

	filters := map[string]interface{}{
		"keyword":       c.Query("keyword"),
		"status":        c.Query("status"),
		"category":      c.Query("category"),
		"department_id": c.Query("department_id"),
	}

	result, err := h.svc.List(c.Request.Context(), GetUserID(c), GetRole(c), page, pageSize, filters)
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

// Get 获取作业详情
func (h *AssignmentHandler) Get(c *gin.Context) {
	a, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}

	if !h.svc.CanView(a, GetUserID(c), GetRole(c)) {
		Forbidden(c, "Access denied")
		return
	}

	Success(c, a)
}

// Update 更新草稿作业基本信息（所有者）
func (h *AssignmentHandler) Update(c *gin.Context) {
	var req service.UpdateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	a, err := h.svc.Update(c.Request.Context(), c.Param("id"), GetUserID(c), &req)
	if err != nil {
		HandleError(c, err)
		return
	}

	Success(c, a)
}

// Delete 删除作业（管理员）
func (h *AssignmentHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		HandleError(c, err)
		return
	}
	Success(c, gin.H{"message": "Assignment deleted"})
}

// History 获取作业历史记录
func (h *AssignmentHandler) History(c *gin.Context) {
	a, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}

	if !h.svc.CanView(a, GetUserID(c), GetRole(c)) {
		Forbidden(c, "Access denied")
		return
	}

	history, err := h.svc.History(c.Request.Context(), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}

	Success(c, history)
}

// uploadFromForm 从multipart表单读取文件并上传到对象存储
func (h *AssignmentHandler) uploadFromForm(c *gin.Context) (*service.FileRef, error) {
	file, err := c.FormFile("file")
	if err != nil {
		return nil, err
	}

	src, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	contentType := file.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	return h.svc.UploadFile(c.Request.Context(), src, file.Filename, file.Size, contentType)
}

// Upload 上传文件并挂接到草稿作业（所有者）
func (h *AssignmentHandler) Upload(c *gin.Context) {
	ref, err := h.uploadFromForm(c)
	if err != nil {
		BadRequest(c, "File is required: "+err.Error())
		return
	}

	a, err := h.svc.AttachFile(c.Request.Context(), c.Param("id"), GetUserID(c), ref)
	if err != nil {
		HandleError(c, err)
		return
	}

	Success(c, a)
}

// Submit 提交评审。文件可随multipart表单一并上传，
// 也可以使用之前挂接的文件。
func (h *AssignmentHandler) Submit(c *gin.Context) {
	var reviewerID string
	var file *service.FileRef

	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		reviewerID = c.PostForm("reviewer_id")
		if _, err := c.FormFile("file"); err == nil {
			ref, err := h.uploadFromForm(c)
			if err != nil {
				InternalError(c, err.Error())
				return
			}
			file = ref
		}
	} else {
		var req struct {
			ReviewerID string `json:"reviewer_id" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			BadRequest(c, err.Error())
			return
		}
		reviewerID = req.ReviewerID
	}

	a, err := h.workflow.Submit(c.Request.Context(), c.Param("id"), GetUserID(c), file, reviewerID)
	if err != nil {
		HandleError(c, err)
		return
	}

	Success(c, a)
}

// Approve 评审通过（当前评审人）
func (h *AssignmentHandler) Approve(c *gin.Context) {
	var req struct {
		Remark    string `json:"remark"`
		Signature string `json:"signature"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		BadRequest(c, err.Error())
		return
	}

	a, err := h.workflow.Approve(c.Request.Context(), c.Param("id"), GetUserID(c), req.Remark, req.Signature)
	if err != nil {
		HandleError(c, err)
		return
	}

	Success(c, a)
}

// Reject 评审驳回，必须填写意见（当前评审人）
func (h *AssignmentHandler) Reject(c *gin.Context) {
	var req struct {
		Remark    string `json:"remark" binding:"required"`
		Signature string `json:"signature"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	a, err := h.workflow.Reject(c.Request.Context(), c.Param("id"), GetUserID(c), req.Remark, req.Signature)
	if err != nil {
		HandleError(c, err)
		return
	}

	Success(c, a)
}

// Forward 转交评审（当前评审人）
func (h *AssignmentHandler) Forward(c *gin.Context) {
	var req struct {
		ReviewerID string `json:"reviewer_id" binding:"required"`
		Remark     string `json:"remark"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	a, err := h.workflow.Forward(c.Request.Context(), c.Param("id"), GetUserID(c), req.ReviewerID, req.Remark)
	if err != nil {
		HandleError(c, err)
		return
	}

	Success(c, a)
}

// Resubmit 驳回后重新提交，必须携带新文件（所有者）
func (h *AssignmentHandler) Resubmit(c *gin.Context) {
	ref, err := h.uploadFromForm(c)
	if err != nil {
		BadRequest(c, "New file is required: "+err.Error())
		return
	}

	a, err := h.workflow.Resubmit(c.Request.Context(), c.Param("id"), GetUserID(c), ref)
	if err != nil {
		HandleError(c, err)
		return
	}

	Success(c, a)
}

// Download 下载作业当前文件
func (h *AssignmentHandler) Download(c *gin.Context) {
	a, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}

	if !h.svc.CanView(a, GetUserID(c), GetRole(c)) {
		Forbidden(c, "Access denied")
		return
	}

	object, a, err := h.svc.Download(c.Request.Context(), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	defer object.Close()

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, a.FileOriginalName))
	c.Header("Content-Type", "application/octet-stream")
	if a.FileSize > 0 {
		c.Header("Content-Length", fmt.Sprintf("%d", a.FileSize))
	}

	c.DataFromReader(http.StatusOK, a.FileSize, "application/octet-stream", object, nil)
}

// Export 导出作业台账（管理员）
func (h *AssignmentHandler) Export(c *gin.Context) {
	filters := map[string]interface{}{
		"status":        c.Query("status"),
		"category":      c.Query("category"),
		"department_id": c.Query("department_id"),
	}

	f, err := h.svc.ExportRegister(c.Request.Context(), filters)
	if err != nil {
		InternalError(c, err.Error())
		return
	}

	c.Header("Content-Disposition", `attachment; filename="assignments.xlsx"`)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")

	if err := f.Write(c.Writer); err != nil {
		InternalError(c, err.Error())
	}
}
