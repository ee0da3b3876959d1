package handler

import (
	"fmt"
	"testing"
	"time"

	"github.com/Sujalarora-18/Assignment-Portal/internal/middleware"
	"github.com/Sujalarora-18/Assignment-Portal/internal/model/entity"
	"github.com/Sujalarora-18/Assignment-Portal/internal/repository"
	"github.com/Sujalarora-18/Assignment-Portal/internal/service"
	"github.com/Sujalarora-18/Assignment-Portal/internal/testutil"
	"github.com/Sujalarora-18/Assignment-Portal/internal/workflow"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func setupAssignmentTest(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)

	repos := repository.NewRepositories(db)
	assignmentSvc := service.NewAssignmentService(repos.Assignment, repos.Department, nil, "")
	workflowSvc := service.NewWorkflowService(repos.Assignment, repos.User)
	h := NewAssignmentHandler(assignmentSvc, workflowSvc)

	router := testutil.SetupRouter()
	api := testutil.AuthGroup(router, "/api/v1")

	assignments := api.Group("/assignments")
	assignments.GET("", h.List)
	assignments.GET("/:id", h.Get)
	assignments.GET("/:id/history", h.History)

	student := assignments.Group("")
	student.Use(middleware.RequireRole(entity.RoleStudent))
	{
		student.POST("", h.Create)
		student.PUT("/:id", h.Update)
		student.POST("/:id/submit", h.Submit)
	}

	reviewer := assignments.Group("")
	reviewer.Use(middleware.RequireRole(entity.RoleProfessor, entity.RoleHOD))
	{
		reviewer.POST("/:id/approve", h.Approve)
		reviewer.POST("/:id/reject", h.Reject)
		reviewer.POST("/:id/forward", h.Forward)
	}

	return router, db
}

func seedReadyDraft(t *testing.T, db *gorm.DB, studentID string) *entity.Assignment {
	t.Helper()
	now := time.Now()
	a := &entity.Assignment{
		ID:               uuid.New().String()[:32],
		StudentID:        studentID,
		Title:            "Compiler Project Report",
		Category:         entity.CategoryReport,
		Status:           workflow.StatusDraft,
		FilePath:         "assignments/2026/08/28/r1.pdf",
		FileOriginalName: "report.pdf",
		FileSize:         4096,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := db.Create(a).Error; err != nil {
		t.Fatalf("seed assignment: %v", err)
	}
	return a
}

func tokenFor(u *entity.User) string {
	return testutil.GenerateTestToken(u.ID, u.Name, u.Email, u.Role)
}

func TestAssignmentCreateAndGet(t *testing.T) {
	router, db := setupAssignmentTest(t)

	student := testutil.SeedUser(t, db, "Student", "student@test.com", entity.RoleStudent)
	token := tokenFor(student)

	w := testutil.DoRequest(router, "POST", "/api/v1/assignments", map[string]interface{}{
		"title":    "Algorithms Homework 3",
		"category": "Assignment",
	}, token)
	if w.Code != 201 {
		t.Fatalf("create status = %d, body = %s", w.Code, w.Body.String())
	}

	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	id := data["id"].(string)
	if data["status"] != "draft" {
		t.Errorf("new assignment status = %v, want draft", data["status"])
	}

	w = testutil.DoRequest(router, "GET", "/api/v1/assignments/"+id, nil, token)
	if w.Code != 200 {
		t.Fatalf("get status = %d", w.Code)
	}

	// requires auth
	w = testutil.DoRequest(router, "GET", "/api/v1/assignments/"+id, nil, "")
	if w.Code != 401 {
		t.Errorf("unauthenticated get status = %d, want 401", w.Code)
	}
}

func TestAssignmentRoleEnforcement(t *testing.T) {
	router, db := setupAssignmentTest(t)

	prof := testutil.SeedUser(t, db, "Prof", "prof@test.com", entity.RoleProfessor)

	// a professor cannot create assignments
	w := testutil.DoRequest(router, "POST", "/api/v1/assignments", map[string]interface{}{
		"title":    "Should fail",
		"category": "Assignment",
	}, tokenFor(prof))
	if w.Code != 403 {
		t.Errorf("create by professor status = %d, want 403", w.Code)
	}

	student := testutil.SeedUser(t, db, "Student", "student@test.com", entity.RoleStudent)
	a := seedReadyDraft(t, db, student.ID)

	// a student cannot approve
	w = testutil.DoRequest(router, "POST", fmt.Sprintf("/api/v1/assignments/%s/approve", a.ID), nil, tokenFor(student))
	if w.Code != 403 {
		t.Errorf("approve by student status = %d, want 403", w.Code)
	}
}

func TestAssignmentReviewFlowOverHTTP(t *testing.T) {
	router, db := setupAssignmentTest(t)

	student := testutil.SeedUser(t, db, "Student", "student@test.com", entity.RoleStudent)
	prof := testutil.SeedUser(t, db, "Prof", "prof@test.com", entity.RoleProfessor)
	hod := testutil.SeedUser(t, db, "HOD", "hod@test.com", entity.RoleHOD)

	a := seedReadyDraft(t, db, student.ID)

	// submit
	w := testutil.DoRequest(router, "POST", fmt.Sprintf("/api/v1/assignments/%s/submit", a.ID), map[string]interface{}{
		"reviewer_id": prof.ID,
	}, tokenFor(student))
	if w.Code != 200 {
		t.Fatalf("submit status = %d, body = %s", w.Code, w.Body.String())
	}

	// reject without remark is a validation error
	w = testutil.DoRequest(router, "POST", fmt.Sprintf("/api/v1/assignments/%s/reject", a.ID), map[string]interface{}{}, tokenFor(prof))
	if w.Code != 400 {
		t.Errorf("reject without remark status = %d, want 400", w.Code)
	}

	// forward to the HOD
	w = testutil.DoRequest(router, "POST", fmt.Sprintf("/api/v1/assignments/%s/forward", a.ID), map[string]interface{}{
		"reviewer_id": hod.ID,
		"remark":      "Escalating for final sign-off",
	}, tokenFor(prof))
	if w.Code != 200 {
		t.Fatalf("forward status = %d, body = %s", w.Code, w.Body.String())
	}

	// the original reviewer lost decision rights after forwarding
	w = testutil.DoRequest(router, "POST", fmt.Sprintf("/api/v1/assignments/%s/approve", a.ID), nil, tokenFor(prof))
	if w.Code != 403 {
		t.Errorf("approve by forwarding reviewer status = %d, want 403", w.Code)
	}

	// the new current reviewer approves
	w = testutil.DoRequest(router, "POST", fmt.Sprintf("/api/v1/assignments/%s/approve", a.ID), map[string]interface{}{
		"remark":    "Approved",
		"signature": "sig-hod",
	}, tokenFor(hod))
	if w.Code != 200 {
		t.Fatalf("approve status = %d, body = %s", w.Code, w.Body.String())
	}

	// repeated approve conflicts with the terminal state
	w = testutil.DoRequest(router, "POST", fmt.Sprintf("/api/v1/assignments/%s/approve", a.ID), nil, tokenFor(hod))
	if w.Code != 409 {
		t.Errorf("second approve status = %d, want 409", w.Code)
	}

	// history is visible to participants
	w = testutil.DoRequest(router, "GET", fmt.Sprintf("/api/v1/assignments/%s/history", a.ID), nil, tokenFor(student))
	if w.Code != 200 {
		t.Fatalf("history status = %d", w.Code)
	}
	resp := testutil.ParseResponse(w)
	history := resp["data"].([]interface{})
	if len(history) != 3 {
		t.Errorf("history length = %d, want 3", len(history))
	}

	// but not to uninvolved users
	outsider := testutil.SeedUser(t, db, "Outsider", "outsider@test.com", entity.RoleStudent)
	w = testutil.DoRequest(router, "GET", fmt.Sprintf("/api/v1/assignments/%s", a.ID), nil, tokenFor(outsider))
	if w.Code != 403 {
		t.Errorf("get by outsider status = %d, want 403", w.Code)
	}
}

func TestAssignmentSubmitValidation(t *testing.T) {
	router, db := setupAssignmentTest(t)

	student := testutil.SeedUser(t, db, "Student", "student@test.com", entity.RoleStudent)
	prof := testutil.SeedUser(t, db, "Prof", "prof@test.com", entity.RoleProfessor)
	token := tokenFor(student)

	// a draft without a file cannot be submitted
	w := testutil.DoRequest(router, "POST", "/api/v1/assignments", map[string]interface{}{
		"title":    "No file yet",
		"category": "Thesis",
	}, token)
	if w.Code != 201 {
		t.Fatalf("create status = %d", w.Code)
	}
	id := testutil.ParseResponse(w)["data"].(map[string]interface{})["id"].(string)

	w = testutil.DoRequest(router, "POST", fmt.Sprintf("/api/v1/assignments/%s/submit", id), map[string]interface{}{
		"reviewer_id": prof.ID,
	}, token)
	if w.Code != 400 {
		t.Errorf("submit without file status = %d, want 400", w.Code)
	}

	// unknown assignment
	w = testutil.DoRequest(router, "POST", "/api/v1/assignments/nonexistent/submit", map[string]interface{}{
		"reviewer_id": prof.ID,
	}, token)
	if w.Code != 404 {
		t.Errorf("submit unknown assignment status = %d, want 404", w.Code)
	}
}
