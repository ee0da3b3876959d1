package service

import (
	"context"
	"errors"
	"testing"

	"github.com/Sujalarora-18/Assignment-Portal/internal/model/entity"
	"github.com/Sujalarora-18/Assignment-Portal/internal/repository"
	"github.com/Sujalarora-18/Assignment-Portal/internal/testutil"
	"github.com/Sujalarora-18/Assignment-Portal/internal/workflow"
	"gorm.io/gorm"
)

func setupDepartmentTest(t *testing.T) (*DepartmentService, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	return NewDepartmentService(repos.Department, repos.User), db
}

func TestDepartmentCRUD(t *testing.T) {
	svc, _ := setupDepartmentTest(t)
	ctx := context.Background()

	dept, err := svc.Create(ctx, &CreateDepartmentRequest{Code: "CSE", Name: "Computer Science"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// duplicate name rejected
	if _, err := svc.Create(ctx, &CreateDepartmentRequest{Code: "CS2", Name: "Computer Science"}); !errors.Is(err, workflow.ErrValidation) {
		t.Errorf("duplicate create: %v, want ErrValidation", err)
	}

	got, err := svc.Get(ctx, dept.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Code != "CSE" {
		t.Errorf("code = %s, want CSE", got.Code)
	}

	updated, err := svc.Update(ctx, dept.ID, &UpdateDepartmentRequest{Name: "Computer Science and Engineering"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Computer Science and Engineering" {
		t.Errorf("name = %s", updated.Name)
	}

	depts, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(depts) != 1 {
		t.Errorf("list length = %d, want 1", len(depts))
	}

	if err := svc.Delete(ctx, dept.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Get(ctx, dept.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("get after delete: %v, want ErrNotFound", err)
	}
}

func TestDepartmentAssignHOD(t *testing.T) {
	svc, db := setupDepartmentTest(t)
	ctx := context.Background()

	dept, err := svc.Create(ctx, &CreateDepartmentRequest{Code: "EEE", Name: "Electrical Engineering"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	hodUser := testutil.SeedUser(t, db, "Head", "head@test.com", entity.RoleHOD)
	profUser := testutil.SeedUser(t, db, "Prof", "prof-eee@test.com", entity.RoleProfessor)

	// only users with the hod role qualify
	if _, err := svc.AssignHOD(ctx, dept.ID, profUser.ID); !errors.Is(err, workflow.ErrValidation) {
		t.Errorf("assign professor as hod: %v, want ErrValidation", err)
	}
	if _, err := svc.AssignHOD(ctx, dept.ID, "nonexistent"); !errors.Is(err, workflow.ErrValidation) {
		t.Errorf("assign unknown user: %v, want ErrValidation", err)
	}

	updated, err := svc.AssignHOD(ctx, dept.ID, hodUser.ID)
	if err != nil {
		t.Fatalf("assign hod: %v", err)
	}
	if updated.HODID != hodUser.ID {
		t.Errorf("hod id = %s, want %s", updated.HODID, hodUser.ID)
	}
	if updated.HOD == nil || updated.HOD.Email != "head@test.com" {
		t.Error("hod association not loaded")
	}
}
