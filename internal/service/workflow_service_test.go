package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Sujalarora-18/Assignment-Portal/internal/model/entity"
	"github.com/Sujalarora-18/Assignment-Portal/internal/repository"
	"github.com/Sujalarora-18/Assignment-Portal/internal/testutil"
	"github.com/Sujalarora-18/Assignment-Portal/internal/workflow"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func setupWorkflowTest(t *testing.T) (*WorkflowService, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	return NewWorkflowService(repos.Assignment, repos.User), db
}

func seedDraft(t *testing.T, db *gorm.DB, studentID, filePath string) *entity.Assignment {
	t.Helper()
	now := time.Now()
	a := &entity.Assignment{
		ID:               uuid.New().String()[:32],
		StudentID:        studentID,
		Title:            "Distributed Systems Essay",
		Category:         entity.CategoryAssignment,
		Status:           workflow.StatusDraft,
		FilePath:         filePath,
		FileOriginalName: "essay.pdf",
		FileSize:         1024,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := db.Create(a).Error; err != nil {
		t.Fatalf("seed assignment: %v", err)
	}
	return a
}

func TestWorkflowFullLifecycle(t *testing.T) {
	svc, db := setupWorkflowTest(t)
	ctx := context.Background()

	student := testutil.SeedUser(t, db, "Student", "student@test.com", entity.RoleStudent)
	prof1 := testutil.SeedUser(t, db, "Prof One", "prof1@test.com", entity.RoleProfessor)
	prof2 := testutil.SeedUser(t, db, "Prof Two", "prof2@test.com", entity.RoleProfessor)

	a := seedDraft(t, db, student.ID, "assignments/2026/08/28/f1.pdf")

	// submit: draft -> submitted
	a, err := svc.Submit(ctx, a.ID, student.ID, nil, prof1.ID)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if a.Status != workflow.StatusSubmitted {
		t.Fatalf("status = %s, want submitted", a.Status)
	}
	if a.ReviewerID != prof1.ID || a.CurrentReviewer != prof1.ID {
		t.Fatalf("reviewer = %s/%s, want %s", a.ReviewerID, a.CurrentReviewer, prof1.ID)
	}

	// reject: submitted -> rejected, remark required
	a, err = svc.Reject(ctx, a.ID, prof1.ID, "Needs more references", "sig-prof1")
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if a.Status != workflow.StatusRejected {
		t.Fatalf("status = %s, want rejected", a.Status)
	}

	// resubmit: rejected -> submitted, old file path recorded in history
	oldPath := a.FilePath
	a, err = svc.Resubmit(ctx, a.ID, student.ID, &FileRef{
		Path:         "assignments/2026/08/28/f2.pdf",
		OriginalName: "essay-v2.pdf",
		Size:         2048,
	})
	if err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	if a.Status != workflow.StatusSubmitted {
		t.Fatalf("status = %s, want submitted", a.Status)
	}
	if a.FilePath != "assignments/2026/08/28/f2.pdf" {
		t.Fatalf("file path not replaced: %s", a.FilePath)
	}
	// current reviewer stays the last assigned reviewer
	if a.CurrentReviewer != prof1.ID {
		t.Fatalf("current reviewer = %s, want %s", a.CurrentReviewer, prof1.ID)
	}

	// forward: submitted -> forwarded, only current reviewer changes
	a, err = svc.Forward(ctx, a.ID, prof1.ID, prof2.ID, "Closer to your field")
	if err != nil {
		t.Fatalf("forward: %v", err)
	}
	if a.Status != workflow.StatusForwarded {
		t.Fatalf("status = %s, want forwarded", a.Status)
	}
	if a.CurrentReviewer != prof2.ID {
		t.Fatalf("current reviewer = %s, want %s", a.CurrentReviewer, prof2.ID)
	}
	if a.ReviewerID != prof1.ID {
		t.Fatalf("initial reviewer changed to %s, want %s", a.ReviewerID, prof1.ID)
	}

	// approve: forwarded -> approved, by the new current reviewer
	a, err = svc.Approve(ctx, a.ID, prof2.ID, "Well done", "sig-prof2")
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if a.Status != workflow.StatusApproved {
		t.Fatalf("status = %s, want approved", a.Status)
	}

	// history: 5 entries with monotonically increasing seq
	if len(a.History) != 5 {
		t.Fatalf("history length = %d, want 5", len(a.History))
	}
	wantActions := []workflow.Action{
		workflow.ActionSubmitted,
		workflow.ActionRejected,
		workflow.ActionResubmitted,
		workflow.ActionForwarded,
		workflow.ActionApproved,
	}
	for i, h := range a.History {
		if h.Seq != i+1 {
			t.Errorf("history[%d].Seq = %d, want %d", i, h.Seq, i+1)
		}
		if h.Action != wantActions[i] {
			t.Errorf("history[%d].Action = %s, want %s", i, h.Action, wantActions[i])
		}
	}

	// the final status must agree with the last history action
	last := a.History[len(a.History)-1]
	if !a.Status.ConsistentAction(last.Action) {
		t.Errorf("status %s inconsistent with last action %s", a.Status, last.Action)
	}

	// student actions carry no reviewer id
	if a.History[0].ReviewerID != nil || a.History[2].ReviewerID != nil {
		t.Error("student history entries should have nil reviewer id")
	}
	// resubmit entry records the replaced file path
	if a.History[2].OldFilePath != oldPath {
		t.Errorf("resubmit OldFilePath = %q, want %q", a.History[2].OldFilePath, oldPath)
	}
	// other entries never carry an old file path
	for i, h := range a.History {
		if i != 2 && h.OldFilePath != "" {
			t.Errorf("history[%d] has unexpected OldFilePath %q", i, h.OldFilePath)
		}
	}
	// reviewer decisions record actor and remark
	if a.History[1].ReviewerID == nil || *a.History[1].ReviewerID != prof1.ID {
		t.Error("reject entry should record prof1 as actor")
	}
	if a.History[1].Remark != "Needs more references" {
		t.Errorf("reject remark = %q", a.History[1].Remark)
	}
	if a.History[4].ReviewerID == nil || *a.History[4].ReviewerID != prof2.ID {
		t.Error("approve entry should record prof2 as actor")
	}
}

func TestWorkflowGuards(t *testing.T) {
	svc, db := setupWorkflowTest(t)
	ctx := context.Background()

	student := testutil.SeedUser(t, db, "Student", "student@test.com", entity.RoleStudent)
	other := testutil.SeedUser(t, db, "Other Student", "other@test.com", entity.RoleStudent)
	prof := testutil.SeedUser(t, db, "Prof", "prof@test.com", entity.RoleProfessor)
	outsider := testutil.SeedUser(t, db, "Outsider", "outsider@test.com", entity.RoleProfessor)

	a := seedDraft(t, db, student.ID, "assignments/2026/08/28/g1.pdf")

	// only the owner can submit
	if _, err := svc.Submit(ctx, a.ID, other.ID, nil, prof.ID); !errors.Is(err, workflow.ErrForbidden) {
		t.Errorf("submit by non-owner: %v, want ErrForbidden", err)
	}

	// reviewer must be able to review
	if _, err := svc.Submit(ctx, a.ID, student.ID, nil, other.ID); !errors.Is(err, workflow.ErrValidation) {
		t.Errorf("submit to student reviewer: %v, want ErrValidation", err)
	}

	// unknown reviewer
	if _, err := svc.Submit(ctx, a.ID, student.ID, nil, "nonexistent"); !errors.Is(err, workflow.ErrValidation) {
		t.Errorf("submit to unknown reviewer: %v, want ErrValidation", err)
	}

	if _, err := svc.Submit(ctx, a.ID, student.ID, nil, prof.ID); err != nil {
		t.Fatalf("submit: %v", err)
	}

	// double submit is an invalid transition
	if _, err := svc.Submit(ctx, a.ID, student.ID, nil, prof.ID); !errors.Is(err, workflow.ErrInvalidTransition) {
		t.Errorf("double submit: %v, want ErrInvalidTransition", err)
	}

	// only the current reviewer can decide
	if _, err := svc.Approve(ctx, a.ID, outsider.ID, "", ""); !errors.Is(err, workflow.ErrForbidden) {
		t.Errorf("approve by non-reviewer: %v, want ErrForbidden", err)
	}

	// reject requires a remark
	if _, err := svc.Reject(ctx, a.ID, prof.ID, "", ""); !errors.Is(err, workflow.ErrValidation) {
		t.Errorf("reject without remark: %v, want ErrValidation", err)
	}

	// resubmit requires a new file
	if _, err := svc.Reject(ctx, a.ID, prof.ID, "redo", ""); err != nil {
		t.Fatalf("reject: %v", err)
	}
	if _, err := svc.Resubmit(ctx, a.ID, student.ID, nil); !errors.Is(err, workflow.ErrValidation) {
		t.Errorf("resubmit without file: %v, want ErrValidation", err)
	}

	// unknown assignment
	if _, err := svc.Approve(ctx, "nonexistent", prof.ID, "", ""); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("approve unknown assignment: %v, want ErrNotFound", err)
	}
}

func TestWorkflowRepeatedApprove(t *testing.T) {
	svc, db := setupWorkflowTest(t)
	ctx := context.Background()

	student := testutil.SeedUser(t, db, "Student", "student@test.com", entity.RoleStudent)
	prof := testutil.SeedUser(t, db, "Prof", "prof@test.com", entity.RoleProfessor)

	a := seedDraft(t, db, student.ID, "assignments/2026/08/28/h1.pdf")

	if _, err := svc.Submit(ctx, a.ID, student.ID, nil, prof.ID); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := svc.Approve(ctx, a.ID, prof.ID, "", ""); err != nil {
		t.Fatalf("approve: %v", err)
	}

	// repeated approve is an error, not a no-op
	if _, err := svc.Approve(ctx, a.ID, prof.ID, "", ""); !errors.Is(err, workflow.ErrInvalidTransition) {
		t.Errorf("second approve: %v, want ErrInvalidTransition", err)
	}
}

func TestWorkflowStaleDecisionAfterForward(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	svc := NewWorkflowService(repos.Assignment, repos.User)
	ctx := context.Background()

	student := testutil.SeedUser(t, db, "Student", "student@test.com", entity.RoleStudent)
	profB := testutil.SeedUser(t, db, "Prof B", "profb@test.com", entity.RoleProfessor)
	profC := testutil.SeedUser(t, db, "Prof C", "profc@test.com", entity.RoleProfessor)
	profD := testutil.SeedUser(t, db, "Prof D", "profd@test.com", entity.RoleProfessor)

	a := seedDraft(t, db, student.ID, "assignments/2026/08/28/s1.pdf")
	if _, err := svc.Submit(ctx, a.ID, student.ID, nil, profB.ID); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := svc.Forward(ctx, a.ID, profB.ID, profC.ID, ""); err != nil {
		t.Fatalf("forward: %v", err)
	}

	// an approve computed from a read taken while profC was still the
	// current reviewer; a forward to profD commits in between. forward
	// does not change the status (forwarded -> forwarded), so the update
	// must be invalidated by the reviewer comparison, not the status one.
	staleApprove := &repository.TransitionUpdate{
		FromStatus:   workflow.StatusForwarded,
		FromReviewer: profC.ID,
		ToStatus:     workflow.StatusApproved,
		History: entity.AssignmentHistory{
			ReviewerID: &profC.ID,
			Action:     workflow.ActionApproved,
		},
	}

	if _, err := svc.Forward(ctx, a.ID, profC.ID, profD.ID, ""); err != nil {
		t.Fatalf("second forward: %v", err)
	}

	if err := repos.Assignment.Transition(ctx, a.ID, staleApprove); !errors.Is(err, repository.ErrStaleStatus) {
		t.Fatalf("stale approve after forward: %v, want ErrStaleStatus", err)
	}

	// same for a stale forward: forwarded -> forwarded keeps the status,
	// only the reviewer condition can reject the loser
	staleForward := &repository.TransitionUpdate{
		FromStatus:         workflow.StatusForwarded,
		FromReviewer:       profC.ID,
		ToStatus:           workflow.StatusForwarded,
		SetCurrentReviewer: profB.ID,
		History: entity.AssignmentHistory{
			ReviewerID: &profC.ID,
			Action:     workflow.ActionForwarded,
		},
	}
	if err := repos.Assignment.Transition(ctx, a.ID, staleForward); !errors.Is(err, repository.ErrStaleStatus) {
		t.Fatalf("stale forward after forward: %v, want ErrStaleStatus", err)
	}

	// the record is untouched by the losers
	got, err := svc.find(ctx, a.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.Status != workflow.StatusForwarded {
		t.Fatalf("status = %s, want forwarded", got.Status)
	}
	if got.CurrentReviewer != profD.ID {
		t.Fatalf("current reviewer = %s, want %s", got.CurrentReviewer, profD.ID)
	}
	if len(got.History) != 3 {
		t.Fatalf("history length = %d, want 3 (submit + two forwards)", len(got.History))
	}

	// the reviewer who forwarded the assignment away can no longer decide
	if _, err := svc.Approve(ctx, a.ID, profC.ID, "", ""); !errors.Is(err, workflow.ErrForbidden) {
		t.Errorf("approve by previous reviewer: %v, want ErrForbidden", err)
	}
}

func TestWorkflowConcurrentDecisions(t *testing.T) {
	svc, db := setupWorkflowTest(t)
	ctx := context.Background()

	student := testutil.SeedUser(t, db, "Student", "student@test.com", entity.RoleStudent)
	prof := testutil.SeedUser(t, db, "Prof", "prof@test.com", entity.RoleProfessor)

	a := seedDraft(t, db, student.ID, "assignments/2026/08/28/c1.pdf")
	if _, err := svc.Submit(ctx, a.ID, student.ID, nil, prof.ID); err != nil {
		t.Fatalf("submit: %v", err)
	}

	// two concurrent approvals: exactly one wins, the loser sees
	// an invalid transition, and exactly one history entry is appended
	const n = 2
	errs := make([]error, n)
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Approve(ctx, a.ID, prof.ID, "", "")
		}(i)
	}
	wg.Wait()

	var ok, conflict int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, workflow.ErrInvalidTransition):
			conflict++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if ok != 1 || conflict != 1 {
		t.Fatalf("winners = %d, conflicts = %d, want 1/1", ok, conflict)
	}

	got, err := svc.find(ctx, a.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.Status != workflow.StatusApproved {
		t.Fatalf("status = %s, want approved", got.Status)
	}
	if len(got.History) != 2 {
		t.Fatalf("history length = %d, want 2 (submit + single approve)", len(got.History))
	}
}
